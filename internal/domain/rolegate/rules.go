package rolegate

import "github.com/garyjia/opsflow/internal/domain/entity"

var (
	managers       = []entity.Role{entity.RoleAdmin, entity.RoleGeneralManager}
	leaveApprovers = []entity.Role{entity.RoleCoordinator, entity.RoleAdmin, entity.RoleGeneralManager}
	hrApprovers    = []entity.Role{entity.RoleHR, entity.RoleAdmin}
	workReviewers  = []entity.Role{entity.RoleProjectCoordinator, entity.RoleAdmin, entity.RoleGeneralManager}
	projectLeads   = []entity.Role{entity.RoleProjectCoordinator}
)

// DefaultRules is the dashboard's permission table
func DefaultRules() []Rule {
	return []Rule{
		// Leave requests: the coordinator stage decides at pending, the HR stage
		// decides once the coordinator has approved.
		{Kind: entity.KindLeaveRequest, Action: entity.ActionCreate, Owner: true},
		{Kind: entity.KindLeaveRequest, Action: entity.ActionEdit, Owner: true},
		{Kind: entity.KindLeaveRequest, Action: entity.ActionApproveCoordinator, Roles: leaveApprovers},
		{Kind: entity.KindLeaveRequest, Action: entity.ActionApproveHR, Roles: hrApprovers},
		{Kind: entity.KindLeaveRequest, Action: entity.ActionReject, From: entity.LeaveStatusPending, Roles: leaveApprovers},
		{Kind: entity.KindLeaveRequest, Action: entity.ActionReject, From: entity.LeaveStatusCoordinatorApproved, Roles: hrApprovers},
		{Kind: entity.KindLeaveRequest, Action: entity.ActionCancel, Roles: []entity.Role{entity.RoleAdmin}, Owner: true},

		{Kind: entity.KindWorkSubmission, Action: entity.ActionCreate, Owner: true},
		{Kind: entity.KindWorkSubmission, Action: entity.ActionEdit, Owner: true},
		{Kind: entity.KindWorkSubmission, Action: entity.ActionApprove, Roles: workReviewers},
		{Kind: entity.KindWorkSubmission, Action: entity.ActionReject, Roles: workReviewers},
		{Kind: entity.KindWorkSubmission, Action: entity.ActionRequestRevision, Roles: workReviewers},
		{Kind: entity.KindWorkSubmission, Action: entity.ActionResubmit, Owner: true},

		{Kind: entity.KindInvoice, Action: entity.ActionCreate, Roles: managers},
		{Kind: entity.KindInvoice, Action: entity.ActionEdit, Roles: managers},
		{Kind: entity.KindInvoice, Action: entity.ActionIssue, Roles: managers},
		{Kind: entity.KindInvoice, Action: entity.ActionRecordPayment, Roles: managers},
		{Kind: entity.KindInvoice, Action: entity.ActionCancel, Roles: managers},

		{Kind: entity.KindTask, Action: entity.ActionCreate, Roles: managers, ProjectRoles: projectLeads},
		{Kind: entity.KindTask, Action: entity.ActionEdit, Roles: managers, ProjectRoles: projectLeads},
		{Kind: entity.KindTask, Action: entity.ActionStart, Roles: managers, ProjectRoles: projectLeads, Owner: true},
		{Kind: entity.KindTask, Action: entity.ActionComplete, Roles: managers, ProjectRoles: projectLeads, Owner: true},
		{Kind: entity.KindTask, Action: entity.ActionReject, Roles: managers, ProjectRoles: projectLeads},
	}
}

var defaultGate = New(DefaultRules())

// Default returns the gate built from DefaultRules
func Default() *Gate {
	return defaultGate
}
