package entity

// Role is the permission role carried by an actor
type Role string

const (
	RoleEmployee           Role = "employee"
	RoleCoordinator        Role = "coordinator"
	RoleProjectCoordinator Role = "project_coordinator"
	RoleHR                 Role = "hr"
	RoleAdmin              Role = "admin"
	RoleGeneralManager     Role = "general_manager"
)

// AllRoles lists every role known to the role gate
var AllRoles = []Role{
	RoleEmployee,
	RoleCoordinator,
	RoleProjectCoordinator,
	RoleHR,
	RoleAdmin,
	RoleGeneralManager,
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Actor is the identity performing an action, supplied by the identity provider.
// ProjectIDs lists the projects a project coordinator is assigned to.
type Actor struct {
	ID         string   `json:"id"`
	Role       Role     `json:"role"`
	ProjectIDs []string `json:"project_ids,omitempty"`
}

// CoordinatesProject reports whether the actor is assigned to the project
func (a Actor) CoordinatesProject(projectID string) bool {
	if projectID == "" {
		return false
	}
	for _, id := range a.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}
