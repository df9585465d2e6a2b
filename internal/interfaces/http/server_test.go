package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/opsflow/internal/application/dispatcher"
	"github.com/garyjia/opsflow/internal/application/service"
	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/infrastructure/export"
	"github.com/garyjia/opsflow/internal/infrastructure/persistence/repository"
	"github.com/garyjia/opsflow/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/opsflow/pkg/database"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type actorHeaders struct {
	id       string
	role     entity.Role
	projects string
}

var (
	asEmployee    = actorHeaders{id: "emp-1", role: entity.RoleEmployee}
	asCoordinator = actorHeaders{id: "coord-1", role: entity.RoleCoordinator}
	asManager     = actorHeaders{id: "gm-1", role: entity.RoleGeneralManager}
	asLead        = actorHeaders{id: "pc-1", role: entity.RoleProjectCoordinator, projects: "proj-1, proj-2"}
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{Path: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.NewMigrator(db, logger).Run(database.Migrations()))

	disp := dispatcher.NewDispatcher()
	t.Cleanup(func() { _ = disp.Close() })

	deps := service.Deps{
		History:    repository.NewHistoryRepository(db.DB, logger),
		TxManager:  sqlite.NewTxManager(db.DB, logger),
		Dispatcher: disp,
		Logger:     nopLogger{},
	}
	opts := []service.Option{service.WithClock(func() time.Time { return testNow })}

	services := Services{
		Leave: service.NewLeaveService(repository.NewLeaveRequestRepository(db.DB, logger),
			workflow.NewLeaveRequestWorkflow(), deps, opts...),
		Submissions: service.NewSubmissionService(repository.NewWorkSubmissionRepository(db.DB, logger),
			workflow.NewWorkSubmissionWorkflow(), deps, opts...),
		Invoices: service.NewInvoiceService(repository.NewInvoiceRepository(db.DB, logger),
			workflow.NewInvoiceWorkflow(), export.NewInvoiceWorkbookExporter("", logger), nil, deps, opts...),
		Tasks: service.NewTaskService(repository.NewTaskRepository(db.DB, logger),
			workflow.NewTaskWorkflow(), deps, opts...),
	}
	return NewServer(DefaultServerConfig(), services, nopLogger{})
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Field   string          `json:"field"`
}

func do(t *testing.T, s *Server, as actorHeaders, method, path, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if as.id != "" {
		req.Header.Set(HeaderActorID, as.id)
		req.Header.Set(HeaderActorRole, string(as.role))
		req.Header.Set(HeaderActorProjects, as.projects)
	}

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func createdID(t *testing.T, resp apiResponse) string {
	t.Helper()
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	require.NotEmpty(t, created.ID)
	return created.ID
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w, resp := do(t, s, actorHeaders{}, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestRequireActor(t *testing.T) {
	s := newTestServer(t)

	w, resp := do(t, s, actorHeaders{}, http.MethodGet, "/api/tasks/x", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, resp.Success)

	w, _ = do(t, s, actorHeaders{id: "x", role: "intern"}, http.MethodGet, "/api/tasks/x", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLeaveRequestFlow(t *testing.T) {
	s := newTestServer(t)
	body := `{"employee_id":"emp-1","leave_type":"annual","start_date":"2024-06-15T00:00:00Z","end_date":"2024-06-17T00:00:00Z","reason":"trip"}`

	w, resp := do(t, s, asEmployee, http.MethodPost, "/api/leave-requests", body)
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)
	id := createdID(t, resp)

	w, resp = do(t, s, asEmployee, http.MethodPost, "/api/leave-requests/"+id+"/actions/approve_coordinator", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, resp.Error, "not authorized")

	w, resp = do(t, s, asCoordinator, http.MethodPost, "/api/leave-requests/"+id+"/actions/approve_coordinator", `{"comments":"enjoy"}`)
	require.Equal(t, http.StatusOK, w.Code, resp.Error)

	w, resp = do(t, s, asCoordinator, http.MethodPost, "/api/leave-requests/"+id+"/actions/approve_coordinator", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, resp = do(t, s, asEmployee, http.MethodGet, "/api/leave-requests/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Entity  entity.LeaveRequest   `json:"entity"`
		Summary workflow.LeaveSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, entity.LeaveStatusCoordinatorApproved, got.Entity.Status)
	require.NotNil(t, got.Entity.CoordinatorApproval)
	assert.Equal(t, "enjoy", got.Entity.CoordinatorApproval.Comments)
	assert.Equal(t, 3, got.Summary.Days)

	w, resp = do(t, s, asEmployee, http.MethodGet, "/api/leave-requests/"+id+"/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var records []entity.TransitionRecord
	require.NoError(t, json.Unmarshal(resp.Data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "create", records[0].Action)
	assert.Equal(t, "approve_coordinator", records[1].Action)
}

func TestLeaveRequest_InvalidPayload(t *testing.T) {
	s := newTestServer(t)
	body := `{"employee_id":"emp-1","leave_type":"annual","start_date":"2024-06-17T00:00:00Z","end_date":"2024-06-15T00:00:00Z","reason":"trip"}`

	w, resp := do(t, s, asEmployee, http.MethodPost, "/api/leave-requests", body)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "endDate", resp.Field)
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)

	w, _ := do(t, s, asEmployee, http.MethodPost, "/api/leave-requests", `{"employee_id":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)

	w, _ := do(t, s, asManager, http.MethodGet, "/api/invoices/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, s, asManager, http.MethodPost, "/api/invoices/missing/actions/issue", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceFlow(t *testing.T) {
	s := newTestServer(t)
	body := `{
		"invoice_number": "INV-7",
		"client_id": "client-1",
		"project_id": "proj-1",
		"items": [{"description": "Build", "quantity": "2", "unit_price": "250"}],
		"tax_rate": "10",
		"date_issued": "2024-06-01T00:00:00Z",
		"due_date": "2024-07-01T00:00:00Z"
	}`

	w, resp := do(t, s, asManager, http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)
	id := createdID(t, resp)

	w, resp = do(t, s, asManager, http.MethodPost, "/api/invoices/"+id+"/actions/issue", "")
	require.Equal(t, http.StatusOK, w.Code, resp.Error)

	w, resp = do(t, s, asManager, http.MethodPost, "/api/invoices/"+id+"/actions/record_payment", `{"amount":"600"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "amount", resp.Field)
	assert.Equal(t, "exceeds remaining balance", resp.Error)

	w, resp = do(t, s, asManager, http.MethodPost, "/api/invoices/"+id+"/actions/record_payment", `{"amount":"200"}`)
	require.Equal(t, http.StatusOK, w.Code, resp.Error)

	w, resp = do(t, s, asManager, http.MethodGet, "/api/invoices/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Entity  entity.Invoice          `json:"entity"`
		Summary workflow.InvoiceSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, entity.InvoiceStatusPartiallyPaid, got.Entity.Status)
	assert.Equal(t, "550", got.Entity.TotalAmount.String())
	assert.Equal(t, "350", got.Summary.RemainingAmount.String())

	w, _ = do(t, s, asManager, http.MethodGet, "/api/invoices/"+id+"/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="INV-7.xlsx"`)
	assert.NotEmpty(t, w.Body.Bytes())

	w, _ = do(t, s, asEmployee, http.MethodPost, "/api/invoices/"+id+"/actions/cancel", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTaskFlow(t *testing.T) {
	s := newTestServer(t)
	mainBody := `{"title":"Website","project_id":"proj-1","task_type":"main","assigned_employee_id":"emp-1","due_date":"2024-07-01T00:00:00Z"}`

	w, resp := do(t, s, asLead, http.MethodPost, "/api/tasks", mainBody)
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)
	mainID := createdID(t, resp)

	subBody := `{"title":"Landing","project_id":"proj-1","task_type":"sub","parent_task_id":"` + mainID + `","assigned_employee_id":"emp-1","due_date":"2024-06-20T00:00:00Z"}`
	w, resp = do(t, s, asLead, http.MethodPost, "/api/tasks", subBody)
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)

	orphan := `{"title":"Orphan","project_id":"proj-1","task_type":"sub","assigned_employee_id":"emp-1","due_date":"2024-06-20T00:00:00Z"}`
	w, resp = do(t, s, asLead, http.MethodPost, "/api/tasks", orphan)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "parentTaskId", resp.Field)

	w, resp = do(t, s, asEmployee, http.MethodPost, "/api/tasks/"+mainID+"/actions/start", "")
	require.Equal(t, http.StatusOK, w.Code, resp.Error)

	w, resp = do(t, s, asLead, http.MethodPatch, "/api/tasks/"+mainID, `{"task_type":"sub"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "taskType", resp.Field)
}

func TestSubmissionFlow(t *testing.T) {
	s := newTestServer(t)
	body := `{"employee_id":"emp-1","task_id":"task-1","project_id":"proj-1","time_spent":4,"description":"API work"}`

	w, resp := do(t, s, asEmployee, http.MethodPost, "/api/submissions", body)
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)
	id := createdID(t, resp)

	w, resp = do(t, s, asLead, http.MethodPost, "/api/submissions/"+id+"/actions/reject", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "rejectionReason", resp.Field)

	w, resp = do(t, s, asLead, http.MethodPost, "/api/submissions/"+id+"/actions/approve", `{"feedback":"nice"}`)
	require.Equal(t, http.StatusOK, w.Code, resp.Error)

	w, resp = do(t, s, asEmployee, http.MethodGet, "/api/submissions/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Entity  entity.WorkSubmission `json:"entity"`
		Summary SubmissionSummary     `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, entity.SubmissionStatusApproved, got.Entity.Status)
	assert.Empty(t, got.Summary.PermittedActions)
}

func TestSalaryBreakdown(t *testing.T) {
	s := newTestServer(t)

	w, resp := do(t, s, asManager, http.MethodGet, "/api/payroll/salary-breakdown?annual=52000", "")
	require.Equal(t, http.StatusOK, w.Code)
	var salary struct {
		Monthly string `json:"monthly"`
		Weekly  string `json:"weekly"`
		Hourly  string `json:"hourly"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &salary))
	assert.Equal(t, "4333", salary.Monthly)
	assert.Equal(t, "1000", salary.Weekly)
	assert.Equal(t, "25", salary.Hourly)

	w, resp = do(t, s, asManager, http.MethodGet, "/api/payroll/salary-breakdown?annual=abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "annual", resp.Field)
}
