/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes the leave engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the leave package's services.

ENDPOINTS:
  Employees:
    GET    /api/employees                 List all employees
    POST   /api/employees                 Create employee (optionally under a manager)
    GET    /api/employees/{id}            Get employee
    PUT    /api/employees/{id}            Update profile / balance
    DELETE /api/employees/{id}            Delete employee and everything it owns
    GET    /api/employees/{id}/requests   Requests authored by the employee
    GET    /api/employees/{id}/movements  Balance journal

  Managers:
    GET    /api/managers                  List manager roles
    POST   /api/managers                  Grant the role to an employee
    GET    /api/managers/{id}             Get manager role
    DELETE /api/managers/{id}             Revoke role and its relations
    GET    /api/managers/{id}/employees   Team (by role id) with requests
    GET    /api/managers/{id}/status/{date}          Team status (by employee id)
    GET    /api/managers/{id}/status/{date}/summary  Counts only

  Relations:
    POST   /api/relations                 Place an employee under a manager
    GET    /api/relations/{employeeID}    Manager of an employee

  Requests:
    GET    /api/requests                  List all requests
    POST   /api/requests                  Submit a request
    GET    /api/requests/{id}             Get request
    PUT    /api/requests/{id}             Approve / deny / edit a pending request
    DELETE /api/requests/{id}             Delete request, restoring days

ERROR HANDLING:
  Errors are returned as {"error", "details"} (see errors.go):
  - 400: Business-rule violations
  - 404: Resource not found
  - 409: Duplicate name, role or relation
  - 422: Malformed input
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence the API needs: the engine surface plus the
// operational hooks used by /health and the scenario endpoints.
type Store interface {
	leave.TxStore
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     Store
	Directory *leave.DirectoryService
	Requests  *leave.RequestService
	Status    *leave.StatusAggregator
	Logger    *zap.Logger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler wires the services over store.
func NewHandler(store Store, window leave.Window, retry leave.RetryPolicy, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:     store,
		Directory: leave.NewDirectoryService(store, retry, logger),
		Requests:  leave.NewRequestService(store, window, retry, logger),
		Status:    &leave.StatusAggregator{Directory: store, Requests: store},
		Logger:    logger.Named("api"),
	}
}

// Health pings the database.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		h.Logger.Error("health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, HealthDTO{Status: "success", Result: 1})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	emps, err := h.Directory.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list employees", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTOs(emps))
}

// CreateEmployee registers an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		h.fail(w, r, "Name is required", fmt.Errorf("%w: name is empty", errMalformed))
		return
	}

	emp, err := h.Directory.CreateEmployee(r.Context(), leave.NewEmployee{
		Name:           req.Name,
		Age:            req.Age,
		ContactDetails: req.ContactDetails,
		HolidaysLeft:   req.HolidaysLeft,
		ManagerID:      req.ManagerID,
	})
	if err != nil {
		h.fail(w, r, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(*emp))
}

// GetEmployee returns one employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid employee id", err)
		return
	}
	emp, err := h.Directory.GetEmployee(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// UpdateEmployee edits the profile; omitted fields keep their value.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid employee id", err)
		return
	}
	var req UpdateEmployeeRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	emp, err := h.Directory.UpdateEmployee(r.Context(), leave.EmployeeUpdate{
		ID:             id,
		Name:           req.Name,
		Age:            req.Age,
		ContactDetails: req.ContactDetails,
		HolidaysLeft:   req.HolidaysLeft,
	})
	if err != nil {
		h.fail(w, r, "Failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// DeleteEmployee removes an employee.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid employee id", err)
		return
	}
	if err := h.Directory.DeleteEmployee(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete employee", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Employee deleted successfully"})
}

// ListEmployeeRequests returns the requests authored by an employee.
func (h *Handler) ListEmployeeRequests(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid employee id", err)
		return
	}
	reqs, err := h.Requests.ListByEmployee(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

// ListMovements returns the balance journal of an employee.
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid employee id", err)
		return
	}
	ms, err := h.Directory.BalanceHistory(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to list movements", err)
		return
	}
	dtos := make([]MovementDTO, len(ms))
	for i, m := range ms {
		dtos[i] = toMovementDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// MANAGER HANDLERS
// =============================================================================

func (h *Handler) ListManagers(w http.ResponseWriter, r *http.Request) {
	ms, err := h.Directory.ListManagers(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list managers", err)
		return
	}
	dtos := make([]ManagerDTO, len(ms))
	for i, m := range ms {
		dtos[i] = toManagerDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateManager(w http.ResponseWriter, r *http.Request) {
	var req CreateManagerRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	m, err := h.Directory.CreateManager(r.Context(), req.EmployeeID)
	if err != nil {
		h.fail(w, r, "Failed to create manager", err)
		return
	}
	writeJSON(w, http.StatusCreated, toManagerDTO(*m))
}

func (h *Handler) GetManager(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid manager id", err)
		return
	}
	m, err := h.Directory.GetManager(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to get manager", err)
		return
	}
	writeJSON(w, http.StatusOK, toManagerDTO(*m))
}

func (h *Handler) DeleteManager(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid manager id", err)
		return
	}
	if err := h.Directory.DeleteManager(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete manager", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Manager deleted successfully"})
}

// ListTeam returns the employees under a manager role with all their requests.
func (h *Handler) ListTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid manager id", err)
		return
	}
	team, err := h.Directory.ListTeam(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to list team", err)
		return
	}
	dtos := make([]EmployeeWithRequestsDTO, len(team))
	for i, m := range team {
		dtos[i] = EmployeeWithRequestsDTO{
			EmployeeDTO: toEmployeeDTO(m.Employee),
			Requests:    toRequestDTOs(m.Requests),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// TeamStatus classifies the team of a manager (by employee id) on a day.
func (h *Handler) TeamStatus(w http.ResponseWriter, r *http.Request) {
	ts, ok := h.teamStatus(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toStatusDetailsDTO(ts))
}

// TeamStatusSummary is TeamStatus reduced to counts.
func (h *Handler) TeamStatusSummary(w http.ResponseWriter, r *http.Request) {
	ts, ok := h.teamStatus(w, r)
	if !ok {
		return
	}
	sum := ts.Summary()
	writeJSON(w, http.StatusOK, StatusSummaryDTO{
		Working:      sum.Working,
		OnLeave:      sum.OnLeave,
		PendingLeave: sum.Pending,
	})
}

func (h *Handler) teamStatus(w http.ResponseWriter, r *http.Request) (leave.TeamStatus, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid manager id", err)
		return leave.TeamStatus{}, false
	}
	day, err := parseDay("date", chi.URLParam(r, "date"))
	if err != nil {
		h.fail(w, r, "Invalid date", err)
		return leave.TeamStatus{}, false
	}
	ts, err := h.Status.StatusForTeam(r.Context(), id, day)
	if err != nil {
		h.fail(w, r, "Failed to compute team status", err)
		return leave.TeamStatus{}, false
	}
	return ts, true
}

// =============================================================================
// RELATION HANDLERS
// =============================================================================

func (h *Handler) CreateRelation(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	rel, err := h.Directory.CreateRelation(r.Context(), req.ManagerID, req.EmployeeID)
	if err != nil {
		h.fail(w, r, "Failed to create relation", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRelationDTO(*rel))
}

func (h *Handler) GetRelation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "employeeID")
	if err != nil {
		h.fail(w, r, "Invalid employee id", err)
		return
	}
	rel, err := h.Directory.ManagerForEmployee(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to get relation", err)
		return
	}
	writeJSON(w, http.StatusOK, toRelationDTO(*rel))
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Requests.List(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

// CreateRequest submits a vacation request.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateRequestRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	in := leave.CreateInput{
		AuthorID:  req.AuthorID,
		ManagerID: req.ManagerID,
		Status:    leave.Status(req.Status),
	}
	if in.Status != "" && !in.Status.Valid() {
		h.fail(w, r, "Invalid status", fmt.Errorf("%w: status %q", errMalformed, req.Status))
		return
	}
	var err error
	if in.Start, err = parseDay("vacation_start_date", req.VacationStartDate); err != nil {
		h.fail(w, r, "Invalid vacation_start_date", err)
		return
	}
	if in.End, err = parseDay("vacation_end_date", req.VacationEndDate); err != nil {
		h.fail(w, r, "Invalid vacation_end_date", err)
		return
	}
	if req.RequestCreatedDate != nil {
		created, err := time.Parse(time.RFC3339, *req.RequestCreatedDate)
		if err != nil {
			h.fail(w, r, "Invalid request_created_date", fmt.Errorf("%w: request_created_date: %v", errMalformed, err))
			return
		}
		in.RequestCreatedDate = &created
	}

	created, err := h.Requests.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "Failed to create request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(*created))
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid request id", err)
		return
	}
	req, err := h.Requests.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to get request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

// UpdateRequest approves, denies or edits a pending request.
func (h *Handler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid request id", err)
		return
	}
	var req UpdateRequestRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	in := leave.UpdateInput{ManagerID: req.ManagerID}
	if req.Status != nil {
		st := leave.Status(*req.Status)
		in.Status = &st
	}
	if req.VacationStartDate != nil {
		day, err := parseDay("vacation_start_date", *req.VacationStartDate)
		if err != nil {
			h.fail(w, r, "Invalid vacation_start_date", err)
			return
		}
		in.Start = &day
	}
	if req.VacationEndDate != nil {
		day, err := parseDay("vacation_end_date", *req.VacationEndDate)
		if err != nil {
			h.fail(w, r, "Invalid vacation_end_date", err)
			return
		}
		in.End = &day
	}

	updated, err := h.Requests.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "Failed to update request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*updated))
}

func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid request id", err)
		return
	}
	if err := h.Requests.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete request", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Request deleted successfully"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return nil
}

func pathID(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s %q is not a positive integer", errMalformed, key, raw)
	}
	return id, nil
}

func parseDay(field, raw string) (time.Time, error) {
	day, err := leave.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q: want YYYY-MM-DD", errMalformed, field, raw)
	}
	return day, nil
}
