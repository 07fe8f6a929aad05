/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Status code mapping and exact error messages
- Employee, manager and relation endpoints
- Request lifecycle over HTTP, including balance effects
- Team status details and summary
- Scenario loading
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/memory"
	"github.com/warp/leave-engine/store/sqlstore"
)

type testServer struct {
	h      *Handler
	router http.Handler
}

func newTestServer(t *testing.T, store Store) *testServer {
	t.Helper()
	h := NewHandler(store, leave.MonthWindow(2024, time.November),
		leave.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}, zaptest.NewLogger(t))
	h.Requests.Now = func() time.Time { return time.Date(2024, time.October, 20, 9, 30, 0, 0, time.UTC) }
	return &testServer{h: h, router: NewRouter(h, nil)}
}

func newMemoryServer(t *testing.T) *testServer {
	return newTestServer(t, memory.New())
}

func newSQLiteServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlstore.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return newTestServer(t, store)
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decodeAs[ErrorResponse](t, rec).Error
}

// seedTeam creates Alice (manager, id 1) and Karan (id 2) under her.
func (s *testServer) seedTeam(t *testing.T) (alice, karan int64) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/employees", CreateEmployeeRequest{Name: "Alice", Age: 41, HolidaysLeft: 30})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	alice = decodeAs[EmployeeDTO](t, rec).ID

	rec = s.do(t, http.MethodPost, "/api/managers", CreateManagerRequest{EmployeeID: alice})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/employees", CreateEmployeeRequest{
		Name: "Karan", Age: 30, ContactDetails: "karan@example.com", HolidaysLeft: 30, ManagerID: alice,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	karan = decodeAs[EmployeeDTO](t, rec).ID
	return alice, karan
}

func (s *testServer) holidaysLeft(t *testing.T, id int64) int {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/employees/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeAs[EmployeeDTO](t, rec).HolidaysLeft
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// =============================================================================
// HEALTH & STATUS MAPPING
// =============================================================================

func TestHealth(t *testing.T) {
	s := newSQLiteServer(t)
	rec := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, HealthDTO{Status: "success", Result: 1}, decodeAs[HealthDTO](t, rec))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", leave.NotFound(leave.EntityRequest), http.StatusNotFound},
		{"overlap", leave.ErrOverlapPending, http.StatusBadRequest},
		{"transition", leave.InvalidTransition(leave.StatusDenied), http.StatusBadRequest},
		{"balance bound", leave.ErrBalanceBoundViolation, http.StatusBadRequest},
		{"out of window", leave.ErrOutOfWindow, http.StatusUnprocessableEntity},
		{"author is manager", leave.ErrAuthorIsManager, http.StatusUnprocessableEntity},
		{"malformed", errMalformed, http.StatusUnprocessableEntity},
		{"conflict", leave.ErrConflict, http.StatusConflict},
		{"concurrent", leave.ErrConcurrentModification, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusFor(tc.err))
		})
	}
}

// =============================================================================
// DIRECTORY
// =============================================================================

func TestEmployees_CRUD(t *testing.T) {
	s := newMemoryServer(t)
	alice, karan := s.seedTeam(t)

	// WHEN: listing
	rec := s.do(t, http.MethodGet, "/api/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeAs[[]EmployeeDTO](t, rec), 2)

	// WHEN: editing only the balance
	rec = s.do(t, http.MethodPut, "/api/employees/"+itoa(karan), map[string]int{"holidays_left": 12})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeAs[EmployeeDTO](t, rec)
	assert.Equal(t, 12, got.HolidaysLeft)
	assert.Equal(t, "karan@example.com", got.ContactDetails, "omitted fields keep their value")

	// THEN: the change is journaled
	rec = s.do(t, http.MethodGet, "/api/employees/"+itoa(karan)+"/movements", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	moves := decodeAs[[]MovementDTO](t, rec)
	require.Len(t, moves, 1)
	assert.Equal(t, "adjustment", moves[0].Kind)
	assert.Equal(t, "-18", moves[0].Delta)
	assert.Equal(t, 12, moves[0].BalanceAfter)

	// WHEN: the relation is looked up
	rec = s.do(t, http.MethodGet, "/api/relations/"+itoa(karan), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alice, decodeAs[RelationDTO](t, rec).ManagerID)

	// WHEN: deleting
	rec = s.do(t, http.MethodDelete, "/api/employees/"+itoa(karan), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Employee deleted successfully", decodeAs[MessageResponse](t, rec).Message)

	rec = s.do(t, http.MethodGet, "/api/employees/"+itoa(karan), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Employee not found", errorMessage(t, rec))
}

func TestEmployees_Errors(t *testing.T) {
	s := newMemoryServer(t)
	alice, _ := s.seedTeam(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		status  int
		message string
	}{
		{"balance above bound", http.MethodPost, "/api/employees",
			CreateEmployeeRequest{Name: "Mia", HolidaysLeft: 31}, http.StatusBadRequest, "Holidays left should be between 0 and 30"},
		{"duplicate name", http.MethodPost, "/api/employees",
			CreateEmployeeRequest{Name: "Karan", HolidaysLeft: 3}, http.StatusConflict, "Failed to create employee"},
		{"unknown manager", http.MethodPost, "/api/employees",
			CreateEmployeeRequest{Name: "Mia", HolidaysLeft: 3, ManagerID: 99}, http.StatusNotFound, "Manager not found"},
		{"missing name", http.MethodPost, "/api/employees",
			CreateEmployeeRequest{HolidaysLeft: 3}, http.StatusUnprocessableEntity, "Name is required"},
		{"bad json", http.MethodPost, "/api/employees", "{", http.StatusUnprocessableEntity, "Invalid request body"},
		{"bad id", http.MethodGet, "/api/employees/abc", nil, http.StatusUnprocessableEntity, "Invalid employee id"},
		{"negative balance edit", http.MethodPut, "/api/employees/" + itoa(alice),
			map[string]int{"holidays_left": -1}, http.StatusBadRequest, "Holidays left should be between 0 and 30"},
		{"self managed", http.MethodPost, "/api/relations",
			CreateRelationRequest{ManagerID: alice, EmployeeID: alice}, http.StatusUnprocessableEntity, "manager_id and employee_id must be different"},
		{"second manager role", http.MethodPost, "/api/managers",
			CreateManagerRequest{EmployeeID: alice}, http.StatusConflict, "Failed to create manager"},
		{"unmanaged employee", http.MethodGet, "/api/relations/" + itoa(alice), nil, http.StatusNotFound, "Manager not found for the employee"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.message, errorMessage(t, rec))
		})
	}
}

func TestEmployees_DeleteApproverRestoresReports(t *testing.T) {
	for name, mk := range map[string]func(*testing.T) *testServer{
		"memory": newMemoryServer,
		"sqlite": newSQLiteServer,
	} {
		t.Run(name, func(t *testing.T) {
			s := mk(t)
			alice, karan := s.seedTeam(t)
			rec := s.do(t, http.MethodPost, "/api/requests", newRequest(karan, alice, "2024-11-11", "2024-11-15"))
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			id := decodeAs[RequestDTO](t, rec).ID
			require.Equal(t, 25, s.holidaysLeft(t, karan))

			rec = s.do(t, http.MethodDelete, "/api/employees/"+itoa(alice), nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			assert.Equal(t, 30, s.holidaysLeft(t, karan))
			rec = s.do(t, http.MethodGet, "/api/requests/"+itoa(id), nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestManagers_TeamAndDelete(t *testing.T) {
	s := newMemoryServer(t)
	_, karan := s.seedTeam(t)

	rec := s.do(t, http.MethodGet, "/api/managers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	managers := decodeAs[[]ManagerDTO](t, rec)
	require.Len(t, managers, 1)
	roleID := managers[0].ID

	rec = s.do(t, http.MethodGet, "/api/managers/"+itoa(roleID)+"/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	team := decodeAs[[]EmployeeWithRequestsDTO](t, rec)
	require.Len(t, team, 1)
	assert.Equal(t, karan, team[0].ID)
	assert.NotNil(t, team[0].Requests)

	// WHEN: the role is revoked
	rec = s.do(t, http.MethodDelete, "/api/managers/"+itoa(roleID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// THEN: its relations go with it
	rec = s.do(t, http.MethodGet, "/api/relations/"+itoa(karan), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/managers/"+itoa(roleID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// REQUEST LIFECYCLE
// =============================================================================

func newRequest(author, manager int64, start, end string) CreateRequestRequest {
	return CreateRequestRequest{AuthorID: author, ManagerID: manager, VacationStartDate: start, VacationEndDate: end}
}

func TestRequests_Lifecycle(t *testing.T) {
	for name, mk := range map[string]func(*testing.T) *testServer{
		"memory": newMemoryServer,
		"sqlite": newSQLiteServer,
	} {
		t.Run(name, func(t *testing.T) {
			s := mk(t)
			alice, karan := s.seedTeam(t)

			// GIVEN: Karan asks for Nov 11-15 (5 business days)
			rec := s.do(t, http.MethodPost, "/api/requests", newRequest(karan, alice, "2024-11-11", "2024-11-15"))
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			created := decodeAs[RequestDTO](t, rec)
			assert.Equal(t, "PENDING", created.Status)
			assert.Equal(t, "2024-11-11", created.VacationStartDate)
			assert.Equal(t, "2024-10-20T09:30:00Z", created.RequestCreatedDate)
			assert.Equal(t, 25, s.holidaysLeft(t, karan))

			path := "/api/requests/" + itoa(created.ID)

			// WHEN: the manager approves
			rec = s.do(t, http.MethodPut, path, map[string]string{"status": "APPROVED"})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "APPROVED", decodeAs[RequestDTO](t, rec).Status)
			assert.Equal(t, 25, s.holidaysLeft(t, karan))

			// THEN: the request is frozen
			rec = s.do(t, http.MethodPut, path, map[string]string{"status": "DENIED"})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Approved requests cannot be updated", errorMessage(t, rec))

			// WHEN: listing by employee
			rec = s.do(t, http.MethodGet, "/api/employees/"+itoa(karan)+"/requests", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Len(t, decodeAs[[]RequestDTO](t, rec), 1)

			// WHEN: deleting the approved request
			rec = s.do(t, http.MethodDelete, path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, 30, s.holidaysLeft(t, karan))

			rec = s.do(t, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "Request not found", errorMessage(t, rec))
		})
	}
}

func TestRequests_DenyRestores(t *testing.T) {
	s := newMemoryServer(t)
	alice, karan := s.seedTeam(t)

	rec := s.do(t, http.MethodPost, "/api/requests", newRequest(karan, alice, "2024-11-04T00:00:00Z", "2024-11-06"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeAs[RequestDTO](t, rec).ID
	assert.Equal(t, 27, s.holidaysLeft(t, karan))

	rec = s.do(t, http.MethodPut, "/api/requests/"+itoa(id), map[string]string{"status": "DENIED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 30, s.holidaysLeft(t, karan))

	rec = s.do(t, http.MethodPut, "/api/requests/"+itoa(id), map[string]string{"status": "PENDING"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Denied requests cannot be updated", errorMessage(t, rec))
}

func TestRequests_Rejections(t *testing.T) {
	s := newMemoryServer(t)
	alice, karan := s.seedTeam(t)

	rec := s.do(t, http.MethodPost, "/api/requests", newRequest(karan, alice, "2024-11-11", "2024-11-15"))
	require.Equal(t, http.StatusCreated, rec.Code)

	withStatus := newRequest(karan, alice, "2024-11-20", "2024-11-21")
	withStatus.Status = "APPROVED"
	unknownStatus := newRequest(karan, alice, "2024-11-20", "2024-11-21")
	unknownStatus.Status = "MAYBE"

	tests := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{"inverted range", newRequest(karan, alice, "2024-11-20", "2024-11-18"), http.StatusBadRequest,
			"Vacation start date cannot be later than vacation end date."},
		{"overlap pending", newRequest(karan, alice, "2024-11-15", "2024-11-18"), http.StatusBadRequest,
			"There is an overlapping pending leave request for this employee."},
		{"status on create", withStatus, http.StatusBadRequest, "Request status must be PENDING"},
		{"unknown status", unknownStatus, http.StatusUnprocessableEntity, "Invalid status"},
		{"author is manager", newRequest(karan, karan, "2024-11-20", "2024-11-21"), http.StatusUnprocessableEntity,
			"author_id and manager_id must be different"},
		{"out of window", newRequest(karan, alice, "2024-12-02", "2024-12-03"), http.StatusUnprocessableEntity,
			"Dates must be in November 2024"},
		{"not the manager", newRequest(alice, karan, "2024-11-20", "2024-11-21"), http.StatusBadRequest,
			"The manager is not the manager of the employee."},
		{"unknown author", newRequest(99, alice, "2024-11-20", "2024-11-21"), http.StatusNotFound, "Employee not found"},
		{"unknown manager", newRequest(karan, 99, "2024-11-20", "2024-11-21"), http.StatusNotFound, "Manager not found"},
		{"too many days", newRequest(karan, alice, "2024-11-18", "2024-11-29"), http.StatusBadRequest,
			"Number of weekdays requested exceeds the number of holidays left"},
		{"bad date", newRequest(karan, alice, "11/20/2024", "2024-11-21"), http.StatusUnprocessableEntity,
			"Invalid vacation_start_date"},
		{"bad json", `{"author_id": "one"}`, http.StatusUnprocessableEntity, "Invalid request body"},
	}

	// Leave Karan with 5 days so "too many days" (10) trips the balance check.
	rec = s.do(t, http.MethodPut, "/api/employees/"+itoa(karan), map[string]int{"holidays_left": 5})
	require.Equal(t, http.StatusOK, rec.Code)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/requests", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.message, errorMessage(t, rec))
		})
	}
	assert.Equal(t, 5, s.holidaysLeft(t, karan), "rejections never touch the balance")
}

func TestRequests_UpdateDates(t *testing.T) {
	s := newMemoryServer(t)
	alice, karan := s.seedTeam(t)

	rec := s.do(t, http.MethodPost, "/api/requests", newRequest(karan, alice, "2024-11-11", "2024-11-12"))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeAs[RequestDTO](t, rec).ID
	assert.Equal(t, 28, s.holidaysLeft(t, karan))

	// WHEN: the pending request is stretched to the whole week
	rec = s.do(t, http.MethodPut, "/api/requests/"+itoa(id), map[string]string{"vacation_end_date": "2024-11-15"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2024-11-15", decodeAs[RequestDTO](t, rec).VacationEndDate)
	assert.Equal(t, 25, s.holidaysLeft(t, karan))

	rec = s.do(t, http.MethodPut, "/api/requests/"+itoa(id), map[string]string{"vacation_end_date": "someday"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/requests/999", map[string]string{"status": "APPROVED"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// TEAM STATUS & SCENARIOS
// =============================================================================

func TestTeamStatus_FromScenario(t *testing.T) {
	s := newSQLiteServer(t)

	rec := s.do(t, http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": "team"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Alice is employee 1. Tuesday of the first week: Karan approved,
	// Mia pending, Noor denied, Oscar nothing.
	rec = s.do(t, http.MethodGet, "/api/managers/1/status/2024-11-05", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	details := decodeAs[StatusDetailsDTO](t, rec)
	assert.Equal(t, "2024-11-05", details.Date)
	assert.Equal(t, 2, details.WorkingCount)
	assert.Equal(t, 1, details.OnLeaveCount)
	assert.Equal(t, 1, details.PendingCount)
	require.Len(t, details.OnLeave, 1)
	assert.Equal(t, "Karan", details.OnLeave[0].Name)
	require.Len(t, details.Pending, 1)
	assert.Equal(t, "Mia", details.Pending[0].Name)

	rec = s.do(t, http.MethodGet, "/api/managers/1/status/2024-11-05/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusSummaryDTO{Working: 2, OnLeave: 1, PendingLeave: 1}, decodeAs[StatusSummaryDTO](t, rec))

	// A day nobody is off.
	rec = s.do(t, http.MethodGet, "/api/managers/1/status/2024-11-28/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusSummaryDTO{Working: 4}, decodeAs[StatusSummaryDTO](t, rec))

	rec = s.do(t, http.MethodGet, "/api/managers/99/status/2024-11-05", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Manager not found", errorMessage(t, rec))

	rec = s.do(t, http.MethodGet, "/api/managers/1/status/tomorrow", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTeamStatus_NoSubordinates(t *testing.T) {
	s := newMemoryServer(t)
	_, karan := s.seedTeam(t)

	rec := s.do(t, http.MethodGet, "/api/managers/"+itoa(karan)+"/status/2024-11-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	details := decodeAs[StatusDetailsDTO](t, rec)
	assert.Empty(t, details.Working)
	assert.NotNil(t, details.Working)
	assert.Zero(t, details.WorkingCount+details.OnLeaveCount+details.PendingCount)
}

func TestScenarios(t *testing.T) {
	for _, sc := range Scenarios() {
		t.Run(sc.ID, func(t *testing.T) {
			// GIVEN: a store with leftovers
			s := newSQLiteServer(t)
			s.seedTeam(t)

			// WHEN: the scenario loads
			rec := s.do(t, http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": sc.ID})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			// THEN: it is current and every balance stays in bounds
			rec = s.do(t, http.MethodGet, "/api/scenarios/current", nil)
			assert.Equal(t, sc.ID, decodeAs[ScenarioDTO](t, rec).ID)

			rec = s.do(t, http.MethodGet, "/api/employees", nil)
			emps := decodeAs[[]EmployeeDTO](t, rec)
			require.NotEmpty(t, emps)
			assert.Equal(t, int64(1), emps[0].ID, "ids restart after reset")
			for _, e := range emps {
				assert.GreaterOrEqual(t, e.HolidaysLeft, 0)
				assert.LessOrEqual(t, e.HolidaysLeft, leave.MaxHolidays)
			}
		})
	}
}

func TestScenarios_UnknownAndReset(t *testing.T) {
	s := newMemoryServer(t)

	rec := s.do(t, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeAs[[]ScenarioDTO](t, rec), len(scenarios))

	rec = s.do(t, http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unknown scenario", errorMessage(t, rec))

	require.NoError(t, s.h.Seed(context.Background(), "default"))
	rec = s.do(t, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/employees", nil)
	assert.Empty(t, decodeAs[[]EmployeeDTO](t, rec))
	rec = s.do(t, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null\n", rec.Body.String())
}
