/*
dto.go - Data Transfer Objects for the HTTP API

PURPOSE:
  Defines the JSON shapes of requests and responses. DTOs decouple the wire
  format from the leave package's types, so field names stay snake_case and
  dates travel as strings.

DATE FORMATS:
  vacation_start_date / vacation_end_date  YYYY-MM-DD (RFC 3339 accepted on input)
  request_created_date                     RFC 3339
  movement created_at                      RFC 3339 with nanoseconds

CONVENTIONS:
  - Create*Request: POST bodies
  - Update*Request: PUT bodies, nil fields are left unchanged
  - *DTO: response bodies
*/
package api

import (
	"time"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee.
type EmployeeDTO struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Age            int    `json:"age"`
	ContactDetails string `json:"contact_details"`
	HolidaysLeft   int    `json:"holidays_left"`
}

// CreateEmployeeRequest registers an employee. ManagerID is the employee id
// of an existing manager; omit it for a top-level employee.
type CreateEmployeeRequest struct {
	Name           string `json:"name"`
	Age            int    `json:"age"`
	ContactDetails string `json:"contact_details"`
	HolidaysLeft   int    `json:"holidays_left"`
	ManagerID      int64  `json:"manager_id,omitempty"`
}

type UpdateEmployeeRequest struct {
	Name           *string `json:"name"`
	Age            *int    `json:"age"`
	ContactDetails *string `json:"contact_details"`
	HolidaysLeft   *int    `json:"holidays_left"`
}

// EmployeeWithRequestsDTO is a team member with its requests.
type EmployeeWithRequestsDTO struct {
	EmployeeDTO
	Requests []RequestDTO `json:"requests"`
}

// MovementDTO is one line of the balance journal.
type MovementDTO struct {
	ID           string `json:"id"`
	EmployeeID   int64  `json:"employee_id"`
	RequestID    int64  `json:"request_id,omitempty"`
	Kind         string `json:"kind"`
	Delta        string `json:"delta"`
	Requested    string `json:"requested"`
	Unit         string `json:"unit"`
	BalanceAfter int    `json:"balance_after"`
	Clamped      bool   `json:"clamped"`
	Reason       string `json:"reason,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// =============================================================================
// MANAGERS & RELATIONS
// =============================================================================

type ManagerDTO struct {
	ID         int64 `json:"id"`
	EmployeeID int64 `json:"employee_id"`
}

type CreateManagerRequest struct {
	EmployeeID int64 `json:"employee_id"`
}

// RelationDTO links an employee to its manager (both employee ids).
type RelationDTO struct {
	ID         int64 `json:"id"`
	ManagerID  int64 `json:"manager_id"`
	EmployeeID int64 `json:"employee_id"`
}

type CreateRelationRequest struct {
	ManagerID  int64 `json:"manager_id"`
	EmployeeID int64 `json:"employee_id"`
}

// =============================================================================
// REQUESTS
// =============================================================================

// RequestDTO represents a vacation request.
type RequestDTO struct {
	ID                 int64  `json:"id"`
	AuthorID           int64  `json:"author_id"`
	Status             string `json:"status"`
	ManagerID          int64  `json:"manager_id"`
	RequestCreatedDate string `json:"request_created_date"`
	VacationStartDate  string `json:"vacation_start_date"`
	VacationEndDate    string `json:"vacation_end_date"`
}

// CreateRequestRequest submits a vacation request. Status defaults to PENDING.
type CreateRequestRequest struct {
	AuthorID           int64   `json:"author_id"`
	ManagerID          int64   `json:"manager_id"`
	Status             string  `json:"status,omitempty"`
	RequestCreatedDate *string `json:"request_created_date,omitempty"`
	VacationStartDate  string  `json:"vacation_start_date"`
	VacationEndDate    string  `json:"vacation_end_date"`
}

type UpdateRequestRequest struct {
	Status            *string `json:"status"`
	ManagerID         *int64  `json:"manager_id"`
	VacationStartDate *string `json:"vacation_start_date"`
	VacationEndDate   *string `json:"vacation_end_date"`
}

// =============================================================================
// TEAM STATUS
// =============================================================================

// EmployeeStatusDTO is a team member with the requests covering the queried day.
type EmployeeStatusDTO struct {
	EmployeeDTO
	Requests []RequestDTO `json:"requests"`
}

type StatusDetailsDTO struct {
	Date         string              `json:"date"`
	Working      []EmployeeStatusDTO `json:"working"`
	OnLeave      []EmployeeStatusDTO `json:"on_leave"`
	Pending      []EmployeeStatusDTO `json:"pending"`
	WorkingCount int                 `json:"working_count"`
	OnLeaveCount int                 `json:"on_leave_count"`
	PendingCount int                 `json:"pending_count"`
}

type StatusSummaryDTO struct {
	Working      int `json:"working"`
	OnLeave      int `json:"on_leave"`
	PendingLeave int `json:"pending_leave"`
}

// =============================================================================
// MISC
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HealthDTO mirrors the shape the frontend polls.
type HealthDTO struct {
	Status string `json:"status"`
	Result int    `json:"result"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// MessageResponse acknowledges a delete.
type MessageResponse struct {
	Message string `json:"message"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e leave.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:             e.ID,
		Name:           e.Name,
		Age:            e.Age,
		ContactDetails: e.ContactDetails,
		HolidaysLeft:   e.HolidaysLeft,
	}
}

func toEmployeeDTOs(emps []leave.Employee) []EmployeeDTO {
	dtos := make([]EmployeeDTO, len(emps))
	for i, e := range emps {
		dtos[i] = toEmployeeDTO(e)
	}
	return dtos
}

func toRequestDTO(r leave.Request) RequestDTO {
	return RequestDTO{
		ID:                 r.ID,
		AuthorID:           r.AuthorID,
		Status:             string(r.Status),
		ManagerID:          r.ManagerID,
		RequestCreatedDate: r.RequestCreatedDate.UTC().Format(time.RFC3339),
		VacationStartDate:  r.VacationStartDate.Format(leave.DateLayout),
		VacationEndDate:    r.VacationEndDate.Format(leave.DateLayout),
	}
}

func toRequestDTOs(reqs []leave.Request) []RequestDTO {
	dtos := make([]RequestDTO, len(reqs))
	for i, r := range reqs {
		dtos[i] = toRequestDTO(r)
	}
	return dtos
}

func toManagerDTO(m leave.Manager) ManagerDTO {
	return ManagerDTO{ID: m.ID, EmployeeID: m.EmployeeID}
}

func toRelationDTO(r leave.Relation) RelationDTO {
	return RelationDTO{ID: r.ID, ManagerID: r.ManagerID, EmployeeID: r.EmployeeID}
}

func toMovementDTO(m leave.Movement) MovementDTO {
	return MovementDTO{
		ID:           m.ID,
		EmployeeID:   m.EmployeeID,
		RequestID:    m.RequestID,
		Kind:         string(m.Kind),
		Delta:        m.Delta.Value.String(),
		Requested:    m.Requested.Value.String(),
		Unit:         string(m.Delta.Unit),
		BalanceAfter: m.BalanceAfter,
		Clamped:      m.Clamped(),
		Reason:       m.Reason,
		CreatedAt:    m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toEmployeeStatusDTOs(in []leave.EmployeeStatus) []EmployeeStatusDTO {
	dtos := make([]EmployeeStatusDTO, len(in))
	for i, es := range in {
		dtos[i] = EmployeeStatusDTO{
			EmployeeDTO: toEmployeeDTO(es.Employee),
			Requests:    toRequestDTOs(es.Requests),
		}
	}
	return dtos
}

func toStatusDetailsDTO(ts leave.TeamStatus) StatusDetailsDTO {
	sum := ts.Summary()
	return StatusDetailsDTO{
		Date:         ts.Date.Format(leave.DateLayout),
		Working:      toEmployeeStatusDTOs(ts.Working),
		OnLeave:      toEmployeeStatusDTOs(ts.OnLeave),
		Pending:      toEmployeeStatusDTOs(ts.Pending),
		WorkingCount: sum.Working,
		OnLeaveCount: sum.OnLeave,
		PendingCount: sum.Pending,
	}
}
