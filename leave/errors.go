/*
errors.go - Error kinds for the leave engine

PURPOSE:
  Every business-rule failure has a stable kind (a sentinel usable with
  errors.Is) and an exact human-readable message. Callers such as the HTTP
  layer map the kind to a status code and echo the message unchanged.

ERROR CATEGORIES:
  1. Not found - missing employee, manager, relation or request
  2. Business rules - range, overlap, balance, transitions (400 at the edge)
  3. Malformed input - bad status, out-of-window dates, self-management (422)
  4. Store - conflicts and transient concurrency failures

USAGE:
  if errors.Is(err, leave.ErrOverlapPending) { ... }

  var rule *leave.RuleError
  if errors.As(err, &rule) {
      fmt.Println(rule.Message)
  }

SEE ALSO:
  - api/errors.go: kind -> HTTP status mapping
  - store/sqlstore/errors.go: driver error translation
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidRange          = errors.New("invalid date range")
	ErrWrongStatusOnCreate   = errors.New("wrong status on create")
	ErrNotManagerOfEmployee  = errors.New("not manager of employee")
	ErrOverlapPending        = errors.New("overlapping pending request")
	ErrOverlapApproved       = errors.New("overlapping approved request")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrOutOfWindow           = errors.New("date outside enrollment window")
	ErrBalanceBoundViolation = errors.New("balance bound violation")
	ErrAuthorIsManager       = errors.New("author is manager")
	ErrSelfManaged           = errors.New("employee cannot manage itself")
	ErrInvalidStatus         = errors.New("invalid status")

	// ErrConflict is returned by stores on uniqueness violations.
	ErrConflict = errors.New("conflict")

	// ErrConcurrentModification is returned by stores when a transaction lost
	// a lock or serialization race. Safe to retry.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// Entities named by NotFound errors.
const (
	EntityEmployee = "employee"
	EntityManager  = "manager"
	EntityRelation = "relation"
	EntityRequest  = "request"
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RuleError is a business-rule failure. Error returns Message verbatim.
type RuleError struct {
	Kind    error
	Entity  string // set for ErrNotFound
	From    Status // set for ErrInvalidTransition
	Message string
}

func (e *RuleError) Error() string { return e.Message }
func (e *RuleError) Unwrap() error { return e.Kind }

func newRule(kind error, msg string) *RuleError {
	return &RuleError{Kind: kind, Message: msg}
}

// NotFound builds the not-found error for entity.
func NotFound(entity string) *RuleError {
	var msg string
	switch entity {
	case EntityEmployee:
		msg = "Employee not found"
	case EntityManager:
		msg = "Manager not found"
	case EntityRelation:
		msg = "Manager not found for the employee"
	case EntityRequest:
		msg = "Request not found"
	default:
		msg = fmt.Sprintf("%s not found", entity)
	}
	return &RuleError{Kind: ErrNotFound, Entity: entity, Message: msg}
}

// InvalidTransition builds the error for editing a request in state from.
func InvalidTransition(from Status) *RuleError {
	msg := fmt.Sprintf("%s requests cannot be updated", from)
	switch from {
	case StatusDenied:
		msg = "Denied requests cannot be updated"
	case StatusApproved:
		msg = "Approved requests cannot be updated"
	}
	return &RuleError{Kind: ErrInvalidTransition, From: from, Message: msg}
}

func errInvalidRange() error {
	return newRule(ErrInvalidRange, "Vacation start date cannot be later than vacation end date.")
}

func errWrongStatusOnCreate() error {
	return newRule(ErrWrongStatusOnCreate, "Request status must be PENDING")
}

func errNotManagerOfEmployee() error {
	return newRule(ErrNotManagerOfEmployee, "The manager is not the manager of the employee.")
}

func errOverlapPending() error {
	return newRule(ErrOverlapPending, "There is an overlapping pending leave request for this employee.")
}

func errOverlapApproved() error {
	return newRule(ErrOverlapApproved, "There is an overlapping approved leave request for this employee.")
}

func errInsufficientBalance() error {
	return newRule(ErrInsufficientBalance, "Number of weekdays requested exceeds the number of holidays left")
}

func errAuthorIsManager() error {
	return newRule(ErrAuthorIsManager, "author_id and manager_id must be different")
}

func errSelfManaged() error {
	return newRule(ErrSelfManaged, "manager_id and employee_id must be different")
}

func errBalanceBound() error {
	return newRule(ErrBalanceBoundViolation, fmt.Sprintf("Holidays left should be between 0 and %d", MaxHolidays))
}

func errInvalidStatus(s Status) error {
	return newRule(ErrInvalidStatus, fmt.Sprintf("Invalid status %q: must be one of PENDING, APPROVED, DENIED", s))
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation returns true for malformed-input failures.
func IsValidation(err error) bool {
	return errors.Is(err, ErrOutOfWindow) ||
		errors.Is(err, ErrAuthorIsManager) ||
		errors.Is(err, ErrSelfManaged) ||
		errors.Is(err, ErrInvalidStatus)
}

// IsClientError returns true for business-rule violations.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrWrongStatusOnCreate) ||
		errors.Is(err, ErrNotManagerOfEmployee) ||
		errors.Is(err, ErrOverlapPending) ||
		errors.Is(err, ErrOverlapApproved) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrBalanceBoundViolation)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
