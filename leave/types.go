/*
Package leave implements the leave-request lifecycle and holiday balance accounting.

PURPOSE:
  Employees request vacation days, managers approve or deny them, and every
  employee carries a bounded holiday balance. This package owns the rules:
  request validation, overlap detection, balance deduction/restoration and
  the fixed PENDING -> APPROVED | DENIED state machine.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee / Manager / Relation: the directory records the engine reads
  - Request: a vacation request with its lifecycle Status
  - Amount: a quantity of days, used by the balance movement journal
  - Movement: one journal line per balance mutation

DESIGN PRINCIPLES:
  1. Persistence is injected (see store.go), never global
  2. Every balance mutation happens inside the transaction of the request
     change that caused it
  3. Business failures carry their exact user-facing message (see errors.go)

SEE ALSO:
  - lifecycle.go: RequestService, the orchestrating engine
  - ledger.go: BalanceLedger
  - status.go: StatusAggregator
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxHolidays is the upper bound of an employee's holiday balance.
const MaxHolidays = 30

// =============================================================================
// DIRECTORY RECORDS
// =============================================================================

// Employee is a person who can author requests and, with a Manager role,
// approve them.
type Employee struct {
	ID             int64
	Name           string
	Age            int
	ContactDetails string
	HolidaysLeft   int
}

// Manager is the manager role held by an employee.
type Manager struct {
	ID         int64
	EmployeeID int64
}

// Relation links an employee to its single manager. ManagerID is the
// manager's employee id.
type Relation struct {
	ID         int64
	ManagerID  int64
	EmployeeID int64
}

// =============================================================================
// REQUESTS
// =============================================================================

// Status is the lifecycle state of a Request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDenied   Status = "DENIED"
)

// Valid reports whether s is one of the three lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	}
	return false
}

// Terminal reports whether no further edits are allowed in state s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusDenied
}

// Request is a vacation request. Vacation dates are calendar days (UTC midnight).
type Request struct {
	ID                 int64
	AuthorID           int64
	ManagerID          int64
	Status             Status
	RequestCreatedDate time.Time
	VacationStartDate  time.Time
	VacationEndDate    time.Time
}

// Covers reports whether day falls inside the request, both ends inclusive.
func (r Request) Covers(day time.Time) bool {
	d := Day(day)
	return !d.Before(r.VacationStartDate) && !d.After(r.VacationEndDate)
}

// Overlaps reports whether [start, end] intersects the request's vacation span.
func (r Request) Overlaps(start, end time.Time) bool {
	return !r.VacationStartDate.After(Day(end)) && !r.VacationEndDate.Before(Day(start))
}

// =============================================================================
// AMOUNT - Quantity of days for the balance journal
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const UnitDays Unit = "days"

// Days builds an Amount of n days.
func Days(n int) Amount {
	return Amount{Value: decimal.NewFromInt(int64(n)), Unit: UnitDays}
}

func (a Amount) Neg() Amount         { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsZero() bool        { return a.Value.IsZero() }
func (a Amount) Equal(b Amount) bool { return a.Unit == b.Unit && a.Value.Equal(b.Value) }
func (a Amount) String() string      { return a.Value.String() + " " + string(a.Unit) }

// =============================================================================
// MOVEMENTS - Append-only balance journal
// =============================================================================

type MovementKind string

const (
	MovementDeduction   MovementKind = "deduction"
	MovementRestoration MovementKind = "restoration"
	MovementAdjustment  MovementKind = "adjustment"
)

// Movement records one balance mutation. Delta is what was applied;
// Requested is what the caller asked for. They differ only when a
// restoration was clamped at MaxHolidays.
type Movement struct {
	ID           string
	EmployeeID   int64
	RequestID    int64 // 0 when not tied to a request
	Kind         MovementKind
	Delta        Amount
	Requested    Amount
	BalanceAfter int
	Reason       string
	CreatedAt    time.Time
}

// Clamped reports whether the applied delta is smaller than the requested one.
func (m Movement) Clamped() bool {
	return !m.Delta.Equal(m.Requested)
}

// =============================================================================
// DATES
// =============================================================================

// DateLayout is the wire and storage format of a calendar day.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate returns the calendar day y-m-d.
func NewDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the day.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}
