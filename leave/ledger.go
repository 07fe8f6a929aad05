/*
ledger.go - Balance ledger for holiday days

PURPOSE:
  Owns every change to an employee's holidays_left. Each mutation locks the
  employee's balance row, checks the [0, MaxHolidays] bound, writes the new
  value and appends one Movement to the journal, all through the Store it is
  handed. Callers pass the transactional Store of their own WithTx so the
  balance commits or rolls back together with the request change.

BOUNDS:
  Deduct:  fails with ErrInsufficientBalance when holidays_left < days
  Restore: clamps at MaxHolidays; the movement keeps the requested amount so
           a clamped restore stays visible in the journal
  Set:     direct profile edits, fails with ErrBalanceBoundViolation

SEE ALSO:
  - lifecycle.go: Deduct/Restore for request changes
  - directory.go: Set for profile edits, Restore when an approver is deleted
*/
package leave

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// BalanceLedger applies and reverses holiday-day deductions.
type BalanceLedger struct {
	Now   func() time.Time
	NewID func() string
}

// NewBalanceLedger creates a ledger using wall-clock time and random UUIDs.
func NewBalanceLedger() *BalanceLedger {
	return &BalanceLedger{Now: time.Now, NewID: uuid.NewString}
}

// Ref ties a movement to the operation that caused it.
type Ref struct {
	RequestID int64
	Reason    string
}

// Balance returns the current holidays_left of employeeID without locking.
func (l *BalanceLedger) Balance(ctx context.Context, s Store, employeeID int64) (int, error) {
	emp, err := s.GetEmployee(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	if emp == nil {
		return 0, NotFound(EntityEmployee)
	}
	return emp.HolidaysLeft, nil
}

// Deduct removes days from the balance.
func (l *BalanceLedger) Deduct(ctx context.Context, s Store, employeeID int64, days int, ref Ref) (Movement, error) {
	if days < 0 {
		return Movement{}, errBalanceBound()
	}
	current, err := l.lock(ctx, s, employeeID)
	if err != nil {
		return Movement{}, err
	}
	if current < days {
		return Movement{}, errInsufficientBalance()
	}
	return l.apply(ctx, s, employeeID, MovementDeduction, current, current-days, Days(days).Neg(), ref)
}

// Restore gives days back to the balance, clamped at MaxHolidays.
func (l *BalanceLedger) Restore(ctx context.Context, s Store, employeeID int64, days int, ref Ref) (Movement, error) {
	if days < 0 {
		return Movement{}, errBalanceBound()
	}
	current, err := l.lock(ctx, s, employeeID)
	if err != nil {
		return Movement{}, err
	}
	after := current + days
	if after > MaxHolidays {
		after = MaxHolidays
	}
	return l.apply(ctx, s, employeeID, MovementRestoration, current, after, Days(days), ref)
}

// Set overwrites the balance, as done by a profile edit.
func (l *BalanceLedger) Set(ctx context.Context, s Store, employeeID int64, holidaysLeft int, ref Ref) (Movement, error) {
	if holidaysLeft < 0 || holidaysLeft > MaxHolidays {
		return Movement{}, errBalanceBound()
	}
	current, err := l.lock(ctx, s, employeeID)
	if err != nil {
		return Movement{}, err
	}
	return l.apply(ctx, s, employeeID, MovementAdjustment, current, holidaysLeft, Days(holidaysLeft-current), ref)
}

func (l *BalanceLedger) lock(ctx context.Context, s Store, employeeID int64) (int, error) {
	current, err := s.LockBalance(ctx, employeeID)
	if errors.Is(err, ErrNotFound) {
		return 0, NotFound(EntityEmployee)
	}
	return current, err
}

func (l *BalanceLedger) apply(ctx context.Context, s Store, employeeID int64, kind MovementKind, before, after int, requested Amount, ref Ref) (Movement, error) {
	if after != before {
		if err := s.SetBalance(ctx, employeeID, after); err != nil {
			return Movement{}, err
		}
	}

	m := Movement{
		ID:           l.NewID(),
		EmployeeID:   employeeID,
		RequestID:    ref.RequestID,
		Kind:         kind,
		Delta:        Days(after - before),
		Requested:    requested,
		BalanceAfter: after,
		Reason:       ref.Reason,
		CreatedAt:    l.Now().UTC(),
	}
	if err := s.AppendMovement(ctx, m); err != nil {
		return Movement{}, err
	}
	return m, nil
}
