package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/leave"
)

const movementTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// LockBalance reads holidays_left, taking the row lock on PostgreSQL.
// SQLite transactions already hold the database write lock (BEGIN IMMEDIATE).
func (c *conn) LockBalance(ctx context.Context, employeeID int64) (int, error) {
	query := `SELECT holidays_left FROM employee WHERE id = ?`
	if c.inTx && c.driver == DriverPostgres {
		query += ` FOR UPDATE`
	}
	var left int
	err := c.queryRow(ctx, query, employeeID).Scan(&left)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, leave.ErrNotFound
	}
	if err != nil {
		return 0, translate(fmt.Errorf("failed to lock balance: %w", err))
	}
	return left, nil
}

func (c *conn) SetBalance(ctx context.Context, employeeID int64, holidaysLeft int) error {
	err := c.execOne(ctx, `UPDATE employee SET holidays_left = ? WHERE id = ?`, holidaysLeft, employeeID)
	if err != nil && !errors.Is(err, leave.ErrNotFound) {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return err
}

func (c *conn) AppendMovement(ctx context.Context, m leave.Movement) error {
	var requestID any
	if m.RequestID != 0 {
		requestID = m.RequestID
	}
	_, err := c.exec(ctx, `
		INSERT INTO balance_movement
			(id, employee_id, request_id, kind, delta_value, delta_unit, requested_value, balance_after, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.EmployeeID, requestID, string(m.Kind),
		m.Delta.Value.String(), string(m.Delta.Unit), m.Requested.Value.String(),
		m.BalanceAfter, m.Reason, m.CreatedAt.UTC().Format(movementTimeLayout))
	if err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}
	return nil
}

// ListMovements returns the journal of employeeID, oldest first.
func (c *conn) ListMovements(ctx context.Context, employeeID int64) ([]leave.Movement, error) {
	rows, err := c.query(ctx, `
		SELECT id, employee_id, request_id, kind, delta_value, delta_unit, requested_value, balance_after, reason, created_at
		FROM balance_movement
		WHERE employee_id = ?
		ORDER BY seq`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	out := []leave.Movement{}
	for rows.Next() {
		var (
			m                leave.Movement
			requestID        sql.NullInt64
			kind, unit       string
			delta, requested string
			reason           sql.NullString
			created          string
		)
		if err := rows.Scan(&m.ID, &m.EmployeeID, &requestID, &kind, &delta, &unit, &requested,
			&m.BalanceAfter, &reason, &created); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		m.RequestID = requestID.Int64
		m.Kind = leave.MovementKind(kind)
		m.Reason = reason.String

		if m.Delta, err = parseAmount(delta, unit); err != nil {
			return nil, err
		}
		if m.Requested, err = parseAmount(requested, unit); err != nil {
			return nil, err
		}
		if m.CreatedAt, err = time.Parse(movementTimeLayout, created); err != nil {
			return nil, fmt.Errorf("bad movement created_at %q: %w", created, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func parseAmount(value, unit string) (leave.Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return leave.Amount{}, fmt.Errorf("bad movement amount %q: %w", value, err)
	}
	return leave.Amount{Value: d, Unit: leave.Unit(unit)}, nil
}
