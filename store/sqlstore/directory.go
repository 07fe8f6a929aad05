package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

const employeeColumns = `id, name, age, contact_details, holidays_left`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (leave.Employee, error) {
	var e leave.Employee
	err := row.Scan(&e.ID, &e.Name, &e.Age, &e.ContactDetails, &e.HolidaysLeft)
	return e, err
}

func (c *conn) GetEmployee(ctx context.Context, id int64) (*leave.Employee, error) {
	e, err := scanEmployee(c.queryRow(ctx, `SELECT `+employeeColumns+` FROM employee WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(fmt.Errorf("failed to get employee: %w", err))
	}
	return &e, nil
}

func (c *conn) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	return c.listEmployees(ctx, `SELECT `+employeeColumns+` FROM employee ORDER BY id`)
}

func (c *conn) listEmployees(ctx context.Context, query string, args ...any) ([]leave.Employee, error) {
	rows, err := c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	out := []leave.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (c *conn) InsertEmployee(ctx context.Context, e leave.Employee) (int64, error) {
	id, err := c.insertReturningID(ctx,
		`INSERT INTO employee (name, age, contact_details, holidays_left) VALUES (?, ?, ?, ?)`,
		e.Name, e.Age, e.ContactDetails, e.HolidaysLeft)
	if err != nil {
		return 0, fmt.Errorf("failed to insert employee: %w", err)
	}
	return id, nil
}

func (c *conn) UpdateEmployee(ctx context.Context, e leave.Employee) error {
	err := c.execOne(ctx,
		`UPDATE employee SET name = ?, age = ?, contact_details = ?, holidays_left = ? WHERE id = ?`,
		e.Name, e.Age, e.ContactDetails, e.HolidaysLeft, e.ID)
	if err != nil && !errors.Is(err, leave.ErrNotFound) {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return err
}

func (c *conn) DeleteEmployee(ctx context.Context, id int64) error {
	err := c.execOne(ctx, `DELETE FROM employee WHERE id = ?`, id)
	if err != nil && !errors.Is(err, leave.ErrNotFound) {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return err
}

// =============================================================================
// MANAGERS
// =============================================================================

func (c *conn) getManager(ctx context.Context, where string, arg int64) (*leave.Manager, error) {
	var m leave.Manager
	err := c.queryRow(ctx, `SELECT id, employee_id FROM manager WHERE `+where+` = ?`, arg).Scan(&m.ID, &m.EmployeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(fmt.Errorf("failed to get manager: %w", err))
	}
	return &m, nil
}

func (c *conn) GetManager(ctx context.Context, id int64) (*leave.Manager, error) {
	return c.getManager(ctx, "id", id)
}

func (c *conn) GetManagerByEmployee(ctx context.Context, employeeID int64) (*leave.Manager, error) {
	return c.getManager(ctx, "employee_id", employeeID)
}

func (c *conn) ListManagers(ctx context.Context) ([]leave.Manager, error) {
	rows, err := c.query(ctx, `SELECT id, employee_id FROM manager ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query managers: %w", err)
	}
	defer rows.Close()

	out := []leave.Manager{}
	for rows.Next() {
		var m leave.Manager
		if err := rows.Scan(&m.ID, &m.EmployeeID); err != nil {
			return nil, fmt.Errorf("failed to scan manager: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (c *conn) InsertManager(ctx context.Context, m leave.Manager) (int64, error) {
	id, err := c.insertReturningID(ctx, `INSERT INTO manager (employee_id) VALUES (?)`, m.EmployeeID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert manager: %w", err)
	}
	return id, nil
}

func (c *conn) DeleteManager(ctx context.Context, id int64) error {
	err := c.execOne(ctx, `DELETE FROM manager WHERE id = ?`, id)
	if err != nil && !errors.Is(err, leave.ErrNotFound) {
		return fmt.Errorf("failed to delete manager: %w", err)
	}
	return err
}

// =============================================================================
// RELATIONS
// =============================================================================

func (c *conn) InsertRelation(ctx context.Context, r leave.Relation) (int64, error) {
	id, err := c.insertReturningID(ctx,
		`INSERT INTO manager_employee_relation (manager_id, employee_id) VALUES (?, ?)`,
		r.ManagerID, r.EmployeeID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert relation: %w", err)
	}
	return id, nil
}

func (c *conn) GetRelation(ctx context.Context, employeeID int64) (*leave.Relation, error) {
	var r leave.Relation
	err := c.queryRow(ctx,
		`SELECT id, manager_id, employee_id FROM manager_employee_relation WHERE employee_id = ?`,
		employeeID).Scan(&r.ID, &r.ManagerID, &r.EmployeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(fmt.Errorf("failed to get relation: %w", err))
	}
	return &r, nil
}

func (c *conn) IsManagerOf(ctx context.Context, managerID, employeeID int64) (bool, error) {
	var n int
	err := c.queryRow(ctx,
		`SELECT COUNT(*) FROM manager_employee_relation WHERE manager_id = ? AND employee_id = ?`,
		managerID, employeeID).Scan(&n)
	if err != nil {
		return false, translate(fmt.Errorf("failed to check relation: %w", err))
	}
	return n > 0, nil
}

func (c *conn) ListTeam(ctx context.Context, managerID int64) ([]leave.Employee, error) {
	return c.listEmployees(ctx, `
		SELECT e.id, e.name, e.age, e.contact_details, e.holidays_left
		FROM employee e
		JOIN manager_employee_relation r ON r.employee_id = e.id
		WHERE r.manager_id = ?
		ORDER BY e.id`, managerID)
}
