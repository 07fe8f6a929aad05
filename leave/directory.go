/*
directory.go - Employee, manager and relation management

PURPOSE:
  Thin rules over the DirectoryStore: existence checks, the holiday bound
  on profiles, and one-manager-per-employee relations. Creating an
  employee also creates its relation in the same transaction.

RULES:
  - An employee is created under an existing manager role, or top-level
    (no relation) when no manager is given
  - holidays_left stays within [0, MaxHolidays]; edits go through the ledger
    so the movement journal sees them, and profile edits merge onto the
    locked balance row
  - Deleting an approver gives back the days of the live requests they held
  - Writes re-run per RetryPolicy when they lose a concurrency race
  - A relation needs an existing employee, an existing manager role and
    distinct ids; each employee has at most one manager (unique employee_id)
*/
package leave

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DirectoryService manages employees, manager roles and relations.
type DirectoryService struct {
	Store  TxStore
	Ledger *BalanceLedger
	Retry  RetryPolicy
	Logger *zap.Logger
}

// NewDirectoryService builds a service over store. A zero retry policy
// falls back to DefaultRetryPolicy.
func NewDirectoryService(store TxStore, retry RetryPolicy, logger *zap.Logger) *DirectoryService {
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryPolicy
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{Store: store, Ledger: NewBalanceLedger(), Retry: retry, Logger: logger.Named("directory")}
}

// NewEmployee carries the fields of an employee registration.
type NewEmployee struct {
	Name           string
	Age            int
	ContactDetails string
	HolidaysLeft   int
	ManagerID      int64 // employee id of an existing manager; 0 for a top-level employee
}

// EmployeeUpdate is a partial profile edit; nil fields are left unchanged.
type EmployeeUpdate struct {
	ID             int64
	Name           *string
	Age            *int
	ContactDetails *string
	HolidaysLeft   *int
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// CreateEmployee registers an employee under in.ManagerID, or without a
// manager when it is zero.
func (d *DirectoryService) CreateEmployee(ctx context.Context, in NewEmployee) (*Employee, error) {
	if in.HolidaysLeft < 0 || in.HolidaysLeft > MaxHolidays {
		return nil, errBalanceBound()
	}

	var out Employee
	err := d.Retry.run(ctx, d.Logger, "create employee", func() error {
		return d.Store.WithTx(ctx, func(s Store) error {
			if in.ManagerID != 0 {
				mgr, err := s.GetManagerByEmployee(ctx, in.ManagerID)
				if err != nil {
					return err
				}
				if mgr == nil {
					return NotFound(EntityManager)
				}
			}

			emp := Employee{
				Name:           in.Name,
				Age:            in.Age,
				ContactDetails: in.ContactDetails,
				HolidaysLeft:   in.HolidaysLeft,
			}
			id, err := s.InsertEmployee(ctx, emp)
			if err != nil {
				return err
			}
			emp.ID = id

			if in.ManagerID != 0 {
				if _, err := s.InsertRelation(ctx, Relation{ManagerID: in.ManagerID, EmployeeID: id}); err != nil {
					return err
				}
			}
			out = emp
			return nil
		})
	})
	if err != nil {
		return nil, wrapStore("create employee", err)
	}

	d.Logger.Info("employee created", zap.Int64("employee_id", out.ID), zap.Int64("manager_id", in.ManagerID))
	return &out, nil
}

// GetEmployee returns one employee.
func (d *DirectoryService) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	emp, err := d.Store.GetEmployee(ctx, id)
	if err != nil {
		return nil, wrapStore("get employee", err)
	}
	if emp == nil {
		return nil, NotFound(EntityEmployee)
	}
	return emp, nil
}

// ListEmployees returns all employees.
func (d *DirectoryService) ListEmployees(ctx context.Context) ([]Employee, error) {
	emps, err := d.Store.ListEmployees(ctx)
	if err != nil {
		return nil, wrapStore("list employees", err)
	}
	return emps, nil
}

// UpdateEmployee applies a profile edit. The balance row is locked first
// and the edit is merged onto it, so a concurrent request change is never
// overwritten; a changed balance is journaled as an adjustment.
func (d *DirectoryService) UpdateEmployee(ctx context.Context, in EmployeeUpdate) (*Employee, error) {
	if in.HolidaysLeft != nil && (*in.HolidaysLeft < 0 || *in.HolidaysLeft > MaxHolidays) {
		return nil, errBalanceBound()
	}

	var out Employee
	err := d.Retry.run(ctx, d.Logger, "update employee", func() error {
		return d.Store.WithTx(ctx, func(s Store) error {
			balance, err := d.Ledger.lock(ctx, s, in.ID)
			if err != nil {
				return err
			}
			cur, err := s.GetEmployee(ctx, in.ID)
			if err != nil {
				return err
			}
			if cur == nil {
				return NotFound(EntityEmployee)
			}

			next := *cur
			next.HolidaysLeft = balance
			if in.Name != nil {
				next.Name = *in.Name
			}
			if in.Age != nil {
				next.Age = *in.Age
			}
			if in.ContactDetails != nil {
				next.ContactDetails = *in.ContactDetails
			}
			if in.HolidaysLeft != nil && *in.HolidaysLeft != balance {
				if _, err := d.Ledger.Set(ctx, s, in.ID, *in.HolidaysLeft, Ref{Reason: "profile edit"}); err != nil {
					return err
				}
				next.HolidaysLeft = *in.HolidaysLeft
			}
			if err := s.UpdateEmployee(ctx, next); err != nil {
				return err
			}
			out = next
			return nil
		})
	})
	if err != nil {
		return nil, wrapStore("update employee", err)
	}
	return &out, nil
}

// DeleteEmployee removes an employee with its role, relations and requests.
// Live requests the employee was approving are removed as well, and their
// authors get the business days back first.
func (d *DirectoryService) DeleteEmployee(ctx context.Context, id int64) error {
	var restored int
	err := d.Retry.run(ctx, d.Logger, "delete employee", func() error {
		restored = 0
		return d.Store.WithTx(ctx, func(s Store) error {
			held, err := s.FindRequests(ctx, RequestFilter{
				ManagerIDs: []int64{id},
				Statuses:   []Status{StatusPending, StatusApproved},
			})
			if err != nil {
				return err
			}
			for _, r := range held {
				days, err := CountBusinessDays(r.VacationStartDate, r.VacationEndDate)
				if err != nil {
					return err
				}
				ref := Ref{RequestID: r.ID, Reason: "approver deleted"}
				if _, err := d.Ledger.Restore(ctx, s, r.AuthorID, days, ref); err != nil {
					return err
				}
				restored += days
			}
			return s.DeleteEmployee(ctx, id)
		})
	})
	if err != nil {
		if IsNotFound(err) {
			return NotFound(EntityEmployee)
		}
		return wrapStore("delete employee", err)
	}
	d.Logger.Info("employee deleted", zap.Int64("employee_id", id), zap.Int("restored_days", restored))
	return nil
}

// BalanceHistory returns the movement journal of an employee.
func (d *DirectoryService) BalanceHistory(ctx context.Context, employeeID int64) ([]Movement, error) {
	if _, err := d.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	ms, err := d.Store.ListMovements(ctx, employeeID)
	if err != nil {
		return nil, wrapStore("list movements", err)
	}
	return ms, nil
}

// =============================================================================
// MANAGERS
// =============================================================================

// CreateManager grants the manager role to an existing employee.
func (d *DirectoryService) CreateManager(ctx context.Context, employeeID int64) (*Manager, error) {
	if _, err := d.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	m := Manager{EmployeeID: employeeID}
	id, err := d.Store.InsertManager(ctx, m)
	if err != nil {
		return nil, wrapStore("create manager", err)
	}
	m.ID = id
	d.Logger.Info("manager created", zap.Int64("manager_id", id), zap.Int64("employee_id", employeeID))
	return &m, nil
}

// GetManager returns a manager role by its own id.
func (d *DirectoryService) GetManager(ctx context.Context, id int64) (*Manager, error) {
	m, err := d.Store.GetManager(ctx, id)
	if err != nil {
		return nil, wrapStore("get manager", err)
	}
	if m == nil {
		return nil, NotFound(EntityManager)
	}
	return m, nil
}

// ListManagers returns all manager roles.
func (d *DirectoryService) ListManagers(ctx context.Context) ([]Manager, error) {
	ms, err := d.Store.ListManagers(ctx)
	if err != nil {
		return nil, wrapStore("list managers", err)
	}
	return ms, nil
}

// DeleteManager revokes a manager role and its relations.
func (d *DirectoryService) DeleteManager(ctx context.Context, id int64) error {
	if err := d.Store.DeleteManager(ctx, id); err != nil {
		if IsNotFound(err) {
			return NotFound(EntityManager)
		}
		return wrapStore("delete manager", err)
	}
	return nil
}

// =============================================================================
// RELATIONS
// =============================================================================

// CreateRelation places employeeID under managerID (the manager's employee id).
func (d *DirectoryService) CreateRelation(ctx context.Context, managerID, employeeID int64) (*Relation, error) {
	if managerID == employeeID {
		return nil, errSelfManaged()
	}

	var out Relation
	err := d.Retry.run(ctx, d.Logger, "create relation", func() error {
		return d.Store.WithTx(ctx, func(s Store) error {
			emp, err := s.GetEmployee(ctx, employeeID)
			if err != nil {
				return err
			}
			if emp == nil {
				return NotFound(EntityEmployee)
			}
			mgr, err := s.GetManagerByEmployee(ctx, managerID)
			if err != nil {
				return err
			}
			if mgr == nil {
				return NotFound(EntityManager)
			}

			rel := Relation{ManagerID: managerID, EmployeeID: employeeID}
			id, err := s.InsertRelation(ctx, rel)
			if err != nil {
				return err
			}
			rel.ID = id
			out = rel
			return nil
		})
	})
	if err != nil {
		return nil, wrapStore("create relation", err)
	}
	return &out, nil
}

// ManagerForEmployee returns the relation of employeeID.
func (d *DirectoryService) ManagerForEmployee(ctx context.Context, employeeID int64) (*Relation, error) {
	if _, err := d.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	rel, err := d.Store.GetRelation(ctx, employeeID)
	if err != nil {
		return nil, wrapStore("get relation", err)
	}
	if rel == nil {
		return nil, NotFound(EntityRelation)
	}
	return rel, nil
}

// TeamMember is an employee together with all of its requests.
type TeamMember struct {
	Employee Employee
	Requests []Request
}

// ListTeam returns the employees under a manager role (by role id) with their requests.
func (d *DirectoryService) ListTeam(ctx context.Context, managerRoleID int64) ([]TeamMember, error) {
	mgr, err := d.GetManager(ctx, managerRoleID)
	if err != nil {
		return nil, err
	}
	team, err := d.Store.ListTeam(ctx, mgr.EmployeeID)
	if err != nil {
		return nil, wrapStore("list team", err)
	}

	out := make([]TeamMember, 0, len(team))
	for _, e := range team {
		reqs, err := d.Store.FindRequests(ctx, RequestFilter{AuthorIDs: []int64{e.ID}})
		if err != nil {
			return nil, wrapStore("list team", err)
		}
		if reqs == nil {
			reqs = []Request{}
		}
		out = append(out, TeamMember{Employee: e, Requests: reqs})
	}
	return out, nil
}

// wrapStore adds op context to infrastructure errors, leaving rule errors
// and store conflicts recognisable.
func wrapStore(op string, err error) error {
	var rule *RuleError
	if errors.As(err, &rule) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
