// Package memory provides an in-memory leave.TxStore (for testing/dev).
//
// It mirrors the constraints of the SQL schema: unique employee names,
// one manager role per employee, one relation per employee, and cascading
// deletes from employees and manager roles.
package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// STATE
// =============================================================================

type data struct {
	employees map[int64]leave.Employee
	managers  map[int64]leave.Manager
	relations map[int64]leave.Relation
	requests  map[int64]leave.Request
	movements []leave.Movement
	nextID    map[string]int64
}

func newData() *data {
	return &data{
		employees: make(map[int64]leave.Employee),
		managers:  make(map[int64]leave.Manager),
		relations: make(map[int64]leave.Relation),
		requests:  make(map[int64]leave.Request),
		nextID:    make(map[string]int64),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.employees {
		c.employees[k] = v
	}
	for k, v := range d.managers {
		c.managers[k] = v
	}
	for k, v := range d.relations {
		c.relations[k] = v
	}
	for k, v := range d.requests {
		c.requests[k] = v
	}
	c.movements = append([]leave.Movement{}, d.movements...)
	for k, v := range d.nextID {
		c.nextID[k] = v
	}
	return c
}

func (d *data) id(table string) int64 {
	d.nextID[table]++
	return d.nextID[table]
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{leave.ErrConflict}, args...)...)
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (d *data) GetEmployee(_ context.Context, id int64) (*leave.Employee, error) {
	e, ok := d.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (d *data) ListEmployees(_ context.Context) ([]leave.Employee, error) {
	out := make([]leave.Employee, 0, len(d.employees))
	for _, id := range sortedKeys(d.employees) {
		out = append(out, d.employees[id])
	}
	return out, nil
}

func (d *data) nameTaken(name string, except int64) bool {
	for id, e := range d.employees {
		if id != except && e.Name == name {
			return true
		}
	}
	return false
}

func (d *data) InsertEmployee(_ context.Context, e leave.Employee) (int64, error) {
	if d.nameTaken(e.Name, 0) {
		return 0, conflict("employee name %q already exists", e.Name)
	}
	e.ID = d.id("employee")
	d.employees[e.ID] = e
	return e.ID, nil
}

func (d *data) UpdateEmployee(_ context.Context, e leave.Employee) error {
	if _, ok := d.employees[e.ID]; !ok {
		return leave.ErrNotFound
	}
	if d.nameTaken(e.Name, e.ID) {
		return conflict("employee name %q already exists", e.Name)
	}
	d.employees[e.ID] = e
	return nil
}

// DeleteEmployee cascades to the employee's manager role, relations,
// requests and movements.
func (d *data) DeleteEmployee(_ context.Context, id int64) error {
	if _, ok := d.employees[id]; !ok {
		return leave.ErrNotFound
	}
	delete(d.employees, id)

	for mid, m := range d.managers {
		if m.EmployeeID == id {
			d.deleteManager(mid)
		}
	}
	for rid, r := range d.relations {
		if r.EmployeeID == id {
			delete(d.relations, rid)
		}
	}
	for rid, r := range d.requests {
		if r.AuthorID == id || r.ManagerID == id {
			delete(d.requests, rid)
		}
	}
	kept := d.movements[:0]
	for _, m := range d.movements {
		if m.EmployeeID != id {
			kept = append(kept, m)
		}
	}
	d.movements = kept
	return nil
}

func (d *data) GetManager(_ context.Context, id int64) (*leave.Manager, error) {
	m, ok := d.managers[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (d *data) GetManagerByEmployee(_ context.Context, employeeID int64) (*leave.Manager, error) {
	for _, m := range d.managers {
		if m.EmployeeID == employeeID {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (d *data) ListManagers(_ context.Context) ([]leave.Manager, error) {
	out := make([]leave.Manager, 0, len(d.managers))
	for _, id := range sortedKeys(d.managers) {
		out = append(out, d.managers[id])
	}
	return out, nil
}

func (d *data) InsertManager(ctx context.Context, m leave.Manager) (int64, error) {
	if _, ok := d.employees[m.EmployeeID]; !ok {
		return 0, leave.ErrNotFound
	}
	if existing, _ := d.GetManagerByEmployee(ctx, m.EmployeeID); existing != nil {
		return 0, conflict("employee %d is already a manager", m.EmployeeID)
	}
	m.ID = d.id("manager")
	d.managers[m.ID] = m
	return m.ID, nil
}

func (d *data) DeleteManager(_ context.Context, id int64) error {
	if _, ok := d.managers[id]; !ok {
		return leave.ErrNotFound
	}
	d.deleteManager(id)
	return nil
}

func (d *data) deleteManager(id int64) {
	m := d.managers[id]
	delete(d.managers, id)
	for rid, r := range d.relations {
		if r.ManagerID == m.EmployeeID {
			delete(d.relations, rid)
		}
	}
}

func (d *data) InsertRelation(ctx context.Context, r leave.Relation) (int64, error) {
	if _, ok := d.employees[r.EmployeeID]; !ok {
		return 0, leave.ErrNotFound
	}
	if mgr, _ := d.GetManagerByEmployee(ctx, r.ManagerID); mgr == nil {
		return 0, leave.ErrNotFound
	}
	if existing, _ := d.GetRelation(ctx, r.EmployeeID); existing != nil {
		return 0, conflict("employee %d already has a manager", r.EmployeeID)
	}
	r.ID = d.id("relation")
	d.relations[r.ID] = r
	return r.ID, nil
}

func (d *data) GetRelation(_ context.Context, employeeID int64) (*leave.Relation, error) {
	for _, r := range d.relations {
		if r.EmployeeID == employeeID {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (d *data) IsManagerOf(_ context.Context, managerID, employeeID int64) (bool, error) {
	for _, r := range d.relations {
		if r.ManagerID == managerID && r.EmployeeID == employeeID {
			return true, nil
		}
	}
	return false, nil
}

func (d *data) ListTeam(_ context.Context, managerID int64) ([]leave.Employee, error) {
	out := []leave.Employee{}
	for _, id := range sortedKeys(d.employees) {
		for _, r := range d.relations {
			if r.ManagerID == managerID && r.EmployeeID == id {
				out = append(out, d.employees[id])
				break
			}
		}
	}
	return out, nil
}

// =============================================================================
// REQUESTS
// =============================================================================

func (d *data) GetRequest(_ context.Context, id int64) (*leave.Request, error) {
	r, ok := d.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (d *data) ListRequests(ctx context.Context) ([]leave.Request, error) {
	return d.FindRequests(ctx, leave.RequestFilter{})
}

func (d *data) FindRequests(_ context.Context, f leave.RequestFilter) ([]leave.Request, error) {
	out := []leave.Request{}
	for _, id := range sortedKeys(d.requests) {
		r := d.requests[id]
		if matches(r, f) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(r leave.Request, f leave.RequestFilter) bool {
	if f.ExcludeID != 0 && r.ID == f.ExcludeID {
		return false
	}
	if len(f.AuthorIDs) > 0 && !containsID(f.AuthorIDs, r.AuthorID) {
		return false
	}
	if len(f.ManagerIDs) > 0 && !containsID(f.ManagerIDs, r.ManagerID) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, r.Status) {
		return false
	}
	if !f.From.IsZero() && !f.To.IsZero() && !r.Overlaps(f.From, f.To) {
		return false
	}
	return true
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsStatus(sts []leave.Status, st leave.Status) bool {
	for _, v := range sts {
		if v == st {
			return true
		}
	}
	return false
}

func (d *data) InsertRequest(_ context.Context, r leave.Request) (int64, error) {
	if _, ok := d.employees[r.AuthorID]; !ok {
		return 0, leave.ErrNotFound
	}
	if _, ok := d.employees[r.ManagerID]; !ok {
		return 0, leave.ErrNotFound
	}
	r.ID = d.id("request")
	r.VacationStartDate = leave.Day(r.VacationStartDate)
	r.VacationEndDate = leave.Day(r.VacationEndDate)
	d.requests[r.ID] = r
	return r.ID, nil
}

func (d *data) UpdateRequest(_ context.Context, r leave.Request) error {
	cur, ok := d.requests[r.ID]
	if !ok {
		return leave.ErrNotFound
	}
	cur.ManagerID = r.ManagerID
	cur.Status = r.Status
	cur.VacationStartDate = leave.Day(r.VacationStartDate)
	cur.VacationEndDate = leave.Day(r.VacationEndDate)
	d.requests[r.ID] = cur
	return nil
}

func (d *data) DeleteRequest(_ context.Context, id int64) error {
	if _, ok := d.requests[id]; !ok {
		return leave.ErrNotFound
	}
	delete(d.requests, id)
	return nil
}

// =============================================================================
// BALANCES
// =============================================================================

func (d *data) LockBalance(_ context.Context, employeeID int64) (int, error) {
	e, ok := d.employees[employeeID]
	if !ok {
		return 0, leave.ErrNotFound
	}
	return e.HolidaysLeft, nil
}

func (d *data) SetBalance(_ context.Context, employeeID int64, holidaysLeft int) error {
	e, ok := d.employees[employeeID]
	if !ok {
		return leave.ErrNotFound
	}
	if holidaysLeft < 0 || holidaysLeft > leave.MaxHolidays {
		return fmt.Errorf("holidays_left %d out of range", holidaysLeft)
	}
	e.HolidaysLeft = holidaysLeft
	d.employees[employeeID] = e
	return nil
}

func (d *data) AppendMovement(_ context.Context, m leave.Movement) error {
	if _, ok := d.employees[m.EmployeeID]; !ok {
		return leave.ErrNotFound
	}
	d.movements = append(d.movements, m)
	return nil
}

func (d *data) ListMovements(_ context.Context, employeeID int64) ([]leave.Movement, error) {
	out := []leave.Movement{}
	for _, m := range d.movements {
		if m.EmployeeID == employeeID {
			out = append(out, m)
		}
	}
	return out, nil
}
