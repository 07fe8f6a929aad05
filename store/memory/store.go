package memory

import (
	"context"
	"sync"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// Store is an in-memory leave.TxStore. WithTx serializes writers and works
// on a copy that replaces the live state only when fn succeeds.
type Store struct {
	mu sync.RWMutex
	d  *data
}

var _ leave.TxStore = (*Store)(nil)

func New() *Store {
	return &Store{d: newData()}
}

// WithTx executes fn within a transaction.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.d.clone()
	if err := fn(work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.d = work
	return nil
}

// Reset clears all data.
func (s *Store) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d = newData()
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) read() (*data, func()) {
	s.mu.RLock()
	return s.d, s.mu.RUnlock
}

// write runs fn as a single-statement transaction.
func (s *Store) write(ctx context.Context, fn func(d *data) error) error {
	return s.WithTx(ctx, func(ls leave.Store) error { return fn(ls.(*data)) })
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (s *Store) GetEmployee(ctx context.Context, id int64) (*leave.Employee, error) {
	d, done := s.read()
	defer done()
	return d.GetEmployee(ctx, id)
}

func (s *Store) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	d, done := s.read()
	defer done()
	return d.ListEmployees(ctx)
}

func (s *Store) InsertEmployee(ctx context.Context, e leave.Employee) (id int64, err error) {
	err = s.write(ctx, func(d *data) error {
		id, err = d.InsertEmployee(ctx, e)
		return err
	})
	return id, err
}

func (s *Store) UpdateEmployee(ctx context.Context, e leave.Employee) error {
	return s.write(ctx, func(d *data) error { return d.UpdateEmployee(ctx, e) })
}

func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	return s.write(ctx, func(d *data) error { return d.DeleteEmployee(ctx, id) })
}

func (s *Store) GetManager(ctx context.Context, id int64) (*leave.Manager, error) {
	d, done := s.read()
	defer done()
	return d.GetManager(ctx, id)
}

func (s *Store) GetManagerByEmployee(ctx context.Context, employeeID int64) (*leave.Manager, error) {
	d, done := s.read()
	defer done()
	return d.GetManagerByEmployee(ctx, employeeID)
}

func (s *Store) ListManagers(ctx context.Context) ([]leave.Manager, error) {
	d, done := s.read()
	defer done()
	return d.ListManagers(ctx)
}

func (s *Store) InsertManager(ctx context.Context, m leave.Manager) (id int64, err error) {
	err = s.write(ctx, func(d *data) error {
		id, err = d.InsertManager(ctx, m)
		return err
	})
	return id, err
}

func (s *Store) DeleteManager(ctx context.Context, id int64) error {
	return s.write(ctx, func(d *data) error { return d.DeleteManager(ctx, id) })
}

func (s *Store) InsertRelation(ctx context.Context, r leave.Relation) (id int64, err error) {
	err = s.write(ctx, func(d *data) error {
		id, err = d.InsertRelation(ctx, r)
		return err
	})
	return id, err
}

func (s *Store) GetRelation(ctx context.Context, employeeID int64) (*leave.Relation, error) {
	d, done := s.read()
	defer done()
	return d.GetRelation(ctx, employeeID)
}

func (s *Store) IsManagerOf(ctx context.Context, managerID, employeeID int64) (bool, error) {
	d, done := s.read()
	defer done()
	return d.IsManagerOf(ctx, managerID, employeeID)
}

func (s *Store) ListTeam(ctx context.Context, managerID int64) ([]leave.Employee, error) {
	d, done := s.read()
	defer done()
	return d.ListTeam(ctx, managerID)
}

// =============================================================================
// REQUESTS
// =============================================================================

func (s *Store) GetRequest(ctx context.Context, id int64) (*leave.Request, error) {
	d, done := s.read()
	defer done()
	return d.GetRequest(ctx, id)
}

func (s *Store) ListRequests(ctx context.Context) ([]leave.Request, error) {
	d, done := s.read()
	defer done()
	return d.ListRequests(ctx)
}

func (s *Store) FindRequests(ctx context.Context, f leave.RequestFilter) ([]leave.Request, error) {
	d, done := s.read()
	defer done()
	return d.FindRequests(ctx, f)
}

func (s *Store) InsertRequest(ctx context.Context, r leave.Request) (id int64, err error) {
	err = s.write(ctx, func(d *data) error {
		id, err = d.InsertRequest(ctx, r)
		return err
	})
	return id, err
}

func (s *Store) UpdateRequest(ctx context.Context, r leave.Request) error {
	return s.write(ctx, func(d *data) error { return d.UpdateRequest(ctx, r) })
}

func (s *Store) DeleteRequest(ctx context.Context, id int64) error {
	return s.write(ctx, func(d *data) error { return d.DeleteRequest(ctx, id) })
}

// =============================================================================
// BALANCES
// =============================================================================

// LockBalance outside WithTx is a plain read.
func (s *Store) LockBalance(ctx context.Context, employeeID int64) (int, error) {
	d, done := s.read()
	defer done()
	return d.LockBalance(ctx, employeeID)
}

func (s *Store) SetBalance(ctx context.Context, employeeID int64, holidaysLeft int) error {
	return s.write(ctx, func(d *data) error { return d.SetBalance(ctx, employeeID, holidaysLeft) })
}

func (s *Store) AppendMovement(ctx context.Context, m leave.Movement) error {
	return s.write(ctx, func(d *data) error { return d.AppendMovement(ctx, m) })
}

func (s *Store) ListMovements(ctx context.Context, employeeID int64) ([]leave.Movement, error) {
	d, done := s.read()
	defer done()
	return d.ListMovements(ctx, employeeID)
}
