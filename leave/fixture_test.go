package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/memory"
	"github.com/warp/leave-engine/store/sqlstore"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var fixedNow = time.Date(2024, time.October, 20, 9, 30, 0, 0, time.UTC)

func nov(day int) time.Time {
	return leave.NewDate(2024, time.November, day)
}

type storeFactory func(t *testing.T) leave.TxStore

var storeFactories = map[string]storeFactory{
	"memory": func(t *testing.T) leave.TxStore {
		return memory.New()
	},
	"sqlite": func(t *testing.T) leave.TxStore {
		store, err := sqlstore.New(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		return store
	},
}

// fixture is a manager (Alice) with one subordinate (Karan) and services
// wired over the store.
type fixture struct {
	ctx    context.Context
	store  leave.TxStore
	dir    *leave.DirectoryService
	svc    *leave.RequestService
	status *leave.StatusAggregator

	alice int64
	karan int64
}

func newFixture(t *testing.T, store leave.TxStore) *fixture {
	t.Helper()
	ctx := context.Background()

	dir := leave.NewDirectoryService(store, leave.RetryPolicy{MaxAttempts: 10, BaseDelay: time.Millisecond}, nil)
	alice, err := dir.CreateEmployee(ctx, leave.NewEmployee{Name: "Alice", Age: 45, HolidaysLeft: 30})
	require.NoError(t, err)
	_, err = dir.CreateManager(ctx, alice.ID)
	require.NoError(t, err)
	karan, err := dir.CreateEmployee(ctx, leave.NewEmployee{
		Name:           "Karan",
		Age:            29,
		ContactDetails: "karan@example.com",
		HolidaysLeft:   30,
		ManagerID:      alice.ID,
	})
	require.NoError(t, err)

	svc := leave.NewRequestService(store, leave.MonthWindow(2024, time.November),
		leave.RetryPolicy{MaxAttempts: 10, BaseDelay: time.Millisecond}, nil)
	svc.Now = func() time.Time { return fixedNow }

	return &fixture{
		ctx:    ctx,
		store:  store,
		dir:    dir,
		svc:    svc,
		status: &leave.StatusAggregator{Directory: store, Requests: store},
		alice:  alice.ID,
		karan:  karan.ID,
	}
}

// forEachStore runs fn once per store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, f *fixture)) {
	for name, factory := range storeFactories {
		factory := factory
		t.Run(name, func(t *testing.T) {
			fn(t, newFixture(t, factory(t)))
		})
	}
}

func (f *fixture) balance(t *testing.T, employeeID int64) int {
	t.Helper()
	emp, err := f.dir.GetEmployee(f.ctx, employeeID)
	require.NoError(t, err)
	return emp.HolidaysLeft
}

func (f *fixture) setBalance(t *testing.T, employeeID int64, days int) {
	t.Helper()
	_, err := f.dir.UpdateEmployee(f.ctx, leave.EmployeeUpdate{ID: employeeID, HolidaysLeft: &days})
	require.NoError(t, err)
}

func (f *fixture) create(t *testing.T, start, end time.Time) *leave.Request {
	t.Helper()
	req, err := f.svc.Create(f.ctx, leave.CreateInput{AuthorID: f.karan, ManagerID: f.alice, Start: start, End: end})
	require.NoError(t, err)
	return req
}

func statusPtr(s leave.Status) *leave.Status { return &s }

func timePtr(t time.Time) *time.Time { return &t }
