package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
)

func newTestStore(t *testing.T) *Store {
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seed(t *testing.T, s *Store) (boss, worker int64) {
	ctx := context.Background()
	boss, err := s.InsertEmployee(ctx, leave.Employee{Name: "Boss", HolidaysLeft: 30})
	require.NoError(t, err)
	_, err = s.InsertManager(ctx, leave.Manager{EmployeeID: boss})
	require.NoError(t, err)
	worker, err = s.InsertEmployee(ctx, leave.Employee{Name: "Worker", Age: 31, ContactDetails: "w@example.com", HolidaysLeft: 20})
	require.NoError(t, err)
	_, err = s.InsertRelation(ctx, leave.Relation{ManagerID: boss, EmployeeID: worker})
	require.NoError(t, err)
	return boss, worker
}

func day(d int) time.Time { return leave.NewDate(2024, time.November, d) }

// =============================================================================
// HELPERS
// =============================================================================

func TestRebind(t *testing.T) {
	pg := &conn{driver: DriverPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b IN ($2, $3)",
		pg.rebind("SELECT * FROM t WHERE a = ? AND b IN ("+placeholders(2)+")"))

	lite := &conn{driver: DriverSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", sqliteDSN(":memory:"))
	assert.Contains(t, sqliteDSN("leave.db"), "_journal_mode=WAL")
	assert.Contains(t, sqliteDSN("leave.db?cache=shared"), "cache=shared&_foreign_keys=on")
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, leave.ErrConcurrentModification},
		{"sqlite locked", sqlite3.Error{Code: sqlite3.ErrLocked}, leave.ErrConcurrentModification},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, leave.ErrConflict},
		{"sqlite fk", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, leave.ErrNotFound},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, leave.ErrConcurrentModification},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, leave.ErrConcurrentModification},
		{"pg lock timeout", &pgconn.PgError{Code: "55P03"}, leave.ErrConcurrentModification},
		{"pg unique", &pgconn.PgError{Code: "23505"}, leave.ErrConflict},
		{"wrapped", fmt.Errorf("ctx: %w", &pgconn.PgError{Code: "40001"}), leave.ErrConcurrentModification},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tc.err), tc.want)
		})
	}

	plain := errors.New("boom")
	assert.Equal(t, plain, translate(plain))
	assert.NoError(t, translate(nil))
}

// =============================================================================
// DIRECTORY
// =============================================================================

func TestStore_EmployeesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, worker := seed(t, s)

	got, err := s.GetEmployee(ctx, worker)
	require.NoError(t, err)
	assert.Equal(t, leave.Employee{ID: worker, Name: "Worker", Age: 31, ContactDetails: "w@example.com", HolidaysLeft: 20}, *got)

	missing, err := s.GetEmployee(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	got.Name = "Worker B"
	require.NoError(t, s.UpdateEmployee(ctx, *got))
	assert.ErrorIs(t, s.UpdateEmployee(ctx, leave.Employee{ID: 999, Name: "x"}), leave.ErrNotFound)

	emps, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, emps, 2)
	assert.Equal(t, "Worker B", emps[1].Name)
}

func TestStore_BalanceCheckConstraint(t *testing.T) {
	s := newTestStore(t)
	_, worker := seed(t, s)

	err := s.SetBalance(context.Background(), worker, 31)
	assert.Error(t, err, "holidays_left above 30 violates the CHECK constraint")
}

func TestStore_TeamAndRelations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boss, worker := seed(t, s)

	ok, err := s.IsManagerOf(ctx, boss, worker)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsManagerOf(ctx, worker, boss)
	require.NoError(t, err)
	assert.False(t, ok)

	team, err := s.ListTeam(ctx, boss)
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, worker, team[0].ID)

	rel, err := s.GetRelation(ctx, boss)
	require.NoError(t, err)
	assert.Nil(t, rel)

	_, err = s.InsertRelation(ctx, leave.Relation{ManagerID: boss, EmployeeID: worker})
	assert.ErrorIs(t, err, leave.ErrConflict)
}

// =============================================================================
// REQUESTS
// =============================================================================

func TestStore_FindRequests(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boss, worker := seed(t, s)

	insert := func(st leave.Status, from, to int) int64 {
		id, err := s.InsertRequest(ctx, leave.Request{
			AuthorID: worker, ManagerID: boss, Status: st,
			RequestCreatedDate: time.Date(2024, time.October, 1, 8, 0, 0, 0, time.UTC),
			VacationStartDate:  day(from), VacationEndDate: day(to),
		})
		require.NoError(t, err)
		return id
	}
	a := insert(leave.StatusPending, 4, 8)
	b := insert(leave.StatusApproved, 11, 15)
	insert(leave.StatusDenied, 8, 12)

	found, err := s.FindRequests(ctx, leave.RequestFilter{
		AuthorIDs: []int64{worker},
		Statuses:  []leave.Status{leave.StatusPending, leave.StatusApproved},
		From:      day(8),
		To:        day(11),
	})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, a, found[0].ID)
	assert.Equal(t, b, found[1].ID)
	assert.Equal(t, day(4), found[0].VacationStartDate)

	found, err = s.FindRequests(ctx, leave.RequestFilter{From: day(8), To: day(8), ExcludeID: a})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, leave.StatusDenied, found[0].Status)

	all, err := s.ListRequests(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	req, err := s.GetRequest(ctx, a)
	require.NoError(t, err)
	req.Status = leave.StatusApproved
	req.VacationEndDate = day(6)
	require.NoError(t, s.UpdateRequest(ctx, *req))

	req, err = s.GetRequest(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, req.Status)
	assert.Equal(t, day(6), req.VacationEndDate)

	require.NoError(t, s.DeleteRequest(ctx, a))
	assert.ErrorIs(t, s.DeleteRequest(ctx, a), leave.ErrNotFound)
}

func TestStore_RequestCheckConstraints(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boss, worker := seed(t, s)

	_, err := s.InsertRequest(ctx, leave.Request{
		AuthorID: worker, ManagerID: worker, Status: leave.StatusPending,
		RequestCreatedDate: time.Now(), VacationStartDate: day(4), VacationEndDate: day(5),
	})
	assert.Error(t, err, "author == manager is rejected by the schema")

	_, err = s.InsertRequest(ctx, leave.Request{
		AuthorID: worker, ManagerID: boss, Status: "CANCELLED",
		RequestCreatedDate: time.Now(), VacationStartDate: day(4), VacationEndDate: day(5),
	})
	assert.Error(t, err, "unknown status is rejected by the schema")
}

// =============================================================================
// BALANCE + TRANSACTIONS
// =============================================================================

func TestStore_MovementsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, worker := seed(t, s)

	at := time.Date(2024, time.November, 2, 10, 0, 0, 123456789, time.UTC)
	m := leave.Movement{
		ID:           "mv-1",
		EmployeeID:   worker,
		RequestID:    7,
		Kind:         leave.MovementRestoration,
		Delta:        leave.Days(2),
		Requested:    leave.Days(5),
		BalanceAfter: 30,
		Reason:       "request deleted",
		CreatedAt:    at,
	}
	require.NoError(t, s.AppendMovement(ctx, m))
	require.NoError(t, s.AppendMovement(ctx, leave.Movement{
		ID: "mv-2", EmployeeID: worker, Kind: leave.MovementAdjustment,
		Delta: leave.Days(-1), Requested: leave.Days(-1), BalanceAfter: 29, CreatedAt: at,
	}))

	moves, err := s.ListMovements(ctx, worker)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, "mv-1", moves[0].ID)
	assert.Equal(t, int64(7), moves[0].RequestID)
	assert.True(t, moves[0].Delta.Equal(leave.Days(2)))
	assert.True(t, moves[0].Requested.Equal(leave.Days(5)))
	assert.True(t, moves[0].Clamped())
	assert.Equal(t, at, moves[0].CreatedAt)
	assert.Equal(t, int64(0), moves[1].RequestID)
}

func TestStore_WithTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, worker := seed(t, s)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx leave.Store) error {
		left, err := tx.LockBalance(ctx, worker)
		require.NoError(t, err)
		require.NoError(t, tx.SetBalance(ctx, worker, left-5))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	left, err := s.LockBalance(ctx, worker)
	require.NoError(t, err)
	assert.Equal(t, 20, left)

	_, err = s.LockBalance(ctx, 999)
	assert.ErrorIs(t, err, leave.ErrNotFound)
}

func TestStore_DeleteEmployeeCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boss, worker := seed(t, s)

	_, err := s.InsertRequest(ctx, leave.Request{
		AuthorID: worker, ManagerID: boss, Status: leave.StatusPending,
		RequestCreatedDate: time.Now(), VacationStartDate: day(4), VacationEndDate: day(5),
	})
	require.NoError(t, err)

	// Removing the boss drops the manager role, the relation and the request.
	require.NoError(t, s.DeleteEmployee(ctx, boss))

	mgrs, err := s.ListManagers(ctx)
	require.NoError(t, err)
	assert.Empty(t, mgrs)

	rel, err := s.GetRelation(ctx, worker)
	require.NoError(t, err)
	assert.Nil(t, rel)

	reqs, err := s.ListRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestStore_FileDatabaseAndReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leave.db")
	s, err := Open(DriverSQLite, path)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	seed(t, s)
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Reset(ctx))

	emps, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, emps)

	// ids restart after a reset
	id, err := s.InsertEmployee(ctx, leave.Employee{Name: "Fresh", HolidaysLeft: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "dsn")
	assert.Error(t, err)
}
