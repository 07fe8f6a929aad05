/*
Package sqlstore provides a database/sql implementation of leave.TxStore.

PURPOSE:
  Persists employees, manager roles, relations, vacation requests and the
  balance movement journal. The same code serves SQLite (default, via
  mattn/go-sqlite3) and PostgreSQL (via jackc/pgx stdlib); only
  placeholders, the id column type and row locking differ.

KEY TABLES:
  employee:                  directory + holidays_left (CHECK 0..30)
  manager:                   manager role, unique employee_id
  manager_employee_relation: one manager per employee (unique employee_id)
  request:                   vacation requests (CHECK status, dates, author != manager)
  balance_movement:          append-only journal of balance changes

CONCURRENCY:
  PostgreSQL: LockBalance uses SELECT ... FOR UPDATE inside WithTx.
  SQLite: transactions start with BEGIN IMMEDIATE (_txlock=immediate) and
  WithTx holds a store-level mutex, so there is a single writer at a time.
  Busy/lock/serialization failures surface as leave.ErrConcurrentModification.

IN-MEMORY DATABASES:
  ":memory:" opens one connection only; every connection to :memory: would
  otherwise see its own empty database.

USAGE:
  store, err := sqlstore.Open(sqlstore.DriverSQLite, "./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on Open().

SEE ALSO:
  - leave/store.go: interface definitions
  - store/memory: in-memory implementation for tests
*/
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/leave-engine/leave"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn runs every leave.Store method against a querier. The Store uses it
// over the pool; WithTx hands out one bound to the open transaction.
type conn struct {
	q      querier
	driver string
	inTx   bool
}

// Store implements leave.TxStore.
type Store struct {
	*conn
	db *sql.DB
	mu sync.Mutex
}

var _ leave.TxStore = (*Store)(nil)

// Open connects to the database and migrates the schema.
func Open(driver, dsn string) (*Store, error) {
	var db *sql.DB
	var err error

	switch driver {
	case DriverSQLite:
		db, err = sql.Open(driver, sqliteDSN(dsn))
		if err == nil && isMemoryDSN(dsn) {
			db.SetMaxOpenConns(1)
		}
	case DriverPostgres:
		db, err = sql.Open(driver, dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{conn: &conn{q: db, driver: driver}, db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// New opens a SQLite store at path. Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	return Open(DriverSQLite, path)
}

func sqliteDSN(dsn string) string {
	params := "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	if !isMemoryDSN(dsn) {
		params += "&_journal_mode=WAL"
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}
	return dsn + "?" + params
}

func isMemoryDSN(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string {
	return s.driver
}

// =============================================================================
// TRANSACTIONAL STORE (leave.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	if s.driver == DriverSQLite {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translate(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer sqlTx.Rollback()

	if err := fn(&conn{q: sqlTx, driver: s.driver, inTx: true}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return translate(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
	CREATE TABLE IF NOT EXISTS employee (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		age INTEGER NOT NULL DEFAULT 0,
		contact_details TEXT NOT NULL DEFAULT '',
		holidays_left INTEGER NOT NULL CHECK (holidays_left >= 0 AND holidays_left <= 30)
	);

	CREATE TABLE IF NOT EXISTS manager (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL UNIQUE REFERENCES employee(id) ON DELETE CASCADE
	);

	-- One manager per employee: employee_id is unique.
	CREATE TABLE IF NOT EXISTS manager_employee_relation (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		manager_id INTEGER NOT NULL REFERENCES manager(employee_id) ON DELETE CASCADE,
		employee_id INTEGER NOT NULL UNIQUE REFERENCES employee(id) ON DELETE CASCADE,
		CHECK (manager_id != employee_id)
	);

	CREATE INDEX IF NOT EXISTS idx_relation_manager
		ON manager_employee_relation(manager_id);

	-- Dates are stored as YYYY-MM-DD text, which orders like the dates.
	CREATE TABLE IF NOT EXISTS request (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id INTEGER NOT NULL REFERENCES employee(id) ON DELETE CASCADE,
		manager_id INTEGER NOT NULL REFERENCES employee(id) ON DELETE CASCADE,
		status TEXT NOT NULL CHECK (status IN ('PENDING', 'APPROVED', 'DENIED')),
		request_created_date TEXT NOT NULL,
		vacation_start_date TEXT NOT NULL,
		vacation_end_date TEXT NOT NULL,
		CHECK (author_id != manager_id),
		CHECK (vacation_end_date >= vacation_start_date)
	);

	-- Overlap and coverage queries (hot path)
	CREATE INDEX IF NOT EXISTS idx_request_author_dates
		ON request(author_id, status, vacation_start_date, vacation_end_date);

	-- Append-only; request_id has no foreign key so history survives deletes.
	CREATE TABLE IF NOT EXISTS balance_movement (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		employee_id INTEGER NOT NULL REFERENCES employee(id) ON DELETE CASCADE,
		request_id INTEGER,
		kind TEXT NOT NULL,
		delta_value TEXT NOT NULL,
		delta_unit TEXT NOT NULL,
		requested_value TEXT NOT NULL,
		balance_after INTEGER NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_movement_employee
		ON balance_movement(employee_id, seq);
`

// migrate creates the database schema.
func (s *Store) migrate(ctx context.Context) error {
	ddl := schema
	if s.driver == DriverPostgres {
		ddl = strings.ReplaceAll(ddl, "INTEGER PRIMARY KEY AUTOINCREMENT", "BIGSERIAL PRIMARY KEY")
		ddl = strings.ReplaceAll(ddl, "INTEGER", "BIGINT")
	}
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Reset clears all data (for demo scenarios and tests).
func (s *Store) Reset(ctx context.Context) error {
	return s.WithTx(ctx, func(ls leave.Store) error {
		tx := ls.(*conn)
		if s.driver == DriverPostgres {
			_, err := tx.exec(ctx, `TRUNCATE balance_movement, request, manager_employee_relation,
				manager, employee RESTART IDENTITY CASCADE`)
			return err
		}
		for _, table := range []string{"balance_movement", "request", "manager_employee_relation", "manager", "employee", "sqlite_sequence"} {
			if _, err := tx.exec(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		return nil
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (c *conn) rebind(query string) string {
	if c.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := c.q.ExecContext(ctx, c.rebind(query), args...)
	return res, translate(err)
}

func (c *conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := c.q.QueryContext(ctx, c.rebind(query), args...)
	return rows, translate(err)
}

func (c *conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.rebind(query), args...)
}

// insertReturningID runs an INSERT ... RETURNING id.
func (c *conn) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := c.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, translate(err)
	}
	return id, nil
}

// execOne runs a statement that must touch exactly one row.
func (c *conn) execOne(ctx context.Context, query string, args ...any) error {
	res, err := c.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return leave.ErrNotFound
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
