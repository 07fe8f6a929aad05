/*
store.go - Persistence interfaces for the leave engine

PURPOSE:
  Defines the boundary between the engine and the relational store. The
  engine never touches SQL; it receives a TxStore and runs each operation
  inside WithTx so request rows and balance rows change together.

KEY INTERFACES:
  DirectoryStore: employees, manager roles, manager-employee relations
  RequestStore:   vacation requests and overlap/coverage queries
  BalanceStore:   locked balance reads/writes and the movement journal
  TxStore:        all of the above plus WithTx

LOCKING CONTRACT:
  LockBalance must block concurrent LockBalance calls for the same employee
  until the enclosing transaction ends (SELECT ... FOR UPDATE on PostgreSQL,
  a single writer on SQLite). Outside WithTx it behaves like a plain read.

ABSENT RECORDS:
  Get* methods return (nil, nil) when the record does not exist. Write
  methods targeting a missing row return ErrNotFound.

IMPLEMENTATIONS:
  - store/sqlstore: SQLite and PostgreSQL
  - store/memory: in-memory, for tests
*/
package leave

import (
	"context"
	"time"
)

// DirectoryStore holds employees, manager roles and relations.
type DirectoryStore interface {
	GetEmployee(ctx context.Context, id int64) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	// InsertEmployee stores e and returns the assigned id.
	InsertEmployee(ctx context.Context, e Employee) (int64, error)
	UpdateEmployee(ctx context.Context, e Employee) error
	DeleteEmployee(ctx context.Context, id int64) error

	GetManager(ctx context.Context, id int64) (*Manager, error)
	GetManagerByEmployee(ctx context.Context, employeeID int64) (*Manager, error)
	ListManagers(ctx context.Context) ([]Manager, error)
	InsertManager(ctx context.Context, m Manager) (int64, error)
	DeleteManager(ctx context.Context, id int64) error

	InsertRelation(ctx context.Context, r Relation) (int64, error)
	// GetRelation returns the relation of employeeID, if any.
	GetRelation(ctx context.Context, employeeID int64) (*Relation, error)
	IsManagerOf(ctx context.Context, managerID, employeeID int64) (bool, error)
	// ListTeam returns the employees related to managerID, ordered by id.
	ListTeam(ctx context.Context, managerID int64) ([]Employee, error)
}

// RequestFilter narrows FindRequests. Zero values mean "any".
type RequestFilter struct {
	AuthorIDs  []int64
	ManagerIDs []int64
	Statuses   []Status
	// Overlapping [From, To] when both are set.
	From, To time.Time
	// ExcludeID skips one request, used when a request is compared with its peers.
	ExcludeID int64
}

// RequestStore holds vacation requests.
type RequestStore interface {
	GetRequest(ctx context.Context, id int64) (*Request, error)
	ListRequests(ctx context.Context) ([]Request, error)
	FindRequests(ctx context.Context, f RequestFilter) ([]Request, error)
	InsertRequest(ctx context.Context, r Request) (int64, error)
	UpdateRequest(ctx context.Context, r Request) error
	DeleteRequest(ctx context.Context, id int64) error
}

// BalanceStore mutates holiday balances and records movements.
type BalanceStore interface {
	// LockBalance returns the current holidays_left of employeeID and holds
	// its row lock until the transaction ends. Returns ErrNotFound if absent.
	LockBalance(ctx context.Context, employeeID int64) (int, error)
	SetBalance(ctx context.Context, employeeID int64, holidaysLeft int) error
	AppendMovement(ctx context.Context, m Movement) error
	ListMovements(ctx context.Context, employeeID int64) ([]Movement, error)
}

// Store is the full persistence surface.
type Store interface {
	DirectoryStore
	RequestStore
	BalanceStore
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
