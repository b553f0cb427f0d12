package dialect

import (
	"context"
)

// Supported dialect names. The names double as database/sql driver names
// for the drivers the project is tested against.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two standard database operations.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows. The args
	// value is expected to be a []any; v receives the execution result
	// and may be nil when the caller does not care.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows; v receives them.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the minimal interface a database backend implements.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx is a transactional wrapper over the standard operations.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

type nopTx struct {
	Driver
}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

// NopTx returns a Tx that executes statements through the given driver
// and ignores commit and rollback.
func NopTx(d Driver) Tx {
	return nopTx{d}
}
