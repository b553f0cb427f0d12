// Package dialect provides the database dialect abstraction for Strata.
//
// This package defines the interfaces and types used for database-specific
// operations, allowing Strata to support multiple database backends
// including PostgreSQL, MySQL, and SQLite.
//
// # Supported Dialects
//
// Each supported dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// The package defines the Driver interface for database operations:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Transaction Interface
//
// The Tx interface carries the standard operations plus transaction
// control:
//
//	type Tx interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Commit() error
//	    Rollback() error
//	}
//
// # Usage
//
// Opening a database connection:
//
//	import (
//	    "github.com/strataql/strata/dialect"
//	    "github.com/strataql/strata/dialect/sql"
//	)
//
//	db, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
// # Sub-packages
//
//   - dialect/sql: statement builders, formatting and driver implementation
//   - dialect/sql/expr: the immutable expression tree and its visitor
package dialect
