package sql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"

	"github.com/strataql/strata"
)

// Constraint classification for the three supported drivers. Typed
// driver errors are inspected first; interface and string matching
// cover drivers wrapping or reformatting their errors.

// PostgreSQL SQLSTATE codes for constraint violations (class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// SQLite extended result codes for constraint violations.
const (
	sqliteConstraintCheck      = 275
	sqliteConstraintForeignKey = 787
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// sqlStateError is implemented by driver errors carrying a SQLSTATE,
// such as pgx connection errors.
type sqlStateError interface {
	SQLState() string
}

// IsConstraintError reports whether the error resulted from any
// database constraint violation.
func IsConstraintError(err error) bool {
	var ce strata.ConstraintError
	return errors.As(err, &ce) ||
		IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

// IsUniqueConstraintError reports whether the error resulted from a
// uniqueness violation, such as a duplicate value in a unique index.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pqe *pq.Error
	if errors.As(err, &pqe) && string(pqe.Code) == pgUniqueViolation {
		return true
	}
	var mye *mysql.MySQLError
	if errors.As(err, &mye) && mye.Number == mysqlDuplicateEntry {
		return true
	}
	var sqe *sqlite.Error
	if errors.As(err, &sqe) {
		if c := sqe.Code(); c == sqliteConstraintUnique || c == sqliteConstraintPrimaryKey {
			return true
		}
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == pgUniqueViolation {
		return true
	}
	return containsAny(err.Error(),
		"Error 1062",                 // MySQL
		"violates unique constraint", // Postgres
		"UNIQUE constraint failed",   // SQLite
	)
}

// IsForeignKeyConstraintError reports whether the error resulted from a
// foreign-key violation, such as a missing parent row.
func IsForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pqe *pq.Error
	if errors.As(err, &pqe) && string(pqe.Code) == pgForeignKeyViolation {
		return true
	}
	var mye *mysql.MySQLError
	if errors.As(err, &mye) &&
		(mye.Number == mysqlForeignKeyParent || mye.Number == mysqlForeignKeyChild) {
		return true
	}
	var sqe *sqlite.Error
	if errors.As(err, &sqe) && sqe.Code() == sqliteConstraintForeignKey {
		return true
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == pgForeignKeyViolation {
		return true
	}
	return containsAny(err.Error(),
		"Error 1451",
		"Error 1452",
		"violates foreign key constraint",
		"FOREIGN KEY constraint failed",
	)
}

// IsCheckConstraintError reports whether the error resulted from a
// check-constraint violation.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pqe *pq.Error
	if errors.As(err, &pqe) && string(pqe.Code) == pgCheckViolation {
		return true
	}
	var mye *mysql.MySQLError
	if errors.As(err, &mye) && mye.Number == mysqlCheckConstraintViolate {
		return true
	}
	var sqe *sqlite.Error
	if errors.As(err, &sqe) && sqe.Code() == sqliteConstraintCheck {
		return true
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == pgCheckViolation {
		return true
	}
	return containsAny(err.Error(),
		"Error 3819",
		"violates check constraint",
		"CHECK constraint failed",
	)
}

// asError extracts an error implementing T from the unwrap chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
