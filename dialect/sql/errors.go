package sql

import (
	"errors"
	"fmt"

	"github.com/strataql/strata/dialect/sql/expr"
)

// ErrUnsupported is the sentinel wrapped by every UnsupportedError. It
// lets callers distinguish "this dialect cannot express the statement"
// from generic formatting failures:
//
//	if errors.Is(err, sql.ErrUnsupported) { ... }
var ErrUnsupported = errors.New("dialect/sql: unsupported feature")

// UnsupportedError is returned when a statement requires a feature the
// target dialect cannot express, such as pagination on the standard
// formatter or RETURNING on MySQL.
type UnsupportedError struct {
	// Dialect is the name of the dialect that rejected the feature.
	// Empty for the standard (dialect-neutral) formatter.
	Dialect string
	// Feature describes what was requested.
	Feature string
}

func (e *UnsupportedError) Error() string {
	d := e.Dialect
	if d == "" {
		d = "standard sql"
	}
	return fmt.Sprintf("dialect/sql: %s does not support %s", d, e.Feature)
}

// Unwrap makes UnsupportedError match ErrUnsupported with errors.Is.
func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// IsUnsupported reports whether err is an unsupported-feature error.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// RewriteError reports that a visitor substituted a node during a
// formatting pass. Formatting is read-only; a substitution means a
// dialect extension rewrote the tree it was asked to render, which is a
// defect in the extension, not a user-facing condition.
type RewriteError struct {
	// Node is the original node whose visit returned a different node.
	Node expr.Expr
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("dialect/sql: node %T was rewritten during formatting", e.Node)
}
