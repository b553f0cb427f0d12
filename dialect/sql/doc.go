// Package sql provides SQL statement building, formatting and execution
// primitives for the supported dialects (PostgreSQL, MySQL, SQLite).
//
// Statements are assembled by fluent builders into the immutable
// expression trees of the expr sub-package and lowered to parameterized
// SQL by a per-dialect formatter.
//
// # Builder Types
//
// The package provides specialized builders for different SQL operations:
//
//   - Selector: SELECT query builder with joins, predicates, and pagination
//   - UnionSelector: UNION / UNION ALL chains with shared ordering
//   - InsertBuilder: INSERT statement builder with RETURNING support
//   - UpdateBuilder: UPDATE statement builder with SET and WHERE clauses
//   - DeleteBuilder: DELETE statement builder with WHERE predicates
//
// # Dialect Support
//
// SQL generation adapts to the dialect named at the start of the chain:
//
//	import "github.com/strataql/strata/dialect"
//
//	// PostgreSQL: $n placeholders, RETURNING, ilike
//	b := sql.Dialect(dialect.Postgres)
//	b.Select("id", "name").From(sql.Table("users")).Where(sql.EQ("status", "active"))
//
//	// MySQL: backtick quoting, on duplicate key update, bulk inserts
//	b := sql.Dialect(dialect.MySQL)
//
// # Predicates
//
// Predicates are immutable values combined with And/Or/Not:
//
//	// Equality
//	sql.EQ("name", "john")           // name = ?
//	sql.NEQ("status", "deleted")     // status <> ?
//
//	// Comparison
//	sql.GT("age", 18)                // age > ?
//	sql.LTE("price", 100.0)          // price <= ?
//
//	// String matching
//	sql.Contains("name", "john")     // name like ? ("%john%")
//	sql.HasPrefix("email", "admin")  // email like ? ("admin%")
//
//	// NULL checks
//	sql.IsNull("deleted_at")         // deleted_at is null
//	sql.NotNull("email")             // email is not null
//
//	// IN clauses
//	sql.In("status", "active", "pending")  // status in (?, ?)
//
// # Joins
//
// Join operations are supported through the selector:
//
//	users := sql.Table("users").As("u")
//	posts := sql.Table("posts").As("p")
//	sql.Select("u.id", "u.name", "p.title").
//	    From(users).
//	    Join(posts).On(users.C("id"), posts.C("user_id")).
//	    Where(sql.EQ("u.status", "active"))
//
// # Pagination
//
// Offset pagination renders through the dialect formatter; the
// dialect-neutral formatter rejects it:
//
//	sql.Dialect(dialect.SQLite).
//	    Select("*").From(sql.Table("users")).Offset(20).Limit(10)
//
// # Formatting
//
// The formatters can also be driven directly over hand-built trees:
//
//	f := sql.NewPostgresFormatter()
//	text, params, err := f.Format(statement)
//
// The returned parameters carry both the bound value and its
// schema/field type descriptor, in placeholder order.
package sql
