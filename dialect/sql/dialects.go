package sql

import (
	"github.com/strataql/strata/dialect"
	"github.com/strataql/strata/dialect/sql/expr"
)

// StatementFormatter is what the fluent builders format through. All
// four formatters of this package implement it.
type StatementFormatter interface {
	Format(expr.Expr) (string, []Param, error)
}

// FormatterFor returns the formatter of the named dialect. Unknown
// names get the dialect-neutral formatter, which rejects pagination and
// RETURNING.
func FormatterFor(name string, opts ...Option) StatementFormatter {
	switch name {
	case dialect.MySQL:
		return NewMySQLFormatter(opts...)
	case dialect.Postgres:
		return NewPostgresFormatter(opts...)
	case dialect.SQLite:
		return NewSQLiteFormatter(opts...)
	default:
		return NewFormatter(opts...)
	}
}

// ILike is a case-insensitive pattern predicate, a Postgres extension
// node. It is not part of the closed node set; the Postgres formatter
// renders it from VisitUnknown and every other formatter rejects it.
type ILike struct {
	expr.ScalarExt
	X       expr.Scalar
	Pattern expr.Scalar
	Not     bool
}

// InsertOnDuplicate is a MySQL extension statement wrapping an insert
// with an `on duplicate key update` clause.
type InsertOnDuplicate struct {
	expr.StatementExt
	Insert  *expr.Insert
	Updates []*expr.Assign
}

// BulkInsert is an extension statement writing several rows in a single
// insert. Every dialect formatter renders it; the dialect-neutral
// formatter treats it as unknown. Every row must match the column list
// in length; the builder enforces it.
type BulkInsert struct {
	expr.StatementExt
	Table   *expr.TableRef
	Columns []*expr.Column
	Rows    [][]expr.Scalar
}

// bulkInsert renders a multi-row insert. Shared by the dialect
// formatters, which all route *BulkInsert here from VisitUnknown.
func (f *Formatter) bulkInsert(b *BulkInsert) {
	f.write("insert into ")
	f.ident(b.Table.Name)
	f.write(" (")
	for i, c := range b.Columns {
		if i > 0 {
			f.write(", ")
		}
		f.ident(c.Name)
	}
	f.write(") values ")
	for i, row := range b.Rows {
		if i > 0 {
			f.write(", ")
		}
		f.write("(")
		for j, v := range row {
			if j > 0 {
				f.write(", ")
			}
			f.scalar(v)
		}
		f.write(")")
	}
}

// MySQLFormatter renders MySQL SQL: backtick quoting, `limit ?, ?`
// pagination, `() values ()` default inserts, and the InsertOnDuplicate
// and BulkInsert extension statements. RETURNING is unsupported.
type MySQLFormatter struct {
	*Formatter
}

// NewMySQLFormatter returns a formatter for the MySQL dialect.
func NewMySQLFormatter(opts ...Option) *MySQLFormatter {
	m := &MySQLFormatter{newFormatter(dialect.MySQL, mysqlMetadata, opts...)}
	m.Self = m
	m.pagination = mysqlPagination
	m.defaults = func(f *Formatter) {
		f.write(" () values ()")
	}
	return m
}

func (m *MySQLFormatter) VisitUnknown(e expr.Expr) expr.Expr {
	switch e := e.(type) {
	case *InsertOnDuplicate:
		m.Visit(e.Insert)
		m.clause("on duplicate key update ")
		for i, a := range e.Updates {
			if i > 0 {
				m.write(", ")
			}
			m.Visit(a)
		}
	case *BulkInsert:
		m.bulkInsert(e)
	default:
		return m.Formatter.VisitUnknown(e)
	}
	return e
}

func mysqlPagination(f *Formatter, offset, limit *int) {
	switch {
	case offset != nil && limit != nil:
		f.clause("limit ")
		f.bindInt(*offset)
		f.write(", ")
		f.bindInt(*limit)
	case limit != nil:
		f.clause("limit ")
		f.bindInt(*limit)
	default:
		// MySQL has no bare offset; the documented idiom is an
		// effectively unbounded row count.
		f.clause("limit 18446744073709551615 offset ")
		f.bindInt(*offset)
	}
}

// PostgresFormatter renders PostgreSQL SQL: double-quote quoting, `$n`
// placeholders, independent `limit`/`offset` clauses, RETURNING, and
// the ILike and BulkInsert extension nodes.
type PostgresFormatter struct {
	*Formatter
}

// NewPostgresFormatter returns a formatter for the PostgreSQL dialect.
func NewPostgresFormatter(opts ...Option) *PostgresFormatter {
	p := &PostgresFormatter{newFormatter(dialect.Postgres, postgresMetadata, opts...)}
	p.Self = p
	p.placeholder = dollarPlaceholder
	p.pagination = limitOffsetPagination
	p.returning = returningClause
	return p
}

func (p *PostgresFormatter) VisitUnknown(e expr.Expr) expr.Expr {
	switch e := e.(type) {
	case *ILike:
		p.scalar(e.X)
		if e.Not {
			p.write(" not ilike ")
		} else {
			p.write(" ilike ")
		}
		p.scalar(e.Pattern)
	case *BulkInsert:
		p.bulkInsert(e)
	default:
		return p.Formatter.VisitUnknown(e)
	}
	return e
}

// SQLiteFormatter renders SQLite SQL: double-quote quoting, `?`
// placeholders, `limit`/`offset` pagination, RETURNING and the
// BulkInsert extension statement.
type SQLiteFormatter struct {
	*Formatter
}

// NewSQLiteFormatter returns a formatter for the SQLite dialect.
func NewSQLiteFormatter(opts ...Option) *SQLiteFormatter {
	s := &SQLiteFormatter{newFormatter(dialect.SQLite, sqliteMetadata, opts...)}
	s.Self = s
	s.pagination = sqlitePagination
	s.returning = returningClause
	return s
}

func (s *SQLiteFormatter) VisitUnknown(e expr.Expr) expr.Expr {
	b, ok := e.(*BulkInsert)
	if !ok {
		return s.Formatter.VisitUnknown(e)
	}
	s.bulkInsert(b)
	return e
}

func limitOffsetPagination(f *Formatter, offset, limit *int) {
	if limit != nil {
		f.clause("limit ")
		f.bindInt(*limit)
	}
	if offset != nil {
		f.clause("offset ")
		f.bindInt(*offset)
	}
}

func sqlitePagination(f *Formatter, offset, limit *int) {
	// SQLite rejects a bare offset; -1 disables the row count.
	if limit == nil && offset != nil {
		f.clause("limit -1 offset ")
		f.bindInt(*offset)
		return
	}
	limitOffsetPagination(f, offset, limit)
}

func returningClause(f *Formatter, cols []*expr.Column) {
	f.clause("returning ")
	for i, c := range cols {
		if i > 0 {
			f.write(", ")
		}
		f.Visit(c)
	}
}
