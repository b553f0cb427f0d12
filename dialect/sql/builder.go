package sql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/strataql/strata/dialect/sql/expr"
)

// DialectBuilder is the entry point of the fluent DSL, parameterized by
// the dialect the final statement is formatted for:
//
//	sql.Dialect(dialect.Postgres).
//	    Select("id", "name").
//	    From(sql.Table("users")).
//	    Where(sql.EQ("active", true)).
//	    Query()
type DialectBuilder struct {
	dialect string
}

// Dialect returns a builder for the named dialect.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: name}
}

// Select returns a selector projecting the given columns.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	return Select(columns...).setDialect(d.dialect)
}

// Insert returns an insert builder for the given table.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	return Insert(table).setDialect(d.dialect)
}

// Update returns an update builder for the given table.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	return Update(table).setDialect(d.dialect)
}

// Delete returns a delete builder for the given table.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	return Delete(table).setDialect(d.dialect)
}

// columnOf parses a possibly qualified "table.column" reference.
func columnOf(name string) *expr.Column {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return &expr.Column{Table: name[:i], Name: name[i+1:]}
	}
	return &expr.Column{Name: name}
}

// scalarOf lifts a DSL value to a scalar node. Scalars pass through;
// anything else becomes a bind argument.
func scalarOf(v any) expr.Scalar {
	if x, ok := v.(expr.Scalar); ok {
		return x
	}
	return expr.Value(v)
}

// Predicate is a boolean scalar expression used in WHERE, HAVING and ON
// clauses. Predicates are plain immutable values; combining them never
// modifies the operands.
type Predicate struct {
	x   expr.Scalar
	err error
}

// P wraps a scalar expression as a predicate.
func P(x expr.Scalar) *Predicate {
	return &Predicate{x: x}
}

func compare(op expr.BinaryOp, col string, v any) *Predicate {
	return P(&expr.Binary{Op: op, X: columnOf(col), Y: scalarOf(v)})
}

// EQ returns a `column = value` predicate.
func EQ(col string, v any) *Predicate { return compare(expr.OpEQ, col, v) }

// NEQ returns a `column <> value` predicate.
func NEQ(col string, v any) *Predicate { return compare(expr.OpNEQ, col, v) }

// GT returns a `column > value` predicate.
func GT(col string, v any) *Predicate { return compare(expr.OpGT, col, v) }

// GTE returns a `column >= value` predicate.
func GTE(col string, v any) *Predicate { return compare(expr.OpGTE, col, v) }

// LT returns a `column < value` predicate.
func LT(col string, v any) *Predicate { return compare(expr.OpLT, col, v) }

// LTE returns a `column <= value` predicate.
func LTE(col string, v any) *Predicate { return compare(expr.OpLTE, col, v) }

// ColumnsEQ returns a `column1 = column2` predicate, used mainly for
// join conditions.
func ColumnsEQ(col1, col2 string) *Predicate {
	return P(&expr.Binary{Op: expr.OpEQ, X: columnOf(col1), Y: columnOf(col2)})
}

// Like returns a `column like pattern` predicate.
func Like(col, pattern string) *Predicate {
	return P(&expr.Binary{Op: expr.OpLike, X: columnOf(col), Y: expr.Value(pattern)})
}

// NotLike returns a `column not like pattern` predicate.
func NotLike(col, pattern string) *Predicate {
	return P(&expr.Binary{Op: expr.OpNotLike, X: columnOf(col), Y: expr.Value(pattern)})
}

// escapeLike escapes the LIKE metacharacters of a literal substring.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

// Contains returns a predicate matching rows whose column contains the
// given substring.
func Contains(col, sub string) *Predicate {
	return Like(col, "%"+escapeLike(sub)+"%")
}

// HasPrefix returns a predicate matching rows whose column starts with
// the given prefix.
func HasPrefix(col, prefix string) *Predicate {
	return Like(col, escapeLike(prefix)+"%")
}

// HasSuffix returns a predicate matching rows whose column ends with
// the given suffix.
func HasSuffix(col, suffix string) *Predicate {
	return Like(col, "%"+escapeLike(suffix))
}

// lowered wraps a column in lower() for the case-insensitive variants.
// They render identically on all dialects; Postgres callers that want
// native ilike build the ILike node directly.
func lowered(col string) expr.Scalar {
	return &expr.Func{Name: "lower", Args: []expr.Scalar{columnOf(col)}}
}

// EqualFold returns a case-insensitive `column = value` predicate.
func EqualFold(col, v string) *Predicate {
	return P(&expr.Binary{Op: expr.OpEQ, X: lowered(col), Y: expr.Value(strings.ToLower(v))})
}

// ContainsFold returns a case-insensitive Contains predicate.
func ContainsFold(col, sub string) *Predicate {
	pattern := "%" + escapeLike(strings.ToLower(sub)) + "%"
	return P(&expr.Binary{Op: expr.OpLike, X: lowered(col), Y: expr.Value(pattern)})
}

// IsNull returns a `column is null` predicate.
func IsNull(col string) *Predicate {
	return P(&expr.Unary{Op: expr.OpIsNull, X: columnOf(col)})
}

// NotNull returns a `column is not null` predicate.
func NotNull(col string) *Predicate {
	return P(&expr.Unary{Op: expr.OpNotNull, X: columnOf(col)})
}

// Between returns a `column between lo and hi` predicate.
func Between(col string, lo, hi any) *Predicate {
	return P(&expr.Between{X: columnOf(col), Lo: scalarOf(lo), Hi: scalarOf(hi)})
}

// falsePred is the rendering of a membership test over an empty list:
// no value is a member, so the predicate can never hold.
func falsePred() *Predicate {
	return P(&expr.Binary{Op: expr.OpEQ, X: expr.Value(1), Y: expr.Value(0)})
}

// In returns a `column in (...)` predicate. An empty list yields an
// always-false predicate rather than invalid SQL.
func In(col string, vs ...any) *Predicate {
	if len(vs) == 0 {
		return falsePred()
	}
	vals := make([]expr.Scalar, len(vs))
	for i, v := range vs {
		vals[i] = scalarOf(v)
	}
	return P(expr.NewInList(columnOf(col), vals...))
}

// NotIn returns a `column not in (...)` predicate. An empty list yields
// an always-true predicate (nothing is excluded).
func NotIn(col string, vs ...any) *Predicate {
	if len(vs) == 0 {
		return Not(falsePred())
	}
	vals := make([]expr.Scalar, len(vs))
	for i, v := range vs {
		vals[i] = scalarOf(v)
	}
	in := expr.NewInList(columnOf(col), vals...)
	return P(&expr.InList{X: in.X, Vals: in.Vals, Not: true})
}

// InSelect returns a `column in (subquery)` predicate.
func InSelect(col string, s *Selector) *Predicate {
	q, err := s.Build()
	if err != nil {
		return &Predicate{err: err}
	}
	return P(&expr.InList{X: columnOf(col), Vals: []expr.Scalar{q}})
}

// Exists returns an `exists (subquery)` predicate.
func Exists(s *Selector) *Predicate {
	q, err := s.Build()
	if err != nil {
		return &Predicate{err: err}
	}
	return P(&expr.Exists{Query: q})
}

// NotExists returns a `not exists (subquery)` predicate.
func NotExists(s *Selector) *Predicate {
	q, err := s.Build()
	if err != nil {
		return &Predicate{err: err}
	}
	return P(&expr.Exists{Query: q, Not: true})
}

// And combines predicates conjunctively. A single predicate is returned
// as is; And of nothing is nil.
func And(ps ...*Predicate) *Predicate {
	return combine(expr.OpAnd, ps)
}

// Or combines predicates disjunctively.
func Or(ps ...*Predicate) *Predicate {
	return combine(expr.OpOr, ps)
}

func combine(op expr.BinaryOp, ps []*Predicate) *Predicate {
	var out *Predicate
	for _, p := range ps {
		if p == nil {
			continue
		}
		if p.err != nil {
			return p
		}
		if out == nil {
			out = p
			continue
		}
		out = P(&expr.Binary{Op: op, X: out.x, Y: p.x})
	}
	return out
}

// Not negates a predicate.
func Not(p *Predicate) *Predicate {
	if p == nil || p.err != nil {
		return p
	}
	return P(&expr.Unary{Op: expr.OpNot, X: p.x})
}

// Aggregate and function helpers for select lists, HAVING and ORDER BY.

func aggr(fn expr.AggregateFunc, col string) expr.Scalar {
	a := &expr.Aggregate{Fn: fn}
	if col != "" && col != "*" {
		a.X = columnOf(col)
	}
	return a
}

// Count returns a count(column) aggregate; Count("*") counts rows.
func Count(col string) expr.Scalar { return aggr(expr.AggCount, col) }

// Sum returns a sum(column) aggregate.
func Sum(col string) expr.Scalar { return aggr(expr.AggSum, col) }

// Avg returns an avg(column) aggregate.
func Avg(col string) expr.Scalar { return aggr(expr.AggAvg, col) }

// Min returns a min(column) aggregate.
func Min(col string) expr.Scalar { return aggr(expr.AggMin, col) }

// Max returns a max(column) aggregate.
func Max(col string) expr.Scalar { return aggr(expr.AggMax, col) }

// Lower returns a lower(column) function call.
func Lower(col string) expr.Scalar { return lowered(col) }

// Upper returns an upper(column) function call.
func Upper(col string) expr.Scalar {
	return &expr.Func{Name: "upper", Args: []expr.Scalar{columnOf(col)}}
}

// Asc marks a column ascending in an OrderBy list. Ascending is the
// default, so this is spelling convenience only.
func Asc(col string) string { return col + " asc" }

// Desc marks a column descending in an OrderBy list.
func Desc(col string) string { return col + " desc" }

func parseOrder(term string) *expr.Order {
	t := strings.TrimSpace(term)
	switch low := strings.ToLower(t); {
	case strings.HasSuffix(low, " desc"):
		return &expr.Order{X: columnOf(strings.TrimSpace(t[:len(t)-5])), Desc: true}
	case strings.HasSuffix(low, " asc"):
		return &expr.Order{X: columnOf(strings.TrimSpace(t[:len(t)-4]))}
	default:
		return &expr.Order{X: columnOf(t)}
	}
}

// TableView is a source the selector can select from: a named table or
// a derived selector.
type TableView interface {
	source() (expr.Source, error)
}

// SelectTable is a named table reference with an optional alias.
type SelectTable struct {
	name  string
	alias string
}

// Table returns a reference to the named table.
func Table(name string) *SelectTable {
	return &SelectTable{name: name}
}

// As sets the table alias.
func (t *SelectTable) As(alias string) *SelectTable {
	t.alias = alias
	return t
}

// Name returns the table name.
func (t *SelectTable) Name() string { return t.name }

// C returns a column reference qualified by the table alias, or by the
// table name when no alias was set.
func (t *SelectTable) C(column string) string {
	q := t.alias
	if q == "" {
		q = t.name
	}
	return q + "." + column
}

func (t *SelectTable) ref() *expr.TableRef {
	return &expr.TableRef{Name: t.name, Alias: t.alias}
}

func (t *SelectTable) source() (expr.Source, error) {
	return t.ref(), nil
}

type joinSpec struct {
	kind  expr.JoinKind
	table TableView
	on    *Predicate
}

// Selector builds a SELECT statement. Chained calls accumulate state;
// Build assembles the immutable expression tree and Query formats it
// for the selector's dialect.
type Selector struct {
	dialect  string
	columns  []string
	exprs    []expr.Scalar
	from     TableView
	joins    []joinSpec
	where    *Predicate
	groupBy  []string
	having   *Predicate
	distinct bool
	orders   []string
	offset   *int
	limit    *int
	as       string
	errs     []error
}

// Select returns a dialect-neutral selector projecting the given
// columns. Selecting "*" (or nothing) projects all columns.
func Select(columns ...string) *Selector {
	s := &Selector{}
	return s.Select(columns...)
}

func (s *Selector) setDialect(name string) *Selector {
	s.dialect = name
	return s
}

// Select replaces the projected columns.
func (s *Selector) Select(columns ...string) *Selector {
	s.columns = nil
	for _, c := range columns {
		if c == "*" {
			continue
		}
		s.columns = append(s.columns, c)
	}
	return s
}

// AppendSelect adds columns to the projection.
func (s *Selector) AppendSelect(columns ...string) *Selector {
	s.columns = append(s.columns, columns...)
	return s
}

// SelectExpr adds computed expressions (aggregates, function calls) to
// the projection. Pair with ColumnAs for labeled output columns.
func (s *Selector) SelectExpr(xs ...expr.Scalar) *Selector {
	s.exprs = append(s.exprs, xs...)
	return s
}

// From sets the source to select from.
func (s *Selector) From(t TableView) *Selector {
	s.from = t
	return s
}

// Where adds a predicate; successive calls are AND-combined.
func (s *Selector) Where(p *Predicate) *Selector {
	s.where = And(s.where, p)
	return s
}

// C returns a column reference qualified by the from-table.
func (s *Selector) C(column string) string {
	if t, ok := s.from.(*SelectTable); ok {
		return t.C(column)
	}
	return column
}

// Join adds an inner join against the given source. The condition is
// set by the following On call.
func (s *Selector) Join(t TableView) *Selector {
	return s.join(expr.InnerJoin, t)
}

// LeftJoin adds a left outer join.
func (s *Selector) LeftJoin(t TableView) *Selector {
	return s.join(expr.LeftJoin, t)
}

// RightJoin adds a right outer join.
func (s *Selector) RightJoin(t TableView) *Selector {
	return s.join(expr.RightJoin, t)
}

// CrossJoin adds a cross join; it takes no condition.
func (s *Selector) CrossJoin(t TableView) *Selector {
	return s.join(expr.CrossJoin, t)
}

func (s *Selector) join(kind expr.JoinKind, t TableView) *Selector {
	s.joins = append(s.joins, joinSpec{kind: kind, table: t})
	return s
}

// On sets the equality condition of the most recent join.
func (s *Selector) On(col1, col2 string) *Selector {
	if len(s.joins) == 0 {
		s.errs = append(s.errs, errors.New("dialect/sql: On called before Join"))
		return s
	}
	j := &s.joins[len(s.joins)-1]
	j.on = And(j.on, ColumnsEQ(col1, col2))
	return s
}

// OnP sets an arbitrary condition on the most recent join.
func (s *Selector) OnP(p *Predicate) *Selector {
	if len(s.joins) == 0 {
		s.errs = append(s.errs, errors.New("dialect/sql: OnP called before Join"))
		return s
	}
	j := &s.joins[len(s.joins)-1]
	j.on = And(j.on, p)
	return s
}

// GroupBy adds group-by columns.
func (s *Selector) GroupBy(columns ...string) *Selector {
	s.groupBy = append(s.groupBy, columns...)
	return s
}

// Having sets the having predicate; successive calls are AND-combined.
func (s *Selector) Having(p *Predicate) *Selector {
	s.having = And(s.having, p)
	return s
}

// Distinct marks the query distinct.
func (s *Selector) Distinct() *Selector {
	s.distinct = true
	return s
}

// OrderBy adds order terms. Use Desc(col) for descending order.
func (s *Selector) OrderBy(terms ...string) *Selector {
	s.orders = append(s.orders, terms...)
	return s
}

// Limit caps the number of returned rows.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Offset skips the first n rows.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// As sets the derived-table alias used when the selector appears as a
// source of an enclosing query.
func (s *Selector) As(alias string) *Selector {
	s.as = alias
	return s
}

// Clone returns a copy of the selector that can be extended without
// affecting the original.
func (s *Selector) Clone() *Selector {
	if s == nil {
		return nil
	}
	c := *s
	c.columns = append([]string(nil), s.columns...)
	c.exprs = append([]expr.Scalar(nil), s.exprs...)
	c.joins = append([]joinSpec(nil), s.joins...)
	c.groupBy = append([]string(nil), s.groupBy...)
	c.orders = append([]string(nil), s.orders...)
	c.errs = append([]error(nil), s.errs...)
	return &c
}

// Build assembles the immutable select tree.
func (s *Selector) Build() (*expr.Select, error) {
	if err := s.Err(); err != nil {
		return nil, err
	}
	sel := &expr.Select{Distinct: s.distinct, As: s.as}
	for _, c := range s.columns {
		sel.Columns = append(sel.Columns, &expr.ColumnDecl{X: columnOf(c)})
	}
	for _, x := range s.exprs {
		if l, ok := x.(*labeledColumn); ok {
			sel.Columns = append(sel.Columns, &expr.ColumnDecl{X: l.x, As: l.as})
			continue
		}
		sel.Columns = append(sel.Columns, &expr.ColumnDecl{X: x})
	}
	if s.from != nil {
		src, err := s.from.source()
		if err != nil {
			return nil, err
		}
		for _, j := range s.joins {
			right, err := j.table.source()
			if err != nil {
				return nil, err
			}
			jn := &expr.Join{Kind: j.kind, Left: src, Right: right}
			if j.on != nil {
				if j.on.err != nil {
					return nil, j.on.err
				}
				jn.On = j.on.x
			}
			src = jn
		}
		sel.From = src
	}
	if s.where != nil {
		if s.where.err != nil {
			return nil, s.where.err
		}
		sel.Where = s.where.x
	}
	for _, g := range s.groupBy {
		sel.GroupBy = append(sel.GroupBy, columnOf(g))
	}
	if s.having != nil {
		if s.having.err != nil {
			return nil, s.having.err
		}
		sel.Having = s.having.x
	}
	for _, o := range s.orders {
		sel.OrderBy = append(sel.OrderBy, parseOrder(o))
	}
	sel.Offset, sel.Limit = s.offset, s.limit
	return sel, nil
}

func (s *Selector) source() (expr.Source, error) {
	return s.Build()
}

// Err returns the accumulated builder errors.
func (s *Selector) Err() error {
	return errors.Join(s.errs...)
}

// Query formats the select for the selector's dialect and returns the
// SQL text with its flattened arguments. Build or formatting errors are
// reported by Err.
func (s *Selector) Query() (string, []any) {
	st, err := s.Build()
	if err != nil {
		s.errs = append(s.errs, err)
		return "", nil
	}
	text, params, err := FormatterFor(s.dialect).Format(st)
	if err != nil {
		s.errs = append(s.errs, err)
		return "", nil
	}
	return text, paramValues(params)
}

func paramValues(params []Param) []any {
	if len(params) == 0 {
		return nil
	}
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p.Value
	}
	return args
}

// labeledColumn carries the output label of a projected expression. It
// lives on the builder side only and never reaches a formatter: Build
// unwraps it into the column declaration of the select list.
type labeledColumn struct {
	expr.ScalarExt
	x  expr.Scalar
	as string
}

// ColumnAs labels a projected expression with an output name.
func ColumnAs(x expr.Scalar, label string) expr.Scalar {
	return &labeledColumn{x: x, as: label}
}

// Union starts a UNION chain between this selector and another.
func (s *Selector) Union(t *Selector) *UnionSelector {
	return newUnion(s, t, false)
}

// UnionAll starts a UNION ALL chain.
func (s *Selector) UnionAll(t *Selector) *UnionSelector {
	return newUnion(s, t, true)
}

type unionPart struct {
	sel *Selector
	all bool
}

// UnionSelector combines selectors with UNION / UNION ALL. Ordering and
// pagination live only on the chain; operands carrying their own order
// or pagination are rejected at build time.
type UnionSelector struct {
	dialect string
	first   *Selector
	rest    []unionPart
	orders  []string
	offset  *int
	limit   *int
	errs    []error
}

func newUnion(x, y *Selector, all bool) *UnionSelector {
	return &UnionSelector{
		dialect: x.dialect,
		first:   x,
		rest:    []unionPart{{sel: y, all: all}},
	}
}

// Union appends another UNION operand to the chain.
func (u *UnionSelector) Union(t *Selector) *UnionSelector {
	u.rest = append(u.rest, unionPart{sel: t})
	return u
}

// UnionAll appends another UNION ALL operand to the chain.
func (u *UnionSelector) UnionAll(t *Selector) *UnionSelector {
	u.rest = append(u.rest, unionPart{sel: t, all: true})
	return u
}

// OrderBy adds shared order terms for the whole chain.
func (u *UnionSelector) OrderBy(terms ...string) *UnionSelector {
	u.orders = append(u.orders, terms...)
	return u
}

// Limit caps the number of rows of the whole chain.
func (u *UnionSelector) Limit(n int) *UnionSelector {
	u.limit = &n
	return u
}

// Offset skips the first n rows of the whole chain.
func (u *UnionSelector) Offset(n int) *UnionSelector {
	u.offset = &n
	return u
}

func buildOperand(s *Selector) (*expr.Select, error) {
	if s.limit != nil || s.offset != nil || len(s.orders) > 0 {
		return nil, errors.New("dialect/sql: union operands cannot carry order or pagination; set them on the union")
	}
	return s.Build()
}

// Build assembles the immutable union tree.
func (u *UnionSelector) Build() (*expr.Union, error) {
	if len(u.errs) > 0 {
		return nil, errors.Join(u.errs...)
	}
	left, err := buildOperand(u.first)
	if err != nil {
		return nil, err
	}
	var q expr.Query = left
	for i, part := range u.rest {
		right, err := buildOperand(part.sel)
		if err != nil {
			return nil, err
		}
		un := &expr.Union{X: q, Y: right, All: part.all}
		if i == len(u.rest)-1 {
			for _, o := range u.orders {
				un.OrderBy = append(un.OrderBy, parseOrder(o))
			}
			un.Offset, un.Limit = u.offset, u.limit
		}
		q = un
	}
	return q.(*expr.Union), nil
}

// Err returns the accumulated builder errors.
func (u *UnionSelector) Err() error {
	return errors.Join(u.errs...)
}

// Query formats the union chain for its dialect.
func (u *UnionSelector) Query() (string, []any) {
	un, err := u.Build()
	if err != nil {
		u.errs = append(u.errs, err)
		return "", nil
	}
	text, params, err := FormatterFor(u.dialect).Format(un)
	if err != nil {
		u.errs = append(u.errs, err)
		return "", nil
	}
	return text, paramValues(params)
}

// InsertBuilder builds an INSERT statement.
type InsertBuilder struct {
	dialect   string
	table     string
	columns   []string
	rows      [][]any
	defaults  bool
	returning []string
	conflict  []*expr.Assign
	from      *Selector
	errs      []error
}

// Insert returns a dialect-neutral insert builder for the given table.
func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (i *InsertBuilder) setDialect(name string) *InsertBuilder {
	i.dialect = name
	return i
}

// Columns sets the insert column list.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = columns
	return i
}

// Values appends one row of values; call repeatedly for a bulk insert.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.rows = append(i.rows, values)
	return i
}

// Default marks the insert as a default-values insert.
func (i *InsertBuilder) Default() *InsertBuilder {
	i.defaults = true
	return i
}

// Returning requests the given columns back from the insert.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = columns
	return i
}

// OnDuplicateUpdate adds a MySQL `on duplicate key update` assignment.
func (i *InsertBuilder) OnDuplicateUpdate(column string, v any) *InsertBuilder {
	i.conflict = append(i.conflict, &expr.Assign{
		Column: &expr.Column{Name: column},
		Value:  scalarOf(v),
	})
	return i
}

// FromSelect inserts the rows produced by the given selector.
func (i *InsertBuilder) FromSelect(s *Selector) *InsertBuilder {
	i.from = s
	return i
}

func (i *InsertBuilder) returningCols() []*expr.Column {
	cols := make([]*expr.Column, 0, len(i.returning))
	for _, c := range i.returning {
		cols = append(cols, &expr.Column{Name: c})
	}
	return cols
}

// Build assembles the immutable insert tree.
func (i *InsertBuilder) Build() (expr.Statement, error) {
	if len(i.errs) > 0 {
		return nil, errors.Join(i.errs...)
	}
	table := &expr.TableRef{Name: i.table}
	if i.from != nil {
		q, err := i.from.Build()
		if err != nil {
			return nil, err
		}
		ins := &expr.InsertSelect{Table: table, Query: q, Returning: i.returningCols()}
		for _, c := range i.columns {
			ins.Columns = append(ins.Columns, &expr.Column{Name: c})
		}
		return ins, nil
	}
	if i.defaults || len(i.rows) == 0 {
		return &expr.Insert{Table: table, Returning: i.returningCols()}, nil
	}
	for _, row := range i.rows {
		if len(row) != len(i.columns) {
			return nil, fmt.Errorf("dialect/sql: insert row has %d values for %d columns", len(row), len(i.columns))
		}
	}
	if len(i.rows) > 1 {
		if len(i.returning) > 0 {
			return nil, errors.New("dialect/sql: returning is not supported on bulk inserts")
		}
		bulk := &BulkInsert{Table: table}
		for _, c := range i.columns {
			bulk.Columns = append(bulk.Columns, &expr.Column{Name: c})
		}
		for _, row := range i.rows {
			vals := make([]expr.Scalar, len(row))
			for j, v := range row {
				vals[j] = scalarOf(v)
			}
			bulk.Rows = append(bulk.Rows, vals)
		}
		return bulk, nil
	}
	ins := &expr.Insert{Table: table, Returning: i.returningCols()}
	for j, c := range i.columns {
		ins.Assigns = append(ins.Assigns, &expr.Assign{
			Column: &expr.Column{Name: c},
			Value:  scalarOf(i.rows[0][j]),
		})
	}
	if len(i.conflict) > 0 {
		return &InsertOnDuplicate{Insert: ins, Updates: i.conflict}, nil
	}
	return ins, nil
}

// Err returns the accumulated builder errors.
func (i *InsertBuilder) Err() error {
	return errors.Join(i.errs...)
}

// Query formats the insert for the builder's dialect.
func (i *InsertBuilder) Query() (string, []any) {
	st, err := i.Build()
	if err != nil {
		i.errs = append(i.errs, err)
		return "", nil
	}
	text, params, err := FormatterFor(i.dialect).Format(st)
	if err != nil {
		i.errs = append(i.errs, err)
		return "", nil
	}
	return text, paramValues(params)
}

// UpdateBuilder builds an UPDATE statement.
type UpdateBuilder struct {
	dialect string
	table   string
	assigns []*expr.Assign
	where   *Predicate
	errs    []error
}

// Update returns a dialect-neutral update builder for the given table.
func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (u *UpdateBuilder) setDialect(name string) *UpdateBuilder {
	u.dialect = name
	return u
}

// Set assigns a value to a column.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.assigns = append(u.assigns, &expr.Assign{
		Column: &expr.Column{Name: column},
		Value:  scalarOf(v),
	})
	return u
}

// Where adds a predicate; successive calls are AND-combined.
func (u *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	u.where = And(u.where, p)
	return u
}

// Build assembles the immutable update tree. Predicates bound against
// aliased tables are unqualified first, since UPDATE takes no aliases.
func (u *UpdateBuilder) Build() (*expr.Update, error) {
	if len(u.errs) > 0 {
		return nil, errors.Join(u.errs...)
	}
	if len(u.assigns) == 0 {
		return nil, errors.New("dialect/sql: update requires at least one Set")
	}
	up := &expr.Update{
		Table:   &expr.TableRef{Name: u.table},
		Assigns: u.assigns,
	}
	if u.where != nil {
		if u.where.err != nil {
			return nil, u.where.err
		}
		up.Where = expr.RemoveAliases(u.where.x).(expr.Scalar)
	}
	return up, nil
}

// Err returns the accumulated builder errors.
func (u *UpdateBuilder) Err() error {
	return errors.Join(u.errs...)
}

// Query formats the update for the builder's dialect.
func (u *UpdateBuilder) Query() (string, []any) {
	st, err := u.Build()
	if err != nil {
		u.errs = append(u.errs, err)
		return "", nil
	}
	text, params, err := FormatterFor(u.dialect).Format(st)
	if err != nil {
		u.errs = append(u.errs, err)
		return "", nil
	}
	return text, paramValues(params)
}

// DeleteBuilder builds a DELETE statement.
type DeleteBuilder struct {
	dialect string
	table   string
	where   *Predicate
	errs    []error
}

// Delete returns a dialect-neutral delete builder for the given table.
func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (d *DeleteBuilder) setDialect(name string) *DeleteBuilder {
	d.dialect = name
	return d
}

// Where adds a predicate; successive calls are AND-combined.
func (d *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	d.where = And(d.where, p)
	return d
}

// Build assembles the immutable delete tree, unqualifying predicate
// columns as for UPDATE.
func (d *DeleteBuilder) Build() (*expr.Delete, error) {
	if len(d.errs) > 0 {
		return nil, errors.Join(d.errs...)
	}
	del := &expr.Delete{Table: &expr.TableRef{Name: d.table}}
	if d.where != nil {
		if d.where.err != nil {
			return nil, d.where.err
		}
		del.Where = expr.RemoveAliases(d.where.x).(expr.Scalar)
	}
	return del, nil
}

// Err returns the accumulated builder errors.
func (d *DeleteBuilder) Err() error {
	return errors.Join(d.errs...)
}

// Query formats the delete for the builder's dialect.
func (d *DeleteBuilder) Query() (string, []any) {
	st, err := d.Build()
	if err != nil {
		d.errs = append(d.errs, err)
		return "", nil
	}
	text, params, err := FormatterFor(d.dialect).Format(st)
	if err != nil {
		d.errs = append(d.errs, err)
		return "", nil
	}
	return text, paramValues(params)
}

// Field predicate constructors. They defer column qualification to the
// selector they run against, which is what the generic typed fields
// build on.

// FieldEQ matches rows where the named field equals v.
func FieldEQ(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(EQ(s.C(name), v)) }
}

// FieldNEQ matches rows where the named field differs from v.
func FieldNEQ(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(NEQ(s.C(name), v)) }
}

// FieldGT matches rows where the named field is greater than v.
func FieldGT(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(GT(s.C(name), v)) }
}

// FieldGTE matches rows where the named field is at least v.
func FieldGTE(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(GTE(s.C(name), v)) }
}

// FieldLT matches rows where the named field is less than v.
func FieldLT(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(LT(s.C(name), v)) }
}

// FieldLTE matches rows where the named field is at most v.
func FieldLTE(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(LTE(s.C(name), v)) }
}

// FieldIn matches rows where the named field is one of vs.
func FieldIn[T any](name string, vs ...T) func(*Selector) {
	return FieldInGeneric(name, vs...)
}

// FieldNotIn matches rows where the named field is none of vs.
func FieldNotIn[T any](name string, vs ...T) func(*Selector) {
	return FieldNotInGeneric(name, vs...)
}

// FieldContains matches rows where the named field contains v.
func FieldContains(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(Contains(s.C(name), v)) }
}

// FieldContainsFold matches rows where the named field contains v,
// case-insensitively.
func FieldContainsFold(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(ContainsFold(s.C(name), v)) }
}

// FieldHasPrefix matches rows where the named field starts with v.
func FieldHasPrefix(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(HasPrefix(s.C(name), v)) }
}

// FieldHasSuffix matches rows where the named field ends with v.
func FieldHasSuffix(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(HasSuffix(s.C(name), v)) }
}

// FieldEqualFold matches rows where the named field equals v,
// case-insensitively.
func FieldEqualFold(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(EqualFold(s.C(name), v)) }
}

// FieldIsNull matches rows where the named field is null.
func FieldIsNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(IsNull(s.C(name))) }
}

// FieldNotNull matches rows where the named field is not null.
func FieldNotNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(NotNull(s.C(name))) }
}
