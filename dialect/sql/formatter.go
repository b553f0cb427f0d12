package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/strataql/strata/dialect/sql/expr"
	"github.com/strataql/strata/schema/field"
)

// Param is one positional bind parameter of a formatted statement: the
// runtime value and the opaque encoding tag the execution layer uses to
// bind it.
type Param struct {
	Value any
	Type  field.Type
}

// Formatter lowers an expression tree to parameterized SQL text. It is
// an expr.Visitor that appends to a private buffer as traversal side
// effect; every visit must return the node it received, and a
// substitution aborts the pass with a RewriteError.
//
// The zero hooks render dialect-neutral SQL: `?` placeholders, ANSI
// quoting, and no pagination or RETURNING support. The dialect
// constructors (MySQL, Postgres, SQLite) install their own hooks.
//
// A Formatter owns mutable per-pass state and must not be shared across
// goroutines; distinct formatters may render the same tree concurrently
// since nodes are immutable.
type Formatter struct {
	// Self is the outermost visitor, following the Rewriter convention.
	// Dialect formatters embed *Formatter and point Self at themselves
	// so extension nodes reach their VisitUnknown override.
	Self expr.Visitor

	meta    Metadata
	dialect string
	indent  int

	// Dialect hooks. Nil pagination or returning means unsupported.
	placeholder func(n int) string
	pagination  func(f *Formatter, offset, limit *int)
	returning   func(f *Formatter, cols []*expr.Column)
	defaults    func(f *Formatter)

	sb     strings.Builder
	params []Param
	depth  int
	err    error
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithIndent enables pretty printing: major clauses start on their own
// line, indented n spaces per subquery nesting level. Indentation never
// affects the parameter list or the semantic text.
func WithIndent(n int) Option {
	return func(f *Formatter) {
		f.indent = n
	}
}

// NewFormatter returns a dialect-neutral formatter: ANSI quoting, `?`
// placeholders, and no pagination or RETURNING support.
func NewFormatter(opts ...Option) *Formatter {
	return newFormatter("", standardMetadata, opts...)
}

func newFormatter(dialectName string, meta Metadata, opts ...Option) *Formatter {
	f := &Formatter{
		meta:    meta,
		dialect: dialectName,
		placeholder: func(int) string {
			return "?"
		},
	}
	f.Self = f
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format renders an expression tree and returns the SQL text along with
// its bind parameters in placeholder order. Formatting is all-or-nothing:
// on error, no partial text is returned.
func (f *Formatter) Format(e expr.Expr) (string, []Param, error) {
	f.sb.Reset()
	f.params = nil
	f.depth = 0
	f.err = nil
	f.Visit(e)
	if f.err != nil {
		return "", nil, f.err
	}
	return f.sb.String(), f.params, nil
}

func (f *Formatter) outer() expr.Visitor {
	if f.Self != nil {
		return f.Self
	}
	return f
}

// fail records the first error of the pass; later writes are ignored.
func (f *Formatter) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// Visit drives the traversal and enforces the read-only contract: the
// dispatched handler must hand back the node it received.
func (f *Formatter) Visit(e expr.Expr) expr.Expr {
	if e == nil || f.err != nil {
		return e
	}
	if out := expr.Dispatch(f.outer(), e); out != e {
		f.fail(&RewriteError{Node: e})
	}
	return e
}

func (f *Formatter) write(s string) {
	if f.err == nil {
		f.sb.WriteString(s)
	}
}

// clause writes the separator before a major clause keyword: a single
// space in compact mode, a fresh indented line in pretty mode.
func (f *Formatter) clause(kw string) {
	if f.err != nil {
		return
	}
	if f.indent > 0 {
		f.sb.WriteByte('\n')
		for i := 0; i < f.indent*f.depth; i++ {
			f.sb.WriteByte(' ')
		}
	} else {
		f.sb.WriteByte(' ')
	}
	f.sb.WriteString(kw)
}

// ident writes a name, quoting it when it collides with a reserved
// keyword or is not a valid bare identifier.
func (f *Formatter) ident(name string) {
	if f.meta.mustQuote(name) {
		f.write(f.meta.quoteName(name))
	} else {
		f.write(name)
	}
}

// selfDelimiting reports whether a child renders without brackets:
// leaves, function calls, aggregates and exists predicates carry their
// own delimiters. Everything composite is parenthesized, preserving
// precedence without a per-dialect precedence table.
func selfDelimiting(x expr.Expr) bool {
	if x.Leaf() {
		return true
	}
	switch x.(type) {
	case *expr.Func, *expr.Aggregate, *expr.Exists:
		return true
	}
	return false
}

// scalar writes a child expression under the bracket rule.
func (f *Formatter) scalar(x expr.Scalar) {
	if x == nil || f.err != nil {
		return
	}
	if selfDelimiting(x) {
		f.Visit(x)
		return
	}
	f.write("(")
	f.depth++
	f.Visit(x)
	f.depth--
	f.write(")")
}

// source writes a from-clause operand. Table refs and joins render
// bare; derived queries are parenthesized and labeled with their alias.
func (f *Formatter) source(s expr.Source) {
	if s == nil || f.err != nil {
		return
	}
	q, ok := s.(expr.Query)
	if !ok {
		f.Visit(s)
		return
	}
	f.write("(")
	f.depth++
	f.Visit(q)
	f.depth--
	f.write(")")
	if sel, ok := q.(*expr.Select); ok && sel.As != "" {
		f.write(" as ")
		f.ident(sel.As)
	}
}

// bindInt appends an integer parameter and writes its placeholder.
// Dialect pagination writers use it so their extra parameters keep
// positional order.
func (f *Formatter) bindInt(n int) {
	f.params = append(f.params, Param{Value: n, Type: field.TypeInt})
	f.write(f.placeholder(len(f.params)))
}

// paginate writes the offset/limit clause through the dialect hook.
func (f *Formatter) paginate(offset, limit *int) {
	if offset == nil && limit == nil {
		return
	}
	if f.pagination == nil {
		f.fail(&UnsupportedError{Dialect: f.dialect, Feature: "limit/offset pagination"})
		return
	}
	f.pagination(f, offset, limit)
}

func (f *Formatter) VisitColumn(c *expr.Column) expr.Expr {
	if c.Table != "" {
		f.ident(c.Table)
		f.write(".")
	}
	f.ident(c.Name)
	return c
}

func (f *Formatter) VisitArg(a *expr.Arg) expr.Expr {
	f.params = append(f.params, Param{Value: a.V, Type: a.Type})
	f.write(f.placeholder(len(f.params)))
	return a
}

func (f *Formatter) VisitCast(c *expr.Cast) expr.Expr {
	name, ok := castTypes[c.Type]
	if !ok {
		f.fail(&UnsupportedError{Dialect: f.dialect, Feature: fmt.Sprintf("cast to %s", c.Type)})
		return c
	}
	f.write("cast(")
	f.Visit(c.X)
	f.write(" as ")
	f.write(name)
	f.write(")")
	return c
}

var castTypes = map[field.Type]string{
	field.TypeBool:    "boolean",
	field.TypeInt8:    "integer",
	field.TypeInt16:   "integer",
	field.TypeInt32:   "integer",
	field.TypeInt:     "integer",
	field.TypeInt64:   "integer",
	field.TypeUint8:   "integer",
	field.TypeUint16:  "integer",
	field.TypeUint32:  "integer",
	field.TypeUint:    "integer",
	field.TypeUint64:  "integer",
	field.TypeFloat32: "float",
	field.TypeFloat64: "float",
	field.TypeString:  "varchar",
	field.TypeEnum:    "varchar",
	field.TypeTime:    "timestamp",
	field.TypeBytes:   "blob",
	field.TypeJSON:    "json",
	field.TypeUUID:    "uuid",
}

func (f *Formatter) VisitUnary(u *expr.Unary) expr.Expr {
	switch u.Op {
	case expr.OpIsNull:
		f.scalar(u.X)
		f.write(" is null")
	case expr.OpNotNull:
		f.scalar(u.X)
		f.write(" is not null")
	case expr.OpNeg:
		f.write("-")
		f.scalar(u.X)
	case expr.OpNot:
		f.write("not ")
		f.scalar(u.X)
	default:
		f.fail(&UnsupportedError{Dialect: f.dialect, Feature: fmt.Sprintf("unary operator %d", u.Op)})
	}
	return u
}

func (f *Formatter) VisitBinary(b *expr.Binary) expr.Expr {
	op := b.Op.String()
	if op == "" {
		f.fail(&UnsupportedError{Dialect: f.dialect, Feature: fmt.Sprintf("binary operator %d", b.Op)})
		return b
	}
	f.scalar(b.X)
	f.write(" ")
	f.write(op)
	f.write(" ")
	f.scalar(b.Y)
	return b
}

func (f *Formatter) VisitFunc(fn *expr.Func) expr.Expr {
	f.write(fn.Name)
	f.write("(")
	for i, a := range fn.Args {
		if i > 0 {
			f.write(", ")
		}
		f.scalar(a)
	}
	f.write(")")
	return fn
}

func (f *Formatter) VisitAggregate(a *expr.Aggregate) expr.Expr {
	f.write(string(a.Fn))
	f.write("(")
	if a.X == nil {
		// distinct has no meaning for the * form and is dropped.
		f.write("*")
	} else {
		if a.Distinct {
			f.write("distinct ")
		}
		f.Visit(a.X)
	}
	f.write(")")
	return a
}

func (f *Formatter) VisitBetween(b *expr.Between) expr.Expr {
	f.scalar(b.X)
	f.write(" between ")
	f.scalar(b.Lo)
	f.write(" and ")
	f.scalar(b.Hi)
	return b
}

func (f *Formatter) VisitInList(in *expr.InList) expr.Expr {
	f.scalar(in.X)
	if in.Not {
		f.write(" not in (")
	} else {
		f.write(" in (")
	}
	for i, v := range in.Vals {
		if i > 0 {
			f.write(", ")
		}
		if q, ok := v.(expr.Query); ok {
			// The list parentheses already delimit a subquery operand.
			// Another pair would turn the set form into a scalar
			// subquery on Postgres.
			f.depth++
			f.Visit(q)
			f.depth--
			continue
		}
		f.scalar(v)
	}
	f.write(")")
	return in
}

func (f *Formatter) VisitExists(e *expr.Exists) expr.Expr {
	if e.Not {
		f.write("not ")
	}
	f.write("exists (")
	f.depth++
	f.Visit(e.Query)
	f.depth--
	f.write(")")
	return e
}

func (f *Formatter) VisitTable(t *expr.TableRef) expr.Expr {
	f.ident(t.Name)
	if t.Alias != "" {
		f.write(" as ")
		f.ident(t.Alias)
	}
	return t
}

func (f *Formatter) VisitJoin(j *expr.Join) expr.Expr {
	f.source(j.Left)
	f.write(" ")
	f.write(j.Kind.String())
	f.write(" ")
	f.source(j.Right)
	if j.On != nil {
		f.write(" on ")
		f.Visit(j.On)
	}
	return j
}

func (f *Formatter) VisitColumnDecl(d *expr.ColumnDecl) expr.Expr {
	f.scalar(d.X)
	if d.As != "" {
		f.write(" as ")
		f.ident(d.As)
	}
	return d
}

func (f *Formatter) VisitOrder(o *expr.Order) expr.Expr {
	f.scalar(o.X)
	if o.Desc {
		f.write(" desc")
	}
	return o
}

func (f *Formatter) VisitSelect(s *expr.Select) expr.Expr {
	f.write("select ")
	if s.Distinct {
		f.write("distinct ")
	}
	if len(s.Columns) == 0 {
		f.write("*")
	}
	for i, c := range s.Columns {
		if i > 0 {
			f.write(", ")
		}
		f.Visit(c)
	}
	if s.From != nil {
		f.clause("from ")
		f.source(s.From)
	}
	if s.Where != nil {
		f.clause("where ")
		f.Visit(s.Where)
	}
	if len(s.GroupBy) > 0 {
		f.clause("group by ")
		for i, g := range s.GroupBy {
			if i > 0 {
				f.write(", ")
			}
			f.scalar(g)
		}
	}
	if s.Having != nil {
		f.clause("having ")
		f.Visit(s.Having)
	}
	f.orderBy(s.OrderBy)
	f.paginate(s.Offset, s.Limit)
	return s
}

func (f *Formatter) orderBy(orders []*expr.Order) {
	if len(orders) == 0 {
		return
	}
	f.clause("order by ")
	for i, o := range orders {
		if i > 0 {
			f.write(", ")
		}
		f.Visit(o)
	}
}

func (f *Formatter) VisitUnion(u *expr.Union) expr.Expr {
	f.Visit(u.X)
	if u.All {
		f.clause("union all ")
	} else {
		f.clause("union ")
	}
	f.Visit(u.Y)
	f.orderBy(u.OrderBy)
	f.paginate(u.Offset, u.Limit)
	return u
}

func (f *Formatter) VisitAssign(a *expr.Assign) expr.Expr {
	f.ident(a.Column.Name)
	f.write(" = ")
	f.scalar(a.Value)
	return a
}

func (f *Formatter) VisitInsert(i *expr.Insert) expr.Expr {
	f.write("insert into ")
	f.ident(i.Table.Name)
	if len(i.Assigns) == 0 {
		f.writeDefaults()
	} else {
		f.write(" (")
		for j, a := range i.Assigns {
			if j > 0 {
				f.write(", ")
			}
			f.ident(a.Column.Name)
		}
		f.write(") values (")
		for j, a := range i.Assigns {
			if j > 0 {
				f.write(", ")
			}
			// The column targets were written above; visiting the
			// assign node here would emit "col = v" syntax instead.
			f.scalar(a.Value)
		}
		f.write(")")
	}
	f.writeReturning(i.Returning)
	return i
}

// writeDefaults emits the zero-column insert clause. SQLite and
// Postgres use `default values`; MySQL overrides with `() values ()`.
func (f *Formatter) writeDefaults() {
	if f.defaults != nil {
		f.defaults(f)
		return
	}
	f.write(" default values")
}

func (f *Formatter) writeReturning(cols []*expr.Column) {
	if len(cols) == 0 {
		return
	}
	if f.returning == nil {
		f.fail(&UnsupportedError{Dialect: f.dialect, Feature: "returning clause"})
		return
	}
	f.returning(f, cols)
}

func (f *Formatter) VisitInsertSelect(i *expr.InsertSelect) expr.Expr {
	f.write("insert into ")
	f.ident(i.Table.Name)
	if len(i.Columns) > 0 {
		f.write(" (")
		for j, c := range i.Columns {
			if j > 0 {
				f.write(", ")
			}
			f.ident(c.Name)
		}
		f.write(")")
	}
	f.write(" ")
	f.Visit(i.Query)
	f.writeReturning(i.Returning)
	return i
}

func (f *Formatter) VisitUpdate(u *expr.Update) expr.Expr {
	f.write("update ")
	f.ident(u.Table.Name)
	f.clause("set ")
	for i, a := range u.Assigns {
		if i > 0 {
			f.write(", ")
		}
		f.Visit(a)
	}
	if u.Where != nil {
		f.clause("where ")
		f.Visit(u.Where)
	}
	return u
}

func (f *Formatter) VisitDelete(d *expr.Delete) expr.Expr {
	f.write("delete from ")
	f.ident(d.Table.Name)
	if d.Where != nil {
		f.clause("where ")
		f.Visit(d.Where)
	}
	return d
}

// VisitUnknown rejects nodes outside the closed set. Dialect formatters
// override it to render their extension nodes and delegate the rest.
func (f *Formatter) VisitUnknown(e expr.Expr) expr.Expr {
	f.fail(&UnsupportedError{Dialect: f.dialect, Feature: fmt.Sprintf("expression type %T", e)})
	return e
}

var _ expr.Visitor = (*Formatter)(nil)

// dollarPlaceholder numbers placeholders $1, $2, ... as Postgres expects.
func dollarPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}
