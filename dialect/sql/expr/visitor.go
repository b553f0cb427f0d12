package expr

import "fmt"

// Visitor is the double-dispatch interface over the expression node set.
//
// Visit is the generic entry point: it dispatches a node to the matching
// VisitX method by dynamic type, and any node outside the closed base set
// to VisitUnknown. Implementations are expected to embed Rewriter and
// override only the methods they care about; the Self field routes the
// recursion through the outermost implementation so overrides are honored
// at every level of the tree.
type Visitor interface {
	Visit(Expr) Expr

	VisitColumn(*Column) Expr
	VisitArg(*Arg) Expr
	VisitCast(*Cast) Expr
	VisitUnary(*Unary) Expr
	VisitBinary(*Binary) Expr
	VisitFunc(*Func) Expr
	VisitAggregate(*Aggregate) Expr
	VisitBetween(*Between) Expr
	VisitInList(*InList) Expr
	VisitExists(*Exists) Expr

	VisitTable(*TableRef) Expr
	VisitJoin(*Join) Expr
	VisitColumnDecl(*ColumnDecl) Expr
	VisitOrder(*Order) Expr
	VisitSelect(*Select) Expr
	VisitUnion(*Union) Expr

	VisitAssign(*Assign) Expr
	VisitInsert(*Insert) Expr
	VisitInsertSelect(*InsertSelect) Expr
	VisitUpdate(*Update) Expr
	VisitDelete(*Delete) Expr

	// VisitUnknown receives every node that is not part of the closed
	// base set (dialect extension nodes). The base implementation returns
	// the node unchanged; strict visitors may treat it as fatal.
	VisitUnknown(Expr) Expr
}

// Dispatch routes a node to the matching VisitX method of v. It is the
// single type switch of the package; everything it does not recognize
// goes to VisitUnknown.
func Dispatch(v Visitor, e Expr) Expr {
	switch e := e.(type) {
	case *Column:
		return v.VisitColumn(e)
	case *Arg:
		return v.VisitArg(e)
	case *Cast:
		return v.VisitCast(e)
	case *Unary:
		return v.VisitUnary(e)
	case *Binary:
		return v.VisitBinary(e)
	case *Func:
		return v.VisitFunc(e)
	case *Aggregate:
		return v.VisitAggregate(e)
	case *Between:
		return v.VisitBetween(e)
	case *InList:
		return v.VisitInList(e)
	case *Exists:
		return v.VisitExists(e)
	case *TableRef:
		return v.VisitTable(e)
	case *Join:
		return v.VisitJoin(e)
	case *ColumnDecl:
		return v.VisitColumnDecl(e)
	case *Order:
		return v.VisitOrder(e)
	case *Select:
		return v.VisitSelect(e)
	case *Union:
		return v.VisitUnion(e)
	case *Assign:
		return v.VisitAssign(e)
	case *Insert:
		return v.VisitInsert(e)
	case *InsertSelect:
		return v.VisitInsertSelect(e)
	case *Update:
		return v.VisitUpdate(e)
	case *Delete:
		return v.VisitDelete(e)
	default:
		return v.VisitUnknown(e)
	}
}

// Rewrite dispatches a child node through v and asserts the result keeps
// the node category T (scalar children must stay scalars, sources stay
// sources). A rewrite that changes category is a programming error in the
// visitor and panics. Nil children pass through untouched.
func Rewrite[T Expr](v Visitor, x T) T {
	if isNil(x) {
		return x
	}
	y := v.Visit(x)
	t, ok := y.(T)
	if !ok {
		panic(fmt.Sprintf("expr: rewrite of %T produced incompatible %T", x, y))
	}
	return t
}

// RewriteList visits each element of a list through v, building a new
// list only if at least one element changed identity. The returned flag
// reports whether the result is a new list; when false, the original
// slice is returned unchanged, keeping no-op traversals allocation-free.
func RewriteList[T interface {
	Expr
	comparable
}](v Visitor, xs []T) ([]T, bool) {
	var out []T
	for i, x := range xs {
		y := Rewrite(v, x)
		if out == nil {
			if y == x {
				continue
			}
			out = make([]T, len(xs))
			copy(out, xs[:i])
		}
		out[i] = y
	}
	if out == nil {
		return xs, false
	}
	return out, true
}

func isNil[T Expr](x T) bool {
	return any(x) == nil
}

// Rewriter is the identity-preserving base visitor. Each VisitX visits
// the structural children of its node through the outermost visitor,
// compares the results against the originals by pointer identity, and
// returns the received node itself when nothing changed. Otherwise it
// returns a shallow copy with the changed children swapped in, sharing
// every untouched subtree with the original.
//
// Subclasses embed Rewriter and set Self to themselves:
//
//	type upper struct{ expr.Rewriter }
//	v := &upper{}
//	v.Self = v
type Rewriter struct {
	// Self is the outermost visitor of an embedding chain. All recursive
	// dispatch goes through it so that overridden methods are respected.
	// A nil Self makes the Rewriter itself the outermost visitor.
	Self Visitor
}

func (r *Rewriter) outer() Visitor {
	if r.Self != nil {
		return r.Self
	}
	return r
}

// Visit dispatches e through the outermost visitor.
func (r *Rewriter) Visit(e Expr) Expr {
	if e == nil {
		return nil
	}
	return Dispatch(r.outer(), e)
}

// VisitColumn returns the node unchanged; columns have no children.
func (r *Rewriter) VisitColumn(c *Column) Expr { return c }

// VisitArg returns the node unchanged; arguments have no children.
func (r *Rewriter) VisitArg(a *Arg) Expr { return a }

// VisitTable returns the node unchanged; table refs have no children.
func (r *Rewriter) VisitTable(t *TableRef) Expr { return t }

func (r *Rewriter) VisitCast(c *Cast) Expr {
	x := Rewrite(r.outer(), c.X)
	if x == c.X {
		return c
	}
	cc := *c
	cc.X = x
	return &cc
}

func (r *Rewriter) VisitUnary(u *Unary) Expr {
	x := Rewrite(r.outer(), u.X)
	if x == u.X {
		return u
	}
	uu := *u
	uu.X = x
	return &uu
}

func (r *Rewriter) VisitBinary(b *Binary) Expr {
	x := Rewrite(r.outer(), b.X)
	y := Rewrite(r.outer(), b.Y)
	if x == b.X && y == b.Y {
		return b
	}
	bb := *b
	bb.X, bb.Y = x, y
	return &bb
}

func (r *Rewriter) VisitFunc(f *Func) Expr {
	args, changed := RewriteList(r.outer(), f.Args)
	if !changed {
		return f
	}
	ff := *f
	ff.Args = args
	return &ff
}

func (r *Rewriter) VisitAggregate(a *Aggregate) Expr {
	x := Rewrite(r.outer(), a.X)
	if x == a.X {
		return a
	}
	aa := *a
	aa.X = x
	return &aa
}

func (r *Rewriter) VisitBetween(b *Between) Expr {
	x := Rewrite(r.outer(), b.X)
	lo := Rewrite(r.outer(), b.Lo)
	hi := Rewrite(r.outer(), b.Hi)
	if x == b.X && lo == b.Lo && hi == b.Hi {
		return b
	}
	bb := *b
	bb.X, bb.Lo, bb.Hi = x, lo, hi
	return &bb
}

func (r *Rewriter) VisitInList(in *InList) Expr {
	x := Rewrite(r.outer(), in.X)
	vals, changed := RewriteList(r.outer(), in.Vals)
	if x == in.X && !changed {
		return in
	}
	nn := *in
	nn.X, nn.Vals = x, vals
	return &nn
}

func (r *Rewriter) VisitExists(e *Exists) Expr {
	q := Rewrite(r.outer(), e.Query)
	if q == e.Query {
		return e
	}
	ee := *e
	ee.Query = q
	return &ee
}

func (r *Rewriter) VisitJoin(j *Join) Expr {
	left := Rewrite(r.outer(), j.Left)
	right := Rewrite(r.outer(), j.Right)
	on := Rewrite(r.outer(), j.On)
	if left == j.Left && right == j.Right && on == j.On {
		return j
	}
	jj := *j
	jj.Left, jj.Right, jj.On = left, right, on
	return &jj
}

func (r *Rewriter) VisitColumnDecl(d *ColumnDecl) Expr {
	x := Rewrite(r.outer(), d.X)
	if x == d.X {
		return d
	}
	dd := *d
	dd.X = x
	return &dd
}

func (r *Rewriter) VisitOrder(o *Order) Expr {
	x := Rewrite(r.outer(), o.X)
	if x == o.X {
		return o
	}
	oo := *o
	oo.X = x
	return &oo
}

func (r *Rewriter) VisitSelect(s *Select) Expr {
	cols, colsChanged := RewriteList(r.outer(), s.Columns)
	from := Rewrite(r.outer(), s.From)
	where := Rewrite(r.outer(), s.Where)
	groups, groupsChanged := RewriteList(r.outer(), s.GroupBy)
	having := Rewrite(r.outer(), s.Having)
	orders, ordersChanged := RewriteList(r.outer(), s.OrderBy)
	if !colsChanged && from == s.From && where == s.Where &&
		!groupsChanged && having == s.Having && !ordersChanged {
		return s
	}
	ss := *s
	ss.Columns, ss.From, ss.Where = cols, from, where
	ss.GroupBy, ss.Having, ss.OrderBy = groups, having, orders
	return &ss
}

func (r *Rewriter) VisitUnion(u *Union) Expr {
	x := Rewrite(r.outer(), u.X)
	y := Rewrite(r.outer(), u.Y)
	orders, ordersChanged := RewriteList(r.outer(), u.OrderBy)
	if x == u.X && y == u.Y && !ordersChanged {
		return u
	}
	uu := *u
	uu.X, uu.Y, uu.OrderBy = x, y, orders
	return &uu
}

func (r *Rewriter) VisitAssign(a *Assign) Expr {
	col := Rewrite(r.outer(), a.Column)
	val := Rewrite(r.outer(), a.Value)
	if col == a.Column && val == a.Value {
		return a
	}
	aa := *a
	aa.Column, aa.Value = col, val
	return &aa
}

func (r *Rewriter) VisitInsert(i *Insert) Expr {
	assigns, assignsChanged := RewriteList(r.outer(), i.Assigns)
	ret, retChanged := RewriteList(r.outer(), i.Returning)
	table := Rewrite(r.outer(), i.Table)
	if !assignsChanged && !retChanged && table == i.Table {
		return i
	}
	ii := *i
	ii.Assigns, ii.Returning, ii.Table = assigns, ret, table
	return &ii
}

func (r *Rewriter) VisitInsertSelect(i *InsertSelect) Expr {
	table := Rewrite(r.outer(), i.Table)
	cols, colsChanged := RewriteList(r.outer(), i.Columns)
	q := Rewrite(r.outer(), i.Query)
	ret, retChanged := RewriteList(r.outer(), i.Returning)
	if table == i.Table && !colsChanged && q == i.Query && !retChanged {
		return i
	}
	ii := *i
	ii.Table, ii.Columns, ii.Query, ii.Returning = table, cols, q, ret
	return &ii
}

func (r *Rewriter) VisitUpdate(u *Update) Expr {
	table := Rewrite(r.outer(), u.Table)
	assigns, assignsChanged := RewriteList(r.outer(), u.Assigns)
	where := Rewrite(r.outer(), u.Where)
	if table == u.Table && !assignsChanged && where == u.Where {
		return u
	}
	uu := *u
	uu.Table, uu.Assigns, uu.Where = table, assigns, where
	return &uu
}

func (r *Rewriter) VisitDelete(d *Delete) Expr {
	table := Rewrite(r.outer(), d.Table)
	where := Rewrite(r.outer(), d.Where)
	if table == d.Table && where == d.Where {
		return d
	}
	dd := *d
	dd.Table, dd.Where = table, where
	return &dd
}

// VisitUnknown returns the node unchanged. A base rewriter cannot see the
// children of dialect extension nodes; visitors that define such nodes
// override Visit to traverse them.
func (r *Rewriter) VisitUnknown(e Expr) Expr { return e }

var _ Visitor = (*Rewriter)(nil)
