package expr

import (
	"github.com/strataql/strata/schema/field"
)

// Expr is implemented by all nodes of a SQL expression tree.
//
// Nodes are immutable: once constructed, a node and everything below it
// never changes. Rewrites produce new nodes that share unchanged children
// with the original tree, and two nodes are "the same" exactly when they
// are the same pointer.
type Expr interface {
	// Leaf reports whether the node is self-delimiting in SQL text and
	// therefore never needs bracket protection. It is fixed per node type:
	// true for table refs, column refs and bound arguments, false for
	// every composite node.
	Leaf() bool
	isExpr()
}

// Scalar is an expression that evaluates to a single value.
type Scalar interface {
	Expr
	isScalar()
}

// Source is an expression that rows can be selected from: a table
// reference, a join, or a derived query.
type Source interface {
	Expr
	isSource()
}

// Query is a paginated query expression. *Select and *Union are the only
// two variants; the shared order/offset/limit of a union chain lives on
// the union node, never on its operands.
type Query interface {
	Source
	isQuery()
}

// Statement is a top-level SQL statement.
type Statement interface {
	Expr
	isStatement()
}

// Base embeds shared by the built-in node types. Leaf nodes shadow Leaf.
type (
	scalarNode struct{}
	sourceNode struct{}
	queryNode  struct{}
	stmtNode   struct{}
	clauseNode struct{}
)

func (scalarNode) isExpr()      {}
func (scalarNode) isScalar()    {}
func (scalarNode) Leaf() bool   { return false }
func (sourceNode) isExpr()      {}
func (sourceNode) isSource()    {}
func (sourceNode) Leaf() bool   { return false }
func (queryNode) isExpr()       {}
func (queryNode) isSource()     {}
func (queryNode) isQuery()      {}
func (queryNode) isStatement()  {}
func (queryNode) Leaf() bool    { return false }
func (stmtNode) isExpr()        {}
func (stmtNode) isStatement()   {}
func (stmtNode) Leaf() bool     { return false }
func (clauseNode) isExpr()      {}
func (clauseNode) Leaf() bool   { return false }

// ScalarExt is an embeddable opener for dialect-defined scalar nodes.
// Nodes embedding it satisfy Scalar but are not part of the closed base
// set; generic dispatch routes them through Visitor.VisitUnknown.
type ScalarExt struct{ scalarNode }

// StatementExt is the statement counterpart of ScalarExt.
type StatementExt struct{ stmtNode }

// UnaryOp is the operator of a Unary expression.
type UnaryOp int

// Unary operators.
const (
	OpIsNull UnaryOp = iota
	OpNotNull
	OpNeg
	OpNot
)

// BinaryOp is the operator of a Binary expression.
type BinaryOp int

// Binary operators.
const (
	// Arithmetic.
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	// Comparison.
	OpEQ
	OpNEQ
	OpGT
	OpGTE
	OpLT
	OpLTE
	// Logical.
	OpAnd
	OpOr
	// Pattern matching.
	OpLike
	OpNotLike
)

var binaryOps = [...]string{
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "/",
	OpMod:     "%",
	OpEQ:      "=",
	OpNEQ:     "<>",
	OpGT:      ">",
	OpGTE:     ">=",
	OpLT:      "<",
	OpLTE:     "<=",
	OpAnd:     "and",
	OpOr:      "or",
	OpLike:    "like",
	OpNotLike: "not like",
}

// String returns the SQL spelling of the operator.
func (op BinaryOp) String() string {
	if int(op) < len(binaryOps) {
		return binaryOps[op]
	}
	return ""
}

// JoinKind is the kind of a Join source.
type JoinKind int

// Join kinds.
const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	CrossJoin
)

var joinKinds = [...]string{
	InnerJoin: "join",
	LeftJoin:  "left join",
	RightJoin: "right join",
	CrossJoin: "cross join",
}

// String returns the SQL spelling of the join kind.
func (k JoinKind) String() string {
	if int(k) < len(joinKinds) {
		return joinKinds[k]
	}
	return ""
}

// AggregateFunc is a SQL aggregation function.
type AggregateFunc string

// Aggregation functions.
const (
	AggMin   AggregateFunc = "min"
	AggMax   AggregateFunc = "max"
	AggAvg   AggregateFunc = "avg"
	AggSum   AggregateFunc = "sum"
	AggCount AggregateFunc = "count"
)

// Column is a reference to a table column: an optional table qualifier
// (name or alias), the column name, and its scalar type.
type Column struct {
	scalarNode
	Table string
	Name  string
	Type  field.Type
}

// Leaf reports true: column references never need brackets.
func (*Column) Leaf() bool { return true }

// Arg is a literal value bound as a positional parameter, tagged with the
// descriptor the execution layer uses to encode it.
type Arg struct {
	scalarNode
	V    any
	Type field.Type
}

// Leaf reports true: bound arguments render as a single placeholder.
func (*Arg) Leaf() bool { return true }

// Value returns an Arg for v with its type detected from the runtime value.
func Value(v any) *Arg {
	return &Arg{V: v, Type: field.TypeOf(v)}
}

// TypedValue returns an Arg for v carrying an explicit type descriptor.
func TypedValue(v any, t field.Type) *Arg {
	return &Arg{V: v, Type: t}
}

// Cast converts a scalar expression to another scalar type.
type Cast struct {
	scalarNode
	X    Scalar
	Type field.Type
}

// Unary applies a postfix or prefix operator to one scalar operand.
type Unary struct {
	scalarNode
	Op UnaryOp
	X  Scalar
}

// Binary applies an infix operator to two scalar operands.
type Binary struct {
	scalarNode
	Op   BinaryOp
	X, Y Scalar
	Type field.Type
}

// Func is a call to a named SQL function.
type Func struct {
	scalarNode
	Name string
	Args []Scalar
	Type field.Type
}

// Aggregate applies an aggregation function to an operand. A nil operand
// renders as count(*)-style "*".
type Aggregate struct {
	scalarNode
	Fn       AggregateFunc
	X        Scalar
	Distinct bool
	Type     field.Type
}

// Between checks that X lies between Lo and Hi inclusive. Both bounds are
// structurally required.
type Between struct {
	scalarNode
	X  Scalar
	Lo Scalar
	Hi Scalar
}

// InList checks membership of X in a fixed list of values.
type InList struct {
	scalarNode
	X    Scalar
	Vals []Scalar
	Not  bool
}

// NewInList returns an InList predicate. The value list is structurally
// required to be non-empty; an empty list is a programming error.
func NewInList(x Scalar, vals ...Scalar) *InList {
	if len(vals) == 0 {
		panic("expr: InList requires at least one value")
	}
	return &InList{X: x, Vals: vals}
}

// Exists checks that a subquery returns at least one row.
type Exists struct {
	scalarNode
	Query Query
	Not   bool
}

// TableRef names a table, optionally under an alias.
type TableRef struct {
	sourceNode
	Name  string
	Alias string
}

// Leaf reports true: table references never need brackets.
func (*TableRef) Leaf() bool { return true }

// Join combines two sources with an optional join condition. The condition
// is absent for cross joins.
type Join struct {
	sourceNode
	Kind  JoinKind
	Left  Source
	Right Source
	On    Scalar
}

// ColumnDecl wraps a projected scalar with an optional output label
// (the "as" clause of a select list entry).
type ColumnDecl struct {
	clauseNode
	X  Scalar
	As string
}

// Order is one term of an order-by list.
type Order struct {
	clauseNode
	X    Scalar
	Desc bool
}

// Assign pairs a target column with a value expression in insert and
// update statements.
type Assign struct {
	clauseNode
	Column *Column
	Value  Scalar
}

// Select is a query over a source. An empty Columns list means
// "select all columns". As carries the derived-table alias used when the
// select appears as a source of an enclosing query.
type Select struct {
	queryNode
	Columns  []*ColumnDecl
	From     Source
	Where    Scalar
	GroupBy  []Scalar
	Having   Scalar
	Distinct bool
	OrderBy  []*Order
	Offset   *int
	Limit    *int
	As       string
}

func (*Select) isScalar() {}

// Union combines two queries. Order/offset/limit apply to the whole chain
// and are carried only here; operands never paginate themselves.
type Union struct {
	queryNode
	X, Y    Query
	All     bool
	OrderBy []*Order
	Offset  *int
	Limit   *int
}

// Insert writes one row given as column assignments. An empty assignment
// list renders as a default-values insert.
type Insert struct {
	stmtNode
	Table     *TableRef
	Assigns   []*Assign
	Returning []*Column
}

// InsertSelect writes the rows produced by a query into the named columns.
type InsertSelect struct {
	stmtNode
	Table     *TableRef
	Columns   []*Column
	Query     Query
	Returning []*Column
}

// Update modifies rows matching the optional predicate.
type Update struct {
	stmtNode
	Table   *TableRef
	Assigns []*Assign
	Where   Scalar
}

// Delete removes rows matching the optional predicate.
type Delete struct {
	stmtNode
	Table *TableRef
	Where Scalar
}

// Compile-time interface checks for the closed node set.
var (
	_ Scalar = (*Column)(nil)
	_ Scalar = (*Arg)(nil)
	_ Scalar = (*Cast)(nil)
	_ Scalar = (*Unary)(nil)
	_ Scalar = (*Binary)(nil)
	_ Scalar = (*Func)(nil)
	_ Scalar = (*Aggregate)(nil)
	_ Scalar = (*Between)(nil)
	_ Scalar = (*InList)(nil)
	_ Scalar = (*Exists)(nil)
	_ Scalar = (*Select)(nil)

	_ Source = (*TableRef)(nil)
	_ Source = (*Join)(nil)
	_ Query  = (*Select)(nil)
	_ Query  = (*Union)(nil)

	_ Statement = (*Select)(nil)
	_ Statement = (*Union)(nil)
	_ Statement = (*Insert)(nil)
	_ Statement = (*InsertSelect)(nil)
	_ Statement = (*Update)(nil)
	_ Statement = (*Delete)(nil)
)
