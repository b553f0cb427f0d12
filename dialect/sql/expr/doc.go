// Package expr models SQL statements as immutable, typed expression
// trees and provides a structural visitor for rewriting them.
//
// Nodes never change after construction. A rewrite pass built on
// Rewriter produces a new tree that shares every untouched subtree with
// its input, and returns the input node itself when nothing below it
// changed. Sameness is pointer identity; there is no deep equality.
//
// The node set is closed: the Visitor interface enumerates every
// built-in node type, and the compiler flags visitors that miss one.
// Dialects add their own nodes by embedding ScalarExt or StatementExt;
// such nodes bypass the typed methods and arrive at VisitUnknown.
package expr
