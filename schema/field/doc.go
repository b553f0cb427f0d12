// Package field defines the scalar type descriptors shared by the SQL
// expression core and the execution layer.
//
// A field.Type tags every bound value and typed expression node with an
// opaque description of how the value travels over the wire. The expression
// tree and the formatter never interpret the tag; they only thread it from
// the point a value is bound to the point the driver encodes it:
//
//	arg := expr.Value(42)        // Arg{V: 42, Type: field.TypeInt}
//	// ... formatting ...
//	params[0].Type               // field.TypeInt, handed to the driver
//
// Runtime values are classified with TypeOf:
//
//	field.TypeOf("hello")        // field.TypeString
//	field.TypeOf(uuid.New())     // field.TypeUUID
package field
