// Package frame builds relational query plans in the Substrait algebra.
//
// A plan starts from a Table over a named source, declared with its schema:
//
//	t, err := frame.NewTable([]frame.Column{
//	  {Name: "a", Type: "i64"},
//	  {Name: "b", Type: "i64"},
//	  {Name: "c", Type: "i64?"},
//	}, "example")
//
// Each relational operation takes a Table and returns a new Table wrapping a new
// operator whose input is the previous Table's root. Tables are never modified in
// place, so intermediate Tables stay valid and may be shared freely, including
// across goroutines.
//
// Column positions are the reference keys of the algebra tree: position i of a
// Table's names and types always describes the i-th column produced by its root.
// Every operation preserves that.
//
// Finally, ToPlan wraps the Table into a Substrait Plan with a single root
// relation, which can be handed to any compliant consumer (DataFusion, Acero,
// DuckDB, ...).
package frame
