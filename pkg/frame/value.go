package frame

import (
	substrait "github.com/substrait-io/substrait-go/v3/proto"
	"google.golang.org/protobuf/proto"
)

// Value is a typed scalar expression evaluated against a table's row. The
// type is resolved when the Value is built and never recomputed. The name is
// the output column name the Value takes when selected.
type Value struct {
	expression *substrait.Expression
	typ        *substrait.Type
	name       string
}

// Name returns the output column name of the value.
func (v Value) Name() string {
	return v.name
}

// Named returns a copy of the value that is output under the given name. The
// expression and type are unchanged.
func (v Value) Named(name string) Value {
	v.name = name
	return v
}

// Expression returns a copy of the expression.
func (v Value) Expression() *substrait.Expression {
	return proto.Clone(v.expression).(*substrait.Expression)
}

// Type returns a copy of the resolved type of the expression.
func (v Value) Type() *substrait.Type {
	return proto.Clone(v.typ).(*substrait.Type)
}

// fieldReference builds a direct reference to a column of the whole input row.
func fieldReference(position int32) *substrait.Expression {
	return &substrait.Expression{
		RexType: &substrait.Expression_Selection{
			Selection: &substrait.Expression_FieldReference{
				ReferenceType: &substrait.Expression_FieldReference_DirectReference{
					DirectReference: &substrait.Expression_ReferenceSegment{
						ReferenceType: &substrait.Expression_ReferenceSegment_StructField_{
							StructField: &substrait.Expression_ReferenceSegment_StructField{
								Field: position,
							},
						},
					},
				},
				RootType: &substrait.Expression_FieldReference_RootReference_{
					RootReference: &substrait.Expression_FieldReference_RootReference{},
				},
			},
		},
	}
}

// FieldIndex returns the column position referenced by an expression, if the
// expression is a direct, single-level reference into the input row.
func FieldIndex(expr *substrait.Expression) (int32, bool) {
	selection := expr.GetSelection()
	if selection == nil || selection.GetRootReference() == nil {
		return 0, false
	}

	field := selection.GetDirectReference().GetStructField()
	if field == nil || field.GetChild() != nil {
		return 0, false
	}
	return field.GetField(), true
}
