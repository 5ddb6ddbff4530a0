package frame

import (
	"fmt"
	"slices"

	"github.com/ccoveille/go-safecast/v2"
	substrait "github.com/substrait-io/substrait-go/v3/proto"
	"google.golang.org/protobuf/proto"

	log "github.com/subframe-dev/subframe/internal/logging"
	"github.com/subframe-dev/subframe/pkg/frameerrors"
)

// Column is a column declaration: a name and a type token as accepted by
// ParseType.
type Column struct {
	Name string
	Type string
}

// String renders the column as `name:type`, the form accepted on the command
// line and used by Explain.
func (c Column) String() string {
	return c.Name + ":" + c.Type
}

// Table is a relational result set: the relation producing its rows and the
// ordered names and types of the columns that relation exposes.
//
// The zero Table is not valid; Tables are built with NewTable and derived from
// one another through operations like Select.
type Table struct {
	root  *substrait.Rel
	names []string
	types []*substrait.Type
}

func newTable(root *substrait.Rel, names []string, types []*substrait.Type) Table {
	frameerrors.DebugAssertf(func() bool {
		width, err := OutputWidth(root)
		return err == nil && width == len(names) && width == len(types)
	}, "table schema does not match the width of its relation: %d names, %d types", len(names), len(types))

	return Table{root: root, names: names, types: types}
}

// NewTable declares a table read from the named source with the given schema.
// The schema is not checked against the source; that is left to the consumer
// executing the plan.
func NewTable(schema []Column, sourceName string) (Table, error) {
	if sourceName == "" {
		return Table{}, newInvalidSchemaErr(reasonEmptySource, "a table requires a non-empty source name")
	}
	if len(schema) == 0 {
		return Table{}, newInvalidSchemaErr(reasonEmptySchema, "source `%s` must declare at least one column", sourceName)
	}

	names := make([]string, 0, len(schema))
	types := make([]*substrait.Type, 0, len(schema))
	seen := make(map[string]int, len(schema))
	for index, column := range schema {
		if column.Name == "" {
			return Table{}, newInvalidSchemaErr(reasonEmptyColumnName, "column %d of source `%s` has an empty name", index, sourceName)
		}
		if previous, ok := seen[column.Name]; ok {
			return Table{}, newInvalidSchemaErr(reasonDuplicateColumn, "column `%s` of source `%s` is declared at both position %d and %d", column.Name, sourceName, previous, index)
		}
		seen[column.Name] = index

		typ, err := parseColumnType(column.Name, column.Type)
		if err != nil {
			return Table{}, err
		}

		names = append(names, column.Name)
		types = append(types, typ)
	}

	root := &substrait.Rel{
		RelType: &substrait.Rel_Read{
			Read: &substrait.ReadRel{
				BaseSchema: &substrait.NamedStruct{
					Names: slices.Clone(names),
					Struct: &substrait.Type_Struct{
						Types:       slices.Clone(types),
						Nullability: substrait.Type_NULLABILITY_REQUIRED,
					},
				},
				ReadType: &substrait.ReadRel_NamedTable_{
					NamedTable: &substrait.ReadRel_NamedTable{
						Names: []string{sourceName},
					},
				},
			},
		},
	}

	log.Trace().Str("source", sourceName).Strs("columns", names).Msg("declared table")
	return newTable(root, names, types), nil
}

// Names returns the output column names, in order.
func (t Table) Names() []string {
	return slices.Clone(t.names)
}

// Types returns the output column types, in order.
func (t Table) Types() []*substrait.Type {
	types := make([]*substrait.Type, 0, len(t.types))
	for _, typ := range t.types {
		types = append(types, proto.Clone(typ).(*substrait.Type))
	}
	return types
}

// Schema returns the output columns as declarations, with types rendered as
// tokens.
func (t Table) Schema() []Column {
	columns := make([]Column, 0, len(t.names))
	for index, name := range t.names {
		columns = append(columns, Column{Name: name, Type: TypeString(t.types[index])})
	}
	return columns
}

// Width returns the number of output columns.
func (t Table) Width() int {
	return len(t.names)
}

// Root returns a copy of the relation producing the table's rows.
func (t Table) Root() *substrait.Rel {
	if t.root == nil {
		return nil
	}
	return proto.Clone(t.root).(*substrait.Rel)
}

// Position returns the position of the first output column with the given
// name.
func (t Table) Position(name string) (int, bool) {
	position := slices.Index(t.names, name)
	return position, position >= 0
}

// Column returns a reference to the named output column, typed with that
// column's type and named after it.
func (t Table) Column(name string) (Value, error) {
	position, ok := t.Position(name)
	if !ok {
		return Value{}, NewColumnNotFoundErr(name, t.names)
	}

	field, err := safecast.Convert[int32](position)
	if err != nil {
		return Value{}, fmt.Errorf("column `%s` cannot be referenced: %w", name, err)
	}

	return Value{
		expression: fieldReference(field),
		typ:        t.types[position],
		name:       name,
	}, nil
}

// Select projects the table onto the named columns, in the given order. A name
// may be given more than once; each occurrence becomes its own output column.
//
// The projection appends one expression per column after the input row and
// emits only those, so the emitted positions start at the input's width.
func (t Table) Select(columns ...string) (Table, error) {
	if t.root == nil {
		return Table{}, frameerrors.MustBugf("select called on a table with no root relation")
	}
	if len(columns) == 0 {
		return Table{}, newInvalidSchemaErr(reasonEmptyProjection, "select requires at least one column")
	}

	values := make([]Value, 0, len(columns))
	for _, name := range columns {
		value, err := t.Column(name)
		if err != nil {
			return Table{}, err
		}
		values = append(values, value)
	}
	return t.project(values)
}

// SelectValues projects the table onto the given values, each output under
// its name. Values must have been built from this table, e.g. with Column, and
// may be renamed with Named:
//
//	a, _ := t.Column("a")
//	t, err := t.SelectValues(a.Named("total"))
func (t Table) SelectValues(values ...Value) (Table, error) {
	if t.root == nil {
		return Table{}, frameerrors.MustBugf("select called on a table with no root relation")
	}
	if len(values) == 0 {
		return Table{}, newInvalidSchemaErr(reasonEmptyProjection, "select requires at least one column")
	}

	for index, value := range values {
		if value.name == "" {
			return Table{}, newInvalidSchemaErr(reasonEmptyColumnName, "selected value %d has an empty name", index)
		}

		field, ok := FieldIndex(value.expression)
		if !ok || int(field) >= len(t.types) || !proto.Equal(value.typ, t.types[field]) {
			return Table{}, newInvalidSchemaErr(reasonForeignValue, "selected value `%s` does not reference a column of this table", value.name)
		}
	}
	return t.project(values)
}

func (t Table) project(values []Value) (Table, error) {
	expressions := make([]*substrait.Expression, 0, len(values))
	names := make([]string, 0, len(values))
	types := make([]*substrait.Type, 0, len(values))
	for _, value := range values {
		expressions = append(expressions, proto.Clone(value.expression).(*substrait.Expression))
		names = append(names, value.name)
		types = append(types, value.typ)
	}

	mapping, err := appendedOutputMapping(len(t.types), len(expressions))
	if err != nil {
		return Table{}, err
	}

	root := &substrait.Rel{
		RelType: &substrait.Rel_Project{
			Project: &substrait.ProjectRel{
				Common: &substrait.RelCommon{
					EmitKind: &substrait.RelCommon_Emit_{
						Emit: &substrait.RelCommon_Emit{
							OutputMapping: mapping,
						},
					},
				},
				Input:       t.root,
				Expressions: expressions,
			},
		},
	}

	log.Trace().Strs("columns", names).Ints32("emit", mapping).Msg("projected table")
	return newTable(root, names, types), nil
}

// appendedOutputMapping returns the emit mapping selecting count expressions
// appended after an input row of inputWidth columns.
func appendedOutputMapping(inputWidth int, count int) ([]int32, error) {
	start, err := safecast.Convert[int32](inputWidth)
	if err != nil {
		return nil, fmt.Errorf("input of %d columns is too wide to project: %w", inputWidth, err)
	}
	if _, err := safecast.Convert[int32](inputWidth + count); err != nil {
		return nil, fmt.Errorf("projection of %d columns over %d columns is too wide: %w", count, inputWidth, err)
	}

	mapping := make([]int32, 0, count)
	for offset := range int32(count) {
		mapping = append(mapping, start+offset)
	}
	return mapping, nil
}

// Explain describes the relation tree producing the table.
func (t Table) Explain() Explain {
	return Explain{
		Info:       fmt.Sprintf("Root%s", formatColumns(t.names, t.types)),
		SubExplain: []Explain{ExplainRel(t.root)},
	}
}
