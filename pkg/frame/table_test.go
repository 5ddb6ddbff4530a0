package frame

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	substrait "github.com/substrait-io/substrait-go/v3/proto"
	"google.golang.org/protobuf/testing/protocmp"
)

var exampleSchema = []Column{
	{Name: "a", Type: "i64"},
	{Name: "b", Type: "i64"},
	{Name: "c", Type: "i64"},
}

func mustTable(t *testing.T, schema []Column, source string) Table {
	t.Helper()
	table, err := NewTable(schema, source)
	require.NoError(t, err)
	return table
}

func mustSelect(t *testing.T, table Table, columns ...string) Table {
	t.Helper()
	selected, err := table.Select(columns...)
	require.NoError(t, err)
	return selected
}

func typeStrings(types []*substrait.Type) []string {
	out := make([]string, 0, len(types))
	for _, typ := range types {
		out = append(out, TypeString(typ))
	}
	return out
}

func projectOf(t *testing.T, table Table) *substrait.ProjectRel {
	t.Helper()
	project := table.Root().GetProject()
	require.NotNil(t, project, "expected the root to be a project")
	return project
}

func TestNewTable(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	table := mustTable(t, []Column{
		{Name: "id", Type: "i32"},
		{Name: "score", Type: "i64?"},
		{Name: "flag", Type: "i8"},
	}, "events")

	require.Equal([]string{"id", "score", "flag"}, table.Names())
	require.Equal([]string{"i32", "i64?", "i8"}, typeStrings(table.Types()))
	require.Equal(3, table.Width())
	require.Equal([]Column{
		{Name: "id", Type: "i32"},
		{Name: "score", Type: "i64?"},
		{Name: "flag", Type: "i8"},
	}, table.Schema())

	i32, _ := ParseType("i32")
	i64, _ := ParseType("i64?")
	i8, _ := ParseType("i8")
	expected := &substrait.Rel{
		RelType: &substrait.Rel_Read{
			Read: &substrait.ReadRel{
				BaseSchema: &substrait.NamedStruct{
					Names: []string{"id", "score", "flag"},
					Struct: &substrait.Type_Struct{
						Types:       []*substrait.Type{i32, i64, i8},
						Nullability: substrait.Type_NULLABILITY_REQUIRED,
					},
				},
				ReadType: &substrait.ReadRel_NamedTable_{
					NamedTable: &substrait.ReadRel_NamedTable{Names: []string{"events"}},
				},
			},
		},
	}
	require.Empty(cmp.Diff(expected, table.Root(), protocmp.Transform()))
}

func TestNewTableErrors(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name           string
		schema         []Column
		source         string
		expectedReason string
		expectedToken  string
	}{
		{
			name:           "empty source",
			schema:         exampleSchema,
			source:         "",
			expectedReason: reasonEmptySource,
		},
		{
			name:           "no columns",
			schema:         nil,
			source:         "t",
			expectedReason: reasonEmptySchema,
		},
		{
			name:           "empty column name",
			schema:         []Column{{Name: "a", Type: "i64"}, {Name: "", Type: "i64"}},
			source:         "t",
			expectedReason: reasonEmptyColumnName,
		},
		{
			name:           "duplicate column",
			schema:         []Column{{Name: "a", Type: "i64"}, {Name: "a", Type: "i32"}},
			source:         "t",
			expectedReason: reasonDuplicateColumn,
		},
		{
			name:          "unsupported type",
			schema:        []Column{{Name: "a", Type: "i64"}, {Name: "b", Type: "varchar"}},
			source:        "t",
			expectedToken: "varchar",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require := require.New(t)

			table, err := NewTable(tc.schema, tc.source)
			require.Error(err)
			require.Nil(table.Root())

			if tc.expectedReason != "" {
				var invalid InvalidSchemaError
				require.ErrorAs(err, &invalid)
				require.Equal(tc.expectedReason, invalid.Reason())
				require.Equal(tc.expectedReason, invalid.DetailsMetadata()["reason"])
				return
			}

			var unsupported UnsupportedTypeError
			require.ErrorAs(err, &unsupported)
			require.Equal("b", unsupported.ColumnName())
			require.Equal(tc.expectedToken, unsupported.TypeToken())
			require.Equal(map[string]string{"column_name": "b", "type_token": "varchar"}, unsupported.DetailsMetadata())
		})
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name          string
		columns       []string
		expectedTypes []string
		expectedEmit  []int32
		expectedRefs  []int32
	}{
		{
			name:          "single column",
			columns:       []string{"b"},
			expectedTypes: []string{"i32?"},
			expectedEmit:  []int32{3},
			expectedRefs:  []int32{1},
		},
		{
			name:          "reordered",
			columns:       []string{"c", "a"},
			expectedTypes: []string{"i8", "i64"},
			expectedEmit:  []int32{3, 4},
			expectedRefs:  []int32{2, 0},
		},
		{
			name:          "identity",
			columns:       []string{"a", "b", "c"},
			expectedTypes: []string{"i64", "i32?", "i8"},
			expectedEmit:  []int32{3, 4, 5},
			expectedRefs:  []int32{0, 1, 2},
		},
		{
			name:          "duplicates",
			columns:       []string{"b", "b", "a", "b"},
			expectedTypes: []string{"i32?", "i32?", "i64", "i32?"},
			expectedEmit:  []int32{3, 4, 5, 6},
			expectedRefs:  []int32{1, 1, 0, 1},
		},
	}

	table := mustTable(t, []Column{
		{Name: "a", Type: "i64"},
		{Name: "b", Type: "i32?"},
		{Name: "c", Type: "i8"},
	}, "t")

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require := require.New(t)

			selected := mustSelect(t, table, tc.columns...)
			require.Equal(tc.columns, selected.Names())
			require.Equal(tc.expectedTypes, typeStrings(selected.Types()))

			project := projectOf(t, selected)
			require.Equal(tc.expectedEmit, project.GetCommon().GetEmit().GetOutputMapping())
			require.Empty(cmp.Diff(table.Root(), project.GetInput(), protocmp.Transform()))

			refs := make([]int32, 0, len(project.GetExpressions()))
			for _, expr := range project.GetExpressions() {
				field, ok := FieldIndex(expr)
				require.True(ok)
				refs = append(refs, field)
			}
			require.Equal(tc.expectedRefs, refs)

			width, err := OutputWidth(selected.Root())
			require.NoError(err)
			require.Equal(len(tc.columns), width)
		})
	}
}

func TestSelectChained(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	table := mustTable(t, exampleSchema, "example")
	first := mustSelect(t, table, "a", "c")
	second := mustSelect(t, first, "c")

	require.Equal([]string{"c"}, second.Names())
	require.Equal([]string{"i64"}, typeStrings(second.Types()))

	// The outer emit starts after the two columns the first projection emits,
	// and it references position 1 of that projection's output.
	outer := projectOf(t, second)
	require.Equal([]int32{2}, outer.GetCommon().GetEmit().GetOutputMapping())
	field, ok := FieldIndex(outer.GetExpressions()[0])
	require.True(ok)
	require.Equal(int32(1), field)

	inner := outer.GetInput().GetProject()
	require.NotNil(inner)
	require.Equal([]int32{3, 4}, inner.GetCommon().GetEmit().GetOutputMapping())
	require.NotNil(inner.GetInput().GetRead())
}

func TestSelectAfterDuplicateProjection(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	table := mustTable(t, exampleSchema, "example")
	doubled := mustSelect(t, table, "b", "b")
	again := mustSelect(t, doubled, "b")

	// Lookups resolve to the first column carrying the name.
	field, ok := FieldIndex(projectOf(t, again).GetExpressions()[0])
	require.True(ok)
	require.Equal(int32(0), field)
	require.Equal([]int32{2}, projectOf(t, again).GetCommon().GetEmit().GetOutputMapping())
}

func TestSelectColumnNotFound(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	table := mustTable(t, []Column{{Name: "a", Type: "i64"}}, "t")
	selected, err := table.Select("z")
	require.Error(err)
	require.Nil(selected.Root())
	require.Empty(selected.Names())

	var notFound ColumnNotFoundError
	require.ErrorAs(err, &notFound)
	require.Equal("z", notFound.NotFoundColumnName())
	require.Equal([]string{"a"}, notFound.AvailableColumns())
	require.Equal(map[string]string{"column_name": "z", "available_columns": "a"}, notFound.DetailsMetadata())
	require.Equal("column `z` not found; available columns: [a]", err.Error())

	// A miss after valid columns aborts the whole call.
	_, err = mustTable(t, exampleSchema, "t").Select("a", "b", "missing")
	require.ErrorAs(err, &notFound)
	require.Equal("missing", notFound.NotFoundColumnName())
}

func TestSelectColumnNotFoundSuggestion(t *testing.T) {
	t.Parallel()

	table := mustTable(t, []Column{
		{Name: "amount", Type: "fp64"},
		{Name: "customer_id", Type: "i64"},
	}, "orders")

	tcs := []struct {
		missing            string
		expectedSuggestion string
	}{
		{"amonut", "amount"},
		{"Amount", "amount"},
		{"customerid", "customer_id"},
		{"price", ""},
		{"x", ""},
	}

	for _, tc := range tcs {
		t.Run(tc.missing, func(t *testing.T) {
			t.Parallel()
			require := require.New(t)

			_, err := table.Select(tc.missing)
			var notFound ColumnNotFoundError
			require.ErrorAs(err, &notFound)
			require.Equal(tc.expectedSuggestion, notFound.Suggestion())
			if tc.expectedSuggestion == "" {
				require.NotContains(err.Error(), "did you mean")
				require.NotContains(notFound.DetailsMetadata(), "suggestion")
				return
			}
			require.ErrorContains(err, "did you mean `"+tc.expectedSuggestion+"`?")
			require.Equal(tc.expectedSuggestion, notFound.DetailsMetadata()["suggestion"])
		})
	}
}

func TestSelectProjectedAwayColumn(t *testing.T) {
	t.Parallel()

	narrowed := mustSelect(t, mustTable(t, exampleSchema, "t"), "a")
	_, err := narrowed.Select("b")

	var notFound ColumnNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, []string{"a"}, notFound.AvailableColumns())
}

func TestSelectEmpty(t *testing.T) {
	t.Parallel()

	_, err := mustTable(t, exampleSchema, "t").Select()

	var invalid InvalidSchemaError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, reasonEmptyProjection, invalid.Reason())
}

func TestTablesAreImmutable(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	table := mustTable(t, exampleSchema, "t")
	before := table.Root()

	first := mustSelect(t, table, "a")
	second := mustSelect(t, table, "c", "b")

	require.Equal([]string{"a", "b", "c"}, table.Names())
	require.Empty(cmp.Diff(before, table.Root(), protocmp.Transform()))
	require.Equal([]string{"a"}, first.Names())
	require.Equal([]string{"c", "b"}, second.Names())

	// Mutating returned values does not affect the table.
	names := table.Names()
	names[0] = "mutated"
	types := table.Types()
	types[0].Kind = nil
	root := table.Root()
	root.GetRead().GetBaseSchema().Names[0] = "mutated"

	require.Equal([]string{"a", "b", "c"}, table.Names())
	require.Equal([]string{"i64", "i64", "i64"}, typeStrings(table.Types()))
	require.Empty(cmp.Diff(before, table.Root(), protocmp.Transform()))
}

func TestZeroTable(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	var table Table
	require.Nil(table.Root())
	require.Equal(0, table.Width())
	require.Panics(func() {
		_, _ = table.Select("a")
	})
	require.Panics(func() {
		_ = table.ToPlan()
	})
	require.Equal("Root[]\n  Null\n", table.Explain().String())
}

func TestColumnValue(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	table := mustTable(t, []Column{{Name: "a", Type: "i16"}, {Name: "b", Type: "i64?"}}, "t")
	value, err := table.Column("b")
	require.NoError(err)
	require.Equal("i64?", TypeString(value.Type()))

	field, ok := FieldIndex(value.Expression())
	require.True(ok)
	require.Equal(int32(1), field)

	_, err = table.Column("nope")
	require.ErrorAs(err, &ColumnNotFoundError{})
}

func mustColumn(t *testing.T, table Table, name string) Value {
	t.Helper()
	value, err := table.Column(name)
	require.NoError(t, err)
	return value
}

func TestValueNamed(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	value := mustColumn(t, mustTable(t, exampleSchema, "t"), "b")
	require.Equal("b", value.Name())

	renamed := value.Named("total")
	require.Equal("total", renamed.Name())
	require.Equal("b", value.Name())
	require.Empty(cmp.Diff(value.Expression(), renamed.Expression(), protocmp.Transform()))
	require.Empty(cmp.Diff(value.Type(), renamed.Type(), protocmp.Transform()))
}

func TestSelectValuesAliases(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	table := mustTable(t, exampleSchema, "t")
	plain := mustSelect(t, table, "a", "c")

	aliased, err := table.SelectValues(
		mustColumn(t, table, "a").Named("first"),
		mustColumn(t, table, "c"),
	)
	require.NoError(err)
	require.Equal([]string{"first", "c"}, aliased.Names())
	require.Equal(typeStrings(plain.Types()), typeStrings(aliased.Types()))

	// Only the names differ: expressions and emit are those of the plain select.
	require.Empty(cmp.Diff(projectOf(t, plain), projectOf(t, aliased), protocmp.Transform()))
	require.Equal([]int32{3, 4}, projectOf(t, aliased).GetCommon().GetEmit().GetOutputMapping())
	require.Equal([]string{"first", "c"}, aliased.ToPlan().GetRelations()[0].GetRoot().GetNames())

	// The alias is what later operations resolve.
	narrowed := mustSelect(t, aliased, "first")
	require.Equal([]string{"first"}, narrowed.Names())
	field, ok := FieldIndex(projectOf(t, narrowed).GetExpressions()[0])
	require.True(ok)
	require.Equal(int32(0), field)
	require.Equal([]int32{2}, projectOf(t, narrowed).GetCommon().GetEmit().GetOutputMapping())

	_, err = aliased.Select("a")
	require.ErrorAs(err, &ColumnNotFoundError{})
}

func TestSelectValuesErrors(t *testing.T) {
	t.Parallel()

	table := mustTable(t, exampleSchema, "t")
	wide := mustTable(t, []Column{
		{Name: "a", Type: "i64"},
		{Name: "b", Type: "i64"},
		{Name: "c", Type: "i64"},
		{Name: "d", Type: "i64"},
	}, "wide")
	typed := mustTable(t, []Column{{Name: "s", Type: "string"}}, "typed")

	tcs := []struct {
		name           string
		values         []Value
		expectedReason string
	}{
		{"no values", nil, reasonEmptyProjection},
		{"empty alias", []Value{mustColumn(t, table, "a").Named("")}, reasonEmptyColumnName},
		{"zero value", []Value{Value{}.Named("x")}, reasonForeignValue},
		{"position past the row", []Value{mustColumn(t, wide, "d")}, reasonForeignValue},
		{"mismatched type", []Value{mustColumn(t, typed, "s")}, reasonForeignValue},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require := require.New(t)

			selected, err := table.SelectValues(tc.values...)
			var invalid InvalidSchemaError
			require.ErrorAs(err, &invalid)
			require.Equal(tc.expectedReason, invalid.Reason())
			require.Nil(selected.Root())
		})
	}
}

func TestFieldIndexRejectsNonReferences(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	_, ok := FieldIndex(nil)
	require.False(ok)

	_, ok = FieldIndex(&substrait.Expression{RexType: &substrait.Expression_Literal_{Literal: &substrait.Expression_Literal{}}})
	require.False(ok)

	nested := fieldReference(0)
	nested.GetSelection().GetDirectReference().GetStructField().Child = &substrait.Expression_ReferenceSegment{
		ReferenceType: &substrait.Expression_ReferenceSegment_StructField_{
			StructField: &substrait.Expression_ReferenceSegment_StructField{Field: 1},
		},
	}
	_, ok = FieldIndex(nested)
	require.False(ok)
}
