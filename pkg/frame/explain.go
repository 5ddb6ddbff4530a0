package frame

import (
	"fmt"
	"strings"

	substrait "github.com/substrait-io/substrait-go/v3/proto"
)

// Explain is a human-readable description of a relation tree.
type Explain struct {
	Info       string
	SubExplain []Explain
}

// String renders the tree, one node per line, children indented below their
// parent.
func (e Explain) String() string {
	var sb strings.Builder
	e.write(&sb, 0)
	return sb.String()
}

func (e Explain) write(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(e.Info)
	sb.WriteByte('\n')
	for _, sub := range e.SubExplain {
		sub.write(sb, depth+1)
	}
}

// ExplainRel describes a relation and its inputs.
func ExplainRel(rel *substrait.Rel) Explain {
	switch r := rel.GetRelType().(type) {
	case *substrait.Rel_Read:
		read := r.Read
		source := "<virtual>"
		if named := read.GetNamedTable(); named != nil {
			source = strings.Join(named.GetNames(), ".")
		}
		schema := read.GetBaseSchema()
		return Explain{
			Info: fmt.Sprintf("Read(%s)%s%s", source, formatColumns(schema.GetNames(), schema.GetStruct().GetTypes()), formatEmit(read.GetCommon())),
		}

	case *substrait.Rel_Project:
		project := r.Project
		exprs := make([]string, 0, len(project.GetExpressions()))
		for _, expr := range project.GetExpressions() {
			exprs = append(exprs, formatExpression(expr))
		}
		return Explain{
			Info:       fmt.Sprintf("Project[%s]%s", strings.Join(exprs, ", "), formatEmit(project.GetCommon())),
			SubExplain: []Explain{ExplainRel(project.GetInput())},
		}

	case nil:
		return Explain{Info: "Null"}

	default:
		return Explain{Info: fmt.Sprintf("Unknown(%T)", r)}
	}
}

func formatColumns(names []string, types []*substrait.Type) string {
	columns := make([]string, 0, len(names))
	for index, name := range names {
		column := Column{Name: name, Type: "<missing>"}
		if index < len(types) {
			column.Type = TypeString(types[index])
		}
		columns = append(columns, column.String())
	}
	return "[" + strings.Join(columns, ", ") + "]"
}

func formatEmit(common *substrait.RelCommon) string {
	emit, ok := common.GetEmitKind().(*substrait.RelCommon_Emit_)
	if !ok {
		return ""
	}
	indexes := make([]string, 0, len(emit.Emit.GetOutputMapping()))
	for _, index := range emit.Emit.GetOutputMapping() {
		indexes = append(indexes, fmt.Sprintf("$%d", index))
	}
	return " emit=[" + strings.Join(indexes, ", ") + "]"
}

func formatExpression(expr *substrait.Expression) string {
	if field, ok := FieldIndex(expr); ok {
		return fmt.Sprintf("$%d", field)
	}
	return fmt.Sprintf("<%T>", expr.GetRexType())
}
