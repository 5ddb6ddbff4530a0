package frame

import (
	"errors"
	"fmt"

	substrait "github.com/substrait-io/substrait-go/v3/proto"
)

// OutputWidth computes the number of columns a relation exposes, following the
// evaluation rules of the algebra: a project appends its expressions to the
// input row, and an emit then selects the visible columns from that row.
func OutputWidth(rel *substrait.Rel) (int, error) {
	switch r := rel.GetRelType().(type) {
	case *substrait.Rel_Read:
		return emitWidth(r.Read.GetCommon(), len(r.Read.GetBaseSchema().GetStruct().GetTypes()))

	case *substrait.Rel_Project:
		inputWidth, err := OutputWidth(r.Project.GetInput())
		if err != nil {
			return 0, err
		}
		return emitWidth(r.Project.GetCommon(), inputWidth+len(r.Project.GetExpressions()))

	case nil:
		return 0, errors.New("relation has no operator set")

	default:
		return 0, fmt.Errorf("unsupported relation type %T", r)
	}
}

func emitWidth(common *substrait.RelCommon, internalWidth int) (int, error) {
	emit, ok := common.GetEmitKind().(*substrait.RelCommon_Emit_)
	if !ok {
		return internalWidth, nil
	}

	mapping := emit.Emit.GetOutputMapping()
	for _, index := range mapping {
		if index < 0 || int(index) >= internalWidth {
			return 0, fmt.Errorf("emit index %d out of range for a row of %d columns", index, internalWidth)
		}
	}
	return len(mapping), nil
}
