package frame

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	substrait "github.com/substrait-io/substrait-go/v3/proto"
)

// ArrowSchema returns the table's output schema as an Arrow schema, for
// registering sources with Arrow-based consumers.
func (t Table) ArrowSchema() (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, len(t.names))
	for index, name := range t.names {
		dataType, err := arrowDataType(t.types[index])
		if err != nil {
			return nil, fmt.Errorf("column `%s`: %w", name, err)
		}
		fields = append(fields, arrow.Field{
			Name:     name,
			Type:     dataType,
			Nullable: IsNullable(t.types[index]),
		})
	}
	return arrow.NewSchema(fields, nil), nil
}

func arrowDataType(t *substrait.Type) (arrow.DataType, error) {
	switch t.GetKind().(type) {
	case *substrait.Type_I8_:
		return arrow.PrimitiveTypes.Int8, nil
	case *substrait.Type_I16_:
		return arrow.PrimitiveTypes.Int16, nil
	case *substrait.Type_I32_:
		return arrow.PrimitiveTypes.Int32, nil
	case *substrait.Type_I64_:
		return arrow.PrimitiveTypes.Int64, nil
	case *substrait.Type_Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case *substrait.Type_Fp32:
		return arrow.PrimitiveTypes.Float32, nil
	case *substrait.Type_Fp64:
		return arrow.PrimitiveTypes.Float64, nil
	case *substrait.Type_String_:
		return arrow.BinaryTypes.String, nil
	default:
		return nil, NewUnsupportedTypeErr("", TypeString(t))
	}
}
