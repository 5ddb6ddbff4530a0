package frame

import (
	"fmt"
	"slices"
	"strings"

	substrait "github.com/substrait-io/substrait-go/v3/proto"
)

// NullableSuffix marks a type token as nullable, e.g. `i64?`.
const NullableSuffix = "?"

type typeConstructor func(n substrait.Type_Nullability) *substrait.Type

var typeConstructors = map[string]typeConstructor{
	"i8": func(n substrait.Type_Nullability) *substrait.Type {
		return &substrait.Type{Kind: &substrait.Type_I8_{I8: &substrait.Type_I8{Nullability: n}}}
	},
	"i16": func(n substrait.Type_Nullability) *substrait.Type {
		return &substrait.Type{Kind: &substrait.Type_I16_{I16: &substrait.Type_I16{Nullability: n}}}
	},
	"i32": func(n substrait.Type_Nullability) *substrait.Type {
		return &substrait.Type{Kind: &substrait.Type_I32_{I32: &substrait.Type_I32{Nullability: n}}}
	},
	"i64": func(n substrait.Type_Nullability) *substrait.Type {
		return &substrait.Type{Kind: &substrait.Type_I64_{I64: &substrait.Type_I64{Nullability: n}}}
	},
	"boolean": func(n substrait.Type_Nullability) *substrait.Type {
		return &substrait.Type{Kind: &substrait.Type_Bool{Bool: &substrait.Type_Boolean{Nullability: n}}}
	},
	"fp32": func(n substrait.Type_Nullability) *substrait.Type {
		return &substrait.Type{Kind: &substrait.Type_Fp32{Fp32: &substrait.Type_FP32{Nullability: n}}}
	},
	"fp64": func(n substrait.Type_Nullability) *substrait.Type {
		return &substrait.Type{Kind: &substrait.Type_Fp64{Fp64: &substrait.Type_FP64{Nullability: n}}}
	},
	"string": func(n substrait.Type_Nullability) *substrait.Type {
		return &substrait.Type{Kind: &substrait.Type_String_{String_: &substrait.Type_String{Nullability: n}}}
	},
}

// SupportedTypes returns the recognized type tokens, sorted.
func SupportedTypes() []string {
	tokens := make([]string, 0, len(typeConstructors))
	for token := range typeConstructors {
		tokens = append(tokens, token)
	}
	slices.Sort(tokens)
	return tokens
}

// ParseType resolves a type token into a Substrait type. Tokens are
// case-insensitive; a trailing `?` makes the type nullable, otherwise it is
// required. Unrecognized tokens fail with an UnsupportedTypeError rather than
// producing an untyped placeholder.
func ParseType(token string) (*substrait.Type, error) {
	return parseColumnType("", token)
}

func parseColumnType(columnName string, token string) (*substrait.Type, error) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	nullability := substrait.Type_NULLABILITY_REQUIRED
	if base, ok := strings.CutSuffix(normalized, NullableSuffix); ok {
		normalized = base
		nullability = substrait.Type_NULLABILITY_NULLABLE
	}

	constructor, ok := typeConstructors[normalized]
	if !ok {
		return nil, NewUnsupportedTypeErr(columnName, token)
	}
	return constructor(nullability), nil
}

// TypeString renders a Substrait type as the token ParseType accepts.
// Types outside the supported set render as their kind in angle brackets.
func TypeString(t *substrait.Type) string {
	base, nullability := typeKind(t)
	if nullability == substrait.Type_NULLABILITY_NULLABLE {
		return base + NullableSuffix
	}
	return base
}

// IsNullable returns whether the type admits nulls.
func IsNullable(t *substrait.Type) bool {
	_, nullability := typeKind(t)
	return nullability == substrait.Type_NULLABILITY_NULLABLE
}

func typeKind(t *substrait.Type) (string, substrait.Type_Nullability) {
	switch kind := t.GetKind().(type) {
	case *substrait.Type_I8_:
		return "i8", kind.I8.GetNullability()
	case *substrait.Type_I16_:
		return "i16", kind.I16.GetNullability()
	case *substrait.Type_I32_:
		return "i32", kind.I32.GetNullability()
	case *substrait.Type_I64_:
		return "i64", kind.I64.GetNullability()
	case *substrait.Type_Bool:
		return "boolean", kind.Bool.GetNullability()
	case *substrait.Type_Fp32:
		return "fp32", kind.Fp32.GetNullability()
	case *substrait.Type_Fp64:
		return "fp64", kind.Fp64.GetNullability()
	case *substrait.Type_String_:
		return "string", kind.String_.GetNullability()
	case nil:
		return "<unset>", substrait.Type_NULLABILITY_UNSPECIFIED
	default:
		return fmt.Sprintf("<%T>", kind), substrait.Type_NULLABILITY_UNSPECIFIED
	}
}
