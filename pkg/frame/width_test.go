package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
	substrait "github.com/substrait-io/substrait-go/v3/proto"
)

func withEmit(mapping ...int32) *substrait.RelCommon {
	return &substrait.RelCommon{
		EmitKind: &substrait.RelCommon_Emit_{Emit: &substrait.RelCommon_Emit{OutputMapping: mapping}},
	}
}

func TestOutputWidth(t *testing.T) {
	t.Parallel()

	read := mustTable(t, exampleSchema, "example").Root()

	tcs := []struct {
		name          string
		rel           *substrait.Rel
		expectedWidth int
		expectedErr   string
	}{
		{
			name:          "read",
			rel:           read,
			expectedWidth: 3,
		},
		{
			name: "read with emit",
			rel: &substrait.Rel{RelType: &substrait.Rel_Read{Read: &substrait.ReadRel{
				Common:     withEmit(2),
				BaseSchema: read.GetRead().GetBaseSchema(),
			}}},
			expectedWidth: 1,
		},
		{
			name: "project without emit keeps the input row",
			rel: &substrait.Rel{RelType: &substrait.Rel_Project{Project: &substrait.ProjectRel{
				Input:       read,
				Expressions: []*substrait.Expression{fieldReference(0)},
			}}},
			expectedWidth: 4,
		},
		{
			name: "project with emit",
			rel: &substrait.Rel{RelType: &substrait.Rel_Project{Project: &substrait.ProjectRel{
				Common:      withEmit(3, 3),
				Input:       read,
				Expressions: []*substrait.Expression{fieldReference(0)},
			}}},
			expectedWidth: 2,
		},
		{
			name: "emit past the row",
			rel: &substrait.Rel{RelType: &substrait.Rel_Project{Project: &substrait.ProjectRel{
				Common:      withEmit(4),
				Input:       read,
				Expressions: []*substrait.Expression{fieldReference(0)},
			}}},
			expectedErr: "emit index 4 out of range for a row of 4 columns",
		},
		{
			name:        "empty relation",
			rel:         &substrait.Rel{},
			expectedErr: "relation has no operator set",
		},
		{
			name: "project over an empty relation",
			rel: &substrait.Rel{RelType: &substrait.Rel_Project{Project: &substrait.ProjectRel{
				Input: &substrait.Rel{},
			}}},
			expectedErr: "relation has no operator set",
		},
		{
			name:        "unsupported operator",
			rel:         &substrait.Rel{RelType: &substrait.Rel_Fetch{Fetch: &substrait.FetchRel{}}},
			expectedErr: "unsupported relation type *proto.Rel_Fetch",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require := require.New(t)

			width, err := OutputWidth(tc.rel)
			if tc.expectedErr != "" {
				require.EqualError(err, tc.expectedErr)
				return
			}
			require.NoError(err)
			require.Equal(tc.expectedWidth, width)
		})
	}
}
