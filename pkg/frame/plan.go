package frame

import (
	"slices"

	substrait "github.com/substrait-io/substrait-go/v3/proto"
	"google.golang.org/protobuf/proto"

	"github.com/subframe-dev/subframe/pkg/frameerrors"
)

// DefaultProducer is recorded as the producer of built plans unless overridden
// with WithProducer.
const DefaultProducer = "subframe"

// The Substrait version built plans declare.
const (
	SubstraitMajorVersion uint32 = 0
	SubstraitMinorVersion uint32 = 54
	SubstraitPatchVersion uint32 = 0
)

type planOptions struct {
	producer string
}

// PlanOption configures ToPlan.
type PlanOption func(*planOptions)

// WithProducer sets the producer recorded in the plan's version.
func WithProducer(producer string) PlanOption {
	return func(o *planOptions) {
		o.producer = producer
	}
}

// ToPlan wraps the table into a Substrait plan holding a single root relation
// named with the table's output columns. The plan owns copies of the table's
// relation tree.
func (t Table) ToPlan(opts ...PlanOption) *substrait.Plan {
	if t.root == nil {
		frameerrors.MustPanic("cannot build a plan from a table with no root relation")
	}

	options := planOptions{producer: DefaultProducer}
	for _, opt := range opts {
		opt(&options)
	}

	return &substrait.Plan{
		Version: &substrait.Version{
			MajorNumber: SubstraitMajorVersion,
			MinorNumber: SubstraitMinorVersion,
			PatchNumber: SubstraitPatchVersion,
			Producer:    options.producer,
		},
		Relations: []*substrait.PlanRel{
			{
				RelType: &substrait.PlanRel_Root{
					Root: &substrait.RelRoot{
						Input: proto.Clone(t.root).(*substrait.Rel),
						Names: slices.Clone(t.names),
					},
				},
			},
		},
	}
}
