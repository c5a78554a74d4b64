package resolve

import (
	"context"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/category"
	"github.com/kailas-cloud/omnisearch/internal/domain/route"
)

// Prober checks whether input names an entity of one category.
// (nil, nil) is absence. Errors are treated as absence by the resolvers.
type Prober interface {
	Probe(ctx context.Context, input string) (domain.Payload, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, input string) (domain.Payload, error)

// Probe calls f(ctx, input).
func (f ProberFunc) Probe(ctx context.Context, input string) (domain.Payload, error) {
	return f(ctx, input)
}

// Binding pairs a category with its probe.
type Binding struct {
	Category category.Category
	Prober   Prober
}

// UnknownResolver runs the best-effort lookup when no category claimed the input.
// It navigates exactly once and always settles.
type UnknownResolver interface {
	ResolveUnknown(ctx context.Context, input string, nav route.Navigator) route.Target
}
