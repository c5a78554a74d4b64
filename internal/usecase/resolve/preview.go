package resolve

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/preview"
)

// Previewer is the incremental resolver: one probe per category, all in flight at once,
// published together once every probe has settled.
type Previewer struct {
	probes []Binding
	logger *zap.Logger
}

// NewPreviewer creates a previewer over probes in declared order.
func NewPreviewer(probes []Binding, logger *zap.Logger) *Previewer {
	return &Previewer{probes: probes, logger: logger}
}

// Preview probes every category for input and returns one item per category in declared
// order. Empty input returns nil without probing. A failing probe yields an absent item.
func (p *Previewer) Preview(ctx context.Context, input string) []preview.Item {
	if input == "" {
		return nil
	}

	results := make([]domain.Payload, len(p.probes))

	// Probes never return errors to the group, so one failure cannot cancel its siblings.
	var g errgroup.Group
	for i, b := range p.probes {
		g.Go(func() error {
			payload, err := Run(ctx, b, input)
			if err != nil {
				p.logger.Debug("Preview probe failed",
					zap.String("category", b.Category.String()),
					zap.Error(err),
				)
				return nil
			}
			results[i] = payload
			return nil
		})
	}
	_ = g.Wait()

	items := make([]preview.Item, len(p.probes))
	for i, b := range p.probes {
		items[i] = preview.NewItem(input, b.Category, results[i])
	}
	return items
}
