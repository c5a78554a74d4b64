package resolve

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/route"
	"github.com/kailas-cloud/omnisearch/internal/metrics"
)

// Committer is the commit resolver: the first category in declared order whose probe
// matches wins, otherwise the unknown resolver decides.
type Committer struct {
	probes  []Binding
	unknown UnknownResolver
	logger  *zap.Logger
}

// NewCommitter creates a committer. unknown may be nil, in which case unmatched input
// navigates straight to the not-found route.
func NewCommitter(probes []Binding, unknown UnknownResolver, logger *zap.Logger) *Committer {
	return &Committer{probes: probes, unknown: unknown, logger: logger}
}

// Commit resolves input to exactly one navigation on nav.
// Probes start together; results are consumed in declared order so an earlier category
// still in flight always beats a later one that already matched. Once a winner is known
// the remaining probes are cancelled.
func (c *Committer) Commit(ctx context.Context, input string, nav route.Navigator) (route.Target, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return route.Target{}, domain.ErrEmptyInput
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]chan domain.Payload, len(c.probes))
	for i, b := range c.probes {
		ch := make(chan domain.Payload, 1)
		results[i] = ch
		go func() {
			payload, err := Run(ctx, b, query)
			if err != nil {
				c.logger.Debug("Commit probe failed",
					zap.String("category", b.Category.String()),
					zap.Error(err),
				)
			}
			ch <- payload
		}()
	}

	for i, ch := range results {
		payload := <-ch
		if !payload.Found() {
			continue
		}
		target := route.Detail(c.probes[i].Category, query, payload, route.Matched)
		nav.Navigate(target)
		metrics.CommitsTotal.WithLabelValues(string(target.Kind)).Inc()
		c.logger.Debug("Commit matched",
			zap.String("category", target.Category.String()),
			zap.String("path", target.Path),
		)
		return target, nil
	}

	var target route.Target
	if c.unknown != nil {
		target = c.unknown.ResolveUnknown(ctx, query, nav)
	} else {
		target = route.Missing(query)
		nav.Navigate(target)
	}
	metrics.CommitsTotal.WithLabelValues(string(target.Kind)).Inc()
	return target, nil
}
