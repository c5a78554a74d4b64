package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/category"
	"github.com/kailas-cloud/omnisearch/internal/logger"
	"github.com/kailas-cloud/omnisearch/internal/metrics"
	"github.com/kailas-cloud/omnisearch/internal/usecase/resolve"
)

// Outcome labels for probe metrics.
const (
	OutcomeMatch  = "match"
	OutcomeAbsent = "absent"
	OutcomeError  = "error"
)

// InstrumentedProber wraps a Prober with a per-call deadline, metrics and logging.
type InstrumentedProber struct {
	inner    resolve.Prober
	network  string
	category category.Category
	timeout  time.Duration
	logger   *zap.Logger
}

var _ resolve.Prober = (*InstrumentedProber)(nil)

// NewInstrumentedProber wraps inner. A zero timeout leaves the caller's deadline alone.
func NewInstrumentedProber(
	inner resolve.Prober, network string, c category.Category,
	timeout time.Duration, logger *zap.Logger,
) *InstrumentedProber {
	return &InstrumentedProber{
		inner:    inner,
		network:  network,
		category: c,
		timeout:  timeout,
		logger:   logger,
	}
}

// Probe delegates to the inner probe under the configured deadline.
func (p *InstrumentedProber) Probe(ctx context.Context, input string) (domain.Payload, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	log := logger.FromContextOr(ctx, p.logger)
	start := time.Now()
	payload, err := p.inner.Probe(ctx, input)
	duration := time.Since(start)

	metrics.ProbeDuration.WithLabelValues(p.network, string(p.category)).Observe(duration.Seconds())

	if err != nil {
		metrics.ProbeRequestsTotal.WithLabelValues(p.network, string(p.category), OutcomeError).Inc()
		// Cancellation by a sibling winning the commit is routine.
		if errors.Is(err, context.Canceled) {
			log.Debug("Probe cancelled",
				zap.String("network", p.network),
				zap.String("category", string(p.category)),
				zap.Duration("duration", duration),
			)
		} else {
			log.Warn("Probe failed",
				zap.String("network", p.network),
				zap.String("category", string(p.category)),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("probe %s on %s: %w", p.category, p.network, err)
	}

	outcome := OutcomeAbsent
	if payload.Found() {
		outcome = OutcomeMatch
	}
	metrics.ProbeRequestsTotal.WithLabelValues(p.network, string(p.category), outcome).Inc()

	log.Debug("Probe completed",
		zap.String("network", p.network),
		zap.String("category", string(p.category)),
		zap.String("outcome", outcome),
		zap.Duration("duration", duration),
	)

	return payload, nil
}
