package unknown

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/domain/route"
	"github.com/kailas-cloud/omnisearch/internal/usecase/resolve"
)

// Resolver is the fallback used when no category claims the raw input.
// It retries the categories with normalized spellings of the input before
// giving up with the not-found route.
type Resolver struct {
	probes []resolve.Binding
	logger *zap.Logger
}

var _ resolve.UnknownResolver = (*Resolver)(nil)

// New creates a fallback resolver over probes in declared order.
func New(probes []resolve.Binding, logger *zap.Logger) *Resolver {
	return &Resolver{probes: probes, logger: logger}
}

// ResolveUnknown navigates once and always settles.
func (r *Resolver) ResolveUnknown(ctx context.Context, input string, nav route.Navigator) route.Target {
	for _, candidate := range Candidates(input) {
		for _, b := range r.probes {
			payload, err := resolve.Run(ctx, b, candidate)
			if err != nil {
				r.logger.Debug("Fallback probe failed",
					zap.String("category", b.Category.String()),
					zap.String("candidate", candidate),
					zap.Error(err),
				)
				continue
			}
			if !payload.Found() {
				continue
			}
			target := route.Detail(b.Category, candidate, payload, route.Fallback)
			nav.Navigate(target)
			return target
		}
	}

	r.logger.Debug("Nothing matched input", zap.String("input", input))
	target := route.Missing(input)
	nav.Navigate(target)
	return target
}

// Candidates returns normalized spellings of input worth retrying, excluding input itself.
// Hex strings are lower-cased and given a 0x prefix when it is missing.
func Candidates(input string) []string {
	body, hasPrefix := strings.CutPrefix(input, "0x")
	if !hasPrefix {
		body, hasPrefix = strings.CutPrefix(input, "0X")
	}
	if body == "" || !isHex(body) {
		return nil
	}

	normalized := "0x" + strings.ToLower(body)
	if normalized == input {
		return nil
	}
	return []string{normalized}
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
