package resolve

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/omnisearch/internal/domain"
)

// Run executes one binding, converting a panic into a probe error.
// The returned payload is nil whenever err is non-nil.
func Run(ctx context.Context, b Binding, input string) (payload domain.Payload, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			payload = nil
			err = &domain.ProbeError{Category: b.Category.String(), Err: fmt.Errorf("panic: %v", rvr)}
		}
	}()

	payload, err = b.Prober.Probe(ctx, input)
	if err != nil {
		return nil, &domain.ProbeError{Category: b.Category.String(), Err: err}
	}
	return payload, nil
}
