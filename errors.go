package omnisearch

import "github.com/kailas-cloud/omnisearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyInput         = domain.ErrEmptyInput
	ErrPending            = domain.ErrPending
	ErrUnknownNetwork     = domain.ErrUnknownNetwork
	ErrUnknownCategory    = domain.ErrUnknownCategory
	ErrSessionNotFound    = domain.ErrSessionNotFound
	ErrBackendUnavailable = domain.ErrBackendUnavailable
)
