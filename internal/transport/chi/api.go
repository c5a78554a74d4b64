package chi

import (
	"time"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/preview"
	"github.com/kailas-cloud/omnisearch/internal/domain/route"
	"github.com/kailas-cloud/omnisearch/internal/usecase/session"
)

// ErrorResponseCode is the machine-readable error code of an API error.
type ErrorResponseCode string

// API error codes.
const (
	ErrorResponseCodeBadRequest         ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized       ErrorResponseCode = "unauthorized"
	ErrorResponseCodeEmptyInput         ErrorResponseCode = "empty_input"
	ErrorResponseCodePending            ErrorResponseCode = "pending"
	ErrorResponseCodeNotFound           ErrorResponseCode = "not_found"
	ErrorResponseCodeSessionNotFound    ErrorResponseCode = "session_not_found"
	ErrorResponseCodeUnknownNetwork     ErrorResponseCode = "unknown_network"
	ErrorResponseCodeUnknownCategory    ErrorResponseCode = "unknown_category"
	ErrorResponseCodeBackendUnavailable ErrorResponseCode = "backend_unavailable"
	ErrorResponseCodeMethodNotAllowed   ErrorResponseCode = "method_not_allowed"
	ErrorResponseCodeInternalError      ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// PreviewItem is one category's outcome for the current input.
type PreviewItem struct {
	Input    string         `json:"input"`
	Category string         `json:"category"`
	Matched  bool           `json:"matched"`
	Result   domain.Payload `json:"result"`
}

// PreviewResponse is the body of GET /v1/search/preview.
type PreviewResponse struct {
	Network string        `json:"network"`
	Items   []PreviewItem `json:"items"`
}

// CommitRequest is the body of POST /v1/search/commit.
type CommitRequest struct {
	Query   string `json:"query"`
	Network string `json:"network,omitempty"`
}

// Target is a navigation decision.
type Target struct {
	Path     string         `json:"path"`
	Kind     string         `json:"kind"`
	Category string         `json:"category,omitempty"`
	Payload  domain.Payload `json:"payload,omitempty"`
}

// CreateSessionRequest is the body of POST /v1/sessions.
type CreateSessionRequest struct {
	Network string `json:"network,omitempty"`
}

// InputRequest is the body of PUT /v1/sessions/{id}/input.
type InputRequest struct {
	Value *string `json:"value"`
}

// BatchStatus describes the preview batch started by an input change.
type BatchStatus struct {
	Revision  uint64 `json:"revision"`
	Settled   bool   `json:"settled"`
	Committed bool   `json:"committed"`
}

// Session is the observable state of a resolution session.
type Session struct {
	ID             string        `json:"id"`
	Network        string        `json:"network"`
	Input          string        `json:"input"`
	Preview        []PreviewItem `json:"preview"`
	Pending        bool          `json:"pending"`
	LastNavigation *Target       `json:"last_navigation,omitempty"`
	Revision       uint64        `json:"revision"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Batch          *BatchStatus  `json:"batch,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func previewItemsToAPI(items []preview.Item) []PreviewItem {
	if items == nil {
		return nil
	}
	out := make([]PreviewItem, len(items))
	for i, it := range items {
		out[i] = PreviewItem{
			Input:    it.Input(),
			Category: it.Category().String(),
			Matched:  it.Matched(),
			Result:   it.Result(),
		}
	}
	return out
}

func targetToAPI(t route.Target) Target {
	return Target{
		Path:     t.Path,
		Kind:     string(t.Kind),
		Category: t.Category.String(),
		Payload:  t.Payload,
	}
}

func snapshotToAPI(s session.Snapshot) Session {
	out := Session{
		ID:        s.ID,
		Network:   s.Network,
		Input:     s.Input,
		Preview:   previewItemsToAPI(s.Preview),
		Pending:   s.Pending,
		Revision:  s.Revision,
		UpdatedAt: s.UpdatedAt,
	}
	if s.LastNavigation != nil {
		t := targetToAPI(*s.LastNavigation)
		out.LastNavigation = &t
	}
	return out
}
