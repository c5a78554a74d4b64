package route

import (
	"net/url"
	"sync"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/category"
)

// Kind classifies how a navigation target was reached.
type Kind string

// Navigation kinds.
const (
	// Matched means a category probe claimed the raw input.
	Matched Kind = "matched"
	// Fallback means the unknown resolver found the entity after normalizing the input.
	Fallback Kind = "fallback"
	// NotFound means nothing claimed the input.
	NotFound Kind = "not_found"
)

const missingPrefix = "/error/missing/"

var detailPrefix = map[category.Category]string{
	category.Address:     "/addresses/",
	category.Object:      "/objects/",
	category.Transaction: "/transactions/",
}

// Target is a navigation decision.
type Target struct {
	Path     string
	Kind     Kind
	Category category.Category // empty for NotFound
	Payload  domain.Payload
}

// Detail builds the detail-view target for a matched category.
// The payload's "id" field is preferred over the raw input when present.
func Detail(c category.Category, input string, payload domain.Payload, kind Kind) Target {
	id := input
	if v, ok := payload["id"].(string); ok && v != "" {
		id = v
	}
	return Target{
		Path:     detailPrefix[c] + url.PathEscape(id),
		Kind:     kind,
		Category: c,
		Payload:  payload,
	}
}

// Missing builds the not-found target for input nothing claimed.
func Missing(input string) Target {
	return Target{Path: missingPrefix + url.PathEscape(input), Kind: NotFound}
}

// Navigator is the imperative "go to route" sink. Calls are fire-and-forget.
type Navigator interface {
	Navigate(t Target)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(t Target)

// Navigate calls f(t).
func (f NavigatorFunc) Navigate(t Target) { f(t) }

// Recorder is a Navigator that counts navigations. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	count int
}

// Navigate records one navigation.
func (r *Recorder) Navigate(Target) {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
}

// Count returns the number of navigations recorded.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
