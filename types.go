package omnisearch

import (
	"github.com/kailas-cloud/omnisearch/internal/domain/category"
	"github.com/kailas-cloud/omnisearch/internal/domain/preview"
	"github.com/kailas-cloud/omnisearch/internal/domain/route"
)

// Category is a kind of ledger entity.
type Category string

// Supported categories, in default probe order.
const (
	CategoryAddress     Category = Category(category.Address)
	CategoryObject      Category = Category(category.Object)
	CategoryTransaction Category = Category(category.Transaction)
)

// Kind classifies how a navigation target was reached.
type Kind string

// Navigation kinds.
const (
	KindMatched  Kind = Kind(route.Matched)
	KindFallback Kind = Kind(route.Fallback)
	KindNotFound Kind = Kind(route.NotFound)
)

// PreviewItem is one category's outcome for an input. Result is nil when the
// category did not match.
type PreviewItem struct {
	Input    string
	Category Category
	Matched  bool
	Result   map[string]any
}

// Target is the explorer route a submit navigates to.
type Target struct {
	Path     string
	Kind     Kind
	Category Category // empty for KindNotFound
	Payload  map[string]any
}

func previewFromDomain(items []preview.Item) []PreviewItem {
	if items == nil {
		return nil
	}
	out := make([]PreviewItem, len(items))
	for i, it := range items {
		out[i] = PreviewItem{
			Input:    it.Input(),
			Category: Category(it.Category()),
			Matched:  it.Matched(),
			Result:   it.Result().Clone(),
		}
	}
	return out
}

func targetFromDomain(t route.Target) Target {
	return Target{
		Path:     t.Path,
		Kind:     Kind(t.Kind),
		Category: Category(t.Category),
		Payload:  t.Payload.Clone(),
	}
}

func categoriesToDomain(cats []Category) ([]category.Category, error) {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return category.ParseList(names) //nolint:wrapcheck // already carries ErrUnknownCategory
}
