package preview

import (
	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/category"
)

// Item is one category's probe outcome for the input it was computed for.
type Item struct {
	input    string
	category category.Category
	result   domain.Payload
}

// NewItem creates a preview item. A nil result means the category did not match.
func NewItem(input string, c category.Category, result domain.Payload) Item {
	return Item{input: input, category: c, result: result}
}

// Input returns the input the probe ran against.
func (i Item) Input() string { return i.input }

// Category returns the probed category.
func (i Item) Category() category.Category { return i.category }

// Result returns the probe payload, or nil on absence.
func (i Item) Result() domain.Payload { return i.result }

// Matched reports whether the category claimed the input.
func (i Item) Matched() bool { return i.result.Found() }

// Matches returns only the items whose category matched, preserving order.
func Matches(items []Item) []Item {
	var out []Item
	for _, it := range items {
		if it.Matched() {
			out = append(out, it)
		}
	}
	return out
}
