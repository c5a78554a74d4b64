package category

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/omnisearch/internal/domain"
)

// Category is a kind of ledger entity with its own probe and detail route.
type Category string

// Known categories, in default declared order.
const (
	Address     Category = "address"
	Object      Category = "object"
	Transaction Category = "transaction"
)

var defaultOrder = []Category{Address, Object, Transaction}

// All returns the default declared order. The order is load-bearing: it is the probe
// order and the commit tie-break priority.
func All() []Category {
	out := make([]Category, len(defaultOrder))
	copy(out, defaultOrder)
	return out
}

// IsValid checks if the category is one of the supported values.
func (c Category) IsValid() bool {
	return c == Address || c == Object || c == Transaction
}

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }

// Parse converts a name into a Category.
func Parse(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCategory, name)
	}
	return c, nil
}

// ParseList parses an ordered list of names, rejecting duplicates.
// An empty list yields the default order.
func ParseList(names []string) ([]Category, error) {
	if len(names) == 0 {
		return All(), nil
	}
	seen := make(map[Category]bool, len(names))
	out := make([]Category, 0, len(names))
	for _, n := range names {
		c, err := Parse(n)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate category %q", c)
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}
