// Package catalog keeps the displayed product list consistent with the
// baseline fetched from the API under the active filter criteria.
package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/matthieukhl/storefront/internal/models"
)

// Criteria are the independent filters applied to the baseline. The zero
// value filters nothing.
type Criteria struct {
	// Category keeps items whose productType equals it exactly.
	// models.CategoryAll and "" mean no filter.
	Category string
	// Search keeps items whose title contains it, ignoring case.
	// Blank text means no filter.
	Search string
	// Price keeps items whose whole-number part equals it. nil means no
	// filter; use ParsePrice to build it from user input.
	Price *int
}

// ParsePrice reads the leading integer of s the way a price box is typed:
// "19", "19.99" and " 19abc" all give 19. Empty, unparseable and zero
// input give nil, meaning no price filter.
func ParsePrice(s string) *int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return nil
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n == 0 {
		return nil
	}
	return &n
}

// Apply returns the items of baseline that satisfy every criterion, in
// baseline order. baseline is never modified and the result never shares
// its backing array.
func Apply(baseline []models.Product, c Criteria) []models.Product {
	search := ""
	if strings.TrimSpace(c.Search) != "" {
		search = strings.ToLower(c.Search)
	}

	out := make([]models.Product, 0, len(baseline))
	for _, p := range baseline {
		if c.Category != "" && c.Category != models.CategoryAll && p.ProductType != c.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		if c.Price != nil && math.Trunc(p.Price) != float64(*c.Price) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// IsZero reports whether c filters nothing.
func (c Criteria) IsZero() bool {
	return (c.Category == "" || c.Category == models.CategoryAll) &&
		strings.TrimSpace(c.Search) == "" &&
		c.Price == nil
}
