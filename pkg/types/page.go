package types

import (
	"net/url"
	"strconv"
	"strings"
)

// Page is an optional pagination request. Each part is independently
// optional; the zero Page asks for the server's default collection.
type Page struct {
	Number *int     // Page index (0-based on the reference server).
	Size   *int     // Page size.
	Sort   []string // Sort orders in "field,asc" or "field,desc" form.
}

// Paged returns a Page with every part set.
func Paged(number, size int, sort ...string) Page {
	return Page{Number: &number, Size: &size, Sort: sort}
}

// IsZero reports whether no pagination parameter is set.
func (p Page) IsZero() bool {
	return p.Number == nil && p.Size == nil && len(p.Sort) == 0
}

// Values encodes the supplied parts as page, size and sort query parameters.
// Absent parts are omitted.
func (p Page) Values() url.Values {
	v := url.Values{}
	if p.Number != nil {
		v.Set("page", strconv.Itoa(*p.Number))
	}
	if p.Size != nil {
		v.Set("size", strconv.Itoa(*p.Size))
	}
	for _, s := range p.Sort {
		v.Add("sort", s)
	}
	return v
}

// SortOrder is one parsed sort instruction.
type SortOrder struct {
	Field string
	Desc  bool
}

// ParseSort parses "field", "field,asc" or "field,desc".
func ParseSort(s string) (SortOrder, error) {
	field, dir, _ := strings.Cut(s, ",")
	field = strings.TrimSpace(field)
	if field == "" {
		return SortOrder{}, ErrInvalidFilter
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
		return SortOrder{Field: field}, nil
	case "desc":
		return SortOrder{Field: field, Desc: true}, nil
	default:
		return SortOrder{}, ErrInvalidFilter
	}
}

// Query is a resolved fetch request against a Table.
type Query struct {
	Criteria Criteria
	Search   string      // Free-text match across the table's text fields.
	Sort     []SortOrder // Applied in order; ties broken by id.
	Offset   int
	Limit    int // Zero means no limit.
}

// Listing is one page of entities together with the collection total
// reported by the server.
type Listing[E any] struct {
	Items      []E
	TotalItems int64
}

// Payload is the JSON object sent on create and update after cleaning.
type Payload map[string]any
