package domain

// Default ceilings for the range filters. Clearing the criteria restores
// these bounds.
const (
	DefaultMaxPrice = 2_000_000
	DefaultMaxSqft  = 10_000
)

// SearchCriteria is the structured filter state, distinct from the
// free-text query. Range bounds are inclusive on both ends. Selector
// slices follow empty-means-unconstrained semantics: a non-empty
// selector admits only listings whose value appears in it exactly.
type SearchCriteria struct {
	// Location is accepted from the UI but not consulted by the engine.
	// Reserved until location-scoped filtering is specified.
	Location      string         `json:"location"`
	MinPrice      int            `json:"min_price"`
	MaxPrice      int            `json:"max_price"`
	Bedrooms      []int          `json:"bedrooms"`
	Bathrooms     []int          `json:"bathrooms"`
	PropertyTypes []PropertyType `json:"property_types"`
	MinSqft       int            `json:"min_sqft"`
	MaxSqft       int            `json:"max_sqft"`
}

// DefaultCriteria returns the canonical unconstrained criteria
func DefaultCriteria() SearchCriteria {
	return SearchCriteria{
		MinPrice: 0,
		MaxPrice: DefaultMaxPrice,
		MinSqft:  0,
		MaxSqft:  DefaultMaxSqft,
	}
}

// Clear discards every user edit and returns the defaults. The free-text
// query lives outside the criteria and is reset by the caller.
func (c SearchCriteria) Clear() SearchCriteria {
	return DefaultCriteria()
}

// ToggleValue removes v from the selector if present, otherwise appends
// it. Toggling the same value twice restores the original selection, and
// duplicates are never introduced.
func ToggleValue[T comparable](set []T, v T) []T {
	for i, existing := range set {
		if existing == v {
			out := make([]T, 0, len(set)-1)
			out = append(out, set[:i]...)
			out = append(out, set[i+1:]...)
			return out
		}
	}
	out := make([]T, 0, len(set)+1)
	out = append(out, set...)
	return append(out, v)
}
