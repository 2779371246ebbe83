package filter

import (
	"strings"

	"github.com/pxlcrtiv/zillow-like-property-search/internal/domain"
)

// Engine derives the visible listing subset from a free-text query and
// structured search criteria
type Engine struct{}

// NewEngine creates a new filter engine
func NewEngine() *Engine {
	return &Engine{}
}

// MatchResult contains the evaluation outcome for a single listing
type MatchResult struct {
	Passed  bool
	Reasons []string // Reasons for filtering out
}

// Match evaluates one listing against the query and criteria
func (e *Engine) Match(listing *domain.Listing, query string, criteria domain.SearchCriteria) MatchResult {
	result := MatchResult{Passed: true}

	for _, matcher := range matchers(query, criteria) {
		if reason := matcher.Match(listing); reason != "" {
			result.Passed = false
			result.Reasons = append(result.Reasons, reason)
		}
	}

	return result
}

// Evaluate returns the listings accepted by every matcher, preserving
// the relative order of the input. It is pure: the input slice and the
// criteria are never mutated.
func (e *Engine) Evaluate(listings []domain.Listing, query string, criteria domain.SearchCriteria) []domain.Listing {
	ms := matchers(query, criteria)
	filtered := make([]domain.Listing, 0, len(listings))
out:
	for _, listing := range listings {
		for _, m := range ms {
			if m.Match(&listing) != "" {
				continue out
			}
		}
		filtered = append(filtered, listing)
	}
	return filtered
}

func matchers(query string, criteria domain.SearchCriteria) []Matcher {
	return []Matcher{
		&QueryMatcher{Query: query},
		&PriceMatcher{Min: criteria.MinPrice, Max: criteria.MaxPrice},
		&BedroomsMatcher{Allowed: criteria.Bedrooms},
		&BathroomsMatcher{Allowed: criteria.Bathrooms},
		&PropertyTypeMatcher{Allowed: criteria.PropertyTypes},
		&SqftMatcher{Min: criteria.MinSqft, Max: criteria.MaxSqft},
	}
}

// Matcher interface for individual filter criteria
type Matcher interface {
	Match(listing *domain.Listing) string // Returns empty string if passes, reason if filtered
}

// QueryMatcher matches the free-text query as a substring of any of the
// descriptive location fields. Title, address, city and state are
// compared case-insensitively; the zip code must contain the query
// verbatim.
type QueryMatcher struct {
	Query string
}

func (m *QueryMatcher) Match(l *domain.Listing) string {
	if strings.TrimSpace(m.Query) == "" {
		return "" // Blank query constrains nothing
	}
	lowered := strings.ToLower(m.Query)
	if strings.Contains(strings.ToLower(l.Title), lowered) ||
		strings.Contains(strings.ToLower(l.Address), lowered) ||
		strings.Contains(strings.ToLower(l.City), lowered) ||
		strings.Contains(strings.ToLower(l.State), lowered) ||
		strings.Contains(l.ZipCode, m.Query) {
		return ""
	}
	return "query_no_match"
}

// PriceMatcher filters by price range, both bounds inclusive.
// An inverted range (min > max) is evaluated literally and matches
// nothing; correcting it is the input layer's job.
type PriceMatcher struct {
	Min int
	Max int
}

func (m *PriceMatcher) Match(l *domain.Listing) string {
	if l.Price < m.Min {
		return "price_below_min"
	}
	if l.Price > m.Max {
		return "price_above_max"
	}
	return ""
}

// BedroomsMatcher filters by exact bedroom count membership. The UI may
// label the control "N+" but the selector is exact-match, not a
// threshold.
type BedroomsMatcher struct {
	Allowed []int
}

func (m *BedroomsMatcher) Match(l *domain.Listing) string {
	if !selected(m.Allowed, l.Bedrooms) {
		return "bedrooms_not_selected"
	}
	return ""
}

// BathroomsMatcher filters by exact bathroom count membership
type BathroomsMatcher struct {
	Allowed []int
}

func (m *BathroomsMatcher) Match(l *domain.Listing) string {
	if !selected(m.Allowed, l.Bathrooms) {
		return "bathrooms_not_selected"
	}
	return ""
}

// PropertyTypeMatcher filters by property type membership
type PropertyTypeMatcher struct {
	Allowed []domain.PropertyType
}

func (m *PropertyTypeMatcher) Match(l *domain.Listing) string {
	if !selected(m.Allowed, l.PropertyType) {
		return "property_type_not_selected"
	}
	return ""
}

// SqftMatcher filters by floor area range, both bounds inclusive
type SqftMatcher struct {
	Min int
	Max int
}

func (m *SqftMatcher) Match(l *domain.Listing) string {
	if l.Sqft < m.Min {
		return "sqft_below_min"
	}
	if l.Sqft > m.Max {
		return "sqft_above_max"
	}
	return ""
}

// selected reports whether v passes a selector: an empty selector
// constrains nothing, a non-empty one requires exact membership.
func selected[T comparable](allowed []T, v T) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
