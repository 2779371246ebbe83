package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/domain"
)

// criteriaRequest is the JSON body for criteria updates. Fields are
// pointers so an absent field falls back to the canonical default
// instead of zeroing the ceiling.
type criteriaRequest struct {
	Location      *string  `json:"location"`
	MinPrice      *int     `json:"min_price"`
	MaxPrice      *int     `json:"max_price"`
	Bedrooms      []int    `json:"bedrooms"`
	Bathrooms     []int    `json:"bathrooms"`
	PropertyTypes []string `json:"property_types"`
	MinSqft       *int     `json:"min_sqft"`
	MaxSqft       *int     `json:"max_sqft"`
}

func (req criteriaRequest) toCriteria() domain.SearchCriteria {
	criteria := domain.DefaultCriteria()
	if req.Location != nil {
		criteria.Location = *req.Location
	}
	if req.MinPrice != nil && *req.MinPrice >= 0 {
		criteria.MinPrice = *req.MinPrice
	}
	if req.MaxPrice != nil && *req.MaxPrice >= 0 {
		criteria.MaxPrice = *req.MaxPrice
	}
	if req.MinSqft != nil && *req.MinSqft >= 0 {
		criteria.MinSqft = *req.MinSqft
	}
	if req.MaxSqft != nil && *req.MaxSqft >= 0 {
		criteria.MaxSqft = *req.MaxSqft
	}
	criteria.Bedrooms = dedupe(req.Bedrooms)
	criteria.Bathrooms = dedupe(req.Bathrooms)
	criteria.PropertyTypes = propertyTypes(req.PropertyTypes)
	return criteria
}

// criteriaFromParams builds criteria from URL query parameters.
// Malformed numeric input is coerced to the canonical default here so
// the engine only ever sees well-typed values.
func criteriaFromParams(c *gin.Context) domain.SearchCriteria {
	criteria := domain.DefaultCriteria()
	criteria.Location = c.Query("location")
	criteria.MinPrice = intParam(c, "min_price", 0)
	criteria.MaxPrice = intParam(c, "max_price", domain.DefaultMaxPrice)
	criteria.MinSqft = intParam(c, "min_sqft", 0)
	criteria.MaxSqft = intParam(c, "max_sqft", domain.DefaultMaxSqft)
	criteria.Bedrooms = intListParam(c.Query("bedrooms"))
	criteria.Bathrooms = intListParam(c.Query("bathrooms"))
	criteria.PropertyTypes = propertyTypes(strings.Split(c.Query("types"), ","))
	return criteria
}

func intParam(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// intListParam parses a comma-separated list of counts, dropping
// anything non-numeric.
func intListParam(raw string) []int {
	var values []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			continue
		}
		values = append(values, v)
	}
	return dedupe(values)
}

// propertyTypes keeps only tags from the closed enumeration
func propertyTypes(raw []string) []domain.PropertyType {
	var types []domain.PropertyType
	seen := map[domain.PropertyType]bool{}
	for _, part := range raw {
		t := domain.PropertyType(strings.TrimSpace(part))
		if !t.Valid() || seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	return types
}

func dedupe(values []int) []int {
	var out []int
	seen := map[int]bool{}
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
