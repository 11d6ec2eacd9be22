// Package search holds the property filter model. The same Criteria
// value drives both the Elasticsearch query and the in-memory fallback
// predicate, so the two paths cannot drift apart.
package search

import (
	"strings"

	"realty-service/internal/model"
)

// Criteria is the full set of property filters. Nil numeric fields and
// empty strings mean "no constraint"; an empty Criteria matches every
// live property.
type Criteria struct {
	Keyword      string   `json:"keyword"`
	Location     string   `json:"location"`
	PropertyType string   `json:"propertyType"`
	MinPrice     *float64 `json:"minPrice"`
	MaxPrice     *float64 `json:"maxPrice"`
	MinSize      *float64 `json:"minSize"`
	MaxSize      *float64 `json:"maxSize"`
	Bedrooms     *int     `json:"bedrooms"`
	MaxBedrooms  *int     `json:"maxBedrooms"`
	Bathrooms    *int     `json:"bathrooms"`
	MaxBathrooms *int     `json:"maxBathrooms"`
	MinYearBuilt *int     `json:"minYearBuilt"`
	Availability string   `json:"availability"`
	Amenities    []string `json:"amenities"`
	Features     string   `json:"features"`
}

// IsEmpty reports whether no filter is set.
func (c *Criteria) IsEmpty() bool {
	return c.Keyword == "" && c.Location == "" && c.PropertyType == "" &&
		c.MinPrice == nil && c.MaxPrice == nil &&
		c.MinSize == nil && c.MaxSize == nil &&
		c.Bedrooms == nil && c.MaxBedrooms == nil &&
		c.Bathrooms == nil && c.MaxBathrooms == nil &&
		c.MinYearBuilt == nil && c.Availability == "" &&
		len(c.Amenities) == 0 && c.Features == ""
}

// BuildQuery renders the criteria as an Elasticsearch bool query.
func (c *Criteria) BuildQuery() map[string]interface{} {
	var must []interface{}
	var filter []interface{}

	if c.Keyword != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  c.Keyword,
				"fields": []string{"title", "address"},
			},
		})
	}

	if c.Location != "" {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{
				"address": c.Location,
			},
		})
	}

	if c.Features != "" {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{
				"features": c.Features,
			},
		})
	}

	if c.PropertyType != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{
				"property_type": strings.ToLower(c.PropertyType),
			},
		})
	}

	if c.Availability != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{
				"availability": strings.ToUpper(c.Availability),
			},
		})
	}

	if priceRange := rangeClause(c.MinPrice, c.MaxPrice); priceRange != nil {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"price": priceRange},
		})
	}

	if sizeRange := rangeClause(c.MinSize, c.MaxSize); sizeRange != nil {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"size": sizeRange},
		})
	}

	if bedroomRange := intRangeClause(c.Bedrooms, c.MaxBedrooms); bedroomRange != nil {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"bedrooms": bedroomRange},
		})
	}

	if bathroomRange := intRangeClause(c.Bathrooms, c.MaxBathrooms); bathroomRange != nil {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"bathrooms": bathroomRange},
		})
	}

	if c.MinYearBuilt != nil {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{
				"year_built": map[string]interface{}{"gte": *c.MinYearBuilt},
			},
		})
	}

	for _, amenity := range c.Amenities {
		filter = append(filter, map[string]interface{}{
			"match": map[string]interface{}{
				"amenities": strings.ToLower(amenity),
			},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	if len(boolQuery) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
}

func rangeClause(min, max *float64) map[string]interface{} {
	if min == nil && max == nil {
		return nil
	}
	clause := map[string]interface{}{}
	if min != nil {
		clause["gte"] = *min
	}
	if max != nil {
		clause["lte"] = *max
	}
	return clause
}

func intRangeClause(min, max *int) map[string]interface{} {
	if min == nil && max == nil {
		return nil
	}
	clause := map[string]interface{}{}
	if min != nil {
		clause["gte"] = *min
	}
	if max != nil {
		clause["lte"] = *max
	}
	return clause
}

// Matches applies the criteria directly to a live property. String
// filters are case-insensitive; range bounds are inclusive; every
// requested amenity must be present.
func (c *Criteria) Matches(p *model.Property) bool {
	if c.Keyword != "" {
		keyword := strings.ToLower(c.Keyword)
		if !strings.Contains(strings.ToLower(p.Title), keyword) &&
			!strings.Contains(strings.ToLower(p.Address), keyword) {
			return false
		}
	}
	if c.Location != "" &&
		!strings.Contains(strings.ToLower(p.Address), strings.ToLower(c.Location)) {
		return false
	}
	if c.PropertyType != "" &&
		!strings.EqualFold(p.PropertyType, c.PropertyType) {
		return false
	}
	if c.Availability != "" &&
		!strings.EqualFold(string(p.Availability), c.Availability) {
		return false
	}
	if c.MinPrice != nil && p.Price < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && p.Price > *c.MaxPrice {
		return false
	}
	if c.MinSize != nil && p.Size < *c.MinSize {
		return false
	}
	if c.MaxSize != nil && p.Size > *c.MaxSize {
		return false
	}
	if c.Bedrooms != nil && p.Bedrooms < *c.Bedrooms {
		return false
	}
	if c.MaxBedrooms != nil && p.Bedrooms > *c.MaxBedrooms {
		return false
	}
	if c.Bathrooms != nil && p.Bathrooms < *c.Bathrooms {
		return false
	}
	if c.MaxBathrooms != nil && p.Bathrooms > *c.MaxBathrooms {
		return false
	}
	if c.MinYearBuilt != nil && p.YearBuilt < *c.MinYearBuilt {
		return false
	}
	if c.Features != "" &&
		!strings.Contains(strings.ToLower(p.Features), strings.ToLower(c.Features)) {
		return false
	}
	for _, amenity := range c.Amenities {
		if !containsFold(p.Amenities, amenity) {
			return false
		}
	}
	return true
}

// containsFold reports whether any list item contains target as a
// case-insensitive substring.
func containsFold(list []string, target string) bool {
	target = strings.ToLower(target)
	for _, item := range list {
		if strings.Contains(strings.ToLower(item), target) {
			return true
		}
	}
	return false
}
