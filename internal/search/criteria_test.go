package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-service/internal/model"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func sampleProperty() *model.Property {
	return &model.Property{
		PropertyID:   "prop-1",
		AgentID:      "agent-1",
		Title:        "Lakeview Villa",
		Price:        450000.50,
		Size:         2400,
		Address:      "12 Lakeshore Drive, Pune",
		YearBuilt:    2018,
		PropertyType: "Villa",
		Bedrooms:     4,
		Bathrooms:    3,
		Amenities:    []string{"Swimming Pool", "Garden", "Garage"},
		Features:     "Lake view, solar panels, smart locks",
		Availability: model.AvailabilityAvailable,
	}
}

func TestEmptyCriteriaMatchesEverything(t *testing.T) {
	c := &Criteria{}
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Matches(sampleProperty()))
}

func TestCriteriaMatches(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     bool
	}{
		{"keyword matches title", Criteria{Keyword: "lakeview"}, true},
		{"keyword matches address", Criteria{Keyword: "lakeshore"}, true},
		{"keyword no match", Criteria{Keyword: "penthouse"}, false},
		{"location substring case-insensitive", Criteria{Location: "lakeshore"}, true},
		{"location no match", Criteria{Location: "mumbai"}, false},
		{"property type case-insensitive", Criteria{PropertyType: "villa"}, true},
		{"property type mismatch", Criteria{PropertyType: "Apartment"}, false},
		{"price range inclusive lower", Criteria{MinPrice: floatPtr(450000.50)}, true},
		{"price range inclusive upper", Criteria{MaxPrice: floatPtr(450000.50)}, true},
		{"price below min", Criteria{MinPrice: floatPtr(500000)}, false},
		{"price above max", Criteria{MaxPrice: floatPtr(400000)}, false},
		{"size window", Criteria{MinSize: floatPtr(2000), MaxSize: floatPtr(3000)}, true},
		{"bedrooms at least", Criteria{Bedrooms: intPtr(4)}, true},
		{"bedrooms too many required", Criteria{Bedrooms: intPtr(5)}, false},
		{"bedrooms upper bound inclusive", Criteria{MaxBedrooms: intPtr(4)}, true},
		{"bedrooms above upper bound", Criteria{MaxBedrooms: intPtr(3)}, false},
		{"bedroom window", Criteria{Bedrooms: intPtr(2), MaxBedrooms: intPtr(5)}, true},
		{"bathrooms at least", Criteria{Bathrooms: intPtr(2)}, true},
		{"bathrooms upper bound inclusive", Criteria{MaxBathrooms: intPtr(3)}, true},
		{"bathrooms above upper bound", Criteria{MaxBathrooms: intPtr(2)}, false},
		{"year built minimum", Criteria{MinYearBuilt: intPtr(2015)}, true},
		{"year built too recent", Criteria{MinYearBuilt: intPtr(2020)}, false},
		{"availability match", Criteria{Availability: "available"}, true},
		{"availability mismatch", Criteria{Availability: "SOLD"}, false},
		{"all amenities present", Criteria{Amenities: []string{"pool", "garage"}}, true},
		{"amenity substring case-insensitive", Criteria{Amenities: []string{"swimming"}}, true},
		{"missing amenity", Criteria{Amenities: []string{"pool", "gym"}}, false},
		{"features substring case-insensitive", Criteria{Features: "solar"}, true},
		{"features no match", Criteria{Features: "rooftop terrace"}, false},
		{
			"combined filters",
			Criteria{
				Location:     "Pune",
				PropertyType: "Villa",
				MinPrice:     floatPtr(400000),
				MaxPrice:     floatPtr(500000),
				Bedrooms:     intPtr(3),
				Amenities:    []string{"Garden"},
			},
			true,
		},
		{
			"combined filters one fails",
			Criteria{
				Location: "Pune",
				MaxPrice: floatPtr(100000),
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.criteria.Matches(sampleProperty()))
		})
	}
}

func TestBuildQueryEmptyCriteria(t *testing.T) {
	c := &Criteria{}
	query := c.BuildQuery()

	queryPart, ok := query["query"].(map[string]interface{})
	require.True(t, ok)
	_, hasMatchAll := queryPart["match_all"]
	assert.True(t, hasMatchAll)
}

func TestBuildQueryClauses(t *testing.T) {
	c := &Criteria{
		Location:     "Pune",
		Features:     "solar panels",
		PropertyType: "Villa",
		MinPrice:     floatPtr(100000),
		MaxPrice:     floatPtr(500000),
		Bedrooms:     intPtr(3),
		MaxBedrooms:  intPtr(5),
		Amenities:    []string{"Pool", "Garden"},
	}

	query := c.BuildQuery()

	queryPart, ok := query["query"].(map[string]interface{})
	require.True(t, ok)
	boolQuery, ok := queryPart["bool"].(map[string]interface{})
	require.True(t, ok)

	must, ok := boolQuery["must"].([]interface{})
	require.True(t, ok)
	// location match, features match
	assert.Len(t, must, 2)

	filter, ok := boolQuery["filter"].([]interface{})
	require.True(t, ok)
	// type term, price range, bedrooms range, two amenity matches
	assert.Len(t, filter, 5)
}

func TestBuildQueryBedroomWindow(t *testing.T) {
	c := &Criteria{Bedrooms: intPtr(2), MaxBedrooms: intPtr(4)}
	query := c.BuildQuery()

	boolQuery := query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filter := boolQuery["filter"].([]interface{})
	require.Len(t, filter, 1)

	bedroomRange := filter[0].(map[string]interface{})["range"].(map[string]interface{})["bedrooms"].(map[string]interface{})
	assert.Equal(t, 2, bedroomRange["gte"])
	assert.Equal(t, 4, bedroomRange["lte"])
}

func TestBuildQueryNormalizesCase(t *testing.T) {
	c := &Criteria{PropertyType: "VILLA", Availability: "available", Amenities: []string{"POOL"}}
	query := c.BuildQuery()

	boolQuery := query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filter := boolQuery["filter"].([]interface{})
	require.Len(t, filter, 3)

	typeTerm := filter[0].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "villa", typeTerm["property_type"])

	availabilityTerm := filter[1].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "AVAILABLE", availabilityTerm["availability"])

	amenityMatch := filter[2].(map[string]interface{})["match"].(map[string]interface{})
	assert.Equal(t, "pool", amenityMatch["amenities"])
}
