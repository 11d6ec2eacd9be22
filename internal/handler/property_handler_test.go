package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-service/internal/model"
	"realty-service/internal/validation"
)

func TestCriteriaFromQuery(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/properties/searchProperty?keyword=villa&features=pool&minPrice=100000&maxBedrooms=2&maxBathrooms=1&amenities=Garden,Garage", nil)

	criteria, err := criteriaFromQuery(r)
	require.NoError(t, err)

	assert.False(t, criteria.IsEmpty())
	assert.Equal(t, "villa", criteria.Keyword)
	assert.Equal(t, "pool", criteria.Features)
	require.NotNil(t, criteria.MinPrice)
	assert.Equal(t, 100000.0, *criteria.MinPrice)
	require.NotNil(t, criteria.MaxBedrooms)
	assert.Equal(t, 2, *criteria.MaxBedrooms)
	require.NotNil(t, criteria.MaxBathrooms)
	assert.Equal(t, 1, *criteria.MaxBathrooms)
	assert.Equal(t, []string{"Garden", "Garage"}, criteria.Amenities)
	assert.Nil(t, criteria.Bedrooms)
}

func TestCriteriaFromQueryFiltersProperties(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/properties/searchProperty?features=pool&maxBedrooms=2&maxBathrooms=1", nil)

	criteria, err := criteriaFromQuery(r)
	require.NoError(t, err)

	oversized := &model.Property{Features: "garden only", Bedrooms: 6, Bathrooms: 4}
	assert.False(t, criteria.Matches(oversized))

	fitting := &model.Property{Features: "heated pool", Bedrooms: 2, Bathrooms: 1}
	assert.True(t, criteria.Matches(fitting))
}

func TestCriteriaFromQueryBadNumbers(t *testing.T) {
	for _, param := range []string{"minPrice=abc", "maxBedrooms=two", "maxBathrooms=1.5"} {
		r := httptest.NewRequest("GET", "/api/properties/searchProperty?"+param, nil)
		_, err := criteriaFromQuery(r)
		var fieldErr *validation.FieldError
		assert.ErrorAs(t, err, &fieldErr, param)
	}
}
