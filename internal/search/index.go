package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"realty-service/internal/client"
	"realty-service/internal/model"
	"realty-service/internal/util"
)

// propertyDocument is the indexed projection of a live property.
// Images stay out of the index.
type propertyDocument struct {
	PropertyID   string   `json:"property_id"`
	AgentID      string   `json:"agent_id"`
	Title        string   `json:"title"`
	Price        float64  `json:"price"`
	Size         float64  `json:"size"`
	Address      string   `json:"address"`
	YearBuilt    int      `json:"year_built"`
	PropertyType string   `json:"property_type"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	Amenities    []string `json:"amenities"`
	Availability string   `json:"availability"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source propertyDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// PropertyIndex keeps the live listing index in sync with the
// properties table and answers filtered searches with property ids.
type PropertyIndex struct {
	es    *client.ESClient
	index string
}

func NewPropertyIndex(es *client.ESClient, index string) *PropertyIndex {
	return &PropertyIndex{
		es:    es,
		index: index,
	}
}

func (i *PropertyIndex) IndexProperty(ctx context.Context, property *model.Property) error {
	doc := propertyDocument{
		PropertyID:   property.PropertyID,
		AgentID:      property.AgentID,
		Title:        property.Title,
		Price:        property.Price,
		Size:         property.Size,
		Address:      property.Address,
		YearBuilt:    property.YearBuilt,
		PropertyType: strings.ToLower(property.PropertyType),
		Bedrooms:     property.Bedrooms,
		Bathrooms:    property.Bathrooms,
		Amenities:    lowerAll(property.Amenities),
		Availability: string(property.Availability),
	}

	res, err := i.es.IndexDocument(ctx, i.index, property.PropertyID, doc)
	if err != nil {
		return fmt.Errorf("failed to index property: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to index property: %s", res.String())
	}

	util.Debug("Property indexed", zap.String("property_id", property.PropertyID))
	return nil
}

func (i *PropertyIndex) RemoveProperty(ctx context.Context, propertyID string) error {
	res, err := i.es.DeleteDocument(ctx, i.index, propertyID)
	if err != nil {
		return fmt.Errorf("failed to remove property from index: %w", err)
	}
	defer res.Body.Close()

	// 404 means the document was never indexed; removal is idempotent.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("failed to remove property from index: %s", res.String())
	}

	util.Debug("Property removed from index", zap.String("property_id", propertyID))
	return nil
}

// SearchIDs returns the ids of properties matching the criteria.
func (i *PropertyIndex) SearchIDs(ctx context.Context, criteria *Criteria) ([]string, error) {
	query := criteria.BuildQuery()
	query["size"] = 1000
	query["_source"] = []string{"property_id"}

	res, err := i.es.Search(ctx, i.index, query)
	if err != nil {
		return nil, fmt.Errorf("property search failed: %w", err)
	}

	var parsed searchResponse
	if err := i.es.ParseResponse(res, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.Source.PropertyID)
	}
	return ids, nil
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
