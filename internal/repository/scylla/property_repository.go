package scylla

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"realty-service/internal/bucketing"
	"realty-service/internal/model"
	"realty-service/internal/repository"
	"realty-service/internal/util"
)

// PropertyRepository serves the pending_properties review queue and the
// live properties table. A property id never exists in both at once.
type PropertyRepository struct {
	client  *ScyllaClient
	buckets *bucketing.BucketingManager
}

func NewPropertyRepository(client *ScyllaClient, buckets *bucketing.BucketingManager) *PropertyRepository {
	return &PropertyRepository{
		client:  client,
		buckets: buckets,
	}
}

func (r *PropertyRepository) CreatePending(property *model.PendingProperty) error {
	if property.PropertyID == "" {
		property.PropertyID = uuid.New().String()
	}
	property.Bucket = r.buckets.PropertyBucket(property.PropertyID)

	now := time.Now().UTC()
	property.CreatedAt = now
	property.UpdatedAt = now

	query := r.client.Query(r.client.Statements.CreatePendingProperty,
		property.Bucket, property.PropertyID, property.AgentID,
		property.Title, property.Price, property.Size, property.Address,
		property.YearBuilt, property.PropertyType, property.Bedrooms,
		property.Bathrooms, property.Amenities, property.Features,
		property.Proximity, string(property.Status), property.Images,
		property.CreatedAt, property.UpdatedAt)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to create pending property",
			zap.String("property_id", property.PropertyID),
			zap.Error(err))
		return fmt.Errorf("failed to create pending property: %w", err)
	}

	util.Info("Pending property created",
		zap.String("property_id", property.PropertyID),
		zap.String("agent_id", property.AgentID))
	return nil
}

func (r *PropertyRepository) GetPendingByID(propertyID string) (*model.PendingProperty, error) {
	bucket := r.buckets.PropertyBucket(propertyID)
	property := &model.PendingProperty{}

	query := r.client.Query(r.client.Statements.GetPendingPropertyByID, bucket, propertyID)

	err := r.client.ScanWithRetry(query, pendingPropertyScanDest(property)...)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pending property by ID: %w", err)
	}

	return property, nil
}

func (r *PropertyRepository) ListPending() ([]*model.PendingProperty, error) {
	iter := r.client.Query(`
        SELECT bucket, property_id, agent_id, title, price, size, address,
            year_built, property_type, bedrooms, bathrooms, amenities,
            features, proximity, status, images, created_at, updated_at
        FROM pending_properties`).Iter()

	var properties []*model.PendingProperty
	for {
		property := &model.PendingProperty{}
		if !iter.Scan(pendingPropertyScanDest(property)...) {
			break
		}
		properties = append(properties, property)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list pending properties: %w", err)
	}
	return properties, nil
}

func (r *PropertyRepository) ListPendingByAgent(agentID string) ([]*model.PendingProperty, error) {
	iter := r.client.Query(`
        SELECT bucket, property_id, agent_id, title, price, size, address,
            year_built, property_type, bedrooms, bathrooms, amenities,
            features, proximity, status, images, created_at, updated_at
        FROM pending_properties WHERE agent_id = ? ALLOW FILTERING`, agentID).Iter()

	var properties []*model.PendingProperty
	for {
		property := &model.PendingProperty{}
		if !iter.Scan(pendingPropertyScanDest(property)...) {
			break
		}
		properties = append(properties, property)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list pending properties by agent: %w", err)
	}
	return properties, nil
}

func (r *PropertyRepository) UpdatePending(property *model.PendingProperty) error {
	property.UpdatedAt = time.Now().UTC()
	bucket := r.buckets.PropertyBucket(property.PropertyID)

	query := r.client.Query(`
        UPDATE pending_properties SET agent_id = ?, title = ?, price = ?,
            size = ?, address = ?, year_built = ?, property_type = ?,
            bedrooms = ?, bathrooms = ?, amenities = ?, features = ?,
            proximity = ?, status = ?, images = ?, updated_at = ?
        WHERE bucket = ? AND property_id = ?`,
		property.AgentID, property.Title, property.Price,
		property.Size, property.Address, property.YearBuilt, property.PropertyType,
		property.Bedrooms, property.Bathrooms, property.Amenities, property.Features,
		property.Proximity, string(property.Status), property.Images, property.UpdatedAt,
		bucket, property.PropertyID)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to update pending property",
			zap.String("property_id", property.PropertyID),
			zap.Error(err))
		return fmt.Errorf("failed to update pending property: %w", err)
	}
	return nil
}

func (r *PropertyRepository) DeletePending(propertyID string) error {
	bucket := r.buckets.PropertyBucket(propertyID)

	query := r.client.Query(r.client.Statements.DeletePendingProperty, bucket, propertyID)
	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		return fmt.Errorf("failed to delete pending property: %w", err)
	}

	util.Info("Pending property deleted", zap.String("property_id", propertyID))
	return nil
}

func (r *PropertyRepository) Create(property *model.Property) error {
	if property.PropertyID == "" {
		property.PropertyID = uuid.New().String()
	}
	property.Bucket = r.buckets.PropertyBucket(property.PropertyID)

	now := time.Now().UTC()
	if property.CreatedAt.IsZero() {
		property.CreatedAt = now
	}
	property.UpdatedAt = now

	query := r.client.Query(r.client.Statements.CreateProperty,
		property.Bucket, property.PropertyID, property.AgentID,
		property.Title, property.Price, property.Size, property.Address,
		property.YearBuilt, property.PropertyType, property.Bedrooms,
		property.Bathrooms, property.Amenities, property.Features,
		property.Proximity, string(property.Status), string(property.Availability),
		property.Images, property.CreatedAt, property.UpdatedAt)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to create property",
			zap.String("property_id", property.PropertyID),
			zap.Error(err))
		return fmt.Errorf("failed to create property: %w", err)
	}

	util.Info("Property created",
		zap.String("property_id", property.PropertyID),
		zap.String("agent_id", property.AgentID))
	return nil
}

func (r *PropertyRepository) GetByID(propertyID string) (*model.Property, error) {
	bucket := r.buckets.PropertyBucket(propertyID)
	property := &model.Property{}

	query := r.client.Query(r.client.Statements.GetPropertyByID, bucket, propertyID)

	err := r.client.ScanWithRetry(query, propertyScanDest(property)...)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get property by ID: %w", err)
	}

	return property, nil
}

func (r *PropertyRepository) List() ([]*model.Property, error) {
	iter := r.client.Query(propertySelect + ` FROM properties`).Iter()
	return r.collect(iter)
}

func (r *PropertyRepository) ListByAgent(agentID string) ([]*model.Property, error) {
	iter := r.client.Query(propertySelect+`
        FROM properties WHERE agent_id = ? ALLOW FILTERING`, agentID).Iter()
	return r.collect(iter)
}

func (r *PropertyRepository) collect(iter *gocql.Iter) ([]*model.Property, error) {
	var properties []*model.Property
	for {
		property := &model.Property{}
		if !iter.Scan(propertyScanDest(property)...) {
			break
		}
		properties = append(properties, property)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

func (r *PropertyRepository) Update(property *model.Property) error {
	property.UpdatedAt = time.Now().UTC()
	bucket := r.buckets.PropertyBucket(property.PropertyID)

	query := r.client.Query(`
        UPDATE properties SET agent_id = ?, title = ?, price = ?, size = ?,
            address = ?, year_built = ?, property_type = ?, bedrooms = ?,
            bathrooms = ?, amenities = ?, features = ?, proximity = ?,
            status = ?, availability = ?, images = ?, updated_at = ?
        WHERE bucket = ? AND property_id = ?`,
		property.AgentID, property.Title, property.Price, property.Size,
		property.Address, property.YearBuilt, property.PropertyType, property.Bedrooms,
		property.Bathrooms, property.Amenities, property.Features, property.Proximity,
		string(property.Status), string(property.Availability), property.Images,
		property.UpdatedAt, bucket, property.PropertyID)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to update property",
			zap.String("property_id", property.PropertyID),
			zap.Error(err))
		return fmt.Errorf("failed to update property: %w", err)
	}
	return nil
}

func (r *PropertyRepository) Delete(propertyID string) error {
	bucket := r.buckets.PropertyBucket(propertyID)

	query := r.client.Query(r.client.Statements.DeleteProperty, bucket, propertyID)
	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	util.Info("Property deleted", zap.String("property_id", propertyID))
	return nil
}

const propertySelect = `
        SELECT bucket, property_id, agent_id, title, price, size, address,
            year_built, property_type, bedrooms, bathrooms, amenities,
            features, proximity, status, availability, images,
            created_at, updated_at`

func pendingPropertyScanDest(p *model.PendingProperty) []interface{} {
	return []interface{}{
		&p.Bucket, &p.PropertyID, &p.AgentID, &p.Title, &p.Price, &p.Size,
		&p.Address, &p.YearBuilt, &p.PropertyType, &p.Bedrooms, &p.Bathrooms,
		&p.Amenities, &p.Features, &p.Proximity, &p.Status, &p.Images,
		&p.CreatedAt, &p.UpdatedAt,
	}
}

func propertyScanDest(p *model.Property) []interface{} {
	return []interface{}{
		&p.Bucket, &p.PropertyID, &p.AgentID, &p.Title, &p.Price, &p.Size,
		&p.Address, &p.YearBuilt, &p.PropertyType, &p.Bedrooms, &p.Bathrooms,
		&p.Amenities, &p.Features, &p.Proximity, &p.Status, &p.Availability,
		&p.Images, &p.CreatedAt, &p.UpdatedAt,
	}
}
