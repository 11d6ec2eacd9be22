package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"realty-service/internal/audit"
	"realty-service/internal/events"
	"realty-service/internal/model"
	"realty-service/internal/notify"
	"realty-service/internal/repository"
	"realty-service/internal/search"
	"realty-service/internal/util"
	"realty-service/internal/validation"
)

// PropertyIndexer is the slice of the search index the service needs.
// nil disables indexing; searches then scan the store directly.
type PropertyIndexer interface {
	IndexProperty(ctx context.Context, property *model.Property) error
	RemoveProperty(ctx context.Context, propertyID string) error
	SearchIDs(ctx context.Context, criteria *search.Criteria) ([]string, error)
}

// PropertySubmission is the write payload for a new listing. Numeric
// fields arrive as form strings and are validated before parsing.
type PropertySubmission struct {
	Title          string
	Price          string
	Size           string
	Address        string
	YearBuilt      string
	PropertyType   string
	Bedrooms       string
	Bathrooms      string
	Amenities      []string
	Features       string
	Proximity      string
	Images         [][]byte
	ImageFilenames []string
}

// PropertyService owns the listing side of the approval workflow plus
// live-property reads, search, updates and image galleries.
type PropertyService struct {
	properties repository.PropertyRepository
	agents     repository.AgentRepository
	index      PropertyIndexer
	notifier   notify.Notifier
	audit      *audit.Recorder
	events     *events.Publisher
}

func NewPropertyService(
	properties repository.PropertyRepository,
	agents repository.AgentRepository,
	index PropertyIndexer,
	notifier notify.Notifier,
	auditor *audit.Recorder,
	publisher *events.Publisher,
) *PropertyService {
	return &PropertyService{
		properties: properties,
		agents:     agents,
		index:      index,
		notifier:   notifier,
		audit:      auditor,
		events:     publisher,
	}
}

// Submit validates the listing, parks it in the pending queue and
// notifies the reviewer. The notification is not transactional with the
// write.
func (s *PropertyService) Submit(ctx context.Context, agentID string, sub *PropertySubmission) (*model.PendingProperty, error) {
	if _, err := s.agents.GetByID(agentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("agent not found: %w", ErrNotFound)
		}
		return nil, err
	}

	if err := s.validateSubmission(sub); err != nil {
		return nil, err
	}

	price, _ := strconv.ParseFloat(sub.Price, 64)
	size, _ := strconv.ParseFloat(sub.Size, 64)
	yearBuilt, _ := strconv.Atoi(sub.YearBuilt)
	bedrooms, _ := strconv.Atoi(sub.Bedrooms)
	bathrooms, _ := strconv.Atoi(sub.Bathrooms)

	property := &model.PendingProperty{
		AgentID:      agentID,
		Title:        sub.Title,
		Price:        price,
		Size:         size,
		Address:      sub.Address,
		YearBuilt:    yearBuilt,
		PropertyType: sub.PropertyType,
		Bedrooms:     bedrooms,
		Bathrooms:    bathrooms,
		Amenities:    sub.Amenities,
		Features:     util.SanitizeInput(sub.Features),
		Proximity:    util.SanitizeInput(sub.Proximity),
		Status:       model.StatusPending,
		Images:       sub.Images,
	}

	if err := s.properties.CreatePending(property); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.SendPropertySubmitted("", property.Title, agentID); err != nil {
			util.Error("Failed to notify reviewer of new property",
				zap.String("property_id", property.PropertyID),
				zap.Error(err))
		}
	}

	s.audit.Record(ctx, "property.listed", "pending_property", property.PropertyID, agentID, "ok", "")
	s.events.Publish(ctx, events.EventPropertyListed, property.PropertyID, agentID)
	return property, nil
}

// Approve promotes a pending listing into the live table. The live row
// is durable first; indexing, notification and pending cleanup are best
// effort and degrade to a partial success.
func (s *PropertyService) Approve(ctx context.Context, propertyID, actorID string) (*ApprovalResult, error) {
	pending, err := s.properties.GetPendingByID(propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	property := &model.Property{
		PropertyID:   pending.PropertyID,
		AgentID:      pending.AgentID,
		Title:        pending.Title,
		Price:        pending.Price,
		Size:         pending.Size,
		Address:      pending.Address,
		YearBuilt:    pending.YearBuilt,
		PropertyType: pending.PropertyType,
		Bedrooms:     pending.Bedrooms,
		Bathrooms:    pending.Bathrooms,
		Amenities:    pending.Amenities,
		Features:     pending.Features,
		Proximity:    pending.Proximity,
		Status:       model.StatusApproved,
		Availability: model.AvailabilityAvailable,
		Images:       pending.Images,
		CreatedAt:    pending.CreatedAt,
	}

	if err := s.properties.Create(property); err != nil {
		return nil, err
	}

	result := &ApprovalResult{ID: property.PropertyID}

	if s.index != nil {
		if err := s.index.IndexProperty(ctx, property); err != nil {
			util.Error("Failed to index approved property",
				zap.String("property_id", property.PropertyID),
				zap.Error(err))
			result.Partial = true
			result.Warnings = append(result.Warnings, "search indexing failed")
		}
	}

	if s.notifier != nil {
		if agent, err := s.agents.GetByID(property.AgentID); err == nil {
			if err := s.notifier.SendPropertyApproved(agent.Email, property.Title); err != nil {
				util.Error("Failed to send property approval email",
					zap.String("property_id", property.PropertyID),
					zap.Error(err))
				result.Partial = true
				result.Warnings = append(result.Warnings, "approval notification failed")
			}
		}
	}

	if err := s.properties.DeletePending(propertyID); err != nil {
		util.Error("Failed to delete pending property after promotion",
			zap.String("property_id", propertyID),
			zap.Error(err))
		result.Partial = true
		result.Warnings = append(result.Warnings, "pending record cleanup failed")
	}

	outcome := "ok"
	if result.Partial {
		outcome = "partial"
	}
	s.audit.Record(ctx, "property.approved", "property", property.PropertyID, actorID, outcome, "")
	s.events.Publish(ctx, events.EventPropertyApproved, property.PropertyID, actorID)

	util.Info("Property approved",
		zap.String("property_id", property.PropertyID),
		zap.Bool("partial", result.Partial))
	return result, nil
}

func (s *PropertyService) Reject(ctx context.Context, propertyID, actorID string) error {
	pending, err := s.properties.GetPendingByID(propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.properties.DeletePending(propertyID); err != nil {
		return err
	}

	if s.notifier != nil {
		if agent, err := s.agents.GetByID(pending.AgentID); err == nil {
			if err := s.notifier.SendPropertyRejected(agent.Email, pending.Title); err != nil {
				util.Error("Failed to send property rejection email",
					zap.String("property_id", propertyID),
					zap.Error(err))
			}
		}
	}

	s.audit.Record(ctx, "property.rejected", "pending_property", propertyID, actorID, "ok", "")
	s.events.Publish(ctx, events.EventPropertyRejected, propertyID, actorID)
	return nil
}

func (s *PropertyService) GetProperty(propertyID string) (*model.Property, error) {
	property, err := s.properties.GetByID(propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return property, nil
}

func (s *PropertyService) ListProperties() ([]*model.Property, error) {
	return s.properties.List()
}

func (s *PropertyService) ListPending() ([]*model.PendingProperty, error) {
	return s.properties.ListPending()
}

func (s *PropertyService) ListPendingByAgent(agentID string) ([]*model.PendingProperty, error) {
	return s.properties.ListPendingByAgent(agentID)
}

func (s *PropertyService) ListByAgent(agentID string) ([]*model.Property, error) {
	return s.properties.ListByAgent(agentID)
}

// Search answers a criteria query from the index, hydrating hits from
// the store concurrently and re-checking each row against the criteria.
// With no index, or an index failure, it degenerates to a store scan.
// An empty result is not an error.
func (s *PropertyService) Search(ctx context.Context, criteria *search.Criteria) ([]*model.Property, error) {
	if s.index == nil {
		return s.scanSearch(criteria)
	}

	ids, err := s.index.SearchIDs(ctx, criteria)
	if err != nil {
		util.Warn("Search index unavailable, falling back to store scan", zap.Error(err))
		return s.scanSearch(criteria)
	}

	results := make([]*model.Property, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			property, err := s.properties.GetByID(id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					// Index lag: row deleted after indexing.
					return nil
				}
				return err
			}
			if criteria.Matches(property) {
				results[i] = property
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	matched := make([]*model.Property, 0, len(results))
	for _, property := range results {
		if property != nil {
			matched = append(matched, property)
		}
	}
	return matched, nil
}

func (s *PropertyService) scanSearch(criteria *search.Criteria) ([]*model.Property, error) {
	properties, err := s.properties.List()
	if err != nil {
		return nil, err
	}

	matched := make([]*model.Property, 0, len(properties))
	for _, property := range properties {
		if criteria.Matches(property) {
			matched = append(matched, property)
		}
	}
	return matched, nil
}

// PropertyUpdate carries optional listing changes; empty fields keep
// the stored value. AgentID reassigns the listing to another agent.
type PropertyUpdate struct {
	AgentID      string
	Title        string
	Price        string
	Size         string
	Address      string
	PropertyType string
	Bedrooms     string
	Bathrooms    string
	Amenities    []string
	Features     string
	Proximity    string
	Availability string
}

func (s *PropertyService) UpdateProperty(ctx context.Context, propertyID string, update *PropertyUpdate) (*model.Property, error) {
	property, err := s.properties.GetByID(propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if update.AgentID != "" && update.AgentID != property.AgentID {
		if _, err := s.agents.GetByID(update.AgentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("target agent not found: %w", ErrNotFound)
			}
			return nil, err
		}
		property.AgentID = update.AgentID
	}
	if update.Title != "" {
		property.Title = update.Title
	}
	if update.Price != "" {
		if err := validation.Price(update.Price); err != nil {
			return nil, err
		}
		property.Price, _ = strconv.ParseFloat(update.Price, 64)
	}
	if update.Size != "" {
		size, err := strconv.ParseFloat(update.Size, 64)
		if err != nil {
			return nil, &validation.FieldError{Field: "size", Reason: "must be a number"}
		}
		property.Size = size
	}
	if update.Address != "" {
		if err := validation.Address(update.Address); err != nil {
			return nil, err
		}
		property.Address = update.Address
	}
	if update.PropertyType != "" {
		property.PropertyType = update.PropertyType
	}
	if update.Bedrooms != "" {
		bedrooms, err := strconv.Atoi(update.Bedrooms)
		if err != nil {
			return nil, &validation.FieldError{Field: "bedrooms", Reason: "must be an integer"}
		}
		property.Bedrooms = bedrooms
	}
	if update.Bathrooms != "" {
		bathrooms, err := strconv.Atoi(update.Bathrooms)
		if err != nil {
			return nil, &validation.FieldError{Field: "bathrooms", Reason: "must be an integer"}
		}
		property.Bathrooms = bathrooms
	}
	if len(update.Amenities) > 0 {
		property.Amenities = update.Amenities
	}
	if update.Features != "" {
		property.Features = util.SanitizeInput(update.Features)
	}
	if update.Proximity != "" {
		property.Proximity = util.SanitizeInput(update.Proximity)
	}
	if update.Availability != "" {
		switch model.Availability(update.Availability) {
		case model.AvailabilityAvailable, model.AvailabilityRented, model.AvailabilitySold:
			property.Availability = model.Availability(update.Availability)
		default:
			return nil, &validation.FieldError{Field: "availability", Reason: "must be AVAILABLE, RENTED or SOLD"}
		}
	}

	if err := s.properties.Update(property); err != nil {
		return nil, err
	}

	s.reindex(ctx, property)
	s.audit.Record(ctx, "property.updated", "property", property.PropertyID, "", "ok", "")
	s.events.Publish(ctx, events.EventPropertyUpdated, property.PropertyID, "")
	return property, nil
}

func (s *PropertyService) DeleteProperty(ctx context.Context, propertyID string) error {
	if _, err := s.properties.GetByID(propertyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.properties.Delete(propertyID); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.RemoveProperty(ctx, propertyID); err != nil {
			util.Error("Failed to remove deleted property from index",
				zap.String("property_id", propertyID),
				zap.Error(err))
		}
	}
	return nil
}

func (s *PropertyService) GetImages(propertyID string) ([][]byte, error) {
	property, err := s.GetProperty(propertyID)
	if err != nil {
		return nil, err
	}
	return property.Images, nil
}

// AddImages appends to the gallery; UpdateImages replaces it.
func (s *PropertyService) AddImages(ctx context.Context, propertyID string, images [][]byte, filenames []string) (*model.Property, error) {
	return s.setImages(ctx, propertyID, images, filenames, true)
}

func (s *PropertyService) UpdateImages(ctx context.Context, propertyID string, images [][]byte, filenames []string) (*model.Property, error) {
	return s.setImages(ctx, propertyID, images, filenames, false)
}

func (s *PropertyService) setImages(ctx context.Context, propertyID string, images [][]byte, filenames []string, appendTo bool) (*model.Property, error) {
	for _, name := range filenames {
		if err := validation.ImageFilename(name); err != nil {
			return nil, err
		}
	}

	property, err := s.properties.GetByID(propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if appendTo {
		property.Images = append(property.Images, images...)
	} else {
		property.Images = images
	}

	if err := s.properties.Update(property); err != nil {
		return nil, err
	}
	return property, nil
}

func (s *PropertyService) reindex(ctx context.Context, property *model.Property) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexProperty(ctx, property); err != nil {
		util.Error("Failed to reindex property",
			zap.String("property_id", property.PropertyID),
			zap.Error(err))
	}
}

func (s *PropertyService) validateSubmission(sub *PropertySubmission) error {
	if sub.Title == "" {
		return &validation.FieldError{Field: "title", Reason: "must not be empty"}
	}
	if err := validation.Price(sub.Price); err != nil {
		return err
	}
	if err := validation.Address(sub.Address); err != nil {
		return err
	}
	if sub.Size != "" {
		if _, err := strconv.ParseFloat(sub.Size, 64); err != nil {
			return &validation.FieldError{Field: "size", Reason: "must be a number"}
		}
	}
	if sub.YearBuilt != "" {
		if _, err := strconv.Atoi(sub.YearBuilt); err != nil {
			return &validation.FieldError{Field: "yearBuilt", Reason: "must be an integer"}
		}
	}
	if sub.Bedrooms != "" {
		if _, err := strconv.Atoi(sub.Bedrooms); err != nil {
			return &validation.FieldError{Field: "bedrooms", Reason: "must be an integer"}
		}
	}
	if sub.Bathrooms != "" {
		if _, err := strconv.Atoi(sub.Bathrooms); err != nil {
			return &validation.FieldError{Field: "bathrooms", Reason: "must be an integer"}
		}
	}
	for _, name := range sub.ImageFilenames {
		if err := validation.ImageFilename(name); err != nil {
			return err
		}
	}
	return nil
}
