package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"realty-service/internal/search"
	"realty-service/internal/service"
	"realty-service/internal/util"
	"realty-service/internal/validation"
)

// PropertyHandler handles HTTP requests for property listings: agent
// submissions, the review queue, live reads, search and image galleries.
type PropertyHandler struct {
	properties *service.PropertyService
	logger     *zap.Logger
}

func NewPropertyHandler(properties *service.PropertyService, logger *zap.Logger) *PropertyHandler {
	return &PropertyHandler{properties: properties, logger: logger}
}

func (h *PropertyHandler) RegisterRoutes(router chi.Router) {
	router.Route("/properties", func(r chi.Router) {
		r.Post("/addProperty/{agentID}", h.Add)
		r.Post("/approveProperty", h.Approve)
		r.Post("/rejectProperty", h.Reject)
		r.Get("/getPropertyById/{id}", h.GetByID)
		r.Get("/getAllProperties", h.List)
		r.Get("/getAllPendingProperties", h.ListPending)
		r.Get("/getPendingPropertiesByAgent/{agentID}", h.ListPendingByAgent)
		r.Get("/getPropertiesByAgent/{agentID}", h.ListByAgent)
		r.Get("/searchProperties", h.SearchByKeyword)
		r.Get("/searchProperty", h.SearchByFilters)
		r.Put("/updateProperty/{id}", h.Update)
		r.Delete("/deleteProperty/{id}", h.Delete)
		r.Post("/addPropertyImages/{id}", h.AddImages)
		r.Put("/updatePropertyImages/{id}", h.UpdateImages)
		r.Get("/getPropertyImages/{id}", h.GetImages)
	})
}

func (h *PropertyHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	agentID := chi.URLParam(r, "agentID")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid multipart form")
		return
	}

	images, filenames, err := readFormFiles(r, "images")
	if err != nil {
		respondError(w, http.StatusBadRequest, err, "Failed to read property images")
		return
	}

	pending, err := h.properties.Submit(ctx, agentID, &service.PropertySubmission{
		Title:          r.FormValue("title"),
		Price:          r.FormValue("price"),
		Size:           r.FormValue("size"),
		Address:        r.FormValue("address"),
		YearBuilt:      r.FormValue("yearBuilt"),
		PropertyType:   r.FormValue("propertyType"),
		Bedrooms:       r.FormValue("bedrooms"),
		Bathrooms:      r.FormValue("bathrooms"),
		Amenities:      splitCSV(r.FormValue("amenities")),
		Features:       r.FormValue("features"),
		Proximity:      r.FormValue("proximity"),
		Images:         images,
		ImageFilenames: filenames,
	})
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to submit property")
		return
	}

	respondJSON(w, http.StatusCreated, successResponse(pending, "Property submitted for review"))
	h.logger.Info("Property submitted via HTTP",
		util.String("property_id", pending.PropertyID),
		util.String("agent_id", agentID),
		util.Duration("duration", time.Since(startTime)))
}

func (h *PropertyHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PropertyID string `json:"propertyId"`
		AdminID    string `json:"adminId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.properties.Approve(r.Context(), req.PropertyID, req.AdminID)
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to approve property")
		return
	}
	respondJSON(w, approvalStatus(result), successResponse(result, "Property approved"))
}

func (h *PropertyHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PropertyID string `json:"propertyId"`
		AdminID    string `json:"adminId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.properties.Reject(r.Context(), req.PropertyID, req.AdminID); err != nil {
		respondError(w, statusCode(err), err, "Failed to reject property")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(nil, "Property rejected"))
}

func (h *PropertyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	property, err := h.properties.GetProperty(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to get property")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(property, "Property retrieved successfully"))
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	properties, err := h.properties.ListProperties()
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to list properties")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(properties, "Properties retrieved successfully"))
}

func (h *PropertyHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.properties.ListPending()
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to list pending properties")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(pending, "Pending properties retrieved successfully"))
}

func (h *PropertyHandler) ListPendingByAgent(w http.ResponseWriter, r *http.Request) {
	pending, err := h.properties.ListPendingByAgent(chi.URLParam(r, "agentID"))
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to list pending properties")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(pending, "Pending properties retrieved successfully"))
}

func (h *PropertyHandler) ListByAgent(w http.ResponseWriter, r *http.Request) {
	properties, err := h.properties.ListByAgent(chi.URLParam(r, "agentID"))
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to list properties")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(properties, "Properties retrieved successfully"))
}

// SearchByKeyword matches the keyword against title and address.
func (h *PropertyHandler) SearchByKeyword(w http.ResponseWriter, r *http.Request) {
	criteria := &search.Criteria{Keyword: r.URL.Query().Get("keyword")}

	results, err := h.properties.Search(r.Context(), criteria)
	if err != nil {
		respondError(w, statusCode(err), err, "Search failed")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(results, "Search completed"))
}

// SearchByFilters composes every present query parameter into one
// criteria set; absent parameters impose no constraint.
func (h *PropertyHandler) SearchByFilters(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid search filters")
		return
	}

	results, err := h.properties.Search(r.Context(), criteria)
	if err != nil {
		respondError(w, statusCode(err), err, "Search failed")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(results, "Search completed"))
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title        string   `json:"title"`
		Price        string   `json:"price"`
		Size         string   `json:"size"`
		Address      string   `json:"address"`
		PropertyType string   `json:"propertyType"`
		Bedrooms     string   `json:"bedrooms"`
		Bathrooms    string   `json:"bathrooms"`
		Amenities    []string `json:"amenities"`
		Features     string   `json:"features"`
		Proximity    string   `json:"proximity"`
		Availability string   `json:"availability"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	property, err := h.properties.UpdateProperty(r.Context(), chi.URLParam(r, "id"), &service.PropertyUpdate{
		Title:        req.Title,
		Price:        req.Price,
		Size:         req.Size,
		Address:      req.Address,
		PropertyType: req.PropertyType,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Amenities:    req.Amenities,
		Features:     req.Features,
		Proximity:    req.Proximity,
		Availability: req.Availability,
	})
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to update property")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(property, "Property updated successfully"))
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.properties.DeleteProperty(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, statusCode(err), err, "Failed to delete property")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(nil, "Property deleted successfully"))
}

func (h *PropertyHandler) AddImages(w http.ResponseWriter, r *http.Request) {
	h.setImages(w, r, true)
}

func (h *PropertyHandler) UpdateImages(w http.ResponseWriter, r *http.Request) {
	h.setImages(w, r, false)
}

func (h *PropertyHandler) setImages(w http.ResponseWriter, r *http.Request, appendTo bool) {
	propertyID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid multipart form")
		return
	}

	images, filenames, err := readFormFiles(r, "images")
	if err != nil {
		respondError(w, http.StatusBadRequest, err, "Failed to read property images")
		return
	}
	if len(images) == 0 {
		respondError(w, http.StatusBadRequest,
			&validation.FieldError{Field: "images", Reason: "at least one file is required"},
			"No images provided")
		return
	}

	var property interface{}
	if appendTo {
		property, err = h.properties.AddImages(r.Context(), propertyID, images, filenames)
	} else {
		property, err = h.properties.UpdateImages(r.Context(), propertyID, images, filenames)
	}
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to store property images")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(property, "Property images stored"))
}

func (h *PropertyHandler) GetImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.properties.GetImages(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to get property images")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(images, "Property images retrieved successfully"))
}

func criteriaFromQuery(r *http.Request) (*search.Criteria, error) {
	q := r.URL.Query()
	criteria := &search.Criteria{
		Keyword:      q.Get("keyword"),
		Location:     q.Get("location"),
		PropertyType: q.Get("propertyType"),
		Availability: q.Get("availability"),
		Amenities:    splitCSV(q.Get("amenities")),
		Features:     q.Get("features"),
	}

	var err error
	if criteria.MinPrice, err = floatParam(q.Get("minPrice"), "minPrice"); err != nil {
		return nil, err
	}
	if criteria.MaxPrice, err = floatParam(q.Get("maxPrice"), "maxPrice"); err != nil {
		return nil, err
	}
	if criteria.MinSize, err = floatParam(q.Get("minSize"), "minSize"); err != nil {
		return nil, err
	}
	if criteria.MaxSize, err = floatParam(q.Get("maxSize"), "maxSize"); err != nil {
		return nil, err
	}
	if criteria.Bedrooms, err = intParam(q.Get("bedrooms"), "bedrooms"); err != nil {
		return nil, err
	}
	if criteria.MaxBedrooms, err = intParam(q.Get("maxBedrooms"), "maxBedrooms"); err != nil {
		return nil, err
	}
	if criteria.Bathrooms, err = intParam(q.Get("bathrooms"), "bathrooms"); err != nil {
		return nil, err
	}
	if criteria.MaxBathrooms, err = intParam(q.Get("maxBathrooms"), "maxBathrooms"); err != nil {
		return nil, err
	}
	if criteria.MinYearBuilt, err = intParam(q.Get("minYearBuilt"), "minYearBuilt"); err != nil {
		return nil, err
	}
	return criteria, nil
}

func floatParam(raw, field string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &validation.FieldError{Field: field, Reason: "must be a number"}
	}
	return &v, nil
}

func intParam(raw, field string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &validation.FieldError{Field: field, Reason: "must be an integer"}
	}
	return &v, nil
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
