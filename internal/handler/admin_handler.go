package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"realty-service/internal/service"
	"realty-service/internal/util"
)

// AdminHandler handles HTTP requests for administrator accounts and the
// admin side of the approval workflows.
type AdminHandler struct {
	admins     *service.AdminService
	agents     *service.AgentService
	properties *service.PropertyService
	logger     *zap.Logger
}

func NewAdminHandler(
	admins *service.AdminService,
	agents *service.AgentService,
	properties *service.PropertyService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		admins:     admins,
		agents:     agents,
		properties: properties,
		logger:     logger,
	}
}

func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Route("/admin", func(r chi.Router) {
		r.Post("/registerAdmin", h.Register)
		r.Post("/loginAdmin", h.Login)
		r.Post("/logoutAdmin", h.Logout)
		r.Get("/getAdminById/{id}", h.GetByID)
		r.Get("/getAdminByUsername/{username}", h.GetByUsername)
		r.Get("/getAllAdmins", h.List)
		r.Put("/updateAdmin/{id}", h.Update)
		r.Delete("/deleteAdmin/{id}", h.Delete)

		// Approval decisions.
		r.Post("/approveAgent/{tempAgentID}", h.ApproveAgent)
		r.Post("/rejectAgent/{tempAgentID}", h.RejectAgent)
		r.Post("/approveProperty/{propertyID}", h.ApproveProperty)
		r.Post("/rejectProperty/{propertyID}", h.RejectProperty)
		r.Get("/getAllPendingProperties", h.ListPendingProperties)
		r.Put("/updateAgentAndProperty/{propertyID}", h.UpdateAgentAndProperty)
	})
}

func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req struct {
		Username string `json:"username"`
		Fullname string `json:"fullname"`
		Email    string `json:"email"`
		Password string `json:"password"`
		MobileNo string `json:"mobileNo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	admin, err := h.admins.Register(ctx, &service.AdminRegistration{
		Username: req.Username,
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
		MobileNo: req.MobileNo,
	})
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to register admin")
		return
	}

	respondJSON(w, http.StatusCreated, successResponse(admin, "Admin registered successfully"))
	h.logger.Info("Admin registered via HTTP",
		util.String("admin_id", admin.AdminID),
		util.Duration("duration", time.Since(startTime)))
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	admin, err := h.admins.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, statusCode(err), err, "Login failed")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(admin, "Login successful"))
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminID string `json:"adminId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	h.admins.Logout(r.Context(), req.AdminID)
	respondJSON(w, http.StatusOK, successResponse(nil, "Logged out"))
}

func (h *AdminHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	admin, err := h.admins.GetAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to get admin")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(admin, "Admin retrieved successfully"))
}

func (h *AdminHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	admin, err := h.admins.GetAdminByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to get admin")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(admin, "Admin retrieved successfully"))
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.ListAdmins(r.Context())
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to list admins")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(admins, "Admins retrieved successfully"))
}

func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fullname string `json:"fullname"`
		MobileNo string `json:"mobileNo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	admin, err := h.admins.UpdateAdmin(r.Context(), chi.URLParam(r, "id"), &service.AdminUpdate{
		Fullname: req.Fullname,
		MobileNo: req.MobileNo,
	})
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to update admin")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(admin, "Admin updated successfully"))
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.admins.DeleteAdmin(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, statusCode(err), err, "Failed to delete admin")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(nil, "Admin deleted successfully"))
}

// actorID identifies the deciding admin on approval endpoints; it is
// optional and only feeds the audit trail.
func actorID(r *http.Request) string {
	return r.URL.Query().Get("adminId")
}

func (h *AdminHandler) ApproveAgent(w http.ResponseWriter, r *http.Request) {
	tempAgentID := chi.URLParam(r, "tempAgentID")

	result, err := h.agents.ApproveAgent(r.Context(), tempAgentID, actorID(r))
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to approve agent")
		return
	}

	respondJSON(w, approvalStatus(result), successResponse(result, "Agent approved"))
	h.logger.Info("Agent approved via HTTP",
		util.String("agent_id", result.ID),
		util.Bool("partial", result.Partial))
}

func (h *AdminHandler) RejectAgent(w http.ResponseWriter, r *http.Request) {
	tempAgentID := chi.URLParam(r, "tempAgentID")

	if err := h.agents.RejectAgent(r.Context(), tempAgentID, actorID(r)); err != nil {
		respondError(w, statusCode(err), err, "Failed to reject agent")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(nil, "Agent rejected"))
}

func (h *AdminHandler) ApproveProperty(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")

	result, err := h.properties.Approve(r.Context(), propertyID, actorID(r))
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to approve property")
		return
	}

	respondJSON(w, approvalStatus(result), successResponse(result, "Property approved"))
	h.logger.Info("Property approved via HTTP",
		util.String("property_id", result.ID),
		util.Bool("partial", result.Partial))
}

func (h *AdminHandler) RejectProperty(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")

	if err := h.properties.Reject(r.Context(), propertyID, actorID(r)); err != nil {
		respondError(w, statusCode(err), err, "Failed to reject property")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(nil, "Property rejected"))
}

func (h *AdminHandler) ListPendingProperties(w http.ResponseWriter, r *http.Request) {
	pending, err := h.properties.ListPending()
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to list pending properties")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(pending, "Pending properties retrieved successfully"))
}

func (h *AdminHandler) UpdateAgentAndProperty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID      string   `json:"agentId"`
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

	property, err := h.properties.UpdateProperty(r.Context(), chi.URLParam(r, "propertyID"), &service.PropertyUpdate{
		AgentID:      req.AgentID,
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
