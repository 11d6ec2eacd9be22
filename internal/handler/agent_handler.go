package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"realty-service/internal/service"
	"realty-service/internal/util"
)

// AgentHandler handles HTTP requests for agent accounts. Registration is
// multipart so applicants can attach a profile picture.
type AgentHandler struct {
	agents *service.AgentService
	logger *zap.Logger
}

func NewAgentHandler(agents *service.AgentService, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{agents: agents, logger: logger}
}

func (h *AgentHandler) RegisterRoutes(router chi.Router) {
	router.Route("/agents", func(r chi.Router) {
		r.Post("/registerTemporaryAgent", h.Register)
		r.Post("/approveAgent", h.Approve)
		r.Post("/rejectAgent", h.Reject)
		r.Get("/getAllPendingAgents", h.ListPending)
		r.Post("/loginAgent", h.Login)
		r.Get("/getAgentById/{id}", h.GetByID)
		r.Get("/getAllAgents", h.List)
		r.Put("/updateAgent/{id}", h.Update)
		r.Delete("/deleteAgent/{id}", h.Delete)
		r.Put("/changeAgentPassword/{id}", h.ChangePassword)
	})
}

func (h *AgentHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid multipart form")
		return
	}

	picture, filename, err := readFormFile(r, "profilePicture")
	if err != nil {
		respondError(w, http.StatusBadRequest, err, "Failed to read profile picture")
		return
	}

	agent, err := h.agents.RegisterTemporary(ctx, &service.AgentRegistration{
		UserName:       r.FormValue("userName"),
		FullName:       r.FormValue("fullName"),
		Email:          r.FormValue("email"),
		Password:       r.FormValue("password"),
		MobileNo:       r.FormValue("mobileNo"),
		Experience:     r.FormValue("experience"),
		Rating:         r.FormValue("rating"),
		Bio:            r.FormValue("bio"),
		ProfilePicture: picture,
		ImageFilename:  filename,
	})
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to register agent")
		return
	}

	respondJSON(w, http.StatusCreated, successResponse(agent, "Agent registration submitted for review"))
	h.logger.Info("Agent registration submitted via HTTP",
		util.String("temp_agent_id", agent.TempAgentID),
		util.Duration("duration", time.Since(startTime)))
}

// Approve and Reject also live under /agents for callers that post the id
// in the body instead of the admin path form.
func (h *AgentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TempAgentID string `json:"tempAgentId"`
		AdminID     string `json:"adminId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.agents.ApproveAgent(r.Context(), req.TempAgentID, req.AdminID)
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to approve agent")
		return
	}
	respondJSON(w, approvalStatus(result), successResponse(result, "Agent approved"))
}

func (h *AgentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TempAgentID string `json:"tempAgentId"`
		AdminID     string `json:"adminId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.agents.RejectAgent(r.Context(), req.TempAgentID, req.AdminID); err != nil {
		respondError(w, statusCode(err), err, "Failed to reject agent")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(nil, "Agent rejected"))
}

func (h *AgentHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.agents.ListPending()
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to list pending agents")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(pending, "Pending agents retrieved successfully"))
}

func (h *AgentHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	agent, err := h.agents.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, statusCode(err), err, "Login failed")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(agent, "Login successful"))
}

func (h *AgentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	agent, err := h.agents.GetAgent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to get agent")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(agent, "Agent retrieved successfully"))
}

func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	agents, err := h.agents.ListAgents(r.Context())
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to list agents")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(agents, "Agents retrieved successfully"))
}

func (h *AgentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName   string `json:"fullName"`
		MobileNo   string `json:"mobileNo"`
		Experience string `json:"experience"`
		Rating     string `json:"rating"`
		Bio        string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	agent, err := h.agents.UpdateAgent(r.Context(), chi.URLParam(r, "id"), &service.AgentUpdate{
		FullName:   req.FullName,
		MobileNo:   req.MobileNo,
		Experience: req.Experience,
		Rating:     req.Rating,
		Bio:        req.Bio,
	})
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to update agent")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(agent, "Agent updated successfully"))
}

func (h *AgentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.agents.DeleteAgent(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, statusCode(err), err, "Failed to delete agent")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(nil, "Agent deleted successfully"))
}

func (h *AgentHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	agentID := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := h.agents.ChangePassword(r.Context(), agentID, req.OldPassword, req.NewPassword); err != nil {
		respondError(w, statusCode(err), err, "Failed to change password")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(nil, "Password changed successfully"))
}
