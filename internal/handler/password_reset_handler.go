package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"realty-service/internal/service"
	"realty-service/internal/util"
)

// PasswordResetHandler handles the forgot-password OTP flow. The {kind}
// path segment is kept for URL compatibility; the account is resolved by
// email regardless of the kind the caller claims.
type PasswordResetHandler struct {
	resets *service.PasswordResetService
	logger *zap.Logger
}

func NewPasswordResetHandler(resets *service.PasswordResetService, logger *zap.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{resets: resets, logger: logger}
}

func (h *PasswordResetHandler) RegisterRoutes(router chi.Router) {
	router.Route("/forgotPassword", func(r chi.Router) {
		r.Post("/{kind}/{email}", h.RequestReset)
		r.Post("/{kind}/resetPassword/{email}", h.ResetPassword)
	})
}

func (h *PasswordResetHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	if err := h.resets.RequestReset(r.Context(), email); err != nil {
		respondError(w, statusCode(err), err, "Failed to issue reset code")
		return
	}

	respondJSON(w, http.StatusOK, successResponse(nil, "Reset code sent"))
	h.logger.Info("Password reset requested via HTTP",
		util.String("kind", chi.URLParam(r, "kind")))
}

func (h *PasswordResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var req struct {
		OTP             string `json:"otp"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.resets.ResetPassword(r.Context(), email, req.OTP, req.Password, req.ConfirmPassword); err != nil {
		respondError(w, statusCode(err), err, "Failed to reset password")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(nil, "Password reset successfully"))
}
