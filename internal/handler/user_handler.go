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

// UserHandler handles HTTP requests for user self-registration, OTP
// verification and profile operations.
type UserHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

func NewUserHandler(users *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Route("/users", func(r chi.Router) {
		r.Post("/registerTemporaryUser", h.Register)
		r.Post("/verifyOtp", h.VerifyOTP)
		r.Post("/loginUser", h.Login)
		r.Post("/logoutUser", h.Logout)
		r.Get("/getUserById/{id}", h.GetByID)
		r.Get("/getAllUsers", h.List)
		r.Put("/updateUser/{id}", h.Update)
		r.Delete("/deleteUser/{id}", h.Delete)
		r.Put("/changePassword/{id}", h.ChangePassword)
		r.Delete("/deleteProfilePicture/{id}", h.DeleteProfilePicture)
	})
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
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

	temp, err := h.users.RegisterTemporary(ctx, &service.UserRegistration{
		Username:        r.FormValue("username"),
		Fullname:        r.FormValue("fullname"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
		MobileNo:        r.FormValue("mobileNo"),
		Address:         r.FormValue("address"),
		Gender:          r.FormValue("gender"),
		ProfilePicture:  picture,
		ImageFilename:   filename,
	})
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to register user")
		return
	}

	// The OTP goes out by mail, never in the response.
	respondJSON(w, http.StatusCreated, successResponse(map[string]string{
		"tempUserId": temp.TempUserID,
		"email":      temp.Email,
	}, "Registration received; verify with the emailed OTP"))
	h.logger.Info("User registration submitted via HTTP",
		util.String("temp_user_id", temp.TempUserID),
		util.Duration("duration", time.Since(startTime)))
}

func (h *UserHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OTP string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	user, err := h.users.VerifyOTP(r.Context(), req.OTP)
	if err != nil {
		respondError(w, statusCode(err), err, "OTP verification failed")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(user, "User verified successfully"))
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	user, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, statusCode(err), err, "Login failed")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(user, "Login successful"))
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	h.users.Logout(r.Context(), req.UserID)
	respondJSON(w, http.StatusOK, successResponse(nil, "Logged out"))
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to get user")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(user, "User retrieved successfully"))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to list users")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(users, "Users retrieved successfully"))
}

// Update accepts multipart so the profile picture can be replaced along
// with the text fields.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid multipart form")
		return
	}

	picture, filename, err := readFormFile(r, "profilePicture")
	if err != nil {
		respondError(w, http.StatusBadRequest, err, "Failed to read profile picture")
		return
	}

	user, err := h.users.UpdateUser(r.Context(), chi.URLParam(r, "id"), &service.UserUpdate{
		Fullname:       r.FormValue("fullname"),
		MobileNo:       r.FormValue("mobileNo"),
		Address:        r.FormValue("address"),
		Gender:         r.FormValue("gender"),
		ProfilePicture: picture,
		ImageFilename:  filename,
	})
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to update user")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(user, "User updated successfully"))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, statusCode(err), err, "Failed to delete user")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(nil, "User deleted successfully"))
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.users.ChangePassword(r.Context(), chi.URLParam(r, "id"), req.OldPassword, req.NewPassword); err != nil {
		respondError(w, statusCode(err), err, "Failed to change password")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(nil, "Password changed successfully"))
}

func (h *UserHandler) DeleteProfilePicture(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteProfilePicture(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, statusCode(err), err, "Failed to delete profile picture")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(nil, "Profile picture deleted"))
}
