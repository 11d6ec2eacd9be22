package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"realty-service/internal/service"
	"realty-service/internal/util"
	"realty-service/internal/validation"
)

// Response is the standard API envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func successResponse(data interface{}, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

func errorResponse(err error, message string) Response {
	return Response{Success: false, Error: err.Error(), Message: message}
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		util.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// respondError maps the error onto the envelope. Server-side errors keep
// their detail in the log only.
func respondError(w http.ResponseWriter, statusCode int, err error, message string) {
	util.Warn("HTTP error response",
		zap.Error(err),
		zap.Int("status_code", statusCode),
		zap.String("message", message))
	if statusCode >= http.StatusInternalServerError {
		err = errors.New("internal server error")
	}
	respondJSON(w, statusCode, errorResponse(err, message))
}

// statusCode translates service-layer errors into HTTP status codes.
func statusCode(err error) int {
	var fieldErr *validation.FieldError
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrOTPExpired):
		return http.StatusGone
	case errors.Is(err, service.ErrOTPInvalid),
		errors.Is(err, service.ErrPasswordMismatch):
		return http.StatusBadRequest
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// approvalStatus picks 202 for a partial two-phase approval, 200 otherwise.
func approvalStatus(result *service.ApprovalResult) int {
	if result.Partial {
		return http.StatusAccepted
	}
	return http.StatusOK
}

const maxUploadBytes = 32 << 20

// readFormFiles pulls every uploaded file under the named multipart field,
// returning contents and original filenames in upload order.
func readFormFiles(r *http.Request, field string) ([][]byte, []string, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil, nil
	}

	var (
		contents  [][]byte
		filenames []string
	)
	for _, header := range r.MultipartForm.File[field] {
		file, err := header.Open()
		if err != nil {
			return nil, nil, err
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, nil, err
		}
		contents = append(contents, data)
		filenames = append(filenames, header.Filename)
	}
	return contents, filenames, nil
}

// readFormFile reads a single-file field; absent is not an error.
func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	contents, filenames, err := readFormFiles(r, field)
	if err != nil || len(contents) == 0 {
		return nil, "", err
	}
	return contents[0], filenames[0], nil
}
