// pkg/utils/response.go
package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"visa-checker-backend/internal/models"
	apperrors "visa-checker-backend/pkg/errors"
)

// SendJSONResponse sends a JSON response with proper error handling
func SendJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	// Marshal first so an encoding failure can still produce a 500
	jsonData, err := json.Marshal(data)
	if err != nil {
		zap.L().Error("Error marshaling JSON response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "Internal server error: failed to encode response",
		})
		return
	}

	w.WriteHeader(statusCode)

	if _, writeErr := w.Write(jsonData); writeErr != nil {
		zap.L().Warn("Error writing response", zap.Error(writeErr))
	}
}

// SendErrorResponse maps an error to its status code and JSON body
func SendErrorResponse(w http.ResponseWriter, err error) {
	statusCode := apperrors.GetStatusCode(err)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if statusCode >= http.StatusInternalServerError {
			zap.L().Error("Request failed", zap.String("type", appErr.Type), zap.Error(err))
		}
		SendJSONResponse(w, statusCode, models.ErrorResponse{
			Error:     appErr.Message,
			ErrorCode: appErr.Type,
			Details:   appErr.Details,
		})
		return
	}

	zap.L().Error("Unhandled error", zap.Error(err))
	SendJSONResponse(w, statusCode, models.ErrorResponse{
		Error:     "internal server error",
		ErrorCode: apperrors.ErrInternalServer,
	})
}

func DecodeJSONBody(r *http.Request, dst interface{}) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		return apperrors.NewAppError(apperrors.ErrBadRequest, http.StatusBadRequest, "invalid JSON format")
	}
	return nil
}
