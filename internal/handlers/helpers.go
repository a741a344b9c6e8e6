// internal/handlers/helpers.go
package handlers

import (
	"net/http"

	"visa-checker-backend/internal/middleware"
	apperrors "visa-checker-backend/pkg/errors"
	"visa-checker-backend/pkg/utils"
)

// requireEmail reads the caller set by the auth middleware, writing a 401 when
// it is missing.
func requireEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := middleware.GetEmailFromContext(r.Context())
	if !ok {
		utils.SendErrorResponse(w, apperrors.NewUnauthorizedError("email not found in context"))
		return "", false
	}
	return email, true
}
