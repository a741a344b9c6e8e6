// internal/handlers/session.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"visa-checker-backend/internal/models"
	"visa-checker-backend/internal/services"
	"visa-checker-backend/pkg/utils"
)

type SessionHandler struct {
	validationService services.ValidationService
	paymentService    services.PaymentService
}

func NewSessionHandler(validationService services.ValidationService, paymentService services.PaymentService) *SessionHandler {
	return &SessionHandler{
		validationService: validationService,
		paymentService:    paymentService,
	}
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	// Get email from context (set by auth middleware)
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	var req models.CreateSessionRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendErrorResponse(w, err)
		return
	}
	// The owner always comes from the token, never from the body
	req.OwnerEmail = email

	sessionID, err := h.validationService.CreateValidationSession(r.Context(), &req)
	if err != nil {
		utils.SendErrorResponse(w, err)
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		Message:   "Validation session created",
		SessionID: sessionID,
	})
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	session, err := h.validationService.GetSession(r.Context(), chi.URLParam(r, "sessionId"), email)
	if err != nil {
		utils.SendErrorResponse(w, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, session)
}

func (h *SessionHandler) UpdateFiles(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	// Replaces the whole file list; the stored report stays until the next run
	var req models.UpdateFilesRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendErrorResponse(w, err)
		return
	}

	session, err := h.validationService.UpdateFiles(r.Context(), chi.URLParam(r, "sessionId"), email, req.UploadedFiles)
	if err != nil {
		utils.SendErrorResponse(w, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, session)
}

func (h *SessionHandler) ValidateDocuments(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	// Score the stored files and persist the report
	report, err := h.validationService.ValidateDocuments(r.Context(), chi.URLParam(r, "sessionId"), email)
	if err != nil {
		utils.SendErrorResponse(w, err)
		return
	}
	h.sendGated(w, r, report)
}

// GetResults returns the full report once the session is paid and a locked
// summary before that.
func (h *SessionHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	report, err := h.validationService.FetchResultsBySession(r.Context(), chi.URLParam(r, "sessionId"), email)
	if err != nil {
		utils.SendErrorResponse(w, err)
		return
	}
	h.sendGated(w, r, report)
}

func (h *SessionHandler) sendGated(w http.ResponseWriter, r *http.Request, report *models.ValidationReport) {
	// Check payment before exposing issues and recommendations
	paid, err := h.paymentService.IsPaid(r.Context(), report.SessionID)
	if err != nil {
		utils.SendErrorResponse(w, err)
		return
	}
	if !paid {
		utils.SendJSONResponse(w, http.StatusOK, report.Summary())
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, report)
}
