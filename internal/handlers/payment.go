// internal/handlers/payment.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"visa-checker-backend/internal/models"
	"visa-checker-backend/internal/services"
	"visa-checker-backend/pkg/utils"
)

const webhookSecretHeader = "X-Webhook-Secret"

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	// A paid session returns its status without opening a new checkout
	resp, err := h.paymentService.StartCheckout(r.Context(), chi.URLParam(r, "sessionId"), email)
	if err != nil {
		utils.SendErrorResponse(w, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, resp)
}

func (h *PaymentHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	resp, err := h.paymentService.GetStatus(r.Context(), chi.URLParam(r, "sessionId"), email)
	if err != nil {
		utils.SendErrorResponse(w, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, resp)
}

func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	// Provider callbacks are not bearer-authenticated; the shared secret is checked by the service
	var event models.WebhookEvent
	if err := utils.DecodeJSONBody(r, &event); err != nil {
		utils.SendErrorResponse(w, err)
		return
	}

	if err := h.paymentService.HandleWebhook(r.Context(), r.Header.Get(webhookSecretHeader), &event); err != nil {
		utils.SendErrorResponse(w, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Payment status updated"})
}
