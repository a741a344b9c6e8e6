// internal/handlers/workflow.go
package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"visa-checker-backend/internal/models"
	"visa-checker-backend/internal/services"
	"visa-checker-backend/internal/workflow"
	"visa-checker-backend/pkg/utils"
)

type WorkflowHandler struct {
	manager           *workflow.Manager
	validationService services.ValidationService
	paymentService    services.PaymentService
	logger            *zap.Logger
}

func NewWorkflowHandler(manager *workflow.Manager, validationService services.ValidationService, paymentService services.PaymentService, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		manager:           manager,
		validationService: validationService,
		paymentService:    paymentService,
		logger:            logger,
	}
}

// workflowResponse hides the detailed results until the session is paid.
type workflowResponse struct {
	workflow.State
	Step    string      `json:"step"`
	Results interface{} `json:"validationResults"`
}

type goToRequest struct {
	Step workflow.Step `json:"step"`
}

func (h *WorkflowHandler) open(w http.ResponseWriter, r *http.Request) (*workflow.Workflow, string, bool) {
	email, ok := requireEmail(w, r)
	if !ok {
		return nil, "", false
	}

	// Load the caller's saved workflow, keyed by email
	wf, err := h.manager.Open(r.Context(), email, services.NewWorkflowRemote(h.validationService, email))
	if err != nil {
		h.logger.Error("failed to open workflow", zap.Error(err))
		utils.SendErrorResponse(w, err)
		return nil, "", false
	}
	return wf, email, true
}

// respond writes the state after syncing payment status changes made by the
// provider since the state was saved. Results stay summarized until paid.
func (h *WorkflowHandler) respond(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow, email string, state workflow.State, err error) {
	if err != nil {
		utils.SendErrorResponse(w, err)
		return
	}

	// Pick up payment confirmations that arrived through the webhook
	state, err = h.syncPayment(r, wf, email, state)
	if err != nil {
		utils.SendErrorResponse(w, err)
		return
	}

	resp := workflowResponse{State: state, Step: state.CurrentStep.String()}
	if state.Results != nil {
		if state.PaymentStatus == models.PaymentPaid {
			resp.Results = state.Results
		} else {
			resp.Results = state.Results.Summary()
		}
	}
	utils.SendJSONResponse(w, http.StatusOK, resp)
}

func (h *WorkflowHandler) syncPayment(r *http.Request, wf *workflow.Workflow, email string, state workflow.State) (workflow.State, error) {
	if state.SessionID == "" {
		return state, nil
	}

	status, err := h.paymentService.GetStatus(r.Context(), state.SessionID, email)
	if err != nil {
		// Serve the saved status rather than failing the step
		h.logger.Warn("payment status unavailable", zap.String("session_id", state.SessionID), zap.Error(err))
		return state, nil
	}
	if status.Status == state.PaymentStatus {
		return state, nil
	}
	return wf.SetPaymentStatus(r.Context(), status.Status)
}

func (h *WorkflowHandler) Get(w http.ResponseWriter, r *http.Request) {
	wf, email, ok := h.open(w, r)
	if !ok {
		return
	}
	h.respond(w, r, wf, email, wf.State(), nil)
}

func (h *WorkflowHandler) Patch(w http.ResponseWriter, r *http.Request) {
	wf, email, ok := h.open(w, r)
	if !ok {
		return
	}

	var patch workflow.Patch
	if err := utils.DecodeJSONBody(r, &patch); err != nil {
		utils.SendErrorResponse(w, err)
		return
	}
	state, err := wf.Apply(r.Context(), patch)
	h.respond(w, r, wf, email, state, err)
}

func (h *WorkflowHandler) Next(w http.ResponseWriter, r *http.Request) {
	wf, email, ok := h.open(w, r)
	if !ok {
		return
	}
	state, err := wf.Next(r.Context())
	h.respond(w, r, wf, email, state, err)
}

func (h *WorkflowHandler) Previous(w http.ResponseWriter, r *http.Request) {
	wf, email, ok := h.open(w, r)
	if !ok {
		return
	}
	state, err := wf.Previous(r.Context())
	h.respond(w, r, wf, email, state, err)
}

func (h *WorkflowHandler) GoTo(w http.ResponseWriter, r *http.Request) {
	wf, email, ok := h.open(w, r)
	if !ok {
		return
	}

	var req goToRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendErrorResponse(w, err)
		return
	}
	state, err := wf.GoTo(r.Context(), req.Step)
	h.respond(w, r, wf, email, state, err)
}

func (h *WorkflowHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	wf, email, ok := h.open(w, r)
	if !ok {
		return
	}
	state, err := wf.CreateSession(r.Context())
	h.respond(w, r, wf, email, state, err)
}

func (h *WorkflowHandler) Validate(w http.ResponseWriter, r *http.Request) {
	wf, email, ok := h.open(w, r)
	if !ok {
		return
	}
	// Rejected with 409 while another validation of this session is running
	state, err := wf.RunValidation(r.Context())
	h.respond(w, r, wf, email, state, err)
}

func (h *WorkflowHandler) Reset(w http.ResponseWriter, r *http.Request) {
	wf, email, ok := h.open(w, r)
	if !ok {
		return
	}
	// Deletes the saved state and payment key
	state, err := wf.Reset(r.Context())
	h.respond(w, r, wf, email, state, err)
}
