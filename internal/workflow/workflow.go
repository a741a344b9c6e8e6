// internal/workflow/workflow.go
package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"visa-checker-backend/internal/models"
	apperrors "visa-checker-backend/pkg/errors"
)

// Remote is the server side of session creation and validation.
type Remote interface {
	CreateValidationSession(ctx context.Context, req *models.CreateSessionRequest) (string, error)
	ValidateDocuments(ctx context.Context, sessionID string) (*models.ValidationReport, error)
}

// Manager opens workflows against a store and tracks validations in flight
// across all open workflows.
type Manager struct {
	store  Store
	logger *zap.Logger

	mu      sync.Mutex
	running map[string]struct{}
}

func NewManager(store Store, logger *zap.Logger) *Manager {
	return &Manager{
		store:   store,
		logger:  logger,
		running: make(map[string]struct{}),
	}
}

func (m *Manager) Open(ctx context.Context, clientID string, remote Remote) (*Workflow, error) {
	state, err := m.store.Load(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow state: %w", err)
	}
	return &Workflow{
		manager:  m,
		clientID: clientID,
		remote:   remote,
		state:    state,
	}, nil
}

func (m *Manager) acquire(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.running[sessionID]; busy {
		return false
	}
	m.running[sessionID] = struct{}{}
	return true
}

func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	delete(m.running, sessionID)
	m.mu.Unlock()
}

// Workflow is one client's step-by-step validation flow. Every mutation is
// applied to a copy and swapped in only after the store accepted it.
type Workflow struct {
	manager  *Manager
	clientID string
	remote   Remote

	mu    sync.Mutex
	state State
}

// Patch carries the field edits of a single PATCH request. Nil members are
// left untouched.
type Patch struct {
	Fields           map[string]string               `json:"fields,omitempty"`
	UploadedFiles    []models.UploadedFileDescriptor `json:"uploadedFiles,omitempty"`
	CheckedDocuments map[string]bool                 `json:"checkedDocuments,omitempty"`
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Clone()
}

func (w *Workflow) Next(ctx context.Context) (State, error) {
	return w.commit(ctx, func(s *State) error {
		s.CurrentStep = Clamp(s.CurrentStep + 1)
		return nil
	})
}

func (w *Workflow) Previous(ctx context.Context) (State, error) {
	return w.commit(ctx, func(s *State) error {
		s.CurrentStep = Clamp(s.CurrentStep - 1)
		return nil
	})
}

func (w *Workflow) GoTo(ctx context.Context, step Step) (State, error) {
	return w.commit(ctx, func(s *State) error {
		s.CurrentStep = Clamp(step)
		return nil
	})
}

func (w *Workflow) UpdateSelection(ctx context.Context, sel models.Selection) (State, error) {
	return w.commit(ctx, func(s *State) error {
		s.Data.Selection = sel
		return nil
	})
}

func (w *Workflow) UpdatePersonalInfo(ctx context.Context, info models.PersonalInfo) (State, error) {
	return w.commit(ctx, func(s *State) error {
		s.Data.PersonalInfo = info
		return nil
	})
}

// UpdateField sets one named selection or personal-info field.
func (w *Workflow) UpdateField(ctx context.Context, field, value string) (State, error) {
	return w.commit(ctx, func(s *State) error {
		return setField(&s.Data, field, value)
	})
}

// UpdateUploadedFiles replaces the file list, keeping the first of any
// entries that share name and size.
func (w *Workflow) UpdateUploadedFiles(ctx context.Context, files []models.UploadedFileDescriptor) (State, error) {
	return w.commit(ctx, func(s *State) error {
		s.Data.UploadedFiles = models.DedupeFiles(files)
		return nil
	})
}

// UpdateCheckedDocuments merges the given checklist marks into the state.
func (w *Workflow) UpdateCheckedDocuments(ctx context.Context, checked map[string]bool) (State, error) {
	return w.commit(ctx, func(s *State) error {
		mergeChecked(&s.Data, checked)
		return nil
	})
}

// Apply commits all edits of p at once, or none of them.
func (w *Workflow) Apply(ctx context.Context, p Patch) (State, error) {
	return w.commit(ctx, func(s *State) error {
		for field, value := range p.Fields {
			if err := setField(&s.Data, field, value); err != nil {
				return err
			}
		}
		if p.UploadedFiles != nil {
			s.Data.UploadedFiles = models.DedupeFiles(p.UploadedFiles)
		}
		mergeChecked(&s.Data, p.CheckedDocuments)
		return nil
	})
}

func (w *Workflow) SetPaymentStatus(ctx context.Context, status models.PaymentStatus) (State, error) {
	return w.commit(ctx, func(s *State) error {
		if !status.Valid() {
			return apperrors.NewValidationError(fmt.Sprintf("unknown payment status %q", status))
		}
		s.PaymentStatus = status
		return nil
	})
}

// CreateSession registers the gathered input with the remote and records the
// new session id. A new session starts without results and unpaid.
func (w *Workflow) CreateSession(ctx context.Context) (State, error) {
	return w.commit(ctx, func(s *State) error {
		req := &models.CreateSessionRequest{
			Country:          s.Data.Selection.Country,
			VisaCategory:     s.Data.Selection.VisaCategory,
			VisaType:         s.Data.Selection.VisaType,
			PersonalInfo:     s.Data.PersonalInfo,
			UploadedFiles:    s.Data.UploadedFiles,
			CheckedDocuments: s.Data.CheckedDocuments,
		}

		sessionID, err := w.remote.CreateValidationSession(ctx, req)
		if err != nil {
			w.manager.logger.Warn("session creation failed", zap.String("client_id", w.clientID), zap.Error(err))
			return surface(err, apperrors.NewSessionCreationError)
		}

		s.SessionID = sessionID
		s.Results = nil
		s.PaymentStatus = models.PaymentPending
		return nil
	})
}

// RunValidation asks the remote to score the current session. A second call
// for the same session while one is running fails with a conflict.
func (w *Workflow) RunValidation(ctx context.Context) (State, error) {
	sessionID := w.State().SessionID
	if sessionID == "" {
		return w.State(), apperrors.NewAppError(apperrors.ErrSessionCreation, http.StatusConflict, "validation session not created")
	}

	if !w.manager.acquire(sessionID) {
		return w.State(), apperrors.NewValidationInProgressError(sessionID)
	}
	defer w.manager.release(sessionID)

	return w.commit(ctx, func(s *State) error {
		report, err := w.remote.ValidateDocuments(ctx, s.SessionID)
		if err != nil {
			w.manager.logger.Warn("validation request failed", zap.String("session_id", s.SessionID), zap.Error(err))
			return surface(err, apperrors.NewValidationRequestError)
		}

		s.Results = report
		if s.CurrentStep < StepReview {
			s.CurrentStep = StepReview
		}
		return nil
	})
}

// Reset removes everything persisted for the client and starts over.
func (w *Workflow) Reset(ctx context.Context) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.manager.store.Delete(ctx, w.clientID); err != nil {
		return w.state.Clone(), fmt.Errorf("failed to reset workflow state: %w", err)
	}
	w.state = Initial()
	return w.state.Clone(), nil
}

func (w *Workflow) commit(ctx context.Context, apply func(*State) error) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := w.state.Clone()
	if err := apply(&next); err != nil {
		return w.state.Clone(), err
	}
	if err := w.manager.store.Save(ctx, w.clientID, next); err != nil {
		return w.state.Clone(), fmt.Errorf("failed to save workflow state: %w", err)
	}

	w.state = next
	return next.Clone(), nil
}

func setField(d *Data, field, value string) error {
	switch field {
	case "country":
		d.Selection.Country = value
	case "visaCategory":
		d.Selection.VisaCategory = value
	case "visaType":
		d.Selection.VisaType = value
	case "firstName":
		d.PersonalInfo.FirstName = value
	case "lastName":
		d.PersonalInfo.LastName = value
	case "email":
		d.PersonalInfo.Email = value
	case "nationality":
		d.PersonalInfo.Nationality = value
	case "passportNumber":
		d.PersonalInfo.PassportNumber = value
	case "dateOfBirth":
		d.PersonalInfo.DateOfBirth = value
	case "travelDate":
		d.PersonalInfo.TravelDate = value
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unknown field %q", field))
	}
	return nil
}

func mergeChecked(d *Data, checked map[string]bool) {
	if len(checked) == 0 {
		return
	}
	if d.CheckedDocuments == nil {
		d.CheckedDocuments = make(map[string]bool, len(checked))
	}
	for id, v := range checked {
		d.CheckedDocuments[id] = v
	}
}

// surface passes application errors through and wraps anything else.
func surface(err error, wrap func(error) *apperrors.AppError) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return wrap(err)
}
