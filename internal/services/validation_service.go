// internal/services/validation_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"visa-checker-backend/internal/catalog"
	"visa-checker-backend/internal/metrics"
	"visa-checker-backend/internal/models"
	"visa-checker-backend/internal/repository"
	"visa-checker-backend/internal/validation"
	apperrors "visa-checker-backend/pkg/errors"
)

type ValidationService interface {
	CreateValidationSession(ctx context.Context, req *models.CreateSessionRequest) (string, error)
	ValidateDocuments(ctx context.Context, sessionID, ownerEmail string) (*models.ValidationReport, error)
	FetchResultsBySession(ctx context.Context, sessionID, ownerEmail string) (*models.ValidationReport, error)
	GetSession(ctx context.Context, sessionID, ownerEmail string) (*models.ValidationSession, error)
	UpdateFiles(ctx context.Context, sessionID, ownerEmail string, files []models.UploadedFileDescriptor) (*models.ValidationSession, error)
}

// validationTimeout bounds a shared validation run once it is detached from
// the request that started it.
const validationTimeout = 30 * time.Second

type validationService struct {
	sessionRepo repository.SessionRepository
	reportRepo  repository.ReportRepository
	catalog     *catalog.Catalog
	engine      *validation.Engine
	logger      *zap.Logger

	inflight singleflight.Group
	newID    func() string
}

func NewValidationService(
	sessionRepo repository.SessionRepository,
	reportRepo repository.ReportRepository,
	cat *catalog.Catalog,
	engine *validation.Engine,
	logger *zap.Logger,
) ValidationService {
	return &validationService{
		sessionRepo: sessionRepo,
		reportRepo:  reportRepo,
		catalog:     cat,
		engine:      engine,
		logger:      logger,
		newID:       uuid.NewString,
	}
}

func (s *validationService) CreateValidationSession(ctx context.Context, req *models.CreateSessionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", apperrors.NewValidationError(err.Error())
	}

	now := time.Now().UTC()
	files := models.DedupeFiles(req.UploadedFiles)
	for i := range files {
		if files[i].UploadedAt.IsZero() {
			files[i].UploadedAt = now
		}
	}

	checked := req.CheckedDocuments
	if checked == nil {
		checked = map[string]bool{}
	}

	session := &models.ValidationSession{
		SessionID:  s.newID(),
		OwnerEmail: req.OwnerEmail,
		Selection: models.Selection{
			Country:      strings.TrimSpace(req.Country),
			VisaCategory: strings.TrimSpace(req.VisaCategory),
			VisaType:     strings.TrimSpace(req.VisaType),
		},
		PersonalInfo:     req.PersonalInfo,
		UploadedFiles:    files,
		CheckedDocuments: checked,
		Status:           models.SessionCreated,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.logger.Error("failed to store validation session", zap.Error(err))
		return "", apperrors.NewSessionCreationError(err)
	}

	if !s.catalog.Has(session.Selection.Country, session.Selection.VisaType) {
		s.logger.Info("session created for destination without catalog entry",
			zap.String("session_id", session.SessionID),
			zap.String("country", session.Selection.Country),
			zap.String("visa_type", session.Selection.VisaType),
		)
	}

	metrics.SessionsCreated.Inc()
	s.logger.Info("validation session created",
		zap.String("session_id", session.SessionID),
		zap.Int("files", len(files)),
	)
	return session.SessionID, nil
}

// ValidateDocuments scores the stored files of a session. Concurrent calls for
// the same session share one computation and one stored report.
func (s *validationService) ValidateDocuments(ctx context.Context, sessionID, ownerEmail string) (*models.ValidationReport, error) {
	session, err := s.ownedSession(ctx, sessionID, ownerEmail)
	if err != nil {
		if apperrors.IsErrorType(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewUnknownSessionError(sessionID)
		}
		return nil, apperrors.NewValidationRequestError(err)
	}

	v, err, shared := s.inflight.Do(sessionID, func() (interface{}, error) {
		// Detached from the first caller so its cancellation does not fail
		// everyone sharing the call.
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), validationTimeout)
		defer cancel()
		return s.validate(sharedCtx, session)
	})
	if err != nil {
		metrics.ValidationsCompleted.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, err
	}
	if shared {
		s.logger.Debug("validation result shared between concurrent callers", zap.String("session_id", sessionID))
	}
	return v.(*models.ValidationReport), nil
}

func (s *validationService) validate(ctx context.Context, session *models.ValidationSession) (*models.ValidationReport, error) {
	rules := s.catalog.Lookup(session.Selection.Country, session.Selection.VisaType)
	report := s.engine.Score(session.UploadedFiles, rules)
	report.SessionID = session.SessionID

	if !report.RequirementsKnown {
		s.logger.Warn("no requirements known for destination, reporting full score",
			zap.String("session_id", session.SessionID),
			zap.String("country", session.Selection.Country),
			zap.String("visa_type", session.Selection.VisaType),
		)
	}

	if err := s.reportRepo.Upsert(ctx, report); err != nil {
		s.logger.Error("failed to store validation report", zap.String("session_id", session.SessionID), zap.Error(err))
		return nil, apperrors.NewValidationRequestError(err)
	}
	if err := s.sessionRepo.UpdateStatus(ctx, session.SessionID, models.SessionValidated); err != nil {
		s.logger.Error("failed to mark session validated", zap.String("session_id", session.SessionID), zap.Error(err))
		return nil, apperrors.NewValidationRequestError(err)
	}

	metrics.ValidationsCompleted.WithLabelValues(outcome(report)).Inc()
	metrics.ValidationScore.Observe(float64(report.Score))
	s.logger.Info("documents validated",
		zap.String("session_id", session.SessionID),
		zap.Int("score", report.Score),
		zap.Int("verified", len(report.Verified)),
		zap.Int("issues", len(report.Issues)),
	)
	return report, nil
}

func (s *validationService) FetchResultsBySession(ctx context.Context, sessionID, ownerEmail string) (*models.ValidationReport, error) {
	if _, err := s.ownedSession(ctx, sessionID, ownerEmail); err != nil {
		return nil, err
	}
	return s.reportRepo.GetBySessionID(ctx, sessionID)
}

func (s *validationService) GetSession(ctx context.Context, sessionID, ownerEmail string) (*models.ValidationSession, error) {
	return s.ownedSession(ctx, sessionID, ownerEmail)
}

// UpdateFiles replaces the session's file list. A stored report stays in place
// until the next validation run overwrites it.
func (s *validationService) UpdateFiles(ctx context.Context, sessionID, ownerEmail string, files []models.UploadedFileDescriptor) (*models.ValidationSession, error) {
	session, err := s.ownedSession(ctx, sessionID, ownerEmail)
	if err != nil {
		return nil, err
	}

	for i, f := range files {
		if strings.TrimSpace(f.OriginalName) == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("uploadedFiles[%d].originalName is required", i))
		}
	}

	now := time.Now().UTC()
	deduped := models.DedupeFiles(files)
	for i := range deduped {
		if deduped[i].UploadedAt.IsZero() {
			deduped[i].UploadedAt = now
		}
	}

	if err := s.sessionRepo.UpdateFiles(ctx, sessionID, deduped); err != nil {
		return nil, err
	}

	session.UploadedFiles = deduped
	session.Status = models.SessionFilesUpdated
	session.UpdatedAt = now
	return session, nil
}

// ownedSession hides sessions owned by someone else behind a not-found error.
// An empty ownerEmail skips the check.
func (s *validationService) ownedSession(ctx context.Context, sessionID, ownerEmail string) (*models.ValidationSession, error) {
	session, err := s.sessionRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if ownerEmail != "" && !strings.EqualFold(session.OwnerEmail, ownerEmail) {
		s.logger.Warn("session accessed by non-owner", zap.String("session_id", sessionID))
		return nil, apperrors.NewNotFoundError("session")
	}
	return session, nil
}

func outcome(report *models.ValidationReport) string {
	switch {
	case !report.RequirementsKnown:
		return metrics.OutcomeUnknown
	case len(report.Issues) == 0:
		return metrics.OutcomeComplete
	default:
		return metrics.OutcomeIncomplete
	}
}
