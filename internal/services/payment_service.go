// internal/services/payment_service.go
package services

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"visa-checker-backend/internal/config"
	"visa-checker-backend/internal/metrics"
	"visa-checker-backend/internal/models"
	"visa-checker-backend/internal/repository"
	apperrors "visa-checker-backend/pkg/errors"
)

type PaymentService interface {
	StartCheckout(ctx context.Context, sessionID, email string) (*models.PaymentStatusResponse, error)
	HandleWebhook(ctx context.Context, secret string, event *models.WebhookEvent) error
	GetStatus(ctx context.Context, sessionID, email string) (*models.PaymentStatusResponse, error)
	IsPaid(ctx context.Context, sessionID string) (bool, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	reportRepo  repository.ReportRepository
	validations ValidationService
	provider    PaymentProviderService
	cfg         config.PaymentConfig
	logger      *zap.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	reportRepo repository.ReportRepository,
	validations ValidationService,
	provider PaymentProviderService,
	cfg config.PaymentConfig,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		reportRepo:  reportRepo,
		validations: validations,
		provider:    provider,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *paymentService) StartCheckout(ctx context.Context, sessionID, email string) (*models.PaymentStatusResponse, error) {
	if _, err := s.validations.GetSession(ctx, sessionID, email); err != nil {
		return nil, err
	}

	if _, err := s.reportRepo.GetBySessionID(ctx, sessionID); err != nil {
		if apperrors.IsErrorType(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewAppError(apperrors.ErrConflict, http.StatusConflict, "documents must be validated before checkout")
		}
		return nil, err
	}

	existing, err := s.paymentRepo.GetBySessionID(ctx, sessionID)
	switch {
	case err == nil && existing.Status == models.PaymentPaid:
		return &models.PaymentStatusResponse{SessionID: sessionID, Status: existing.Status}, nil
	case err != nil && !apperrors.IsErrorType(err, apperrors.ErrNotFound):
		return nil, err
	}

	checkout := &models.CheckoutRequest{
		SessionID:   sessionID,
		Reference:   uuid.NewString(),
		Email:       email,
		AmountCents: s.cfg.PriceCents,
		Currency:    s.cfg.Currency,
	}

	result, err := s.provider.CreateCheckout(ctx, checkout)
	if err != nil {
		s.logger.Error("checkout creation failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.NewPaymentProviderError(err)
	}

	payment := &models.Payment{
		SessionID:   sessionID,
		Email:       email,
		Reference:   checkout.Reference,
		Status:      models.PaymentProcessing,
		AmountCents: checkout.AmountCents,
		Currency:    checkout.Currency,
		CheckoutURL: result.CheckoutURL,
	}
	if err := s.paymentRepo.Upsert(ctx, payment); err != nil {
		return nil, err
	}

	metrics.PaymentEvents.WithLabelValues(string(models.PaymentProcessing)).Inc()
	s.logger.Info("checkout started",
		zap.String("session_id", sessionID),
		zap.String("reference", payment.Reference),
	)

	return &models.PaymentStatusResponse{
		SessionID:   sessionID,
		Status:      payment.Status,
		CheckoutURL: payment.CheckoutURL,
	}, nil
}

// HandleWebhook applies a provider callback. Without a configured secret every
// callback is rejected.
func (s *paymentService) HandleWebhook(ctx context.Context, secret string, event *models.WebhookEvent) error {
	if s.cfg.WebhookSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.WebhookSecret)) != 1 {
		return apperrors.NewUnauthorizedError("invalid webhook secret")
	}
	if err := event.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	payment, err := s.paymentRepo.GetBySessionID(ctx, event.SessionID)
	if err != nil {
		return err
	}
	if payment.Reference != event.Reference {
		s.logger.Warn("webhook reference mismatch",
			zap.String("session_id", event.SessionID),
			zap.String("reference", event.Reference),
		)
		return apperrors.NewAppError(apperrors.ErrConflict, http.StatusConflict, "payment reference mismatch")
	}

	// A paid session stays paid; late or replayed callbacks cannot re-lock it.
	if payment.Status == models.PaymentPaid {
		if event.Status == models.PaymentPaid {
			return nil
		}
		s.logger.Warn("ignoring status change for paid session",
			zap.String("session_id", event.SessionID),
			zap.String("status", string(event.Status)),
		)
		return apperrors.NewAppError(apperrors.ErrConflict, http.StatusConflict, "payment already completed")
	}

	if err := s.paymentRepo.UpdateStatus(ctx, event.SessionID, event.Status); err != nil {
		return err
	}

	metrics.PaymentEvents.WithLabelValues(string(event.Status)).Inc()
	s.logger.Info("payment status updated",
		zap.String("session_id", event.SessionID),
		zap.String("status", string(event.Status)),
	)
	return nil
}

func (s *paymentService) GetStatus(ctx context.Context, sessionID, email string) (*models.PaymentStatusResponse, error) {
	if _, err := s.validations.GetSession(ctx, sessionID, email); err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if apperrors.IsErrorType(err, apperrors.ErrNotFound) {
			return &models.PaymentStatusResponse{SessionID: sessionID, Status: models.PaymentPending}, nil
		}
		return nil, err
	}

	return &models.PaymentStatusResponse{
		SessionID:   sessionID,
		Status:      payment.Status,
		CheckoutURL: payment.CheckoutURL,
	}, nil
}

func (s *paymentService) IsPaid(ctx context.Context, sessionID string) (bool, error) {
	payment, err := s.paymentRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if apperrors.IsErrorType(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return payment.Status == models.PaymentPaid, nil
}
