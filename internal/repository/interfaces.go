// internal/repository/interfaces.go
package repository

import (
	"context"

	"visa-checker-backend/internal/models"
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.ValidationSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.ValidationSession, error)
	UpdateFiles(ctx context.Context, sessionID string, files []models.UploadedFileDescriptor) error
	UpdateStatus(ctx context.Context, sessionID string, status models.SessionStatus) error
}

type ReportRepository interface {
	// Upsert replaces any previous report for the same session.
	Upsert(ctx context.Context, report *models.ValidationReport) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.ValidationReport, error)
}

type PaymentRepository interface {
	Upsert(ctx context.Context, payment *models.Payment) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Payment, error)
	UpdateStatus(ctx context.Context, sessionID string, status models.PaymentStatus) error
}
