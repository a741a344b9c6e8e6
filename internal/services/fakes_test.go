package services

import (
	"context"
	"sync"

	"visa-checker-backend/internal/models"
	apperrors "visa-checker-backend/pkg/errors"
)

type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]*models.ValidationSession
	createErr error
	statusErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*models.ValidationSession{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *models.ValidationSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := *s
	r.sessions[s.SessionID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetBySessionID(_ context.Context, id string) (*models.ValidationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("session")
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) UpdateFiles(_ context.Context, id string, files []models.UploadedFileDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return apperrors.NewNotFoundError("session")
	}
	s.UploadedFiles = files
	s.Status = models.SessionFilesUpdated
	return nil
}

func (r *fakeSessionRepo) UpdateStatus(_ context.Context, id string, status models.SessionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.statusErr != nil {
		return r.statusErr
	}
	s, ok := r.sessions[id]
	if !ok {
		return apperrors.NewNotFoundError("session")
	}
	s.Status = status
	return nil
}

type fakeReportRepo struct {
	mu        sync.Mutex
	reports   map[string]*models.ValidationReport
	upserts   int
	upsertErr error
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[string]*models.ValidationReport{}}
}

func (r *fakeReportRepo) Upsert(ctx context.Context, report *models.ValidationReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserts++
	r.reports[report.SessionID] = report
	return nil
}

func (r *fakeReportRepo) GetBySessionID(_ context.Context, id string) (*models.ValidationReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("validation report")
	}
	return report, nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[string]*models.Payment{}}
}

func (r *fakePaymentRepo) Upsert(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.SessionID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetBySessionID(_ context.Context, id string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("payment")
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) UpdateStatus(_ context.Context, id string, status models.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return apperrors.NewNotFoundError("payment")
	}
	p.Status = status
	return nil
}

type fakeProvider struct {
	calls int
	err   error
}

func (p *fakeProvider) CreateCheckout(_ context.Context, req *models.CheckoutRequest) (*models.CheckoutResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &models.CheckoutResult{CheckoutURL: "https://pay.example.com/c/" + req.Reference}, nil
}
