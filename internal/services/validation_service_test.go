package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"visa-checker-backend/internal/catalog"
	"visa-checker-backend/internal/models"
	"visa-checker-backend/internal/validation"
	apperrors "visa-checker-backend/pkg/errors"
)

const owner = "ada@example.com"

type validationFixture struct {
	svc      ValidationService
	sessions *fakeSessionRepo
	reports  *fakeReportRepo
}

func newValidationFixture(t *testing.T) *validationFixture {
	t.Helper()
	cat, err := catalog.LoadDefault()
	require.NoError(t, err)

	sessions := newFakeSessionRepo()
	reports := newFakeReportRepo()
	engine := &validation.Engine{Now: func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }}

	svc := NewValidationService(sessions, reports, cat, engine, zap.NewNop())
	ids := 0
	svc.(*validationService).newID = func() string {
		ids++
		return fmt.Sprintf("sess-%d", ids)
	}
	return &validationFixture{svc: svc, sessions: sessions, reports: reports}
}

func touristRequest(files ...models.UploadedFileDescriptor) *models.CreateSessionRequest {
	return &models.CreateSessionRequest{
		OwnerEmail:    owner,
		Country:       "US",
		VisaCategory:  "tourist",
		VisaType:      "B2-Tourist",
		UploadedFiles: files,
	}
}

func TestCreateValidationSession(t *testing.T) {
	ctx := context.Background()

	t.Run("stores deduplicated files", func(t *testing.T) {
		f := newValidationFixture(t)
		id, err := f.svc.CreateValidationSession(ctx, touristRequest(
			models.UploadedFileDescriptor{OriginalName: "passport.pdf", Size: 10},
			models.UploadedFileDescriptor{OriginalName: "passport.pdf", Size: 10},
		))
		require.NoError(t, err)
		assert.Equal(t, "sess-1", id)

		stored := f.sessions.sessions[id]
		require.NotNil(t, stored)
		assert.Equal(t, owner, stored.OwnerEmail)
		assert.Equal(t, models.SessionCreated, stored.Status)
		require.Len(t, stored.UploadedFiles, 1)
		assert.False(t, stored.UploadedFiles[0].UploadedAt.IsZero())
		assert.NotNil(t, stored.CheckedDocuments)
	})

	t.Run("rejects missing destination", func(t *testing.T) {
		f := newValidationFixture(t)
		_, err := f.svc.CreateValidationSession(ctx, &models.CreateSessionRequest{VisaType: "b2-tourist"})
		require.Error(t, err)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrValidation))
		assert.Empty(t, f.sessions.sessions)
	})

	t.Run("accepts destinations missing from the catalog", func(t *testing.T) {
		f := newValidationFixture(t)
		_, err := f.svc.CreateValidationSession(ctx, &models.CreateSessionRequest{Country: "atlantis", VisaType: "tourist"})
		assert.NoError(t, err)
	})

	t.Run("repository failure is a session creation error", func(t *testing.T) {
		f := newValidationFixture(t)
		f.sessions.createErr = errors.New("connection reset")
		_, err := f.svc.CreateValidationSession(ctx, touristRequest())
		require.Error(t, err)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrSessionCreation))
	})
}

func TestValidateDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("scores and stores the report", func(t *testing.T) {
		f := newValidationFixture(t)
		id, err := f.svc.CreateValidationSession(ctx, touristRequest(
			models.UploadedFileDescriptor{OriginalName: "passport.pdf", MimeType: "application/pdf"},
		))
		require.NoError(t, err)

		report, err := f.svc.ValidateDocuments(ctx, id, owner)
		require.NoError(t, err)
		assert.Equal(t, id, report.SessionID)
		assert.True(t, report.RequirementsKnown)
		// One PDF satisfies passport, ds160 and fee-receipt but not the photo.
		assert.Equal(t, 75, report.Score)
		require.Len(t, report.Issues, 1)
		assert.Equal(t, "photo", report.Issues[0].RequirementID)

		assert.Same(t, report, f.reports.reports[id])
		assert.Equal(t, models.SessionValidated, f.sessions.sessions[id].Status)
	})

	t.Run("unknown destination scores full but is flagged", func(t *testing.T) {
		f := newValidationFixture(t)
		id, err := f.svc.CreateValidationSession(ctx, &models.CreateSessionRequest{OwnerEmail: owner, Country: "atlantis", VisaType: "tourist"})
		require.NoError(t, err)

		report, err := f.svc.ValidateDocuments(ctx, id, owner)
		require.NoError(t, err)
		assert.Equal(t, 100, report.Score)
		assert.False(t, report.RequirementsKnown)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newValidationFixture(t)
		_, err := f.svc.ValidateDocuments(ctx, "missing", owner)
		require.Error(t, err)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrValidationRequest))
		assert.Equal(t, 404, apperrors.GetStatusCode(err))
	})

	t.Run("someone else's session looks unknown", func(t *testing.T) {
		f := newValidationFixture(t)
		id, _ := f.svc.CreateValidationSession(ctx, touristRequest())

		_, err := f.svc.ValidateDocuments(ctx, id, "mallory@example.com")
		assert.Equal(t, 404, apperrors.GetStatusCode(err))
		assert.Empty(t, f.reports.reports)
	})

	t.Run("storage failure is a validation request error", func(t *testing.T) {
		f := newValidationFixture(t)
		id, _ := f.svc.CreateValidationSession(ctx, touristRequest())
		f.reports.upsertErr = errors.New("write concern")

		_, err := f.svc.ValidateDocuments(ctx, id, owner)
		require.Error(t, err)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrValidationRequest))
		assert.Equal(t, models.SessionCreated, f.sessions.sessions[id].Status)
	})

	t.Run("concurrent calls succeed with the same result", func(t *testing.T) {
		f := newValidationFixture(t)
		id, _ := f.svc.CreateValidationSession(ctx, touristRequest(
			models.UploadedFileDescriptor{OriginalName: "ds160.pdf"},
		))

		const callers = 8
		var wg sync.WaitGroup
		scores := make([]int, callers)
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				report, err := f.svc.ValidateDocuments(ctx, id, owner)
				errs[i] = err
				if err == nil {
					scores[i] = report.Score
				}
			}(i)
		}
		wg.Wait()

		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			assert.Equal(t, scores[0], scores[i])
		}
		assert.LessOrEqual(t, f.reports.upserts, callers)
		assert.GreaterOrEqual(t, f.reports.upserts, 1)
	})
}

func TestValidateDocuments_CallerCancellationDoesNotAbortSharedRun(t *testing.T) {
	f := newValidationFixture(t)
	id, err := f.svc.CreateValidationSession(context.Background(), touristRequest(models.UploadedFileDescriptor{OriginalName: "passport.pdf", MimeType: "application/pdf", Size: 10}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.svc.ValidateDocuments(ctx, id, owner)
	require.NoError(t, err)
	assert.Equal(t, id, report.SessionID)

	stored, err := f.svc.FetchResultsBySession(context.Background(), id, owner)
	require.NoError(t, err)
	assert.Equal(t, report.Score, stored.Score)
}

func TestFetchResultsBySession(t *testing.T) {
	ctx := context.Background()
	f := newValidationFixture(t)
	id, _ := f.svc.CreateValidationSession(ctx, touristRequest())

	_, err := f.svc.FetchResultsBySession(ctx, id, owner)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrNotFound))

	_, err = f.svc.ValidateDocuments(ctx, id, owner)
	require.NoError(t, err)

	report, err := f.svc.FetchResultsBySession(ctx, id, owner)
	require.NoError(t, err)
	assert.Equal(t, id, report.SessionID)

	_, err = f.svc.FetchResultsBySession(ctx, id, "mallory@example.com")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrNotFound))
}

func TestUpdateFiles(t *testing.T) {
	ctx := context.Background()
	f := newValidationFixture(t)
	id, _ := f.svc.CreateValidationSession(ctx, touristRequest())

	session, err := f.svc.UpdateFiles(ctx, id, owner, []models.UploadedFileDescriptor{
		{OriginalName: "a.pdf", Size: 1},
		{OriginalName: "a.pdf", Size: 1},
		{OriginalName: "b.pdf", Size: 1},
	})
	require.NoError(t, err)
	assert.Len(t, session.UploadedFiles, 2)
	assert.Equal(t, models.SessionFilesUpdated, session.Status)
	assert.Len(t, f.sessions.sessions[id].UploadedFiles, 2)

	_, err = f.svc.UpdateFiles(ctx, id, owner, []models.UploadedFileDescriptor{{OriginalName: " "}})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrValidation))
}

func TestWorkflowRemote_BindsOwner(t *testing.T) {
	ctx := context.Background()
	f := newValidationFixture(t)
	remote := NewWorkflowRemote(f.svc, owner)

	id, err := remote.CreateValidationSession(ctx, &models.CreateSessionRequest{Country: "uk", VisaType: "standard-visitor"})
	require.NoError(t, err)
	assert.Equal(t, owner, f.sessions.sessions[id].OwnerEmail)

	report, err := remote.ValidateDocuments(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, report.SessionID)

	_, err = NewWorkflowRemote(f.svc, "mallory@example.com").ValidateDocuments(ctx, id)
	assert.Error(t, err)
}
