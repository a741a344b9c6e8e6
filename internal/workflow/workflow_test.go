package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"visa-checker-backend/internal/models"
	apperrors "visa-checker-backend/pkg/errors"
)

type memoryStore struct {
	mu      sync.Mutex
	states  map[string]State
	saves   int
	failErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: map[string]State{}}
}

func (m *memoryStore) Load(_ context.Context, clientID string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[clientID]; ok {
		return s.Clone(), nil
	}
	return Initial(), nil
}

func (m *memoryStore) Save(_ context.Context, clientID string, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.saves++
	m.states[clientID] = s.Clone()
	return nil
}

func (m *memoryStore) Delete(_ context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	delete(m.states, clientID)
	return nil
}

type fakeRemote struct {
	sessionID   string
	createErr   error
	report      *models.ValidationReport
	validateErr error
	block       chan struct{}
	started     chan struct{}
	lastCreate  *models.CreateSessionRequest
}

func (f *fakeRemote) CreateValidationSession(_ context.Context, req *models.CreateSessionRequest) (string, error) {
	f.lastCreate = req
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.sessionID, nil
}

func (f *fakeRemote) ValidateDocuments(_ context.Context, sessionID string) (*models.ValidationReport, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	r := *f.report
	r.SessionID = sessionID
	return &r, nil
}

func openTest(t *testing.T, store Store, remote Remote) *Workflow {
	t.Helper()
	w, err := NewManager(store, zap.NewNop()).Open(context.Background(), "user@example.com", remote)
	require.NoError(t, err)
	return w
}

func sampleReport() *models.ValidationReport {
	return &models.ValidationReport{
		Verified: []models.VerifiedItem{{RequirementID: "passport", Message: "Valid Passport detected and validated"}},
		Issues:   []models.Issue{},
		Score:    100,
	}
}

func TestInitialState(t *testing.T) {
	s := openTest(t, newMemoryStore(), &fakeRemote{}).State()
	assert.Equal(t, StepDestination, s.CurrentStep)
	assert.Empty(t, s.SessionID)
	assert.Nil(t, s.Results)
	assert.Equal(t, models.PaymentPending, s.PaymentStatus)
	assert.NotNil(t, s.Data.UploadedFiles)
	assert.NotNil(t, s.Data.CheckedDocuments)
}

func TestStepClamp(t *testing.T) {
	ctx := context.Background()
	w := openTest(t, newMemoryStore(), &fakeRemote{})

	s, err := w.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepDestination, s.CurrentStep)

	for i := 0; i < 10; i++ {
		s, err = w.Next(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, StepResults, s.CurrentStep)

	s, err = w.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepResults, s.CurrentStep)

	s, _ = w.GoTo(ctx, 0)
	assert.Equal(t, StepDestination, s.CurrentStep)
	s, _ = w.GoTo(ctx, 99)
	assert.Equal(t, StepResults, s.CurrentStep)
	s, _ = w.GoTo(ctx, StepUpload)
	assert.Equal(t, StepUpload, s.CurrentStep)
	assert.Equal(t, "upload", s.CurrentStep.String())
}

func TestEveryMutationIsPersisted(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	w := openTest(t, store, &fakeRemote{})

	_, err := w.UpdateSelection(ctx, models.Selection{Country: "us", VisaCategory: "tourist", VisaType: "b2-tourist"})
	require.NoError(t, err)
	_, err = w.UpdateField(ctx, "firstName", "Ada")
	require.NoError(t, err)
	_, err = w.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, store.saves)

	reopened := openTest(t, store, &fakeRemote{})
	s := reopened.State()
	assert.Equal(t, StepRequirements, s.CurrentStep)
	assert.Equal(t, "us", s.Data.Selection.Country)
	assert.Equal(t, "Ada", s.Data.PersonalInfo.FirstName)
}

func TestUpdateUploadedFiles_Dedupes(t *testing.T) {
	w := openTest(t, newMemoryStore(), &fakeRemote{})

	s, err := w.UpdateUploadedFiles(context.Background(), []models.UploadedFileDescriptor{
		{OriginalName: "a.pdf", Size: 10, MimeType: "application/pdf"},
		{OriginalName: "b.png", Size: 20},
		{OriginalName: "a.pdf", Size: 10, MimeType: "application/x-dup"},
		{OriginalName: "a.pdf", Size: 11},
	})
	require.NoError(t, err)
	require.Len(t, s.Data.UploadedFiles, 3)
	assert.Equal(t, "application/pdf", s.Data.UploadedFiles[0].MimeType)
	assert.Equal(t, "b.png", s.Data.UploadedFiles[1].OriginalName)
	assert.Equal(t, int64(11), s.Data.UploadedFiles[2].Size)
}

func TestUpdateCheckedDocuments_Merges(t *testing.T) {
	ctx := context.Background()
	w := openTest(t, newMemoryStore(), &fakeRemote{})

	_, err := w.UpdateCheckedDocuments(ctx, map[string]bool{"passport": true, "photo": true})
	require.NoError(t, err)
	s, err := w.UpdateCheckedDocuments(ctx, map[string]bool{"photo": false, "ds160": true})
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"passport": true, "photo": false, "ds160": true}, s.Data.CheckedDocuments)
}

func TestApply_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	w := openTest(t, store, &fakeRemote{})

	_, err := w.Apply(ctx, Patch{
		Fields:           map[string]string{"country": "uk", "shoeSize": "42"},
		CheckedDocuments: map[string]bool{"passport": true},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrValidation))

	s := w.State()
	assert.Empty(t, s.Data.Selection.Country)
	assert.Empty(t, s.Data.CheckedDocuments)
	assert.Equal(t, 0, store.saves)

	s, err = w.Apply(ctx, Patch{
		Fields:        map[string]string{"country": "uk", "visaType": "standard-visitor"},
		UploadedFiles: []models.UploadedFileDescriptor{{OriginalName: "p.pdf"}, {OriginalName: "p.pdf"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "uk", s.Data.Selection.Country)
	assert.Len(t, s.Data.UploadedFiles, 1)
}

func TestSaveFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	w := openTest(t, store, &fakeRemote{})
	_, err := w.GoTo(ctx, StepUpload)
	require.NoError(t, err)

	store.failErr = errors.New("redis down")
	s, err := w.Next(ctx)
	require.Error(t, err)
	assert.Equal(t, StepUpload, s.CurrentStep)
	assert.Equal(t, StepUpload, w.State().CurrentStep)
}

func TestSetPaymentStatus(t *testing.T) {
	ctx := context.Background()
	w := openTest(t, newMemoryStore(), &fakeRemote{})

	s, err := w.SetPaymentStatus(ctx, models.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, s.PaymentStatus)

	_, err = w.SetPaymentStatus(ctx, "refunded")
	require.Error(t, err)
	assert.Equal(t, models.PaymentPaid, w.State().PaymentStatus)
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("success records session id", func(t *testing.T) {
		remote := &fakeRemote{sessionID: "sess-1"}
		w := openTest(t, newMemoryStore(), remote)
		_, err := w.UpdateSelection(ctx, models.Selection{Country: "us", VisaType: "b2-tourist"})
		require.NoError(t, err)
		_, err = w.GoTo(ctx, StepReview)
		require.NoError(t, err)

		s, err := w.CreateSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, "sess-1", s.SessionID)
		assert.Equal(t, StepReview, s.CurrentStep)
		assert.Equal(t, "us", remote.lastCreate.Country)
		assert.Equal(t, "b2-tourist", remote.lastCreate.VisaType)
	})

	t.Run("failure commits nothing", func(t *testing.T) {
		store := newMemoryStore()
		remote := &fakeRemote{createErr: errors.New("connection refused")}
		w := openTest(t, store, remote)
		_, err := w.GoTo(ctx, StepReview)
		require.NoError(t, err)
		saves := store.saves

		s, err := w.CreateSession(ctx)
		require.Error(t, err)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrSessionCreation))
		assert.Equal(t, StepReview, s.CurrentStep)
		assert.Empty(t, w.State().SessionID)
		assert.Equal(t, saves, store.saves)
	})

	t.Run("application errors pass through", func(t *testing.T) {
		remote := &fakeRemote{createErr: apperrors.NewValidationError("country is required")}
		w := openTest(t, newMemoryStore(), remote)

		_, err := w.CreateSession(ctx)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrValidation))
	})
}

func TestRunValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a session", func(t *testing.T) {
		w := openTest(t, newMemoryStore(), &fakeRemote{report: sampleReport()})
		_, err := w.RunValidation(ctx)
		require.Error(t, err)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrSessionCreation))
	})

	t.Run("stores report and moves to review", func(t *testing.T) {
		w := openTest(t, newMemoryStore(), &fakeRemote{sessionID: "sess-1", report: sampleReport()})
		_, err := w.CreateSession(ctx)
		require.NoError(t, err)

		s, err := w.RunValidation(ctx)
		require.NoError(t, err)
		require.NotNil(t, s.Results)
		assert.Equal(t, 100, s.Results.Score)
		assert.Equal(t, "sess-1", s.Results.SessionID)
		assert.Equal(t, StepReview, s.CurrentStep)
	})

	t.Run("does not move back from later steps", func(t *testing.T) {
		w := openTest(t, newMemoryStore(), &fakeRemote{sessionID: "sess-1", report: sampleReport()})
		_, _ = w.CreateSession(ctx)
		_, _ = w.GoTo(ctx, StepResults)

		s, err := w.RunValidation(ctx)
		require.NoError(t, err)
		assert.Equal(t, StepResults, s.CurrentStep)
	})

	t.Run("failure leaves state as before", func(t *testing.T) {
		store := newMemoryStore()
		remote := &fakeRemote{sessionID: "sess-1", validateErr: errors.New("timeout")}
		w := openTest(t, store, remote)
		_, err := w.CreateSession(ctx)
		require.NoError(t, err)
		before := w.State()

		_, err = w.RunValidation(ctx)
		require.Error(t, err)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrValidationRequest))
		assert.Equal(t, before, w.State())
	})

	t.Run("second concurrent run is rejected", func(t *testing.T) {
		store := newMemoryStore()
		remote := &fakeRemote{sessionID: "sess-1", report: sampleReport(), block: make(chan struct{}), started: make(chan struct{})}
		manager := NewManager(store, zap.NewNop())

		first, err := manager.Open(ctx, "user@example.com", remote)
		require.NoError(t, err)
		_, err = first.CreateSession(ctx)
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			_, err := first.RunValidation(ctx)
			done <- err
		}()
		<-remote.started

		second, err := manager.Open(ctx, "user@example.com", remote)
		require.NoError(t, err)
		_, err = second.RunValidation(ctx)
		require.Error(t, err)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrValidationInProgress))

		close(remote.block)
		require.NoError(t, <-done)

		// The flag is released once the first run finishes.
		remote.started = nil
		_, err = second.RunValidation(ctx)
		assert.NoError(t, err)
	})
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	w := openTest(t, store, &fakeRemote{sessionID: "sess-1"})
	_, _ = w.GoTo(ctx, StepPayment)
	_, _ = w.CreateSession(ctx)

	s, err := w.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, Initial(), s)
	assert.Empty(t, store.states)

	store.failErr = errors.New("redis down")
	_, _ = w.GoTo(ctx, StepUpload)
	_, err = w.Reset(ctx)
	assert.Error(t, err)
}

func TestClone_IsDeep(t *testing.T) {
	s := Initial()
	s.Data.UploadedFiles = append(s.Data.UploadedFiles, models.UploadedFileDescriptor{OriginalName: "a.pdf"})
	s.Data.CheckedDocuments["passport"] = true
	s.Results = sampleReport()

	c := s.Clone()
	c.Data.UploadedFiles[0].OriginalName = "changed"
	c.Data.CheckedDocuments["passport"] = false
	c.Results.Verified[0].Message = "changed"

	assert.Equal(t, "a.pdf", s.Data.UploadedFiles[0].OriginalName)
	assert.True(t, s.Data.CheckedDocuments["passport"])
	assert.NotEqual(t, "changed", s.Results.Verified[0].Message)
}
