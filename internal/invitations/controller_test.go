package invitations

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porteria/visitas-app/internal/api"
	"github.com/porteria/visitas-app/internal/models"
	"github.com/porteria/visitas-app/internal/notify"
)

// fakeService records calls and answers from pluggable functions.
type fakeService struct {
	mu          sync.Mutex
	listCalls   []string
	getCalls    []models.ID
	cancelCalls []models.ID
	deleteCalls []models.ID

	listFn   func(userID string) ([]models.Invitation, error)
	getFn    func(id models.ID) (*models.Invitation, error)
	cancelFn func(id models.ID, cancelledBy string) error
	deleteFn func(id models.ID) error
}

func (f *fakeService) ListInvitations(_ context.Context, userID string) ([]models.Invitation, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, userID)
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(userID)
}

func (f *fakeService) GetInvitation(_ context.Context, id models.ID) (*models.Invitation, error) {
	f.mu.Lock()
	f.getCalls = append(f.getCalls, id)
	fn := f.getFn
	f.mu.Unlock()
	if fn == nil {
		return nil, errors.New("not found")
	}
	return fn(id)
}

func (f *fakeService) CancelInvitation(_ context.Context, id models.ID, cancelledBy string) error {
	f.mu.Lock()
	f.cancelCalls = append(f.cancelCalls, id)
	fn := f.cancelFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(id, cancelledBy)
}

func (f *fakeService) DeleteInvitation(_ context.Context, id models.ID) error {
	f.mu.Lock()
	f.deleteCalls = append(f.deleteCalls, id)
	fn := f.deleteFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(id)
}

func (f *fakeService) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

// recorder captures notifications in order.
type recorder struct {
	mu     sync.Mutex
	msgs   []string
	levels []notify.Severity
}

func (r *recorder) Notify(message string, severity notify.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, message)
	r.levels = append(r.levels, severity)
}

func (r *recorder) last() (string, notify.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return "", ""
	}
	return r.msgs[len(r.msgs)-1], r.levels[len(r.msgs)-1]
}

func inv(id string, status models.Status) models.Invitation {
	return models.Invitation{ID: models.ID(id), GuestName: "Guest " + id, Status: status}
}

func TestLoadReplacesListWholesale(t *testing.T) {
	svc := &fakeService{}
	svc.listFn = func(string) ([]models.Invitation, error) {
		return []models.Invitation{inv("1", models.StatusActive), inv("2", models.StatusUsed)}, nil
	}
	c := NewController(svc, nil, nil)

	require.NoError(t, c.Load(context.Background(), "12345678"))
	require.Len(t, c.Invitations(), 2)

	svc.listFn = func(string) ([]models.Invitation, error) {
		return []models.Invitation{inv("3", models.StatusPending)}, nil
	}
	require.NoError(t, c.Load(context.Background(), "12345678"))

	got := c.Invitations()
	require.Len(t, got, 1)
	assert.Equal(t, models.ID("3"), got[0].ID)
}

func TestLoadNormalizesUserIdentifier(t *testing.T) {
	svc := &fakeService{}
	c := NewController(svc, nil, nil)

	require.NoError(t, c.Load(context.Background(), "12.345.678"))
	require.NoError(t, c.Load(context.Background(), "12345678"))

	require.Len(t, svc.listCalls, 2)
	assert.Equal(t, "12345678", svc.listCalls[0])
	assert.Equal(t, svc.listCalls[0], svc.listCalls[1])
}

func TestLoadFailureKeepsListAndNotifies(t *testing.T) {
	svc := &fakeService{}
	svc.listFn = func(string) ([]models.Invitation, error) {
		return []models.Invitation{inv("1", models.StatusActive)}, nil
	}
	rec := &recorder{}
	c := NewController(svc, rec, nil)
	require.NoError(t, c.Load(context.Background(), "u"))

	svc.listFn = func(string) ([]models.Invitation, error) {
		return nil, errors.New("connection refused")
	}
	require.Error(t, c.Load(context.Background(), "u"))

	got := c.Invitations()
	require.Len(t, got, 1)
	assert.Equal(t, models.ID("1"), got[0].ID)

	msg, sev := rec.last()
	assert.Equal(t, "Error loading invitations", msg)
	assert.Equal(t, notify.SeverityDanger, sev)
	assert.False(t, c.Loading())
}

func TestOverlappingLoadsLastResolvedWins(t *testing.T) {
	type call struct {
		release chan []models.Invitation
	}
	calls := make(chan call, 2)
	svc := &fakeService{}
	svc.listFn = func(string) ([]models.Invitation, error) {
		c := call{release: make(chan []models.Invitation)}
		calls <- c
		return <-c.release, nil
	}
	c := NewController(svc, nil, nil)

	firstDone := make(chan struct{})
	go func() { defer close(firstDone); _ = c.Load(context.Background(), "u") }()
	first := <-calls

	secondDone := make(chan struct{})
	go func() { defer close(secondDone); _ = c.Load(context.Background(), "u") }()
	second := <-calls

	// The second request resolves first; the first resolves last and wins.
	second.release <- []models.Invitation{inv("2", models.StatusActive)}
	<-secondDone
	first.release <- []models.Invitation{inv("1", models.StatusActive)}
	<-firstDone

	got := c.Invitations()
	require.Len(t, got, 1)
	assert.Equal(t, models.ID("1"), got[0].ID)
}

func TestCancelSuccessNotifiesThenRefreshes(t *testing.T) {
	svc := &fakeService{}
	rec := &recorder{}
	c := NewController(svc, rec, nil)

	require.NoError(t, c.Cancel(context.Background(), inv("7", models.StatusActive), "12.345.678"))

	require.Len(t, svc.cancelCalls, 1)
	assert.Equal(t, models.ID("7"), svc.cancelCalls[0])
	assert.Equal(t, 1, svc.listCallCount(), "success must trigger a full re-fetch")
	msg, sev := rec.last()
	assert.Equal(t, "Invitation cancelled", msg)
	assert.Equal(t, notify.SeveritySuccess, sev)
}

func TestCancelFailurePrefersServerMessage(t *testing.T) {
	svc := &fakeService{}
	svc.listFn = func(string) ([]models.Invitation, error) {
		return []models.Invitation{inv("1", models.StatusActive)}, nil
	}
	rec := &recorder{}
	c := NewController(svc, rec, nil)
	require.NoError(t, c.Load(context.Background(), "u"))

	svc.cancelFn = func(models.ID, string) error {
		return &api.RemoteError{Message: "already used"}
	}
	require.Error(t, c.Cancel(context.Background(), inv("1", models.StatusActive), "u"))

	msg, sev := rec.last()
	assert.Equal(t, "already used", msg)
	assert.Equal(t, notify.SeverityDanger, sev)

	// No re-fetch after failure; list unchanged.
	assert.Equal(t, 1, svc.listCallCount())
	got := c.Invitations()
	require.Len(t, got, 1)
	assert.Equal(t, models.StatusActive, got[0].Status)
}

func TestCancelTransportFailureUsesGenericMessage(t *testing.T) {
	svc := &fakeService{}
	svc.cancelFn = func(models.ID, string) error { return errors.New("timeout") }
	rec := &recorder{}
	c := NewController(svc, rec, nil)

	require.Error(t, c.Cancel(context.Background(), inv("1", models.StatusActive), "u"))
	msg, _ := rec.last()
	assert.Equal(t, "Error cancelling invitation", msg)
}

func TestRemovalRequiresConfirmation(t *testing.T) {
	svc := &fakeService{}
	rec := &recorder{}
	c := NewController(svc, rec, nil)

	target := inv("9", models.StatusCancelled)
	c.RequestRemoval(target)
	require.Empty(t, svc.deleteCalls, "staging must not call the service")
	staged := c.PendingRemoval()
	require.NotNil(t, staged)
	assert.Equal(t, target.ID, staged.ID)

	require.NoError(t, c.ConfirmRemoval(context.Background(), "u"))
	require.Len(t, svc.deleteCalls, 1)
	assert.Equal(t, models.ID("9"), svc.deleteCalls[0])
	assert.Equal(t, 1, svc.listCallCount(), "success must trigger a full re-fetch")
	msg, sev := rec.last()
	assert.Equal(t, "Invitation removed", msg)
	assert.Equal(t, notify.SeveritySuccess, sev)
	assert.Nil(t, c.PendingRemoval())
}

func TestConfirmRemovalIsIdempotent(t *testing.T) {
	svc := &fakeService{}
	c := NewController(svc, nil, nil)

	c.RequestRemoval(inv("9", models.StatusUsed))
	require.NoError(t, c.ConfirmRemoval(context.Background(), "u"))
	require.NoError(t, c.ConfirmRemoval(context.Background(), "u"))

	assert.Len(t, svc.deleteCalls, 1, "duplicate confirmation must not delete twice")
}

func TestCancelConfirmationIsSideEffectFree(t *testing.T) {
	svc := &fakeService{}
	rec := &recorder{}
	c := NewController(svc, rec, nil)

	c.RequestRemoval(inv("4", models.StatusExpired))
	c.CancelConfirmation()
	assert.Nil(t, c.PendingRemoval())

	require.NoError(t, c.ConfirmRemoval(context.Background(), "u"))
	assert.Empty(t, svc.deleteCalls)
	assert.Empty(t, rec.msgs)
}

func TestRemovalFailurePrefersServerMessage(t *testing.T) {
	svc := &fakeService{}
	svc.deleteFn = func(models.ID) error { return &api.RemoteError{Message: "not yours"} }
	rec := &recorder{}
	c := NewController(svc, rec, nil)

	c.RequestRemoval(inv("5", models.StatusActive))
	require.Error(t, c.ConfirmRemoval(context.Background(), "u"))

	msg, sev := rec.last()
	assert.Equal(t, "not yours", msg)
	assert.Equal(t, notify.SeverityDanger, sev)
	assert.Zero(t, svc.listCallCount(), "failure must not trigger a re-fetch")
}
