// Package invitations is the invitation lifecycle controller: it holds the
// fetched list, decides per-status affordances, orchestrates cancel and
// remove against the remote service, and resolves the scannable access code
// for display.
package invitations

import (
	"context"
	"log/slog"
	"sync"

	"github.com/porteria/visitas-app/internal/api"
	"github.com/porteria/visitas-app/internal/models"
	"github.com/porteria/visitas-app/internal/notify"
	"github.com/porteria/visitas-app/internal/session"
)

// User-facing outcome messages.
const (
	msgLoadFailed   = "Error loading invitations"
	msgCancelled    = "Invitation cancelled"
	msgCancelFailed = "Error cancelling invitation"
	msgRemoved      = "Invitation removed"
	msgRemoveFailed = "Error removing invitation"
)

// Service is the remote surface the controller drives. *api.Client
// implements it; tests substitute fakes.
type Service interface {
	ListInvitations(ctx context.Context, userID string) ([]models.Invitation, error)
	GetInvitation(ctx context.Context, id models.ID) (*models.Invitation, error)
	CancelInvitation(ctx context.Context, id models.ID, cancelledBy string) error
	DeleteInvitation(ctx context.Context, id models.ID) error
}

// Controller owns the screen-scoped invitation state. It never mutates the
// list optimistically: every change the user sees is the result of a fetch
// that wholesale-replaced the previous list, so a late response can always
// be applied safely (last write wins).
//
// The loading flag is a busy indicator for the view, not a lock; overlapping
// operations are permitted.
type Controller struct {
	svc      Service
	notifier notify.Notifier
	log      *slog.Logger

	mu             sync.Mutex
	list           []models.Invitation
	selected       *models.Invitation
	pendingRemoval *models.Invitation
	loading        bool
}

func NewController(svc Service, notifier notify.Notifier, log *slog.Logger) *Controller {
	if notifier == nil {
		notifier = notify.Discard
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		svc:      svc,
		notifier: notifier,
		log:      log,
	}
}

// Invitations returns a snapshot of the current list in server order.
func (c *Controller) Invitations() []models.Invitation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Invitation, len(c.list))
	copy(out, c.list)
	return out
}

// Loading reports whether any operation is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Selected returns the invitation currently chosen for code display, if any.
func (c *Controller) Selected() *models.Invitation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	inv := *c.selected
	return &inv
}

// ClearSelection drops the invitation chosen for code display.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

// Load fetches forUser's invitations and replaces the held list wholesale.
// On any failure the previous list stays visible and the user is notified.
// forUser is normalized before it reaches the wire.
func (c *Controller) Load(ctx context.Context, forUser string) error {
	userID := session.NormalizeUserID(forUser)
	c.setLoading(true)
	defer c.setLoading(false)

	list, err := c.svc.ListInvitations(ctx, userID)
	if err != nil {
		c.log.Error("loading invitations", "user", userID, "error", err)
		c.notifier.Notify(msgLoadFailed, notify.SeverityDanger)
		return err
	}

	c.mu.Lock()
	c.list = list
	c.mu.Unlock()
	c.log.Info("invitations loaded", "user", userID, "count", len(list))
	return nil
}

// Cancel asks the service to cancel inv, attributing the action to forUser,
// and re-fetches the list on confirmed success. The status shown afterwards
// is whatever the follow-up fetch returns; the command response alone never
// mutates local state. Preconditions (Policy(...).CanCancel) are the view's
// job; the service is the authority and may reject with its own message.
func (c *Controller) Cancel(ctx context.Context, inv models.Invitation, forUser string) error {
	userID := session.NormalizeUserID(forUser)
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.svc.CancelInvitation(ctx, inv.ID, userID); err != nil {
		c.log.Error("cancelling invitation", "id", inv.ID.String(), "error", err)
		c.notifier.Notify(failureMessage(err, msgCancelFailed), notify.SeverityDanger)
		return err
	}
	c.notifier.Notify(msgCancelled, notify.SeveritySuccess)
	return c.Load(ctx, forUser)
}

// RequestRemoval stages inv for removal pending explicit confirmation. No
// request is issued until ConfirmRemoval. Staging is distinct from the
// code-display selection.
func (c *Controller) RequestRemoval(inv models.Invitation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	staged := inv
	c.pendingRemoval = &staged
}

// PendingRemoval returns the invitation staged for removal, if any.
func (c *Controller) PendingRemoval() *models.Invitation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingRemoval == nil {
		return nil
	}
	inv := *c.pendingRemoval
	return &inv
}

// CancelConfirmation unstages a pending removal without side effects.
func (c *Controller) CancelConfirmation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingRemoval = nil
}

// ConfirmRemoval deletes the staged invitation and re-fetches the list on
// confirmed success. The staged slot is cleared before the request goes out,
// so a duplicate confirmation signal is a safe no-op.
func (c *Controller) ConfirmRemoval(ctx context.Context, forUser string) error {
	c.mu.Lock()
	inv := c.pendingRemoval
	c.pendingRemoval = nil
	c.mu.Unlock()
	if inv == nil {
		return nil
	}

	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.svc.DeleteInvitation(ctx, inv.ID); err != nil {
		c.log.Error("removing invitation", "id", inv.ID.String(), "error", err)
		c.notifier.Notify(failureMessage(err, msgRemoveFailed), notify.SeverityDanger)
		return err
	}
	c.notifier.Notify(msgRemoved, notify.SeveritySuccess)
	return c.Load(ctx, forUser)
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = v
}

// failureMessage prefers the server-supplied message over generic text.
func failureMessage(err error, fallback string) string {
	if msg := api.RemoteMessage(err); msg != "" {
		return msg
	}
	return fallback
}
