package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/logger"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

const fanOutWorkers = 8

// NotificationStore persists notifications produced by the dispatcher.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// RecipientSource resolves who should be notified for an event.
type RecipientSource interface {
	Admins(ctx context.Context) ([]models.User, error)
	BusinessFollowers(ctx context.Context, businessID int64) ([]models.User, error)
	CategoryFollowers(ctx context.Context, categoryID int64) ([]models.User, error)
}

// Dispatcher turns domain events into stored notifications. It is the only
// component that knows which audiences care about which events; the
// services just publish what happened.
type Dispatcher struct {
	store      NotificationStore
	recipients RecipientSource
}

func NewDispatcher(store NotificationStore, recipients RecipientSource) *Dispatcher {
	return &Dispatcher{store: store, recipients: recipients}
}

// Register subscribes the dispatcher to every event type it handles.
func (d *Dispatcher) Register(bus *Bus) {
	bus.Subscribe(OfferCreated, d.onOfferCreated)
	bus.Subscribe(ReviewCreated, d.notifyBusiness(models.NotifyNewReview))
	bus.Subscribe(BusinessRequestSubmitted, d.notifyAdmins(models.NotifyBusinessRequest))
	bus.Subscribe(BusinessRequestApproved, d.notifyUser(models.NotifyRequestApproved))
	bus.Subscribe(BusinessRequestRejected, d.notifyUser(models.NotifyRequestRejected))
	bus.Subscribe(BusinessVetoed, d.notifyBusiness(models.NotifyVeto))
	bus.Subscribe(BusinessVerified, d.notifyBusiness(models.NotifyRequestApproved))
	bus.Subscribe(VetoAppealSubmitted, d.notifyAdmins(models.NotifyVetoAppeal))
	bus.Subscribe(OfferExpiring, d.notifyBusiness(models.NotifyOfferExpiring))
}

// onOfferCreated notifies followers of the business and of the category,
// skipping users who disabled notifications and de-duplicating users who
// follow both.
func (d *Dispatcher) onOfferCreated(ctx context.Context, e Event) error {
	followers, err := d.recipients.BusinessFollowers(ctx, e.BusinessID)
	if err != nil {
		return fmt.Errorf("business followers: %w", err)
	}
	categoryFollowers, err := d.recipients.CategoryFollowers(ctx, e.CategoryID)
	if err != nil {
		return fmt.Errorf("category followers: %w", err)
	}

	seen := make(map[int64]bool, len(followers)+len(categoryFollowers))
	recipients := make([]models.User, 0, len(followers)+len(categoryFollowers))
	for _, u := range append(followers, categoryFollowers...) {
		if !u.NotificationsEnabled || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		recipients = append(recipients, u)
	}

	d.deliver(ctx, e, models.NotifyNewOffer, recipients)
	return nil
}

// notifyAdmins fans an event out to every administrator.
func (d *Dispatcher) notifyAdmins(notifType string) Handler {
	return func(ctx context.Context, e Event) error {
		admins, err := d.recipients.Admins(ctx)
		if err != nil {
			return fmt.Errorf("admins: %w", err)
		}
		d.deliver(ctx, e, notifType, admins)
		return nil
	}
}

// notifyUser notifies the user the event concerns.
func (d *Dispatcher) notifyUser(notifType string) Handler {
	return func(ctx context.Context, e Event) error {
		return d.store.Create(ctx, &models.Notification{
			UserID:  e.UserID,
			Type:    notifType,
			Title:   e.Title,
			Message: e.Message,
			Link:    e.Link,
		})
	}
}

// notifyBusiness notifies the owning business account.
func (d *Dispatcher) notifyBusiness(notifType string) Handler {
	return func(ctx context.Context, e Event) error {
		return d.store.Create(ctx, &models.Notification{
			UserID:  e.BusinessID,
			Type:    notifType,
			Title:   e.Title,
			Message: e.Message,
			Link:    e.Link,
		})
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e Event, notifType string, recipients []models.User) {
	fanOut(ctx, fanOutWorkers, len(recipients), func(ctx context.Context, i int) {
		n := &models.Notification{
			UserID:  recipients[i].ID,
			Type:    notifType,
			Title:   e.Title,
			Message: e.Message,
			Link:    e.Link,
		}
		if err := d.store.Create(ctx, n); err != nil {
			logger.Error("notification delivery failed",
				zap.String("event_type", e.Type),
				zap.Int64("user_id", recipients[i].ID),
				zap.Error(err),
			)
		}
	})
}
