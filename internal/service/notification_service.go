package service

import (
	"context"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

type NotificationListStore interface {
	ForUser(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

// NotificationService is the read side of notifications; writes happen in
// the event dispatcher.
type NotificationService struct {
	notifications NotificationListStore
}

func NewNotificationService(notifications NotificationListStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) List(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.notifications.ForUser(ctx, userID, limit, offset)
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID int64) error {
	return s.notifications.MarkRead(ctx, notificationID, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.notifications.UnreadCount(ctx, userID)
}
