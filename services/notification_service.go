package services

import (
	"internship-portal/models"
	"time"

	"github.com/google/uuid"
)

// notificationRetention is how long read notifications are kept
const notificationRetention = 90 * 24 * time.Hour

// NotificationService stores and serves in-app notifications
type NotificationService struct {
	notifications NotificationRepository
}

func NewNotificationService(notifications NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// Notify creates the same notification for every user in one batch
func (ns *NotificationService) Notify(userIDs []string, kind, title, message, link string) error {
	if len(userIDs) == 0 {
		return nil
	}

	ts := now()
	batch := make([]models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		batch = append(batch, models.Notification{
			ID:        uuid.New().String(),
			UserID:    id,
			Kind:      kind,
			Title:     title,
			Message:   message,
			Link:      link,
			CreatedAt: ts,
		})
	}
	return ns.notifications.CreateNotifications(batch)
}

func (ns *NotificationService) List(userID string, unreadOnly bool, page models.Page) (models.PageResult[models.Notification], error) {
	items, total, err := ns.notifications.ListNotifications(userID, unreadOnly, page)
	if err != nil {
		return models.PageResult[models.Notification]{}, err
	}
	return models.NewPageResult(items, total, page), nil
}

func (ns *NotificationService) UnreadCount(userID string) (int, error) {
	return ns.notifications.CountUnreadNotifications(userID)
}

// MarkRead marks one of the user's notifications read
func (ns *NotificationService) MarkRead(userID, id string) error {
	ok, err := ns.notifications.MarkNotificationRead(id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (ns *NotificationService) MarkAllRead(userID string) (int64, error) {
	return ns.notifications.MarkAllNotificationsRead(userID)
}

// PurgeOld deletes read notifications past the retention window
func (ns *NotificationService) PurgeOld() (int64, error) {
	return ns.notifications.PurgeReadNotifications(now().Add(-notificationRetention))
}
