package service

import (
	"context"
	"fmt"

	"github.com/Epsilon-byte/ScholarsUnited/internal/domain"
)

type NotificationRepo interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListUnread(ctx context.Context, userID int64, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID int64, notificationID string) error
}

// Pusher is the live side of notification delivery; satisfied by the gateway.
type Pusher interface {
	NotifyUser(userID int64, payload any)
	BroadcastNotification(payload any)
}

// NotificationService persists a notification first, then pushes it to
// whatever connections the user has open right now. Offline users pick the
// stored copy up on their next ListUnread.
type NotificationService struct {
	notifications NotificationRepo
	pusher        Pusher
}

func NewNotificationService(notifications NotificationRepo, pusher Pusher) *NotificationService {
	return &NotificationService{notifications: notifications, pusher: pusher}
}

type NotificationPayload struct {
	ID     string  `json:"id,omitempty"`
	Kind   string  `json:"kind"`
	Body   string  `json:"body"`
	Link   *string `json:"link,omitempty"`
	TSUnix int64   `json:"ts_unix,omitempty"`
}

func (s *NotificationService) Notify(ctx context.Context, userID int64, kind, body string, link *string) (*domain.Notification, error) {
	n := &domain.Notification{UserID: userID, Kind: kind, Body: body, Link: link}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.pusher.NotifyUser(userID, NotificationPayload{
		ID:     n.ID,
		Kind:   n.Kind,
		Body:   n.Body,
		Link:   n.Link,
		TSUnix: n.CreatedAt.Unix(),
	})

	return n, nil
}

// Announce pushes a platform-wide notice to every connected client. Announces
// are transient and not persisted per user.
func (s *NotificationService) Announce(kind, body string) {
	s.pusher.BroadcastNotification(NotificationPayload{Kind: kind, Body: body})
}

func (s *NotificationService) ListUnread(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	return s.notifications.ListUnread(ctx, userID, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID int64, notificationID string) error {
	return s.notifications.MarkRead(ctx, userID, notificationID)
}
