package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/dukerupert/mercato/internal/telemetry"
	"github.com/google/uuid"
)

type notificationService struct {
	store  repository.Querier
	pusher domain.NotificationPusher
	logger *slog.Logger
}

var _ domain.NotificationService = (*notificationService)(nil)

// NewNotificationService persists notifications and pushes each new one to
// the owner's live stream, if any.
func NewNotificationService(store repository.Querier, pusher domain.NotificationPusher, logger *slog.Logger) domain.NotificationService {
	return &notificationService{store: store, pusher: pusher, logger: logger}
}

// Notify stores n and then attempts a push. The stored record is returned
// whether or not the push was delivered.
func (s *notificationService) Notify(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	created, err := createNotification(ctx, s.store, n)
	if err != nil {
		return nil, err
	}

	pushed := s.pusher.Send(created.UserID, created)
	s.logger.Debug("notification created",
		"user_id", created.UserID,
		"type", created.Type,
		"pushed", pushed,
	)
	return &created, nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	list, err := s.store.ListNotificationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if list == nil {
		list = []domain.Notification{}
	}
	return list, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	rows, err := s.store.MarkNotificationRead(ctx, userID, notificationID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	rows, err := s.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return rows, nil
}

func (s *notificationService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	rows, err := s.store.DeleteNotification(ctx, userID, notificationID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// createNotification assigns an ID when missing and persists n through q,
// which may be transaction-bound.
func createNotification(ctx context.Context, q repository.Querier, n domain.Notification) (domain.Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	created, err := q.CreateNotification(ctx, n)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("failed to create notification: %w", err)
	}
	if telemetry.Business != nil {
		telemetry.Business.NotificationsCreated.WithLabelValues(string(created.Type)).Inc()
	}
	return created, nil
}
