package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationOrderConfirmed    NotificationType = "ORDER_CONFIRMED"
	NotificationPriceDrop         NotificationType = "PRICE_DROP"
	NotificationPriceChange       NotificationType = "PRICE_CHANGE"
	NotificationProductRemoved    NotificationType = "PRODUCT_REMOVED"
	NotificationProductDiscounted NotificationType = "PRODUCT_DISCOUNTED"
	NotificationProductUpdated    NotificationType = "PRODUCT_UPDATED"
)

// Notification is a durable message for a user. Only Read changes after creation.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	RelatedID *uuid.UUID       `json:"related_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationPusher delivers a notification to a live connection, if any.
// It reports whether the frame was queued.
type NotificationPusher interface {
	Send(userID uuid.UUID, n Notification) bool
}

// NotificationService persists notifications and pushes them to live connections.
type NotificationService interface {
	Notify(ctx context.Context, n Notification) (*Notification, error)
	List(ctx context.Context, userID uuid.UUID) ([]Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, notificationID uuid.UUID) error
}
