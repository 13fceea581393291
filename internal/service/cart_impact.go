package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/events"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/dukerupert/mercato/internal/telemetry"
	"github.com/google/uuid"
)

// CartImpactListener turns product events into one notification per user
// whose cart holds the product. A failure for one user is logged and does
// not stop the others or fail the publisher.
type CartImpactListener struct {
	repo          repository.Querier
	notifications domain.NotificationService
	logger        *slog.Logger
}

func NewCartImpactListener(repo repository.Querier, notifications domain.NotificationService, logger *slog.Logger) *CartImpactListener {
	return &CartImpactListener{repo: repo, notifications: notifications, logger: logger}
}

// Handle is an events.Handler. It only returns an error when the affected
// users could not be determined at all.
func (l *CartImpactListener) Handle(ctx context.Context, e events.Event) error {
	var affected []domain.AffectedLine
	var err error

	switch ev := e.(type) {
	case events.ProductDeleted:
		affected = ev.AffectedLines
	case events.ProductUpdated, events.ProductDiscounted:
		affected, err = l.repo.ListCartLinesByProduct(ctx, e.ProductID())
		if err != nil {
			return fmt.Errorf("failed to find carts holding product %s: %w", e.ProductID(), err)
		}
	default:
		return nil
	}

	productID := e.ProductID()
	failed := 0
	users := distinctOwners(affected)
	for _, userID := range users {
		n := describeImpact(e)
		n.UserID = userID
		n.RelatedID = &productID

		if _, err := l.notifications.Notify(ctx, n); err != nil {
			failed++
			l.logger.Error("failed to notify cart owner",
				"user_id", userID,
				"product_id", productID,
				"kind", e.Kind(),
				"error", err,
			)
			if telemetry.Business != nil {
				telemetry.Business.NotificationFailures.Inc()
			}
			telemetry.CaptureError(err, map[string]any{
				"user_id":    userID.String(),
				"product_id": productID.String(),
				"kind":       string(e.Kind()),
			})
		}
	}

	l.logger.Info("cart owners notified",
		"kind", e.Kind(),
		"product_id", productID,
		"users", len(users),
		"failed", failed,
	)
	return nil
}

func distinctOwners(lines []domain.AffectedLine) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	var out []uuid.UUID
	for _, line := range lines {
		if _, ok := seen[line.UserID]; ok {
			continue
		}
		seen[line.UserID] = struct{}{}
		out = append(out, line.UserID)
	}
	return out
}

// describeImpact builds the user-independent part of the notification.
func describeImpact(e events.Event) domain.Notification {
	switch ev := e.(type) {
	case events.ProductUpdated:
		name := ev.Product.Name
		oldPrice, newPrice := ev.OldPrice.StringFixed(2), ev.Product.Price.StringFixed(2)
		switch {
		case ev.Product.Price.LessThan(ev.OldPrice):
			return domain.Notification{
				Type:    domain.NotificationPriceDrop,
				Message: fmt.Sprintf("Price drop: %s in your cart is now $%s (was $%s)", name, newPrice, oldPrice),
			}
		case ev.Product.Price.GreaterThan(ev.OldPrice):
			return domain.Notification{
				Type:    domain.NotificationPriceChange,
				Message: fmt.Sprintf("Price change: %s in your cart is now $%s (was $%s)", name, newPrice, oldPrice),
			}
		default:
			return domain.Notification{
				Type:    domain.NotificationProductUpdated,
				Message: fmt.Sprintf("%s in your cart was updated", name),
			}
		}
	case events.ProductDeleted:
		return domain.Notification{
			Type:    domain.NotificationProductRemoved,
			Message: fmt.Sprintf("%s is no longer available and was removed from your cart", ev.Product.Name),
		}
	case events.ProductDiscounted:
		return domain.Notification{
			Type: domain.NotificationProductDiscounted,
			Message: fmt.Sprintf("%s in your cart is on sale: now $%s (was $%s)",
				ev.Product.Name, ev.Product.Price.StringFixed(2), ev.OriginalPrice.StringFixed(2)),
		}
	}
	return domain.Notification{Type: domain.NotificationProductUpdated, Message: "A product in your cart changed"}
}
