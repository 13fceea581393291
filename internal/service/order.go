package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/google/uuid"
)

type orderService struct {
	repo repository.Querier
}

var _ domain.OrderService = (*orderService)(nil)

func NewOrderService(repo repository.Querier) domain.OrderService {
	return &orderService{repo: repo}
}

// ListOrders returns the user's orders newest first, each with its lines.
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	orders, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	for i := range orders {
		lines, err := s.repo.ListOrderLines(ctx, orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list order lines: %w", err)
		}
		orders[i].Lines = lines
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// GetOrder returns one of the user's orders. Another user's order is reported
// as not found.
func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}

	order.Lines, err = s.repo.ListOrderLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}
	return &order, nil
}
