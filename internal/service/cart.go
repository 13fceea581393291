package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/dukerupert/mercato/internal/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type cartService struct {
	store  repository.Store
	logger *slog.Logger
}

var _ domain.CartService = (*cartService)(nil)

// NewCartService creates the reservation-backed cart service.
func NewCartService(store repository.Store, logger *slog.Logger) domain.CartService {
	return &cartService{store: store, logger: logger}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*domain.CartSummary, error) {
	cart, err := s.store.GetCartByUser(ctx, userID)
	if errors.Is(err, repository.ErrNoRows) {
		return &domain.CartSummary{Lines: []domain.CartLine{}, Subtotal: decimal.Zero}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return loadSummary(ctx, s.store, cart.ID)
}

// AddToCart reserves quantity units of a product, creating the cart on first use.
func (s *cartService) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartSummary, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var summary *domain.CartSummary
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, err := ensureCart(ctx, q, userID)
		if err != nil {
			return err
		}

		product, err := lockProduct(ctx, q, productID)
		if err != nil {
			return err
		}
		if quantity > product.Quantity {
			return fmt.Errorf("%w: requested %d, available %d", domain.ErrInsufficientStock, quantity, product.Quantity)
		}

		line, err := q.GetCartLine(ctx, cart.ID, productID)
		switch {
		case errors.Is(err, repository.ErrNoRows):
			line = domain.CartLine{ID: uuid.New(), CartID: cart.ID, ProductID: productID}
		case err != nil:
			return fmt.Errorf("failed to get cart line: %w", err)
		}

		if err := q.AdjustProductStock(ctx, productID, -quantity); err != nil {
			return fmt.Errorf("failed to reserve stock: %w", err)
		}

		line.Quantity += quantity
		if _, err := q.UpsertCartLine(ctx, line); err != nil {
			return fmt.Errorf("failed to save cart line: %w", err)
		}

		summary, err = loadSummary(ctx, q, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if telemetry.Business != nil {
		telemetry.Business.CartItemsAdded.Add(float64(quantity))
	}
	s.logger.Debug("added to cart", "user_id", userID, "product_id", productID, "quantity", quantity)
	return summary, nil
}

// UpdateLineQuantity sets a line's absolute quantity, moving the difference
// between stock and the cart. Zero removes the line.
func (s *cartService) UpdateLineQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartSummary, error) {
	if quantity < 0 {
		return nil, ErrNegativeQuantity
	}
	if quantity == 0 {
		return s.RemoveLine(ctx, userID, productID)
	}

	var summary *domain.CartSummary
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, line, err := findLine(ctx, q, userID, productID)
		if err != nil {
			return err
		}

		product, err := lockProduct(ctx, q, productID)
		if err != nil {
			return err
		}

		delta := quantity - line.Quantity
		if delta > product.Quantity {
			return fmt.Errorf("%w: requested %d more, available %d", domain.ErrInsufficientStock, delta, product.Quantity)
		}

		if delta != 0 {
			if err := q.AdjustProductStock(ctx, productID, -delta); err != nil {
				return fmt.Errorf("failed to adjust stock: %w", err)
			}
			line.Quantity = quantity
			if _, err := q.UpsertCartLine(ctx, line); err != nil {
				return fmt.Errorf("failed to save cart line: %w", err)
			}
		}

		summary, err = loadSummary(ctx, q, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// RemoveLine deletes a line and returns its quantity to stock.
func (s *cartService) RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*domain.CartSummary, error) {
	var summary *domain.CartSummary
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, line, err := findLine(ctx, q, userID, productID)
		if err != nil {
			return err
		}

		if err := releaseLine(ctx, q, line); err != nil {
			return err
		}

		summary, err = loadSummary(ctx, q, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ClearCart empties the cart at the user's request, returning every line's
// quantity to stock. Checkout clears without restocking; see checkout.go.
func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, err := q.GetCartByUserForUpdate(ctx, userID)
		if errors.Is(err, repository.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get cart: %w", err)
		}

		lines, err := q.ListCartLines(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("failed to list cart lines: %w", err)
		}

		for _, line := range lines {
			err := releaseLine(ctx, q, line)
			if errors.Is(err, ErrCartLineNotFound) {
				continue
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// releaseLine deletes a line and restocks its quantity. A line already gone
// reports ErrCartLineNotFound and restocks nothing.
func releaseLine(ctx context.Context, q repository.Querier, line domain.CartLine) error {
	rows, err := q.DeleteCartLine(ctx, line.CartID, line.ProductID)
	if err != nil {
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	if rows != 1 {
		return ErrCartLineNotFound
	}
	if err := q.AdjustProductStock(ctx, line.ProductID, line.Quantity); err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	if telemetry.Business != nil {
		telemetry.Business.CartItemsRemoved.Add(float64(line.Quantity))
	}
	return nil
}

func lockProduct(ctx context.Context, q repository.Querier, productID uuid.UUID) (domain.Product, error) {
	product, err := q.GetProductForUpdate(ctx, productID)
	if errors.Is(err, repository.ErrNoRows) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to lock product: %w", err)
	}
	return product, nil
}

// ensureCart locks the user's cart row, creating the cart on first use.
// Cart writes take this lock before any product lock.
func ensureCart(ctx context.Context, q repository.Querier, userID uuid.UUID) (domain.Cart, error) {
	cart, err := q.GetCartByUserForUpdate(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrNoRows) {
		return domain.Cart{}, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := q.EnsureUser(ctx, userID); err != nil {
		return domain.Cart{}, fmt.Errorf("failed to register user: %w", err)
	}
	cart, err = q.CreateCart(ctx, domain.Cart{ID: uuid.New(), UserID: userID})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

func findLine(ctx context.Context, q repository.Querier, userID, productID uuid.UUID) (domain.Cart, domain.CartLine, error) {
	cart, err := q.GetCartByUserForUpdate(ctx, userID)
	if errors.Is(err, repository.ErrNoRows) {
		return domain.Cart{}, domain.CartLine{}, ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, domain.CartLine{}, fmt.Errorf("failed to get cart: %w", err)
	}

	line, err := q.GetCartLine(ctx, cart.ID, productID)
	if errors.Is(err, repository.ErrNoRows) {
		return domain.Cart{}, domain.CartLine{}, ErrCartLineNotFound
	}
	if err != nil {
		return domain.Cart{}, domain.CartLine{}, fmt.Errorf("failed to get cart line: %w", err)
	}
	return cart, line, nil
}

func loadSummary(ctx context.Context, q repository.Querier, cartID uuid.UUID) (*domain.CartSummary, error) {
	lines, err := q.ListCartLines(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}

	summary := &domain.CartSummary{
		CartID:   cartID,
		Lines:    lines,
		Subtotal: decimal.Zero,
	}
	if summary.Lines == nil {
		summary.Lines = []domain.CartLine{}
	}
	for _, l := range lines {
		summary.ItemCount += l.Quantity
		summary.Subtotal = summary.Subtotal.Add(l.LineTotal())
	}
	return summary, nil
}
