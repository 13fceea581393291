package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/mercato/internal/discount"
	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/events"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type productService struct {
	store        repository.Store
	events       events.Publisher
	discounts    *discount.Resolver
	priceCeiling decimal.Decimal
	logger       *slog.Logger
}

var _ domain.ProductService = (*productService)(nil)

// NewProductService creates the product admin service. Events are published
// after each mutation commits.
func NewProductService(
	store repository.Store,
	publisher events.Publisher,
	discounts *discount.Resolver,
	priceCeiling decimal.Decimal,
	logger *slog.Logger,
) (domain.ProductService, error) {
	if publisher == nil {
		return nil, errors.New("event publisher is required")
	}
	if discounts == nil {
		return nil, errors.New("discount resolver is required")
	}
	if !priceCeiling.IsPositive() {
		return nil, fmt.Errorf("price ceiling must be positive, got %s", priceCeiling)
	}

	return &productService{
		store:        store,
		events:       publisher,
		discounts:    discounts,
		priceCeiling: priceCeiling,
		logger:       logger,
	}, nil
}

func (s *productService) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if errors.Is(err, repository.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (s *productService) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	product, err := s.store.CreateProduct(ctx, domain.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Condition:   conditionOrDefault(input.Condition),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// UpdateProduct persists new field values and publishes ProductUpdated with
// the previous price.
func (s *productService) UpdateProduct(ctx context.Context, productID uuid.UUID, input domain.ProductInput) (*domain.Product, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	var before, after domain.Product
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		var err error
		before, err = lockProduct(ctx, q, productID)
		if err != nil {
			return err
		}

		after, err = q.UpdateProduct(ctx, domain.Product{
			ID:          productID,
			Name:        strings.TrimSpace(input.Name),
			Description: input.Description,
			Price:       input.Price,
			Quantity:    input.Quantity,
			Condition:   conditionOrDefault(input.Condition),
		})
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.ProductUpdated{
		Product:  after,
		OldPrice: before.Price,
		At:       time.Now().UTC(),
	})
	return &after, nil
}

// DeleteProduct removes the product and every cart line referencing it.
// Affected lines are captured first so listeners can notify their owners.
func (s *productService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	var product domain.Product
	var affected []domain.AffectedLine

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		var err error
		product, err = lockProduct(ctx, q, productID)
		if err != nil {
			return err
		}

		affected, err = q.ListCartLinesByProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to list affected cart lines: %w", err)
		}

		if _, err := q.DeleteCartLinesByProduct(ctx, productID); err != nil {
			return fmt.Errorf("failed to delete cart lines: %w", err)
		}
		if _, err := q.DeleteProduct(ctx, productID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("product deleted", "product_id", productID, "affected_lines", len(affected))
	s.events.Publish(ctx, events.ProductDeleted{
		Product:       product,
		AffectedLines: affected,
		At:            time.Now().UTC(),
	})
	return nil
}

// ApplyDiscount reprices a product with the named strategy and publishes
// ProductDiscounted with the original price.
func (s *productService) ApplyDiscount(ctx context.Context, productID uuid.UUID, discountType string) (*domain.Product, error) {
	strategy, err := s.discounts.Resolve(discountType)
	if err != nil {
		return nil, err
	}

	var original decimal.Decimal
	var discounted domain.Product
	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		product, err := lockProduct(ctx, q, productID)
		if err != nil {
			return err
		}
		original = product.Price

		newPrice := strategy.Apply(product.Price)
		if !newPrice.IsPositive() {
			return ErrDiscountToZero
		}

		discounted, err = q.UpdateProductPrice(ctx, productID, newPrice)
		if err != nil {
			return fmt.Errorf("failed to update price: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("discount applied",
		"product_id", productID,
		"type", strategy.Type(),
		"original_price", original.StringFixed(2),
		"new_price", discounted.Price.StringFixed(2),
	)
	s.events.Publish(ctx, events.ProductDiscounted{
		Product:       discounted,
		OriginalPrice: original,
		DiscountType:  string(strategy.Type()),
		At:            time.Now().UTC(),
	})
	return &discounted, nil
}

func (s *productService) validate(input domain.ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrMissingName
	}
	if !input.Price.IsPositive() || input.Price.GreaterThan(s.priceCeiling) {
		return ErrPriceOutOfRange
	}
	if input.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

func conditionOrDefault(c string) string {
	if c == "" {
		return domain.ConditionNew
	}
	return strings.ToUpper(c)
}
