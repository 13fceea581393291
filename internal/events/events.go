// Package events carries product domain events from mutations to listeners.
package events

import (
	"time"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind names an event type. It is also the NATS subject suffix.
type Kind string

const (
	KindProductUpdated    Kind = "product.updated"
	KindProductDeleted    Kind = "product.deleted"
	KindProductDiscounted Kind = "product.discounted"
)

// Event is a fact about a product mutation.
type Event interface {
	Kind() Kind
	ProductID() uuid.UUID
	OccurredAt() time.Time
}

// ProductUpdated carries the product after the update and its prior price.
type ProductUpdated struct {
	Product  domain.Product  `json:"product"`
	OldPrice decimal.Decimal `json:"old_price"`
	At       time.Time       `json:"occurred_at"`
}

func (e ProductUpdated) Kind() Kind            { return KindProductUpdated }
func (e ProductUpdated) ProductID() uuid.UUID  { return e.Product.ID }
func (e ProductUpdated) OccurredAt() time.Time { return e.At }

// ProductDeleted carries the cart lines that referenced the product, collected
// before the delete cascaded them away.
type ProductDeleted struct {
	Product       domain.Product        `json:"product"`
	AffectedLines []domain.AffectedLine `json:"affected_lines"`
	At            time.Time             `json:"occurred_at"`
}

func (e ProductDeleted) Kind() Kind            { return KindProductDeleted }
func (e ProductDeleted) ProductID() uuid.UUID  { return e.Product.ID }
func (e ProductDeleted) OccurredAt() time.Time { return e.At }

// ProductDiscounted carries the discounted product and its price before the discount.
type ProductDiscounted struct {
	Product       domain.Product  `json:"product"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	DiscountType  string          `json:"discount_type"`
	At            time.Time       `json:"occurred_at"`
}

func (e ProductDiscounted) Kind() Kind            { return KindProductDiscounted }
func (e ProductDiscounted) ProductID() uuid.UUID  { return e.Product.ID }
func (e ProductDiscounted) OccurredAt() time.Time { return e.At }
