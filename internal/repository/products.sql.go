package repository

import (
	"context"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, description, price, quantity, condition, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.Condition, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const ensureUser = `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`

func (q *Queries) EnsureUser(ctx context.Context, userID uuid.UUID) error {
	_, err := q.db.Exec(ctx, ensureUser, userID)
	return err
}

const createProduct = `
INSERT INTO products (id, name, description, price, quantity, condition)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + productColumns

func (q *Queries) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	return scanProduct(q.db.QueryRow(ctx, createProduct, p.ID, p.Name, p.Description, p.Price, p.Quantity, p.Condition))
}

const getProduct = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return scanProduct(q.db.QueryRow(ctx, getProduct, id))
}

const getProductForUpdate = getProduct + ` FOR UPDATE`

func (q *Queries) GetProductForUpdate(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return scanProduct(q.db.QueryRow(ctx, getProductForUpdate, id))
}

const updateProduct = `
UPDATE products
SET name = $2, description = $3, price = $4, quantity = $5, condition = $6, updated_at = now()
WHERE id = $1
RETURNING ` + productColumns

func (q *Queries) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	return scanProduct(q.db.QueryRow(ctx, updateProduct, p.ID, p.Name, p.Description, p.Price, p.Quantity, p.Condition))
}

const updateProductPrice = `
UPDATE products SET price = $2, updated_at = now()
WHERE id = $1
RETURNING ` + productColumns

func (q *Queries) UpdateProductPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (domain.Product, error) {
	return scanProduct(q.db.QueryRow(ctx, updateProductPrice, id, price))
}

const adjustProductStock = `UPDATE products SET quantity = quantity + $2, updated_at = now() WHERE id = $1`

// AdjustProductStock adds delta (which may be negative) to available stock.
// The quantity CHECK constraint rejects a negative result.
func (q *Queries) AdjustProductStock(ctx context.Context, id uuid.UUID, delta int) error {
	tag, err := q.db.Exec(ctx, adjustProductStock, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

const deleteProduct = `DELETE FROM products WHERE id = $1`

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteProduct, id)
	return tag.RowsAffected(), err
}
