package repository

import (
	"context"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/google/uuid"
)

const getCartByUser = `SELECT id, user_id, created_at FROM carts WHERE user_id = $1`

func (q *Queries) GetCartByUser(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	var c domain.Cart
	err := q.db.QueryRow(ctx, getCartByUser, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt)
	return c, err
}

const getCartByUserForUpdate = getCartByUser + ` FOR UPDATE`

// GetCartByUserForUpdate locks the cart row until the transaction ends.
func (q *Queries) GetCartByUserForUpdate(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	var c domain.Cart
	err := q.db.QueryRow(ctx, getCartByUserForUpdate, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt)
	return c, err
}

// createCart returns the existing cart when another request created it first.
const createCart = `
INSERT INTO carts (id, user_id) VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id, user_id, created_at`

func (q *Queries) CreateCart(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	var c domain.Cart
	err := q.db.QueryRow(ctx, createCart, cart.ID, cart.UserID).Scan(&c.ID, &c.UserID, &c.CreatedAt)
	return c, err
}

const cartLineColumns = `cl.id, cl.cart_id, cl.product_id, p.name, p.price, cl.quantity`

const listCartLines = `
SELECT ` + cartLineColumns + `
FROM cart_lines cl
JOIN products p ON p.id = cl.product_id
WHERE cl.cart_id = $1
ORDER BY p.name, cl.id`

func (q *Queries) ListCartLines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error) {
	rows, err := q.db.Query(ctx, listCartLines, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ID, &l.CartID, &l.ProductID, &l.ProductName, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

const getCartLine = `
SELECT ` + cartLineColumns + `
FROM cart_lines cl
JOIN products p ON p.id = cl.product_id
WHERE cl.cart_id = $1 AND cl.product_id = $2`

func (q *Queries) GetCartLine(ctx context.Context, cartID, productID uuid.UUID) (domain.CartLine, error) {
	var l domain.CartLine
	err := q.db.QueryRow(ctx, getCartLine, cartID, productID).
		Scan(&l.ID, &l.CartID, &l.ProductID, &l.ProductName, &l.UnitPrice, &l.Quantity)
	return l, err
}

// upsertCartLine sets the line's absolute quantity.
const upsertCartLine = `
INSERT INTO cart_lines (id, cart_id, product_id, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
RETURNING id, cart_id, product_id, quantity`

func (q *Queries) UpsertCartLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error) {
	var l domain.CartLine
	err := q.db.QueryRow(ctx, upsertCartLine, line.ID, line.CartID, line.ProductID, line.Quantity).
		Scan(&l.ID, &l.CartID, &l.ProductID, &l.Quantity)
	return l, err
}

const deleteCartLine = `DELETE FROM cart_lines WHERE cart_id = $1 AND product_id = $2`

func (q *Queries) DeleteCartLine(ctx context.Context, cartID, productID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteCartLine, cartID, productID)
	return tag.RowsAffected(), err
}

const deleteCartLines = `DELETE FROM cart_lines WHERE cart_id = $1`

func (q *Queries) DeleteCartLines(ctx context.Context, cartID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteCartLines, cartID)
	return tag.RowsAffected(), err
}

const listCartLinesByProduct = `
SELECT cl.cart_id, c.user_id, cl.product_id, cl.quantity
FROM cart_lines cl
JOIN carts c ON c.id = cl.cart_id
WHERE cl.product_id = $1
ORDER BY c.user_id`

func (q *Queries) ListCartLinesByProduct(ctx context.Context, productID uuid.UUID) ([]domain.AffectedLine, error) {
	rows, err := q.db.Query(ctx, listCartLinesByProduct, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AffectedLine
	for rows.Next() {
		var a domain.AffectedLine
		if err := rows.Scan(&a.CartID, &a.UserID, &a.ProductID, &a.Quantity); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const deleteCartLinesByProduct = `DELETE FROM cart_lines WHERE product_id = $1`

func (q *Queries) DeleteCartLinesByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteCartLinesByProduct, productID)
	return tag.RowsAffected(), err
}
