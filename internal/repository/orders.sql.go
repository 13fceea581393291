package repository

import (
	"context"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/google/uuid"
)

const createAddress = `
INSERT INTO addresses (id, user_id, full_name, address_line1, address_line2, city, state, postal_code, country, phone)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at`

func (q *Queries) CreateAddress(ctx context.Context, a domain.Address) (domain.Address, error) {
	err := q.db.QueryRow(ctx, createAddress,
		a.ID, a.UserID, a.FullName, a.AddressLine1, a.AddressLine2,
		a.City, a.State, a.PostalCode, a.Country, a.Phone,
	).Scan(&a.CreatedAt)
	return a, err
}

const createOrder = `
INSERT INTO orders (id, user_id, status, total_amount, shipping_address_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at`

func (q *Queries) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	err := q.db.QueryRow(ctx, createOrder, o.ID, o.UserID, string(o.Status), o.TotalAmount, o.ShippingAddressID).
		Scan(&o.CreatedAt)
	return o, err
}

const createOrderLine = `
INSERT INTO order_lines (id, order_id, product_id, product_name, quantity, price)
VALUES ($1, $2, $3, $4, $5, $6)`

func (q *Queries) CreateOrderLine(ctx context.Context, l domain.OrderLine) (domain.OrderLine, error) {
	_, err := q.db.Exec(ctx, createOrderLine, l.ID, l.OrderID, l.ProductID, l.ProductName, l.Quantity, l.Price)
	return l, err
}

const orderColumns = `id, user_id, status, total_amount, shipping_address_id, created_at`

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(&o.ID, &o.UserID, &status, &o.TotalAmount, &o.ShippingAddressID, &o.CreatedAt)
	o.Status = domain.OrderStatus(status)
	return o, err
}

const getOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const listOrdersByUser = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

func (q *Queries) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

const listOrderLines = `
SELECT id, order_id, product_id, product_name, quantity, price
FROM order_lines WHERE order_id = $1 ORDER BY product_name, id`

func (q *Queries) ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error) {
	rows, err := q.db.Query(ctx, listOrderLines, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.Price); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

const createPayment = `
INSERT INTO payments (id, order_id, method, gateway, amount, transaction_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`

func (q *Queries) CreatePayment(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	err := q.db.QueryRow(ctx, createPayment, p.ID, p.OrderID, p.Method, p.Gateway, p.Amount, p.TransactionID).
		Scan(&p.CreatedAt)
	return p, err
}
