package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/cart"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, user_id, address_id, status, subtotal, discount_code, discount_amount, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	createOrderItemSQL = `INSERT INTO order_items (order_id, variant_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)`

	createPaymentSQL = `INSERT INTO payments (id, order_id, method, amount, status)
		VALUES ($1, $2, $3, $4, $5)`

	clearCartItemsSQL = `DELETE FROM cart_items WHERE cart_id = $1`

	// The version predicate is the optimistic lease check: if any other
	// checkout or cart mutation got in first, zero rows match and the whole
	// transaction rolls back.
	claimCartSQL = `UPDATE carts SET version = version + 1 WHERE id = $1 AND version = $2`

	getOrderSQL = `SELECT id, user_id, COALESCE(address_id, ''), status, subtotal,
		discount_code, discount_amount, total, created_at
		FROM orders WHERE id = $1`

	listOrdersSQL = `SELECT id, user_id, COALESCE(address_id, ''), status, subtotal,
		discount_code, discount_amount, total, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	getOrderItemsSQL = `SELECT variant_id, quantity, unit_price FROM order_items
		WHERE order_id = $1 ORDER BY variant_id`

	getPaymentSQL = `SELECT id, method, amount, status FROM payments WHERE order_id = $1`

	updateOrderStatusSQL = `UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`

	updatePaymentStatusSQL = `UPDATE payments SET status = $3 WHERE order_id = $1 AND status = $2`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order, its items, and its payment record, and clears
// the leased cart, all in one transaction. A stale lease (the cart changed
// since it was read) aborts with cart.ErrConflict and leaves zero rows.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, lease cart.Lease) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning checkout transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx, claimCartSQL, lease.CartID, lease.Version)
	if err != nil {
		return fmt.Errorf("claiming cart %q: %w", lease.CartID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrConflict
	}

	var addressID any
	if o.AddressID != "" {
		addressID = o.AddressID
	}
	_, err = tx.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, addressID, o.Status,
		o.Subtotal, o.DiscountCode, o.DiscountAmount, o.Total, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	batch := &pgx.Batch{}
	for _, it := range o.Items {
		batch.Queue(createOrderItemSQL, o.ID, it.VariantID, it.Quantity, it.UnitPrice)
	}
	if o.Payment != nil {
		batch.Queue(createPaymentSQL, o.Payment.ID, o.ID, o.Payment.Method, o.Payment.Amount, o.Payment.Status)
	}
	batch.Queue(clearCartItemsSQL, lease.CartID)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("writing order %q rows: %w", o.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns one order with its items and payment record, or
// order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx, getOrderSQL, id).Scan(
		&o.ID, &o.UserID, &o.AddressID, &o.Status, &o.Subtotal,
		&o.DiscountCode, &o.DiscountAmount, &o.Total, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	if err := r.loadDetails(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns a user's orders, newest first, with items and payments.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.AddressID, &o.Status, &o.Subtotal,
			&o.DiscountCode, &o.DiscountAmount, &o.Total, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.loadDetails(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateStatus applies a compare-and-set status change. Zero matched rows
// means either the order vanished or its status moved; the caller gets
// ErrNotFound or ErrStale accordingly.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, from, to)
	if err != nil {
		return fmt.Errorf("updating order %q status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, id)
	}
	return nil
}

// UpdatePaymentStatus is the compare-and-set counterpart for payments.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, orderID string, from, to order.PaymentStatus) error {
	tag, err := r.pool.Exec(ctx, updatePaymentStatusSQL, orderID, from, to)
	if err != nil {
		return fmt.Errorf("updating payment for order %q: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, orderID)
	}
	return nil
}

func (r *OrderRepository) staleOrMissing(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking order %q: %w", id, err)
	}
	if !exists {
		return order.ErrNotFound
	}
	return order.ErrStale
}

func (r *OrderRepository) loadDetails(ctx context.Context, o *order.Order) error {
	rows, err := r.pool.Query(ctx, getOrderItemsSQL, o.ID)
	if err != nil {
		return fmt.Errorf("getting items for order %q: %w", o.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.VariantID, &it.Quantity, &it.UnitPrice); err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var p order.Payment
	err = r.pool.QueryRow(ctx, getPaymentSQL, o.ID).Scan(&p.ID, &p.Method, &p.Amount, &p.Status)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// Orders created before payments existed have none; tolerated.
	case err != nil:
		return fmt.Errorf("getting payment for order %q: %w", o.ID, err)
	default:
		o.Payment = &p
	}
	return nil
}
