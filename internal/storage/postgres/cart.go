package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/cart"
)

const (
	getCartSQL = `SELECT id, user_id, version FROM carts WHERE user_id = $1`

	createCartSQL = `INSERT INTO carts (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, version`

	getCartItemsSQL = `SELECT variant_id, quantity FROM cart_items
		WHERE cart_id = $1 ORDER BY variant_id`

	upsertCartItemSQL = `INSERT INTO cart_items (cart_id, variant_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, variant_id) DO UPDATE SET quantity = EXCLUDED.quantity`

	removeCartItemSQL = `DELETE FROM cart_items WHERE cart_id = $1 AND variant_id = $2`

	bumpCartVersionSQL = `UPDATE carts SET version = version + 1 WHERE id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. Every item
// mutation bumps the cart version in the same transaction, which is what the
// checkout lease check relies on.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// GetByUser returns the user's cart with its items, or cart.ErrNotFound.
func (r *CartRepository) GetByUser(ctx context.Context, userID string) (*cart.Cart, error) {
	var c cart.Cart
	err := r.pool.QueryRow(ctx, getCartSQL, userID).Scan(&c.ID, &c.UserID, &c.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart for user %q: %w", userID, err)
	}

	rows, err := r.pool.Query(ctx, getCartItemsSQL, c.ID)
	if err != nil {
		return nil, fmt.Errorf("getting cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.VariantID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scanning cart item: %w", err)
		}
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

// Create inserts a cart for the user, returning the existing one if a
// concurrent call won the race.
func (r *CartRepository) Create(ctx context.Context, userID string) (*cart.Cart, error) {
	c := cart.Cart{UserID: userID}
	err := r.pool.QueryRow(ctx, createCartSQL, uuid.New().String(), userID).
		Scan(&c.ID, &c.Version)
	if err != nil {
		return nil, fmt.Errorf("creating cart for user %q: %w", userID, err)
	}
	return &c, nil
}

// UpsertItem sets a line's quantity and bumps the cart version atomically.
func (r *CartRepository) UpsertItem(ctx context.Context, cartID, variantID string, quantity int) error {
	return r.mutate(ctx, cartID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, upsertCartItemSQL, cartID, variantID, quantity)
		return err
	})
}

// RemoveItem deletes a line and bumps the cart version atomically. It
// returns cart.ErrItemNotFound when the line does not exist.
func (r *CartRepository) RemoveItem(ctx context.Context, cartID, variantID string) error {
	return r.mutate(ctx, cartID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, removeCartItemSQL, cartID, variantID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return cart.ErrItemNotFound
		}
		return nil
	})
}

// Clear removes all lines and bumps the cart version atomically.
func (r *CartRepository) Clear(ctx context.Context, cartID string) error {
	return r.mutate(ctx, cartID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, clearCartItemsSQL, cartID)
		return err
	})
}

// mutate runs fn and the version bump in one transaction.
func (r *CartRepository) mutate(ctx context.Context, cartID string, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning cart mutation: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, bumpCartVersionSQL, cartID)
	if err != nil {
		return fmt.Errorf("bumping cart version: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing cart mutation: %w", err)
	}
	return nil
}
