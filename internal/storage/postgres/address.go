package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/address"
)

const (
	getAddressSQL = `SELECT id, user_id, line1, line2, city, postal_code, country
		FROM shipping_addresses WHERE id = $1`
	listAddressesSQL = `SELECT id, user_id, line1, line2, city, postal_code, country
		FROM shipping_addresses WHERE user_id = $1 ORDER BY id`
)

var _ address.Repository = (*AddressRepository)(nil)

// AddressRepository implements address.Repository backed by PostgreSQL.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// GetByID returns address.ErrNotFound when no such address exists.
func (r *AddressRepository) GetByID(ctx context.Context, id string) (*address.ShippingAddress, error) {
	var a address.ShippingAddress
	err := r.pool.QueryRow(ctx, getAddressSQL, id).
		Scan(&a.ID, &a.UserID, &a.Line1, &a.Line2, &a.City, &a.PostalCode, &a.Country)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrNotFound
		}
		return nil, fmt.Errorf("getting address %q: %w", id, err)
	}
	return &a, nil
}

// ListByUser returns all addresses owned by the user.
func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]address.ShippingAddress, error) {
	rows, err := r.pool.Query(ctx, listAddressesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses for user %q: %w", userID, err)
	}
	defer rows.Close()

	var out []address.ShippingAddress
	for rows.Next() {
		var a address.ShippingAddress
		if err := rows.Scan(&a.ID, &a.UserID, &a.Line1, &a.Line2, &a.City, &a.PostalCode, &a.Country); err != nil {
			return nil, fmt.Errorf("scanning address: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
