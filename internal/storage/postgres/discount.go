package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/discount"
)

const getDiscountSQL = `SELECT code, discount_type, value, min_subtotal, description, active, expires_at
	FROM discount_codes WHERE code = $1`

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// FindByCode matches the code string exactly. It returns
// discount.ErrUnknownCode when no row exists; applicability (active flag,
// expiry) is the domain's concern.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Code, error) {
	var c discount.Code
	err := r.pool.QueryRow(ctx, getDiscountSQL, code).
		Scan(&c.Code, &c.Type, &c.Value, &c.MinSubtotal, &c.Description, &c.Active, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrUnknownCode
		}
		return nil, fmt.Errorf("finding discount code %q: %w", code, err)
	}
	return &c, nil
}
