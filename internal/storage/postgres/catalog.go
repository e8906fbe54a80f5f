package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/catalog"
)

const (
	getVariantSQL  = `SELECT id, sku, name, price, stock FROM variants WHERE id = $1`
	getVariantsSQL = `SELECT id, sku, name, price, stock FROM variants WHERE id = ANY($1)`
)

var _ catalog.Repository = (*VariantRepository)(nil)

// VariantRepository implements catalog.Repository backed by PostgreSQL.
type VariantRepository struct {
	pool *pgxpool.Pool
}

// NewVariantRepository returns a VariantRepository that uses the given pool.
func NewVariantRepository(pool *pgxpool.Pool) *VariantRepository {
	return &VariantRepository{pool: pool}
}

// GetByID returns catalog.ErrNotFound when no such variant exists.
func (r *VariantRepository) GetByID(ctx context.Context, id string) (*catalog.Variant, error) {
	var v catalog.Variant
	err := r.pool.QueryRow(ctx, getVariantSQL, id).
		Scan(&v.ID, &v.SKU, &v.Name, &v.Price, &v.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting variant %q: %w", id, err)
	}
	return &v, nil
}

// GetByIDs fetches all listed variants in one query. Missing ids are simply
// absent from the result; callers decide whether that is an error.
func (r *VariantRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Variant, error) {
	rows, err := r.pool.Query(ctx, getVariantsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting variants: %w", err)
	}
	defer rows.Close()

	var out []catalog.Variant
	for rows.Next() {
		var v catalog.Variant
		if err := rows.Scan(&v.ID, &v.SKU, &v.Name, &v.Price, &v.Stock); err != nil {
			return nil, fmt.Errorf("scanning variant: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
