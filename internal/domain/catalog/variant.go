package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested variant does not exist.
var ErrNotFound = errors.New("variant not found")

// Variant is a purchasable configuration of a product with its own price and
// stock identity. Price may be unset (NULL in storage) for variants that are
// listed but not yet priced; checkout treats that as an internal
// inconsistency. The price is authoritative only at the instant it is read.
type Variant struct {
	ID    string
	SKU   string
	Name  string
	Price decimal.NullDecimal
	Stock int
}

// Repository defines read operations for the variant catalog.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Variant, error)
	GetByIDs(ctx context.Context, ids []string) ([]Variant, error)
}
