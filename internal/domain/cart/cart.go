package cart

import (
	"context"

	"github.com/go-faster/errors"
)

// Sentinel errors for cart lookup and mutation.
var (
	// ErrNotFound is returned when a user has no cart yet.
	ErrNotFound = errors.New("cart not found")
	// ErrItemNotFound is returned when removing a line that is not in the cart.
	ErrItemNotFound = errors.New("cart item not found")
	// ErrConflict is returned when a cart was modified concurrently with an
	// operation that pinned its version.
	ErrConflict = errors.New("cart modified concurrently")
)

// Cart is a user's mutable pre-purchase basket. It is created lazily on the
// first mutation and survives checkout: a successful order empties the item
// collection but keeps the cart row.
//
// Version counts mutations. Every path that changes the item set (add,
// update, remove, checkout clear) bumps it, which is what lets checkout
// detect a cart that moved under it.
type Cart struct {
	ID      string
	UserID  string
	Version int64
	Items   []Item
}

// Item is one line in a cart: a variant reference and a quantity of at
// least 1.
type Item struct {
	VariantID string
	Quantity  int
}

// Lease pins the cart state observed while validating a checkout. The
// checkout transaction commits only if the cart version still matches.
type Lease struct {
	CartID  string
	Version int64
}

// Lease returns a lease over the cart's current version.
func (c *Cart) Lease() Lease {
	return Lease{CartID: c.ID, Version: c.Version}
}

// TotalQuantity returns the sum of quantities across all lines.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

// Repository defines persistence operations for carts. Item mutations must
// bump the cart version atomically with the item change.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (*Cart, error)
	Create(ctx context.Context, userID string) (*Cart, error)
	UpsertItem(ctx context.Context, cartID, variantID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, variantID string) error
	Clear(ctx context.Context, cartID string) error
}
