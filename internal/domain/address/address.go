package address

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested shipping address does not exist.
var ErrNotFound = errors.New("shipping address not found")

// ShippingAddress is a delivery address owned by exactly one user. An order
// may only reference an address whose UserID matches the purchasing user.
type ShippingAddress struct {
	ID         string
	UserID     string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
}

// Repository defines read operations for shipping addresses.
type Repository interface {
	GetByID(ctx context.Context, id string) (*ShippingAddress, error)
	ListByUser(ctx context.Context, userID string) ([]ShippingAddress, error)
}
