package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/cart"
)

// Sentinel errors for order lookup and mutation.
var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrStale is returned when a status update lost a race with a concurrent
	// transition and should be re-read.
	ErrStale = errors.New("order changed concurrently")
)

// Order is the immutable financial record of a completed checkout. Total is
// a fixed snapshot computed at creation time; it is never recomputed from
// live catalog prices.
type Order struct {
	ID             string
	UserID         string
	AddressID      string
	Status         Status
	Subtotal       decimal.Decimal
	DiscountCode   string
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	Items          []Item
	Payment        *Payment
	CreatedAt      time.Time
}

// ShippingAddress returns the id of the bound shipping address, or "none"
// when the order carries no address.
func (o *Order) ShippingAddress() string {
	if o.AddressID == "" {
		return "none"
	}
	return o.AddressID
}

// Item is a price-snapshotted line within an order. UnitPrice is the
// variant's price at order-creation time.
type Item struct {
	VariantID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Payment is the 1:1 payment record attached to an order. It is created as a
// side record at checkout; actual capture happens elsewhere and is reported
// back via RecordCapture.
type Payment struct {
	ID     string
	Method string
	Amount decimal.Decimal
	Status PaymentStatus
}

// Repository defines persistence operations for orders.
//
// Create must persist the order, its items, and its payment record, and
// clear the leased cart's items, as one all-or-nothing transaction. It
// returns cart.ErrConflict when the cart version no longer matches the
// lease, which is how concurrent checkouts on one cart are reduced to a
// single order.
type Repository interface {
	Create(ctx context.Context, o *Order, lease cart.Lease) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// UpdateStatus is compare-and-set: it applies the new status only while
	// the stored status still equals from, returning ErrStale otherwise.
	UpdateStatus(ctx context.Context, id string, from, to Status) error
	// UpdatePaymentStatus is the same compare-and-set for the payment record.
	UpdatePaymentStatus(ctx context.Context, orderID string, from, to PaymentStatus) error
}
