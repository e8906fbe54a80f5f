package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/address"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/cart"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/catalog"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/discount"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/user"
)

// Sentinel errors for checkout preconditions.
var (
	// ErrEmptyCart is returned when the user has no cart or the cart holds no
	// items. An empty cart is a precondition failure, never a valid empty
	// order.
	ErrEmptyCart = errors.New("empty cart")
	// ErrAddressNotOwned is returned when the chosen shipping address belongs
	// to a different user.
	ErrAddressNotOwned = errors.New("shipping address not owned by user")
)

// MissingVariantError indicates a cart line references a variant that no
// longer exists in the catalog.
type MissingVariantError struct {
	VariantID string
}

func (e *MissingVariantError) Error() string {
	return fmt.Sprintf("variant %s no longer in catalog", e.VariantID)
}

// MissingPriceError indicates a variant exists but carries no price, which
// makes checkout internally inconsistent.
type MissingPriceError struct {
	VariantID string
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("variant %s has no price", e.VariantID)
}

// CreateOrderRequest holds the input for a checkout call. UserID is an
// already-authenticated user identifier; DiscountCode is optional and
// ignored when blank.
type CreateOrderRequest struct {
	UserID        string
	AddressID     string
	DiscountCode  string
	PaymentMethod string
}

// CheckoutService converts a user's cart into a persisted order: it
// validates the address and discount code, snapshots variant prices into
// order items, computes the discounted total, and persists the order while
// clearing the cart in a single transaction.
type CheckoutService struct {
	users     user.Repository
	carts     cart.Repository
	addresses address.Repository
	variants  catalog.Repository
	discounts discount.Repository
	orders    Repository
	now       func() time.Time
}

// NewCheckoutService creates a CheckoutService with the required
// collaborators.
func NewCheckoutService(
	users user.Repository,
	carts cart.Repository,
	addresses address.Repository,
	variants catalog.Repository,
	discounts discount.Repository,
	orders Repository,
) *CheckoutService {
	return &CheckoutService{
		users:     users,
		carts:     carts,
		addresses: addresses,
		variants:  variants,
		discounts: discounts,
		orders:    orders,
		now:       time.Now,
	}
}

// CreateOrder runs one checkout. Preconditions are checked in a fixed order
// and the first failure wins; the same state always yields the same error.
// Any failure leaves zero order rows and an untouched cart: the persistence
// step is all-or-nothing, guarded by the cart version read here, so two
// concurrent checkouts on one cart produce at most one order.
func (s *CheckoutService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		return nil, errors.Wrap(err, "lookup user")
	}

	crt, err := s.carts.GetByUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, errors.Wrap(err, "get cart")
	}
	if len(crt.Items) == 0 {
		return nil, ErrEmptyCart
	}

	addr, err := s.addresses.GetByID(ctx, req.AddressID)
	if err != nil {
		return nil, errors.Wrap(err, "lookup address")
	}
	if addr.UserID != req.UserID {
		return nil, ErrAddressNotOwned
	}

	// Resolve the discount code up front so an unknown or inapplicable code
	// fails before any price is read. The amount is computed later, once the
	// subtotal exists.
	var code *discount.Code
	if c := strings.TrimSpace(req.DiscountCode); c != "" {
		code, err = s.discounts.FindByCode(ctx, c)
		if err != nil {
			return nil, errors.Wrap(err, "resolve discount code")
		}
		if err := code.Applicable(s.now()); err != nil {
			return nil, err
		}
	}

	// Snapshot prices: one batch read, then an exact-decimal subtotal.
	// Rounding happens once, at the final total, not per line.
	ids := make([]string, len(crt.Items))
	for i, it := range crt.Items {
		ids[i] = it.VariantID
	}
	variants, err := s.variants.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get variants")
	}
	byID := make(map[string]catalog.Variant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}

	items := make([]Item, len(crt.Items))
	subtotal := decimal.Zero
	for i, it := range crt.Items {
		v, ok := byID[it.VariantID]
		if !ok {
			return nil, &MissingVariantError{VariantID: it.VariantID}
		}
		if !v.Price.Valid {
			return nil, &MissingPriceError{VariantID: it.VariantID}
		}

		items[i] = Item{
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			UnitPrice: v.Price.Decimal,
		}
		subtotal = subtotal.Add(v.Price.Decimal.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	discountAmount := decimal.Zero
	discountCode := ""
	if code != nil {
		discountAmount, err = discount.Amount(code, subtotal)
		if err != nil {
			return nil, errors.Wrap(err, "apply discount")
		}
		discountCode = code.Code
	}

	// Total = subtotal - discount, rounded half-up to 2 decimals, never
	// negative. The policy already clamps the amount to the subtotal; the
	// floor here keeps the invariant even for a misbehaving policy.
	total := subtotal.Sub(discountAmount).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}

	o := &Order{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		AddressID:      addr.ID,
		Status:         StatusCreated,
		Subtotal:       subtotal.Round(2),
		DiscountCode:   discountCode,
		DiscountAmount: discountAmount.Round(2),
		Total:          total,
		Items:          items,
		Payment: &Payment{
			ID:     uuid.New().String(),
			Method: req.PaymentMethod,
			Status: PaymentPending,
		},
		CreatedAt: s.now().UTC(),
	}
	o.Payment.Amount = o.Total

	if err := s.orders.Create(ctx, o, crt.Lease()); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}
