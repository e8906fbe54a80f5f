package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/catalog"
)

// ErrInvalidQuantity is returned when a line quantity is below 1.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Service encapsulates cart management: reading a user's basket and mutating
// its lines. It shares the version-bump discipline with checkout, so the two
// paths cannot race silently on the same cart.
type Service struct {
	carts    Repository
	variants catalog.Repository
}

// NewService creates a cart Service.
func NewService(carts Repository, variants catalog.Repository) *Service {
	return &Service{carts: carts, variants: variants}
}

// Get returns the user's cart. A user without a cart gets an empty,
// unpersisted one; the row is only created on the first mutation.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Cart{UserID: userID}, nil
		}
		return nil, errors.Wrap(err, "get cart")
	}
	return c, nil
}

// SetItem sets the quantity for a variant line, creating the cart and the
// line as needed. The variant must exist in the catalog.
func (s *Service) SetItem(ctx context.Context, userID, variantID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.variants.GetByID(ctx, variantID); err != nil {
		return nil, errors.Wrap(err, "lookup variant")
	}

	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		c, err = s.carts.Create(ctx, userID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get or create cart")
	}

	if err := s.carts.UpsertItem(ctx, c.ID, variantID, quantity); err != nil {
		return nil, errors.Wrap(err, "upsert cart item")
	}

	return s.carts.GetByUser(ctx, userID)
}

// Clear empties the user's cart without deleting the row. Clearing a cart
// that does not exist is a no-op.
func (s *Service) Clear(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Cart{UserID: userID}, nil
		}
		return nil, errors.Wrap(err, "get cart")
	}

	if err := s.carts.Clear(ctx, c.ID); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}

	return s.carts.GetByUser(ctx, userID)
}

// RemoveItem deletes a variant line from the user's cart.
func (s *Service) RemoveItem(ctx context.Context, userID, variantID string) (*Cart, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}

	if err := s.carts.RemoveItem(ctx, c.ID, variantID); err != nil {
		return nil, errors.Wrap(err, "remove cart item")
	}

	return s.carts.GetByUser(ctx, userID)
}
