package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/catalog"
)

// --- Mock implementations ---

// memCartRepo is a stateful in-memory repository mirroring the version-bump
// rule: every item mutation increments the cart version.
type memCartRepo struct {
	byUser map[string]*Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{byUser: make(map[string]*Cart)}
}

func (m *memCartRepo) GetByUser(_ context.Context, userID string) (*Cart, error) {
	c, ok := m.byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	cp.Items = append([]Item(nil), c.Items...)
	return &cp, nil
}

func (m *memCartRepo) Create(_ context.Context, userID string) (*Cart, error) {
	if c, ok := m.byUser[userID]; ok {
		return c, nil
	}
	c := &Cart{ID: "cart-" + userID, UserID: userID}
	m.byUser[userID] = c
	return c, nil
}

func (m *memCartRepo) findByID(cartID string) *Cart {
	for _, c := range m.byUser {
		if c.ID == cartID {
			return c
		}
	}
	return nil
}

func (m *memCartRepo) UpsertItem(_ context.Context, cartID, variantID string, quantity int) error {
	c := m.findByID(cartID)
	if c == nil {
		return ErrNotFound
	}
	defer func() { c.Version++ }()
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			c.Items[i].Quantity = quantity
			return nil
		}
	}
	c.Items = append(c.Items, Item{VariantID: variantID, Quantity: quantity})
	return nil
}

func (m *memCartRepo) RemoveItem(_ context.Context, cartID, variantID string) error {
	c := m.findByID(cartID)
	if c == nil {
		return ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Version++
			return nil
		}
	}
	return ErrItemNotFound
}

func (m *memCartRepo) Clear(_ context.Context, cartID string) error {
	c := m.findByID(cartID)
	if c == nil {
		return ErrNotFound
	}
	c.Items = nil
	c.Version++
	return nil
}

type mockVariantRepo struct {
	byID map[string]catalog.Variant
}

func (m *mockVariantRepo) GetByID(_ context.Context, id string) (*catalog.Variant, error) {
	v, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &v, nil
}

func (m *mockVariantRepo) GetByIDs(_ context.Context, ids []string) ([]catalog.Variant, error) {
	var out []catalog.Variant
	for _, id := range ids {
		if v, ok := m.byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func newTestService() (*Service, *memCartRepo) {
	carts := newMemCartRepo()
	variants := &mockVariantRepo{byID: map[string]catalog.Variant{
		"tshirt": {ID: "tshirt", SKU: "TS-1", Name: "T-Shirt",
			Price: decimal.NewNullDecimal(decimal.RequireFromString("10.00"))},
		"mug": {ID: "mug", SKU: "MUG-1", Name: "Mug",
			Price: decimal.NewNullDecimal(decimal.RequireFromString("5.00"))},
	}}
	return NewService(carts, variants), carts
}

// --- Tests ---

func TestGet_NoCartYieldsEmpty(t *testing.T) {
	svc, repo := newTestService()

	c, err := svc.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", c.UserID)
	assert.Empty(t, c.Items)

	// Reading never creates the row.
	assert.Empty(t, repo.byUser)
}

func TestSetItem_CreatesCartLazily(t *testing.T) {
	svc, repo := newTestService()

	c, err := svc.SetItem(context.Background(), "alice", "tshirt", 2)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "tshirt", c.Items[0].VariantID)
	assert.Equal(t, 2, c.Items[0].Quantity)

	require.Contains(t, repo.byUser, "alice")
	assert.EqualValues(t, 1, repo.byUser["alice"].Version)
}

func TestSetItem_UpdatesExistingLine(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.SetItem(context.Background(), "alice", "tshirt", 2)
	require.NoError(t, err)

	c, err := svc.SetItem(context.Background(), "alice", "tshirt", 5)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, 5, c.TotalQuantity())

	// Two mutations, two version bumps.
	assert.EqualValues(t, 2, repo.byUser["alice"].Version)
}

func TestSetItem_InvalidQuantity(t *testing.T) {
	svc, _ := newTestService()

	for _, q := range []int{0, -1} {
		_, err := svc.SetItem(context.Background(), "alice", "tshirt", q)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestSetItem_UnknownVariant(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.SetItem(context.Background(), "alice", "ghost", 1)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Empty(t, repo.byUser)
}

func TestRemoveItem(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.SetItem(context.Background(), "alice", "tshirt", 2)
	require.NoError(t, err)
	_, err = svc.SetItem(context.Background(), "alice", "mug", 1)
	require.NoError(t, err)

	c, err := svc.RemoveItem(context.Background(), "alice", "tshirt")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "mug", c.Items[0].VariantID)
}

func TestRemoveItem_MissingLine(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.SetItem(context.Background(), "alice", "tshirt", 1)
	require.NoError(t, err)

	_, err = svc.RemoveItem(context.Background(), "alice", "mug")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveItem_NoCart(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.RemoveItem(context.Background(), "alice", "tshirt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClear(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.SetItem(context.Background(), "alice", "tshirt", 2)
	require.NoError(t, err)
	_, err = svc.SetItem(context.Background(), "alice", "mug", 1)
	require.NoError(t, err)

	c, err := svc.Clear(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	// The row survives with a bumped version.
	stored := repo.byUser["alice"]
	assert.EqualValues(t, 3, stored.Version)
}

func TestClear_NoCartIsNoop(t *testing.T) {
	svc, repo := newTestService()

	c, err := svc.Clear(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Empty(t, repo.byUser)
}

func TestLease(t *testing.T) {
	c := Cart{ID: "cart-1", Version: 42}
	l := c.Lease()
	assert.Equal(t, "cart-1", l.CartID)
	assert.EqualValues(t, 42, l.Version)
}
