package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/address"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/auth"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/cart"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/catalog"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/discount"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/order"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/user"
)

// --- Mock implementations ---

type mockUserRepo struct {
	users map[string]*user.User
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type mockCartRepo struct {
	byUser map[string]*cart.Cart
}

func (m *mockCartRepo) GetByUser(_ context.Context, userID string) (*cart.Cart, error) {
	c, ok := m.byUser[userID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	cp := *c
	cp.Items = append([]cart.Item(nil), c.Items...)
	return &cp, nil
}

func (m *mockCartRepo) Create(_ context.Context, userID string) (*cart.Cart, error) {
	c := &cart.Cart{ID: "cart-" + userID, UserID: userID}
	m.byUser[userID] = c
	return c, nil
}

func (m *mockCartRepo) UpsertItem(_ context.Context, cartID, variantID string, quantity int) error {
	for _, c := range m.byUser {
		if c.ID != cartID {
			continue
		}
		c.Version++
		for i := range c.Items {
			if c.Items[i].VariantID == variantID {
				c.Items[i].Quantity = quantity
				return nil
			}
		}
		c.Items = append(c.Items, cart.Item{VariantID: variantID, Quantity: quantity})
		return nil
	}
	return cart.ErrNotFound
}

func (m *mockCartRepo) RemoveItem(_ context.Context, cartID, variantID string) error {
	for _, c := range m.byUser {
		if c.ID != cartID {
			continue
		}
		for i := range c.Items {
			if c.Items[i].VariantID == variantID {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
				c.Version++
				return nil
			}
		}
		return cart.ErrItemNotFound
	}
	return cart.ErrNotFound
}

func (m *mockCartRepo) Clear(_ context.Context, cartID string) error {
	for _, c := range m.byUser {
		if c.ID == cartID {
			c.Items = nil
			c.Version++
			return nil
		}
	}
	return cart.ErrNotFound
}

type mockAddressRepo struct {
	byID map[string]*address.ShippingAddress
}

func (m *mockAddressRepo) GetByID(_ context.Context, id string) (*address.ShippingAddress, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, address.ErrNotFound
	}
	return a, nil
}

func (m *mockAddressRepo) ListByUser(_ context.Context, userID string) ([]address.ShippingAddress, error) {
	var out []address.ShippingAddress
	for _, a := range m.byID {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
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

type mockDiscountRepo struct {
	byCode map[string]*discount.Code
}

func (m *mockDiscountRepo) FindByCode(_ context.Context, code string) (*discount.Code, error) {
	c, ok := m.byCode[code]
	if !ok {
		return nil, discount.ErrUnknownCode
	}
	return c, nil
}

type mockOrderRepo struct {
	created []*order.Order
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order, _ cart.Lease) error {
	m.created = append(m.created, o)
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	for _, o := range m.created {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, order.ErrNotFound
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.created {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, from, to order.Status) error {
	for _, o := range m.created {
		if o.ID == id {
			if o.Status != from {
				return order.ErrStale
			}
			o.Status = to
			return nil
		}
	}
	return order.ErrNotFound
}

func (m *mockOrderRepo) UpdatePaymentStatus(_ context.Context, orderID string, from, to order.PaymentStatus) error {
	for _, o := range m.created {
		if o.ID == orderID && o.Payment != nil {
			if o.Payment.Status != from {
				return order.ErrStale
			}
			o.Payment.Status = to
			return nil
		}
	}
	return order.ErrNotFound
}

type mockAPIKeyRepo struct {
	byHash map[string]*auth.APIKeyInfo
}

func (m *mockAPIKeyRepo) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	info, ok := m.byHash[hash]
	if !ok {
		return nil, errors.New("api key not found")
	}
	return info, nil
}

// --- Fixture ---

const (
	testPepper = "test-pepper"
	aliceKey   = "alice-secret"
	bobKey     = "bob-secret"
)

func keyHash(key string) string {
	mac := hmac.New(sha256.New, []byte(testPepper))
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

type apiFixture struct {
	orders *mockOrderRepo
	router http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	users := &mockUserRepo{users: map[string]*user.User{
		"alice": {ID: "alice", Name: "Alice", Email: "alice@example.com"},
		"bob":   {ID: "bob", Name: "Bob", Email: "bob@example.com"},
	}}
	carts := &mockCartRepo{byUser: map[string]*cart.Cart{
		"alice": {
			ID: "cart-alice", UserID: "alice", Version: 1,
			Items: []cart.Item{{VariantID: "tshirt", Quantity: 2}},
		},
	}}
	addresses := &mockAddressRepo{byID: map[string]*address.ShippingAddress{
		"home": {ID: "home", UserID: "alice", Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
	}}
	variants := &mockVariantRepo{byID: map[string]catalog.Variant{
		"tshirt": {ID: "tshirt", SKU: "TS-1", Name: "T-Shirt",
			Price: decimal.NewNullDecimal(decimal.RequireFromString("10.00"))},
	}}
	discounts := &mockDiscountRepo{byCode: map[string]*discount.Code{
		"SAVE10": {Code: "SAVE10", Type: discount.TypeFixed, Value: decimal.NewFromInt(10), Active: true},
	}}
	orders := &mockOrderRepo{}
	apikeys := &mockAPIKeyRepo{byHash: map[string]*auth.APIKeyInfo{
		keyHash(aliceKey): {ID: "key-alice", KeyHash: keyHash(aliceKey), UserID: "alice"},
		keyHash(bobKey):   {ID: "key-bob", KeyHash: keyHash(bobKey), UserID: "bob"},
	}}

	h := NewHandler(
		cart.NewService(carts, variants),
		order.NewCheckoutService(users, carts, addresses, variants, discounts, orders),
		order.NewService(orders),
		addresses,
		NewSecurity(apikeys, []byte(testPepper)),
		nil,
	)
	return &apiFixture{orders: orders, router: h.Routes()}
}

func (f *apiFixture) do(t *testing.T, method, path, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("{}")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if apiKey != "" {
		req.Header.Set("api_key", apiKey)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// --- Tests ---

func TestAuthenticate(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/cart", "wrong-key", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/cart", aliceKey, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetCart(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/cart", aliceKey, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, "tshirt", line["variantId"])
	assert.EqualValues(t, 2, line["quantity"])
}

func TestGetCart_EmptyForNewUser(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/cart", bobKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON(t, rec)["items"])
}

func TestSetCartItem(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPut, "/cart/items/tshirt", aliceKey, `{"quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	items := decodeJSON(t, rec)["items"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, 5, items[0].(map[string]any)["quantity"])
}

func TestSetCartItem_Validation(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPut, "/cart/items/tshirt", aliceKey, `{"quantity":0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPut, "/cart/items/ghost", aliceKey, `{"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPut, "/cart/items/tshirt", aliceKey, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearCart(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodDelete, "/cart", aliceKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON(t, rec)["items"])

	// Clearing a cart that never existed is still OK.
	rec = f.do(t, http.MethodDelete, "/cart", bobKey, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListAddresses(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/addresses", aliceKey, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var addrs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addrs))
	require.Len(t, addrs, 1)
	assert.Equal(t, "home", addrs[0]["id"])

	rec = f.do(t, http.MethodGet, "/addresses", bobKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addrs))
	assert.Empty(t, addrs)
}

func TestRemoveCartItem_MissingLine(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodDelete, "/cart/items/ghost", aliceKey, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckout(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/checkout", aliceKey,
		`{"addressId":"home","discountCode":"SAVE10"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, "created", body["status"])
	assert.Equal(t, "home", body["shippingAddress"])
	assert.InDelta(t, 20.00, body["subtotal"], 0.001)
	assert.InDelta(t, 10.00, body["discount"], 0.001)
	assert.InDelta(t, 10.00, body["total"], 0.001)

	payment := body["payment"].(map[string]any)
	assert.Equal(t, "pending", payment["status"])
	assert.InDelta(t, 10.00, payment["amount"], 0.001)

	require.Len(t, f.orders.created, 1)
}

func TestCheckout_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		body     string
		wantCode int
	}{
		{
			name:     "empty cart conflicts",
			key:      bobKey,
			body:     `{"addressId":"home"}`,
			wantCode: http.StatusConflict,
		},
		{
			name:     "unknown address",
			key:      aliceKey,
			body:     `{"addressId":"nowhere"}`,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "unknown discount code",
			key:      aliceKey,
			body:     `{"addressId":"home","discountCode":"BOGUS"}`,
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "malformed body",
			key:      aliceKey,
			body:     `{{`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodPost, "/checkout", tt.key, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, "body: %s", rec.Body.String())
		})
	}
}

func TestOrders_OwnershipAndLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/checkout", aliceKey, `{"addressId":"home"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decodeJSON(t, rec)["id"].(string)

	// Owner sees the order; another user gets 404, not 403.
	rec = f.do(t, http.MethodGet, "/orders/"+orderID, aliceKey, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/orders/"+orderID, bobKey, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Lifecycle via events.
	rec = f.do(t, http.MethodPost, "/orders/"+orderID+"/events", aliceKey, `{"event":"pay"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "paid", decodeJSON(t, rec)["status"])

	// Illegal move conflicts.
	rec = f.do(t, http.MethodPost, "/orders/"+orderID+"/events", aliceKey, `{"event":"pay"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown event is a validation failure.
	rec = f.do(t, http.MethodPost, "/orders/"+orderID+"/events", aliceKey, `{"event":"refund"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// History lists the order for its owner only.
	rec = f.do(t, http.MethodGet, "/orders", aliceKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, orderID, list[0]["id"])

	rec = f.do(t, http.MethodGet, "/orders", bobKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)
}

func TestCapturePayment(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/checkout", aliceKey, `{"addressId":"home"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decodeJSON(t, rec)["id"].(string)

	rec = f.do(t, http.MethodPost, "/orders/"+orderID+"/payment/capture", aliceKey,
		`{"succeeded":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, "paid", body["status"])
	assert.Equal(t, "completed", body["payment"].(map[string]any)["status"])
}
