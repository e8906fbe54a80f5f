// Package handler exposes the HTTP API: cart management, checkout, and order
// lifecycle endpoints. All business rules live in the domain packages; this
// layer only decodes requests, resolves the calling user, and maps domain
// errors to status codes.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/metric"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/address"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/cart"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/order"
)

// Handler holds the domain services behind the HTTP API.
type Handler struct {
	carts     *cart.Service
	checkout  *order.CheckoutService
	orders    *order.Service
	addresses address.Repository
	security  *Security

	ordersPlaced metric.Int64Counter
}

// NewHandler constructs a Handler with the required domain services.
func NewHandler(
	carts *cart.Service,
	checkout *order.CheckoutService,
	orders *order.Service,
	addresses address.Repository,
	security *Security,
	ordersPlaced metric.Int64Counter,
) *Handler {
	return &Handler{
		carts:        carts,
		checkout:     checkout,
		orders:       orders,
		addresses:    addresses,
		security:     security,
		ordersPlaced: ordersPlaced,
	}
}

// Routes mounts all API endpoints. Every route requires an authenticated
// API key; the resolved user id is what the domain operations act on.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(h.security.Authenticate)

		r.Get("/cart", h.GetCart)
		r.Delete("/cart", h.ClearCart)
		r.Put("/cart/items/{variantID}", h.SetCartItem)
		r.Delete("/cart/items/{variantID}", h.RemoveCartItem)

		r.Get("/addresses", h.ListAddresses)

		r.Post("/checkout", h.Checkout)

		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{orderID}", h.GetOrder)
		r.Post("/orders/{orderID}/events", h.AdvanceOrder)
		r.Post("/orders/{orderID}/payment/capture", h.CapturePayment)
	})
	return r
}

func (h *Handler) userOrder(r *http.Request) (*order.Order, error) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		return nil, err
	}
	// Foreign orders are indistinguishable from absent ones.
	if o.UserID != UserFromContext(r.Context()) {
		return nil, order.ErrNotFound
	}
	return o, nil
}
