package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/order"
)

// Checkout converts the calling user's cart into an order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	req := order.CreateOrderRequest{
		UserID:        UserFromContext(r.Context()),
		PaymentMethod: "card",
	}
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "addressId":
				req.AddressID, err = d.Str()
			case "discountCode":
				req.DiscountCode, err = d.Str()
			case "paymentMethod":
				req.PaymentMethod, err = d.Str()
			default:
				err = d.Skip()
			}
			return err
		})
	})
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.checkout.CreateOrder(r.Context(), req)
	if err != nil {
		writeDomainErr(w, r, err)
		return
	}

	if h.ordersPlaced != nil {
		h.ordersPlaced.Add(r.Context(), 1,
			metric.WithAttributes(attribute.Bool("discounted", o.DiscountCode != "")))
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeOrder(e, o) })
}
