package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/order"
)

// ListOrders returns the calling user's order history, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		writeDomainErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range orders {
			encodeOrder(e, &orders[i])
		}
		e.ArrEnd()
	})
}

// GetOrder returns one of the calling user's orders.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.userOrder(r)
	if err != nil {
		writeDomainErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// AdvanceOrder applies a lifecycle event (pay, ship, deliver, cancel) to one
// of the calling user's orders.
func (h *Handler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	var eventName string
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key == "event" {
				var err error
				eventName, err = d.Str()
				return err
			}
			return d.Skip()
		})
	})
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := order.ParseEvent(eventName)
	if err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if _, err := h.userOrder(r); err != nil {
		writeDomainErr(w, r, err)
		return
	}

	o, err := h.orders.Advance(r.Context(), chi.URLParam(r, "orderID"), event)
	if err != nil {
		writeDomainErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// CapturePayment records an external capture outcome for the order's
// payment.
func (h *Handler) CapturePayment(w http.ResponseWriter, r *http.Request) {
	succeeded := true
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key == "succeeded" {
				var err error
				succeeded, err = d.Bool()
				return err
			}
			return d.Skip()
		})
	})
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.userOrder(r); err != nil {
		writeDomainErr(w, r, err)
		return
	}

	o, err := h.orders.RecordCapture(r.Context(), chi.URLParam(r, "orderID"), succeeded)
	if err != nil {
		writeDomainErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("shippingAddress")
	e.Str(o.ShippingAddress())
	e.FieldStart("subtotal")
	e.Float64(o.Subtotal.InexactFloat64())
	if o.DiscountCode != "" {
		e.FieldStart("discountCode")
		e.Str(o.DiscountCode)
	}
	e.FieldStart("discount")
	e.Float64(o.DiscountAmount.InexactFloat64())
	e.FieldStart("total")
	e.Float64(o.Total.InexactFloat64())
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.Format(time.RFC3339))

	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		e.ObjStart()
		e.FieldStart("variantId")
		e.Str(it.VariantID)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("unitPrice")
		e.Float64(it.UnitPrice.InexactFloat64())
		e.ObjEnd()
	}
	e.ArrEnd()

	if o.Payment != nil {
		e.FieldStart("payment")
		e.ObjStart()
		e.FieldStart("id")
		e.Str(o.Payment.ID)
		e.FieldStart("method")
		e.Str(o.Payment.Method)
		e.FieldStart("amount")
		e.Float64(o.Payment.Amount.InexactFloat64())
		e.FieldStart("status")
		e.Str(string(o.Payment.Status))
		e.ObjEnd()
	}
	e.ObjEnd()
}
