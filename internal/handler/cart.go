package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/cart"
)

// GetCart returns the calling user's basket.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		writeDomainErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCart(e, c) })
}

// ClearCart empties the basket. The cart row survives.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Clear(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		writeDomainErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCart(e, c) })
}

// SetCartItem sets the quantity for one variant line.
func (h *Handler) SetCartItem(w http.ResponseWriter, r *http.Request) {
	var quantity int
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key == "quantity" {
				var err error
				quantity, err = d.Int()
				return err
			}
			return d.Skip()
		})
	})
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.carts.SetItem(r.Context(),
		UserFromContext(r.Context()), chi.URLParam(r, "variantID"), quantity)
	if err != nil {
		writeDomainErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCart(e, c) })
}

// RemoveCartItem deletes one variant line from the basket.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveItem(r.Context(),
		UserFromContext(r.Context()), chi.URLParam(r, "variantID"))
	if err != nil {
		writeDomainErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCart(e, c) })
}

func encodeCart(e *jx.Encoder, c *cart.Cart) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range c.Items {
		e.ObjStart()
		e.FieldStart("variantId")
		e.Str(it.VariantID)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}
