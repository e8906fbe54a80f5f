package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/address"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/cart"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/catalog"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/discount"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/order"
	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/domain/user"
)

// writeDomainErr maps domain failures onto the HTTP surface. Absent entities
// are 404, operations disallowed in the current state are 409, bad caller
// input is 422, and internal inconsistencies stay 500.
func writeDomainErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, address.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, order.ErrNotFound):
		writeErr(w, http.StatusNotFound, trimmed(err))
		return

	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrAddressNotOwned),
		errors.Is(err, cart.ErrConflict),
		errors.Is(err, order.ErrStale):
		writeErr(w, http.StatusConflict, trimmed(err))
		return

	case errors.Is(err, discount.ErrUnknownCode),
		errors.Is(err, discount.ErrCodeInactive),
		errors.Is(err, discount.ErrCodeExpired),
		errors.Is(err, discount.ErrMinSubtotal),
		errors.Is(err, cart.ErrInvalidQuantity):
		writeErr(w, http.StatusUnprocessableEntity, trimmed(err))
		return
	}

	var transition *order.TransitionError
	if errors.As(err, &transition) {
		writeErr(w, http.StatusConflict, transition.Error())
		return
	}

	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeErr(w, http.StatusInternalServerError, "internal error")
}

// trimmed unwraps to the innermost domain error so wrap prefixes added for
// logs do not leak into client messages.
func trimmed(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
