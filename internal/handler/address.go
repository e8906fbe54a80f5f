package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// ListAddresses returns the calling user's shipping addresses.
func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.addresses.ListByUser(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		writeDomainErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, a := range addrs {
			e.ObjStart()
			e.FieldStart("id")
			e.Str(a.ID)
			e.FieldStart("line1")
			e.Str(a.Line1)
			if a.Line2 != "" {
				e.FieldStart("line2")
				e.Str(a.Line2)
			}
			e.FieldStart("city")
			e.Str(a.City)
			e.FieldStart("postalCode")
			e.Str(a.PostalCode)
			e.FieldStart("country")
			e.Str(a.Country)
			e.ObjEnd()
		}
		e.ArrEnd()
	})
}
