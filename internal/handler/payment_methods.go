package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/set-night/sharemitra/internal/service"
)

func (h *Handler) savePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var in service.PaymentMethodInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	pm, err := h.paymentMethods.Save(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, true, "Payment details saved successfully", toPaymentMethodView(pm))
}

func (h *Handler) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.paymentMethods.List(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]paymentMethodView, 0, len(methods))
	for i := range methods {
		views = append(views, toPaymentMethodView(&methods[i]))
	}
	respond(w, http.StatusOK, true, "Payment details retrieved successfully", map[string]any{"payments": views})
}

func (h *Handler) deletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	err := h.paymentMethods.Delete(r.Context(), r.URL.Query().Get("userId"), chi.URLParam(r, "paymentID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, true, "Payment detail deleted successfully", nil)
}
