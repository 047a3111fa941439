package handler

import (
	"net/http"

	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/service"
	"github.com/shopspring/decimal"
)

type withdrawRequest struct {
	UserID      string              `json:"userId"`
	Amount      decimal.Decimal     `json:"amount"`
	PaymentType *domain.PaymentType `json:"paymentType"`
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.payouts.Withdraw(r.Context(), service.WithdrawRequest{
		UserID:      req.UserID,
		Amount:      req.Amount,
		PaymentType: req.PaymentType,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, true, "Payout initiated successfully", map[string]any{
		"payout_id":         res.Payout.PayoutID,
		"status":            res.Status,
		"amount":            res.Payout.Amount,
		"remaining_balance": res.Balance,
		"payout":            toPayoutView(res.Payout),
	})
}

func (h *Handler) payoutStatus(w http.ResponseWriter, r *http.Request) {
	report, err := h.payouts.Status(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, true, "Payout status retrieved successfully", report)
}

func (h *Handler) payoutHistory(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	payouts, total, err := h.payouts.History(r.Context(), domain.PayoutFilter{
		Keyword: r.URL.Query().Get("keyword"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]payoutView, 0, len(payouts))
	for i := range payouts {
		views = append(views, toPayoutView(&payouts[i]))
	}
	respond(w, http.StatusOK, true, "Payouts retrieved successfully", map[string]any{
		"payouts":       views,
		"total_payouts": total,
		"page":          max(page, 1),
	})
}
