package handler

import "net/http"

func (h *Handler) walletInfo(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.wallets.Read(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, true, "Wallet info retrieved successfully", toWalletView(wallet))
}
