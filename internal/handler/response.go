package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/set-night/sharemitra/internal/domain"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func respond(w http.ResponseWriter, status int, success bool, message string, data any) {
	writeJSON(w, status, envelope{Success: success, Message: message, Data: data})
}

// statusFor maps an error class to the response code.
func statusFor(err error) int {
	if errors.Is(err, domain.ErrBusy) {
		return http.StatusConflict
	}
	switch domain.KindOf(err) {
	case domain.KindInvalidInput, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the error's class. Provider failures carry the
// provider's payload; unknown errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	var ext *domain.ExternalError
	var ledger *domain.PostPayoutLedgerError
	switch {
	case errors.As(err, &ledger):
		respond(w, status, false, "payout was sent but could not be recorded; support has been notified",
			map[string]string{"payout_id": ledger.PayoutID})
	case errors.As(err, &ext):
		respond(w, status, false, ext.Service+" request failed",
			map[string]any{"code": ext.Code, "details": ext.Payload})
	case domain.KindOf(err) == domain.KindInternal:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respond(w, status, false, "internal server error", nil)
	default:
		respond(w, status, false, message(err), nil)
	}
}

// message strips the sentinel prefix from wrapped input errors.
func message(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, domain.ErrInvalidInput.Error()+": "); ok {
		return rest
	}
	return msg
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return domain.Invalid("invalid JSON body")
	}
	return nil
}

// pageParams reads page and per_page. Zero means default.
func pageParams(r *http.Request) (page, perPage int, err error) {
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil {
			return 0, 0, domain.Invalid("page must be an integer")
		}
	}
	if v := q.Get("per_page"); v != "" {
		if perPage, err = strconv.Atoi(v); err != nil {
			return 0, 0, domain.Invalid("per_page must be an integer")
		}
	}
	return page, perPage, nil
}
