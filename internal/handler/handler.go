package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/set-night/sharemitra/internal/metrics"
	"github.com/set-night/sharemitra/internal/middleware"
	"github.com/set-night/sharemitra/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds all dependencies needed by the HTTP endpoints.
type Handler struct {
	submissions    *service.SubmissionService
	tasks          *service.TaskService
	wallets        *service.WalletService
	paymentMethods *service.PaymentMethodService
	payouts        *service.PayoutService
	store          Pinger
	metrics        *metrics.Metrics
	limiter        *middleware.RateLimiter
	corsOrigins    []string
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Submissions    *service.SubmissionService
	Tasks          *service.TaskService
	Wallets        *service.WalletService
	PaymentMethods *service.PaymentMethodService
	Payouts        *service.PayoutService
	Store          Pinger
	Metrics        *metrics.Metrics
	Limiter        *middleware.RateLimiter
	CORSOrigins    []string
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Handler{
		submissions:    deps.Submissions,
		tasks:          deps.Tasks,
		wallets:        deps.Wallets,
		paymentMethods: deps.PaymentMethods,
		payouts:        deps.Payouts,
		store:          deps.Store,
		metrics:        deps.Metrics,
		limiter:        deps.Limiter,
		corsOrigins:    origins,
	}
}

// Routes builds the router with every endpoint registered.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.UserHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.health)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	limited := r.With(h.rateLimit)
	limited.Post("/image/api/verify", h.verifySubmission)
	limited.Post("/payout/withdraw", h.withdraw)

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.createTask)
		r.Get("/", h.listTasks)
		r.Get("/{taskID}", h.getTask)
		r.Patch("/{taskID}", h.updateTask)
		r.Delete("/{taskID}", h.deleteTask)
		r.Put("/{taskID}/hidden", h.setTaskHidden)
	})
	r.Get("/users/{userID}/next-task", h.nextTask)
	r.Get("/users/{userID}/task-history", h.taskHistory)

	r.Get("/wallet/info", h.walletInfo)

	r.Post("/payment/methods", h.savePaymentMethod)
	r.Get("/payment/methods", h.listPaymentMethods)
	r.Delete("/payment/methods/{paymentID}", h.deletePaymentMethod)

	r.Get("/payout/status", h.payoutStatus)
	r.Get("/payouts", h.payoutHistory)

	return r
}

func (h *Handler) rateLimit(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return h.limiter.Handler(next)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			respond(w, http.StatusServiceUnavailable, false, "store unavailable", nil)
			return
		}
	}
	respond(w, http.StatusOK, true, "ok", map[string]bool{"ok": true})
}
