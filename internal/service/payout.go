package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/set-night/sharemitra/internal/config"
	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/events"
	"github.com/set-night/sharemitra/internal/lock"
	"github.com/set-night/sharemitra/internal/metrics"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

// PayoutProvider is the money-movement API. *RazorpayService implements it.
type PayoutProvider interface {
	CreateContact(ctx context.Context, u *domain.User, phone string) (string, error)
	CreateFundAccount(ctx context.Context, contactID string, pm *domain.PaymentMethod) (string, error)
	CreatePayout(ctx context.Context, fundAccountID string, t domain.PaymentType, amount decimal.Decimal, referenceID string) (*ProviderPayout, error)
	FetchPayout(ctx context.Context, payoutID string) (*ProviderPayout, error)
}

type payoutStore interface {
	UserStore
	WalletStore
	PayoutStore
}

const (
	phoneRegion      = "IN"
	ledgerTimeout    = 10 * time.Second
	withdrawLockPref = "withdraw:"
)

type WithdrawRequest struct {
	UserID      string              `json:"userId" validate:"required"`
	Amount      decimal.Decimal     `json:"amount"`
	PaymentType *domain.PaymentType `json:"paymentType" validate:"required,oneof=0 1"`
}

type WithdrawResult struct {
	Payout  *domain.Payout
	Status  string
	Balance decimal.Decimal
}

type PayoutView struct {
	PayoutID     string          `json:"payout_id"`
	Amount       decimal.Decimal `json:"amount"`
	WithdrawTime time.Time       `json:"withdraw_time"`
	Mode         string          `json:"mode"`
	Status       string          `json:"status"`
}

type PayoutStatusReport struct {
	UserID            string          `json:"userId"`
	TotalPayouts      int             `json:"total_payouts"`
	TotalPayoutAmount decimal.Decimal `json:"total_payout_amount"`
	Payouts           []PayoutView    `json:"payouts"`
}

type PayoutService struct {
	store    payoutStore
	provider PayoutProvider
	wallets  *WalletService
	locker   lock.Locker
	events   events.Publisher
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewPayoutService(store payoutStore, provider PayoutProvider, wallets *WalletService, locker lock.Locker, pub events.Publisher, notifier Notifier, m *metrics.Metrics) *PayoutService {
	if pub == nil {
		pub = events.Nop{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &PayoutService{
		store:    store,
		provider: provider,
		wallets:  wallets,
		locker:   locker,
		events:   pub,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// Withdraw moves money out of a wallet. Every failure before the provider
// accepts the payout leaves the wallet untouched; the debit and the payout
// record are written together only after acceptance.
func (s *PayoutService) Withdraw(ctx context.Context, req WithdrawRequest) (*WithdrawResult, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() || !req.Amount.Equal(req.Amount.Round(2)) {
		return nil, domain.ErrInvalidAmount
	}
	t := *req.PaymentType

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, withdrawLockPref+req.UserID, config.WithdrawLockTTL)
		if err != nil {
			s.metrics.Payout("busy")
			return nil, err
		}
		defer release()
	}

	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	wallet, err := s.store.GetWallet(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if wallet.Balance.LessThan(req.Amount) {
		s.metrics.Payout("insufficient_balance")
		return nil, domain.ErrInsufficientBalance
	}

	pm, err := s.store.GetPaymentMethod(ctx, req.UserID, t)
	if err != nil {
		return nil, err
	}

	contactID, err := s.ensureContact(ctx, user)
	if err != nil {
		s.fail("contact_failed", err, req.UserID)
		return nil, err
	}

	fundAccountID, err := s.ensureFundAccount(ctx, user, contactID, pm)
	if err != nil {
		s.fail("fund_account_failed", err, req.UserID)
		return nil, err
	}

	referenceID := s.referenceID(req.UserID)
	pp, err := s.provider.CreatePayout(ctx, fundAccountID, t, req.Amount, referenceID)
	if err != nil {
		s.fail("payout_failed", err, req.UserID)
		return nil, err
	}

	sent := s.acceptedAmount(pp, req)

	// The provider has the money now. Finish the ledger write even if the
	// caller goes away.
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ledgerTimeout)
	defer cancel()

	payout, wallet, err := s.store.RecordPayout(lctx, &domain.Payout{
		PayoutID:        pp.ID,
		UserID:          req.UserID,
		Amount:          sent,
		StatusDetail:    pp.Status,
		FundAccountID:   fundAccountID,
		FundAccountType: t.FundAccountType(),
		ReferenceID:     referenceID,
	}, s.wallets.Debit(req.UserID, sent))
	if err != nil {
		ledgerErr := &domain.PostPayoutLedgerError{PayoutID: pp.ID, UserID: req.UserID, Err: err}
		slog.Error("payout accepted but ledger write failed",
			"payout_id", pp.ID, "user_id", req.UserID, "amount", sent.String(), "error", err)
		s.notifier.LogLedgerFailure(ledgerErr, sent)
		s.metrics.Payout("ledger_failed")
		return nil, ledgerErr
	}

	s.metrics.Payout("ok")
	slog.Info("payout created",
		"payout_id", payout.PayoutID, "user_id", payout.UserID,
		"amount", payout.Amount.String(), "status", payout.StatusDetail)
	s.notifier.LogPayout(payout, wallet.Balance)
	s.publish(ctx, events.TypePayoutCreated, payout, "")

	return &WithdrawResult{
		Payout:  payout,
		Status:  domain.DisplayStatus(payout.StatusDetail),
		Balance: wallet.Balance,
	}, nil
}

// acceptedAmount is what the provider says it will send, converted back
// from paise. A disagreement with the request is alerted and the provider's
// figure wins, since that is the money leaving the account.
func (s *PayoutService) acceptedAmount(pp *ProviderPayout, req WithdrawRequest) decimal.Decimal {
	if pp.Amount <= 0 {
		return req.Amount
	}
	got := FromMinorUnits(pp.Amount)
	if got.Equal(req.Amount) {
		return req.Amount
	}
	err := fmt.Errorf("payout %s accepted for %s, requested %s", pp.ID, got.StringFixed(2), req.Amount.StringFixed(2))
	slog.Error("provider payout amount mismatch",
		"payout_id", pp.ID, "user_id", req.UserID, "requested", req.Amount.String(), "accepted", got.String())
	s.notifier.LogError(err, "withdraw "+req.UserID)
	return got
}

// Status re-polls the provider for the user's unsettled payouts and
// reports all of them with display statuses.
func (s *PayoutService) Status(ctx context.Context, userID string) (*PayoutStatusReport, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.Invalid("userId is required")
	}
	payouts, err := s.store.ListUserPayouts(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &PayoutStatusReport{
		UserID:            userID,
		TotalPayoutAmount: decimal.Zero,
		Payouts:           make([]PayoutView, 0, len(payouts)),
	}
	for i := range payouts {
		p := &payouts[i]
		if !domain.Settled(p.StatusDetail) {
			s.refresh(ctx, p)
		}
		report.TotalPayoutAmount = report.TotalPayoutAmount.Add(p.Amount)
		report.Payouts = append(report.Payouts, PayoutView{
			PayoutID:     p.PayoutID,
			Amount:       p.Amount,
			WithdrawTime: p.CreatedAt,
			Mode:         p.Mode(),
			Status:       domain.DisplayStatus(p.StatusDetail),
		})
	}
	report.TotalPayouts = len(report.Payouts)
	return report, nil
}

// History is the operator search over all payouts.
func (s *PayoutService) History(ctx context.Context, f domain.PayoutFilter) ([]domain.Payout, int64, error) {
	f.Keyword = strings.TrimSpace(f.Keyword)
	f.Page, f.PerPage = normalizePage(f.Page, f.PerPage)
	return s.store.SearchPayouts(ctx, f)
}

// Reconcile polls one batch of unsettled payouts and returns how many
// changed status.
func (s *PayoutService) Reconcile(ctx context.Context) (int, error) {
	payouts, err := s.store.ListUnsettledPayouts(ctx, config.ReconcileBatch)
	if err != nil {
		return 0, fmt.Errorf("list unsettled payouts: %w", err)
	}
	changed := 0
	for i := range payouts {
		if ctx.Err() != nil {
			break
		}
		if s.refresh(ctx, &payouts[i]) {
			changed++
		}
	}
	return changed, nil
}

// RunReconciler calls Reconcile every interval until ctx is done.
func (s *PayoutService) RunReconciler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Reconcile(ctx)
			if err != nil {
				slog.Error("reconcile payouts", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("payout statuses reconciled", "changed", n)
			}
		}
	}
}

// refresh fetches the provider status and stores it when it changed. The
// debit is never touched.
func (s *PayoutService) refresh(ctx context.Context, p *domain.Payout) bool {
	pp, err := s.provider.FetchPayout(ctx, p.PayoutID)
	if err != nil {
		slog.Warn("failed to fetch payout status", "payout_id", p.PayoutID, "error", err)
		return false
	}
	if pp.Status == "" || pp.Status == p.StatusDetail {
		return false
	}
	if err := s.store.UpdatePayoutStatus(ctx, p.PayoutID, pp.Status); err != nil {
		slog.Error("failed to store payout status", "payout_id", p.PayoutID, "status", pp.Status, "error", err)
		return false
	}
	from := p.StatusDetail
	p.StatusDetail = pp.Status
	s.metrics.StatusUpdated()
	s.notifier.LogStatusChange(p, from)
	s.publish(ctx, events.TypePayoutStatusChanged, p, from)
	return true
}

func (s *PayoutService) ensureContact(ctx context.Context, u *domain.User) (string, error) {
	if u.ContactID != "" {
		return u.ContactID, nil
	}
	contactID, err := s.provider.CreateContact(ctx, u, normalizePhone(u.Phone))
	if err != nil {
		return "", err
	}
	if err := s.store.SetContactID(ctx, u.UserID, contactID); err != nil {
		slog.Error("failed to save contact id", "user_id", u.UserID, "contact_id", contactID, "error", err)
	}
	u.ContactID = contactID
	return contactID, nil
}

func (s *PayoutService) ensureFundAccount(ctx context.Context, u *domain.User, contactID string, pm *domain.PaymentMethod) (string, error) {
	if id := u.FundAccountID(pm.Method); id != "" {
		return id, nil
	}
	id, err := s.provider.CreateFundAccount(ctx, contactID, pm)
	if err != nil {
		return "", err
	}
	if err := s.store.SetFundAccountID(ctx, u.UserID, pm.Method, id); err != nil {
		slog.Error("failed to save fund account id", "user_id", u.UserID, "fund_account_id", id, "error", err)
	}
	return id, nil
}

// referenceID is pay_<last 6 of user id>_<unix seconds>.
func (s *PayoutService) referenceID(userID string) string {
	tail := userID
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return fmt.Sprintf("pay_%s_%d", tail, s.now().Unix())
}

func (s *PayoutService) fail(outcome string, err error, userID string) {
	s.metrics.Payout(outcome)
	var ext *domain.ExternalError
	if errors.As(err, &ext) {
		slog.Error("payout provider call failed", "user_id", userID, "code", ext.Code, "payload", ext.Payload, "error", ext.Err)
	} else {
		slog.Error("payout provider call failed", "user_id", userID, "error", err)
	}
	s.notifier.LogError(err, "withdraw "+userID)
}

func (s *PayoutService) publish(ctx context.Context, typ string, p *domain.Payout, from string) {
	data := map[string]any{
		"payout_id":     p.PayoutID,
		"user_id":       p.UserID,
		"amount":        p.Amount.String(),
		"status_detail": p.StatusDetail,
		"status":        domain.DisplayStatus(p.StatusDetail),
	}
	if from != "" {
		data["previous_status_detail"] = from
	}
	if err := s.events.Publish(ctx, events.Event{Type: typ, Key: p.UserID, Data: data}); err != nil {
		slog.Warn("failed to publish payout event", "type", typ, "payout_id", p.PayoutID, "error", err)
	}
}

// normalizePhone returns E.164 for a valid Indian number and "" otherwise,
// so a bad profile phone never blocks contact creation.
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := libphonenumber.Parse(raw, phoneRegion)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		slog.Warn("ignoring invalid phone number for payout contact", "error", err)
		return ""
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = config.DefaultPerPage
	}
	if perPage > config.MaxPerPage {
		perPage = config.MaxPerPage
	}
	return page, perPage
}
