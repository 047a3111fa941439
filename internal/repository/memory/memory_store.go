package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/fingerprint"
	"github.com/shopspring/decimal"
)

// MemoryStore keeps every collection behind a single mutex, so each method
// is atomic across maps the way a PostgreSQL transaction is.
type MemoryStore struct {
	mu             sync.RWMutex
	tasks          map[string]domain.Task
	submissions    map[string]domain.Submission // keyed by taskID + "/" + userID
	wallets        map[string]domain.Wallet
	users          map[string]domain.User
	paymentMethods map[string]domain.PaymentMethod // keyed by payment id
	payouts        map[string]domain.Payout
	now            func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:          make(map[string]domain.Task),
		submissions:    make(map[string]domain.Submission),
		wallets:        make(map[string]domain.Wallet),
		users:          make(map[string]domain.User),
		paymentMethods: make(map[string]domain.PaymentMethod),
		payouts:        make(map[string]domain.Payout),
		now:            time.Now,
	}
}

func submissionKey(taskID, userID string) string {
	return taskID + "/" + userID
}

// SetClock replaces the time source used for created/updated stamps.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// PutUser stores a user as the registration service would.
func (s *MemoryStore) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.FundAccounts == nil {
		u.FundAccounts = map[domain.PaymentType]string{}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.UserID] = u
}

// PutWallet creates or replaces a wallet with the given balance and no
// credit history.
func (s *MemoryStore) PutWallet(userID string, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.wallets[userID] = domain.Wallet{
		UserID:       userID,
		TotalEarning: balance,
		Withdrawn:    decimal.Zero,
		Balance:      balance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// --- tasks ---

func (s *MemoryStore) CreateTask(_ context.Context, t *domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.TaskID]; ok {
		return nil, fmt.Errorf("create task: duplicate id %s", t.TaskID)
	}
	now := s.now()
	cp := *t
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.tasks[cp.TaskID] = cp
	return &cp, nil
}

func (s *MemoryStore) GetTask(_ context.Context, taskID string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (s *MemoryStore) UpdateTask(_ context.Context, taskID string, upd domain.TaskUpdate) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.ExpectedLink != nil {
		t.ExpectedLink = *upd.ExpectedLink
	}
	if upd.LinkTitle != nil {
		t.LinkTitle = *upd.LinkTitle
	}
	if upd.Price != nil {
		t.Price = *upd.Price
	}
	t.UpdatedAt = s.now()
	s.tasks[taskID] = t
	return &t, nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[taskID]; !ok {
		return domain.ErrTaskNotFound
	}
	for _, sub := range s.submissions {
		if sub.TaskID == taskID {
			return domain.ErrTaskHasSubmissions
		}
	}
	delete(s.tasks, taskID)
	return nil
}

func (s *MemoryStore) SetTaskHidden(_ context.Context, taskID string, hidden bool) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	t.Hidden = hidden
	t.UpdatedAt = s.now()
	s.tasks[taskID] = t
	return &t, nil
}

func (s *MemoryStore) SetTaskLastStatus(_ context.Context, taskID string, status domain.SubmissionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[taskID]; ok {
		t.LastSubmissionStatus = status
		t.UpdatedAt = s.now()
		s.tasks[taskID] = t
	}
	return nil
}

func taskMatches(t domain.Task, keyword string) bool {
	if keyword == "" {
		return true
	}
	kw := strings.ToLower(keyword)
	for _, field := range []string{t.Title, t.Description, t.ExpectedLink, string(t.LastSubmissionStatus)} {
		if strings.Contains(strings.ToLower(field), kw) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) sortedTasks() []domain.Task {
	out := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b domain.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.TaskID, b.TaskID)
	})
	return out
}

func (s *MemoryStore) ListTasks(_ context.Context, f domain.TaskFilter) ([]domain.Task, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []domain.Task
	for _, t := range s.sortedTasks() {
		if taskMatches(t, f.Keyword) {
			matched = append(matched, t)
		}
	}
	return paginate(matched, f.Page, f.PerPage), int64(len(matched)), nil
}

func (s *MemoryStore) NextTaskForUser(_ context.Context, userID string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.sortedTasks() {
		if sub, ok := s.submissions[submissionKey(t.TaskID, userID)]; ok && sub.Verified {
			continue
		}
		return &t, nil
	}
	return nil, domain.ErrTaskNotFound
}

// --- submissions ---

func (s *MemoryStore) HasAcceptedSubmission(_ context.Context, taskID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[submissionKey(taskID, userID)]
	return ok && sub.Verified, nil
}

func (s *MemoryStore) ListTaskFingerprints(_ context.Context, taskID string) ([]domain.FingerprintEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskFingerprints(taskID), nil
}

func (s *MemoryStore) taskFingerprints(taskID string) []domain.FingerprintEntry {
	var out []domain.FingerprintEntry
	for _, sub := range s.submissions {
		if sub.TaskID == taskID && sub.Verified {
			out = append(out, domain.FingerprintEntry{UserID: sub.UserID, Fingerprint: sub.Fingerprint})
		}
	}
	return out
}

func (s *MemoryStore) AcceptSubmission(ctx context.Context, sub *domain.Submission, threshold int, credit domain.LedgerStep) (*domain.Submission, *domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := submissionKey(sub.TaskID, sub.UserID)
	if _, ok := s.submissions[key]; ok {
		return nil, nil, domain.ErrAlreadyCompleted
	}
	for _, e := range s.taskFingerprints(sub.TaskID) {
		if e.UserID != sub.UserID && fingerprint.Similar(fingerprint.Code(sub.Fingerprint), fingerprint.Code(e.Fingerprint), threshold) {
			return nil, nil, domain.ErrDuplicateEvidence
		}
	}

	tx := s.begin()
	w, err := credit(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	tx.commit()

	rec := *sub
	rec.Verified = true
	if rec.VerifiedAt.IsZero() {
		rec.VerifiedAt = s.now()
	}
	s.submissions[key] = rec
	return &rec, w, nil
}

func (s *MemoryStore) ListUserSubmissions(_ context.Context, userID string) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Submission
	for _, sub := range s.submissions {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	slices.SortFunc(out, func(a, b domain.Submission) int { return b.VerifiedAt.Compare(a.VerifiedAt) })
	return out, nil
}

// --- wallets ---

func copyWallet(w domain.Wallet) *domain.Wallet {
	w.Credits = slices.Clone(w.Credits)
	return &w
}

func (s *MemoryStore) GetWallet(_ context.Context, userID string) (*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[userID]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return copyWallet(w), nil
}

// memTx stages wallet changes made by a ledger step. The store mutex is
// held by the caller for its whole life; commit publishes the changes.
type memTx struct {
	s       *MemoryStore
	wallets map[string]domain.Wallet
}

func (s *MemoryStore) begin() *memTx {
	return &memTx{s: s, wallets: make(map[string]domain.Wallet)}
}

func (tx *memTx) wallet(userID string) (domain.Wallet, bool) {
	if w, ok := tx.wallets[userID]; ok {
		return w, true
	}
	w, ok := tx.s.wallets[userID]
	return w, ok
}

func (tx *memTx) Credit(_ context.Context, userID, taskID string, amount decimal.Decimal) (*domain.Wallet, error) {
	w, ok := tx.wallet(userID)
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	now := tx.s.now()
	w.TotalEarning = w.TotalEarning.Add(amount)
	w.Balance = w.Balance.Add(amount)
	w.Credits = append(slices.Clone(w.Credits), domain.WalletCredit{TaskID: taskID, Amount: amount, CreatedAt: now})
	w.UpdatedAt = now
	tx.wallets[userID] = w
	return copyWallet(w), nil
}

func (tx *memTx) Debit(_ context.Context, userID string, amount decimal.Decimal) (*domain.Wallet, error) {
	w, ok := tx.wallet(userID)
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	if w.Balance.LessThan(amount) {
		return nil, domain.ErrInsufficientBalance
	}
	w.Balance = w.Balance.Sub(amount)
	w.Withdrawn = w.Withdrawn.Add(amount)
	w.UpdatedAt = tx.s.now()
	tx.wallets[userID] = w
	return copyWallet(w), nil
}

func (tx *memTx) commit() {
	for id, w := range tx.wallets {
		tx.s.wallets[id] = w
	}
}

// Apply runs step in its own transaction. Tests use it to move money
// without a submission or payout record.
func (s *MemoryStore) Apply(ctx context.Context, step domain.LedgerStep) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.begin()
	w, err := step(ctx, tx)
	if err != nil {
		return nil, err
	}
	tx.commit()
	return w, nil
}

// --- users and payment methods ---

func (s *MemoryStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.FundAccounts = cloneMap(u.FundAccounts)
	return &u, nil
}

func cloneMap(m map[domain.PaymentType]string) map[domain.PaymentType]string {
	out := make(map[domain.PaymentType]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) SetContactID(_ context.Context, userID, contactID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ContactID = contactID
	s.users[userID] = u
	return nil
}

func (s *MemoryStore) SetFundAccountID(_ context.Context, userID string, t domain.PaymentType, fundAccountID string) error {
	if !t.Valid() {
		return domain.Invalid("unknown payment type %d", t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.FundAccounts = cloneMap(u.FundAccounts)
	u.FundAccounts[t] = fundAccountID
	s.users[userID] = u
	return nil
}

func (s *MemoryStore) UpsertPaymentMethod(_ context.Context, pm *domain.PaymentMethod) (*domain.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[pm.UserID]; !ok {
		return nil, fmt.Errorf("upsert payment method: %w", domain.ErrUserNotFound)
	}
	now := s.now()
	for id, existing := range s.paymentMethods {
		if existing.UserID == pm.UserID && existing.Method == pm.Method {
			cp := *pm
			cp.PaymentID = id
			cp.CreatedAt = existing.CreatedAt
			cp.UpdatedAt = now
			s.paymentMethods[id] = cp
			return &cp, nil
		}
	}
	cp := *pm
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.paymentMethods[cp.PaymentID] = cp
	return &cp, nil
}

func (s *MemoryStore) GetPaymentMethod(_ context.Context, userID string, t domain.PaymentType) (*domain.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, pm := range s.paymentMethods {
		if pm.UserID == userID && pm.Method == t {
			return &pm, nil
		}
	}
	return nil, domain.ErrNoPaymentMethod
}

func (s *MemoryStore) ListPaymentMethods(_ context.Context, userID string) ([]domain.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PaymentMethod
	for _, pm := range s.paymentMethods {
		if pm.UserID == userID {
			out = append(out, pm)
		}
	}
	slices.SortFunc(out, func(a, b domain.PaymentMethod) int { return int(a.Method) - int(b.Method) })
	return out, nil
}

func (s *MemoryStore) DeletePaymentMethod(_ context.Context, userID, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pm, ok := s.paymentMethods[paymentID]
	if !ok || pm.UserID != userID {
		return domain.ErrPaymentNotFound
	}
	delete(s.paymentMethods, paymentID)
	return nil
}

// --- payouts ---

func (s *MemoryStore) RecordPayout(ctx context.Context, p *domain.Payout, debit domain.LedgerStep) (*domain.Payout, *domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payouts[p.PayoutID]; ok {
		return nil, nil, fmt.Errorf("create payout: duplicate id %s", p.PayoutID)
	}
	tx := s.begin()
	w, err := debit(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	tx.commit()
	now := s.now()
	cp := *p
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.payouts[cp.PayoutID] = cp
	return &cp, w, nil
}

func (s *MemoryStore) sortedPayouts(desc bool) []domain.Payout {
	out := make([]domain.Payout, 0, len(s.payouts))
	for _, p := range s.payouts {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Payout) int {
		c := a.CreatedAt.Compare(b.CreatedAt)
		if c == 0 {
			c = strings.Compare(a.PayoutID, b.PayoutID)
		}
		if desc {
			return -c
		}
		return c
	})
	return out
}

func (s *MemoryStore) ListUserPayouts(_ context.Context, userID string) ([]domain.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Payout
	for _, p := range s.sortedPayouts(true) {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdatePayoutStatus(_ context.Context, payoutID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.payouts[payoutID]; ok {
		p.StatusDetail = status
		p.UpdatedAt = s.now()
		s.payouts[payoutID] = p
	}
	return nil
}

func (s *MemoryStore) ListUnsettledPayouts(_ context.Context, limit int) ([]domain.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Payout
	for _, p := range s.sortedPayouts(false) {
		if domain.Settled(p.StatusDetail) {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) SearchPayouts(_ context.Context, f domain.PayoutFilter) ([]domain.Payout, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kw := strings.ToLower(f.Keyword)
	var matched []domain.Payout
	for _, p := range s.sortedPayouts(true) {
		p.UserName = s.users[p.UserID].Name
		if kw == "" ||
			strings.Contains(strings.ToLower(p.UserID), kw) ||
			strings.Contains(strings.ToLower(p.UserName), kw) {
			matched = append(matched, p)
		}
	}
	return paginate(matched, f.Page, f.PerPage), int64(len(matched)), nil
}

func paginate[T any](items []T, page, perPage int) []T {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		return items
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}
	end := min(start+perPage, len(items))
	return items[start:end]
}
