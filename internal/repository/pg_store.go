package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/fingerprint"
	"github.com/set-night/sharemitra/internal/repository/sqlc"
	"github.com/shopspring/decimal"
)

// PGStore is the PostgreSQL implementation of the service stores.
type PGStore struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db, queries: sqlc.New(db)}
}

func (s *PGStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// --- tasks ---

func (s *PGStore) CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	row, err := s.queries.CreateTask(ctx, sqlc.CreateTaskParams{
		TaskID:       t.TaskID,
		Title:        t.Title,
		Description:  t.Description,
		ExpectedLink: t.ExpectedLink,
		LinkTitle:    t.LinkTitle,
		Price:        t.Price,
		Hidden:       t.Hidden,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return rowToTask(row), nil
}

func (s *PGStore) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	row, err := s.queries.GetTask(ctx, taskID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return rowToTask(row), nil
}

func (s *PGStore) UpdateTask(ctx context.Context, taskID string, upd domain.TaskUpdate) (*domain.Task, error) {
	params := sqlc.UpdateTaskParams{
		Title:        upd.Title,
		Description:  upd.Description,
		ExpectedLink: upd.ExpectedLink,
		LinkTitle:    upd.LinkTitle,
		TaskID:       taskID,
	}
	if upd.Price != nil {
		params.Price = decimal.NullDecimal{Decimal: *upd.Price, Valid: true}
	}
	row, err := s.queries.UpdateTask(ctx, params)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return rowToTask(row), nil
}

func (s *PGStore) DeleteTask(ctx context.Context, taskID string) error {
	n, err := s.queries.DeleteTask(ctx, taskID)
	if err != nil {
		if isTaskReferenced(err) {
			return domain.ErrTaskHasSubmissions
		}
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (s *PGStore) SetTaskHidden(ctx context.Context, taskID string, hidden bool) (*domain.Task, error) {
	row, err := s.queries.SetTaskHidden(ctx, sqlc.SetTaskHiddenParams{TaskID: taskID, Hidden: hidden})
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("set task hidden: %w", err)
	}
	return rowToTask(row), nil
}

func (s *PGStore) SetTaskLastStatus(ctx context.Context, taskID string, status domain.SubmissionStatus) error {
	if err := s.queries.SetTaskLastStatus(ctx, sqlc.SetTaskLastStatusParams{
		TaskID:               taskID,
		LastSubmissionStatus: string(status),
	}); err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	return nil
}

func (s *PGStore) ListTasks(ctx context.Context, f domain.TaskFilter) ([]domain.Task, int64, error) {
	lim, off := pageBounds(f.Page, f.PerPage)
	rows, err := s.queries.ListTasks(ctx, sqlc.ListTasksParams{Keyword: f.Keyword, Lim: lim, Off: off})
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	total, err := s.queries.CountTasks(ctx, f.Keyword)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}
	tasks := make([]domain.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, *rowToTask(r))
	}
	return tasks, total, nil
}

func (s *PGStore) NextTaskForUser(ctx context.Context, userID string) (*domain.Task, error) {
	row, err := s.queries.NextTaskForUser(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("next task: %w", err)
	}
	return rowToTask(row), nil
}

// --- submissions ---

func (s *PGStore) HasAcceptedSubmission(ctx context.Context, taskID, userID string) (bool, error) {
	ok, err := s.queries.HasAcceptedSubmission(ctx, sqlc.HasAcceptedSubmissionParams{TaskID: taskID, UserID: userID})
	if err != nil {
		return false, fmt.Errorf("check submission: %w", err)
	}
	return ok, nil
}

func (s *PGStore) ListTaskFingerprints(ctx context.Context, taskID string) ([]domain.FingerprintEntry, error) {
	rows, err := s.queries.ListTaskFingerprints(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list fingerprints: %w", err)
	}
	out := make([]domain.FingerprintEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.FingerprintEntry{UserID: r.UserID, Fingerprint: fingerprintFromDB(r.Fingerprint)})
	}
	return out, nil
}

// AcceptSubmission writes the accepted record and runs credit in one
// transaction. Submissions of the same task are serialized by an advisory
// lock so the fingerprint check and the insert cannot interleave. A failed
// credit, a missing wallet included, rolls the record back too.
func (s *PGStore) AcceptSubmission(ctx context.Context, sub *domain.Submission, threshold int, credit domain.LedgerStep) (*domain.Submission, *domain.Wallet, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)

	if err := qtx.LockTaskSubmissions(ctx, sub.TaskID); err != nil {
		return nil, nil, fmt.Errorf("lock task: %w", err)
	}

	existing, err := qtx.ListTaskFingerprints(ctx, sub.TaskID)
	if err != nil {
		return nil, nil, fmt.Errorf("list fingerprints: %w", err)
	}
	for _, e := range existing {
		if e.UserID == sub.UserID {
			return nil, nil, domain.ErrAlreadyCompleted
		}
		if fingerprint.Similar(fingerprint.Code(sub.Fingerprint), fingerprint.Code(fingerprintFromDB(e.Fingerprint)), threshold) {
			return nil, nil, domain.ErrDuplicateEvidence
		}
	}

	verifiedAt := sub.VerifiedAt
	if verifiedAt.IsZero() {
		verifiedAt = time.Now()
	}
	row, err := qtx.CreateSubmission(ctx, sqlc.CreateSubmissionParams{
		SubmissionID:     sub.SubmissionID,
		TaskID:           sub.TaskID,
		UserID:           sub.UserID,
		Fingerprint:      fingerprintToDB(sub.Fingerprint),
		ParticipantCount: int32(sub.ParticipantCount),
		MatchedLink:      sub.MatchedLink,
		TaskTitle:        sub.TaskTitle,
		Verified:         true,
		VerifiedAt:       timeToPgTimestamptz(verifiedAt),
		PriceAwarded:     sub.PriceAwarded,
	})
	if err != nil {
		if isTaskUserConflict(err) {
			return nil, nil, domain.ErrAlreadyCompleted
		}
		return nil, nil, fmt.Errorf("create submission: %w", err)
	}

	wallet, err := credit(ctx, txLedger{q: qtx})
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return rowToSubmission(row), wallet, nil
}

func (s *PGStore) ListUserSubmissions(ctx context.Context, userID string) ([]domain.Submission, error) {
	rows, err := s.queries.ListUserSubmissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	out := make([]domain.Submission, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToSubmission(r))
	}
	return out, nil
}

// --- wallets ---

func (s *PGStore) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	row, err := s.queries.GetWallet(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	credits, err := s.queries.ListWalletCredits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallet credits: %w", err)
	}
	return rowToWallet(row, credits), nil
}

func creditTx(ctx context.Context, qtx *sqlc.Queries, userID, taskID string, amount decimal.Decimal) (sqlc.Wallet, error) {
	w, err := qtx.CreditWallet(ctx, sqlc.CreditWalletParams{Amount: amount, UserID: userID})
	if err != nil {
		if err == pgx.ErrNoRows {
			return sqlc.Wallet{}, domain.ErrWalletNotFound
		}
		return sqlc.Wallet{}, fmt.Errorf("credit wallet: %w", err)
	}
	if err := qtx.CreateWalletCredit(ctx, sqlc.CreateWalletCreditParams{
		UserID: userID,
		TaskID: taskID,
		Amount: amount,
	}); err != nil {
		return sqlc.Wallet{}, fmt.Errorf("append wallet credit: %w", err)
	}
	return w, nil
}

// txLedger is the domain.Ledger view of an open transaction.
type txLedger struct {
	q *sqlc.Queries
}

func (l txLedger) Credit(ctx context.Context, userID, taskID string, amount decimal.Decimal) (*domain.Wallet, error) {
	w, err := creditTx(ctx, l.q, userID, taskID, amount)
	if err != nil {
		return nil, err
	}
	return l.wallet(ctx, w)
}

func (l txLedger) Debit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Wallet, error) {
	w, err := debitTx(ctx, l.q, userID, amount)
	if err != nil {
		return nil, err
	}
	return l.wallet(ctx, w)
}

func (l txLedger) wallet(ctx context.Context, row sqlc.Wallet) (*domain.Wallet, error) {
	credits, err := l.q.ListWalletCredits(ctx, row.UserID)
	if err != nil {
		return nil, fmt.Errorf("list wallet credits: %w", err)
	}
	return rowToWallet(row, credits), nil
}

// debitTx is a conditional decrement: no row comes back when the wallet is
// missing or the balance is short, and a second read tells the two apart.
func debitTx(ctx context.Context, q *sqlc.Queries, userID string, amount decimal.Decimal) (sqlc.Wallet, error) {
	w, err := q.DebitWallet(ctx, sqlc.DebitWalletParams{Amount: amount, UserID: userID})
	if err == nil {
		return w, nil
	}
	if isCheckViolation(err) {
		return sqlc.Wallet{}, domain.ErrInsufficientBalance
	}
	if err != pgx.ErrNoRows {
		return sqlc.Wallet{}, fmt.Errorf("debit wallet: %w", err)
	}
	if _, err := q.GetWallet(ctx, userID); err != nil {
		if err == pgx.ErrNoRows {
			return sqlc.Wallet{}, domain.ErrWalletNotFound
		}
		return sqlc.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}
	return sqlc.Wallet{}, domain.ErrInsufficientBalance
}

// --- users and payment methods ---

func (s *PGStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	row, err := s.queries.GetUser(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return rowToUser(row), nil
}

func (s *PGStore) SetContactID(ctx context.Context, userID, contactID string) error {
	n, err := s.queries.SetUserContactID(ctx, sqlc.SetUserContactIDParams{UserID: userID, ContactID: contactID})
	if err != nil {
		return fmt.Errorf("set contact id: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *PGStore) SetFundAccountID(ctx context.Context, userID string, t domain.PaymentType, fundAccountID string) error {
	var (
		n   int64
		err error
	)
	switch t {
	case domain.PaymentTypeUPI:
		n, err = s.queries.SetUserFundAccountUPI(ctx, sqlc.SetUserFundAccountUPIParams{UserID: userID, FundAccountUpi: fundAccountID})
	case domain.PaymentTypeBank:
		n, err = s.queries.SetUserFundAccountBank(ctx, sqlc.SetUserFundAccountBankParams{UserID: userID, FundAccountBank: fundAccountID})
	default:
		return domain.Invalid("unknown payment type %d", t)
	}
	if err != nil {
		return fmt.Errorf("set fund account id: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *PGStore) UpsertPaymentMethod(ctx context.Context, pm *domain.PaymentMethod) (*domain.PaymentMethod, error) {
	row, err := s.queries.UpsertPaymentMethod(ctx, sqlc.UpsertPaymentMethodParams{
		PaymentID:     pm.PaymentID,
		UserID:        pm.UserID,
		Method:        int16(pm.Method),
		UpiID:         pm.UPIID,
		AccountHolder: pm.AccountHolder,
		AccountNumber: pm.AccountNumber,
		Ifsc:          pm.IFSC,
		BankName:      pm.BankName,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert payment method: %w", err)
	}
	return rowToPaymentMethod(row), nil
}

func (s *PGStore) GetPaymentMethod(ctx context.Context, userID string, t domain.PaymentType) (*domain.PaymentMethod, error) {
	row, err := s.queries.GetPaymentMethodByType(ctx, sqlc.GetPaymentMethodByTypeParams{UserID: userID, Method: int16(t)})
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNoPaymentMethod
		}
		return nil, fmt.Errorf("get payment method: %w", err)
	}
	return rowToPaymentMethod(row), nil
}

func (s *PGStore) ListPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	rows, err := s.queries.ListPaymentMethods(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	out := make([]domain.PaymentMethod, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToPaymentMethod(r))
	}
	return out, nil
}

func (s *PGStore) DeletePaymentMethod(ctx context.Context, userID, paymentID string) error {
	n, err := s.queries.DeletePaymentMethod(ctx, sqlc.DeletePaymentMethodParams{PaymentID: paymentID, UserID: userID})
	if err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}
	if n == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// --- payouts ---

// RecordPayout runs debit and stores the provider-accepted payout in one
// transaction.
func (s *PGStore) RecordPayout(ctx context.Context, p *domain.Payout, debit domain.LedgerStep) (*domain.Payout, *domain.Wallet, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)

	wallet, err := debit(ctx, txLedger{q: qtx})
	if err != nil {
		return nil, nil, err
	}

	row, err := qtx.CreatePayout(ctx, sqlc.CreatePayoutParams{
		PayoutID:        p.PayoutID,
		UserID:          p.UserID,
		Amount:          p.Amount,
		StatusDetail:    p.StatusDetail,
		FundAccountID:   p.FundAccountID,
		FundAccountType: p.FundAccountType,
		ReferenceID:     p.ReferenceID,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create payout: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return rowToPayout(row), wallet, nil
}

func (s *PGStore) ListUserPayouts(ctx context.Context, userID string) ([]domain.Payout, error) {
	rows, err := s.queries.ListUserPayouts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	out := make([]domain.Payout, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToPayout(r))
	}
	return out, nil
}

func (s *PGStore) UpdatePayoutStatus(ctx context.Context, payoutID, status string) error {
	if err := s.queries.UpdatePayoutStatus(ctx, sqlc.UpdatePayoutStatusParams{PayoutID: payoutID, StatusDetail: status}); err != nil {
		return fmt.Errorf("update payout status: %w", err)
	}
	return nil
}

func (s *PGStore) ListUnsettledPayouts(ctx context.Context, limit int) ([]domain.Payout, error) {
	rows, err := s.queries.ListUnsettledPayouts(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list unsettled payouts: %w", err)
	}
	out := make([]domain.Payout, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToPayout(r))
	}
	return out, nil
}

func (s *PGStore) SearchPayouts(ctx context.Context, f domain.PayoutFilter) ([]domain.Payout, int64, error) {
	lim, off := pageBounds(f.Page, f.PerPage)
	rows, err := s.queries.SearchPayouts(ctx, sqlc.SearchPayoutsParams{Keyword: f.Keyword, Lim: lim, Off: off})
	if err != nil {
		return nil, 0, fmt.Errorf("search payouts: %w", err)
	}
	total, err := s.queries.CountPayouts(ctx, f.Keyword)
	if err != nil {
		return nil, 0, fmt.Errorf("count payouts: %w", err)
	}
	out := make([]domain.Payout, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Payout{
			PayoutID:        r.PayoutID,
			UserID:          r.UserID,
			UserName:        r.UserName,
			Amount:          r.Amount,
			StatusDetail:    r.StatusDetail,
			FundAccountID:   r.FundAccountID,
			FundAccountType: r.FundAccountType,
			ReferenceID:     r.ReferenceID,
			CreatedAt:       pgTimestamptzToTime(r.CreatedAt),
			UpdatedAt:       pgTimestamptzToTime(r.UpdatedAt),
		})
	}
	return out, total, nil
}
