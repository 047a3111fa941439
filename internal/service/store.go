package service

import (
	"context"

	"github.com/set-night/sharemitra/internal/domain"
	"github.com/shopspring/decimal"
)

type TaskStore interface {
	CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error)
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
	UpdateTask(ctx context.Context, taskID string, upd domain.TaskUpdate) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	SetTaskHidden(ctx context.Context, taskID string, hidden bool) (*domain.Task, error)
	SetTaskLastStatus(ctx context.Context, taskID string, status domain.SubmissionStatus) error
	ListTasks(ctx context.Context, f domain.TaskFilter) ([]domain.Task, int64, error)
	NextTaskForUser(ctx context.Context, userID string) (*domain.Task, error)
}

type SubmissionStore interface {
	HasAcceptedSubmission(ctx context.Context, taskID, userID string) (bool, error)
	ListTaskFingerprints(ctx context.Context, taskID string) ([]domain.FingerprintEntry, error)
	// AcceptSubmission stores an accepted record and runs credit in the same
	// transaction. It re-checks duplicates within threshold and fails with
	// ErrAlreadyCompleted, ErrDuplicateEvidence or the error credit returned.
	AcceptSubmission(ctx context.Context, sub *domain.Submission, threshold int, credit domain.LedgerStep) (*domain.Submission, *domain.Wallet, error)
	ListUserSubmissions(ctx context.Context, userID string) ([]domain.Submission, error)
}

type WalletStore interface {
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)
}

type UserStore interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	SetContactID(ctx context.Context, userID, contactID string) error
	SetFundAccountID(ctx context.Context, userID string, t domain.PaymentType, fundAccountID string) error
	UpsertPaymentMethod(ctx context.Context, pm *domain.PaymentMethod) (*domain.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, userID string, t domain.PaymentType) (*domain.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, userID, paymentID string) error
}

type PayoutStore interface {
	// RecordPayout runs debit and inserts the payout in one transaction.
	RecordPayout(ctx context.Context, p *domain.Payout, debit domain.LedgerStep) (*domain.Payout, *domain.Wallet, error)
	ListUserPayouts(ctx context.Context, userID string) ([]domain.Payout, error)
	UpdatePayoutStatus(ctx context.Context, payoutID, status string) error
	ListUnsettledPayouts(ctx context.Context, limit int) ([]domain.Payout, error)
	SearchPayouts(ctx context.Context, f domain.PayoutFilter) ([]domain.Payout, int64, error)
}

// Store is everything the services need from persistence.
type Store interface {
	TaskStore
	SubmissionStore
	WalletStore
	UserStore
	PayoutStore
	Ping(ctx context.Context) error
}

// Notifier receives operator-facing events. *telegram.OperatorLog
// implements it.
type Notifier interface {
	LogError(err error, where string)
	LogSubmissionAccepted(sub *domain.Submission, balance decimal.Decimal)
	LogPayout(p *domain.Payout, balance decimal.Decimal)
	LogLedgerFailure(e *domain.PostPayoutLedgerError, amount decimal.Decimal)
	LogStatusChange(p *domain.Payout, from string)
}

type nopNotifier struct{}

func (nopNotifier) LogError(error, string)                                          {}
func (nopNotifier) LogSubmissionAccepted(*domain.Submission, decimal.Decimal)       {}
func (nopNotifier) LogPayout(*domain.Payout, decimal.Decimal)                       {}
func (nopNotifier) LogLedgerFailure(*domain.PostPayoutLedgerError, decimal.Decimal) {}
func (nopNotifier) LogStatusChange(*domain.Payout, string)                          {}
