package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	UserID       string
	TotalEarning decimal.Decimal
	Withdrawn    decimal.Decimal
	Balance      decimal.Decimal
	Credits      []WalletCredit
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TasksDone is the number of credited tasks.
func (w *Wallet) TasksDone() int {
	return len(w.Credits)
}

// Consistent reports whether balance == total_earning - withdrawn >= 0.
func (w *Wallet) Consistent() bool {
	if w.Balance.IsNegative() {
		return false
	}
	return w.Balance.Equal(w.TotalEarning.Sub(w.Withdrawn))
}

type WalletCredit struct {
	TaskID    string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// Ledger moves money inside a store transaction that is already open.
type Ledger interface {
	Credit(ctx context.Context, userID, taskID string, amount decimal.Decimal) (*Wallet, error)
	Debit(ctx context.Context, userID string, amount decimal.Decimal) (*Wallet, error)
}

// LedgerStep runs inside the transaction that records a submission or a
// payout. An error rolls the whole transaction back.
type LedgerStep func(ctx context.Context, l Ledger) (*Wallet, error)
