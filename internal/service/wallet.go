package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/set-night/sharemitra/internal/domain"
	"github.com/shopspring/decimal"
)

// WalletService is the ledger: credits on accepted tasks, debits on
// withdrawals. Credit and Debit build steps that the store runs inside the
// transaction writing the submission or payout record, so the record and
// the money movement commit together.
type WalletService struct {
	store WalletStore
}

func NewWalletService(store WalletStore) *WalletService {
	return &WalletService{store: store}
}

func (s *WalletService) Credit(userID, taskID string, amount decimal.Decimal) domain.LedgerStep {
	return func(ctx context.Context, l domain.Ledger) (*domain.Wallet, error) {
		if err := checkMovement(userID, amount); err != nil {
			return nil, err
		}
		w, err := l.Credit(ctx, userID, taskID, amount)
		if err != nil {
			return nil, fmt.Errorf("credit wallet: %w", err)
		}
		return w, nil
	}
}

func (s *WalletService) Debit(userID string, amount decimal.Decimal) domain.LedgerStep {
	return func(ctx context.Context, l domain.Ledger) (*domain.Wallet, error) {
		if err := checkMovement(userID, amount); err != nil {
			return nil, err
		}
		w, err := l.Debit(ctx, userID, amount)
		if err != nil {
			return nil, fmt.Errorf("debit wallet: %w", err)
		}
		return w, nil
	}
}

func checkMovement(userID string, amount decimal.Decimal) error {
	if strings.TrimSpace(userID) == "" {
		return domain.Invalid("userId is required")
	}
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	return nil
}

func (s *WalletService) Read(ctx context.Context, userID string) (*domain.Wallet, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.Invalid("userId is required")
	}
	return s.store.GetWallet(ctx, userID)
}
