package service

import (
	"context"
	"errors"
	"testing"

	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/repository/memory"
)

func TestWalletService(t *testing.T) {
	store := memory.NewMemoryStore()
	store.PutWallet("u1", dec("0"))
	svc := NewWalletService(store)
	ctx := context.Background()

	if _, err := store.Apply(ctx, svc.Credit("u1", "t1", dec("40"))); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if _, err := store.Apply(ctx, svc.Credit("u1", "t2", dec("10.25"))); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	w, err := store.Apply(ctx, svc.Debit("u1", dec("20")))
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if !w.Balance.Equal(dec("30.25")) || !w.TotalEarning.Equal(dec("50.25")) || !w.Withdrawn.Equal(dec("20")) {
		t.Fatalf("wallet = %+v", w)
	}

	read, err := svc.Read(ctx, "u1")
	if err != nil || read.TasksDone() != 2 || !read.Consistent() {
		t.Fatalf("Read = %+v %v", read, err)
	}

	tests := []struct {
		name string
		step domain.LedgerStep
		want error
	}{
		{"credit zero", svc.Credit("u1", "t3", dec("0")), domain.ErrInvalidAmount},
		{"debit negative", svc.Debit("u1", dec("-1")), domain.ErrInvalidAmount},
		{"overdraw", svc.Debit("u1", dec("1000")), domain.ErrInsufficientBalance},
		{"no wallet", svc.Credit("u9", "t1", dec("1")), domain.ErrWalletNotFound},
		{"blank user", svc.Credit(" ", "t1", dec("1")), domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		if _, err := store.Apply(ctx, tt.step); !errors.Is(err, tt.want) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
	if _, err := svc.Read(ctx, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank read: err = %v", err)
	}

	after, _ := svc.Read(ctx, "u1")
	if !after.Balance.Equal(dec("30.25")) || after.TasksDone() != 2 {
		t.Fatalf("failed operations changed wallet to %+v", after)
	}
}

// A failing step must not leave half of its changes behind.
func TestWalletService_StepRollsBack(t *testing.T) {
	store := memory.NewMemoryStore()
	store.PutWallet("u1", dec("10"))
	svc := NewWalletService(store)
	ctx := context.Background()

	step := func(ctx context.Context, l domain.Ledger) (*domain.Wallet, error) {
		if _, err := svc.Credit("u1", "t1", dec("5"))(ctx, l); err != nil {
			return nil, err
		}
		return svc.Debit("u1", dec("100"))(ctx, l)
	}
	if _, err := store.Apply(ctx, step); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	w, _ := svc.Read(ctx, "u1")
	if !w.Balance.Equal(dec("10")) || w.TasksDone() != 0 {
		t.Fatalf("wallet = %+v, want untouched", w)
	}
}
