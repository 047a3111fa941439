package service

import (
	"context"
	"errors"
	"testing"

	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/repository/memory"
)

type fakeIFSC struct {
	calls int
	known map[string]bool
}

func (f *fakeIFSC) LookupIFSC(_ context.Context, code string) (*IFSCDetails, error) {
	f.calls++
	if !f.known[code] {
		return nil, domain.Invalid("IFSC code %s not found", code)
	}
	return &IFSCDetails{IFSC: code, Bank: "State Bank of India"}, nil
}

func newPaymentMethodService(t *testing.T) (*PaymentMethodService, *memory.MemoryStore, *fakeIFSC) {
	t.Helper()
	store := memory.NewMemoryStore()
	store.PutUser(domain.User{UserID: "u1", Name: "Asha"})
	ifsc := &fakeIFSC{known: map[string]bool{"SBIN0005943": true}}
	return NewPaymentMethodService(store, ifsc), store, ifsc
}

func TestPaymentMethodSave_Validation(t *testing.T) {
	svc, _, _ := newPaymentMethodService(t)
	tests := []struct {
		name string
		in   PaymentMethodInput
		want error
	}{
		{"no user", PaymentMethodInput{PaymentMethod: "upi", UPIID: "a@ok"}, domain.ErrInvalidInput},
		{"unknown method", PaymentMethodInput{UserID: "u1", PaymentMethod: "cash"}, domain.ErrInvalidInput},
		{"upi without id", PaymentMethodInput{UserID: "u1", PaymentMethod: "upi"}, domain.ErrInvalidInput},
		{"upi without handle", PaymentMethodInput{UserID: "u1", PaymentMethod: "upi", UPIID: "asha"}, domain.ErrInvalidInput},
		{"incomplete bank", PaymentMethodInput{UserID: "u1", PaymentMethod: "bank", AccountHolder: "Asha", IFSC: "SBIN0005943"}, domain.ErrInvalidInput},
		{"bad ifsc format", PaymentMethodInput{UserID: "u1", PaymentMethod: "bank", AccountHolder: "Asha", AccountNumber: "12345678", IFSC: "SBIN1005943", BankName: "SBI"}, domain.ErrInvalidInput},
		{"unknown ifsc", PaymentMethodInput{UserID: "u1", PaymentMethod: "bank", AccountHolder: "Asha", AccountNumber: "12345678", IFSC: "HDFC0000001", BankName: "HDFC"}, domain.ErrInvalidInput},
		{"unknown user", PaymentMethodInput{UserID: "ghost", PaymentMethod: "upi", UPIID: "a@ok"}, domain.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Save(context.Background(), tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPaymentMethodSave_UpsertResetsFundAccount(t *testing.T) {
	svc, store, ifsc := newPaymentMethodService(t)
	ctx := context.Background()
	in := PaymentMethodInput{UserID: "u1", PaymentMethod: "bank", AccountHolder: "Asha", AccountNumber: "12345678", IFSC: "sbin0005943", BankName: "SBI"}

	first, err := svc.Save(ctx, in)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first.IFSC != "SBIN0005943" || first.Method != domain.PaymentTypeBank {
		t.Fatalf("saved = %+v", first)
	}
	if err := store.SetFundAccountID(ctx, "u1", domain.PaymentTypeBank, "fa_old"); err != nil {
		t.Fatalf("SetFundAccountID: %v", err)
	}

	in.AccountNumber = "87654321"
	second, err := svc.Save(ctx, in)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if second.PaymentID != first.PaymentID || second.AccountNumber != "87654321" {
		t.Fatalf("upsert created a new method: %+v", second)
	}
	if ifsc.calls != 1 {
		t.Fatalf("IFSC lookups = %d, want 1 (cached)", ifsc.calls)
	}
	u, _ := store.GetUser(ctx, "u1")
	if u.FundAccountID(domain.PaymentTypeBank) != "" {
		t.Fatalf("stale fund account kept")
	}

	methods, err := svc.List(ctx, "u1")
	if err != nil || len(methods) != 1 {
		t.Fatalf("List = %v %v", methods, err)
	}
	if err := svc.Delete(ctx, "u1", first.PaymentID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, "u1", first.PaymentID); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("second Delete err = %v", err)
	}
}
