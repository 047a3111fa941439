package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/set-night/sharemitra/internal/config"
	"github.com/set-night/sharemitra/internal/domain"
)

// IFSCLookup resolves bank branch codes. *RazorpayService implements it.
type IFSCLookup interface {
	LookupIFSC(ctx context.Context, ifsc string) (*IFSCDetails, error)
}

type PaymentMethodInput struct {
	UserID        string `json:"userId" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=bank upi"`
	AccountHolder string `json:"accountHolder" validate:"required_if=PaymentMethod bank"`
	AccountNumber string `json:"accountNumber" validate:"required_if=PaymentMethod bank,omitempty,numeric,min=6,max=20"`
	IFSC          string `json:"ifsc" validate:"required_if=PaymentMethod bank,omitempty,ifsc"`
	BankName      string `json:"bankName" validate:"required_if=PaymentMethod bank"`
	UPIID         string `json:"upiId" validate:"required_if=PaymentMethod upi,omitempty,contains=@"`
}

func (in PaymentMethodInput) paymentType() domain.PaymentType {
	if in.PaymentMethod == "bank" {
		return domain.PaymentTypeBank
	}
	return domain.PaymentTypeUPI
}

type PaymentMethodService struct {
	store UserStore
	ifsc  IFSCLookup
	cache *IFSCCache
}

func NewPaymentMethodService(store UserStore, ifsc IFSCLookup) *PaymentMethodService {
	return &PaymentMethodService{
		store: store,
		ifsc:  ifsc,
		cache: NewIFSCCache(config.IFSCCacheDuration),
	}
}

// Save creates or replaces the user's method of the given type. A changed
// method drops the provider fund account cached for that type so the next
// withdrawal registers the new details.
func (s *PaymentMethodService) Save(ctx context.Context, in PaymentMethodInput) (*domain.PaymentMethod, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.PaymentMethod = strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	in.IFSC = strings.ToUpper(strings.TrimSpace(in.IFSC))
	in.UPIID = strings.TrimSpace(in.UPIID)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	t := in.paymentType()
	pm := &domain.PaymentMethod{
		PaymentID: uuid.NewString(),
		UserID:    in.UserID,
		Method:    t,
	}
	if t == domain.PaymentTypeBank {
		if _, err := s.lookupIFSC(ctx, in.IFSC); err != nil {
			return nil, err
		}
		pm.AccountHolder = strings.TrimSpace(in.AccountHolder)
		pm.AccountNumber = strings.TrimSpace(in.AccountNumber)
		pm.IFSC = in.IFSC
		pm.BankName = strings.TrimSpace(in.BankName)
	} else {
		pm.UPIID = in.UPIID
	}

	saved, err := s.store.UpsertPaymentMethod(ctx, pm)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetFundAccountID(ctx, in.UserID, t, ""); err != nil {
		slog.Warn("failed to reset fund account", "user_id", in.UserID, "method", int(t), "error", err)
	}
	return saved, nil
}

func (s *PaymentMethodService) List(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.Invalid("userId is required")
	}
	return s.store.ListPaymentMethods(ctx, userID)
}

func (s *PaymentMethodService) Delete(ctx context.Context, userID, paymentID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(paymentID) == "" {
		return domain.Invalid("userId and paymentId are required")
	}
	return s.store.DeletePaymentMethod(ctx, userID, paymentID)
}

func (s *PaymentMethodService) lookupIFSC(ctx context.Context, code string) (*IFSCDetails, error) {
	if d := s.cache.Get(code); d != nil {
		return d, nil
	}
	if s.ifsc == nil {
		return nil, nil
	}
	d, err := s.ifsc.LookupIFSC(ctx, code)
	if err != nil {
		return nil, err
	}
	s.cache.Set(code, d)
	return d, nil
}
