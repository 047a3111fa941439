package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/set-night/sharemitra/internal/config"
	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/metrics"
	"github.com/shopspring/decimal"
)

const (
	razorpayServiceName = "razorpay"
	ifscServiceName     = "razorpay_ifsc"
)

// RazorpayService is the RazorpayX payouts client: contacts, fund
// accounts, payouts and the public IFSC directory.
type RazorpayService struct {
	baseURL       string
	ifscURL       string
	keyID         string
	keySecret     string
	accountNumber string
	httpClient    *http.Client
	metrics       *metrics.Metrics
}

func NewRazorpayService(cfg *config.Config, m *metrics.Metrics) *RazorpayService {
	return &RazorpayService{
		baseURL:       strings.TrimRight(cfg.RazorpayBaseURL, "/"),
		ifscURL:       strings.TrimRight(cfg.RazorpayIFSCURL, "/"),
		keyID:         cfg.RazorpayKeyID,
		keySecret:     cfg.RazorpayKeySecret,
		accountNumber: cfg.RazorpayXAccount,
		httpClient:    &http.Client{Timeout: config.ProviderTimeout},
		metrics:       m,
	}
}

// ToMinorUnits converts rupees to paise.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromMinorUnits converts paise to rupees.
func FromMinorUnits(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
	Type    string `json:"type"`
}

type FundAccountRequest struct {
	ContactID   string           `json:"contact_id"`
	AccountType string           `json:"account_type"`
	BankAccount *BankAccountInfo `json:"bank_account,omitempty"`
	VPA         *VPAInfo         `json:"vpa,omitempty"`
}

type BankAccountInfo struct {
	Name          string `json:"name"`
	IFSC          string `json:"ifsc"`
	AccountNumber string `json:"account_number"`
}

type VPAInfo struct {
	Address string `json:"address"`
}

type PayoutRequest struct {
	AccountNumber     string `json:"account_number"`
	FundAccountID     string `json:"fund_account_id"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	Mode              string `json:"mode"`
	Purpose           string `json:"purpose"`
	QueueIfLowBalance bool   `json:"queue_if_low_balance"`
	ReferenceID       string `json:"reference_id"`
	Narration         string `json:"narration"`
}

// ProviderPayout is the provider's view of a payout. Amount is in paise.
type ProviderPayout struct {
	ID            string `json:"id"`
	FundAccountID string `json:"fund_account_id"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	ReferenceID   string `json:"reference_id"`
}

type IFSCDetails struct {
	IFSC    string `json:"IFSC"`
	Bank    string `json:"BANK"`
	Branch  string `json:"BRANCH"`
	Address string `json:"ADDRESS"`
	City    string `json:"CITY"`
	State   string `json:"STATE"`
}

func (s *RazorpayService) CreateContact(ctx context.Context, u *domain.User, phone string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := s.do(ctx, http.MethodPost, "/contacts", "", ContactRequest{
		Name:    u.Name,
		Email:   u.Email,
		Contact: phone,
		Type:    "employee",
	}, &out, domain.CodeContactCreationFailed)
	s.metrics.ProviderCall("create_contact", err)
	if err != nil {
		return "", err
	}
	return out.ID, nil
}

func (s *RazorpayService) CreateFundAccount(ctx context.Context, contactID string, pm *domain.PaymentMethod) (string, error) {
	req := FundAccountRequest{ContactID: contactID, AccountType: pm.Method.FundAccountType()}
	if pm.Method == domain.PaymentTypeBank {
		req.BankAccount = &BankAccountInfo{Name: pm.AccountHolder, IFSC: pm.IFSC, AccountNumber: pm.AccountNumber}
	} else {
		req.VPA = &VPAInfo{Address: pm.UPIID}
	}

	var out struct {
		ID string `json:"id"`
	}
	err := s.do(ctx, http.MethodPost, "/fund_accounts", "", req, &out, domain.CodeFundAccountCreationFailed)
	s.metrics.ProviderCall("create_fund_account", err)
	if err != nil {
		return "", err
	}
	return out.ID, nil
}

// CreatePayout sends money to a fund account. The reference id doubles as
// the idempotency key.
func (s *RazorpayService) CreatePayout(ctx context.Context, fundAccountID string, t domain.PaymentType, amount decimal.Decimal, referenceID string) (*ProviderPayout, error) {
	mode := "UPI"
	if t == domain.PaymentTypeBank {
		mode = "IMPS"
	}
	var out ProviderPayout
	err := s.do(ctx, http.MethodPost, "/payouts", referenceID, PayoutRequest{
		AccountNumber:     s.accountNumber,
		FundAccountID:     fundAccountID,
		Amount:            ToMinorUnits(amount),
		Currency:          config.PayoutCurrency,
		Mode:              mode,
		Purpose:           config.PayoutPurpose,
		QueueIfLowBalance: true,
		ReferenceID:       referenceID,
		Narration:         config.PayoutNarration,
	}, &out, domain.CodePayoutCallFailed)
	s.metrics.ProviderCall("create_payout", err)
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, &domain.ExternalError{
			Service: razorpayServiceName,
			Code:    domain.CodePayoutCallFailed,
			Err:     fmt.Errorf("payout response without id"),
		}
	}
	return &out, nil
}

func (s *RazorpayService) FetchPayout(ctx context.Context, payoutID string) (*ProviderPayout, error) {
	var out ProviderPayout
	err := s.do(ctx, http.MethodGet, "/payouts/"+url.PathEscape(payoutID), "", nil, &out, domain.CodeProviderUnavailable)
	s.metrics.ProviderCall("fetch_payout", err)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupIFSC resolves a branch code. Unknown codes are ErrInvalidInput.
func (s *RazorpayService) LookupIFSC(ctx context.Context, ifsc string) (*IFSCDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ifscURL+"/"+url.PathEscape(ifsc), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ExternalError{Service: ifscServiceName, Code: domain.CodeProviderUnavailable, Payload: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ExternalError{Service: ifscServiceName, Code: domain.CodeProviderUnavailable, Payload: err.Error(), Err: err}
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.Invalid("IFSC code %s not found", ifsc)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ExternalError{
			Service: ifscServiceName,
			Code:    domain.CodeProviderUnavailable,
			Payload: string(body),
			Err:     fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var out IFSCDetails
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &domain.ExternalError{Service: ifscServiceName, Code: domain.CodeProviderUnavailable, Payload: string(body), Err: err}
	}
	return &out, nil
}

// do sends an authenticated JSON request. Any failure is an ExternalError
// with the given code and the provider's body as payload.
func (s *RazorpayService) do(ctx context.Context, method, path, idempotencyKey string, in, out any, code string) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(s.keyID, s.keySecret)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("X-Payout-Idempotency", idempotencyKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &domain.ExternalError{Service: razorpayServiceName, Code: code, Payload: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ExternalError{Service: razorpayServiceName, Code: code, Payload: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.ExternalError{
			Service: razorpayServiceName,
			Code:    code,
			Payload: providerPayload(respBody),
			Err:     fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &domain.ExternalError{Service: razorpayServiceName, Code: code, Payload: string(respBody), Err: fmt.Errorf("parse response: %w", err)}
	}
	return nil
}

// providerPayload keeps JSON error bodies structured for the client.
func providerPayload(body []byte) any {
	var v map[string]any
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return string(body)
}
