package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Payout struct {
	PayoutID        string
	UserID          string
	UserName        string // filled by history search only
	Amount          decimal.Decimal
	StatusDetail    string
	FundAccountID   string
	FundAccountType string
	ReferenceID     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Mode is the display rail of the payout.
func (p *Payout) Mode() string {
	if p.FundAccountType == FundAccountBank {
		return "Bank"
	}
	return "UPI"
}

// DisplayStatus maps a provider status string to Processing, Declined,
// Pending or Processed. Unknown values are passed through capitalized.
func DisplayStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "processing":
		return "Processing"
	case "failed", "rejected", "cancelled":
		return "Declined"
	case "queued", "pending", "on-hold", "scheduled":
		return "Pending"
	case "processed":
		return "Processed"
	case "":
		return ""
	default:
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

// Settled reports whether the provider status is final and no longer needs polling.
func Settled(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "processed", "failed", "rejected", "cancelled", "reversed":
		return true
	}
	return false
}

type PayoutFilter struct {
	Keyword string
	Page    int
	PerPage int
}
