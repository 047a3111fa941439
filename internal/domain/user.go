package domain

import "time"

// PaymentType is the withdrawal rail requested by the user.
type PaymentType int

const (
	PaymentTypeUPI  PaymentType = 0
	PaymentTypeBank PaymentType = 1
)

func (t PaymentType) Valid() bool {
	return t == PaymentTypeUPI || t == PaymentTypeBank
}

// FundAccountType is the provider-side account_type for the rail.
func (t PaymentType) FundAccountType() string {
	if t == PaymentTypeBank {
		return FundAccountBank
	}
	return FundAccountVPA
}

const (
	FundAccountBank = "bank_account"
	FundAccountVPA  = "vpa"
)

// User is owned by the registration service; this system only reads it and
// caches payee linkage on it.
type User struct {
	UserID    string
	Name      string
	Email     string
	Phone     string
	ContactID string
	// FundAccounts maps payment type to the provider fund account id.
	FundAccounts map[PaymentType]string
	CreatedAt    time.Time
}

func (u *User) FundAccountID(t PaymentType) string {
	if u.FundAccounts == nil {
		return ""
	}
	return u.FundAccounts[t]
}

type PaymentMethod struct {
	PaymentID     string
	UserID        string
	Method        PaymentType
	UPIID         string
	AccountHolder string
	AccountNumber string
	IFSC          string
	BankName      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
