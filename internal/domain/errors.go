package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskHasSubmissions  = errors.New("task has accepted submissions and cannot be deleted")
	ErrUserNotFound        = errors.New("user not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrPaymentNotFound     = errors.New("payment method not found")
	ErrNoPaymentMethod     = errors.New("no payment method found for selected type")
	ErrAlreadyCompleted    = errors.New("task already completed by this user")
	ErrDuplicateEvidence   = errors.New("screenshot already used by another user")
	ErrFingerprint         = errors.New("unable to compute image fingerprint")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrExternalService     = errors.New("external service error")
	ErrDataInconsistency   = errors.New("data inconsistency")
	ErrBusy                = errors.New("another request for this user is in progress")
)

// Kind is the coarse error class used to pick response codes.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindConflict
	KindExternalService
	KindDataInconsistency
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExternalService:
		return "external_service"
	case KindDataInconsistency:
		return "data_inconsistency"
	default:
		return "internal"
	}
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrDataInconsistency):
		return KindDataInconsistency
	case errors.Is(err, ErrExternalService):
		return KindExternalService
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrFingerprint),
		errors.Is(err, ErrNoPaymentMethod),
		errors.Is(err, ErrInsufficientBalance):
		return KindInvalidInput
	case errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrWalletNotFound),
		errors.Is(err, ErrPaymentNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyCompleted),
		errors.Is(err, ErrDuplicateEvidence),
		errors.Is(err, ErrTaskHasSubmissions),
		errors.Is(err, ErrBusy):
		return KindConflict
	default:
		return KindInternal
	}
}

// Invalid wraps ErrInvalidInput with a client-facing reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// External failure codes.
const (
	CodeOracleUnreachable         = "oracle_unreachable"
	CodeOracleRejected            = "oracle_rejected"
	CodeMalformedOracleResponse   = "malformed_oracle_response"
	CodeContactCreationFailed     = "contact_creation_failed"
	CodeFundAccountCreationFailed = "fund_account_creation_failed"
	CodePayoutCallFailed          = "payout_call_failed"
	CodeProviderUnavailable       = "provider_unavailable"
)

// ExternalError is a failure of a third-party call. Payload keeps the raw
// response body (or transport error text) for operators.
type ExternalError struct {
	Service string
	Code    string
	Payload any
	Err     error
}

func (e *ExternalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Service, e.Code)
	}
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Code, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

func (e *ExternalError) Is(target error) bool { return target == ErrExternalService }

// PostPayoutLedgerError means the provider accepted a payout but the local
// debit or payout record could not be written. It must be reconciled by hand.
type PostPayoutLedgerError struct {
	PayoutID string
	UserID   string
	Err      error
}

func (e *PostPayoutLedgerError) Error() string {
	return fmt.Sprintf("payout %s accepted by provider but ledger update failed for user %s: %v", e.PayoutID, e.UserID, e.Err)
}

func (e *PostPayoutLedgerError) Unwrap() error { return e.Err }

func (e *PostPayoutLedgerError) Is(target error) bool { return target == ErrDataInconsistency }
