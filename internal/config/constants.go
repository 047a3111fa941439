package config

import (
	"time"

	"github.com/set-night/sharemitra/internal/fingerprint"
)

const (
	// Evidence policy
	FingerprintThreshold = fingerprint.DefaultThreshold
	MinRecipients        = 2

	// Upload limits
	MaxImageBytes      = 10 << 20
	MaxMultipartMemory = 32 << 20

	// External call timeouts
	OracleTimeout   = 60 * time.Second
	ProviderTimeout = 30 * time.Second
	PreviewTimeout  = 5 * time.Second

	// Oracle completion budgets
	BroadcastMaxTokens = 500
	RecipientMaxTokens = 300

	// Withdrawal lock
	WithdrawLockTTL = 2 * time.Minute

	// Payout reconciliation
	ReconcileInterval = 5 * time.Minute
	ReconcileBatch    = 100

	// IFSC lookup cache
	IFSCCacheDuration = 24 * time.Hour

	// Provider payout defaults
	PayoutCurrency  = "INR"
	PayoutPurpose   = "payout"
	PayoutNarration = "User Withdrawal"

	// Rate limits (per user)
	RateLimitPerSecond = 1
	RateLimitBurst     = 5
	RateLimitIdleTTL   = 3 * time.Minute

	// Pagination
	DefaultPerPage = 50
	MaxPerPage     = 200

	// Database pool
	DBMaxConns = 20
	DBMinConns = 2

	// HTTP server
	ReadTimeout     = 30 * time.Second
	WriteTimeout    = 120 * time.Second
	IdleTimeout     = 60 * time.Second
	ShutdownTimeout = 15 * time.Second
)
