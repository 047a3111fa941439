package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Submission is an accepted task history record. At most one exists per
// (TaskID, UserID).
type Submission struct {
	SubmissionID     string
	TaskID           string
	UserID           string
	Fingerprint      uint64
	ParticipantCount int
	MatchedLink      string
	TaskTitle        string
	Verified         bool
	VerifiedAt       time.Time
	PriceAwarded     decimal.Decimal
}

// FingerprintEntry is one row of the per-task fingerprint index.
type FingerprintEntry struct {
	UserID      string
	Fingerprint uint64
}
