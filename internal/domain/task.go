package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmissionStatus is the outcome of a single submission attempt.
type SubmissionStatus string

const (
	SubmissionPending     SubmissionStatus = "pending"
	SubmissionAccepted    SubmissionStatus = "accepted"
	SubmissionRejected    SubmissionStatus = "rejected"
	SubmissionAlreadyDone SubmissionStatus = "already_done"
)

type Task struct {
	TaskID       string
	Title        string
	Description  string
	ExpectedLink string
	LinkTitle    string
	Price        decimal.Decimal
	Hidden       bool
	// LastSubmissionStatus reflects whichever submission was processed last,
	// for any user. It is racy and must not gate anything.
	LastSubmissionStatus SubmissionStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type TaskUpdate struct {
	Title        *string
	Description  *string
	ExpectedLink *string
	LinkTitle    *string
	Price        *decimal.Decimal
}

type TaskFilter struct {
	Keyword string
	Page    int
	PerPage int
}
