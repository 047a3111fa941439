package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/sharemitra/internal/config"
	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/events"
	"github.com/set-night/sharemitra/internal/fingerprint"
	"github.com/set-night/sharemitra/internal/metrics"
	"github.com/shopspring/decimal"
)

// Verifier judges the two evidence images. *EvidenceVerifier implements it.
type Verifier interface {
	VerifyBroadcastScreenshot(ctx context.Context, image []byte, expectedLink string) *BroadcastResult
	VerifyRecipientList(ctx context.Context, image []byte) *RecipientResult
}

// Rejection reasons that are not oracle failure codes.
const (
	ReasonInsufficientRecipients = "insufficient_recipients"
	ReasonNotVerified            = "verification_failed"
)

type SubmitRequest struct {
	TaskID         string
	UserID         string
	Image          []byte
	ImageName      string
	GroupImage     []byte
	GroupImageName string
}

// SubmissionOutcome is the result of a submission that reached a verdict.
// Rejections are outcomes, not errors.
type SubmissionOutcome struct {
	Status     domain.SubmissionStatus
	Reason     string
	Task       *domain.Task
	Submission *domain.Submission
	Balance    decimal.Decimal
	Recipients *RecipientResult
	Broadcast  *BroadcastResult
}

// OracleUnavailable reports a rejection caused by the oracle failing to
// answer rather than by the evidence itself.
func (o *SubmissionOutcome) OracleUnavailable() bool {
	return o.Reason == domain.CodeOracleUnreachable || o.Reason == domain.CodeOracleRejected
}

type submissionStore interface {
	TaskStore
	SubmissionStore
}

type SubmissionService struct {
	store     submissionStore
	verifier  Verifier
	wallets   *WalletService
	events    events.Publisher
	notifier  Notifier
	metrics   *metrics.Metrics
	threshold int
}

func NewSubmissionService(store submissionStore, verifier Verifier, wallets *WalletService, pub events.Publisher, notifier Notifier, m *metrics.Metrics) *SubmissionService {
	if pub == nil {
		pub = events.Nop{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &SubmissionService{
		store:     store,
		verifier:  verifier,
		wallets:   wallets,
		events:    pub,
		notifier:  notifier,
		metrics:   m,
		threshold: config.FingerprintThreshold,
	}
}

// Submit runs the per (task, user) workflow. Errors are ErrAlreadyCompleted,
// ErrTaskNotFound, ErrInvalidInput, ErrFingerprint, ErrDuplicateEvidence,
// or ErrDataInconsistency when the user has no wallet to credit.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*SubmissionOutcome, error) {
	req.TaskID = strings.TrimSpace(req.TaskID)
	req.UserID = strings.TrimSpace(req.UserID)
	if req.TaskID == "" {
		return nil, domain.Invalid("taskId is required")
	}
	if req.UserID == "" {
		return nil, domain.Invalid("userId is required")
	}

	done, err := s.store.HasAcceptedSubmission(ctx, req.TaskID, req.UserID)
	if err != nil {
		return nil, err
	}
	if done {
		s.metrics.Submission("already_done")
		return nil, domain.ErrAlreadyCompleted
	}

	task, err := s.store.GetTask(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	s.markTask(ctx, task.TaskID, domain.SubmissionPending)

	if err := validateEvidence(req.Image, req.ImageName, "image"); err != nil {
		s.metrics.Submission("invalid")
		return nil, err
	}
	if err := validateEvidence(req.GroupImage, req.GroupImageName, "group_image"); err != nil {
		s.metrics.Submission("invalid")
		return nil, err
	}

	code, err := fingerprint.Compute(req.Image)
	if err != nil {
		s.metrics.Submission("invalid")
		return nil, fmt.Errorf("%w: %v", domain.ErrFingerprint, err)
	}

	if err := s.checkDuplicate(ctx, task.TaskID, req.UserID, code); err != nil {
		return nil, err
	}

	recipients := s.verifier.VerifyRecipientList(ctx, req.GroupImage)
	if !recipients.Valid {
		s.markTask(ctx, task.TaskID, domain.SubmissionRejected)
		reason := ReasonInsufficientRecipients
		if recipients.FailureCode != "" {
			reason = recipients.FailureCode
		}
		s.metrics.Submission(reason)
		return &SubmissionOutcome{
			Status:     domain.SubmissionRejected,
			Reason:     reason,
			Task:       task,
			Recipients: recipients,
		}, nil
	}

	broadcast := s.verifier.VerifyBroadcastScreenshot(ctx, req.Image, task.ExpectedLink)
	if !broadcast.Verified {
		s.markTask(ctx, task.TaskID, domain.SubmissionRejected)
		reason := ReasonNotVerified
		if broadcast.FailureCode != "" {
			reason = broadcast.FailureCode
		}
		s.metrics.Submission(reason)
		return &SubmissionOutcome{
			Status:     domain.SubmissionRejected,
			Reason:     reason,
			Task:       task,
			Recipients: recipients,
			Broadcast:  broadcast,
		}, nil
	}

	sub, wallet, err := s.store.AcceptSubmission(ctx, &domain.Submission{
		SubmissionID:     uuid.NewString(),
		TaskID:           task.TaskID,
		UserID:           req.UserID,
		Fingerprint:      uint64(code),
		ParticipantCount: recipients.ParticipantCount,
		MatchedLink:      task.ExpectedLink,
		TaskTitle:        task.Title,
		Verified:         true,
		VerifiedAt:       time.Now().UTC(),
		PriceAwarded:     task.Price,
	}, s.threshold, s.wallets.Credit(req.UserID, task.TaskID, task.Price))
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyCompleted):
		s.metrics.Submission("already_done")
		return nil, err
	case errors.Is(err, domain.ErrDuplicateEvidence):
		s.metrics.Submission("duplicate")
		return nil, err
	case errors.Is(err, domain.ErrWalletNotFound):
		err = fmt.Errorf("%w: %w for user %s", domain.ErrDataInconsistency, err, req.UserID)
		slog.Error("verified submission has no wallet to credit", "task_id", task.TaskID, "user_id", req.UserID)
		s.notifier.LogError(err, "submit "+task.TaskID)
		s.metrics.Submission("no_wallet")
		return nil, err
	default:
		return nil, fmt.Errorf("accept submission: %w", err)
	}

	s.markTask(ctx, task.TaskID, domain.SubmissionAccepted)
	s.metrics.Submission("accepted")
	slog.Info("submission accepted",
		"task_id", sub.TaskID, "user_id", sub.UserID,
		"fingerprint", code.String(), "reward", sub.PriceAwarded.String())

	s.notifier.LogSubmissionAccepted(sub, wallet.Balance)
	if err := s.events.Publish(ctx, events.Event{
		Type: events.TypeSubmissionAccepted,
		Key:  sub.UserID,
		Data: map[string]any{
			"submission_id":     sub.SubmissionID,
			"task_id":           sub.TaskID,
			"user_id":           sub.UserID,
			"participant_count": sub.ParticipantCount,
			"price_awarded":     sub.PriceAwarded.String(),
			"balance":           wallet.Balance.String(),
		},
	}); err != nil {
		slog.Warn("failed to publish submission event", "task_id", sub.TaskID, "user_id", sub.UserID, "error", err)
	}

	return &SubmissionOutcome{
		Status:     domain.SubmissionAccepted,
		Task:       task,
		Submission: sub,
		Balance:    wallet.Balance,
		Recipients: recipients,
		Broadcast:  broadcast,
	}, nil
}

// History returns the user's accepted submissions, newest first.
func (s *SubmissionService) History(ctx context.Context, userID string) ([]domain.Submission, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.Invalid("userId is required")
	}
	return s.store.ListUserSubmissions(ctx, userID)
}

func (s *SubmissionService) checkDuplicate(ctx context.Context, taskID, userID string, code fingerprint.Code) error {
	entries, err := s.store.ListTaskFingerprints(ctx, taskID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.UserID == userID {
			continue
		}
		if fingerprint.Similar(code, fingerprint.Code(e.Fingerprint), s.threshold) {
			s.metrics.Submission("duplicate")
			slog.Info("duplicate evidence", "task_id", taskID, "user_id", userID, "matched_user_id", e.UserID)
			return domain.ErrDuplicateEvidence
		}
	}
	return nil
}

// markTask updates the task-wide last status. It is display-only and a
// failure here never fails the submission.
func (s *SubmissionService) markTask(ctx context.Context, taskID string, status domain.SubmissionStatus) {
	if err := s.store.SetTaskLastStatus(ctx, taskID, status); err != nil {
		slog.Warn("failed to update task status", "task_id", taskID, "status", status, "error", err)
	}
}

var allowedImageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

func validateEvidence(data []byte, name, field string) error {
	if len(data) == 0 {
		return domain.Invalid("both 'image' and 'group_image' files are required (missing %s)", field)
	}
	if len(data) > config.MaxImageBytes {
		return domain.Invalid("%s exceeds %d bytes", field, config.MaxImageBytes)
	}
	if name != "" && !allowedImageExt[strings.ToLower(filepath.Ext(name))] {
		return domain.Invalid("%s: file type not allowed", field)
	}
	switch http.DetectContentType(data) {
	case "image/png", "image/jpeg":
		return nil
	default:
		return domain.Invalid("%s: file type not allowed", field)
	}
}
