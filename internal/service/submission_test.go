package service

import (
	"context"
	"errors"
	"testing"

	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/repository/memory"
)

const (
	goodBroadcast = `{"is_whatsapp_screenshot": true, "is_broadcast_list": true, "contains_expected_link": true, "confidence_score": 9}`
	goodRecipient = `{"participant_count": 12, "is_valid_list": true, "group_name": "Family"}`
)

type submitFixture struct {
	store    *memory.MemoryStore
	oracle   *fakeOracle
	notifier *recordingNotifier
	svc      *SubmissionService
}

func newSubmitFixture(t *testing.T) *submitFixture {
	t.Helper()
	store := memory.NewMemoryStore()
	for _, id := range []string{"u1", "u2"} {
		store.PutUser(domain.User{UserID: id, Name: id})
		store.PutWallet(id, dec("0"))
	}
	_, err := store.CreateTask(context.Background(), &domain.Task{
		TaskID:       "t1",
		Title:        "Share the festival sale",
		ExpectedLink: "https://shop.example.in/diwali",
		Price:        dec("50"),
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	oracle := &fakeOracle{broadcast: goodBroadcast, recipient: goodRecipient}
	notifier := &recordingNotifier{}
	svc := NewSubmissionService(store, NewEvidenceVerifier(oracle, 2, nil), NewWalletService(store), nil, notifier, nil)
	return &submitFixture{store: store, oracle: oracle, notifier: notifier, svc: svc}
}

func (f *submitFixture) submit(t *testing.T, taskID, userID string, seed int64) (*SubmissionOutcome, error) {
	t.Helper()
	return f.svc.Submit(context.Background(), SubmitRequest{
		TaskID:         taskID,
		UserID:         userID,
		Image:          screenshot(t, seed),
		ImageName:      "proof.png",
		GroupImage:     screenshot(t, seed+1000),
		GroupImageName: "list.png",
	})
}

func TestSubmit_AcceptedCreditsOnce(t *testing.T) {
	f := newSubmitFixture(t)
	ctx := context.Background()

	out, err := f.submit(t, "t1", "u1", 1)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Status != domain.SubmissionAccepted {
		t.Fatalf("status = %s, reason %s", out.Status, out.Reason)
	}
	if !out.Balance.Equal(dec("50")) {
		t.Fatalf("balance = %s, want 50", out.Balance)
	}
	if out.Submission.ParticipantCount != 12 || out.Submission.MatchedLink != "https://shop.example.in/diwali" {
		t.Fatalf("submission = %+v", out.Submission)
	}
	if len(f.notifier.accepted) != 1 {
		t.Fatalf("expected one operator notification, got %d", len(f.notifier.accepted))
	}

	asked := f.oracle.calls()
	_, err = f.submit(t, "t1", "u1", 2)
	if !errors.Is(err, domain.ErrAlreadyCompleted) {
		t.Fatalf("second submit err = %v, want ErrAlreadyCompleted", err)
	}
	if got := f.oracle.calls(); got != asked {
		t.Fatalf("oracle called %d more times on a completed task", got-asked)
	}

	w, err := f.store.GetWallet(ctx, "u1")
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	if !w.TotalEarning.Equal(dec("50")) || w.TasksDone() != 1 || !w.Consistent() {
		t.Fatalf("wallet = %+v", w)
	}

	task, _ := f.store.GetTask(ctx, "t1")
	if task.LastSubmissionStatus != domain.SubmissionAccepted {
		t.Fatalf("task status = %s", task.LastSubmissionStatus)
	}
}

func TestSubmit_DuplicateEvidenceAcrossUsers(t *testing.T) {
	f := newSubmitFixture(t)
	if _, err := f.submit(t, "t1", "u1", 7); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	calls := len(f.oracle.prompts)

	_, err := f.submit(t, "t1", "u2", 7)
	if !errors.Is(err, domain.ErrDuplicateEvidence) {
		t.Fatalf("err = %v, want ErrDuplicateEvidence", err)
	}
	if len(f.oracle.prompts) != calls {
		t.Fatalf("oracle was consulted for duplicate evidence")
	}
	w, _ := f.store.GetWallet(context.Background(), "u2")
	if !w.Balance.IsZero() {
		t.Fatalf("u2 balance = %s, want 0", w.Balance)
	}

	// A different screenshot from the same user is fine.
	out, err := f.submit(t, "t1", "u2", 8)
	if err != nil || out.Status != domain.SubmissionAccepted {
		t.Fatalf("distinct evidence: out=%+v err=%v", out, err)
	}
}

func TestSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		broadcast  string
		recipient  string
		oracleErr  error
		wantReason string
		unavail    bool
	}{
		{
			name:       "too few recipients",
			broadcast:  goodBroadcast,
			recipient:  `{"participant_count": 1, "is_valid_list": true}`,
			wantReason: ReasonInsufficientRecipients,
		},
		{
			name:       "not a broadcast",
			broadcast:  `{"is_whatsapp_screenshot": true, "is_broadcast_list": false, "contains_expected_link": true}`,
			recipient:  goodRecipient,
			wantReason: ReasonNotVerified,
		},
		{
			name:       "malformed answer",
			broadcast:  "sure!",
			recipient:  goodRecipient,
			wantReason: domain.CodeMalformedOracleResponse,
		},
		{
			name:       "oracle down",
			oracleErr:  &domain.ExternalError{Service: "oracle", Code: domain.CodeOracleUnreachable, Err: errors.New("timeout")},
			wantReason: domain.CodeOracleUnreachable,
			unavail:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSubmitFixture(t)
			f.oracle.broadcast, f.oracle.recipient, f.oracle.err = tt.broadcast, tt.recipient, tt.oracleErr

			out, err := f.submit(t, "t1", "u1", 3)
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if out.Status != domain.SubmissionRejected || out.Reason != tt.wantReason {
				t.Fatalf("got %s/%s, want rejected/%s", out.Status, out.Reason, tt.wantReason)
			}
			if out.OracleUnavailable() != tt.unavail {
				t.Fatalf("OracleUnavailable = %v", out.OracleUnavailable())
			}
			done, _ := f.store.HasAcceptedSubmission(context.Background(), "t1", "u1")
			if done {
				t.Fatalf("rejected submission was recorded")
			}
			w, _ := f.store.GetWallet(context.Background(), "u1")
			if !w.Balance.IsZero() {
				t.Fatalf("balance = %s after rejection", w.Balance)
			}
		})
	}
}

func TestSubmit_InputErrors(t *testing.T) {
	f := newSubmitFixture(t)
	ctx := context.Background()
	img := screenshot(t, 5)

	tests := []struct {
		name string
		req  SubmitRequest
		want error
	}{
		{"missing task", SubmitRequest{UserID: "u1", Image: img, GroupImage: img}, domain.ErrInvalidInput},
		{"unknown task", SubmitRequest{TaskID: "nope", UserID: "u1", Image: img, GroupImage: img}, domain.ErrTaskNotFound},
		{"missing group image", SubmitRequest{TaskID: "t1", UserID: "u1", Image: img}, domain.ErrInvalidInput},
		{"bad extension", SubmitRequest{TaskID: "t1", UserID: "u1", Image: img, ImageName: "proof.gif", GroupImage: img}, domain.ErrInvalidInput},
		{"not an image", SubmitRequest{TaskID: "t1", UserID: "u1", Image: []byte("hello"), GroupImage: img}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if len(f.oracle.prompts) != 0 {
		t.Fatalf("oracle called for invalid input")
	}
}

func TestSubmit_NoWalletIsInconsistency(t *testing.T) {
	f := newSubmitFixture(t)
	f.store.PutUser(domain.User{UserID: "u3"})

	_, err := f.submit(t, "t1", "u3", 9)
	if !errors.Is(err, domain.ErrDataInconsistency) || !errors.Is(err, domain.ErrWalletNotFound) {
		t.Fatalf("err = %v, want data inconsistency wrapping wallet not found", err)
	}
	if done, _ := f.store.HasAcceptedSubmission(context.Background(), "t1", "u3"); done {
		t.Fatalf("record stored without a credit")
	}
	if len(f.notifier.errors) != 1 {
		t.Fatalf("expected operator error notification")
	}
}

func TestSubmissionHistory(t *testing.T) {
	f := newSubmitFixture(t)
	if _, err := f.submit(t, "t1", "u1", 11); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	subs, err := f.svc.History(context.Background(), "u1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(subs) != 1 || subs[0].TaskID != "t1" {
		t.Fatalf("history = %+v", subs)
	}
	if _, err := f.svc.History(context.Background(), " "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank user err = %v", err)
	}
}
