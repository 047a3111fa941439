package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/repository/memory"
)

func newTaskService(t *testing.T, titles TitleFetcher) (*TaskService, *memory.MemoryStore) {
	t.Helper()
	store := memory.NewMemoryStore()
	return NewTaskService(store, store, titles), store
}

func TestTaskCreate_Validation(t *testing.T) {
	svc, _ := newTaskService(t, nil)
	tests := []struct {
		name string
		in   CreateTaskInput
	}{
		{"missing title", CreateTaskInput{ExpectedLink: "https://a.in", Price: dec("10")}},
		{"relative link", CreateTaskInput{Title: "x", ExpectedLink: "/promo", Price: dec("10")}},
		{"mailto link", CreateTaskInput{Title: "x", ExpectedLink: "mailto:a@b.in", Price: dec("10")}},
		{"zero price", CreateTaskInput{Title: "x", ExpectedLink: "https://a.in", Price: dec("0")}},
		{"negative price", CreateTaskInput{Title: "x", ExpectedLink: "https://a.in", Price: dec("-1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title> Diwali Mega Sale </title></head><body></body></html>`))
	}))
	defer page.Close()

	svc, store := newTaskService(t, NewLinkPreviewer())
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateTaskInput{Title: "Share sale", ExpectedLink: page.URL + "/sale", Price: dec("25.50")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.TaskID == "" || task.LinkTitle != "Diwali Mega Sale" {
		t.Fatalf("task = %+v", task)
	}

	newTitle := "Share the sale"
	price := dec("30")
	updated, err := svc.Update(ctx, task.TaskID, UpdateTaskInput{Title: &newTitle, Price: &price})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != newTitle || !updated.Price.Equal(price) || updated.LinkTitle != "Diwali Mega Sale" {
		t.Fatalf("updated = %+v", updated)
	}

	if _, err := svc.Update(ctx, task.TaskID, UpdateTaskInput{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty update err = %v", err)
	}
	zero := dec("0")
	if _, err := svc.Update(ctx, task.TaskID, UpdateTaskInput{Price: &zero}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("zero price update err = %v", err)
	}

	hidden, err := svc.SetHidden(ctx, task.TaskID, true)
	if err != nil || !hidden.Hidden {
		t.Fatalf("SetHidden: %+v %v", hidden, err)
	}
	next, err := svc.Next(ctx, "u1")
	if err != nil || next.TaskID != task.TaskID || !next.Hidden {
		t.Fatalf("Next = %+v %v, want the hidden task", next, err)
	}

	list, total, err := svc.List(ctx, domain.TaskFilter{Keyword: "SALE"})
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("List = %v %d %v", list, total, err)
	}

	if err := svc.Delete(ctx, task.TaskID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, task.TaskID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("Get after delete err = %v", err)
	}
	if err := svc.Delete(ctx, task.TaskID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("second Delete err = %v", err)
	}
	if _, err := store.GetTask(ctx, task.TaskID); err == nil {
		t.Fatalf("task still stored")
	}
}

func TestTaskNext_SkipsCompleted(t *testing.T) {
	svc, store := newTaskService(t, nil)
	ctx := context.Background()
	store.PutUser(domain.User{UserID: "u1"})
	store.PutWallet("u1", dec("0"))

	task, err := svc.Create(ctx, CreateTaskInput{Title: "only", ExpectedLink: "https://a.in", Price: dec("5")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	acceptFor(t, store, task, "u1")
	if _, err := svc.Next(ctx, "u1"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("Next err = %v, want ErrTaskNotFound", err)
	}
	history, err := svc.History(ctx, "u1")
	if err != nil || len(history) != 1 {
		t.Fatalf("History = %v %v", history, err)
	}
}

func acceptFor(t *testing.T, store *memory.MemoryStore, task *domain.Task, userID string) {
	t.Helper()
	sub := &domain.Submission{SubmissionID: "s-" + userID, TaskID: task.TaskID, UserID: userID, PriceAwarded: task.Price}
	credit := NewWalletService(store).Credit(userID, task.TaskID, task.Price)
	if _, _, err := store.AcceptSubmission(context.Background(), sub, 5, credit); err != nil {
		t.Fatalf("AcceptSubmission: %v", err)
	}
}

func TestTaskDelete_RefusedWithAcceptedSubmissions(t *testing.T) {
	svc, store := newTaskService(t, nil)
	ctx := context.Background()
	store.PutUser(domain.User{UserID: "u1"})
	store.PutWallet("u1", dec("0"))

	task, err := svc.Create(ctx, CreateTaskInput{Title: "paid out", ExpectedLink: "https://a.in", Price: dec("5")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	acceptFor(t, store, task, "u1")

	err = svc.Delete(ctx, task.TaskID)
	if !errors.Is(err, domain.ErrTaskHasSubmissions) {
		t.Fatalf("Delete err = %v, want ErrTaskHasSubmissions", err)
	}
	if domain.KindOf(err) != domain.KindConflict {
		t.Fatalf("kind = %s, want conflict", domain.KindOf(err))
	}
	if _, err := svc.Get(ctx, task.TaskID); err != nil {
		t.Fatalf("task lost after refused delete: %v", err)
	}
	history, _ := svc.History(ctx, "u1")
	if len(history) != 1 {
		t.Fatalf("history = %d records, want 1", len(history))
	}
}

func TestLinkPreviewer_FallsBackToOpenGraph(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><meta property="og:title" content="Offer"></head></html>`))
	}))
	defer page.Close()

	title, err := NewLinkPreviewer().Title(context.Background(), page.URL)
	if err != nil || title != "Offer" {
		t.Fatalf("Title = %q %v", title, err)
	}
}

func TestLinkPreviewer_Non200(t *testing.T) {
	page := httptest.NewServer(http.NotFoundHandler())
	defer page.Close()

	if _, err := NewLinkPreviewer().Title(context.Background(), page.URL); err == nil {
		t.Fatalf("expected error for 404 page")
	}
}
