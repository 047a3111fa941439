package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/set-night/sharemitra/internal/domain"
	"github.com/shopspring/decimal"
)

// TitleFetcher resolves the page title of a task link. *LinkPreviewer
// implements it.
type TitleFetcher interface {
	Title(ctx context.Context, link string) (string, error)
}

type CreateTaskInput struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Description  string          `json:"description" validate:"max=2000"`
	ExpectedLink string          `json:"expected_link" validate:"required,link"`
	Price        decimal.Decimal `json:"price" validate:"gt=0"`
	Hidden       bool            `json:"hidden"`
}

type UpdateTaskInput struct {
	Title        *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description" validate:"omitempty,max=2000"`
	ExpectedLink *string          `json:"expected_link" validate:"omitempty,link"`
	Price        *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
}

func (in UpdateTaskInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.ExpectedLink == nil && in.Price == nil
}

type TaskService struct {
	store   TaskStore
	history SubmissionStore
	titles  TitleFetcher
}

// NewTaskService builds the task administration service. titles may be nil
// to skip link previews.
func NewTaskService(store TaskStore, history SubmissionStore, titles TitleFetcher) *TaskService {
	return &TaskService{store: store, history: history, titles: titles}
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ExpectedLink = strings.TrimSpace(in.ExpectedLink)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	t, err := s.store.CreateTask(ctx, &domain.Task{
		TaskID:       uuid.NewString(),
		Title:        in.Title,
		Description:  strings.TrimSpace(in.Description),
		ExpectedLink: in.ExpectedLink,
		LinkTitle:    s.linkTitle(ctx, in.ExpectedLink),
		Price:        in.Price,
		Hidden:       in.Hidden,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("task created", "task_id", t.TaskID, "price", t.Price.String())
	return t, nil
}

func (s *TaskService) Update(ctx context.Context, taskID string, in UpdateTaskInput) (*domain.Task, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, domain.Invalid("taskId is required")
	}
	if in.empty() {
		return nil, domain.Invalid("nothing to update")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	upd := domain.TaskUpdate{
		Title:        in.Title,
		Description:  in.Description,
		ExpectedLink: in.ExpectedLink,
		Price:        in.Price,
	}
	if in.ExpectedLink != nil {
		title := s.linkTitle(ctx, *in.ExpectedLink)
		upd.LinkTitle = &title
	}
	return s.store.UpdateTask(ctx, taskID, upd)
}

func (s *TaskService) Delete(ctx context.Context, taskID string) error {
	if strings.TrimSpace(taskID) == "" {
		return domain.Invalid("taskId is required")
	}
	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	slog.Info("task deleted", "task_id", taskID)
	return nil
}

func (s *TaskService) SetHidden(ctx context.Context, taskID string, hidden bool) (*domain.Task, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, domain.Invalid("taskId is required")
	}
	return s.store.SetTaskHidden(ctx, taskID, hidden)
}

func (s *TaskService) Get(ctx context.Context, taskID string) (*domain.Task, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, domain.Invalid("taskId is required")
	}
	return s.store.GetTask(ctx, taskID)
}

func (s *TaskService) List(ctx context.Context, f domain.TaskFilter) ([]domain.Task, int64, error) {
	f.Keyword = strings.TrimSpace(f.Keyword)
	f.Page, f.PerPage = normalizePage(f.Page, f.PerPage)
	return s.store.ListTasks(ctx, f)
}

// Next returns the newest task the user has not completed. A hidden task
// is still returned; callers show it as hidden instead of offering it.
func (s *TaskService) Next(ctx context.Context, userID string) (*domain.Task, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.Invalid("userId is required")
	}
	return s.store.NextTaskForUser(ctx, userID)
}

func (s *TaskService) History(ctx context.Context, userID string) ([]domain.Submission, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.Invalid("userId is required")
	}
	return s.history.ListUserSubmissions(ctx, userID)
}

func (s *TaskService) linkTitle(ctx context.Context, link string) string {
	if s.titles == nil {
		return ""
	}
	title, err := s.titles.Title(ctx, link)
	if err != nil {
		slog.Warn("link preview failed", "link", link, "error", err)
		return ""
	}
	return title
}
