package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/service"
)

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var in service.CreateTaskInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.tasks.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, true, "Task created successfully", map[string]any{"taskId": t.TaskID, "task": toTaskView(t)})
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f := domain.TaskFilter{Keyword: r.URL.Query().Get("keyword"), Page: page, PerPage: perPage}
	tasks, total, err := h.tasks.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, true, "Tasks retrieved successfully", map[string]any{
		"tasks":       toTaskViews(tasks),
		"total_tasks": total,
		"page":        max(page, 1),
	})
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.tasks.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, true, "Task retrieved successfully", map[string]any{"task": toTaskView(t)})
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateTaskInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.tasks.Update(r.Context(), chi.URLParam(r, "taskID"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, true, "Task updated successfully", map[string]any{"task": toTaskView(t)})
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.Delete(r.Context(), chi.URLParam(r, "taskID")); err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, true, "Task deleted successfully", nil)
}

func (h *Handler) setTaskHidden(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Hidden *bool `json:"hidden"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Hidden == nil {
		writeError(w, r, domain.Invalid("hidden is required"))
		return
	}
	t, err := h.tasks.SetHidden(r.Context(), chi.URLParam(r, "taskID"), *in.Hidden)
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg := "Task unhidden successfully"
	if t.Hidden {
		msg = "Task hidden successfully"
	}
	respond(w, http.StatusOK, true, msg, map[string]any{"task": toTaskView(t)})
}

func (h *Handler) nextTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.tasks.Next(r.Context(), chi.URLParam(r, "userID"))
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		respond(w, http.StatusOK, true, "Task will upload soon...", nil)
		return
	case err != nil:
		writeError(w, r, err)
		return
	}
	if t.Hidden {
		respond(w, http.StatusOK, true, "Task hidden", map[string]string{"taskId": t.TaskID})
		return
	}
	respond(w, http.StatusOK, true, "Task retrieved successfully", map[string]any{"task": toTaskView(t)})
}

func (h *Handler) taskHistory(w http.ResponseWriter, r *http.Request) {
	subs, err := h.tasks.History(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, true, "Task history retrieved successfully", map[string]any{"task_history": toSubmissionViews(subs)})
}
