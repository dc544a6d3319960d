// internal/app/features/tasks/list.go
package tasks

import (
	"context"
	"net/http"

	taskstore "github.com/teamtool/teamtool/internal/app/store/tasks"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"github.com/teamtool/teamtool/internal/domain/models"
)

// ServeList handles GET /projects/{id}/tasks with an optional
// ?status= filter.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}
	projectID, ok := pathOID(w, r, "id")
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidTaskStatus(status) {
		httperr.Validation(w, "unknown task status", map[string]string{"status": "unknown"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, ok := h.requireMember(ctx, w, projectID, userID); !ok {
		return
	}

	tasks, err := taskstore.New(h.DB).ListByProject(ctx, projectID, status)
	if err != nil {
		httperr.Internal(w, h.Log, "list tasks", err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// ServeSummary handles GET /projects/{id}/tasks/summary, the per-status
// task counts backing the project board header. Statuses with no tasks
// report zero.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}
	projectID, ok := pathOID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, ok := h.requireMember(ctx, w, projectID, userID); !ok {
		return
	}

	counts, err := taskstore.New(h.DB).CountByProject(ctx, projectID)
	if err != nil {
		httperr.Internal(w, h.Log, "count tasks", err)
		return
	}

	total := 0
	for _, status := range models.TaskStatuses {
		if _, present := counts[status]; !present {
			counts[status] = 0
		}
	}
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": counts, "total": total})
}

// ServeMine handles GET /tasks/mine, the session user's assignments
// across every project.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tasks, err := taskstore.New(h.DB).ListByAssignee(ctx, userID)
	if err != nil {
		httperr.Internal(w, h.Log, "list assigned tasks", err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}
