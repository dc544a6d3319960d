// internal/app/features/tasks/status.go
package tasks

import (
	"context"
	"errors"
	"net/http"

	taskstore "github.com/teamtool/teamtool/internal/app/store/tasks"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"github.com/teamtool/teamtool/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

type statusRequest struct {
	Status string `json:"status"`
}

// HandleStatus handles PATCH /tasks/{id}/status, moving a task through
// its lifecycle without touching the other fields.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathOID(w, r, "id")
	if !ok {
		return
	}

	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !models.ValidTaskStatus(req.Status) {
		httperr.Validation(w, "unknown task status", map[string]string{"status": "unknown"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := taskstore.New(h.DB)
	task, err := store.GetByID(ctx, taskID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httperr.NotFound(w, "task not found")
		return
	}
	if err != nil {
		httperr.Internal(w, h.Log, "load task", err)
		return
	}

	if _, ok := h.requireMember(ctx, w, task.ProjectID, userID); !ok {
		return
	}

	if err := store.UpdateStatus(ctx, taskID, req.Status); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "task not found")
			return
		}
		httperr.Internal(w, h.Log, "update task status", err)
		return
	}

	h.publish(events.Event{
		Kind:      events.TaskStatusChanged,
		ProjectID: task.ProjectID,
		ActorID:   userID,
		Subject:   task.Title,
	})

	updated, err := store.GetByID(ctx, taskID)
	if err != nil {
		httperr.Internal(w, h.Log, "reload task", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
