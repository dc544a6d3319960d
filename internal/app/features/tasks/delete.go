// internal/app/features/tasks/delete.go
package tasks

import (
	"context"
	"errors"
	"net/http"

	taskstore "github.com/teamtool/teamtool/internal/app/store/tasks"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleDelete handles DELETE /tasks/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathOID(w, r, "id")
	if !ok {
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

	deleted, err := store.Delete(ctx, taskID)
	if err != nil {
		httperr.Internal(w, h.Log, "delete task", err)
		return
	}

	if deleted > 0 {
		h.publish(events.Event{
			Kind:      events.TaskDeleted,
			ProjectID: task.ProjectID,
			ActorID:   userID,
			Subject:   task.Title,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}
