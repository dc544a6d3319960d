// internal/app/features/tasks/update.go
package tasks

import (
	"context"
	"errors"
	"net/http"

	taskstore "github.com/teamtool/teamtool/internal/app/store/tasks"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"github.com/teamtool/teamtool/internal/app/system/htmlsanitize"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"github.com/teamtool/teamtool/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type updateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// HandleUpdate handles PATCH /tasks/{id}. The full editable field set is
// replaced; clients send the current values for fields they leave alone.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathOID(w, r, "id")
	if !ok {
		return
	}

	var req updateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title := htmlsanitize.Clean(req.Title)
	if title == "" {
		httperr.Validation(w, "task title is required", map[string]string{"title": "required"})
		return
	}
	if !models.ValidTaskStatus(req.Status) {
		httperr.Validation(w, "unknown task status", map[string]string{"status": "unknown"})
		return
	}
	if !models.ValidTaskPriority(req.Priority) {
		httperr.Validation(w, "unknown task priority", map[string]string{"priority": "unknown"})
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

	project, ok := h.requireMember(ctx, w, task.ProjectID, userID)
	if !ok {
		return
	}

	var assignee *primitive.ObjectID
	if req.AssignedTo != "" {
		oid, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			httperr.Validation(w, "invalid assignee", map[string]string{"assigned_to": "invalid"})
			return
		}
		if !project.HasMember(oid) {
			httperr.Validation(w, "assignee is not a project member", map[string]string{"assigned_to": "not a member"})
			return
		}
		assignee = &oid
	}

	err = store.Update(ctx, taskID, taskstore.Update{
		Title:       title,
		Description: htmlsanitize.Clean(req.Description),
		AssignedTo:  assignee,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		httperr.NotFound(w, "task not found")
		return
	}
	if err != nil {
		httperr.Internal(w, h.Log, "update task", err)
		return
	}

	h.publish(events.Event{
		Kind:      events.TaskUpdated,
		ProjectID: task.ProjectID,
		ActorID:   userID,
		Subject:   title,
	})

	updated, err := store.GetByID(ctx, taskID)
	if err != nil {
		httperr.Internal(w, h.Log, "reload task", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
