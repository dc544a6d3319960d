// internal/app/features/tasks/create.go
package tasks

import (
	"context"
	"net/http"

	taskstore "github.com/teamtool/teamtool/internal/app/store/tasks"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"github.com/teamtool/teamtool/internal/app/system/htmlsanitize"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"github.com/teamtool/teamtool/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// HandleCreate handles POST /projects/{id}/tasks. Status defaults to
// ToDo and priority to Medium; the assignee, if set, must already be
// a member of the project.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}
	projectID, ok := pathOID(w, r, "id")
	if !ok {
		return
	}

	var req createRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title := htmlsanitize.Clean(req.Title)
	if title == "" {
		httperr.Validation(w, "task title is required", map[string]string{"title": "required"})
		return
	}
	if req.Status != "" && !models.ValidTaskStatus(req.Status) {
		httperr.Validation(w, "unknown task status", map[string]string{"status": "unknown"})
		return
	}
	if req.Priority != "" && !models.ValidTaskPriority(req.Priority) {
		httperr.Validation(w, "unknown task priority", map[string]string{"priority": "unknown"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	project, ok := h.requireMember(ctx, w, projectID, userID)
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

	created, err := taskstore.New(h.DB).Create(ctx, models.Task{
		ProjectID:   projectID,
		Title:       title,
		Description: htmlsanitize.Clean(req.Description),
		AssignedTo:  assignee,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		httperr.Internal(w, h.Log, "create task", err)
		return
	}

	h.publish(events.Event{
		Kind:      events.TaskCreated,
		ProjectID: projectID,
		ActorID:   userID,
		Subject:   created.Title,
	})

	writeJSON(w, http.StatusCreated, created)
}
