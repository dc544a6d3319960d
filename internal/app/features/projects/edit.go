// internal/app/features/projects/edit.go
package projects

import (
	"context"
	"net/http"

	projectstore "github.com/teamtool/teamtool/internal/app/store/projects"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"github.com/teamtool/teamtool/internal/app/system/htmlsanitize"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
)

type editRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleEdit handles PATCH /projects/{id}. Only members may edit;
// creator_id never changes.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}
	projectID, ok := pathOID(w, r, "id")
	if !ok {
		return
	}

	var req editRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := htmlsanitize.Clean(req.Name)
	if name == "" {
		httperr.Validation(w, "project name is required", map[string]string{"name": "required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	projects := projectstore.New(h.DB)
	project, err := projects.GetByID(ctx, projectID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httperr.NotFound(w, "project not found")
			return
		}
		httperr.Internal(w, h.Log, "load project", err)
		return
	}
	if !project.HasMember(userID) {
		httperr.Forbidden(w, "you are not a member of this project")
		return
	}

	if err := projects.UpdateInfo(ctx, projectID, name, htmlsanitize.Clean(req.Description)); err != nil {
		httperr.Internal(w, h.Log, "update project", err)
		return
	}

	h.publish(events.Event{
		Kind:      events.ProjectUpdated,
		ProjectID: projectID,
		ActorID:   userID,
		Subject:   name,
	})

	updated, err := projects.GetByID(ctx, projectID)
	if err != nil {
		httperr.Internal(w, h.Log, "reload project", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
