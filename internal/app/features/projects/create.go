// internal/app/features/projects/create.go
package projects

import (
	"context"
	"net/http"

	memberstore "github.com/teamtool/teamtool/internal/app/store/members"
	projectstore "github.com/teamtool/teamtool/internal/app/store/projects"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"github.com/teamtool/teamtool/internal/app/system/htmlsanitize"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"github.com/teamtool/teamtool/internal/app/system/txn"
	"github.com/teamtool/teamtool/internal/domain/models"
)

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreate handles POST /projects. The creator becomes the first
// member with the Admin role.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}

	var req createRequest
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
	members := memberstore.New(h.DB)

	var created models.Project
	err := txn.Run(ctx, h.Client, h.Log, func(ctx context.Context) error {
		var err error
		created, err = projects.Create(ctx, models.Project{
			Name:        name,
			Description: htmlsanitize.Clean(req.Description),
			CreatorID:   userID,
		})
		if err != nil {
			return err
		}
		return members.Add(ctx, created.ID, userID, models.RoleAdmin)
	})
	if err != nil {
		httperr.Internal(w, h.Log, "create project", err)
		return
	}

	h.publish(events.Event{
		Kind:      events.ProjectCreated,
		ProjectID: created.ID,
		ActorID:   userID,
		Subject:   created.Name,
	})

	writeJSON(w, http.StatusCreated, created)
}
