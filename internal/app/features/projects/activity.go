// internal/app/features/projects/activity.go
package projects

import (
	"context"
	"net/http"
	"strconv"

	"github.com/teamtool/teamtool/internal/app/store/activity"
	projectstore "github.com/teamtool/teamtool/internal/app/store/projects"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
)

const defaultActivityLimit = 50

// ServeActivity handles GET /projects/{id}/activity: the project's
// history, latest first. Accepts ?limit=N up to 200.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}
	projectID, ok := pathOID(w, r, "id")
	if !ok {
		return
	}

	limit := int64(defaultActivityLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > 200 {
			httperr.Validation(w, "limit must be between 1 and 200", nil)
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	project, err := projectstore.New(h.DB).GetByID(ctx, projectID)
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

	entries, err := activity.New(h.DB).ListByProject(ctx, projectID, limit)
	if err != nil {
		httperr.Internal(w, h.Log, "list project activity", err)
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": entries})
}
