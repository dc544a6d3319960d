// internal/app/features/projects/detail.go
package projects

import (
	"context"
	"net/http"

	"github.com/teamtool/teamtool/internal/app/store/queries/projectdetail"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeDetail handles GET /projects/{id}/detail: the assembled project
// screen with members, tasks, and the invitable-user pool. Side fetch
// failures degrade to partial data; the response names the sections
// that are missing.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}
	projectID, ok := pathOID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := projectdetail.Load(ctx, h.DB, projectID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httperr.NotFound(w, "project not found")
			return
		}
		httperr.Internal(w, h.Log, "load project detail", err)
		return
	}

	if !d.Project.HasMember(userID) {
		httperr.Forbidden(w, "you are not a member of this project")
		return
	}

	writeJSON(w, http.StatusOK, d)
}
