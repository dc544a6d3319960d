// internal/app/features/projects/list.go
package projects

import (
	"context"
	"net/http"

	projectstore "github.com/teamtool/teamtool/internal/app/store/projects"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"github.com/teamtool/teamtool/internal/domain/models"
)

type listResponse struct {
	Projects []models.Project `json:"projects"`
}

// ServeList handles GET /projects: every project the caller belongs to.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := projectstore.New(h.DB).ListByMember(ctx, userID)
	if err != nil {
		httperr.Internal(w, h.Log, "list projects", err)
		return
	}
	if list == nil {
		list = []models.Project{}
	}

	writeJSON(w, http.StatusOK, listResponse{Projects: list})
}
