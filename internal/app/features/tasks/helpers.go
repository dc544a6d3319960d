// internal/app/features/tasks/helpers.go
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	projectstore "github.com/teamtool/teamtool/internal/app/store/projects"
	"github.com/teamtool/teamtool/internal/app/system/auth"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func currentUserOID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httperr.Unauthenticated(w)
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		httperr.Unauthenticated(w)
		return primitive.NilObjectID, false
	}
	return oid, true
}

func pathOID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		httperr.BadRequest(w, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return oid, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requireMember loads the project and checks the caller belongs to it.
// On failure the response has already been written.
func (h *Handler) requireMember(ctx context.Context, w http.ResponseWriter, projectID, userID primitive.ObjectID) (models.Project, bool) {
	project, err := projectstore.New(h.DB).GetByID(ctx, projectID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httperr.NotFound(w, "project not found")
		return models.Project{}, false
	}
	if err != nil {
		httperr.Internal(w, h.Log, "load project", err)
		return models.Project{}, false
	}
	if !project.HasMember(userID) {
		httperr.Forbidden(w, "not a member of this project")
		return models.Project{}, false
	}
	return project, true
}

func (h *Handler) publish(ev events.Event) {
	if h.Bus == nil {
		return
	}
	if !h.Bus.Publish(ev) {
		h.Log.Warn("event bus full, dropping event",
			zap.String("kind", ev.Kind),
			zap.String("project_id", ev.ProjectID.Hex()))
	}
}
