// internal/app/features/projects/helpers.go
package projects

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/teamtool/teamtool/internal/app/system/auth"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// currentUserOID resolves the session user's object id. A second return
// of false means the response has already been written.
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

// pathOID parses the named chi URL parameter as an object id.
func pathOID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		httperr.BadRequest(w, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return oid, true
}

// decodeJSON reads the request body into dst with a size cap.
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

// publish hands an event to the bus; a full buffer is logged, never
// surfaced to the caller.
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
