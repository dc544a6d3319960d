// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	userstore "github.com/teamtool/teamtool/internal/app/store/users"
	"github.com/teamtool/teamtool/internal/app/system/auth"
	"github.com/teamtool/teamtool/internal/app/system/htmlsanitize"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve handles GET /profile.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).GetByID(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httperr.NotFound(w, "user not found")
		return
	}
	if err != nil {
		httperr.Internal(w, h.Log, "load profile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateRequest struct {
	Name         string   `json:"name"`
	Skills       []string `json:"skills"`
	Availability string   `json:"availability"`
}

// HandleUpdate handles PUT /profile. Email and auth method are not
// editable here.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var req updateRequest
	if err := dec.Decode(&req); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return
	}

	name := htmlsanitize.Clean(req.Name)
	if name == "" {
		httperr.Validation(w, "name is required", map[string]string{"name": "required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users := userstore.New(h.DB)
	err := users.UpdateProfile(ctx, userID, userstore.ProfileUpdate{
		Name:         name,
		Skills:       htmlsanitize.CleanAll(req.Skills),
		Availability: htmlsanitize.Clean(req.Availability),
	})
	if err != nil {
		httperr.Internal(w, h.Log, "update profile", err)
		return
	}

	user, err := users.GetByID(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httperr.NotFound(w, "user not found")
		return
	}
	if err != nil {
		httperr.Internal(w, h.Log, "reload profile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
