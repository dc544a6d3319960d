// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/teamtool/teamtool/internal/app/store/users"
	"github.com/teamtool/teamtool/internal/app/system/auth"
	"github.com/teamtool/teamtool/internal/app/system/authutil"
	"github.com/teamtool/teamtool/internal/app/system/htmlsanitize"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"github.com/teamtool/teamtool/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, SessionMgr: sm}
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

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister handles POST /auth/register. A successful registration
// also signs the new user in.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := htmlsanitize.Clean(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	fields := map[string]string{}
	if name == "" {
		fields["name"] = "required"
	}
	if !authutil.ValidEmail(email) {
		fields["email"] = "invalid"
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		fields["password"] = err.Error()
	}
	if len(fields) > 0 {
		httperr.Validation(w, "invalid registration", fields)
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		httperr.Internal(w, h.Log, "hash password", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := userstore.New(h.DB).Create(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		AuthMethod:   models.AuthMethodPassword,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		httperr.Conflict(w, "a user with this email already exists")
		return
	}
	if err != nil {
		httperr.Internal(w, h.Log, "create user", err)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, &user); err != nil {
		httperr.Internal(w, h.Log, "sign in", err)
		return
	}

	h.Log.Info("user registered", zap.String("user_id", user.ID.Hex()))
	writeJSON(w, http.StatusCreated, sessionBody(&user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /auth/login. The response never says whether
// the email or the password was wrong.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).GetByEmail(ctx, req.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httperr.Unauthenticated(w)
		return
	}
	if err != nil {
		httperr.Internal(w, h.Log, "load user", err)
		return
	}
	if user.AuthMethod != models.AuthMethodPassword || !authutil.CheckPassword(req.Password, user.PasswordHash) {
		httperr.Unauthenticated(w)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, user); err != nil {
		httperr.Internal(w, h.Log, "sign in", err)
		return
	}

	writeJSON(w, http.StatusOK, sessionBody(user))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword handles PUT /auth/password. Only password-auth
// accounts have a password to change; the current one must be supplied.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := auth.CurrentUser(r)
	if !ok {
		httperr.Unauthenticated(w)
		return
	}
	userID, err := primitive.ObjectIDFromHex(sessionUser.ID)
	if err != nil {
		httperr.Unauthenticated(w)
		return
	}

	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := authutil.ValidatePassword(req.NewPassword); err != nil {
		httperr.Validation(w, "invalid new password", map[string]string{"new_password": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users := userstore.New(h.DB)
	user, err := users.GetByID(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httperr.Unauthenticated(w)
		return
	}
	if err != nil {
		httperr.Internal(w, h.Log, "load user", err)
		return
	}
	if user.AuthMethod != models.AuthMethodPassword {
		httperr.Validation(w, "this account does not sign in with a password", map[string]string{"auth_method": user.AuthMethod})
		return
	}
	if !authutil.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		httperr.Unauthenticated(w)
		return
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		httperr.Internal(w, h.Log, "hash password", err)
		return
	}
	if err := users.SetPasswordHash(ctx, userID, hash); err != nil {
		httperr.Internal(w, h.Log, "set password hash", err)
		return
	}

	h.Log.Info("password changed", zap.String("user_id", userID.Hex()))
	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// ServeSession handles GET /auth/session, reporting who is signed in.
func (h *Handler) ServeSession(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httperr.Unauthenticated(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func sessionBody(u *models.User) map[string]any {
	return map[string]any{
		"user": auth.SessionUser{
			ID:    u.ID.Hex(),
			Name:  u.Name,
			Email: u.Email,
		},
	}
}
