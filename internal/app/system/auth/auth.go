// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/domain/models"
	"go.uber.org/zap"
)

type ctxKey int

const userKey ctxKey = 0

// Session value keys.
const (
	valAuthenticated = "is_authenticated"
	valUserID        = "user_id"
)

// SessionUser is the identity attached to a request after the session
// cookie has been validated. It carries only what handlers need for
// authorization and display; everything else is loaded from the users
// collection on demand.
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserFetcher resolves a user id from the session cookie into a
// SessionUser, normally by reading the users collection. Returning an
// error or nil treats the session as signed out.
type UserFetcher func(ctx context.Context, id string) (*SessionUser, error)

// SessionManager owns the session cookie store and the middleware that
// authenticates requests from it.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher UserFetcher
}

// NewSessionManager builds a cookie-backed session manager.
// secretKey must be at least 32 bytes; it signs (and with 64+ bytes
// encrypts) the session cookie.
func NewSessionManager(secretKey, cookieName, domain string, maxAge time.Duration, secure bool, log *zap.Logger) (*SessionManager, error) {
	if len(secretKey) < 32 {
		return nil, errors.New("auth: session secret key must be at least 32 bytes")
	}
	if cookieName == "" {
		return nil, errors.New("auth: session cookie name is required")
	}

	store := sessions.NewCookieStore([]byte(secretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   domain,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionManager{
		store: store,
		name:  cookieName,
		log:   log,
	}, nil
}

// SetUserFetcher wires the store-backed lookup used by LoadSessionUser.
// Must be called before the middleware serves traffic.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) {
	sm.fetcher = f
}

// Store exposes the underlying cookie store (logout needs its options).
func (sm *SessionManager) Store() *sessions.CookieStore {
	return sm.store
}

// GetSession returns the request's session, or a fresh one when the
// cookie is absent or fails to decode. The error is informational; the
// returned session is always usable.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// SignIn marks the session authenticated for u and writes the cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *models.User) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			sm.log.Warn("session cookie invalid, using fresh session",
				zap.Error(err),
				zap.String("user_id", u.ID.Hex()))
		} else {
			sm.log.Error("session store error during sign-in, using fresh session",
				zap.Error(err),
				zap.String("user_id", u.ID.Hex()))
		}
	}

	sess.Values[valAuthenticated] = true
	sess.Values[valUserID] = u.ID.Hex()
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Warn("session decode failed during sign-out", zap.Error(err))
	}

	// The deletion-cookie must match the original store settings.
	if opts := sm.store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1

	return sess.Save(r, w)
}

// LoadSessionUser resolves the session cookie into a SessionUser and
// stores it on the request context. Requests without a valid session
// pass through untouched; RequireSignedIn decides whether that matters.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Tests inject a user directly; don't overwrite it.
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := sm.GetSession(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		authed, _ := sess.Values[valAuthenticated].(bool)
		id, _ := sess.Values[valUserID].(string)
		if !authed || id == "" || sm.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := sm.fetcher(r.Context(), id)
		if err != nil || user == nil {
			if err != nil {
				sm.log.Warn("session user lookup failed", zap.String("user_id", id), zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// RequireSignedIn rejects requests that have no resolved session user.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			httperr.Unauthenticated(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the session user attached to the request, if any.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(userKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser attaches a session user directly to the request context.
// Test helper; production requests go through LoadSessionUser.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey, u))
}
