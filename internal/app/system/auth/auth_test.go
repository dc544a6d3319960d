// internal/app/system/auth/auth_test.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teamtool/teamtool/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func testUserModel(t *testing.T) *models.User {
	t.Helper()
	return &models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Dana",
		Email: "dana@example.com",
	}
}

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sm
}

func TestNewSessionManager_RejectsShortKey(t *testing.T) {
	if _, err := NewSessionManager("short", "s", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Error("expected error for short secret key")
	}
}

func TestNewSessionManager_RejectsEmptyCookieName(t *testing.T) {
	if _, err := NewSessionManager("test-session-key-for-testing-only", "", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Error("expected error for empty cookie name")
	}
}

func TestRequireSignedIn_NoUser(t *testing.T) {
	sm := newTestManager(t)

	called := false
	h := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/projects", nil))

	if called {
		t.Error("handler ran without a session user")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestRequireSignedIn_WithUser(t *testing.T) {
	sm := newTestManager(t)

	var got *SessionUser
	h := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))

	req := WithTestUser(httptest.NewRequest("GET", "/projects", nil), &SessionUser{ID: "abc", Name: "Dana"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || got.ID != "abc" {
		t.Errorf("CurrentUser = %+v, want ID abc", got)
	}
}

func TestSignInThenLoadSessionUser(t *testing.T) {
	sm := newTestManager(t)
	sm.SetUserFetcher(func(ctx context.Context, id string) (*SessionUser, error) {
		return &SessionUser{ID: id, Name: "Dana", Email: "dana@example.com"}, nil
	})

	// Sign in and capture the cookie.
	u := testUserModel(t)
	signInRec := httptest.NewRecorder()
	if err := sm.SignIn(signInRec, httptest.NewRequest("POST", "/auth/login", nil), u); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := signInRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("SignIn set no cookie")
	}

	// Replay the cookie through the middleware.
	var got *SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))
	req := httptest.NewRequest("GET", "/projects", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("no session user resolved from cookie")
	}
	if got.ID != u.ID.Hex() {
		t.Errorf("resolved ID = %q, want %q", got.ID, u.ID.Hex())
	}
}

func TestLoadSessionUser_FetcherError(t *testing.T) {
	sm := newTestManager(t)
	sm.SetUserFetcher(func(ctx context.Context, id string) (*SessionUser, error) {
		return nil, errors.New("user deleted")
	})

	u := testUserModel(t)
	signInRec := httptest.NewRecorder()
	if err := sm.SignIn(signInRec, httptest.NewRequest("POST", "/auth/login", nil), u); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	h := sm.LoadSessionUser(sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))
	req := httptest.NewRequest("GET", "/projects", nil)
	for _, c := range signInRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 when fetcher fails", rec.Code)
	}
}

func TestSignOutExpiresCookie(t *testing.T) {
	sm := newTestManager(t)

	rec := httptest.NewRecorder()
	if err := sm.SignOut(rec, httptest.NewRequest("POST", "/auth/logout", nil)); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("SignOut set no cookie")
	}
	if cookies[0].MaxAge >= 0 {
		t.Errorf("cookie MaxAge = %d, want negative (deletion)", cookies[0].MaxAge)
	}
}
