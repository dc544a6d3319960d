package profile_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/teamtool/teamtool/internal/app/features/profile"
	"github.com/teamtool/teamtool/internal/domain/models"
	"github.com/teamtool/teamtool/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*profile.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return profile.NewHandler(db, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestServe(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")

	req := httptest.NewRequest("GET", "/profile", nil)
	req = testutil.WithUser(req, testutil.UserFor(user.ID, user.Name, user.Email))
	rec := httptest.NewRecorder()

	h.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("email: got %q", got.Email)
	}
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("password hash leaked in profile response")
	}
}

func TestHandleUpdate(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")

	body := strings.NewReader(`{"name":"Alice Cooper","skills":["Go","<b>Mongo</b>"],"availability":"weekends"}`)
	req := httptest.NewRequest("PUT", "/profile", body)
	req = testutil.WithUser(req, testutil.UserFor(user.ID, user.Name, user.Email))
	rec := httptest.NewRecorder()

	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var got models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Name != "Alice Cooper" || got.Availability != "weekends" {
		t.Errorf("unexpected profile: %+v", got)
	}
	if len(got.Skills) != 2 || got.Skills[1] != "Mongo" {
		t.Errorf("skills not sanitized: %v", got.Skills)
	}
}

func TestHandleUpdate_BlankName(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")

	body := strings.NewReader(`{"name":"  "}`)
	req := httptest.NewRequest("PUT", "/profile", body)
	req = testutil.WithUser(req, testutil.UserFor(user.ID, user.Name, user.Email))
	rec := httptest.NewRecorder()

	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}
