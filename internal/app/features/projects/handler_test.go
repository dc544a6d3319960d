package projects_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/teamtool/teamtool/internal/app/features/projects"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"github.com/teamtool/teamtool/internal/domain/models"
	"github.com/teamtool/teamtool/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*projects.Handler, *testutil.Fixtures, *events.Bus) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	bus := events.NewBus(64)
	h := projects.NewHandler(db, db.Client(), bus, zap.NewNop())
	return h, testutil.NewFixtures(t, db), bus
}

func TestHandleCreate_SeedsAdminMember(t *testing.T) {
	h, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")

	body := strings.NewReader(`{"name":"Apollo","description":"Launch tracker"}`)
	req := httptest.NewRequest("POST", "/projects", body)
	req = testutil.WithUser(req, testutil.UserFor(creator.ID, creator.Name, creator.Email))
	rec := httptest.NewRecorder()

	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var created models.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.CreatorID != creator.ID {
		t.Errorf("CreatorID: got %v, want %v", created.CreatorID, creator.ID)
	}
	if !created.HasMember(creator.ID) {
		t.Error("creator missing from member_ids")
	}

	var member struct {
		Role string `bson:"role"`
	}
	err := fixtures.DB().Collection("members").FindOne(ctx, bson.M{
		"project_id": created.ID,
		"user_id":    creator.ID,
	}).Decode(&member)
	if err != nil {
		t.Fatalf("creator member document missing: %v", err)
	}
	if member.Role != models.RoleAdmin {
		t.Errorf("creator role: got %q, want %q", member.Role, models.RoleAdmin)
	}
}

func TestHandleCreate_RejectsBlankName(t *testing.T) {
	h, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")

	body := strings.NewReader(`{"name":"<script>x</script>"}`)
	req := httptest.NewRequest("POST", "/projects", body)
	req = testutil.WithUser(req, testutil.UserFor(creator.ID, creator.Name, creator.Email))
	rec := httptest.NewRecorder()

	h.HandleCreate(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHandleAddMember_SecondAddConflicts(t *testing.T) {
	h, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	joiner := fixtures.CreateUser(ctx, "Joiner", "joiner@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)
	fixtures.CreateMember(ctx, project.ID, creator.ID, models.RoleAdmin)

	add := func() *httptest.ResponseRecorder {
		body := strings.NewReader(`{"user_id":"` + joiner.ID.Hex() + `","role":"Developer"}`)
		req := httptest.NewRequest("POST", "/projects/"+project.ID.Hex()+"/members", body)
		req = testutil.WithUser(req, testutil.UserFor(creator.ID, creator.Name, creator.Email))
		req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
		rec := httptest.NewRecorder()
		h.HandleAddMember(rec, req)
		return rec
	}

	if rec := add(); rec.Code != http.StatusCreated {
		t.Fatalf("first add status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}
	if rec := add(); rec.Code != http.StatusConflict {
		t.Errorf("second add status = %d, want 409", rec.Code)
	}

	count, err := fixtures.DB().Collection("members").CountDocuments(ctx, bson.M{
		"project_id": project.ID,
		"user_id":    joiner.ID,
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("member documents: got %d, want exactly 1", count)
	}

	var proj models.Project
	if err := fixtures.DB().Collection("projects").FindOne(ctx, bson.M{"_id": project.ID}).Decode(&proj); err != nil {
		t.Fatalf("reload project: %v", err)
	}
	n := 0
	for _, id := range proj.MemberIDs {
		if id == joiner.ID {
			n++
		}
	}
	if n != 1 {
		t.Errorf("joiner appears %d times in member_ids, want 1", n)
	}
}

func TestHandleAddMember_UnknownRole(t *testing.T) {
	h, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	joiner := fixtures.CreateUser(ctx, "Joiner", "joiner@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)

	body := strings.NewReader(`{"user_id":"` + joiner.ID.Hex() + `","role":"Owner"}`)
	req := httptest.NewRequest("POST", "/projects/"+project.ID.Hex()+"/members", body)
	req = testutil.WithUser(req, testutil.UserFor(creator.ID, creator.Name, creator.Email))
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleAddMember(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for unknown role", rec.Code)
	}
}

func TestHandleSetRole(t *testing.T) {
	h, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	dev := fixtures.CreateUser(ctx, "Dev", "dev@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)
	fixtures.AddProjectMember(ctx, project.ID, dev.ID)
	fixtures.CreateMember(ctx, project.ID, dev.ID, models.RoleMember)

	body := strings.NewReader(`{"role":"QA"}`)
	req := httptest.NewRequest("PATCH", "/projects/"+project.ID.Hex()+"/members/"+dev.ID.Hex(), body)
	req = testutil.WithUser(req, testutil.UserFor(creator.ID, creator.Name, creator.Email))
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	req = testutil.WithChiURLParam(req, "userId", dev.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleSetRole(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var member struct {
		Role string `bson:"role"`
	}
	err := fixtures.DB().Collection("members").FindOne(ctx, bson.M{
		"project_id": project.ID,
		"user_id":    dev.ID,
	}).Decode(&member)
	if err != nil {
		t.Fatalf("reload member: %v", err)
	}
	if member.Role != models.RoleQA {
		t.Errorf("role: got %q, want %q", member.Role, models.RoleQA)
	}
}

func TestHandleSetRole_UnknownRole(t *testing.T) {
	h, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	dev := fixtures.CreateUser(ctx, "Dev", "dev@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)
	fixtures.AddProjectMember(ctx, project.ID, dev.ID)
	fixtures.CreateMember(ctx, project.ID, dev.ID, models.RoleMember)

	body := strings.NewReader(`{"role":"Owner"}`)
	req := httptest.NewRequest("PATCH", "/projects/"+project.ID.Hex()+"/members/"+dev.ID.Hex(), body)
	req = testutil.WithUser(req, testutil.UserFor(creator.ID, creator.Name, creator.Email))
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	req = testutil.WithChiURLParam(req, "userId", dev.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleSetRole(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHandleSetRole_NotAMember(t *testing.T) {
	h, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	outsider := fixtures.CreateUser(ctx, "Outsider", "outsider@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)

	body := strings.NewReader(`{"role":"Developer"}`)
	req := httptest.NewRequest("PATCH", "/projects/"+project.ID.Hex()+"/members/"+outsider.ID.Hex(), body)
	req = testutil.WithUser(req, testutil.UserFor(creator.ID, creator.Name, creator.Email))
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	req = testutil.WithChiURLParam(req, "userId", outsider.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleSetRole(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for non-member target", rec.Code)
	}
}

func TestHandleRemoveMember_CreatorRejected(t *testing.T) {
	h, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)

	req := httptest.NewRequest("DELETE", "/projects/"+project.ID.Hex()+"/members/"+creator.ID.Hex(), nil)
	req = testutil.WithUser(req, testutil.UserFor(creator.ID, creator.Name, creator.Email))
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	req = testutil.WithChiURLParam(req, "userId", creator.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleRemoveMember(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 when removing the creator", rec.Code)
	}
}

func TestHandleRemoveMember_ClearsAssignments(t *testing.T) {
	h, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	dev := fixtures.CreateUser(ctx, "Dev", "dev@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)
	fixtures.AddProjectMember(ctx, project.ID, dev.ID)
	fixtures.CreateMember(ctx, project.ID, dev.ID, models.RoleDeveloper)
	task := fixtures.CreateAssignedTask(ctx, project.ID, dev.ID, "Mine", models.TaskStatusInProgress)

	req := httptest.NewRequest("DELETE", "/projects/"+project.ID.Hex()+"/members/"+dev.ID.Hex(), nil)
	req = testutil.WithUser(req, testutil.UserFor(creator.ID, creator.Name, creator.Email))
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	req = testutil.WithChiURLParam(req, "userId", dev.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleRemoveMember(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var got models.Task
	if err := fixtures.DB().Collection("tasks").FindOne(ctx, bson.M{"_id": task.ID}).Decode(&got); err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if got.AssignedTo != nil {
		t.Errorf("task still assigned to removed member: %v", got.AssignedTo)
	}
}

func TestHandleDelete_CascadeRemovesTasksAndMembers(t *testing.T) {
	h, fixtures, bus := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	dev := fixtures.CreateUser(ctx, "Dev", "dev@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)
	fixtures.AddProjectMember(ctx, project.ID, dev.ID)
	fixtures.CreateMember(ctx, project.ID, creator.ID, models.RoleAdmin)
	fixtures.CreateMember(ctx, project.ID, dev.ID, models.RoleDeveloper)
	fixtures.CreateTask(ctx, project.ID, "One", models.TaskStatusToDo)
	fixtures.CreateTask(ctx, project.ID, "Two", models.TaskStatusDone)

	req := httptest.NewRequest("DELETE", "/projects/"+project.ID.Hex(), nil)
	req = testutil.WithUser(req, testutil.UserFor(creator.ID, creator.Name, creator.Email))
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	for _, coll := range []string{"projects", "members", "tasks"} {
		filter := bson.M{"project_id": project.ID}
		if coll == "projects" {
			filter = bson.M{"_id": project.ID}
		}
		count, err := fixtures.DB().Collection(coll).CountDocuments(ctx, filter)
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if count != 0 {
			t.Errorf("%s: %d documents remain after cascade", coll, count)
		}
	}

	// The deletion event was published for the history tombstone.
	select {
	case ev := <-bus.Events():
		if ev.Kind != events.ProjectDeleted {
			t.Errorf("event kind: got %q, want %q", ev.Kind, events.ProjectDeleted)
		}
	default:
		t.Error("no deletion event published")
	}
}

func TestHandleDelete_NonCreatorForbidden(t *testing.T) {
	h, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	dev := fixtures.CreateUser(ctx, "Dev", "dev@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)
	fixtures.AddProjectMember(ctx, project.ID, dev.ID)

	req := httptest.NewRequest("DELETE", "/projects/"+project.ID.Hex(), nil)
	req = testutil.WithUser(req, testutil.UserFor(dev.ID, dev.Name, dev.Email))
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleDelete(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestServeDetail_NotFound(t *testing.T) {
	h, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "User", "user@example.com")
	missing := "65f000000000000000000000"

	req := httptest.NewRequest("GET", "/projects/"+missing+"/detail", nil)
	req = testutil.WithUser(req, testutil.UserFor(user.ID, user.Name, user.Email))
	req = testutil.WithChiURLParam(req, "id", missing)
	rec := httptest.NewRecorder()

	h.ServeDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServeDetail_NonMemberForbidden(t *testing.T) {
	h, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	outsider := fixtures.CreateUser(ctx, "Outsider", "outsider@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)

	req := httptest.NewRequest("GET", "/projects/"+project.ID.Hex()+"/detail", nil)
	req = testutil.WithUser(req, testutil.UserFor(outsider.ID, outsider.Name, outsider.Email))
	req = testutil.WithChiURLParam(req, "id", project.ID.Hex())
	rec := httptest.NewRecorder()

	h.ServeDetail(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestServeList_OnlyMyProjects(t *testing.T) {
	h, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	fixtures.CreateProject(ctx, "Mine", alice.ID)
	fixtures.CreateProject(ctx, "Not Mine", bob.ID)

	req := httptest.NewRequest("GET", "/projects", nil)
	req = testutil.WithUser(req, testutil.UserFor(alice.ID, alice.Name, alice.Email))
	rec := httptest.NewRecorder()

	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Projects []models.Project `json:"projects"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Projects) != 1 || resp.Projects[0].Name != "Mine" {
		t.Errorf("projects: got %v, want only Mine", resp.Projects)
	}
}
