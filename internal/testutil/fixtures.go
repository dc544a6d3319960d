package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/teamtool/teamtool/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Email:      email,
		EmailCI:    text.Fold(email),
		AuthMethod: models.AuthMethodPassword,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateProject creates a test project owned by creatorID. The creator
// is seeded into member_ids the way project creation does.
func (f *Fixtures) CreateProject(ctx context.Context, name string, creatorID primitive.ObjectID) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	project := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test project description",
		CreatorID:   creatorID,
		MemberIDs:   []primitive.ObjectID{creatorID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("projects").InsertOne(ctx, project)
	if err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}

	return project
}

// CreateMember creates a member document linking a user to a project.
func (f *Fixtures) CreateMember(ctx context.Context, projectID, userID primitive.ObjectID, role string) models.Member {
	f.t.Helper()

	member := models.Member{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("members").InsertOne(ctx, member)
	if err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}

	return member
}

// AddProjectMember appends userID to a project's member_ids array, the
// way membership addition maintains the embedded list.
func (f *Fixtures) AddProjectMember(ctx context.Context, projectID, userID primitive.ObjectID) {
	f.t.Helper()

	_, err := f.db.Collection("projects").UpdateByID(ctx, projectID, map[string]any{
		"$addToSet": map[string]any{"member_ids": userID},
	})
	if err != nil {
		f.t.Fatalf("failed to add project member: %v", err)
	}
}

// CreateTask creates a test task in the given project.
func (f *Fixtures) CreateTask(ctx context.Context, projectID primitive.ObjectID, title, status string) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Title:     title,
		Status:    status,
		Priority:  models.TaskPriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("tasks").InsertOne(ctx, task)
	if err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}

	return task
}

// CreateAssignedTask creates a test task assigned to a user.
func (f *Fixtures) CreateAssignedTask(ctx context.Context, projectID, assigneeID primitive.ObjectID, title, status string) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:         primitive.NewObjectID(),
		ProjectID:  projectID,
		Title:      title,
		AssignedTo: &assigneeID,
		Status:     status,
		Priority:   models.TaskPriorityMedium,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("tasks").InsertOne(ctx, task)
	if err != nil {
		f.t.Fatalf("failed to create assigned test task: %v", err)
	}

	return task
}
