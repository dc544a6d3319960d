package taskstore_test

import (
	"testing"

	taskstore "github.com/teamtool/teamtool/internal/app/store/tasks"
	"github.com/teamtool/teamtool/internal/domain/models"
	"github.com/teamtool/teamtool/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)

	created, err := store.Create(ctx, models.Task{
		ProjectID: project.ID,
		Title:     "  Write docs  ",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.Title != "Write docs" {
		t.Errorf("Title: got %q, want trimmed %q", created.Title, "Write docs")
	}
	if created.Status != models.TaskStatusToDo {
		t.Errorf("Status: got %q, want default %q", created.Status, models.TaskStatusToDo)
	}
	if created.Priority != models.TaskPriorityMedium {
		t.Errorf("Priority: got %q, want default %q", created.Priority, models.TaskPriorityMedium)
	}
	if created.AssignedTo != nil {
		t.Errorf("AssignedTo: got %v, want nil", created.AssignedTo)
	}
}

func TestStore_Create_Invalid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cases := []struct {
		name string
		task models.Task
	}{
		{"empty title", models.Task{Title: "   "}},
		{"bad status", models.Task{Title: "T", Status: "Blocked"}},
		{"bad priority", models.Task{Title: "T", Priority: "Urgent"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := store.Create(ctx, tc.task); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	assignee := fixtures.CreateUser(ctx, "Assignee", "assignee@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)
	task := fixtures.CreateTask(ctx, project.ID, "Original", models.TaskStatusToDo)

	err := store.Update(ctx, task.ID, taskstore.Update{
		Title:       "Renamed",
		Description: "with details",
		AssignedTo:  &assignee.ID,
		Status:      models.TaskStatusInProgress,
		Priority:    models.TaskPriorityHigh,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Title: got %q, want %q", got.Title, "Renamed")
	}
	if got.AssignedTo == nil || *got.AssignedTo != assignee.ID {
		t.Errorf("AssignedTo: got %v, want %v", got.AssignedTo, assignee.ID)
	}
	if got.Status != models.TaskStatusInProgress {
		t.Errorf("Status: got %q, want %q", got.Status, models.TaskStatusInProgress)
	}
	if got.Priority != models.TaskPriorityHigh {
		t.Errorf("Priority: got %q, want %q", got.Priority, models.TaskPriorityHigh)
	}
}

func TestStore_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)
	task := fixtures.CreateTask(ctx, project.ID, "Task", models.TaskStatusToDo)

	if err := store.UpdateStatus(ctx, task.ID, models.TaskStatusDone); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	got, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.TaskStatusDone {
		t.Errorf("Status: got %q, want %q", got.Status, models.TaskStatusDone)
	}
	// Other fields untouched.
	if got.Title != "Task" {
		t.Errorf("Title changed: got %q", got.Title)
	}

	if err := store.UpdateStatus(ctx, task.ID, "Archived"); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestStore_ListByProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)
	other := fixtures.CreateProject(ctx, "Other", creator.ID)

	fixtures.CreateTask(ctx, project.ID, "One", models.TaskStatusToDo)
	fixtures.CreateTask(ctx, project.ID, "Two", models.TaskStatusDone)
	fixtures.CreateTask(ctx, other.ID, "Elsewhere", models.TaskStatusToDo)

	tasks, err := store.ListByProject(ctx, project.ID, "")
	if err != nil {
		t.Fatalf("ListByProject failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(tasks))
	}

	done, err := store.ListByProject(ctx, project.ID, models.TaskStatusDone)
	if err != nil {
		t.Fatalf("ListByProject with status failed: %v", err)
	}
	if len(done) != 1 || done[0].Title != "Two" {
		t.Errorf("expected only the Done task, got %v", done)
	}

	if _, err := store.ListByProject(ctx, project.ID, "Bogus"); err == nil {
		t.Error("expected error for invalid status filter")
	}
}

func TestStore_DeleteByProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)
	other := fixtures.CreateProject(ctx, "Other", creator.ID)

	fixtures.CreateTask(ctx, project.ID, "One", models.TaskStatusToDo)
	fixtures.CreateTask(ctx, project.ID, "Two", models.TaskStatusInProgress)
	survivor := fixtures.CreateTask(ctx, other.ID, "Keep", models.TaskStatusToDo)

	n, err := store.DeleteByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("DeleteByProject failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d tasks, want 2", n)
	}

	if _, err := store.GetByID(ctx, survivor.ID); err != nil {
		t.Errorf("task in other project was deleted: %v", err)
	}
}

func TestStore_ClearAssignee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	dev := fixtures.CreateUser(ctx, "Dev", "dev@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)
	other := fixtures.CreateProject(ctx, "Other", creator.ID)

	t1 := fixtures.CreateAssignedTask(ctx, project.ID, dev.ID, "Mine", models.TaskStatusInProgress)
	t2 := fixtures.CreateAssignedTask(ctx, other.ID, dev.ID, "Elsewhere", models.TaskStatusToDo)

	n, err := store.ClearAssignee(ctx, project.ID, dev.ID)
	if err != nil {
		t.Fatalf("ClearAssignee failed: %v", err)
	}
	if n != 1 {
		t.Errorf("cleared %d tasks, want 1", n)
	}

	got, err := store.GetByID(ctx, t1.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.AssignedTo != nil {
		t.Errorf("AssignedTo: got %v, want nil", got.AssignedTo)
	}

	still, err := store.GetByID(ctx, t2.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if still.AssignedTo == nil {
		t.Error("assignment in other project was cleared")
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	project := fixtures.CreateProject(ctx, "Apollo", creator.ID)
	task := fixtures.CreateTask(ctx, project.ID, "Task", models.TaskStatusToDo)

	if _, err := store.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, task.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}
