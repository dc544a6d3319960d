package activity_test

import (
	"testing"

	"github.com/teamtool/teamtool/internal/app/store/activity"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"github.com/teamtool/teamtool/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Record_ExactlyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()
	ev := events.Event{
		EventID:   "evt-1",
		Kind:      events.TaskCreated,
		ProjectID: projectID,
		ActorID:   primitive.NewObjectID(),
		Subject:   "Write docs",
	}

	if err := store.Record(ctx, ev); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	// Recording the same event id again is a silent no-op.
	if err := store.Record(ctx, ev); err != nil {
		t.Fatalf("duplicate Record returned error: %v", err)
	}

	entries, err := store.ListByProject(ctx, projectID, 10)
	if err != nil {
		t.Fatalf("ListByProject failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}
}

func TestStore_ListByProject_LatestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()
	actor := primitive.NewObjectID()
	for _, kind := range []string{events.ProjectCreated, events.MemberAdded, events.TaskCreated} {
		ev := events.Event{
			EventID:   primitive.NewObjectID().Hex(),
			Kind:      kind,
			ProjectID: projectID,
			ActorID:   actor,
		}
		if err := store.Record(ctx, ev); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries, err := store.ListByProject(ctx, projectID, 2)
	if err != nil {
		t.Fatalf("ListByProject failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("limit not applied: got %d entries", len(entries))
	}
}

func TestStore_DeleteByProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	actor := primitive.NewObjectID()

	for _, pid := range []primitive.ObjectID{projectID, projectID, otherID} {
		ev := events.Event{
			EventID:   primitive.NewObjectID().Hex(),
			Kind:      events.TaskCreated,
			ProjectID: pid,
			ActorID:   actor,
		}
		if err := store.Record(ctx, ev); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	n, err := store.DeleteByProject(ctx, projectID)
	if err != nil {
		t.Fatalf("DeleteByProject failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d entries, want 2", n)
	}

	remaining, err := store.ListByProject(ctx, otherID, 10)
	if err != nil {
		t.Fatalf("ListByProject failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("other project history touched: %d entries", len(remaining))
	}
}
