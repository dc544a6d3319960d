// internal/app/store/activity/store.go
package activity

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Entry is a persisted project history record.
type Entry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   string             `bson:"event_id" json:"event_id"`
	Kind      string             `bson:"kind" json:"kind"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	ActorID   primitive.ObjectID `bson:"actor_id" json:"actor_id"`
	Subject   string             `bson:"subject,omitempty" json:"subject,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Store manages activity entries.
type Store struct {
	c *mongo.Collection
}

// New creates a new activity Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activity_events")}
}

// Record persists a bus event. A replayed event id is silently dropped
// thanks to the unique event_id index, so persistence stays exactly-once.
func (s *Store) Record(ctx context.Context, ev events.Event) error {
	entry := Entry{
		ID:        primitive.NewObjectID(),
		EventID:   ev.EventID,
		Kind:      ev.Kind,
		ProjectID: ev.ProjectID,
		ActorID:   ev.ActorID,
		Subject:   ev.Subject,
		CreatedAt: ev.At,
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, entry); err != nil {
		if wafflemongo.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}

// ListByProject returns a project's history, latest first.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID, limit int64) ([]Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []Entry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteByProject removes a project's history after the project itself
// is deleted. Returns the number of documents deleted.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
