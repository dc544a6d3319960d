// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/teamtool/teamtool/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

var (
	errTitleRequired = errors.New("task title is required")
	errBadStatus     = errors.New(`status must be one of "ToDo", "InProgress", "Done"`)
	errBadPriority   = errors.New(`priority must be one of "Low", "Medium", "High"`)
)

// Create inserts a new task. Status defaults to ToDo, priority to Medium.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return models.Task{}, errTitleRequired
	}
	if t.Status == "" {
		t.Status = models.TaskStatusToDo
	}
	if !models.ValidTaskStatus(t.Status) {
		return models.Task{}, errBadStatus
	}
	if t.Priority == "" {
		t.Priority = models.TaskPriorityMedium
	}
	if !models.ValidTaskPriority(t.Priority) {
		return models.Task{}, errBadPriority
	}

	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetByID loads a task. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Update holds the editable task fields. AssignedTo nil clears the assignee.
type Update struct {
	Title       string
	Description string
	AssignedTo  *primitive.ObjectID
	Status      string
	Priority    string
}

// Update replaces the editable fields of a task.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	title := strings.TrimSpace(upd.Title)
	if title == "" {
		return errTitleRequired
	}
	if !models.ValidTaskStatus(upd.Status) {
		return errBadStatus
	}
	if !models.ValidTaskPriority(upd.Priority) {
		return errBadPriority
	}

	set := bson.M{
		"title":       title,
		"description": upd.Description,
		"assigned_to": upd.AssignedTo,
		"status":      upd.Status,
		"priority":    upd.Priority,
		"updated_at":  time.Now().UTC(),
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateStatus moves a task through its lifecycle without touching
// other fields.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if !models.ValidTaskStatus(status) {
		return errBadStatus
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a task. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByProject removes all tasks for a project.
// Returns the number of documents deleted.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByProject returns all tasks in a project, optionally filtered by
// status. Sorted by status then insertion order, matching the board view.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID, status string) ([]models.Task, error) {
	filter := bson.M{"project_id": projectID}
	if status != "" {
		if !models.ValidTaskStatus(status) {
			return nil, errBadStatus
		}
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "status", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByAssignee returns a user's tasks across all projects.
func (s *Store) ListByAssignee(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	cur, err := s.c.Find(ctx, bson.M{"assigned_to": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ClearAssignee unassigns every task held by userID within a project.
// Used when a member is removed so their tasks return to the pool.
func (s *Store) ClearAssignee(ctx context.Context, projectID, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"project_id": projectID, "assigned_to": userID},
		bson.M{"$set": bson.M{"assigned_to": nil, "updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountByProject returns per-status task counts for a project.
func (s *Store) CountByProject(ctx context.Context, projectID primitive.ObjectID) (map[string]int, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"project_id": projectID}},
		{"$group": bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[string]int)
	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			N      int    `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Status] = row.N
	}
	return counts, cur.Err()
}
