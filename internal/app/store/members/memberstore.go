// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/teamtool/teamtool/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c        *mongo.Collection
	users    *mongo.Collection
	projects *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("members"),
		users:    db.Collection("users"),
		projects: db.Collection("projects"),
	}
}

var errBadRole = errors.New(`role must be one of "Admin", "Developer", "QA", "Member"`)

// ErrDuplicateMember is returned when the user already belongs to the
// project. The unique (project_id, user_id) index enforces this even
// under concurrent adds.
var ErrDuplicateMember = errors.New("user is already a member of this project")

// Add creates a member document after verifying both sides exist and
// the role is valid. Returns mongo.ErrNoDocuments when the project or
// user is missing, ErrDuplicateMember on a repeat add.
func (s *Store) Add(ctx context.Context, projectID, userID primitive.ObjectID, role string) error {
	if !models.ValidRole(role) {
		return errBadRole
	}

	if err := s.projects.FindOne(ctx, bson.M{"_id": projectID}).Err(); err != nil {
		return err
	}
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Err(); err != nil {
		return err
	}

	doc := bson.M{
		"project_id": projectID,
		"user_id":    userID,
		"role":       role,
		"created_at": time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMember
		}
		return err
	}
	return nil
}

// Remove deletes the member document for (projectID, userID).
// Returns the number of documents deleted (0 or 1).
func (s *Store) Remove(ctx context.Context, projectID, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"project_id": projectID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// SetRole updates the role on an existing member document.
func (s *Store) SetRole(ctx context.Context, projectID, userID primitive.ObjectID, role string) error {
	if !models.ValidRole(role) {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"project_id": projectID, "user_id": userID},
		bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByProject removes all member documents for a project.
// Returns the number of documents deleted.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Exists checks if a member document exists for (projectID, userID).
func (s *Store) Exists(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"project_id": projectID, "user_id": userID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByProject returns all member documents for a project.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Member, error) {
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var members []models.Member
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// RoleMap returns user id -> role for a project's members.
func (s *Store) RoleMap(ctx context.Context, projectID primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	members, err := s.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	roles := make(map[primitive.ObjectID]string, len(members))
	for _, m := range members {
		roles[m.UserID] = m.Role
	}
	return roles, nil
}

// CountByProject returns the member count for a project.
func (s *Store) CountByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"project_id": projectID})
}
