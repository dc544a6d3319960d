package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is the join between users and projects with an attached role.
// Exactly one document per (project_id, user_id); the unique compound
// index on that pair makes retried inserts safe.
type Member struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
