package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is the authoritative record of a team project.
//
// MemberIDs is the authoritative list of who belongs to the project.
// The members collection is a secondary index carrying each member's
// role; the two are kept in lockstep by the membership handlers since
// they live in separate collections.
type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"`
	Description string               `bson:"description" json:"description"`
	CreatorID   primitive.ObjectID   `bson:"creator_id" json:"creator_id"` // immutable after creation
	MemberIDs   []primitive.ObjectID `bson:"member_ids" json:"member_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether userID appears in the authoritative member list.
func (p Project) HasMember(userID primitive.ObjectID) bool {
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
