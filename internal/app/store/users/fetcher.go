package userstore

import (
	"context"

	"github.com/teamtool/teamtool/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionFetcher adapts the store to the session middleware: it resolves
// the user id carried in the cookie into a SessionUser. A deleted user
// resolves to nil, which signs the session out.
func (s *Store) SessionFetcher() auth.UserFetcher {
	return func(ctx context.Context, id string) (*auth.SessionUser, error) {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, nil
		}
		u, err := s.GetByID(ctx, oid)
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &auth.SessionUser{
			ID:    u.ID.Hex(),
			Name:  u.Name,
			Email: u.Email,
		}, nil
	}
}
