// internal/app/features/projects/handler.go
package projects

import (
	"github.com/teamtool/teamtool/internal/app/system/events"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the projects feature.
// Project CRUD, membership management, and the assembled detail view
// all hang off it.
type Handler struct {
	DB     *mongo.Database
	Client *mongo.Client
	Bus    *events.Bus
	Log    *zap.Logger
}

// NewHandler constructs a projects Handler. Called from bootstrap
// BuildHandler once the database and event bus exist.
func NewHandler(db *mongo.Database, client *mongo.Client, bus *events.Bus, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Client: client,
		Bus:    bus,
		Log:    logger,
	}
}
