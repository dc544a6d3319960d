// internal/app/features/tasks/handler.go
package tasks

import (
	"github.com/teamtool/teamtool/internal/app/system/events"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the task lifecycle endpoints.
type Handler struct {
	DB     *mongo.Database
	Client *mongo.Client
	Bus    *events.Bus
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, client *mongo.Client, bus *events.Bus, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Client: client, Bus: bus, Log: logger}
}
