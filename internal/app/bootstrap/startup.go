// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/teamtool/teamtool/internal/app/store/activity"
	"github.com/teamtool/teamtool/internal/app/store/oauthstate"
	"github.com/teamtool/teamtool/internal/app/system/events"
	systemtasks "github.com/teamtool/teamtool/internal/app/system/tasks"
	"github.com/teamtool/teamtool/internal/app/system/workers"
	"go.uber.org/zap"
)

// Shared between Startup, BuildHandler, and Shutdown. WAFFLE runs the
// lifecycle hooks sequentially, so plain package-level state is fine.
var (
	eventBus       *events.Bus
	activityLogger *workers.ActivityLogger
	stateCleanup   *systemtasks.StateCleanup
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// It starts the activity-event consumer and the OAuth state sweeper.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	eventBus = events.NewBus(appCfg.EventBufferSize)
	activityLogger = workers.StartActivityLogger(eventBus, activity.New(deps.MongoDatabase), logger)
	stateCleanup = systemtasks.StartStateCleanup(oauthstate.New(deps.MongoDatabase), appCfg.StateCleanupInterval, logger)

	logger.Info("background workers started",
		zap.Int("event_buffer", appCfg.EventBufferSize),
		zap.Duration("state_cleanup_interval", appCfg.StateCleanupInterval))
	return nil
}
