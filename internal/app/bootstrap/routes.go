// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	authgooglefeature "github.com/teamtool/teamtool/internal/app/features/authgoogle"
	healthfeature "github.com/teamtool/teamtool/internal/app/features/health"
	loginfeature "github.com/teamtool/teamtool/internal/app/features/login"
	logoutfeature "github.com/teamtool/teamtool/internal/app/features/logout"
	profilefeature "github.com/teamtool/teamtool/internal/app/features/profile"
	projectsfeature "github.com/teamtool/teamtool/internal/app/features/projects"
	tasksfeature "github.com/teamtool/teamtool/internal/app/features/tasks"
	"github.com/teamtool/teamtool/internal/app/store/oauthstate"
	userstore "github.com/teamtool/teamtool/internal/app/store/users"
	"github.com/teamtool/teamtool/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed, so the event bus and background
// workers already exist.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on every request, so
	// profile changes and deletions take effect immediately.
	users := userstore.New(deps.MongoDatabase)
	sessionMgr.SetUserFetcher(users.SessionFetcher())

	r := chi.NewRouter()
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, logger)
	r.Mount("/auth", loginfeature.Routes(loginHandler, sessionMgr))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/auth/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(
		deps.MongoDatabase, sessionMgr, oauthstate.New(deps.MongoDatabase),
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Profile
	profileHandler := profilefeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	// Projects and tasks
	taskHandler := tasksfeature.NewHandler(deps.MongoDatabase, deps.MongoClient, eventBus, logger)
	r.Mount("/tasks", tasksfeature.Routes(taskHandler, sessionMgr))

	projectHandler := projectsfeature.NewHandler(deps.MongoDatabase, deps.MongoClient, eventBus, logger)
	r.Mount("/projects", projectsfeature.Routes(projectHandler, taskHandler, sessionMgr))

	return r, nil
}
