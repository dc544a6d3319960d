// internal/app/features/projects/routes.go
package projects

import (
	"github.com/go-chi/chi/v5"
	tasksfeature "github.com/teamtool/teamtool/internal/app/features/tasks"
	"github.com/teamtool/teamtool/internal/app/system/auth"
)

// Routes wires the project endpoints. The task handler is included for
// the project-scoped task routes, which share the /projects subtree.
func Routes(h *Handler, th *tasksfeature.Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /projects requires authentication.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{id}/detail", h.ServeDetail)
		pr.Patch("/{id}", h.HandleEdit)
		pr.Delete("/{id}", h.HandleDelete)

		pr.Get("/{id}/activity", h.ServeActivity)

		pr.Post("/{id}/members", h.HandleAddMember)
		pr.Patch("/{id}/members/{userId}", h.HandleSetRole)
		pr.Delete("/{id}/members/{userId}", h.HandleRemoveMember)

		pr.Post("/{id}/tasks", th.HandleCreate)
		pr.Get("/{id}/tasks", th.ServeList)
		pr.Get("/{id}/tasks/summary", th.ServeSummary)
	})

	return r
}
