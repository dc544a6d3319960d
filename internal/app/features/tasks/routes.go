// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/go-chi/chi/v5"
	"github.com/teamtool/teamtool/internal/app/system/auth"
)

// Routes wires the task endpoints mounted under /tasks. Creation and
// listing live under the project routes, since tasks are created in a
// project's context.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(tr chi.Router) {
		tr.Use(sm.RequireSignedIn)

		tr.Get("/mine", h.ServeMine)
		tr.Patch("/{id}", h.HandleUpdate)
		tr.Patch("/{id}/status", h.HandleStatus)
		tr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
