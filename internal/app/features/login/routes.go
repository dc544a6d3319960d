// internal/app/features/login/routes.go
package login

import (
	"github.com/go-chi/chi/v5"
	"github.com/teamtool/teamtool/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)

	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireSignedIn)
		ar.Get("/session", h.ServeSession)
		ar.Put("/password", h.HandleChangePassword)
	})

	return r
}
