// internal/app/features/logout/handler.go
package logout

import (
	"encoding/json"
	"net/http"

	"github.com/teamtool/teamtool/internal/app/system/auth"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, SessionMgr: sm}
}

// Handle handles POST /auth/logout. Clearing an already-clear session
// is fine; the endpoint is idempotent.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		httperr.Internal(w, h.Log, "sign out", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "signed out"})
}
