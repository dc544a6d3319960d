// internal/app/system/httperr/httperr.go
package httperr

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Error kinds carried in JSON error bodies. Clients switch on the kind;
// the message is for people.
const (
	KindNotFound        = "not_found"
	KindUnauthenticated = "unauthenticated"
	KindForbidden       = "forbidden"
	KindValidation      = "validation_error"
	KindConflict        = "conflict"
	KindTransport       = "transport_error"
	KindInternal        = "internal_error"
)

// body is the wire shape of every error response.
type body struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func write(w http.ResponseWriter, status int, b body) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(b)
}

// NotFound writes a 404 with the not_found kind.
func NotFound(w http.ResponseWriter, message string) {
	write(w, http.StatusNotFound, body{Error: KindNotFound, Message: message})
}

// Unauthenticated writes a 401. Used when no valid session accompanies
// a request that needs one.
func Unauthenticated(w http.ResponseWriter) {
	write(w, http.StatusUnauthorized, body{Error: KindUnauthenticated, Message: "sign in required"})
}

// Forbidden writes a 403 for authenticated callers acting outside their role.
func Forbidden(w http.ResponseWriter, message string) {
	write(w, http.StatusForbidden, body{Error: KindForbidden, Message: message})
}

// Validation writes a 422 with optional per-field messages.
func Validation(w http.ResponseWriter, message string, fields map[string]string) {
	write(w, http.StatusUnprocessableEntity, body{Error: KindValidation, Message: message, Fields: fields})
}

// Conflict writes a 409, e.g. for duplicate members or emails.
func Conflict(w http.ResponseWriter, message string) {
	write(w, http.StatusConflict, body{Error: KindConflict, Message: message})
}

// BadRequest writes a 400 for requests that cannot be parsed at all.
func BadRequest(w http.ResponseWriter, message string) {
	write(w, http.StatusBadRequest, body{Error: KindValidation, Message: message})
}

// Internal logs the underlying error and writes a 500 without leaking it.
func Internal(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	if log != nil {
		log.Error(op, zap.Error(err))
	}
	write(w, http.StatusInternalServerError, body{Error: KindInternal, Message: "something went wrong"})
}

// Transport logs a failure reaching an upstream service and writes a 502.
func Transport(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	if log != nil {
		log.Error(op, zap.Error(err))
	}
	write(w, http.StatusBadGateway, body{Error: KindTransport, Message: "upstream service unavailable"})
}
