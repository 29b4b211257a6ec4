package handlers

import (
	"chatbox-backend/internal/auth"
	"chatbox-backend/pkg/httputil"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// requirePrincipal extracts the authenticated principal placed by the JWT
// middleware, answering 401 when it is absent.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return auth.Principal{}, false
	}
	return p, true
}

// decodeJSON reads the request body into dst, answering 400 on malformed JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// requestLogger tags l with the chi request id.
func requestLogger(l *slog.Logger, r *http.Request) *slog.Logger {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return l.With("request_id", id)
	}
	return l
}
