package httputil

import (
	api_models "chatbox-backend/internal/models"
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		// Can't write header again here, just log the error
		slog.Error("encoding JSON response failed", "error", err)
	}
}

// RespondError writes a JSON error response with the given status code and message.
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, api_models.ErrorResponse{Message: message})
}

// RespondErrorDetail is RespondError with an additional human-readable cause.
func RespondErrorDetail(w http.ResponseWriter, statusCode int, message, detail string) {
	RespondJSON(w, statusCode, api_models.ErrorResponse{Message: message, Error: detail})
}
