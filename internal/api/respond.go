package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/embedd/internal/types"
)

// writeJSON writes payload as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes the wire error shape. Messages here are safe for
// clients; internal detail belongs in the log, not the response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.ErrorResponse{Error: message})
}
