package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// apiResponse is the envelope every JSON endpoint returns.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: false, Error: message}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	respondError(w, http.StatusMethodNotAllowed, "method not allowed")
}
