package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"workpulse/internal/apperrors"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("[Server] failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.Status(err)
	logFn := slog.Error
	if status < http.StatusInternalServerError {
		logFn = slog.Warn
	}
	logFn("[Server] request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err))
	writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
}
