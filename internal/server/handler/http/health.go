package http

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports database reachability. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves GET /api.
type HealthHandler struct {
	DB      Pinger
	Version string
}

// Health reports service and database state. It always answers 200.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	database := "connected"
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if h.DB == nil || h.DB.PingContext(ctx) != nil {
		database = "disconnected"
	}

	version := h.Version
	if version == "" {
		version = "dev"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":     "HydroPal API",
		"status":    "operational",
		"version":   version,
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// notFound answers unknown routes.
func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"success": false,
		"message": "API endpoint not found",
		"path":    r.URL.Path,
		"method":  r.Method,
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
		"success": false,
		"message": "Method not allowed",
		"path":    r.URL.Path,
		"method":  r.Method,
	})
}
