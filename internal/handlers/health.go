package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/chat-forum/internal/logger"
)

//go:generate mockgen -source=health.go -destination=health_mock.go -package=handlers

// Pinger checks that a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse reports service health
// swagger:model HealthResponse
type HealthResponse struct {
	// Status
	// default: ok
	Status string `json:"status"`
}

// NewHealthHandler returns an HTTP handler that pings the database.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} handlers.HealthResponse "Healthy"
// @Failure 503 {object} handlers.HealthResponse "Database unreachable"
// @Router /health [get]
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			logger.FromContext(r.Context()).Errorw("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
