package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/realtorist/realtorist-api/internal/api/shared"
	"github.com/realtorist/realtorist-api/internal/platform/logger"
	"github.com/realtorist/realtorist-api/internal/task"
)

const healthPingTimeout = 2 * time.Second

// Pinger reports database reachability. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// QueueLengther reports how many tasks are waiting.
type QueueLengther interface {
	Len() int
}

// WorkerStater reports the background worker's state.
type WorkerStater interface {
	State() task.State
}

// HealthHandler reports process, database and queue health.
type HealthHandler struct {
	db     Pinger
	queue  QueueLengther
	worker WorkerStater
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler. Any dependency may be nil.
func NewHealthHandler(db Pinger, queue QueueLengther, worker WorkerStater, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		db:     db,
		queue:  queue,
		worker: worker,
		logger: logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /health. It answers 503 when the database is unreachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "unknown", WorkerStatus: "unknown"}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			logger.FromContextOrDefault(r.Context(), h.logger).Warn("database ping failed", "error", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}
	if h.queue != nil {
		resp.QueuedTasks = h.queue.Len()
	}
	if h.worker != nil {
		resp.WorkerStatus = h.worker.State().String()
	}

	shared.RespondWithJSON(w, r, status, resp)
}
