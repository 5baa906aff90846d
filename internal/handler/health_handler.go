package handler

import (
	"net/http"
	"time"

	"github.com/certilearn/assess-backend/internal/config"
	"github.com/certilearn/assess-backend/internal/engine"
	"github.com/certilearn/assess-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports process liveness and dependency reachability.
type HealthHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	registry  *engine.Registry
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client, registry *engine.Registry) *HealthHandler {
	return &HealthHandler{
		pool:      pool,
		rdb:       rdb,
		registry:  registry,
		startTime: time.Now(),
	}
}

// Health godoc
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	dbOK := h.pool.Ping(ctx) == nil
	redisOK := h.rdb.Ping(ctx).Err() == nil

	queueDepth, _ := h.rdb.LLen(ctx, config.WorkerKey.PersistViolationsQueue).Result()

	status := http.StatusOK
	if !dbOK || !redisOK {
		status = http.StatusServiceUnavailable
	}

	response.Success(c, status, gin.H{
		"database":        dbOK,
		"redis":           redisOK,
		"active_sessions": h.registry.Len(),
		"violation_queue": queueDepth,
		"uptime_seconds":  int(time.Since(h.startTime).Seconds()),
	})
}
