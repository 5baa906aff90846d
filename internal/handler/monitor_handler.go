package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/certilearn/assess-backend/internal/config"
	"github.com/certilearn/assess-backend/internal/middleware"
	"github.com/certilearn/assess-backend/internal/response"
	"github.com/certilearn/assess-backend/internal/service"
	ws "github.com/certilearn/assess-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const monitorKeepAlive = 30 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams live proctoring events for one attempt to a
// subscribed reviewer over WebSocket.
type MonitorHandler struct {
	rdb            *redis.Client
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		rdb:            rdb,
		attemptService: attemptService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// MonitorAttempt godoc
// WS /ws/v1/admin/attempts/:attempt_id/monitor
// Upgrades to WebSocket and relays the attempt's proctoring feed: one
// status snapshot up front, then every violation as it is recorded.
func (h *MonitorHandler) MonitorAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.GetFull(c.Request.Context(), attemptID)
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	reqCtx := c.Request.Context()

	// Initial snapshot so the reviewer UI renders before the first event.
	_ = ws.WriteTyped(conn, ws.StatusFeedEvent{
		Event:     ws.EventStatus,
		AttemptID: attemptID.String(),
		Status:    string(attempt.Status),
		EndReason: string(attempt.EndReason),
	})

	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.AttemptMonitorChannel(attemptID.String()))
	defer pubsub.Close()
	ch := pubsub.Channel()

	// Read pump: consume pings and detect client disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var env ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &env); err != nil {
				return
			}
			if env.Action == ws.ActionPing {
				_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	keepAlive := time.NewTicker(monitorKeepAlive)
	defer keepAlive.Stop()

	h.log.Info().Str("attempt_id", attemptID.String()).Msg("reviewer attached to monitor feed")

	for {
		select {
		case <-reqCtx.Done():
			return
		case <-done:
			h.log.Info().Str("attempt_id", attemptID.String()).Msg("reviewer detached from monitor feed")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Payloads are pre-serialized feed events; relay verbatim.
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-keepAlive.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
