package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/examina/examina-backend/internal/config"
	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/response"
	"github.com/examina/examina-backend/internal/service"
	ws "github.com/examina/examina-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const monitorKeepAlive = 30 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty origins slice permits all origins (development mode).
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

// WSHandler streams live session events of a test to supervisors.
type WSHandler struct {
	rdb         *redis.Client
	testService *service.TestService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, testService *service.TestService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:         rdb,
		testService: testService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// MonitorTest godoc
// WS /ws/v1/supervisor/tests/:id/monitor
// Upgrades to WebSocket and forwards session submit/grade events published
// on the test's Redis channel.
func (h *WSHandler) MonitorTest(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	if _, err := h.testService.GetByID(c.Request.Context(), testID); err != nil {
		failFromError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	channel := config.CacheKey.TestMonitorChannel(testID.String())
	pubsub := h.rdb.Subscribe(ctx, channel)
	defer pubsub.Close()

	h.log.Info().Str("test_id", testID.String()).Msg("supervisor attached to live monitor")

	// Reader loop: consume pings and detect client close.
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

	events := pubsub.Channel()
	keepAlive := time.NewTicker(monitorKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			h.log.Info().Str("test_id", testID.String()).Msg("supervisor detached from live monitor")
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			var event model.MonitorEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.log.Warn().Err(err).Msg("malformed monitor event")
				continue
			}
			if err := ws.WriteTyped(conn, ws.SessionEventResponse{Event: ws.EventSession, Payload: event}); err != nil {
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
