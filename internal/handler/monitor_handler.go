package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/lingvoclub/placement-backend/internal/response"
	"github.com/lingvoclub/placement-backend/internal/service"
)

const (
	monitorRefreshInterval = 15 * time.Second
	monitorWriteTimeout    = 10 * time.Second
	monitorComputeTimeout  = 5 * time.Second // prevent slow queries from stalling the push loop
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
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

// MonitorHandler streams live analytics snapshots to the admin dashboard
// over a WebSocket.
type MonitorHandler struct {
	authService      *service.AuthService
	analyticsService *service.AnalyticsService
	log              zerolog.Logger
	upgrader         websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(
	authService *service.AuthService,
	analyticsService *service.AnalyticsService,
	log zerolog.Logger,
	allowedOrigins []string,
) *MonitorHandler {
	return &MonitorHandler{
		authService:      authService,
		analyticsService: analyticsService,
		log:              log.With().Str("component", "monitor_handler").Logger(),
		upgrader:         buildUpgrader(allowedOrigins),
	}
}

// Monitor godoc
// WS /api/admin/monitor?password=...
// The password rides in the query string because a WebSocket upgrade
// request has no body.
func (h *MonitorHandler) Monitor(c *gin.Context) {
	password := c.Query("password")
	if err := h.authService.CheckAdminPassword(c.Request.Context(), password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidPassword)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("Admin monitor connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Read pump: the dashboard never sends data, but reading is the only
	// way to notice the peer going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(monitorRefreshInterval)
	defer ticker.Stop()

	for {
		if err := h.pushSnapshot(ctx, conn); err != nil {
			h.log.Debug().Err(err).Msg("Admin monitor disconnected")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *MonitorHandler) pushSnapshot(ctx context.Context, conn *websocket.Conn) error {
	computeCtx, cancel := context.WithTimeout(ctx, monitorComputeTimeout)
	defer cancel()

	analytics, err := h.analyticsService.Compute(computeCtx)
	if err != nil {
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(monitorWriteTimeout))
	return conn.WriteJSON(analytics)
}
