package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Dhrubajit-says/FormForge/internal/model"
	"github.com/Dhrubajit-says/FormForge/internal/service"
	ws "github.com/Dhrubajit-says/FormForge/internal/websocket"
)

// FeedListener streams decoded events of one template.
type FeedListener interface {
	Listen(ctx context.Context, templateID uuid.UUID) (<-chan model.FeedEvent, error)
}

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
				if allowed == "*" || strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// FeedHandler pushes live submission and grading events to template owners.
type FeedHandler struct {
	templateService *service.TemplateService
	feed            FeedListener
	log             zerolog.Logger
	upgrader        websocket.Upgrader
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(templateService *service.TemplateService, feed FeedListener, log zerolog.Logger, allowedOrigins []string) *FeedHandler {
	return &FeedHandler{
		templateService: templateService,
		feed:            feed,
		log:             log.With().Str("component", "feed_handler").Logger(),
		upgrader:        buildUpgrader(allowedOrigins),
	}
}

// TemplateFeed godoc
// WS /ws/v1/templates/:id/feed?token=
// Upgrades to WebSocket and relays events of a template the caller owns.
func (h *FeedHandler) TemplateFeed(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	templateID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	// Ownership is checked before the upgrade so failures get a JSON body.
	if _, err := h.templateService.Get(c.Request.Context(), a, templateID); err != nil {
		writeServiceError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", a.UserID.String()).
		Str("template_id", templateID.String()).
		Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := h.feed.Listen(ctx, templateID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Feed subscription failed")
		_ = ws.WriteError(conn, "feed unavailable")
		return
	}

	if err := ws.WriteTyped(conn, ws.ReadyResponse{Event: ws.EventReady, TemplateID: templateID.String()}); err != nil {
		return
	}
	wsLog.Info().Msg("Owner connected to feed")

	// Reader: answers pings and notices the peer going away.
	pings := make(chan struct{}, 1)
	go func() {
		defer cancel()
		ws.KeepAlive(conn)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	// Writer: the only goroutine that writes data frames.
	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Feed connection closed")
			return
		case ev, ok := <-events:
			if !ok {
				_ = ws.WriteError(conn, "feed closed")
				return
			}
			if err := ws.WriteTyped(conn, ws.FeedResponse{Event: ws.EventFeed, Data: ev}); err != nil {
				return
			}
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}
