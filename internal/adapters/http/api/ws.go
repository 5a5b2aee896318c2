// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/undrgrnd/hype/pkg/logger"
	"github.com/undrgrnd/hype/pkg/metrics"
)

// WebSocket timing constants.
const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// WSHandler streams ranked feed snapshots over a WebSocket. Each connection
// carries its own viewer context (genre, lat, lng query parameters); every
// store change re-ranks and pushes the full list, never a diff.
type WSHandler struct {
	deps     Dependencies
	upgrader websocket.Upgrader
	clients  atomic.Int64
	logger   logger.Logger
}

// NewWSHandler creates a new live-feed WebSocket handler.
func NewWSHandler(deps Dependencies) *WSHandler {
	return &WSHandler{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.Get().Named("ws"),
	}
}

// feedMessage is one pushed snapshot.
type feedMessage struct {
	Type   string          `json:"type"`
	Events []eventResponse `json:"events"`
}

// HandleFeedSocket handles GET /ws/feed upgrades.
func (h *WSHandler) HandleFeedSocket(w http.ResponseWriter, r *http.Request) {
	viewerID := h.deps.CurrentUser(bearerToken(r))
	filter := genreFilter(r)
	position := viewerPosition(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	metrics.UpdateWSClients(int(h.clients.Add(1)))
	defer func() {
		metrics.UpdateWSClients(int(h.clients.Add(-1)))
		_ = conn.Close()
	}()

	ctx := r.Context()
	snapshots := h.deps.WatchFeed(ctx, filter, position)

	// Reader loop: we never expect payloads, but reading drives the pong
	// handler and surfaces the close.
	go func() {
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case events, ok := <-snapshots:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			msg := feedMessage{Type: "feed", Events: toEventResponses(events, viewerID)}
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug(ctx, "ws write failed", logger.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
