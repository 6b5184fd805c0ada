package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"bazaar-ads/internal/core/domain"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// handleLive streams change events to the caller over a websocket. Vendors
// receive events about their own records, admins receive everything.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	if h.Feed == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "live feed disabled"})
		return
	}
	actor := actorFrom(r)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, err := h.Feed.Subscribe(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.logger.Warn("websocket upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	go readPump(conn, cancel)

	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(liveWriteWait))
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !visible(actor, ev) {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err = conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err = conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so pongs and close frames are processed.
// It cancels the stream once the connection is gone.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func visible(actor domain.Actor, ev domain.ChangeEvent) bool {
	return actor.Admin || ev.UserID == actor.UserID
}
