package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	streamBuffer       = 4
	streamWriteTimeout = 5 * time.Second
)

// stream pushes the latest snapshot, then every published one, until the
// client goes away.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(h.corsOrigin),
	})
	if err != nil {
		h.logger.Warn(r.Context(), "websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	updates, cancel := h.source.Subscribe(streamBuffer)
	defer cancel()

	// Reads are not expected; CloseRead handles control frames.
	ctx := conn.CloseRead(r.Context())

	if snap, ok := h.source.Latest(); ok {
		if err := h.write(ctx, conn, NewGeneralMetrics(snap)); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "shutting down")
				return
			}
			if err := h.write(ctx, conn, NewGeneralMetrics(snap)); err != nil {
				h.logger.Debug(ctx, "websocket client dropped", "error", err)
				return
			}
		}
	}
}

func (h *Handler) write(ctx context.Context, conn *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}

// originPatterns maps the CORS origin to websocket origin patterns. An empty
// result keeps the same-origin check.
func originPatterns(origin string) []string {
	switch origin {
	case "":
		return nil
	case "*":
		return []string{"*"}
	}
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		return []string{u.Host}
	}
	return []string{origin}
}
