package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	streamBatchSize    = 100
	streamWriteTimeout = 10 * time.Second
)

func (h *Handlers) ListActivity(w http.ResponseWriter, r *http.Request) {
	events, err := h.ActivityService.Recent(r.Context(), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to load activity")
		return
	}

	writeSuccess(w, map[string]interface{}{"activity": events}, http.StatusOK)
}

// StreamActivity pushes new activity events over a websocket. Each
// connection polls the store on its own ticker starting from ?since
// (RFC 3339) or the time of connection.
func (h *Handlers) StreamActivity(w http.ResponseWriter, r *http.Request) {
	since := time.Now().UTC()
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			WriteError(w, "since must be an RFC 3339 timestamp", http.StatusBadRequest)
			return
		}
		since = parsed
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Debug("activity stream upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client never sends data; reading only surfaces the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	interval := 5 * time.Second
	if h.Cfg != nil && h.Cfg.ActivityPollInterval > 0 {
		interval = h.Cfg.ActivityPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		events, err := h.ActivityService.Since(ctx, since, streamBatchSize)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logrus.WithError(err).Warn("activity stream poll failed")
			continue
		}

		for _, event := range events {
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logrus.WithError(err).Debug("activity stream write failed")
				}
				return
			}
			since = event.CreatedAt
		}
	}
}
