package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"studyviz/domain/core"

	"github.com/gin-gonic/gin"
)

// SnapshotFunc returns the current state of a session and the generation it
// reflects.
type SnapshotFunc func(ctx context.Context) (interface{}, int64, error)

// HandleSSE streams the updates of one session as Server-Sent Events. The
// stream subscribes before taking the snapshot, sends it as a "snapshot"
// event and then skips queued updates the snapshot already contains. A
// snapshot error is returned before any byte is written.
func (h *Hub) HandleSSE(c *gin.Context, sessionID core.SessionID, snapshot SnapshotFunc, keepAlive time.Duration) error {
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}

	client := h.Subscribe(sessionID)
	defer h.Unsubscribe(client)

	initial, since, err := snapshot(c.Request.Context())
	if err != nil {
		return err
	}
	data, err := json.Marshal(initial)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot for session %s: %w", sessionID, err)
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Cache-Control")

	c.SSEvent("snapshot", string(data))
	c.Writer.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case update, ok := <-client.Updates:
			if !ok {
				// Session deleted or hub closed
				return false
			}
			if update.Generation <= since {
				return true
			}
			data, err := json.Marshal(update)
			if err != nil {
				h.log.Error("Failed to marshal %s update: %v", update.View, err)
				return true
			}
			c.SSEvent("update", string(data))
			return true

		case <-ticker.C:
			// Send ping to keep connection alive
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			// Client disconnected
			return false
		}
	})
	return nil
}
