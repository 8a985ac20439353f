package api

import (
	"context"
	"net/http"
	"time"

	"studyviz/domain/core"
	"studyviz/internal/coordinator"
	"studyviz/internal/errors"

	"github.com/gorilla/websocket"
)

const (
	wsWriteDeadline = 10 * time.Second
	wsReadDeadline  = 60 * time.Second
	wsPingInterval  = 30 * time.Second
	wsReadLimit     = 64 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// No Origin header = direct connection (non-browser clients, tests)
		return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Dispatcher applies interaction events to a session.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev coordinator.Event) (*coordinator.Result, error)
}

// wsMessage is every frame the server writes.
type wsMessage struct {
	Type   string              `json:"type"` // "update", "result" or "error"
	Update interface{}         `json:"update,omitempty"`
	Result *coordinator.Result `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
	Code   string              `json:"code,omitempty"`
}

// HandleWebSocket upgrades the request and runs a bidirectional session
// connection: the client sends coordinator events, the server pushes view
// updates and one result frame per event.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, sessionID core.SessionID, d Dispatcher) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	client := h.Subscribe(sessionID)
	ctx, cancel := context.WithCancel(r.Context())

	out := make(chan wsMessage, h.opts.ClientBuffer)
	writerDone := make(chan struct{})
	go h.writePump(ctx, conn, client, out, writerDone)

	defer func() {
		cancel()
		h.Unsubscribe(client)
		<-writerDone
	}()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	for {
		var ev coordinator.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("WebSocket error for session %s: %v", sessionID, err)
			}
			return
		}

		msg := wsMessage{Type: "result"}
		res, err := d.Dispatch(ctx, ev)
		if err != nil {
			appErr := errors.FromDomain(err)
			msg = wsMessage{Type: "error", Error: appErr.Error(), Code: appErr.Code}
		} else {
			// Updates reach the client through the hub
			cp := *res
			cp.Updates = nil
			msg.Result = &cp
		}

		select {
		case out <- msg:
		case <-writerDone:
			return
		case <-ctx.Done():
			return
		}
	}
}

// writePump owns all writes to conn.
func (h *Hub) writePump(ctx context.Context, conn *websocket.Conn, client *Client, out <-chan wsMessage, done chan<- struct{}) {
	defer close(done)
	// Closing the connection unblocks the read loop
	defer conn.Close()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	write := func(v interface{}) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
		if err := conn.WriteJSON(v); err != nil {
			h.log.Warn("WebSocket write error for session %s: %v", client.SessionID, err)
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-client.Updates:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if !write(wsMessage{Type: "update", Update: update}) {
				return
			}
		case msg := <-out:
			if !write(msg) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
