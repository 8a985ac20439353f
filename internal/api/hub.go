package api

import (
	"sync"

	"studyviz/domain/core"
	"studyviz/domain/view"
	"studyviz/internal"
	"studyviz/ports"
)

// HubOptions sizes the hub's channels.
type HubOptions struct {
	ClientBuffer    int
	BroadcastBuffer int
}

// DefaultHubOptions returns the buffer sizes used by the server.
func DefaultHubOptions() HubOptions {
	return HubOptions{ClientBuffer: 64, BroadcastBuffer: 256}
}

// Client is one push connection (SSE or WebSocket) of a session.
type Client struct {
	SessionID core.SessionID
	Updates   chan ports.Update
}

type viewKey struct {
	session core.SessionID
	view    view.Kind
}

// Hub fans view updates out to the push connections of each session.
// Updates older than the last one delivered for the same session and view
// are dropped.
type Hub struct {
	clients    map[core.SessionID]map[*Client]bool
	clientsMu  sync.RWMutex
	delivered  map[viewKey]int64
	unregister chan *Client
	broadcast  chan ports.Update
	drop       chan core.SessionID
	done       chan struct{}
	closeOnce  sync.Once
	opts       HubOptions
	log        *internal.Logger
}

// NewHub creates a hub and starts its loop.
func NewHub(opts HubOptions) *Hub {
	if opts.ClientBuffer < 1 {
		opts.ClientBuffer = DefaultHubOptions().ClientBuffer
	}
	if opts.BroadcastBuffer < 1 {
		opts.BroadcastBuffer = DefaultHubOptions().BroadcastBuffer
	}
	hub := &Hub{
		clients:    make(map[core.SessionID]map[*Client]bool),
		delivered:  make(map[viewKey]int64),
		unregister: make(chan *Client, 10),
		broadcast:  make(chan ports.Update, opts.BroadcastBuffer),
		drop:       make(chan core.SessionID, 10),
		done:       make(chan struct{}),
		opts:       opts,
		log:        internal.DefaultLogger.WithComponent("Hub"),
	}

	go hub.run()
	return hub
}

// run processes hub operations
func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.clientsMu.Lock()
			for _, clients := range h.clients {
				for client := range clients {
					close(client.Updates)
				}
			}
			h.clients = make(map[core.SessionID]map[*Client]bool)
			h.clientsMu.Unlock()
			return

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.SessionID]; exists && clients[client] {
				delete(clients, client)
				close(client.Updates)
				h.log.Info("Client unregistered from session %s (remaining clients: %d)",
					client.SessionID, len(clients))
				if len(clients) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.clientsMu.Unlock()

		case sessionID := <-h.drop:
			h.clientsMu.Lock()
			for client := range h.clients[sessionID] {
				close(client.Updates)
			}
			delete(h.clients, sessionID)
			for key := range h.delivered {
				if key.session == sessionID {
					delete(h.delivered, key)
				}
			}
			h.clientsMu.Unlock()

		case update := <-h.broadcast:
			key := viewKey{session: update.SessionID, view: update.View}
			if update.Generation < h.delivered[key] {
				h.log.Debug("Dropping stale %s update for session %s (generation %d < %d)",
					update.View, update.SessionID, update.Generation, h.delivered[key])
				continue
			}
			h.delivered[key] = update.Generation

			h.clientsMu.RLock()
			for client := range h.clients[update.SessionID] {
				select {
				case client.Updates <- update:
				default:
					h.log.Warn("Client channel full for session %s, skipping %s update",
						update.SessionID, update.View)
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Subscribe registers a new client for a session. Every update broadcast
// after Subscribe returns reaches the client.
func (h *Hub) Subscribe(sessionID core.SessionID) *Client {
	client := &Client{SessionID: sessionID, Updates: make(chan ports.Update, h.opts.ClientBuffer)}

	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	select {
	case <-h.done:
		close(client.Updates)
		return client
	default:
	}
	if h.clients[sessionID] == nil {
		h.clients[sessionID] = make(map[*Client]bool)
	}
	h.clients[sessionID][client] = true
	h.log.Info("Client registered for session %s (total clients: %d)", sessionID, len(h.clients[sessionID]))
	return client
}

// Unsubscribe removes a client; its channel is closed by the hub.
func (h *Hub) Unsubscribe(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues an update for the clients of its session
func (h *Hub) Broadcast(update ports.Update) {
	select {
	case h.broadcast <- update:
	default:
		h.log.Warn("Broadcast channel full, dropping %s update for session %s", update.View, update.SessionID)
	}
}

// DropSession disconnects every client of a deleted session.
func (h *Hub) DropSession(sessionID core.SessionID) {
	select {
	case h.drop <- sessionID:
	case <-h.done:
	}
}

// Close stops the hub and closes every client channel.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// GetActiveSessions returns sessions with connected clients
func (h *Hub) GetActiveSessions() []core.SessionID {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	sessions := make([]core.SessionID, 0, len(h.clients))
	for sessionID := range h.clients {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// GetClientCount returns the number of connected clients for a session
func (h *Hub) GetClientCount(sessionID core.SessionID) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[sessionID])
}
