package api

import (
	"context"

	"studyviz/ports"
)

// HubView adapts the Hub to the ports.View interface so a coordinator can
// render straight to the push connections of its session.
type HubView struct {
	hub *Hub
}

// NewHubView creates a view that broadcasts every update it renders
func NewHubView(hub *Hub) *HubView {
	return &HubView{hub: hub}
}

// Render queues the update; delivery is asynchronous.
func (v *HubView) Render(_ context.Context, update ports.Update) error {
	v.hub.Broadcast(update)
	return nil
}
