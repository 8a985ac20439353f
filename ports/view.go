package ports

import (
	"context"

	"studyviz/domain/core"
	"studyviz/domain/view"
)

// Update is one payload delivered to a view. Generation increases with every
// state change of a session, so a consumer can discard stale updates.
type Update struct {
	SessionID  core.SessionID `json:"session_id"`
	View       view.Kind      `json:"view"`
	Topic      view.Topic     `json:"topic"`
	Mode       view.Mode      `json:"mode"`
	Generation int64          `json:"generation"`
	Payload    interface{}    `json:"payload"`
}

// View renders updates for one view kind. Render is called synchronously by
// the coordinator and must not call back into it.
type View interface {
	Render(ctx context.Context, update Update) error
}

// ViewFunc adapts a function to the View interface.
type ViewFunc func(ctx context.Context, update Update) error

// Render calls f.
func (f ViewFunc) Render(ctx context.Context, update Update) error { return f(ctx, update) }
