package ports

import (
	"context"

	"studyviz/domain/core"
	"studyviz/domain/snapshot"
)

// ViewStateRepository persists saved dashboard views
type ViewStateRepository interface {
	// Save inserts or replaces a saved view
	Save(ctx context.Context, v *snapshot.SavedView) error

	// Get returns a saved view or core.ErrSnapshotNotFound
	Get(ctx context.Context, id core.SnapshotID) (*snapshot.SavedView, error)

	// List returns saved views, newest first
	List(ctx context.Context, limit int) ([]*snapshot.SavedView, error)

	// Delete removes a saved view; deleting a missing view is not an error
	Delete(ctx context.Context, id core.SnapshotID) error
}
