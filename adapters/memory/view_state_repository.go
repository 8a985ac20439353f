// Package memory keeps saved views in process memory when no database is
// configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"studyviz/domain/core"
	"studyviz/domain/snapshot"
)

// ViewStateRepository is an in-memory ports.ViewStateRepository.
type ViewStateRepository struct {
	mu    sync.RWMutex
	views map[core.SnapshotID]*snapshot.SavedView
}

// NewViewStateRepository creates an empty repository.
func NewViewStateRepository() *ViewStateRepository {
	return &ViewStateRepository{views: make(map[core.SnapshotID]*snapshot.SavedView)}
}

// Save inserts or replaces a saved view.
func (r *ViewStateRepository) Save(_ context.Context, v *snapshot.SavedView) error {
	cp := clone(v)
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = cp.UpdatedAt
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.views[cp.ID]; ok {
		cp.CreatedAt = prev.CreatedAt
	}
	r.views[cp.ID] = cp
	return nil
}

// Get returns a saved view or core.ErrSnapshotNotFound.
func (r *ViewStateRepository) Get(_ context.Context, id core.SnapshotID) (*snapshot.SavedView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", core.ErrSnapshotNotFound, id)
	}
	return clone(v), nil
}

// List returns saved views, newest first.
func (r *ViewStateRepository) List(_ context.Context, limit int) ([]*snapshot.SavedView, error) {
	r.mu.RLock()
	out := make([]*snapshot.SavedView, 0, len(r.views))
	for _, v := range r.views {
		out = append(out, clone(v))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a saved view.
func (r *ViewStateRepository) Delete(_ context.Context, id core.SnapshotID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, id)
	return nil
}

func clone(v *snapshot.SavedView) *snapshot.SavedView {
	cp := *v
	cp.State.Params = v.State.Params.Clone()
	cp.State.ActivePath = append([]string(nil), v.State.ActivePath...)
	cp.State.Base = v.State.Base.Clone()
	cp.State.PinnedIDs = append([]core.RecordID(nil), v.State.PinnedIDs...)
	return &cp
}
