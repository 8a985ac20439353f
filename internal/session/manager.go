// Package session keeps the dashboard sessions of one server: each session
// owns a coordinator over the shared dataset, and a dataset reload resets
// every session at once.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"studyviz/domain/core"
	"studyviz/domain/dataset"
	"studyviz/domain/grouping"
	"studyviz/domain/snapshot"
	"studyviz/domain/view"
	"studyviz/internal"
	"studyviz/internal/coordinator"
	"studyviz/internal/errors"
	"studyviz/internal/selection"
	"studyviz/ports"
)

// Options configures a manager.
type Options struct {
	Defaults  view.Params
	Selection selection.Options
	// Sink, when set, is subscribed to every view of every session.
	Sink ports.View
	// OnClose is called after a session is deleted.
	OnClose func(core.SessionID)
	Views   ports.ViewStateRepository
	Logger  *internal.Logger
}

type entry struct {
	coord     *coordinator.Coordinator
	unsub     []func()
	createdAt time.Time
}

// Info describes a live session.
type Info struct {
	ID        core.SessionID `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
}

// Manager owns the live sessions.
type Manager struct {
	mu sync.RWMutex
	// reloadMu serializes reloads so every session ends on the last store.
	reloadMu sync.Mutex
	store    *dataset.Store
	registry *grouping.Registry
	sessions map[core.SessionID]*entry
	opts     Options
	log      *internal.Logger
}

// NewManager creates a manager over an initial dataset.
func NewManager(store *dataset.Store, registry *grouping.Registry, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = internal.DefaultLogger
	}
	return &Manager{
		store:    store,
		registry: registry,
		sessions: make(map[core.SessionID]*entry),
		opts:     opts,
		log:      opts.Logger.WithComponent("Sessions"),
	}
}

// Create starts a session over the current dataset.
func (m *Manager) Create(ctx context.Context) (*coordinator.Coordinator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coord, err := coordinator.New(m.store, m.registry, coordinator.Options{
		Defaults:  m.opts.Defaults,
		Selection: m.opts.Selection,
		Logger:    m.opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	e := &entry{coord: coord, createdAt: time.Now().UTC()}
	if m.opts.Sink != nil {
		for _, kind := range view.Kinds {
			unsub, err := coord.Subscribe(kind, m.opts.Sink)
			if err != nil {
				return nil, err
			}
			e.unsub = append(e.unsub, unsub)
		}
	}
	m.sessions[coord.ID()] = e
	m.log.Info("Session %s created (%d live)", coord.ID(), len(m.sessions))
	return coord, nil
}

// Get returns a live session.
func (m *Manager) Get(id core.SessionID) (*coordinator.Coordinator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", core.ErrSessionNotFound, id)
	}
	return e.coord, nil
}

// Delete ends a session.
func (m *Manager) Delete(id core.SessionID) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w %q", core.ErrSessionNotFound, id)
	}
	for _, unsub := range e.unsub {
		unsub()
	}
	if m.opts.OnClose != nil {
		m.opts.OnClose(id)
	}
	m.log.Info("Session %s deleted (%d live)", id, remaining)
	return nil
}

// List returns the live sessions, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	out := make([]Info, 0, len(m.sessions))
	for id, e := range m.sessions {
		out = append(out, Info{ID: id, CreatedAt: e.createdAt})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Dataset returns the current dataset.
func (m *Manager) Dataset() *dataset.Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store
}

// Registry returns the base grouping registry.
func (m *Manager) Registry() *grouping.Registry {
	return m.registry
}

// Reload replaces the dataset of the server and resets every session to it.
// A table that does not form a valid store leaves everything unchanged.
func (m *Manager) Reload(ctx context.Context, table dataset.Table) (*dataset.Store, error) {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	store, err := dataset.NewStore(table)
	if err != nil {
		return nil, err
	}
	if store.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptyDataset, table.Source)
	}

	m.mu.Lock()
	m.store = store
	coords := make([]*coordinator.Coordinator, 0, len(m.sessions))
	for _, e := range m.sessions {
		coords = append(coords, e.coord)
	}
	m.mu.Unlock()

	var firstErr error
	for _, coord := range coords {
		if _, err := coord.Load(ctx, store); err != nil {
			m.log.Error("Session %s failed to load %s: %v", coord.ID(), store.Source(), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	m.log.Info("Dataset %s loaded (%d records) into %d sessions", store.Source(), store.Len(), len(coords))
	return store, firstErr
}

// SaveView stores the restorable state of a session under name.
func (m *Manager) SaveView(ctx context.Context, id core.SessionID, name string) (*snapshot.SavedView, error) {
	if m.opts.Views == nil {
		return nil, errors.ConfigInvalid("saved views are not configured")
	}
	coord, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	st := coord.State()
	saved, err := snapshot.NewSavedView(name, id, coord.Store().Hash(), snapshot.ViewState{
		Params:       st.Params,
		FilterSource: snapshot.FilterSource(st.Source),
		ActivePath:   st.ActivePath,
		Base:         st.Base,
		PinnedIDs:    st.PinnedIDs,
	})
	if err != nil {
		return nil, err
	}
	if err := m.opts.Views.Save(ctx, saved); err != nil {
		return nil, err
	}
	m.log.Info("Session %s saved view %s (%q)", id, saved.ID, saved.Name)
	return saved, nil
}

// RestoreView applies a saved view to a session. A view saved against other
// data is still applied; whatever no longer resolves is skipped and noted.
func (m *Manager) RestoreView(ctx context.Context, id core.SessionID, viewID core.SnapshotID) (*coordinator.Result, error) {
	if m.opts.Views == nil {
		return nil, errors.ConfigInvalid("saved views are not configured")
	}
	coord, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	saved, err := m.opts.Views.Get(ctx, viewID)
	if err != nil {
		return nil, err
	}

	res, err := coord.Restore(ctx, coordinator.RestoreState{
		Params:     saved.State.Params,
		Source:     selection.Source(saved.State.FilterSource),
		ActivePath: saved.State.ActivePath,
		Base:       saved.State.Base,
		PinnedIDs:  saved.State.PinnedIDs,
	})
	if err != nil {
		return nil, err
	}
	if !saved.MatchesDataset(coord.Store().Hash()) {
		notice := fmt.Sprintf("view %q was saved against a different dataset", saved.Name)
		if res.Notice != "" {
			notice += "; " + res.Notice
		}
		res.Notice = notice
	}
	return res, nil
}

// ListViews returns saved views, newest first.
func (m *Manager) ListViews(ctx context.Context, limit int) ([]*snapshot.SavedView, error) {
	if m.opts.Views == nil {
		return []*snapshot.SavedView{}, nil
	}
	return m.opts.Views.List(ctx, limit)
}

// DeleteView removes a saved view.
func (m *Manager) DeleteView(ctx context.Context, viewID core.SnapshotID) error {
	if m.opts.Views == nil {
		return fmt.Errorf("%w %q", core.ErrSnapshotNotFound, viewID)
	}
	if _, err := m.opts.Views.Get(ctx, viewID); err != nil {
		return err
	}
	return m.opts.Views.Delete(ctx, viewID)
}
