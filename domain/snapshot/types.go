// Package snapshot defines saved dashboard views: the parameters, drill-down
// path and pins of a session, persisted so they can be restored later.
package snapshot

import (
	"strings"
	"time"

	"studyviz/domain/core"
	"studyviz/domain/view"
)

// FilterSource is the view a saved filter was set from.
type FilterSource string

const (
	FilterNone      FilterSource = ""
	FilterHierarchy FilterSource = "hierarchy"
	FilterBoxPlot   FilterSource = "boxplot"
)

// SavedView is a named, restorable dashboard state.
type SavedView struct {
	ID          core.SnapshotID  `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	SessionID   core.SessionID   `json:"session_id" db:"session_id"`
	DatasetHash core.DatasetHash `json:"dataset_hash" db:"dataset_hash"`
	State       ViewState        `json:"state" db:"-"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// ViewState is the restorable part of a session.
type ViewState struct {
	Params       view.Params     `json:"params"`
	FilterSource FilterSource    `json:"filter_source,omitempty"`
	ActivePath   []string        `json:"active_path,omitempty"`
	Base         *view.NodeRef   `json:"base,omitempty"`
	PinnedIDs    []core.RecordID `json:"pinned_ids,omitempty"`
}

// NewSavedView creates a saved view with a fresh identifier.
func NewSavedView(name string, sessionID core.SessionID, hash core.DatasetHash, state ViewState) (*SavedView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, core.NewInvalidParameterError("name", "must not be empty")
	}
	now := time.Now().UTC()
	return &SavedView{
		ID:          core.NewSnapshotID(),
		Name:        name,
		SessionID:   sessionID,
		DatasetHash: hash,
		State:       state,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MatchesDataset reports whether the view was saved against the same data.
func (v *SavedView) MatchesDataset(hash core.DatasetHash) bool {
	return v.DatasetHash == hash
}
