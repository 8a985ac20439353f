package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"studyviz/domain/core"
	"studyviz/domain/snapshot"
	apperrors "studyviz/internal/errors"

	"github.com/jmoiron/sqlx"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// viewRow is the view_snapshots row; State travels as JSON.
type viewRow struct {
	snapshot.SavedView
	StateJSON []byte `db:"state"`
}

func toRow(v *snapshot.SavedView) (*viewRow, error) {
	stateJSON, err := json.Marshal(v.State)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal view state: %w", err)
	}
	return &viewRow{SavedView: *v, StateJSON: stateJSON}, nil
}

func (r *viewRow) toSavedView() (*snapshot.SavedView, error) {
	v := r.SavedView
	if err := json.Unmarshal(r.StateJSON, &v.State); err != nil {
		return nil, fmt.Errorf("failed to unmarshal view state of %s: %w", v.ID, err)
	}
	return &v, nil
}

// ViewStateRepository persists saved dashboard views in view_snapshots
type ViewStateRepository struct {
	db *sqlx.DB
}

// NewViewStateRepository creates a new saved view repository
func NewViewStateRepository(db *sqlx.DB) *ViewStateRepository {
	return &ViewStateRepository{db: db}
}

// Save inserts or replaces a saved view
func (r *ViewStateRepository) Save(ctx context.Context, v *snapshot.SavedView) error {
	row, err := toRow(v)
	if err != nil {
		return err
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = row.UpdatedAt
	}

	query := `
		INSERT INTO view_snapshots (id, name, session_id, dataset_hash, state, created_at, updated_at)
		VALUES (:id, :name, :session_id, :dataset_hash, :state, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			session_id = EXCLUDED.session_id,
			dataset_hash = EXCLUDED.dataset_hash,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return apperrors.DatabaseError(err, fmt.Sprintf("failed to save view %s", v.ID))
	}
	return nil
}

// Get retrieves a saved view by ID
func (r *ViewStateRepository) Get(ctx context.Context, id core.SnapshotID) (*snapshot.SavedView, error) {
	query := `
		SELECT id, name, session_id, dataset_hash, state, created_at, updated_at
		FROM view_snapshots
		WHERE id = $1`

	var row viewRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w %q", core.ErrSnapshotNotFound, id)
		}
		return nil, apperrors.DatabaseError(err, fmt.Sprintf("failed to get view %s", id))
	}
	return row.toSavedView()
}

// List returns saved views, newest first
func (r *ViewStateRepository) List(ctx context.Context, limit int) ([]*snapshot.SavedView, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := `
		SELECT id, name, session_id, dataset_hash, state, created_at, updated_at
		FROM view_snapshots
		ORDER BY updated_at DESC, id
		LIMIT $1`

	var rows []viewRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, apperrors.DatabaseError(err, "failed to list views")
	}

	views := make([]*snapshot.SavedView, 0, len(rows))
	for i := range rows {
		v, err := rows[i].toSavedView()
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Delete removes a saved view
func (r *ViewStateRepository) Delete(ctx context.Context, id core.SnapshotID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM view_snapshots WHERE id = $1`, id); err != nil {
		return apperrors.DatabaseError(err, fmt.Sprintf("failed to delete view %s", id))
	}
	return nil
}
