package postgres

import (
	"context"
	"testing"
	"time"

	"studyviz/domain/core"
	"studyviz/domain/snapshot"
	"studyviz/domain/view"
	apperrors "studyviz/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewRow_CarriesStateAsJSON(t *testing.T) {
	v, err := snapshot.NewSavedView("focus", core.NewSessionID(), "abc", snapshot.ViewState{
		Params:       view.Params{BinCount: 8, Primary: "sleep_hours", RadarMetrics: []string{"exam_score"}},
		FilterSource: snapshot.FilterBoxPlot,
		ActivePath:   []string{"Poor"},
		PinnedIDs:    []core.RecordID{"student_id_4"},
	})
	require.NoError(t, err)

	row, err := toRow(v)
	require.NoError(t, err)
	assert.Contains(t, string(row.StateJSON), `"primary_grouping":"sleep_hours"`)
	assert.Contains(t, string(row.StateJSON), `"filter_source":"boxplot"`)

	row.SavedView.State = snapshot.ViewState{}
	back, err := row.toSavedView()
	require.NoError(t, err)
	assert.Equal(t, v.State, back.State)
	assert.Equal(t, v.ID, back.ID)
}

func TestViewRow_RejectsCorruptState(t *testing.T) {
	row := &viewRow{StateJSON: []byte("{")}
	_, err := row.toSavedView()
	assert.Error(t, err)
}

func TestViewStateRepository_ConnectionFailuresAreDatabaseErrors(t *testing.T) {
	db, err := sqlx.Open("postgres", "host=127.0.0.1 port=1 user=studyviz dbname=studyviz sslmode=disable connect_timeout=1")
	require.NoError(t, err)
	defer db.Close()
	repo := NewViewStateRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = repo.Get(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
	assert.False(t, core.IsNotFoundError(err))

	_, err = repo.List(ctx, 10)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))

	err = repo.Delete(ctx, "missing")
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
}
