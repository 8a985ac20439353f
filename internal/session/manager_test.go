package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"studyviz/adapters/memory"
	"studyviz/domain/core"
	"studyviz/domain/dataset"
	"studyviz/domain/grouping"
	"studyviz/domain/view"
	"studyviz/internal/coordinator"
	"studyviz/internal/selection"
	"studyviz/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	mu      sync.Mutex
	updates []ports.Update
}

func (s *sink) Render(_ context.Context, u ports.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, u)
	return nil
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func studentTable() dataset.Table {
	return dataset.Table{
		Fields: []string{"student_id", "study_hours_per_day", "sleep_hours", "internet_quality", "exam_score"},
		Rows: [][]string{
			{"S1", "1.0", "6.0", "Good", "40"},
			{"S2", "3.5", "4.0", "Poor", "55"},
			{"S3", "1.5", "9.0", "Good", "48"},
			{"S4", "6.0", "7.0", "Average", "90"},
		},
		LabelField: "student_id",
		Source:     "students.csv",
	}
}

func newManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	store, err := dataset.NewStore(studentTable())
	require.NoError(t, err)
	return NewManager(store, grouping.Default(), opts)
}

func TestManager_CreateGetDelete(t *testing.T) {
	var closed []core.SessionID
	out := &sink{}
	m := newManager(t, Options{Sink: out, OnClose: func(id core.SessionID) { closed = append(closed, id) }})
	ctx := context.Background()

	coord, err := m.Create(ctx)
	require.NoError(t, err)
	got, err := m.Get(coord.ID())
	require.NoError(t, err)
	assert.Same(t, coord, got)
	require.Len(t, m.List(), 1)

	_, err = coord.Dispatch(ctx, coordinator.Event{Type: coordinator.PointActivated, RecordID: "student_id_0"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.count(), "the sink sees every view of the session")

	require.NoError(t, m.Delete(coord.ID()))
	assert.Equal(t, []core.SessionID{coord.ID()}, closed)
	_, err = m.Get(coord.ID())
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(coord.ID()), core.ErrSessionNotFound)

	_, err = coord.Dispatch(ctx, coordinator.Event{Type: coordinator.ClearRequested})
	require.NoError(t, err)
	assert.Equal(t, 2, out.count(), "a deleted session is unsubscribed")
}

func TestManager_ReloadResetsEverySession(t *testing.T) {
	out := &sink{}
	m := newManager(t, Options{Sink: out})
	ctx := context.Background()

	a, err := m.Create(ctx)
	require.NoError(t, err)
	b, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = a.Dispatch(ctx, coordinator.Event{Type: coordinator.GroupActivated, Label: "Good"})
	require.NoError(t, err)

	table := studentTable()
	table.Rows = table.Rows[:2]
	table.Source = "smaller.csv"
	store, err := m.Reload(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
	assert.Same(t, store, m.Dataset())

	for _, c := range []*coordinator.Coordinator{a, b} {
		assert.Len(t, c.FilterRecords(), 2)
		assert.Same(t, store, c.Store())
	}
}

func TestManager_ConcurrentReloadsLeaveSessionsOnCurrentStore(t *testing.T) {
	m := newManager(t, Options{})
	ctx := context.Background()

	coords := make([]*coordinator.Coordinator, 3)
	for i := range coords {
		c, err := m.Create(ctx)
		require.NoError(t, err)
		coords[i] = c
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table := studentTable()
			table.Source = fmt.Sprintf("upload-%d.csv", i)
			_, err := m.Reload(ctx, table)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for _, c := range coords {
		assert.Same(t, m.Dataset(), c.Store())
	}
}

func TestManager_ReloadRejectsBadTables(t *testing.T) {
	m := newManager(t, Options{})
	before := m.Dataset()

	_, err := m.Reload(context.Background(), dataset.Table{Fields: []string{"a", "a"}})
	assert.ErrorIs(t, err, core.ErrMalformedInput)

	_, err = m.Reload(context.Background(), dataset.Table{Fields: []string{"a"}})
	assert.ErrorIs(t, err, core.ErrEmptyDataset)
	assert.Same(t, before, m.Dataset())
}

func TestManager_SaveAndRestoreView(t *testing.T) {
	m := newManager(t, Options{Views: memory.NewViewStateRepository(), Selection: selection.DefaultOptions()})
	ctx := context.Background()

	src, err := m.Create(ctx)
	require.NoError(t, err)
	bins := 4
	_, err = src.Dispatch(ctx, coordinator.Event{Type: coordinator.ParamsChanged, Params: &view.ParamsPatch{BinCount: &bins}})
	require.NoError(t, err)
	_, err = src.Dispatch(ctx, coordinator.Event{Type: coordinator.GroupActivated, Label: "Good"})
	require.NoError(t, err)
	_, err = src.Dispatch(ctx, coordinator.Event{Type: coordinator.PointActivated, RecordID: "student_id_3"})
	require.NoError(t, err)

	saved, err := m.SaveView(ctx, src.ID(), "good internet")
	require.NoError(t, err)
	assert.Equal(t, "boxplot", string(saved.State.FilterSource))

	_, err = m.SaveView(ctx, src.ID(), "  ")
	assert.True(t, core.IsValidationError(err))

	dst, err := m.Create(ctx)
	require.NoError(t, err)
	res, err := m.RestoreView(ctx, dst.ID(), saved.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Notice)
	assert.Equal(t, 4, dst.Params().BinCount)
	assert.Equal(t, []core.RecordID{"student_id_0", "student_id_2"}, dataset.IDs(dst.FilterRecords()))
	assert.Equal(t, []core.RecordID{"student_id_3"}, dst.State().PinnedIDs)

	views, err := m.ListViews(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, views, 1)

	require.NoError(t, m.DeleteView(ctx, saved.ID))
	assert.ErrorIs(t, m.DeleteView(ctx, saved.ID), core.ErrSnapshotNotFound)
	_, err = m.RestoreView(ctx, dst.ID(), saved.ID)
	assert.ErrorIs(t, err, core.ErrSnapshotNotFound)
}

func TestManager_SavedViewKeepsDrillDownBase(t *testing.T) {
	m := newManager(t, Options{Views: memory.NewViewStateRepository()})
	ctx := context.Background()

	src, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = src.Dispatch(ctx, coordinator.Event{Type: coordinator.NodeActivated, Path: []string{"Low Study"}})
	require.NoError(t, err)
	_, err = src.Dispatch(ctx, coordinator.Event{Type: coordinator.GroupActivated, Label: "Good"})
	require.NoError(t, err)

	saved, err := m.SaveView(ctx, src.ID(), "low study, good internet")
	require.NoError(t, err)
	require.NotNil(t, saved.State.Base)
	assert.Equal(t, []string{"Low Study"}, saved.State.Base.Path)

	dst, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = m.RestoreView(ctx, dst.ID(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.State.Base, dst.State().Base)
	assert.Equal(t, dataset.IDs(src.FilterRecords()), dataset.IDs(dst.FilterRecords()))
}

func TestManager_RestoreNotesDatasetChange(t *testing.T) {
	m := newManager(t, Options{Views: memory.NewViewStateRepository()})
	ctx := context.Background()

	c, err := m.Create(ctx)
	require.NoError(t, err)
	saved, err := m.SaveView(ctx, c.ID(), "before reload")
	require.NoError(t, err)

	table := studentTable()
	table.Rows = append(table.Rows, []string{"S5", "2", "8", "Good", "77"})
	_, err = m.Reload(ctx, table)
	require.NoError(t, err)

	res, err := m.RestoreView(ctx, c.ID(), saved.ID)
	require.NoError(t, err)
	assert.Contains(t, res.Notice, "different dataset")
}
