package aggregation

import (
	"testing"

	"studyviz/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMeans(t *testing.T) {
	s := studentStore(t)
	means := ComputeMeans(s.Records(), []string{"exam_score", "sleep_hours", "gender"})

	assert.InDelta(t, (40+55+48+90+70)/5.0, means["exam_score"], 1e-9, "malformed score excluded")
	assert.InDelta(t, 40.0/6.0, means["sleep_hours"], 1e-9)
	_, ok := means["gender"]
	assert.False(t, ok, "metric without numeric values is undefined")
}

func TestComputeRadarExtents_IndependentOfFilter(t *testing.T) {
	s := studentStore(t)
	all := s.Records()

	full := RadarOfMeans(all, all, []string{"exam_score"})
	narrow := RadarOfMeans(all[:1], all, []string{"exam_score"})

	require.NotNil(t, full.Axes[0].Extent)
	require.NotNil(t, narrow.Axes[0].Extent)
	assert.Equal(t, *full.Axes[0].Extent, *narrow.Axes[0].Extent)
	assert.Equal(t, Extent{Min: 40, Max: 90}, *narrow.Axes[0].Extent)

	require.NotNil(t, narrow.Axes[0].Normalized)
	assert.Equal(t, 0.0, *narrow.Axes[0].Normalized, "S1 scored the minimum")
	assert.Equal(t, 1, narrow.Count)
}

func TestRadarOfMeans_UndefinedAxis(t *testing.T) {
	s := studentStore(t)
	all := s.Records()

	// S6 is the only record selected and has no numeric score.
	summary := RadarOfMeans(all[5:], all, []string{"exam_score", "netflix_hours"})
	require.Len(t, summary.Axes, 2)
	assert.Nil(t, summary.Axes[0].Mean)
	assert.Nil(t, summary.Axes[0].Normalized)
	assert.NotNil(t, summary.Axes[0].Extent)
	assert.Nil(t, summary.Axes[1].Extent, "unknown metric has no extent")
}

func TestExtent_Normalize(t *testing.T) {
	assert.Equal(t, 0.5, Extent{Min: 0, Max: 10}.Normalize(5))
	assert.Equal(t, 0.0, Extent{Min: 3, Max: 3}.Normalize(3))
}

func TestBuildScatter_PinsAndExtents(t *testing.T) {
	s := studentStore(t)
	all := s.Records()
	pins := []Pin{{Record: all[3], Color: "#1f77b4"}}

	sc := BuildScatter(all, "study_hours_per_day", "exam_score", "sleep_hours", pins)
	assert.Len(t, sc.Points, 5, "record without a numeric score is excluded")
	assert.Equal(t, 1, sc.Excluded)
	assert.Equal(t, Extent{Min: 0.5, Max: 6}, *sc.XExtent)
	assert.Equal(t, Extent{Min: 4, Max: 9}, *sc.SizeExtent)

	var pinned []core.RecordID
	for _, p := range sc.Points {
		if p.Pinned {
			pinned = append(pinned, p.ID)
			assert.Equal(t, "#1f77b4", p.Color)
		}
	}
	assert.Equal(t, []core.RecordID{"student_id_3"}, pinned)
}

func TestBuildPinRadar(t *testing.T) {
	s := studentStore(t)
	all := s.Records()
	pins := []Pin{{Record: all[3], Color: "#ff7f0e"}, {Record: all[5], Color: "#2ca02c"}}

	pr := BuildPinRadar(all, []string{"exam_score", "sleep_hours"}, pins)
	require.Len(t, pr.Profiles, 2)

	top := pr.Profiles[0]
	assert.Equal(t, "S4", top.Label)
	require.NotNil(t, top.Normalized[0])
	assert.Equal(t, 1.0, *top.Normalized[0])

	missing := pr.Profiles[1]
	assert.Nil(t, missing.Values[0])
	assert.NotNil(t, missing.Values[1])
}
