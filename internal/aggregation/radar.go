package aggregation

import (
	"studyviz/domain/dataset"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultRadarMetrics are the axes of the radar of means.
var DefaultRadarMetrics = []string{
	"study_hours_per_day",
	"social_media_hours",
	"netflix_hours",
	"mental_health_rating",
	"attendance_percentage",
	"exam_score",
}

// Extent is a closed [Min, Max] range.
type Extent struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Normalize maps v into [0, 1] relative to the extent. A degenerate extent
// maps every value to 0.
func (e Extent) Normalize(v float64) float64 {
	if e.Max == e.Min {
		return 0
	}
	return (v - e.Min) / (e.Max - e.Min)
}

// ComputeMeans returns the arithmetic mean of each metric over its numeric
// values. A metric without numeric values has no entry.
func ComputeMeans(records []*dataset.Record, metrics []string) map[string]float64 {
	means := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		values, _ := dataset.NumericValues(records, m)
		if len(values) == 0 {
			continue
		}
		means[m] = stat.Mean(values, nil)
	}
	return means
}

// ComputeRadarExtents returns the min and max of each metric. It is always
// called with the full dataset so radar scales do not move with the filter.
func ComputeRadarExtents(all []*dataset.Record, metrics []string) map[string]Extent {
	extents := make(map[string]Extent, len(metrics))
	for _, m := range metrics {
		values, _ := dataset.NumericValues(all, m)
		if len(values) == 0 {
			continue
		}
		extents[m] = Extent{Min: floats.Min(values), Max: floats.Max(values)}
	}
	return extents
}

// RadarAxis is one spoke of the radar of means. Mean and Normalized are nil
// when the filter has no numeric value for the metric.
type RadarAxis struct {
	Metric     string   `json:"metric"`
	Mean       *float64 `json:"mean"`
	Normalized *float64 `json:"normalized"`
	Extent     *Extent  `json:"extent,omitempty"`
}

// RadarSummary is the radar of means of the filter subset.
type RadarSummary struct {
	Count int         `json:"count"`
	Axes  []RadarAxis `json:"axes"`
}

// RadarOfMeans combines the means of the filter subset with extents of the
// full dataset.
func RadarOfMeans(filter, all []*dataset.Record, metrics []string) RadarSummary {
	means := ComputeMeans(filter, metrics)
	extents := ComputeRadarExtents(all, metrics)

	summary := RadarSummary{Count: len(filter), Axes: make([]RadarAxis, 0, len(metrics))}
	for _, m := range metrics {
		axis := RadarAxis{Metric: m}
		ext, hasExt := extents[m]
		if hasExt {
			axis.Extent = &ext
		}
		if mean, ok := means[m]; ok {
			axis.Mean = floatPtr(mean)
			if hasExt {
				axis.Normalized = floatPtr(ext.Normalize(mean))
			}
		}
		summary.Axes = append(summary.Axes, axis)
	}
	return summary
}

func floatPtr(v float64) *float64 { return &v }
