package coordinator

import (
	"fmt"

	"studyviz/domain/core"
	"studyviz/domain/dataset"
	"studyviz/domain/grouping"
	"studyviz/domain/view"
	"studyviz/internal/aggregation"
)

// DefaultParams are the dashboard defaults for the student habits dataset.
// Empty scatter fields are chosen from the dataset's dimensions on load.
func DefaultParams() view.Params {
	return view.Params{
		BinCount:         10,
		HistogramMeasure: "exam_score",
		HistogramMin:     0,
		HistogramMax:     100,
		Primary:          "study_hours_per_day",
		Secondary:        "sleep_hours",
		BoxGroup:         "internet_quality",
		BoxMeasure:       "exam_score",
		RadarMetrics:     append([]string(nil), aggregation.DefaultRadarMetrics...),
	}
}

// ValidateParams checks every field reference against the dataset and the
// grouping registry.
func ValidateParams(p view.Params, store *dataset.Store, registry *grouping.Registry) error {
	if p.BinCount < 1 || p.BinCount > aggregation.MaxBinCount {
		return core.NewInvalidParameterError("bin_count", fmt.Sprintf("must be between 1 and %d", aggregation.MaxBinCount))
	}
	if !(p.HistogramMin < p.HistogramMax) {
		return core.NewInvalidParameterError("histogram domain", "min must be below max")
	}
	for _, field := range []string{p.Primary, p.Secondary, p.BoxGroup} {
		if _, err := registry.Lookup(field); err != nil {
			return err
		}
	}
	for _, field := range []string{p.HistogramMeasure, p.BoxMeasure, p.ScatterX, p.ScatterY} {
		if err := store.RequireDimension(field); err != nil {
			return err
		}
	}
	if p.ScatterSize != "" {
		if err := store.RequireDimension(p.ScatterSize); err != nil {
			return err
		}
	}
	if len(p.RadarMetrics) == 0 {
		return core.NewInvalidParameterError("radar_metrics", "must not be empty")
	}
	for _, m := range p.RadarMetrics {
		if err := store.RequireDimension(m); err != nil {
			return err
		}
	}
	return nil
}

// ResolveParams adapts want to a dataset: every field reference the dataset
// cannot satisfy falls back to the first suitable field. It fails when the
// dataset has no numeric dimension or no grouping field.
func ResolveParams(want view.Params, store *dataset.Store, registry *grouping.Registry) (view.Params, error) {
	dims := store.Dimensions()
	if len(dims) == 0 {
		return view.Params{}, core.NewUnknownFieldError("dimension", "(none in dataset)")
	}
	groups := registry.Fields()
	if len(groups) == 0 {
		return view.Params{}, core.NewUnknownFieldError("grouping", "(none in dataset)")
	}

	p := want.Clone()
	if p.BinCount < 1 || p.BinCount > aggregation.MaxBinCount {
		p.BinCount = DefaultParams().BinCount
	}
	if !(p.HistogramMin < p.HistogramMax) {
		p.HistogramMin, p.HistogramMax = DefaultParams().HistogramMin, DefaultParams().HistogramMax
	}

	p.Primary = pickGrouping(registry, p.Primary, groups[0])
	p.Secondary = pickGrouping(registry, p.Secondary, groups[min(1, len(groups)-1)])
	p.BoxGroup = pickGrouping(registry, p.BoxGroup, groups[0])

	p.HistogramMeasure = pickDimension(dims, p.HistogramMeasure, dims[0])
	p.BoxMeasure = pickDimension(dims, p.BoxMeasure, dims[0])
	p.ScatterX = pickDimension(dims, p.ScatterX, dims[0])
	p.ScatterY = pickDimension(dims, p.ScatterY, dims[min(1, len(dims)-1)])
	p.ScatterSize = pickDimension(dims, p.ScatterSize, dims[min(2, len(dims)-1)])

	p.RadarMetrics = dims.Intersect(p.RadarMetrics)
	if len(p.RadarMetrics) == 0 {
		p.RadarMetrics = dims.Intersect(aggregation.DefaultRadarMetrics)
	}
	if len(p.RadarMetrics) == 0 {
		p.RadarMetrics = []string(dims)
	}
	return p, nil
}

func pickGrouping(registry *grouping.Registry, want, fallback string) string {
	if registry.Has(want) {
		return want
	}
	return fallback
}

func pickDimension(dims dataset.DimensionSet, want, fallback string) string {
	if dims.Contains(want) {
		return want
	}
	return fallback
}
