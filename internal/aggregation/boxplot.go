package aggregation

import (
	"math"
	"sort"

	"studyviz/domain/dataset"
	"studyviz/domain/grouping"

	"github.com/montanaflynn/stats"
)

// BoxStats is the five-number summary of one group.
type BoxStats struct {
	Label  string  `json:"label"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// BoxPlot is the grouped distribution of one measure.
type BoxPlot struct {
	GroupField string     `json:"group_field"`
	Measure    string     `json:"measure"`
	Groups     []BoxStats `json:"groups"`
	Domain     *Extent    `json:"domain,omitempty"`
	Excluded   int        `json:"excluded"`
}

// Group returns the statistics of the group with the given label.
func (b *BoxPlot) Group(label string) (BoxStats, bool) {
	for _, g := range b.Groups {
		if g.Label == label {
			return g, true
		}
	}
	return BoxStats{}, false
}

// Quantile returns the p-quantile of sorted values by linear interpolation
// between order statistics: h = (n-1)p, x[floor(h)] + (h-floor(h))(x[floor(h)+1]-x[floor(h)]).
// It returns NaN for an empty input.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 || math.IsNaN(p) {
		return math.NaN()
	}
	if p <= 0 || n == 1 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Summarize computes the five-number summary of values. ok is false when
// values is empty.
func Summarize(label string, values []float64) (BoxStats, bool) {
	if len(values) == 0 {
		return BoxStats{}, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	data := stats.Float64Data(sorted)
	min, _ := data.Min()
	max, _ := data.Max()
	median, _ := data.Median()

	return BoxStats{
		Label:  label,
		Min:    min,
		Q1:     Quantile(sorted, 0.25),
		Median: median,
		Q3:     Quantile(sorted, 0.75),
		Max:    max,
		Count:  len(sorted),
	}, true
}

// ComputeGroupStatistics partitions records by the registered grouping of
// groupField and summarizes the numeric values of measure per group. Groups
// keep first-appearance order; groups without any numeric value are omitted.
func ComputeGroupStatistics(records []*dataset.Record, registry *grouping.Registry, groupField, measure string) (*BoxPlot, error) {
	g, err := registry.Lookup(groupField)
	if err != nil {
		return nil, err
	}

	plot := &BoxPlot{GroupField: groupField, Measure: measure, Groups: []BoxStats{}}
	for _, part := range partition(records, g) {
		values, excluded := dataset.NumericValues(part.records, measure)
		plot.Excluded += excluded
		box, ok := Summarize(part.label, values)
		if !ok {
			continue
		}
		plot.Groups = append(plot.Groups, box)
		if plot.Domain == nil {
			plot.Domain = &Extent{Min: box.Min, Max: box.Max}
		} else {
			plot.Domain.Min = math.Min(plot.Domain.Min, box.Min)
			plot.Domain.Max = math.Max(plot.Domain.Max, box.Max)
		}
	}
	return plot, nil
}

// GroupRecords returns the records of one group of groupField in input order.
func GroupRecords(records []*dataset.Record, registry *grouping.Registry, groupField, label string) ([]*dataset.Record, error) {
	g, err := registry.Lookup(groupField)
	if err != nil {
		return nil, err
	}
	var out []*dataset.Record
	for _, rec := range records {
		if g.Label(rec) == label {
			out = append(out, rec)
		}
	}
	return out, nil
}
