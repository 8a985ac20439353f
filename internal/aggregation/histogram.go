package aggregation

import (
	"fmt"
	"math"
	"sort"

	"studyviz/domain/core"
	"studyviz/domain/dataset"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bin is one histogram bucket covering [X0, X1). The last bin also includes X1.
type Bin struct {
	X0    float64 `json:"x0"`
	X1    float64 `json:"x1"`
	Count int     `json:"count"`
}

// Histogram is the binned distribution of one measure.
type Histogram struct {
	Measure  string `json:"measure"`
	Domain   Extent `json:"domain"`
	Bins     []Bin  `json:"bins"`
	Total    int    `json:"total"`
	Excluded int    `json:"excluded"`
	MaxCount int    `json:"max_count"`
}

// MaxBinCount bounds the number of histogram bins.
const MaxBinCount = 1000

// BuildHistogram counts the numeric values of measure into binCount
// equal-width bins over [domainMin, domainMax]. Values outside the domain are
// clamped into the first or last bin, so bin counts always sum to the number
// of numeric values. Non-numeric values are excluded and counted.
func BuildHistogram(records []*dataset.Record, measure string, binCount int, domainMin, domainMax float64) (*Histogram, error) {
	if binCount < 1 || binCount > MaxBinCount {
		return nil, core.NewInvalidParameterError("bin_count", fmt.Sprintf("must be between 1 and %d", MaxBinCount))
	}
	if !(domainMin < domainMax) || math.IsInf(domainMin, 0) || math.IsInf(domainMax, 0) {
		return nil, core.NewInvalidParameterError("domain", "min must be below max")
	}

	values, excluded := dataset.NumericValues(records, measure)
	for i, v := range values {
		values[i] = math.Max(domainMin, math.Min(v, domainMax))
	}
	sort.Float64s(values)

	edges := floats.Span(make([]float64, binCount+1), domainMin, domainMax)
	edges[binCount] = domainMax
	// The top divider is nudged up so domainMax lands in the last bin.
	dividers := append([]float64(nil), edges...)
	dividers[binCount] = math.Nextafter(domainMax, math.Inf(1))

	counts := stat.Histogram(nil, dividers, values, nil)

	h := &Histogram{
		Measure:  measure,
		Domain:   Extent{Min: domainMin, Max: domainMax},
		Bins:     make([]Bin, binCount),
		Total:    len(values),
		Excluded: excluded,
	}
	for i, c := range counts {
		h.Bins[i] = Bin{X0: edges[i], X1: edges[i+1], Count: int(c)}
		if h.Bins[i].Count > h.MaxCount {
			h.MaxCount = h.Bins[i].Count
		}
	}
	return h, nil
}
