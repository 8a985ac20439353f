package aggregation

import (
	"studyviz/domain/core"
	"studyviz/domain/dataset"
)

// Pin is a pinned record with its assigned colour.
type Pin struct {
	Record *dataset.Record
	Color  string
}

// ScatterPoint is one record of the scatter view.
type ScatterPoint struct {
	ID     core.RecordID `json:"id"`
	Label  string        `json:"label"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Size   *float64      `json:"size,omitempty"`
	Pinned bool          `json:"pinned"`
	Color  string        `json:"color,omitempty"`
}

// Scatter is the full-dataset scatter view with pin highlighting.
type Scatter struct {
	X          string         `json:"x"`
	Y          string         `json:"y"`
	Size       string         `json:"size,omitempty"`
	XExtent    *Extent        `json:"x_extent,omitempty"`
	YExtent    *Extent        `json:"y_extent,omitempty"`
	SizeExtent *Extent        `json:"size_extent,omitempty"`
	Points     []ScatterPoint `json:"points"`
	Excluded   int            `json:"excluded"`
	// Correlation is of x and y over the plotted points.
	Correlation *Correlation `json:"correlation,omitempty"`
}

// BuildScatter plots every record with numeric x and y. Extents are taken
// from all records so they do not depend on any selection.
func BuildScatter(all []*dataset.Record, x, y, size string, pins []Pin) Scatter {
	colors := make(map[core.RecordID]string, len(pins))
	for _, p := range pins {
		colors[p.Record.ID] = p.Color
	}

	metrics := []string{x, y}
	if size != "" {
		metrics = append(metrics, size)
	}
	extents := ComputeRadarExtents(all, metrics)

	sc := Scatter{X: x, Y: y, Size: size, Points: make([]ScatterPoint, 0, len(all))}
	if e, ok := extents[x]; ok {
		sc.XExtent = &e
	}
	if e, ok := extents[y]; ok {
		sc.YExtent = &e
	}
	if e, ok := extents[size]; ok && size != "" {
		sc.SizeExtent = &e
	}

	for _, rec := range all {
		xv, okX := rec.Numeric(x)
		yv, okY := rec.Numeric(y)
		if !okX || !okY {
			sc.Excluded++
			continue
		}
		pt := ScatterPoint{ID: rec.ID, Label: rec.Label, X: xv, Y: yv}
		if size != "" {
			if sv, ok := rec.Numeric(size); ok {
				pt.Size = floatPtr(sv)
			}
		}
		if c, ok := colors[rec.ID]; ok {
			pt.Pinned = true
			pt.Color = c
		}
		sc.Points = append(sc.Points, pt)
	}

	xs := make([]float64, len(sc.Points))
	ys := make([]float64, len(sc.Points))
	for i, pt := range sc.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}
	sc.Correlation = Correlate(xs, ys)
	return sc
}

// PinProfile is one pinned record drawn on the pin radar. Values and
// Normalized align with PinRadar.Axes; nil marks a missing value.
type PinProfile struct {
	ID         core.RecordID `json:"id"`
	Label      string        `json:"label"`
	Color      string        `json:"color"`
	Values     []*float64    `json:"values"`
	Normalized []*float64    `json:"normalized"`
}

// PinRadar compares pinned records across the dimensions.
type PinRadar struct {
	Axes     []string          `json:"axes"`
	Extents  map[string]Extent `json:"extents"`
	Profiles []PinProfile      `json:"profiles"`
}

// BuildPinRadar normalizes every pinned record against full-dataset extents.
func BuildPinRadar(all []*dataset.Record, dimensions []string, pins []Pin) PinRadar {
	extents := ComputeRadarExtents(all, dimensions)
	pr := PinRadar{
		Axes:     append([]string(nil), dimensions...),
		Extents:  extents,
		Profiles: make([]PinProfile, 0, len(pins)),
	}
	for _, p := range pins {
		profile := PinProfile{
			ID:         p.Record.ID,
			Label:      p.Record.Label,
			Color:      p.Color,
			Values:     make([]*float64, len(dimensions)),
			Normalized: make([]*float64, len(dimensions)),
		}
		for i, dim := range dimensions {
			v, ok := p.Record.Numeric(dim)
			if !ok {
				continue
			}
			profile.Values[i] = floatPtr(v)
			if ext, ok := extents[dim]; ok {
				profile.Normalized[i] = floatPtr(ext.Normalize(v))
			}
		}
		pr.Profiles = append(pr.Profiles, profile)
	}
	return pr
}
