package view

// Params are the live, user-adjustable parameters of a dashboard session.
type Params struct {
	BinCount         int      `json:"bin_count"`
	HistogramMeasure string   `json:"histogram_measure"`
	HistogramMin     float64  `json:"histogram_min"`
	HistogramMax     float64  `json:"histogram_max"`
	Primary          string   `json:"primary_grouping"`
	Secondary        string   `json:"secondary_grouping"`
	BoxGroup         string   `json:"boxplot_group"`
	BoxMeasure       string   `json:"boxplot_measure"`
	ScatterX         string   `json:"scatter_x"`
	ScatterY         string   `json:"scatter_y"`
	ScatterSize      string   `json:"scatter_size"`
	RadarMetrics     []string `json:"radar_metrics"`
}

// Clone returns a deep copy.
func (p Params) Clone() Params {
	p.RadarMetrics = append([]string(nil), p.RadarMetrics...)
	return p
}

// ParamsPatch is a partial update; nil fields are left unchanged.
type ParamsPatch struct {
	BinCount         *int     `json:"bin_count,omitempty"`
	HistogramMeasure *string  `json:"histogram_measure,omitempty"`
	HistogramMin     *float64 `json:"histogram_min,omitempty"`
	HistogramMax     *float64 `json:"histogram_max,omitempty"`
	Primary          *string  `json:"primary_grouping,omitempty"`
	Secondary        *string  `json:"secondary_grouping,omitempty"`
	BoxGroup         *string  `json:"boxplot_group,omitempty"`
	BoxMeasure       *string  `json:"boxplot_measure,omitempty"`
	ScatterX         *string  `json:"scatter_x,omitempty"`
	ScatterY         *string  `json:"scatter_y,omitempty"`
	ScatterSize      *string  `json:"scatter_size,omitempty"`
	RadarMetrics     []string `json:"radar_metrics,omitempty"`
}

// Apply returns p with the patch applied and the views whose input changed.
func (patch ParamsPatch) Apply(p Params) (Params, []Kind) {
	next := p.Clone()
	affected := make(map[Kind]bool)

	setInt := func(dst *int, src *int, kinds ...Kind) {
		if src != nil && *src != *dst {
			*dst = *src
			markAll(affected, kinds)
		}
	}
	setFloat := func(dst *float64, src *float64, kinds ...Kind) {
		if src != nil && *src != *dst {
			*dst = *src
			markAll(affected, kinds)
		}
	}
	setString := func(dst *string, src *string, kinds ...Kind) {
		if src != nil && *src != *dst {
			*dst = *src
			markAll(affected, kinds)
		}
	}

	setInt(&next.BinCount, patch.BinCount, Histogram)
	setString(&next.HistogramMeasure, patch.HistogramMeasure, Histogram)
	setFloat(&next.HistogramMin, patch.HistogramMin, Histogram)
	setFloat(&next.HistogramMax, patch.HistogramMax, Histogram)
	setString(&next.Primary, patch.Primary, Hierarchy)
	setString(&next.Secondary, patch.Secondary, Hierarchy)
	setString(&next.BoxGroup, patch.BoxGroup, BoxPlot)
	setString(&next.BoxMeasure, patch.BoxMeasure, BoxPlot)
	setString(&next.ScatterX, patch.ScatterX, Scatter)
	setString(&next.ScatterY, patch.ScatterY, Scatter)
	setString(&next.ScatterSize, patch.ScatterSize, Scatter)
	if patch.RadarMetrics != nil && !equalStrings(patch.RadarMetrics, next.RadarMetrics) {
		next.RadarMetrics = append([]string(nil), patch.RadarMetrics...)
		affected[RadarMeans] = true
	}

	var kinds []Kind
	for _, k := range Kinds {
		if affected[k] {
			kinds = append(kinds, k)
		}
	}
	return next, kinds
}

// IsEmpty reports whether the patch changes nothing.
func (patch ParamsPatch) IsEmpty() bool {
	return patch.BinCount == nil && patch.HistogramMeasure == nil &&
		patch.HistogramMin == nil && patch.HistogramMax == nil &&
		patch.Primary == nil && patch.Secondary == nil &&
		patch.BoxGroup == nil && patch.BoxMeasure == nil &&
		patch.ScatterX == nil && patch.ScatterY == nil && patch.ScatterSize == nil &&
		patch.RadarMetrics == nil
}

func markAll(set map[Kind]bool, kinds []Kind) {
	for _, k := range kinds {
		set[k] = true
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
