// Package view names the dashboard views, the topics they subscribe to and
// the live parameters that shape them.
package view

// Kind identifies a dashboard view.
type Kind string

const (
	Hierarchy  Kind = "hierarchy"
	Histogram  Kind = "histogram"
	BoxPlot    Kind = "boxplot"
	RadarMeans Kind = "radar_means"
	Scatter    Kind = "scatter"
	PinRadar   Kind = "pin_radar"
)

// Kinds lists every view in render order.
var Kinds = []Kind{Hierarchy, Histogram, BoxPlot, RadarMeans, Scatter, PinRadar}

// Valid reports whether k names a known view.
func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

// Topic is a class of state change views can subscribe to.
type Topic string

const (
	TopicDataset Topic = "dataset_loaded"
	TopicFilter  Topic = "filter_changed"
	TopicPins    Topic = "pins_changed"
	TopicParams  Topic = "params_changed"
)

// AllTopics lists every topic.
var AllTopics = []Topic{TopicDataset, TopicFilter, TopicPins, TopicParams}

// Mode tells a view whether to redraw from a new payload or only move its
// highlight.
type Mode string

const (
	ModeFull      Mode = "full"
	ModeHighlight Mode = "highlight"
)

// NodeRef locates a hierarchy node under the groupings it was selected with.
type NodeRef struct {
	Primary   string   `json:"primary_grouping"`
	Secondary string   `json:"secondary_grouping"`
	Path      []string `json:"path"`
}

// Clone returns a deep copy, or nil for a nil ref.
func (r *NodeRef) Clone() *NodeRef {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Path = append([]string(nil), r.Path...)
	return &cp
}
