package coordinator

import (
	"studyviz/domain/core"
	"studyviz/internal/aggregation"
	"studyviz/internal/selection"
)

// HierarchyPayload is the hierarchy view. Root is omitted on highlight-only
// updates.
type HierarchyPayload struct {
	Primary    string            `json:"primary"`
	Secondary  string            `json:"secondary"`
	Root       *aggregation.Node `json:"root,omitempty"`
	ActivePath []string          `json:"active_path"`
	Source     selection.Source  `json:"source,omitempty"`
	Mode       selection.Mode    `json:"mode"`
}

// BoxPlotPayload is the box plot view. Groups are omitted on highlight-only
// updates.
type BoxPlotPayload struct {
	*aggregation.BoxPlot
	ActiveGroup string `json:"active_group,omitempty"`
}

// PinInfo is one entry of the pin legend.
type PinInfo struct {
	ID    core.RecordID `json:"id"`
	Label string        `json:"label"`
	Color string        `json:"color"`
}

// PinRadarPayload is the pin radar with its legend.
type PinRadarPayload struct {
	aggregation.PinRadar
	Legend   []PinInfo `json:"legend"`
	Capacity int       `json:"capacity"`
}
