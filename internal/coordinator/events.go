package coordinator

import (
	"studyviz/domain/core"
	"studyviz/domain/view"
	"studyviz/internal/selection"
	"studyviz/ports"
)

// EventType names an interaction reported by the render layer.
type EventType string

const (
	NodeActivated  EventType = "node_activated"
	GroupActivated EventType = "group_activated"
	PointActivated EventType = "point_activated"
	ClearRequested EventType = "clear_requested"
	PinRemoved     EventType = "pin_removed"
	ParamsChanged  EventType = "params_changed"
)

// Event is one interaction. Path identifies a hierarchy node (names below
// the root), Label a box plot group, RecordID a record.
type Event struct {
	Type     EventType         `json:"type"`
	Path     []string          `json:"path,omitempty"`
	Label    string            `json:"label,omitempty"`
	RecordID core.RecordID     `json:"record_id,omitempty"`
	Params   *view.ParamsPatch `json:"params,omitempty"`
}

// Focus describes the box plot group a filter was taken from.
type Focus struct {
	Group  string  `json:"group"`
	Median float64 `json:"median"`
	Count  int     `json:"count"`
}

// Result reports what a dispatch changed. Updates is empty when the event
// left the state unchanged.
type Result struct {
	Generation int64                `json:"generation"`
	Topic      view.Topic           `json:"topic,omitempty"`
	Mode       selection.Mode       `json:"mode"`
	FilterSize int                  `json:"filter_size"`
	PinOutcome selection.PinOutcome `json:"pin_outcome,omitempty"`
	Notice     string               `json:"notice,omitempty"`
	Focus      *Focus               `json:"focus,omitempty"`
	Updates    []ports.Update       `json:"updates"`
}
