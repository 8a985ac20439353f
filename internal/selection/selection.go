// Package selection holds the interactive selection shared by every view of
// a dashboard session: the filter subset feeding the aggregate views and the
// bounded set of pinned records with their colours.
//
// State is not safe for concurrent use; the coordinator serializes access.
package selection

import (
	"studyviz/domain/core"
	"studyviz/domain/dataset"
)

// DefaultMaxPins bounds the pin set.
const DefaultMaxPins = 10

// DefaultPalette is the categorical pin palette (d3 schemeCategory10).
var DefaultPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Mode is the drill-down state of the filter.
type Mode string

const (
	Unfiltered      Mode = "unfiltered"
	FilteredByGroup Mode = "filtered_by_group"
)

// Source names the view whose interaction set the current filter.
type Source string

const (
	SourceNone      Source = ""
	SourceHierarchy Source = "hierarchy"
	SourceBoxPlot   Source = "boxplot"
)

// PinOutcome is the result of a pin toggle.
type PinOutcome string

const (
	Pinned             PinOutcome = "pinned"
	Unpinned           PinOutcome = "unpinned"
	PinCapacityReached PinOutcome = "capacity_reached"
)

// Pin is a pinned record and its colour.
type Pin struct {
	Record *dataset.Record
	Color  string
}

// Options configures a selection state.
type Options struct {
	MaxPins int
	Palette []string
}

// DefaultOptions returns the dashboard defaults.
func DefaultOptions() Options {
	return Options{MaxPins: DefaultMaxPins, Palette: DefaultPalette}
}

// State is the selection of one dashboard session.
type State struct {
	store   *dataset.Store
	maxPins int
	palette []string

	filter     []*dataset.Record
	mode       Mode
	source     Source
	activePath []string

	pins []Pin
}

// New creates a state over store with the full dataset in scope and no pins.
func New(store *dataset.Store, opts Options) *State {
	if opts.MaxPins <= 0 {
		opts.MaxPins = DefaultMaxPins
	}
	if len(opts.Palette) == 0 {
		opts.Palette = DefaultPalette
	}
	s := &State{
		maxPins: opts.MaxPins,
		palette: append([]string(nil), opts.Palette...),
	}
	s.Reset(store)
	return s
}

// Reset points the state at a (new) dataset: full filter, no pins.
func (s *State) Reset(store *dataset.Store) {
	s.store = store
	s.pins = nil
	s.Clear()
}

// Store returns the dataset the selection refers to.
func (s *State) Store() *dataset.Store { return s.store }

// Select replaces the filter subset with records. The previous subset is
// discarded, never merged.
func (s *State) Select(source Source, path []string, records []*dataset.Record) []*dataset.Record {
	s.filter = append([]*dataset.Record(nil), records...)
	s.mode = FilteredByGroup
	s.source = source
	s.activePath = append([]string(nil), path...)
	return s.Filter()
}

// Clear restores the full dataset in original order.
func (s *State) Clear() {
	s.filter = s.store.Records()
	s.mode = Unfiltered
	s.source = SourceNone
	s.activePath = nil
}

// Filter returns the current filter subset.
func (s *State) Filter() []*dataset.Record {
	return append([]*dataset.Record(nil), s.filter...)
}

// FilterIDs returns the identifiers of the filter subset.
func (s *State) FilterIDs() []core.RecordID { return dataset.IDs(s.filter) }

// Mode returns the drill-down state.
func (s *State) Mode() Mode { return s.mode }

// Source returns the view that set the current filter.
func (s *State) Source() Source { return s.source }

// ActivePath is the hierarchy path or group label of the current filter.
func (s *State) ActivePath() []string { return append([]string(nil), s.activePath...) }

// TogglePin unpins a pinned record, otherwise pins it when capacity allows.
// A full pin set leaves the state unchanged and reports PinCapacityReached.
func (s *State) TogglePin(rec *dataset.Record) PinOutcome {
	if s.Unpin(rec.ID) {
		return Unpinned
	}
	if len(s.pins) >= s.maxPins {
		return PinCapacityReached
	}
	s.pins = append(s.pins, Pin{Record: rec, Color: s.nextColor()})
	return Pinned
}

// Unpin removes a pin and releases its colour. It reports whether the record
// was pinned.
func (s *State) Unpin(id core.RecordID) bool {
	for i, p := range s.pins {
		if p.Record.ID == id {
			s.pins = append(s.pins[:i:i], s.pins[i+1:]...)
			return true
		}
	}
	return false
}

// nextColor returns the first palette colour not held by a pin. With every
// colour taken it cycles by the number of pins.
func (s *State) nextColor() string {
	used := make(map[string]bool, len(s.pins))
	for _, p := range s.pins {
		used[p.Color] = true
	}
	for _, c := range s.palette {
		if !used[c] {
			return c
		}
	}
	return s.palette[len(s.pins)%len(s.palette)]
}

// Pins returns the pins in pin order.
func (s *State) Pins() []Pin { return append([]Pin(nil), s.pins...) }

// PinColor returns the colour of a pinned record.
func (s *State) PinColor(id core.RecordID) (string, bool) {
	for _, p := range s.pins {
		if p.Record.ID == id {
			return p.Color, true
		}
	}
	return "", false
}

// IsPinned reports whether a record is pinned.
func (s *State) IsPinned(id core.RecordID) bool {
	_, ok := s.PinColor(id)
	return ok
}

// MaxPins returns the pin capacity.
func (s *State) MaxPins() int { return s.maxPins }
