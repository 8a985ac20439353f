// Package grouping maps raw field values to the categorical labels used to
// partition records in the hierarchy and box plot views.
package grouping

import (
	"fmt"
	"strings"

	"studyviz/domain/core"
	"studyviz/domain/dataset"
)

// MissingLabel is the group of records with an empty value.
const MissingLabel = "unknown"

// Func maps a raw field value to a group label. Every Func is total.
type Func func(raw string) string

// Kind describes how a grouping derives labels.
type Kind string

const (
	KindRanges      Kind = "ranges"
	KindPassthrough Kind = "passthrough"
)

// Grouping is a registered grouping of one field.
type Grouping struct {
	Field      string    `json:"field"`
	Kind       Kind      `json:"kind"`
	Thresholds []float64 `json:"thresholds,omitempty"`
	Labels     []string  `json:"labels,omitempty"`
	fn         Func
}

// Apply returns the group label of raw.
func (g Grouping) Apply(raw string) string { return g.fn(raw) }

// Passthrough groups by the raw value itself.
func Passthrough(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return MissingLabel
	}
	return raw
}

// Ranges buckets numeric values by ascending thresholds: a value v gets
// labels[i] for the first i with v < thresholds[i], otherwise the last label.
// Values that do not parse as numbers pass through unchanged.
func Ranges(thresholds []float64, labels []string) (Func, error) {
	if len(labels) != len(thresholds)+1 {
		return nil, fmt.Errorf("%w: %d thresholds need %d labels, got %d",
			core.ErrInvalidParameter, len(thresholds), len(thresholds)+1, len(labels))
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return nil, fmt.Errorf("%w: thresholds must be strictly ascending", core.ErrInvalidParameter)
		}
	}
	ts := append([]float64(nil), thresholds...)
	ls := append([]string(nil), labels...)

	return func(raw string) string {
		v, ok := dataset.ParseNumeric(raw)
		if !ok {
			return Passthrough(raw)
		}
		for i, t := range ts {
			if v < t {
				return ls[i]
			}
		}
		return ls[len(ls)-1]
	}, nil
}

// Registry maps grouping fields to their Func, in registration order.
type Registry struct {
	order     []string
	groupings map[string]Grouping
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{groupings: make(map[string]Grouping)}
}

// RegisterRanges registers a threshold grouping for field.
func (r *Registry) RegisterRanges(field string, thresholds []float64, labels []string) error {
	fn, err := Ranges(thresholds, labels)
	if err != nil {
		return fmt.Errorf("grouping %s: %w", field, err)
	}
	r.put(Grouping{
		Field:      field,
		Kind:       KindRanges,
		Thresholds: append([]float64(nil), thresholds...),
		Labels:     append([]string(nil), labels...),
		fn:         fn,
	})
	return nil
}

// RegisterPassthrough registers a categorical field grouped by raw value.
func (r *Registry) RegisterPassthrough(field string) {
	r.put(Grouping{Field: field, Kind: KindPassthrough, fn: Passthrough})
}

func (r *Registry) put(g Grouping) {
	if _, exists := r.groupings[g.Field]; !exists {
		r.order = append(r.order, g.Field)
	}
	r.groupings[g.Field] = g
}

// Lookup returns the grouping of field or ErrUnknownField.
func (r *Registry) Lookup(field string) (Grouping, error) {
	g, ok := r.groupings[field]
	if !ok {
		return Grouping{}, core.NewUnknownFieldError("grouping", field)
	}
	return g, nil
}

// Has reports whether field is registered.
func (r *Registry) Has(field string) bool {
	_, ok := r.groupings[field]
	return ok
}

// Fields returns the registered fields in registration order.
func (r *Registry) Fields() []string {
	return append([]string(nil), r.order...)
}

// Groupings returns every registered grouping in registration order.
func (r *Registry) Groupings() []Grouping {
	out := make([]Grouping, 0, len(r.order))
	for _, f := range r.order {
		out = append(out, r.groupings[f])
	}
	return out
}

// Label groups one record by field. A record without the field is MissingLabel.
func (g Grouping) Label(rec *dataset.Record) string {
	raw, _ := rec.Value(g.Field)
	return g.Apply(raw)
}

// ForDataset derives the registry used with one dataset: registered
// groupings of fields the dataset has, followed by a passthrough grouping for
// every other categorical field except the label field.
func (r *Registry) ForDataset(store *dataset.Store) *Registry {
	out := NewRegistry()
	for _, g := range r.Groupings() {
		if store.HasField(g.Field) {
			out.put(g)
		}
	}
	for _, field := range store.Fields() {
		if field == store.LabelField() || store.HasDimension(field) || out.Has(field) {
			continue
		}
		out.RegisterPassthrough(field)
	}
	return out
}

// Default returns the registry of the student habits dashboard.
func Default() *Registry {
	r := NewRegistry()
	mustRanges(r, "study_hours_per_day", []float64{2, 5}, []string{"Low Study", "Medium Study", "High Study"})
	mustRanges(r, "sleep_hours", []float64{5, 8}, []string{"Low Sleep", "Normal Sleep", "High Sleep"})
	for _, field := range []string{"gender", "diet_quality", "internet_quality", "part_time_job"} {
		r.RegisterPassthrough(field)
	}
	return r
}

func mustRanges(r *Registry, field string, thresholds []float64, labels []string) {
	if err := r.RegisterRanges(field, thresholds, labels); err != nil {
		panic(err)
	}
}
