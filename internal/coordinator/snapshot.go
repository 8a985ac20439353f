package coordinator

import (
	"context"
	"fmt"

	"studyviz/domain/core"
	"studyviz/domain/dataset"
	"studyviz/domain/grouping"
	"studyviz/domain/view"
	"studyviz/internal/aggregation"
	"studyviz/internal/selection"

	"golang.org/x/sync/errgroup"
)

// inputs is an immutable copy of everything a payload is computed from, so
// payloads can be built concurrently.
type inputs struct {
	store      *dataset.Store
	registry   *grouping.Registry
	params     view.Params
	all        []*dataset.Record
	filter     []*dataset.Record
	boxBase    []*dataset.Record
	pins       []aggregation.Pin
	legend     []PinInfo
	maxPins    int
	mode       selection.Mode
	source     selection.Source
	activePath []string
}

func (c *Coordinator) inputs() *inputs {
	selPins := c.sel.Pins()
	pins := make([]aggregation.Pin, len(selPins))
	legend := make([]PinInfo, len(selPins))
	for i, p := range selPins {
		pins[i] = aggregation.Pin{Record: p.Record, Color: p.Color}
		legend[i] = PinInfo{ID: p.Record.ID, Label: p.Record.Label, Color: p.Color}
	}
	return &inputs{
		store:      c.store,
		registry:   c.registry,
		params:     c.params.Clone(),
		all:        c.store.Records(),
		filter:     c.sel.Filter(),
		boxBase:    append([]*dataset.Record(nil), c.boxBase...),
		pins:       pins,
		legend:     legend,
		maxPins:    c.sel.MaxPins(),
		mode:       c.sel.Mode(),
		source:     c.sel.Source(),
		activePath: c.sel.ActivePath(),
	}
}

func (in *inputs) payload(kind view.Kind, mode view.Mode) (interface{}, error) {
	p := in.params
	switch kind {
	case view.Hierarchy:
		out := &HierarchyPayload{
			Primary:    p.Primary,
			Secondary:  p.Secondary,
			ActivePath: in.activePath,
			Source:     in.source,
			Mode:       in.mode,
		}
		if out.ActivePath == nil {
			out.ActivePath = []string{}
		}
		if mode == view.ModeFull {
			root, err := aggregation.BuildHierarchy(in.all, in.registry, p.Primary, p.Secondary)
			if err != nil {
				return nil, err
			}
			out.Root = root
		}
		return out, nil

	case view.Histogram:
		return aggregation.BuildHistogram(in.filter, p.HistogramMeasure, p.BinCount, p.HistogramMin, p.HistogramMax)

	case view.BoxPlot:
		out := &BoxPlotPayload{}
		if in.source == selection.SourceBoxPlot && len(in.activePath) == 1 {
			out.ActiveGroup = in.activePath[0]
		}
		if mode == view.ModeFull {
			plot, err := aggregation.ComputeGroupStatistics(in.boxBase, in.registry, p.BoxGroup, p.BoxMeasure)
			if err != nil {
				return nil, err
			}
			out.BoxPlot = plot
		}
		return out, nil

	case view.RadarMeans:
		summary := aggregation.RadarOfMeans(in.filter, in.all, p.RadarMetrics)
		return &summary, nil

	case view.Scatter:
		sc := aggregation.BuildScatter(in.all, p.ScatterX, p.ScatterY, p.ScatterSize, in.pins)
		return &sc, nil

	case view.PinRadar:
		return &PinRadarPayload{
			PinRadar: aggregation.BuildPinRadar(in.all, in.store.Dimensions(), in.pins),
			Legend:   in.legend,
			Capacity: in.maxPins,
		}, nil
	}
	return nil, fmt.Errorf("unknown view kind %q", kind)
}

// DatasetInfo summarizes the loaded dataset.
type DatasetInfo struct {
	Source     string              `json:"source"`
	Hash       core.DatasetHash    `json:"hash"`
	Records    int                 `json:"records"`
	Fields     []string            `json:"fields"`
	Dimensions []string            `json:"dimensions"`
	LabelField string              `json:"label_field"`
	Groupings  []grouping.Grouping `json:"groupings"`
}

// Snapshot is the complete current state of a session.
type Snapshot struct {
	SessionID  core.SessionID            `json:"session_id"`
	Generation int64                     `json:"generation"`
	Dataset    DatasetInfo               `json:"dataset"`
	Params     view.Params               `json:"params"`
	Mode       selection.Mode            `json:"mode"`
	Source     selection.Source          `json:"source,omitempty"`
	ActivePath []string                  `json:"active_path"`
	FilterIDs  []core.RecordID           `json:"filter_ids"`
	Pins       []PinInfo                 `json:"pins"`
	Views      map[view.Kind]interface{} `json:"views"`
}

// Snapshot computes every view payload for the current state.
func (c *Coordinator) Snapshot(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	in := c.inputs()
	gen := c.gens.Current()
	c.mu.Unlock()

	payloads := make([]interface{}, len(view.Kinds))
	g, _ := errgroup.WithContext(ctx)
	for i, kind := range view.Kinds {
		i, kind := i, kind
		g.Go(func() error {
			payload, err := in.payload(kind, view.ModeFull)
			if err != nil {
				return fmt.Errorf("compute %s: %w", kind, err)
			}
			payloads[i] = payload
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		SessionID:  c.id,
		Generation: gen,
		Dataset:    DescribeDataset(in.store, in.registry),
		Params:     in.params,
		Mode:       in.mode,
		Source:     in.source,
		ActivePath: in.activePath,
		FilterIDs:  dataset.IDs(in.filter),
		Pins:       in.legend,
		Views:      make(map[view.Kind]interface{}, len(view.Kinds)),
	}
	if snap.ActivePath == nil {
		snap.ActivePath = []string{}
	}
	for i, kind := range view.Kinds {
		snap.Views[kind] = payloads[i]
	}
	return snap, nil
}

// Dataset describes the loaded dataset.
func (c *Coordinator) Dataset() DatasetInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DescribeDataset(c.store, c.registry)
}

// DescribeDataset summarizes store with the groupings of registry.
func DescribeDataset(store *dataset.Store, registry *grouping.Registry) DatasetInfo {
	return DatasetInfo{
		Source:     store.Source(),
		Hash:       store.Hash(),
		Records:    store.Len(),
		Fields:     store.Fields(),
		Dimensions: store.Dimensions(),
		LabelField: store.LabelField(),
		Groupings:  registry.Groupings(),
	}
}

// Params returns the live parameters.
func (c *Coordinator) Params() view.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.Clone()
}

// FilterRecords returns the current filter subset.
func (c *Coordinator) FilterRecords() []*dataset.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Filter()
}

// Store returns the loaded dataset.
func (c *Coordinator) Store() *dataset.Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store
}
