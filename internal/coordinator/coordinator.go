// Package coordinator owns the selection state of one dashboard session and
// propagates every interaction to the views that depend on it.
//
// A coordinator is a single writer: Dispatch, Load and Restore are
// serialized, and each one recomputes only the structures its topic
// invalidates before rendering them to subscribed views in a fixed order.
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"studyviz/domain/core"
	"studyviz/domain/dataset"
	"studyviz/domain/grouping"
	"studyviz/domain/view"
	"studyviz/internal"
	"studyviz/internal/aggregation"
	"studyviz/internal/selection"
	"studyviz/ports"

	"golang.org/x/sync/errgroup"
)

// Options configures a coordinator.
type Options struct {
	SessionID core.SessionID
	Defaults  view.Params
	Selection selection.Options
	Logger    *internal.Logger
}

type subscription struct {
	id     int
	kind   view.Kind
	view   ports.View
	topics map[view.Topic]bool
}

// Coordinator is the view coordinator of one session.
type Coordinator struct {
	mu sync.Mutex

	id       core.SessionID
	base     *grouping.Registry
	registry *grouping.Registry
	store    *dataset.Store
	sel      *selection.State
	params   view.Params
	defaults view.Params

	// boxBase is the subset the box plot is drawn from. It follows the
	// filter except when the filter was taken from a box plot group.
	boxBase []*dataset.Record
	// baseNode is the hierarchy node boxBase was drilled down to, nil for
	// the full dataset.
	baseNode *view.NodeRef

	gens    *Generations
	subs    []*subscription
	nextSub int
	log     *internal.Logger
}

// New creates a coordinator over store with the full dataset in scope.
func New(store *dataset.Store, registry *grouping.Registry, opts Options) (*Coordinator, error) {
	if opts.SessionID == "" {
		opts.SessionID = core.NewSessionID()
	}
	if opts.Defaults.BinCount == 0 && opts.Defaults.Primary == "" {
		opts.Defaults = DefaultParams()
	}
	if opts.Logger == nil {
		opts.Logger = internal.DefaultLogger
	}

	c := &Coordinator{
		id:       opts.SessionID,
		base:     registry,
		defaults: opts.Defaults.Clone(),
		gens:     NewGenerations(),
		log:      opts.Logger.WithComponent("Coordinator"),
	}
	c.sel = selection.New(store, opts.Selection)
	if err := c.load(store, opts.Defaults); err != nil {
		return nil, err
	}
	return c, nil
}

// ID returns the session identifier.
func (c *Coordinator) ID() core.SessionID { return c.id }

// Subscribe registers v for updates of kind on the given topics (all topics
// when none are given). The returned function removes the subscription.
func (c *Coordinator) Subscribe(kind view.Kind, v ports.View, topics ...view.Topic) (func(), error) {
	if !kind.Valid() {
		return nil, core.NewInvalidParameterError("view", fmt.Sprintf("unknown view kind %q", kind))
	}
	if len(topics) == 0 {
		topics = view.AllTopics
	}
	sub := &subscription{kind: kind, view: v, topics: make(map[view.Topic]bool, len(topics))}
	for _, t := range topics {
		sub.topics[t] = true
	}

	c.mu.Lock()
	c.nextSub++
	sub.id = c.nextSub
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == sub.id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}, nil
}

// Load replaces the dataset: selection is reset, parameters are re-resolved
// against the new fields and every view receives a full update.
func (c *Coordinator) Load(ctx context.Context, store *dataset.Store) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	want := c.params
	if err := c.load(store, want); err != nil {
		return nil, err
	}
	c.log.Info("Session %s loaded dataset %s (%d records, %d dimensions)",
		c.id, store.Source(), store.Len(), len(store.Dimensions()))
	return c.emit(ctx, view.TopicDataset, fullUpdates(view.Kinds...))
}

func (c *Coordinator) load(store *dataset.Store, want view.Params) error {
	registry := c.base.ForDataset(store)
	if ValidateParams(want, store, registry) != nil {
		want = c.defaults
	}
	params, err := ResolveParams(want, store, registry)
	if err != nil {
		return err
	}
	c.store = store
	c.registry = registry
	c.params = params
	c.sel.Reset(store)
	c.boxBase = store.Records()
	c.baseNode = nil
	return nil
}

// Dispatch applies one interaction and renders the affected views.
func (c *Coordinator) Dispatch(ctx context.Context, ev Event) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Debug("Session %s event %s", c.id, ev.Type)

	switch ev.Type {
	case NodeActivated:
		return c.activateNode(ctx, ev.Path)
	case GroupActivated:
		return c.activateGroup(ctx, ev.Label)
	case PointActivated:
		return c.togglePin(ctx, ev.RecordID)
	case ClearRequested:
		return c.clear(ctx)
	case PinRemoved:
		return c.removePin(ctx, ev.RecordID)
	case ParamsChanged:
		if ev.Params == nil {
			return nil, core.NewInvalidParameterError("params", "missing")
		}
		return c.changeParams(ctx, *ev.Params)
	default:
		return nil, core.NewInvalidParameterError("event", fmt.Sprintf("unknown event type %q", ev.Type))
	}
}

func (c *Coordinator) activateNode(ctx context.Context, path []string) (*Result, error) {
	ref := &view.NodeRef{Primary: c.params.Primary, Secondary: c.params.Secondary, Path: append([]string(nil), path...)}
	records, err := c.resolveNode(ref)
	if err != nil {
		return nil, err
	}

	c.sel.Select(selection.SourceHierarchy, path, records)
	c.boxBase = c.sel.Filter()
	c.baseNode = ref
	return c.emit(ctx, view.TopicFilter, []pending{
		{kind: view.Hierarchy, mode: view.ModeHighlight},
		{kind: view.Histogram, mode: view.ModeFull},
		{kind: view.BoxPlot, mode: view.ModeFull},
		{kind: view.RadarMeans, mode: view.ModeFull},
	})
}

func (c *Coordinator) activateGroup(ctx context.Context, label string) (*Result, error) {
	plot, err := aggregation.ComputeGroupStatistics(c.boxBase, c.registry, c.params.BoxGroup, c.params.BoxMeasure)
	if err != nil {
		return nil, err
	}
	box, ok := plot.Group(label)
	if !ok {
		return nil, core.NewUnknownGroupError(label)
	}
	records, err := aggregation.GroupRecords(c.boxBase, c.registry, c.params.BoxGroup, label)
	if err != nil {
		return nil, err
	}

	c.sel.Select(selection.SourceBoxPlot, []string{label}, records)
	res, err := c.emit(ctx, view.TopicFilter, []pending{
		{kind: view.Hierarchy, mode: view.ModeHighlight},
		{kind: view.Histogram, mode: view.ModeFull},
		{kind: view.BoxPlot, mode: view.ModeHighlight},
		{kind: view.RadarMeans, mode: view.ModeFull},
	})
	if err != nil {
		return nil, err
	}
	res.Focus = &Focus{Group: label, Median: box.Median, Count: len(records)}
	return res, nil
}

func (c *Coordinator) clear(ctx context.Context) (*Result, error) {
	c.sel.Clear()
	c.boxBase = c.sel.Filter()
	c.baseNode = nil
	return c.emit(ctx, view.TopicFilter, []pending{
		{kind: view.Hierarchy, mode: view.ModeHighlight},
		{kind: view.Histogram, mode: view.ModeFull},
		{kind: view.BoxPlot, mode: view.ModeFull},
		{kind: view.RadarMeans, mode: view.ModeFull},
	})
}

func (c *Coordinator) togglePin(ctx context.Context, id core.RecordID) (*Result, error) {
	rec, ok := c.store.Get(id)
	if !ok {
		return nil, core.NewUnknownRecordError(id)
	}

	outcome := c.sel.TogglePin(rec)
	if outcome == selection.PinCapacityReached {
		c.log.Debug("Session %s pin capacity reached, ignoring %s", c.id, id)
		res := c.unchanged()
		res.PinOutcome = outcome
		res.Notice = fmt.Sprintf("at most %d records can be pinned", c.sel.MaxPins())
		return res, nil
	}

	res, err := c.emit(ctx, view.TopicPins, fullUpdates(view.Scatter, view.PinRadar))
	if err != nil {
		return nil, err
	}
	res.PinOutcome = outcome
	return res, nil
}

func (c *Coordinator) removePin(ctx context.Context, id core.RecordID) (*Result, error) {
	if _, ok := c.store.Get(id); !ok {
		return nil, core.NewUnknownRecordError(id)
	}
	if !c.sel.Unpin(id) {
		return c.unchanged(), nil
	}
	res, err := c.emit(ctx, view.TopicPins, fullUpdates(view.Scatter, view.PinRadar))
	if err != nil {
		return nil, err
	}
	res.PinOutcome = selection.Unpinned
	return res, nil
}

func (c *Coordinator) changeParams(ctx context.Context, patch view.ParamsPatch) (*Result, error) {
	next, kinds := patch.Apply(c.params)
	if err := ValidateParams(next, c.store, c.registry); err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		return c.unchanged(), nil
	}

	prev := c.params
	c.params = next

	// A regrouped view cannot highlight a path of the old grouping; the
	// filter itself is kept.
	if (next.Primary != prev.Primary || next.Secondary != prev.Secondary) && c.sel.Source() == selection.SourceHierarchy {
		c.sel.Select(selection.SourceHierarchy, nil, c.sel.Filter())
	}
	if (next.BoxGroup != prev.BoxGroup) && c.sel.Source() == selection.SourceBoxPlot {
		c.sel.Select(selection.SourceBoxPlot, nil, c.sel.Filter())
	}

	c.log.Debug("Session %s params changed, recomputing %v", c.id, kinds)
	return c.emit(ctx, view.TopicParams, fullUpdates(kinds...))
}

// Restore applies a saved state: parameters, then the drill-down filter, then
// the pins of records that still exist. It emits one full update of every view.
func (c *Coordinator) Restore(ctx context.Context, state RestoreState) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	params, err := ResolveParams(state.Params, c.store, c.registry)
	if err != nil {
		return nil, err
	}
	c.params = params
	c.sel.Reset(c.store)
	c.boxBase = c.store.Records()
	c.baseNode = nil

	base := state.Base
	if base == nil && state.Source == selection.SourceHierarchy && len(state.ActivePath) > 0 {
		// States saved without a base carry only the active path.
		base = &view.NodeRef{Primary: params.Primary, Secondary: params.Secondary, Path: state.ActivePath}
	}
	if records, err := c.resolveNode(base); err == nil {
		c.boxBase = records
		c.baseNode = base.Clone()
	}

	skipped := 0
	switch state.Source {
	case selection.SourceHierarchy:
		if c.baseNode != nil {
			c.sel.Select(selection.SourceHierarchy, state.ActivePath, c.boxBase)
		}
	case selection.SourceBoxPlot:
		if len(state.ActivePath) == 1 {
			if records, err := aggregation.GroupRecords(c.boxBase, c.registry, params.BoxGroup, state.ActivePath[0]); err == nil && len(records) > 0 {
				c.sel.Select(selection.SourceBoxPlot, state.ActivePath, records)
			}
		}
	}
	for _, id := range state.PinnedIDs {
		rec, ok := c.store.Get(id)
		if !ok || c.sel.TogglePin(rec) != selection.Pinned {
			skipped++
		}
	}

	res, err := c.emit(ctx, view.TopicDataset, fullUpdates(view.Kinds...))
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		res.Notice = fmt.Sprintf("%d saved pins could not be restored", skipped)
	}
	return res, nil
}

// RestoreState is the restorable part of a session.
type RestoreState struct {
	Params     view.Params
	Source     selection.Source
	ActivePath []string
	// Base is the drill-down the box plot was drawn from.
	Base      *view.NodeRef
	PinnedIDs []core.RecordID
}

// resolveNode collects the records under ref in the full dataset.
func (c *Coordinator) resolveNode(ref *view.NodeRef) ([]*dataset.Record, error) {
	if ref == nil || len(ref.Path) == 0 {
		return nil, core.NewUnknownNodeError(nil)
	}
	root, err := aggregation.BuildHierarchy(c.store.Records(), c.registry, ref.Primary, ref.Secondary)
	if err != nil {
		return nil, err
	}
	node, err := root.Find(ref.Path)
	if err != nil {
		return nil, err
	}
	return node.Collect(), nil
}

// State captures the restorable part of the session.
func (c *Coordinator) State() RestoreState {
	c.mu.Lock()
	defer c.mu.Unlock()

	pins := c.sel.Pins()
	ids := make([]core.RecordID, len(pins))
	for i, p := range pins {
		ids[i] = p.Record.ID
	}
	return RestoreState{
		Params:     c.params.Clone(),
		Source:     c.sel.Source(),
		ActivePath: c.sel.ActivePath(),
		Base:       c.baseNode.Clone(),
		PinnedIDs:  ids,
	}
}

type pending struct {
	kind view.Kind
	mode view.Mode
}

func fullUpdates(kinds ...view.Kind) []pending {
	out := make([]pending, len(kinds))
	for i, k := range kinds {
		out[i] = pending{kind: k, mode: view.ModeFull}
	}
	return out
}

// emit computes the pending payloads concurrently, stamps them with a new
// generation and renders them in order. Callers hold c.mu.
func (c *Coordinator) emit(ctx context.Context, topic view.Topic, todo []pending) (*Result, error) {
	payloads := make([]interface{}, len(todo))
	in := c.inputs()

	g, _ := errgroup.WithContext(ctx)
	for i, p := range todo {
		i, p := i, p
		g.Go(func() error {
			payload, err := in.payload(p.kind, p.mode)
			if err != nil {
				return fmt.Errorf("compute %s: %w", p.kind, err)
			}
			payloads[i] = payload
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gen := c.gens.Next()
	res := &Result{
		Generation: gen,
		Topic:      topic,
		Mode:       c.sel.Mode(),
		FilterSize: len(in.filter),
		Updates:    make([]ports.Update, 0, len(todo)),
	}
	for i, p := range todo {
		res.Updates = append(res.Updates, ports.Update{
			SessionID:  c.id,
			View:       p.kind,
			Topic:      topic,
			Mode:       p.mode,
			Generation: gen,
			Payload:    payloads[i],
		})
	}
	c.render(ctx, res.Updates)
	return res, nil
}

func (c *Coordinator) unchanged() *Result {
	return &Result{
		Generation: c.gens.Current(),
		Mode:       c.sel.Mode(),
		FilterSize: len(c.sel.FilterIDs()),
		Updates:    []ports.Update{},
	}
}

func (c *Coordinator) render(ctx context.Context, updates []ports.Update) {
	for _, u := range updates {
		for _, sub := range c.subs {
			if sub.kind != u.View || !sub.topics[u.Topic] {
				continue
			}
			if err := sub.view.Render(ctx, u); err != nil {
				c.log.Warn("Session %s view %s failed to render generation %d: %v", c.id, u.View, u.Generation, err)
			}
		}
	}
}
