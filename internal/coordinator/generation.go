package coordinator

import (
	"sync/atomic"
)

// Generations issues the monotonically increasing numbers stamped on view
// updates. A consumer that has delivered generation g for a view can drop
// any later-arriving update with a smaller number.
type Generations struct {
	current int64
}

// NewGenerations creates a counter whose first issued value is 1.
func NewGenerations() *Generations {
	return &Generations{}
}

// Next returns a new generation atomically.
func (g *Generations) Next() int64 {
	return atomic.AddInt64(&g.current, 1)
}

// Current returns the last issued generation without incrementing.
func (g *Generations) Current() int64 {
	return atomic.LoadInt64(&g.current)
}
