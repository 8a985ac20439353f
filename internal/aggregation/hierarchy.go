// Package aggregation derives the per-view structures (hierarchy, histogram
// bins, box statistics, radar means and extents) from a slice of records.
// Every function is pure: inputs are never mutated and no result is cached.
package aggregation

import (
	"studyviz/domain/core"
	"studyviz/domain/dataset"
	"studyviz/domain/grouping"
)

// RootName is the name of the hierarchy root.
const RootName = "students"

// Node is one node of the two-level grouping hierarchy. Value is the record
// count; for inner nodes it equals the sum of the children's values.
type Node struct {
	Name      string            `json:"name"`
	Value     int               `json:"value"`
	Children  []*Node           `json:"children,omitempty"`
	RecordIDs []core.RecordID   `json:"record_ids,omitempty"`
	Records   []*dataset.Record `json:"-"`
}

// IsLeaf reports whether the node holds records directly.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Find walks a path of child names from n.
func (n *Node) Find(path []string) (*Node, error) {
	cur := n
	for _, name := range path {
		var next *Node
		for _, child := range cur.Children {
			if child.Name == name {
				next = child
				break
			}
		}
		if next == nil {
			return nil, core.NewUnknownNodeError(path)
		}
		cur = next
	}
	return cur, nil
}

// Collect returns every record under n: the concatenation of its leaves'
// records in hierarchy order.
func (n *Node) Collect() []*dataset.Record {
	if n.IsLeaf() {
		return append([]*dataset.Record(nil), n.Records...)
	}
	out := make([]*dataset.Record, 0, n.Value)
	for _, child := range n.Children {
		out = append(out, child.Collect()...)
	}
	return out
}

// Leaves returns the leaf nodes under n in order.
func (n *Node) Leaves() []*Node {
	if n.IsLeaf() {
		return []*Node{n}
	}
	var out []*Node
	for _, child := range n.Children {
		out = append(out, child.Leaves()...)
	}
	return out
}

// BuildHierarchy partitions records by the primary grouping, then each
// partition by the secondary grouping. Groups appear in the order their first
// record appears in the input.
func BuildHierarchy(records []*dataset.Record, registry *grouping.Registry, primary, secondary string) (*Node, error) {
	pg, err := registry.Lookup(primary)
	if err != nil {
		return nil, err
	}
	sg, err := registry.Lookup(secondary)
	if err != nil {
		return nil, err
	}

	root := &Node{Name: RootName}
	for _, part := range partition(records, pg) {
		inner := &Node{Name: part.label}
		for _, leafPart := range partition(part.records, sg) {
			leaf := &Node{
				Name:      leafPart.label,
				Value:     len(leafPart.records),
				Records:   leafPart.records,
				RecordIDs: dataset.IDs(leafPart.records),
			}
			inner.Children = append(inner.Children, leaf)
			inner.Value += leaf.Value
		}
		root.Children = append(root.Children, inner)
		root.Value += inner.Value
	}
	return root, nil
}

type group struct {
	label   string
	records []*dataset.Record
}

// partition groups records by label with first-appearance ordering.
func partition(records []*dataset.Record, g grouping.Grouping) []group {
	index := make(map[string]int)
	var groups []group
	for _, rec := range records {
		label := g.Label(rec)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, group{label: label})
		}
		groups[i].records = append(groups[i].records, rec)
	}
	return groups
}
