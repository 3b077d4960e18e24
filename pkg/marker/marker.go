// Package marker numbers the parameter markers of a statement.
//
// The numbering pass runs once per statement, before any extractor. It
// assigns each parameterMarker node its 0-based ordinal in source order
// across the whole statement, so an extractor working on one clause still
// sees statement-wide ordinals.
package marker

import (
	"cmp"
	"slices"

	"github.com/leapstack-labs/shardparse/pkg/tree"
)

// Indexes maps parameter-marker nodes, by identity, to their ordinal.
// The zero value is an empty, usable index. Indexes is read-only after
// construction and safe for concurrent use.
type Indexes struct {
	byNode map[tree.Node]int
	nodes  []tree.Node
}

// Build numbers every parameterMarker node under root by source position.
// Source order and tree order differ where the grammar reorders clause
// children, as it does for MySQL "LIMIT n OFFSET o".
func Build(root tree.Node) Indexes {
	idx := Indexes{byNode: make(map[tree.Node]int)}
	tree.Walk(root, func(n tree.Node) bool {
		if n.Rule() == tree.RuleParameterMarker {
			idx.nodes = append(idx.nodes, n)
		}
		return true
	})
	slices.SortStableFunc(idx.nodes, func(a, b tree.Node) int {
		return cmp.Compare(a.Span().Start, b.Span().Start)
	})
	for i, n := range idx.nodes {
		idx.byNode[n] = i
	}
	return idx
}

// NewIndexes wraps an ordinal map produced elsewhere. The map is copied.
func NewIndexes(ordinals map[tree.Node]int) Indexes {
	idx := Indexes{
		byNode: make(map[tree.Node]int, len(ordinals)),
		nodes:  make([]tree.Node, 0, len(ordinals)),
	}
	for n, i := range ordinals {
		idx.byNode[n] = i
		idx.nodes = append(idx.nodes, n)
	}
	slices.SortFunc(idx.nodes, func(a, b tree.Node) int {
		return cmp.Compare(idx.byNode[a], idx.byNode[b])
	})
	return idx
}

// Lookup returns the ordinal of a marker node.
func (x Indexes) Lookup(n tree.Node) (int, bool) {
	i, ok := x.byNode[n]
	return i, ok
}

// Len returns the number of markers in the statement.
func (x Indexes) Len() int {
	return len(x.byNode)
}

// Nodes returns the marker nodes ordered by ordinal.
func (x Indexes) Nodes() []tree.Node {
	out := make([]tree.Node, len(x.nodes))
	copy(out, x.nodes)
	return out
}
