// Package tree provides a read-only view over grammar-produced parse trees.
//
// Extractors never see the grammar front end directly. They navigate a tree
// through the Node interface: child access, rule kind, raw text and source
// span. Concrete nodes are pointers, so two Node values compare equal only
// when they are the same node, which lets a Node serve as a map key.
package tree

// RuleName identifies a grammar rule (for interior nodes) or a token kind
// (for terminal nodes).
type RuleName string

// Grammar rules shared by all dialect front ends.
const (
	RuleSelectStatement   RuleName = "selectStatement"
	RuleSelectClause      RuleName = "selectClause"
	RuleFromClause        RuleName = "fromClause"
	RuleWhereClause       RuleName = "whereClause"
	RuleGroupByClause     RuleName = "groupByClause"
	RuleHavingClause      RuleName = "havingClause"
	RuleOrderByClause     RuleName = "orderByClause"
	RuleLimitClause       RuleName = "limitClause"
	RuleOffsetClause      RuleName = "offsetClause"
	RuleLimitOffset       RuleName = "limitOffset"
	RuleLimitRowCount     RuleName = "limitRowCount"
	RuleParameterMarker   RuleName = "parameterMarker"
	RuleNumberLiterals    RuleName = "numberLiterals"
	RuleParenthesizedExpr RuleName = "parenthesizedExpr"
)

// Node is a read-only parse-tree node.
type Node interface {
	// Rule returns the grammar rule of an interior node or the token kind
	// of a terminal.
	Rule() RuleName

	// ChildAt returns the i-th child, or nil when i is out of range.
	ChildAt(i int) Node

	// ChildCount returns the number of direct children.
	ChildCount() int

	// Text returns the concatenated text of every terminal under this node,
	// without whitespace.
	Text() string

	// Span returns the inclusive byte offsets this node covers.
	Span() Span
}

// Span is an inclusive [Start, Stop] range of byte offsets into the
// original statement text, so sql[Start:Stop+1] is the covered text even
// when the statement holds multi-byte characters.
type Span struct {
	Start int `json:"start" yaml:"start"`
	Stop  int `json:"stop" yaml:"stop"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.Stop - s.Start + 1
}

// Slice returns the substring of sql covered by the span, or "" when the
// span falls outside sql.
func (s Span) Slice(sql string) string {
	if s.Start < 0 || s.Stop < s.Start || s.Stop >= len(sql) {
		return ""
	}
	return sql[s.Start : s.Stop+1]
}

// FindFirstDescendant performs a pre-order search starting at ancestor
// (inclusive) and returns the first node whose rule matches.
func FindFirstDescendant(ancestor Node, rule RuleName) (Node, bool) {
	if ancestor == nil {
		return nil, false
	}
	if ancestor.Rule() == rule {
		return ancestor, true
	}
	for i := 0; i < ancestor.ChildCount(); i++ {
		if found, ok := FindFirstDescendant(ancestor.ChildAt(i), rule); ok {
			return found, true
		}
	}
	return nil, false
}

// FindAllDescendants returns every node matching rule in pre-order.
func FindAllDescendants(ancestor Node, rule RuleName) []Node {
	var found []Node
	Walk(ancestor, func(n Node) bool {
		if n.Rule() == rule {
			found = append(found, n)
		}
		return true
	})
	return found
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the node just visited.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for i := 0; i < n.ChildCount(); i++ {
		Walk(n.ChildAt(i), fn)
	}
}
