package tree

import "strings"

// RuleNode is an interior node produced for a grammar rule.
type RuleNode struct {
	rule     RuleName
	children []Node
}

// NewRuleNode creates an interior node. Children are owned by the node
// from this point on.
func NewRuleNode(rule RuleName, children ...Node) *RuleNode {
	return &RuleNode{rule: rule, children: children}
}

// Rule implements Node.
func (n *RuleNode) Rule() RuleName { return n.rule }

// ChildAt implements Node.
func (n *RuleNode) ChildAt(i int) Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// ChildCount implements Node.
func (n *RuleNode) ChildCount() int { return len(n.children) }

// Text implements Node.
func (n *RuleNode) Text() string {
	var sb strings.Builder
	for _, c := range n.children {
		sb.WriteString(c.Text())
	}
	return sb.String()
}

// Span implements Node. An interior node covers the smallest range holding
// every child span; a childless node has the zero span.
func (n *RuleNode) Span() Span {
	if len(n.children) == 0 {
		return Span{}
	}
	span := n.children[0].Span()
	for _, c := range n.children[1:] {
		cs := c.Span()
		if cs.Start < span.Start {
			span.Start = cs.Start
		}
		if cs.Stop > span.Stop {
			span.Stop = cs.Stop
		}
	}
	return span
}

// TerminalNode is a leaf node holding one token.
type TerminalNode struct {
	kind  RuleName
	text  string
	start int
}

// NewTerminalNode creates a leaf for a token of the given kind whose first
// byte sits at offset start.
func NewTerminalNode(kind RuleName, text string, start int) *TerminalNode {
	return &TerminalNode{kind: kind, text: text, start: start}
}

// Rule implements Node.
func (n *TerminalNode) Rule() RuleName { return n.kind }

// ChildAt implements Node. Terminals have no children.
func (n *TerminalNode) ChildAt(int) Node { return nil }

// ChildCount implements Node.
func (n *TerminalNode) ChildCount() int { return 0 }

// Text implements Node.
func (n *TerminalNode) Text() string { return n.text }

// Span implements Node.
func (n *TerminalNode) Span() Span {
	return Span{Start: n.start, Stop: n.start + len(n.text) - 1}
}
