package extractor

import (
	"github.com/leapstack-labs/shardparse/pkg/tree"
)

// Helpers building trees in the layout the grammar front end produces.
// Offsets are byte offsets into the statement text given in each test.

func keyword(text string, at int) tree.Node {
	return tree.NewTerminalNode(tree.RuleName(text), text, at)
}

func number(rule tree.RuleName, text string, at int) tree.Node {
	return tree.NewRuleNode(rule, tree.NewRuleNode(tree.RuleNumberLiterals, tree.NewTerminalNode("NUMBER", text, at)))
}

func markerNode(at int) *tree.RuleNode {
	return tree.NewRuleNode(tree.RuleParameterMarker, tree.NewTerminalNode("QUESTION", "?", at))
}

func placeholder(rule tree.RuleName, m *tree.RuleNode) tree.Node {
	return tree.NewRuleNode(rule, m)
}

func statement(clauses ...tree.Node) tree.Node {
	children := append([]tree.Node{
		tree.NewRuleNode(tree.RuleSelectClause, keyword("SELECT", 0), tree.NewTerminalNode("STAR", "*", 7)),
		tree.NewRuleNode(tree.RuleFromClause, keyword("FROM", 9), tree.NewTerminalNode("IDENT", "t", 14)),
	}, clauses...)
	return tree.NewRuleNode(tree.RuleSelectStatement, children...)
}
