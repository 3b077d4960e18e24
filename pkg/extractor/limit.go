package extractor

import (
	"github.com/leapstack-labs/shardparse/pkg/marker"
	"github.com/leapstack-labs/shardparse/pkg/segment"
	"github.com/leapstack-labs/shardparse/pkg/tree"
)

// placeholderSymbol is the text of a bound parameter marker.
const placeholderSymbol = "?"

// LimitExtractor extracts MySQL-style LIMIT clauses.
//
// The grammar lays the clause out as LIMIT value, or as
// LIMIT offset sep rowCount for both "LIMIT o, n" and "LIMIT n OFFSET o".
type LimitExtractor struct{}

// Extract implements Extractor.
func (LimitExtractor) Extract(ancestor tree.Node, markers marker.Indexes) (segment.Segment, bool, error) {
	limitNode, ok := tree.FindFirstDescendant(ancestor, tree.RuleLimitClause)
	if !ok {
		return nil, false, nil
	}
	if limitNode.ChildCount() < 2 {
		return nil, false, &MalformedLiteralError{Text: limitNode.Text(), Span: limitNode.Span(), Err: errMissingValue}
	}
	first, err := createLimitValue(markers, limitNode.ChildAt(1))
	if err != nil {
		return nil, false, err
	}
	if limitNode.ChildCount() >= 4 {
		rowCount, err := createLimitValue(markers, limitNode.ChildAt(3))
		if err != nil {
			return nil, false, err
		}
		return segment.NewLimitSegmentWithOffset(rowCount, first), true, nil
	}
	return segment.NewLimitSegment(first), true, nil
}

// createLimitValue interprets a limitOffset or limitRowCount node.
func createLimitValue(markers marker.Indexes, valueNode tree.Node) (segment.Value, error) {
	text := valueNode.Text()
	if text == placeholderSymbol {
		return createPlaceholderValue(markers, valueNode)
	}
	n, err := parseExactInt(text)
	if err != nil {
		return nil, &MalformedLiteralError{Text: text, Span: valueNode.Span(), Err: err}
	}
	return segment.NewLiteralValue(n, valueNode.Span()), nil
}

func createPlaceholderValue(markers marker.Indexes, valueNode tree.Node) (segment.Value, error) {
	markerNode := valueNode.ChildAt(0)
	if markerNode == nil {
		return nil, &InternalConsistencyError{Span: valueNode.Span(), Reason: "placeholder value has no marker node"}
	}
	index, ok := markers.Lookup(markerNode)
	if !ok {
		return nil, &InternalConsistencyError{Span: markerNode.Span(), Reason: "parameter marker missing from marker index"}
	}
	return segment.NewPlaceholderValue(index, markerNode.Span()), nil
}
