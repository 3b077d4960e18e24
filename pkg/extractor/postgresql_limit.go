package extractor

import (
	"strings"

	"github.com/leapstack-labs/shardparse/pkg/marker"
	"github.com/leapstack-labs/shardparse/pkg/segment"
	"github.com/leapstack-labs/shardparse/pkg/tree"
)

// PostgreSQLLimitExtractor extracts the independent LIMIT and OFFSET clauses
// of PostgreSQL. Either clause may be missing, and "LIMIT ALL" leaves the
// row count unbounded.
type PostgreSQLLimitExtractor struct{}

// Extract implements Extractor.
func (PostgreSQLLimitExtractor) Extract(ancestor tree.Node, markers marker.Indexes) (segment.Segment, bool, error) {
	limitNode, hasLimit := tree.FindFirstDescendant(ancestor, tree.RuleLimitClause)
	offsetNode, hasOffset := tree.FindFirstDescendant(ancestor, tree.RuleOffsetClause)
	if !hasLimit && !hasOffset {
		return nil, false, nil
	}

	var rowCount, offset segment.Value
	if hasLimit {
		v, err := clauseValue(markers, limitNode)
		if err != nil {
			return nil, false, err
		}
		rowCount = v
	}
	if hasOffset {
		v, err := clauseValue(markers, offsetNode)
		if err != nil {
			return nil, false, err
		}
		offset = v
	}

	switch {
	case rowCount != nil && offset != nil:
		return segment.NewLimitSegmentWithOffset(rowCount, offset), true, nil
	case rowCount != nil:
		return segment.NewLimitSegment(rowCount), true, nil
	case offset != nil:
		return segment.NewOffsetOnlyLimitSegment(offset), true, nil
	}
	// LIMIT ALL with no OFFSET does not restrict the result.
	return nil, false, nil
}

// clauseValue reads the value child of a LIMIT or OFFSET clause. A nil
// value with no error means LIMIT ALL.
func clauseValue(markers marker.Indexes, clause tree.Node) (segment.Value, error) {
	valueNode := clause.ChildAt(1)
	if valueNode == nil {
		return nil, &MalformedLiteralError{Text: clause.Text(), Span: clause.Span(), Err: errMissingValue}
	}
	if strings.EqualFold(valueNode.Text(), "ALL") {
		return nil, nil
	}
	return createLimitValue(markers, valueNode)
}
