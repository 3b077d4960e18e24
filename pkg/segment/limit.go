package segment

import "github.com/leapstack-labs/shardparse/pkg/tree"

// LimitSegment is the typed form of a LIMIT clause: an optional offset and
// a row count.
type LimitSegment struct {
	rowCount Value
	offset   Value
}

// NewLimitSegment creates a segment for a single-value clause such as
// "LIMIT 10".
func NewLimitSegment(rowCount Value) *LimitSegment {
	return &LimitSegment{rowCount: rowCount}
}

// NewLimitSegmentWithOffset creates a segment for a two-value clause such as
// "LIMIT 5, 10".
func NewLimitSegmentWithOffset(rowCount, offset Value) *LimitSegment {
	return &LimitSegment{rowCount: rowCount, offset: offset}
}

// NewOffsetOnlyLimitSegment creates a segment that skips rows without
// bounding the row count ("OFFSET 5", "LIMIT ALL OFFSET 5").
func NewOffsetOnlyLimitSegment(offset Value) *LimitSegment {
	return &LimitSegment{offset: offset}
}

// Kind implements Segment.
func (s *LimitSegment) Kind() Kind { return KindLimit }

// RowCount returns the row-count value, if the clause bounds the row count.
func (s *LimitSegment) RowCount() (Value, bool) {
	return s.rowCount, s.rowCount != nil
}

// Offset returns the offset value, if the clause has one.
func (s *LimitSegment) Offset() (Value, bool) {
	return s.offset, s.offset != nil
}

// Span implements Segment. It covers both values.
func (s *LimitSegment) Span() tree.Span {
	switch {
	case s.rowCount == nil && s.offset == nil:
		return tree.Span{}
	case s.offset == nil:
		return s.rowCount.Span()
	case s.rowCount == nil:
		return s.offset.Span()
	}
	a, b := s.rowCount.Span(), s.offset.Span()
	return tree.Span{Start: min(a.Start, b.Start), Stop: max(a.Stop, b.Stop)}
}
