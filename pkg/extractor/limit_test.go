package extractor

import (
	"errors"
	"sync"
	"testing"

	"github.com/leapstack-labs/shardparse/pkg/marker"
	"github.com/leapstack-labs/shardparse/pkg/segment"
	"github.com/leapstack-labs/shardparse/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// "SELECT * FROM t" occupies offsets 0-14; LIMIT starts at 16.

func extractLimit(t *testing.T, root tree.Node, markers marker.Indexes) *segment.LimitSegment {
	t.Helper()
	seg, ok, err := LimitExtractor{}.Extract(root, markers)
	require.NoError(t, err)
	require.True(t, ok)
	limit, isLimit := seg.(*segment.LimitSegment)
	require.True(t, isLimit, "expected *segment.LimitSegment, got %T", seg)
	return limit
}

func TestLimitExtractorAbsent(t *testing.T) {
	root := statement(
		tree.NewRuleNode(tree.RuleWhereClause, keyword("WHERE", 16), tree.NewTerminalNode("IDENT", "a", 22)),
	)

	seg, ok, err := LimitExtractor{}.Extract(root, marker.Build(root))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, seg)
}

func TestLimitExtractorSingleLiteral(t *testing.T) {
	// SELECT * FROM t LIMIT 10
	root := statement(tree.NewRuleNode(tree.RuleLimitClause,
		keyword("LIMIT", 16),
		number(tree.RuleLimitRowCount, "10", 22),
	))

	limit := extractLimit(t, root, marker.Build(root))

	rowCount, ok := limit.RowCount()
	require.True(t, ok)
	assert.Equal(t, segment.NewLiteralValue(10, tree.Span{Start: 22, Stop: 23}), rowCount)
	_, ok = limit.Offset()
	assert.False(t, ok)
}

func TestLimitExtractorOffsetAndRowCountLiterals(t *testing.T) {
	// SELECT * FROM t LIMIT 5, 10
	root := statement(tree.NewRuleNode(tree.RuleLimitClause,
		keyword("LIMIT", 16),
		number(tree.RuleLimitOffset, "5", 22),
		tree.NewTerminalNode("COMMA", ",", 23),
		number(tree.RuleLimitRowCount, "10", 25),
	))

	limit := extractLimit(t, root, marker.Build(root))

	offset, ok := limit.Offset()
	require.True(t, ok)
	assert.Equal(t, segment.NewLiteralValue(5, tree.Span{Start: 22, Stop: 22}), offset)
	rowCount, ok := limit.RowCount()
	require.True(t, ok)
	assert.Equal(t, segment.NewLiteralValue(10, tree.Span{Start: 25, Stop: 26}), rowCount)
}

func TestLimitExtractorPlaceholderUsesStatementOrdinal(t *testing.T) {
	// SELECT * FROM t WHERE a = ? AND b = ? LIMIT ?
	m0, m1, m2 := markerNode(26), markerNode(36), markerNode(44)
	root := statement(
		tree.NewRuleNode(tree.RuleWhereClause,
			keyword("WHERE", 16),
			tree.NewTerminalNode("IDENT", "a", 22),
			tree.NewTerminalNode("EQ", "=", 24),
			m0,
			keyword("AND", 28),
			tree.NewTerminalNode("IDENT", "b", 32),
			tree.NewTerminalNode("EQ", "=", 34),
			m1,
		),
		tree.NewRuleNode(tree.RuleLimitClause, keyword("LIMIT", 38), placeholder(tree.RuleLimitRowCount, m2)),
	)

	limit := extractLimit(t, root, marker.Build(root))

	rowCount, ok := limit.RowCount()
	require.True(t, ok)
	assert.Equal(t, segment.NewPlaceholderValue(2, tree.Span{Start: 44, Stop: 44}), rowCount)
	_, ok = limit.Offset()
	assert.False(t, ok)
}

func TestLimitExtractorTwoPlaceholders(t *testing.T) {
	// SELECT * FROM t LIMIT ?, ?
	m0, m1 := markerNode(22), markerNode(25)
	root := statement(tree.NewRuleNode(tree.RuleLimitClause,
		keyword("LIMIT", 16),
		placeholder(tree.RuleLimitOffset, m0),
		tree.NewTerminalNode("COMMA", ",", 23),
		placeholder(tree.RuleLimitRowCount, m1),
	))

	limit := extractLimit(t, root, marker.Build(root))

	offset, _ := limit.Offset()
	rowCount, _ := limit.RowCount()
	assert.Equal(t, segment.NewPlaceholderValue(0, tree.Span{Start: 22, Stop: 22}), offset)
	assert.Equal(t, segment.NewPlaceholderValue(1, tree.Span{Start: 25, Stop: 25}), rowCount)
}

func TestLimitExtractorMixedValues(t *testing.T) {
	// SELECT * FROM t LIMIT 5, ?
	m := markerNode(25)
	root := statement(tree.NewRuleNode(tree.RuleLimitClause,
		keyword("LIMIT", 16),
		number(tree.RuleLimitOffset, "5", 22),
		tree.NewTerminalNode("COMMA", ",", 23),
		placeholder(tree.RuleLimitRowCount, m),
	))

	limit := extractLimit(t, root, marker.Build(root))

	offset, _ := limit.Offset()
	rowCount, _ := limit.RowCount()
	assert.IsType(t, segment.LiteralValue{}, offset)
	assert.Equal(t, segment.NewPlaceholderValue(0, tree.Span{Start: 25, Stop: 25}), rowCount)
}

func TestLimitExtractorIsIdempotent(t *testing.T) {
	m0, m1 := markerNode(22), markerNode(25)
	root := statement(tree.NewRuleNode(tree.RuleLimitClause,
		keyword("LIMIT", 16),
		placeholder(tree.RuleLimitOffset, m0),
		tree.NewTerminalNode("COMMA", ",", 23),
		placeholder(tree.RuleLimitRowCount, m1),
	))
	markers := marker.Build(root)

	first, ok1, err1 := LimitExtractor{}.Extract(root, markers)
	second, ok2, err2 := LimitExtractor{}.Extract(root, markers)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second, "each call builds a new segment")
}

func TestLimitExtractorConcurrentUse(t *testing.T) {
	root := statement(tree.NewRuleNode(tree.RuleLimitClause,
		keyword("LIMIT", 16),
		placeholder(tree.RuleLimitRowCount, markerNode(22)),
	))
	markers := marker.Build(root)
	want := segment.NewLimitSegment(segment.NewPlaceholderValue(0, tree.Span{Start: 22, Stop: 22}))

	var wg sync.WaitGroup
	results := make([]segment.Segment, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seg, _, err := LimitExtractor{}.Extract(root, markers)
			if err == nil {
				results[i] = seg
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestLimitExtractorMalformedLiteral(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "letters", text: "abc"},
		{name: "negative", text: "-1"},
		{name: "signed", text: "+5"},
		{name: "fraction", text: "1.5"},
		{name: "exponent", text: "1e3"},
		{name: "overflow", text: "99999999999999999999"},
		{name: "separator", text: "1_000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := statement(tree.NewRuleNode(tree.RuleLimitClause,
				keyword("LIMIT", 16),
				tree.NewRuleNode(tree.RuleLimitRowCount, tree.NewTerminalNode("IDENT", tt.text, 22)),
			))

			seg, ok, err := LimitExtractor{}.Extract(root, marker.Build(root))
			require.Error(t, err)
			assert.False(t, ok)
			assert.Nil(t, seg)

			assert.ErrorIs(t, err, ErrMalformedLiteral)
			assert.NotErrorIs(t, err, ErrInternalConsistency)
			var malformed *MalformedLiteralError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.text, malformed.Text)
			assert.Equal(t, tree.Span{Start: 22, Stop: 22 + len(tt.text) - 1}, malformed.Span)
		})
	}
}

func TestLimitExtractorMalformedOffsetAbortsClause(t *testing.T) {
	root := statement(tree.NewRuleNode(tree.RuleLimitClause,
		keyword("LIMIT", 16),
		tree.NewRuleNode(tree.RuleLimitOffset, tree.NewTerminalNode("IDENT", "abc", 22)),
		tree.NewTerminalNode("COMMA", ",", 25),
		number(tree.RuleLimitRowCount, "10", 27),
	))

	_, ok, err := LimitExtractor{}.Extract(root, marker.Build(root))
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMalformedLiteral)
}

func TestLimitExtractorUnregisteredPlaceholder(t *testing.T) {
	m := markerNode(22)
	root := statement(tree.NewRuleNode(tree.RuleLimitClause,
		keyword("LIMIT", 16),
		placeholder(tree.RuleLimitRowCount, m),
	))

	// Index built over a different tree: the marker has no entry.
	seg, ok, err := LimitExtractor{}.Extract(root, marker.Indexes{})
	require.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, seg)

	assert.ErrorIs(t, err, ErrInternalConsistency)
	assert.NotErrorIs(t, err, ErrMalformedLiteral)
	var inconsistent *InternalConsistencyError
	require.True(t, errors.As(err, &inconsistent))
	assert.Equal(t, tree.Span{Start: 22, Stop: 22}, inconsistent.Span)
}

func TestLimitExtractorPlaceholderWithoutMarkerChild(t *testing.T) {
	root := statement(tree.NewRuleNode(tree.RuleLimitClause,
		keyword("LIMIT", 16),
		tree.NewTerminalNode("QUESTION", "?", 22),
	))

	_, _, err := LimitExtractor{}.Extract(root, marker.Build(root))
	assert.ErrorIs(t, err, ErrInternalConsistency)
}

func TestLimitExtractorTruncatedClause(t *testing.T) {
	root := statement(tree.NewRuleNode(tree.RuleLimitClause, keyword("LIMIT", 16)))

	_, ok, err := LimitExtractor{}.Extract(root, marker.Build(root))
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMalformedLiteral)
}

func TestLimitExtractorSearchesFromAncestor(t *testing.T) {
	limitClause := tree.NewRuleNode(tree.RuleLimitClause,
		keyword("LIMIT", 16),
		number(tree.RuleLimitRowCount, "3", 22),
	)
	root := statement(limitClause)

	// Searching under the clause itself also finds it.
	seg, ok, err := LimitExtractor{}.Extract(limitClause, marker.Build(root))
	require.NoError(t, err)
	require.True(t, ok)
	rowCount, _ := seg.(*segment.LimitSegment).RowCount()
	assert.Equal(t, int64(3), rowCount.(segment.LiteralValue).Value())
}
