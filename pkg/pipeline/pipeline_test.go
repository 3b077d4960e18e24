package pipeline

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/leapstack-labs/shardparse/internal/observability"
	"github.com/leapstack-labs/shardparse/internal/testutil"
	"github.com/leapstack-labs/shardparse/pkg/dialect"
	"github.com/leapstack-labs/shardparse/pkg/extractor"
	"github.com/leapstack-labs/shardparse/pkg/grammar"
	"github.com/leapstack-labs/shardparse/pkg/rule"
	"github.com/leapstack-labs/shardparse/pkg/segment"
	"github.com/leapstack-labs/shardparse/pkg/tree"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeline(t *testing.T, db dialect.DatabaseType, opts ...Option) *Pipeline {
	t.Helper()
	return New(append([]Option{WithLogger(testutil.NewTestLogger(t)), WithDatabaseType(db)}, opts...)...)
}

func literal(t *testing.T, v segment.Value, want int64, span tree.Span) {
	t.Helper()
	lit, ok := v.(segment.LiteralValue)
	require.True(t, ok, "want literal, got %v", v)
	assert.Equal(t, want, lit.Value())
	assert.Equal(t, span, lit.Span())
}

func placeholder(t *testing.T, v segment.Value, want int, span tree.Span) {
	t.Helper()
	p, ok := v.(segment.PlaceholderValue)
	require.True(t, ok, "want placeholder, got %v", v)
	assert.Equal(t, want, p.Index())
	assert.Equal(t, span, p.Span())
}

func TestParse_NoLimit(t *testing.T) {
	stmt, err := newPipeline(t, dialect.MySQL).Parse(t.Context(), "SELECT * FROM t WHERE a = ?")
	require.NoError(t, err)

	assert.Nil(t, stmt.Limit)
	assert.Empty(t, stmt.Segments)
	assert.Equal(t, 1, stmt.ParametersCount)
	assert.Equal(t, dialect.MySQL, stmt.DatabaseType)
}

func TestParse_MySQLLimit(t *testing.T) {
	p := newPipeline(t, dialect.MySQL)

	t.Run("row count literal", func(t *testing.T) {
		stmt, err := p.Parse(t.Context(), "SELECT * FROM t LIMIT 10")
		require.NoError(t, err)
		require.NotNil(t, stmt.Limit)

		rowCount, ok := stmt.Limit.RowCount()
		require.True(t, ok)
		literal(t, rowCount, 10, tree.Span{Start: 22, Stop: 23})
		_, ok = stmt.Limit.Offset()
		assert.False(t, ok)
		assert.Equal(t, []segment.Segment{stmt.Limit}, stmt.Segments)
	})

	t.Run("spans count bytes past multi-byte text", func(t *testing.T) {
		sql := "SELECT 'é' FROM t LIMIT 10"
		stmt, err := p.Parse(t.Context(), sql)
		require.NoError(t, err)
		require.NotNil(t, stmt.Limit)

		rowCount, ok := stmt.Limit.RowCount()
		require.True(t, ok)
		literal(t, rowCount, 10, tree.Span{Start: 25, Stop: 26})
		assert.Equal(t, "10", rowCount.Span().Slice(sql))
	})

	t.Run("offset comma row count", func(t *testing.T) {
		stmt, err := p.Parse(t.Context(), "SELECT * FROM t LIMIT 5, 10")
		require.NoError(t, err)

		offset, ok := stmt.Limit.Offset()
		require.True(t, ok)
		literal(t, offset, 5, tree.Span{Start: 22, Stop: 22})
		rowCount, _ := stmt.Limit.RowCount()
		literal(t, rowCount, 10, tree.Span{Start: 25, Stop: 26})
	})

	t.Run("row count is the third marker", func(t *testing.T) {
		stmt, err := p.Parse(t.Context(), "SELECT * FROM t WHERE a = ? AND b = ? LIMIT ?")
		require.NoError(t, err)
		assert.Equal(t, 3, stmt.ParametersCount)

		rowCount, _ := stmt.Limit.RowCount()
		placeholder(t, rowCount, 2, tree.Span{Start: 44, Stop: 44})
	})

	t.Run("offset and row count markers", func(t *testing.T) {
		stmt, err := p.Parse(t.Context(), "SELECT * FROM t LIMIT ?, ?")
		require.NoError(t, err)

		offset, _ := stmt.Limit.Offset()
		placeholder(t, offset, 0, tree.Span{Start: 22, Stop: 22})
		rowCount, _ := stmt.Limit.RowCount()
		placeholder(t, rowCount, 1, tree.Span{Start: 25, Stop: 25})
	})

	t.Run("OFFSET keyword keeps source order of markers", func(t *testing.T) {
		stmt, err := p.Parse(t.Context(), "SELECT * FROM t LIMIT ? OFFSET ?")
		require.NoError(t, err)

		rowCount, _ := stmt.Limit.RowCount()
		placeholder(t, rowCount, 0, tree.Span{Start: 22, Stop: 22})
		offset, _ := stmt.Limit.Offset()
		placeholder(t, offset, 1, tree.Span{Start: 31, Stop: 31})
	})

	t.Run("subquery limit is ignored", func(t *testing.T) {
		stmt, err := p.Parse(t.Context(), "SELECT * FROM (SELECT * FROM u LIMIT ?) x LIMIT ?")
		require.NoError(t, err)

		rowCount, _ := stmt.Limit.RowCount()
		placeholder(t, rowCount, 1, tree.Span{Start: 48, Stop: 48})
	})
}

func TestParse_Idempotent(t *testing.T) {
	p := newPipeline(t, dialect.MySQL)
	sql := "SELECT * FROM t WHERE id = ? LIMIT 5, ?"

	first, err := p.Parse(t.Context(), sql)
	require.NoError(t, err)
	second, err := p.Parse(t.Context(), sql)
	require.NoError(t, err)

	assert.Equal(t, first.Limit, second.Limit)
}

func TestParse_MalformedLiterals(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		wantText string
		wantSpan tree.Span
	}{
		{"fraction", "SELECT * FROM t LIMIT 1.5", "1.5", tree.Span{Start: 22, Stop: 24}},
		{"exponent", "SELECT * FROM t LIMIT 1e3", "1e3", tree.Span{Start: 22, Stop: 24}},
		{"overflow", "SELECT * FROM t LIMIT 99999999999999999999", "99999999999999999999", tree.Span{Start: 22, Stop: 41}},
	}

	p := newPipeline(t, dialect.MySQL)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := p.Parse(t.Context(), tt.sql)
			require.Error(t, err)
			assert.Nil(t, stmt)
			assert.ErrorIs(t, err, extractor.ErrMalformedLiteral)

			var malformed *extractor.MalformedLiteralError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.wantText, malformed.Text)
			assert.Equal(t, tt.wantSpan, malformed.Span)
			assert.Contains(t, err.Error(), `extractor "limit"`)
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := newPipeline(t, dialect.MySQL).Parse(t.Context(), "SELECT * FROM t LIMIT abc")
	require.Error(t, err)

	var syntaxErr *grammar.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, "1:23", syntaxErr.Pos.String())
}

func TestParse_PostgreSQL(t *testing.T) {
	p := newPipeline(t, dialect.PostgreSQL)

	t.Run("limit all is unbounded", func(t *testing.T) {
		stmt, err := p.Parse(t.Context(), "SELECT * FROM t LIMIT ALL")
		require.NoError(t, err)
		assert.Nil(t, stmt.Limit)
	})

	t.Run("offset only", func(t *testing.T) {
		stmt, err := p.Parse(t.Context(), "SELECT * FROM t OFFSET ?")
		require.NoError(t, err)
		require.NotNil(t, stmt.Limit)

		_, ok := stmt.Limit.RowCount()
		assert.False(t, ok)
		offset, ok := stmt.Limit.Offset()
		require.True(t, ok)
		placeholder(t, offset, 0, tree.Span{Start: 23, Stop: 23})
	})

	t.Run("offset before limit", func(t *testing.T) {
		stmt, err := p.Parse(t.Context(), "SELECT * FROM t OFFSET 5 ROWS LIMIT 10")
		require.NoError(t, err)

		offset, _ := stmt.Limit.Offset()
		literal(t, offset, 5, tree.Span{Start: 23, Stop: 23})
		rowCount, _ := stmt.Limit.RowCount()
		literal(t, rowCount, 10, tree.Span{Start: 36, Stop: 37})
	})
}

func TestParse_RecordsMetrics(t *testing.T) {
	found := observability.ExtractionsTotal.WithLabelValues("limit", observability.OutcomeFound)
	absent := observability.ExtractionsTotal.WithLabelValues("limit", observability.OutcomeAbsent)
	failed := observability.ExtractionsTotal.WithLabelValues("limit", observability.OutcomeError)
	beforeFound, beforeAbsent, beforeFailed := promtest.ToFloat64(found), promtest.ToFloat64(absent), promtest.ToFloat64(failed)

	p := newPipeline(t, dialect.MySQL)
	_, err := p.Parse(t.Context(), "SELECT * FROM t LIMIT 1")
	require.NoError(t, err)
	_, err = p.Parse(t.Context(), "SELECT * FROM t")
	require.NoError(t, err)
	_, err = p.Parse(t.Context(), "SELECT * FROM t LIMIT 1.5")
	require.Error(t, err)

	assert.InDelta(t, beforeFound+1, promtest.ToFloat64(found), 0)
	assert.InDelta(t, beforeAbsent+1, promtest.ToFloat64(absent), 0)
	assert.InDelta(t, beforeFailed+1, promtest.ToFloat64(failed), 0)
}

func TestParse_RuleErrors(t *testing.T) {
	files := map[string]string{
		rule.GeneralExtractorRuleDefinitionFileName(): `<extractor-rule-definition>
    <extractor-rule id="limit" extractor-class="limit" />
</extractor-rule-definition>`,
		rule.GeneralFillerRuleDefinitionFileName(): `<filler-rule-definition>
    <filler-rule segment-class="limit" filler-class="limit" />
</filler-rule-definition>`,
		rule.SQLStatementRuleDefinitionFileName(DefaultFeature, dialect.MySQL): `<sql-statement-rule-definition>
    <sql-statement-rule context="selectStatement" extractor-rule-refs="limit" />
</sql-statement-rule-definition>`,
	}
	build := func(mutate func(map[string]string)) fstest.MapFS {
		m := make(map[string]string, len(files))
		for name, data := range files {
			m[name] = data
		}
		if mutate != nil {
			mutate(m)
		}
		fsys := fstest.MapFS{}
		for name, data := range m {
			fsys[name] = &fstest.MapFile{Data: []byte(data)}
		}
		return fsys
	}

	t.Run("custom rules work", func(t *testing.T) {
		p := newPipeline(t, dialect.MySQL, WithRulesFS(build(nil)))
		stmt, err := p.Parse(t.Context(), "SELECT * FROM t LIMIT 3")
		require.NoError(t, err)
		assert.NotNil(t, stmt.Limit)
	})

	t.Run("no statement rule", func(t *testing.T) {
		fsys := build(func(m map[string]string) {
			m[rule.SQLStatementRuleDefinitionFileName(DefaultFeature, dialect.MySQL)] = `<sql-statement-rule-definition>
    <sql-statement-rule context="insertStatement" extractor-rule-refs="limit" />
</sql-statement-rule-definition>`
		})
		_, err := newPipeline(t, dialect.MySQL, WithRulesFS(fsys)).Parse(t.Context(), "SELECT * FROM t LIMIT 3")
		assert.ErrorIs(t, err, ErrNoStatementRule)
	})

	t.Run("no filler", func(t *testing.T) {
		fsys := build(func(m map[string]string) {
			m[rule.GeneralFillerRuleDefinitionFileName()] = `<filler-rule-definition>
</filler-rule-definition>`
		})
		_, err := newPipeline(t, dialect.MySQL, WithRulesFS(fsys)).Parse(t.Context(), "SELECT * FROM t LIMIT 3")
		assert.ErrorIs(t, err, ErrNoFiller)
	})

	t.Run("unknown feature", func(t *testing.T) {
		_, err := newPipeline(t, dialect.MySQL, WithFeature("encrypt")).Parse(t.Context(), "SELECT 1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading encrypt rules for MySQL")
	})
}

func TestParse_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := newPipeline(t, dialect.MySQL).Parse(ctx, "SELECT * FROM t LIMIT 1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_Concurrent(t *testing.T) {
	p := newPipeline(t, dialect.MySQL)

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sql := "SELECT * FROM t LIMIT ?, 10"
			if i%2 == 0 {
				sql = "SELECT * FROM t WHERE a = ? LIMIT ?"
			}
			stmt, err := p.Parse(context.Background(), sql)
			if !assert.NoError(t, err) {
				return
			}
			rowCount, ok := stmt.Limit.RowCount()
			assert.True(t, ok)
			assert.NotNil(t, rowCount)
		}()
	}
	wg.Wait()
}

func TestParseAll(t *testing.T) {
	p := newPipeline(t, dialect.MySQL)
	results := p.ParseAll(t.Context(), []string{
		"SELECT * FROM t LIMIT 1",
		"SELECT * FROM t LIMIT x",
		"SELECT * FROM t",
	})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Statement.Limit)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Statement)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, "SELECT * FROM t", results[2].SQL)
}

func TestNew_Defaults(t *testing.T) {
	p := New()
	assert.Equal(t, DefaultFeature, p.Feature())
	assert.Equal(t, dialect.MySQL, p.DatabaseType())

	r, err := p.Registry()
	require.NoError(t, err)
	assert.Equal(t, dialect.MySQL, r.DatabaseType())
}

func TestParse_LogsFailuresWithStatementID(t *testing.T) {
	logger, logs := testutil.NewBufferLogger()
	p := New(WithLogger(logger))

	_, err := p.Parse(t.Context(), "SELECT * FROM t LIMIT abc")
	require.Error(t, err)

	assert.True(t, logs.Contains("level=WARN", `msg="statement failed"`, "stage=parse", "statement_id="))
}

func TestParse_LogsSuccessAtDebug(t *testing.T) {
	logger, logs := testutil.NewBufferLogger()
	p := New(WithLogger(logger))

	_, err := p.Parse(t.Context(), "SELECT * FROM t LIMIT 1")
	require.NoError(t, err)

	assert.True(t, logs.Contains("level=DEBUG", `msg="statement extracted"`, "segments=1", "dialect=mysql"))
}
