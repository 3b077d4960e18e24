package extractor

import (
	"testing"

	"github.com/leapstack-labs/shardparse/pkg/marker"
	"github.com/leapstack-labs/shardparse/pkg/segment"
	"github.com/leapstack-labs/shardparse/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinExtractorsRegistered(t *testing.T) {
	e, ok := Lookup(NameLimit)
	require.True(t, ok)
	assert.IsType(t, LimitExtractor{}, e)

	e, ok = Lookup(NamePostgreSQLLimit)
	require.True(t, ok)
	assert.IsType(t, PostgreSQLLimitExtractor{}, e)

	_, ok = Lookup("no-such-extractor")
	assert.False(t, ok)

	assert.Subset(t, Names(), []string{NameLimit, NamePostgreSQLLimit})
}

func TestRegisterFunc(t *testing.T) {
	called := false
	Register("test-func", Func(func(tree.Node, marker.Indexes) (segment.Segment, bool, error) {
		called = true
		return nil, false, nil
	}))
	t.Cleanup(func() {
		implementations.mu.Lock()
		delete(implementations.byName, "test-func")
		implementations.mu.Unlock()
	})

	e, ok := Lookup("test-func")
	require.True(t, ok)
	_, found, err := e.Extract(nil, marker.Indexes{})
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, called)
}

func TestErrorMessages(t *testing.T) {
	malformed := &MalformedLiteralError{Text: "abc", Span: tree.Span{Start: 22, Stop: 24}, Err: errNotDecimal}
	assert.Equal(t, `malformed literal "abc" at [22,24]: not a base-10 integer`, malformed.Error())

	inconsistent := &InternalConsistencyError{Span: tree.Span{Start: 3, Stop: 3}, Reason: "parameter marker missing from marker index"}
	assert.Equal(t, "internal consistency violation at [3,3]: parameter marker missing from marker index", inconsistent.Error())
}

func TestParseExactInt(t *testing.T) {
	n, err := parseExactInt("0")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = parseExactInt("00042")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	for _, bad := range []string{"", " 1", "1 ", "0x10", "1,000", "١٢"} {
		_, err := parseExactInt(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
