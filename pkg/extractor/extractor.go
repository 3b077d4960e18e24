// Package extractor turns parse-tree fragments into typed segments.
//
// One Extractor exists per grammar construct. Extractors are looked up by
// name from rule definitions (see package rule) and must be stateless so a
// single instance can serve every statement concurrently.
package extractor

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/shardparse/pkg/marker"
	"github.com/leapstack-labs/shardparse/pkg/segment"
	"github.com/leapstack-labs/shardparse/pkg/tree"
)

// Extractor extracts one segment type from the subtree under ancestor.
//
// When the construct is not present, Extract returns (nil, false, nil).
// A non-nil error is either a *MalformedLiteralError or an
// *InternalConsistencyError.
type Extractor interface {
	Extract(ancestor tree.Node, markers marker.Indexes) (segment.Segment, bool, error)
}

// Func adapts a plain function to the Extractor interface.
type Func func(ancestor tree.Node, markers marker.Indexes) (segment.Segment, bool, error)

// Extract implements Extractor.
func (f Func) Extract(ancestor tree.Node, markers marker.Indexes) (segment.Segment, bool, error) {
	return f(ancestor, markers)
}

// Implementation names referenced by extractor-class attributes.
const (
	NameLimit           = "limit"
	NamePostgreSQLLimit = "postgresql-limit"
)

// implementations is the process-wide table of named extractors.
var implementations = struct {
	mu     sync.RWMutex
	byName map[string]Extractor
}{byName: make(map[string]Extractor)}

func init() {
	Register(NameLimit, LimitExtractor{})
	Register(NamePostgreSQLLimit, PostgreSQLLimitExtractor{})
}

// Register binds an implementation name to an extractor. Registering a name
// twice replaces the earlier binding. Call it from init functions.
func Register(name string, e Extractor) {
	implementations.mu.Lock()
	defer implementations.mu.Unlock()
	implementations.byName[name] = e
}

// Lookup returns the extractor registered under name.
func Lookup(name string) (Extractor, bool) {
	implementations.mu.RLock()
	defer implementations.mu.RUnlock()
	e, ok := implementations.byName[name]
	return e, ok
}

// Names returns all registered implementation names, sorted.
func Names() []string {
	implementations.mu.RLock()
	defer implementations.mu.RUnlock()
	names := make([]string, 0, len(implementations.byName))
	for name := range implementations.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
