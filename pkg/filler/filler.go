// Package filler merges extracted segments into a statement model.
package filler

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/leapstack-labs/shardparse/pkg/dialect"
	"github.com/leapstack-labs/shardparse/pkg/segment"
)

// Sentinel errors.
var (
	ErrDuplicateSegment  = errors.New("segment already filled")
	ErrUnexpectedSegment = errors.New("unexpected segment type")
)

// SelectStatement is the statement model the segments are merged into.
type SelectStatement struct {
	SQL             string
	DatabaseType    dialect.DatabaseType
	ParametersCount int

	Limit    *segment.LimitSegment
	Segments []segment.Segment
}

// Filler merges one segment kind into a statement.
type Filler interface {
	Fill(seg segment.Segment, stmt *SelectStatement) error
}

// LimitFiller stores a limit segment on the statement.
type LimitFiller struct{}

// Fill implements Filler.
func (LimitFiller) Fill(seg segment.Segment, stmt *SelectStatement) error {
	limit, ok := seg.(*segment.LimitSegment)
	if !ok {
		return fmt.Errorf("%w: limit filler got %T", ErrUnexpectedSegment, seg)
	}
	if stmt.Limit != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateSegment, segment.KindLimit)
	}
	for _, v := range limitValues(limit) {
		p, isPlaceholder := v.(segment.PlaceholderValue)
		if isPlaceholder && p.Index() >= stmt.ParametersCount {
			return fmt.Errorf("placeholder ordinal %d out of range for %d parameters", p.Index(), stmt.ParametersCount)
		}
	}
	stmt.Limit = limit
	stmt.Segments = append(stmt.Segments, limit)
	return nil
}

func limitValues(limit *segment.LimitSegment) []segment.Value {
	var values []segment.Value
	if v, ok := limit.Offset(); ok {
		values = append(values, v)
	}
	if v, ok := limit.RowCount(); ok {
		values = append(values, v)
	}
	return values
}

// NameLimit is the filler-class name of LimitFiller.
const NameLimit = "limit"

var fillers = struct {
	mu     sync.RWMutex
	byName map[string]Filler
}{byName: make(map[string]Filler)}

func init() {
	Register(NameLimit, LimitFiller{})
}

// Register binds a filler-class name to a filler.
func Register(name string, f Filler) {
	fillers.mu.Lock()
	defer fillers.mu.Unlock()
	fillers.byName[name] = f
}

// Lookup returns the filler registered under name.
func Lookup(name string) (Filler, bool) {
	fillers.mu.RLock()
	defer fillers.mu.RUnlock()
	f, ok := fillers.byName[name]
	return f, ok
}

// Names returns all registered filler names, sorted.
func Names() []string {
	fillers.mu.RLock()
	defer fillers.mu.RUnlock()
	names := make([]string, 0, len(fillers.byName))
	for name := range fillers.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
