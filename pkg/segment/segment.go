// Package segment defines the typed, position-tracked SQL segments produced
// by extractors.
//
// Segments are immutable once built. Every value carries the exact span of
// source text a rewriter would have to replace.
package segment

import (
	"fmt"

	"github.com/leapstack-labs/shardparse/pkg/tree"
)

// Kind identifies a segment type. Filler rule definitions bind fillers to
// kinds.
type Kind string

// Known segment kinds.
const (
	KindLimit Kind = "limit"
)

// Segment is implemented by every extracted segment.
type Segment interface {
	Kind() Kind
	Span() tree.Span
}

// Value is a limit value: either a LiteralValue or a PlaceholderValue.
// The interface is sealed; consumers switch on the two concrete types.
type Value interface {
	Span() tree.Span
	String() string
	isValue()
}

// LiteralValue is an integer written directly in the statement.
type LiteralValue struct {
	value int64
	span  tree.Span
}

// NewLiteralValue creates a literal limit value.
func NewLiteralValue(value int64, span tree.Span) LiteralValue {
	return LiteralValue{value: value, span: span}
}

// Value returns the literal integer.
func (v LiteralValue) Value() int64 { return v.value }

// Span returns the span of the literal value node.
func (v LiteralValue) Span() tree.Span { return v.span }

func (v LiteralValue) String() string {
	return fmt.Sprintf("literal(%d)@[%d,%d]", v.value, v.span.Start, v.span.Stop)
}

func (LiteralValue) isValue() {}

// PlaceholderValue refers to a bound parameter by its ordinal among all
// parameter markers of the statement.
type PlaceholderValue struct {
	index int
	span  tree.Span
}

// NewPlaceholderValue creates a placeholder limit value.
func NewPlaceholderValue(index int, span tree.Span) PlaceholderValue {
	return PlaceholderValue{index: index, span: span}
}

// Index returns the 0-based parameter ordinal.
func (v PlaceholderValue) Index() int { return v.index }

// Span returns the span of the marker token.
func (v PlaceholderValue) Span() tree.Span { return v.span }

func (v PlaceholderValue) String() string {
	return fmt.Sprintf("placeholder(%d)@[%d,%d]", v.index, v.span.Start, v.span.Stop)
}

func (PlaceholderValue) isValue() {}
