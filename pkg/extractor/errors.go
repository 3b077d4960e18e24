package extractor

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/shardparse/pkg/tree"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrMalformedLiteral indicates the statement itself is invalid: a value
	// that must be an integer is not.
	ErrMalformedLiteral = errors.New("malformed literal")

	// ErrInternalConsistency indicates the caller broke an extractor
	// precondition, typically a placeholder missing from the marker index.
	ErrInternalConsistency = errors.New("internal consistency violation")

	errMissingValue = errors.New("clause has no value")
)

// MalformedLiteralError reports a value node whose text is not an exact
// base-10 integer.
type MalformedLiteralError struct {
	Text string
	Span tree.Span
	Err  error // underlying parse failure, may be nil
}

func (e *MalformedLiteralError) Error() string {
	msg := fmt.Sprintf("malformed literal %q at [%d,%d]", e.Text, e.Span.Start, e.Span.Stop)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports ErrMalformedLiteral as a match.
func (e *MalformedLiteralError) Is(target error) bool {
	return target == ErrMalformedLiteral
}

// Unwrap returns the underlying parse failure.
func (e *MalformedLiteralError) Unwrap() error {
	return e.Err
}

// InternalConsistencyError reports that the marker numbering pass and the
// extraction pass disagree about the statement.
type InternalConsistencyError struct {
	Span   tree.Span
	Reason string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency violation at [%d,%d]: %s", e.Span.Start, e.Span.Stop, e.Reason)
}

// Is reports ErrInternalConsistency as a match.
func (e *InternalConsistencyError) Is(target error) bool {
	return target == ErrInternalConsistency
}
