package blob

import (
	"errors"
	"fmt"

	"github.com/voightp/esofile-storage/internal/ir"
)

var (
	// ErrSampleCount indicates variables combined into one table disagree on
	// the number of samples.
	ErrSampleCount = errors.New("sample count mismatch")

	// ErrNotNumeric indicates a blob token could not be parsed as a number.
	ErrNotNumeric = errors.New("token is not numeric")

	// ErrSeparatorInValue indicates a stringified value contains the
	// separator and would not survive a round trip.
	ErrSeparatorInValue = errors.New("value contains separator")

	// ErrEmptyValue indicates a value whose text is empty. It would read
	// back as a missing sample.
	ErrEmptyValue = errors.New("value is empty")

	// ErrEmptySeparator indicates an empty separator was configured.
	ErrEmptySeparator = errors.New("separator must not be empty")
)

// ParseError reports a token that is not a number.
type ParseError struct {
	ID     ir.VariableID
	Sample int
	Token  string
	Err    error // strconv error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decode %s: sample %d: %q: %v", e.ID.Descriptor, e.Sample, e.Token, ErrNotNumeric)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrNotNumeric, e.Err}
}

// MismatchError reports a variable whose sample count differs from the
// first variable of the same table.
type MismatchError struct {
	ID   ir.VariableID
	Got  int
	Want int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("decode %s: %v: got %d samples, want %d", e.ID.Descriptor, ErrSampleCount, e.Got, e.Want)
}

func (e *MismatchError) Unwrap() error {
	return ErrSampleCount
}
