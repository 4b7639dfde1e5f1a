package ir

import (
	"strconv"
)

// Value is a sealed interface representing one reader-side sample.
// Only Float, Int, and Text implement it.
//
// Samples arrive from the result-file reader with a textual origin that may
// or may not look numeric; String returns the canonical text written into a
// blob.
type Value interface {
	irValue() // Sealed - only these types implement it
	String() string
}

// Float represents a floating point sample.
// Formatted with the shortest representation that parses back to the same
// float64, so encode/decode never loses precision.
type Float float64

func (Float) irValue() {}

func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'g', -1, 64)
}

// Int represents an integral sample.
type Int int64

func (Int) irValue() {}

func (i Int) String() string {
	return strconv.FormatInt(int64(i), 10)
}

// Text represents a sample kept verbatim.
// The codec stores it as-is; decoding fails later if it is not numeric.
type Text string

func (Text) irValue() {}

func (t Text) String() string {
	return string(t)
}

// Floats builds a Value slice from float64 samples.
func Floats(vals ...float64) []Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = Float(v)
	}
	return out
}

// Ints builds a Value slice from int64 samples.
func Ints(vals ...int64) []Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = Int(v)
	}
	return out
}

// Texts builds a Value slice from raw text samples.
func Texts(vals ...string) []Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = Text(v)
	}
	return out
}
