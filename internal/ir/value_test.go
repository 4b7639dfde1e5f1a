package ir

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat_StringRoundTrips(t *testing.T) {
	vals := []float64{0, 20.1, -0.5, 1e-300, 1e21, math.MaxFloat64, 0.1 + 0.2}
	for _, v := range vals {
		s := Float(v).String()
		parsed, err := strconv.ParseFloat(s, 64)
		require.NoError(t, err, s)
		assert.Equal(t, v, parsed, s)
	}
}

func TestValue_Strings(t *testing.T) {
	assert.Equal(t, "20.5", Float(20.5).String())
	assert.Equal(t, "3", Float(3).String())
	assert.Equal(t, "-42", Int(-42).String())
	assert.Equal(t, "abc", Text("abc").String())
}

func TestValueConstructors(t *testing.T) {
	assert.Equal(t, []Value{Float(1), Float(2.5)}, Floats(1, 2.5))
	assert.Equal(t, []Value{Int(1), Int(2)}, Ints(1, 2))
	assert.Equal(t, []Value{Text("1"), Text("abc")}, Texts("1", "abc"))
	assert.Empty(t, Floats())
}
