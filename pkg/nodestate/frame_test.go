package nodestate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpEmptyFrame(t *testing.T) {
	f := NewWindowedDataFrame(10)
	_, ok := f.Interp(100)
	assert.False(t, ok)
}

func TestInterpSingleSample(t *testing.T) {
	f := NewWindowedDataFrame(10)
	f.Append(5, 42)
	v, ok := f.Interp(5)
	assert.True(t, ok)
	assert.Equal(t, 42.0, v)
}

func TestInterpLinearFit(t *testing.T) {
	f := NewWindowedDataFrame(10)
	f.Append(0, 20)
	f.Append(5, 30)
	f.Append(10, 40)

	v, ok := f.Interp(10)
	assert.True(t, ok)
	assert.InDelta(t, 40.0, v, 1e-9)
}

func TestAppendTrimsOutsideWindow(t *testing.T) {
	f := NewWindowedDataFrame(10)
	f.Append(0, 1)
	f.Append(5, 2)
	f.Append(20, 3)

	for _, s := range f.Samples() {
		assert.GreaterOrEqual(t, s.T, 20-10.0)
		assert.LessOrEqual(t, s.T, 20.0)
	}
	assert.Equal(t, 1, f.Len())
}

func TestWindowLengthIsMonotoneInWindow(t *testing.T) {
	narrow := NewWindowedDataFrame(1)
	wide := NewWindowedDataFrame(100)
	for _, t0 := range []float64{0, 1, 2, 3, 50} {
		narrow.Append(t0, t0)
		wide.Append(t0, t0)
	}
	assert.LessOrEqual(t, narrow.Len(), wide.Len())
}

func TestSlopeRequiresTwoSamples(t *testing.T) {
	f := NewWindowedDataFrame(10)
	_, ok := f.Slope()
	assert.False(t, ok)

	f.Append(0, 0)
	_, ok = f.Slope()
	assert.False(t, ok)

	f.Append(1, 2)
	slope, ok := f.Slope()
	assert.True(t, ok)
	assert.InDelta(t, 2.0, slope, 1e-9)
}

func TestInterpNotNaN(t *testing.T) {
	f := NewWindowedDataFrame(10)
	f.Append(0, 5)
	f.Append(1, 5)
	v, ok := f.Interp(1)
	assert.True(t, ok)
	assert.False(t, math.IsNaN(v))
}
