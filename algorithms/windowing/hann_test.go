package windowing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodicHann(t *testing.T) {
	h := NewHann(4, false)
	coeffs := h.GetCoefficients()

	require.Len(t, coeffs, 4)
	expected := []float64{0, 0.5, 1, 0.5}
	for i := range expected {
		assert.InDelta(t, expected[i], coeffs[i], 1e-12)
	}
}

func TestSymmetricHannEndpoints(t *testing.T) {
	h := NewHann(5, true)
	coeffs := h.GetCoefficients()

	assert.InDelta(t, 0.0, coeffs[0], 1e-12)
	assert.InDelta(t, 1.0, coeffs[2], 1e-12)
	assert.InDelta(t, 0.0, coeffs[4], 1e-12)
}

func TestPeriodicHannOverlapAddIsConstant(t *testing.T) {
	// at 75% overlap the squared periodic window sums to a constant
	const size, hop = 16, 4
	coeffs := NewHann(size, false).GetCoefficients()

	sum := make([]float64, size)
	for offset := 0; offset < size; offset += hop {
		for i := range size {
			c := coeffs[(i+offset)%size]
			sum[i] += c * c
		}
	}
	for i := 1; i < size; i++ {
		assert.InDelta(t, sum[0], sum[i], 1e-9)
	}
	assert.False(t, math.IsNaN(sum[0]))
}

func TestApplySizeMismatch(t *testing.T) {
	h := NewHann(8, false)

	assert.Nil(t, h.Apply(make([]float64, 4)))
	assert.Error(t, h.ApplyInPlace(make([]float64, 4)))

	signal := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	require.NoError(t, h.ApplyInPlace(signal))
	assert.Equal(t, h.GetCoefficients(), signal)
}
