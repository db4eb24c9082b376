package spectral

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/RyanBlaney/sonido-vox/algorithms/windowing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, rate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(rate))
	}
	return out
}

func TestFFTRoundTrip(t *testing.T) {
	f := NewFFT()
	signal := []float64{1, 2, 3, 4, 3, 2, 1, 0}

	spectrum := f.Compute(signal)
	half := spectrum[:len(signal)/2+1]
	back := f.InverseHalfSpectrum(half, len(signal))

	require.Len(t, back, len(signal))
	for i := range signal {
		assert.InDelta(t, signal[i], back[i], 1e-9)
	}
}

func TestNewSTFTRejectsBadGeometry(t *testing.T) {
	_, err := NewSTFT(0, 4, windowing.NewHann(0, false))
	assert.Error(t, err)

	_, err = NewSTFT(16, 0, windowing.NewHann(16, false))
	assert.Error(t, err)

	_, err = NewSTFT(16, 4, windowing.NewHann(8, false))
	assert.Error(t, err)
}

func TestSTFTPerfectReconstruction(t *testing.T) {
	const size, hop = 256, 64
	s, err := NewSTFT(size, hop, windowing.NewHann(size, false))
	require.NoError(t, err)

	signal := sine(440, 8000, 2000)
	res, err := s.Forward(signal)
	require.NoError(t, err)

	assert.Equal(t, size/2+1, res.FreqBins)
	assert.Equal(t, 1+(len(signal)+2*(size/2)-size)/hop, res.TimeFrames)

	back, err := s.Inverse(res.Complex, len(signal))
	require.NoError(t, err)
	require.Len(t, back, len(signal))
	for i := range signal {
		assert.InDelta(t, signal[i], back[i], 1e-6)
	}
}

func TestSTFTPeakBin(t *testing.T) {
	const size, hop, rate = 512, 128, 8000
	s, err := NewSTFT(size, hop, windowing.NewHann(size, false))
	require.NoError(t, err)

	// 1000 Hz falls exactly on bin 64
	res, err := s.Forward(sine(1000, rate, 4096))
	require.NoError(t, err)

	frame := res.Complex[res.TimeFrames/2]
	peak := 0
	for k := range frame {
		if cmplx.Abs(frame[k]) > cmplx.Abs(frame[peak]) {
			peak = k
		}
	}
	assert.Equal(t, 64, peak)
}

func TestForwardEmpty(t *testing.T) {
	s, err := NewSTFT(16, 4, windowing.NewHann(16, false))
	require.NoError(t, err)

	_, err = s.Forward(nil)
	assert.Error(t, err)
	_, err = s.Inverse(nil, 0)
	assert.Error(t, err)
}
