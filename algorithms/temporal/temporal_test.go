package temporal

import (
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clickTrack places a short decaying 1 kHz burst on every beat
func clickTrack(bpm float64, seconds float64, rate int) []float64 {
	signal := make([]float64, int(seconds*float64(rate)))
	period := int(60.0 / bpm * float64(rate))
	burst := rate / 50
	for start := 0; start < len(signal); start += period {
		for i := 0; i < burst && start+i < len(signal); i++ {
			decay := 1 - float64(i)/float64(burst)
			signal[start+i] = decay * math.Sin(2*math.Pi*1000*float64(i)/float64(rate))
		}
	}
	return signal
}

func TestComputeShortTimeEnergy(t *testing.T) {
	e := NewEnergy(4, 2)
	got := e.ComputeShortTimeEnergy([]float64{1, 1, 1, 1, 0, 0, 0, 0})

	require.Len(t, got, 3)
	assert.InDelta(t, 1.0, got[0], 1e-12)
	assert.InDelta(t, math.Sqrt(0.5), got[1], 1e-12)
	assert.InDelta(t, 0.0, got[2], 1e-12)

	assert.Empty(t, e.ComputeShortTimeEnergy([]float64{1, 1}))
}

func TestComputeCenteredFrameCount(t *testing.T) {
	e := NewEnergy(4, 2)
	signal := []float64{1, 1, 1, 1, 1, 1, 1}

	got := e.ComputeCentered(signal)

	require.Len(t, got, 1+len(signal)/2)
	// frame 0 covers two padding zeros and two ones
	assert.InDelta(t, math.Sqrt(0.5), got[0], 1e-12)
	assert.InDelta(t, 1.0, got[1], 1e-12)
}

func TestCenteredFrameZeroPads(t *testing.T) {
	dst := make([]float64, 4)
	CenteredFrame([]float64{1, 2, 3}, 0, dst)

	assert.Equal(t, []float64{0, 0, 1, 2}, dst)
}

func TestOnsetStrength(t *testing.T) {
	env := NewEnvelope()

	assert.Equal(t, []float64{0, 1, 2, 0, 0, 3}, env.OnsetStrength([]float64{0, 1, 3, 2, 2, 5}))
	assert.Equal(t, []float64{2, 2, 2}, env.Smoothed([]float64{1, 2, 3}, 5))
}

func TestEstimateClickTrack(t *testing.T) {
	est := NewTempoEstimator(DefaultTempoParams())

	for _, bpm := range []float64{90, 120, 150} {
		got, err := est.Estimate(clickTrack(bpm, 10, 8000), 8000)
		require.NoError(t, err)
		assert.InDelta(t, bpm, got, 2.0, "bpm %v", bpm)
		assert.Equal(t, math.Round(got*10)/10, got)
	}
}

func TestEstimateSilenceUsesDefault(t *testing.T) {
	est := NewTempoEstimator(DefaultTempoParams())

	got, err := est.Estimate(make([]float64, 8000*4), 8000)
	require.NoError(t, err)
	assert.Equal(t, 120.0, got)
}

func TestEstimateRejectsBadInput(t *testing.T) {
	est := NewTempoEstimator(DefaultTempoParams())

	_, err := est.Estimate(nil, 8000)
	assert.True(t, errs.Is(err, errs.Input))

	_, err = est.Estimate(make([]float64, 100), 8000)
	assert.True(t, errs.Is(err, errs.Input))

	bad := DefaultTempoParams()
	bad.MaxBPM = 10
	_, err = NewTempoEstimator(bad).Estimate(make([]float64, 8000), 8000)
	assert.True(t, errs.Is(err, errs.Configuration))
}
