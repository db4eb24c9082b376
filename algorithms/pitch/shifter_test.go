package pitch

import (
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-vox/algorithms/tonal"
	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rate = 22050

func sine(freq float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return out
}

// midFramePitch runs YIN on the middle of signal
func midFramePitch(t *testing.T, signal []float64) float64 {
	t.Helper()
	tracker, err := tonal.NewPitchTracker(tonal.DefaultPitchDetectionParams(rate))
	require.NoError(t, err)

	mid := len(signal) / 2
	est := tracker.DetectFrame(signal[mid-1024 : mid+1024])
	require.True(t, est.Voiced)
	return est.Frequency
}

func newShifter(t *testing.T) *Shifter {
	t.Helper()
	s, err := NewShifter(DefaultShifterParams())
	require.NoError(t, err)
	return s
}

func TestShiftKeepsLength(t *testing.T) {
	s := newShifter(t)
	signal := sine(220, rate)

	for _, semitones := range []float64{-7, -0.5, 3, 12} {
		out, err := s.Shift(signal, rate, semitones)
		require.NoError(t, err)
		assert.Len(t, out, len(signal))
	}
}

func TestShiftMovesPitch(t *testing.T) {
	s := newShifter(t)
	signal := sine(220, rate)

	cases := []struct {
		semitones float64
		expected  float64
	}{
		{12, 440},
		{-12, 110},
		{7, 220 * math.Pow(2, 7.0/12)},
	}

	for _, c := range cases {
		out, err := s.Shift(signal, rate, c.semitones)
		require.NoError(t, err)
		assert.InDelta(t, c.expected, midFramePitch(t, out), c.expected*0.02, "shift %v", c.semitones)
	}
}

func TestTimeStretchLength(t *testing.T) {
	s := newShifter(t)
	signal := sine(440, 10000)

	out, err := s.TimeStretch(signal, 2)
	require.NoError(t, err)
	assert.Len(t, out, 5000)

	out, err = s.TimeStretch(signal, 0.5)
	require.NoError(t, err)
	assert.Len(t, out, 20000)

	_, err = s.TimeStretch(signal, 0)
	assert.True(t, errs.Is(err, errs.Processing))
}

func TestShiftDomainErrors(t *testing.T) {
	s := newShifter(t)
	signal := sine(220, 4096)

	cases := []struct {
		name      string
		signal    []float64
		rate      int
		semitones float64
	}{
		{"empty", nil, rate, 2},
		{"bad rate", signal, 0, 2},
		{"nan", signal, rate, math.NaN()},
		{"inf", signal, rate, math.Inf(1)},
		{"too far", signal, rate, 60},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := s.Shift(c.signal, c.rate, c.semitones)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.Processing))
		})
	}
}

func TestShortSampleShifts(t *testing.T) {
	s := newShifter(t)

	out, err := s.Shift(sine(440, 300), rate, 5)
	require.NoError(t, err)
	assert.Len(t, out, 300)
}

func TestNewShifterRejectsBadParams(t *testing.T) {
	_, err := NewShifter(ShifterParams{WindowSize: 0, HopSize: 512, MaxSemitones: 48})
	assert.True(t, errs.Is(err, errs.Configuration))

	_, err = NewShifter(ShifterParams{WindowSize: 2048, HopSize: 512})
	assert.True(t, errs.Is(err, errs.Configuration))
}
