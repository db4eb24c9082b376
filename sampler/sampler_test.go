package sampler

import (
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/notes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rate = 44100

// countingShifter records calls and returns the input unchanged
type countingShifter struct {
	calls []float64
}

func (s *countingShifter) Shift(signal []float64, sampleRate int, semitones float64) ([]float64, error) {
	s.calls = append(s.calls, semitones)
	out := make([]float64, len(signal))
	copy(out, signal)
	return out, nil
}

func constant(value float64, seconds float64) *notes.AudioBuffer {
	samples := make([]float64, int(seconds*rate))
	for i := range samples {
		samples[i] = value
	}
	return &notes.AudioBuffer{Samples: samples, SampleRate: rate}
}

func sineBuffer(freq, seconds float64) *notes.AudioBuffer {
	samples := make([]float64, int(seconds*rate))
	for i := range samples {
		samples[i] = 0.6 * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return &notes.AudioBuffer{Samples: samples, SampleRate: rate}
}

func newTestCompositor(t *testing.T, shifter *countingShifter) *Compositor {
	t.Helper()
	var c *Compositor
	var err error
	if shifter == nil {
		c, err = NewCompositor(DefaultCompositorParams(), nil)
	} else {
		c, err = NewCompositor(DefaultCompositorParams(), shifter)
	}
	require.NoError(t, err)
	return c
}

func TestRenderEmptySequence(t *testing.T) {
	c := newTestCompositor(t, &countingShifter{})
	voice, err := NewVoice(constant(0.5, 0.1), 60)
	require.NoError(t, err)

	out, err := c.Render(nil, voice)
	require.NoError(t, err)

	assert.Equal(t, rate, out.SampleRate)
	assert.Len(t, out.Samples, rate)
	for _, s := range out.Samples {
		require.Equal(t, 0.0, s)
	}
}

func TestRenderShortSamplePlacedOnce(t *testing.T) {
	shifter := &countingShifter{}
	c := newTestCompositor(t, shifter)
	voice, err := NewVoice(constant(0.5, 0.1), 60)
	require.NoError(t, err)

	seq := notes.Sequence{{Pitch: 60, Start: 0.5, End: 1.5, Velocity: 100}}
	out, err := c.Render(seq, voice)
	require.NoError(t, err)

	assert.Empty(t, shifter.calls, "identity shift skips the shifter")
	assert.Len(t, out.Samples, int(2.5*rate))

	start := int(0.5 * rate)
	sampleLen := int(0.1 * rate)
	assert.Equal(t, 0.0, out.Samples[start-1])
	assert.InDelta(t, 0.9, out.Samples[start], 1e-12)
	assert.InDelta(t, 0.9, out.Samples[start+sampleLen-1], 1e-12)
	assert.Equal(t, 0.0, out.Samples[start+sampleLen], "no looping past the sample end")
}

func TestRenderTruncatesWithFade(t *testing.T) {
	c := newTestCompositor(t, &countingShifter{})
	voice, err := NewVoice(constant(1, 1), 60)
	require.NoError(t, err)

	seq := notes.Sequence{{Pitch: 60, Start: 0, End: 0.2, Velocity: 127}}
	out, err := c.Render(seq, voice)
	require.NoError(t, err)

	target := int(0.2 * rate)
	fade := int(0.01 * rate)
	assert.InDelta(t, 0.9, out.Samples[0], 1e-12)
	assert.InDelta(t, 0.9, out.Samples[target-fade-1], 1e-12)
	assert.Less(t, out.Samples[target-fade/2], 0.9)
	assert.Equal(t, 0.0, out.Samples[target-1])
	assert.Equal(t, 0.0, out.Samples[target])
}

func TestRenderIsAdditive(t *testing.T) {
	c := newTestCompositor(t, &countingShifter{})
	voice, err := NewVoice(constant(0.25, 0.5), 60)
	require.NoError(t, err)

	seq := notes.Sequence{
		{Pitch: 60, Start: 0, End: 0.1, Velocity: 127},
		{Pitch: 60, Start: 0.05, End: 0.2, Velocity: 127},
	}
	out, err := c.Render(seq, voice)
	require.NoError(t, err)

	assert.InDelta(t, 0.45, out.Samples[int(0.02*rate)], 1e-12)
	assert.InDelta(t, 0.9, out.Samples[int(0.07*rate)], 1e-12)
	assert.InDelta(t, 0.45, out.Samples[int(0.15*rate)], 1e-12)
}

func TestRenderScalesByVelocityBeforeNormalizing(t *testing.T) {
	c := newTestCompositor(t, &countingShifter{})
	voice, err := NewVoice(constant(0.5, 0.1), 60)
	require.NoError(t, err)

	seq := notes.Sequence{
		{Pitch: 60, Start: 0, End: 0.1, Velocity: 127},
		{Pitch: 60, Start: 0.5, End: 0.6, Velocity: 127 / 2},
	}
	out, err := c.Render(seq, voice)
	require.NoError(t, err)

	loud := out.Samples[10]
	quiet := out.Samples[int(0.5*rate)+10]
	assert.InDelta(t, 0.9, loud, 1e-12)
	assert.InDelta(t, 0.9*63.0/127.0, quiet, 1e-12)
}

func TestRenderShiftsOncePerPitch(t *testing.T) {
	shifter := &countingShifter{}
	c := newTestCompositor(t, shifter)
	voice, err := NewVoice(constant(0.5, 0.1), 60.5)
	require.NoError(t, err)

	seq := notes.Sequence{
		{Pitch: 62, Start: 0, End: 0.2, Velocity: 100},
		{Pitch: 64, Start: 0.2, End: 0.4, Velocity: 100},
		{Pitch: 62, Start: 0.4, End: 0.6, Velocity: 100},
	}
	_, err = c.Render(seq, voice)
	require.NoError(t, err)

	assert.Equal(t, []float64{1.5, 3.5}, shifter.calls)
}

func TestRenderRejectsRateMismatch(t *testing.T) {
	c := newTestCompositor(t, &countingShifter{})
	voice, err := NewVoice(&notes.AudioBuffer{Samples: []float64{0.1, 0.2}, SampleRate: 22050}, 60)
	require.NoError(t, err)

	_, err = c.Render(notes.Sequence{{Pitch: 60, Start: 0, End: 1, Velocity: 100}}, voice)
	assert.True(t, errs.Is(err, errs.Input))
}

func TestRenderRejectsInvalidNote(t *testing.T) {
	c := newTestCompositor(t, &countingShifter{})
	voice, err := NewVoice(constant(0.5, 0.1), 60)
	require.NoError(t, err)

	_, err = c.Render(notes.Sequence{{Pitch: 60, Start: 1, End: 0.5, Velocity: 100}}, voice)
	assert.True(t, errs.Is(err, errs.Input))
}

func TestRenderShiftOutOfRangeIsProcessingError(t *testing.T) {
	c := newTestCompositor(t, nil)
	voice, err := NewVoice(sineBuffer(440, 0.2), 0)
	require.NoError(t, err)

	_, err = c.Render(notes.Sequence{{Pitch: 127, Start: 0, End: 0.1, Velocity: 100}}, voice)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Processing))
}

func TestRenderWithPhaseVocoder(t *testing.T) {
	c := newTestCompositor(t, nil)
	voice, err := NewVoice(sineBuffer(261.63, 0.5), 60)
	require.NoError(t, err)

	seq := notes.Sequence{
		{Pitch: 60, Start: 0, End: 0.5, Velocity: 100},
		{Pitch: 67, Start: 0.5, End: 1.0, Velocity: 100},
	}
	out, err := c.Render(seq, voice)
	require.NoError(t, err)

	assert.Len(t, out.Samples, 2*rate)
	peak := 0.0
	for _, s := range out.Samples {
		peak = math.Max(peak, math.Abs(s))
	}
	assert.InDelta(t, 0.9, peak, 1e-9)
}

func TestDetectBasePitch(t *testing.T) {
	params := DefaultBasePitchParams()

	cases := []struct {
		freq float64
		midi float64
	}{
		{261.63, 60},
		{110, 45},
		{440, 69},
	}
	for _, c := range cases {
		got, err := DetectBasePitch(sineBuffer(c.freq, 0.5), params)
		require.NoError(t, err)
		assert.InDelta(t, c.midi, got, 0.1, "freq %v", c.freq)
	}
}

func TestDetectBasePitchFallsBack(t *testing.T) {
	got, err := DetectBasePitch(constant(0, 0.5), DefaultBasePitchParams())
	require.NoError(t, err)
	assert.Equal(t, 60.0, got)

	_, err = DetectBasePitch(&notes.AudioBuffer{SampleRate: rate}, DefaultBasePitchParams())
	assert.True(t, errs.Is(err, errs.Input))
}

func TestDetectVoice(t *testing.T) {
	voice, err := DetectVoice(sineBuffer(440, 0.5), DefaultBasePitchParams())
	require.NoError(t, err)
	assert.InDelta(t, 69, voice.BasePitch, 0.1)

	_, err = NewVoice(sineBuffer(440, 0.1), math.NaN())
	assert.True(t, errs.Is(err, errs.Input))
}

func TestCompositorParamsValidate(t *testing.T) {
	p := DefaultCompositorParams()
	p.PeakTarget = 1.5
	_, err := NewCompositor(p, nil)
	assert.True(t, errs.Is(err, errs.Configuration))
}

func TestTrimLeadingSilence(t *testing.T) {
	sample := &notes.AudioBuffer{Samples: []float64{0, 0.001, 0, 0.5, -0.5, 0}, SampleRate: 44100}
	voice, err := NewVoice(sample, 60)
	require.NoError(t, err)

	trimmed := voice.TrimLeadingSilence(0.01)
	assert.Equal(t, []float64{0.5, -0.5, 0}, trimmed.Sample.Samples)
	assert.Equal(t, 60.0, trimmed.BasePitch)
	assert.Len(t, voice.Sample.Samples, 6)

	quiet, err := NewVoice(&notes.AudioBuffer{Samples: []float64{0.001, 0.002}, SampleRate: 44100}, 60)
	require.NoError(t, err)
	assert.Same(t, quiet, quiet.TrimLeadingSilence(0.01))
}
