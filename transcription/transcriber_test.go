package transcription

import (
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/notes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toneBuffer is silence, then a sine at freq, then silence
func toneBuffer(rate int, freq, lead, body, tail float64) *notes.AudioBuffer {
	total := int((lead + body + tail) * float64(rate))
	samples := make([]float64, total)
	from := int(lead * float64(rate))
	to := int((lead + body) * float64(rate))
	for i := from; i < to; i++ {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return &notes.AudioBuffer{Samples: samples, SampleRate: rate}
}

func newTestTranscriber(t *testing.T) *Transcriber {
	t.Helper()
	tr, err := NewTranscriber(DefaultParams())
	require.NoError(t, err)
	return tr
}

func TestFromAudioSingleTone(t *testing.T) {
	tr := newTestTranscriber(t)

	for _, rate := range []int{22050, 44100} {
		res, err := tr.FromAudio(toneBuffer(rate, 440, 0.3, 0.8, 0.3))
		require.NoError(t, err)

		require.Len(t, res.Notes, 1, "rate %d", rate)
		n := res.Notes[0]
		assert.Equal(t, 69, n.Pitch)
		assert.InDelta(t, 0.3, n.Start, 0.06)
		assert.InDelta(t, 1.1, n.End, 0.08)
		assert.Equal(t, SegmentVelocity, n.Velocity)
		assert.Equal(t, Stats{Raw: 1, Final: 1}, res.Stats)
	}
}

func TestFromAudioSilence(t *testing.T) {
	tr := newTestTranscriber(t)

	res, err := tr.FromAudio(&notes.AudioBuffer{Samples: make([]float64, 22050), SampleRate: 22050})
	require.NoError(t, err)
	assert.Empty(t, res.Notes)
	assert.Equal(t, Stats{}, res.Stats)
}

func TestFromAudioRejectsEmpty(t *testing.T) {
	tr := newTestTranscriber(t)

	_, err := tr.FromAudio(&notes.AudioBuffer{SampleRate: 22050})
	assert.True(t, errs.Is(err, errs.Input))

	_, err = tr.FromAudio(nil)
	assert.True(t, errs.Is(err, errs.Input))
}

func TestFromRawNotesStats(t *testing.T) {
	tr := newTestTranscriber(t)
	raw := []notes.RawNote{
		{Pitch: 60, Start: 0, End: 0.5, Velocity: 90},
		{Pitch: 60, Start: 0.52, End: 1, Velocity: 80},
		{Pitch: 64, Start: 1.2, End: 1.25, Velocity: 90},
		{Pitch: 67, Start: 1.5, End: 2, Velocity: 20},
	}

	res, err := tr.FromRawNotes(raw)
	require.NoError(t, err)

	assert.Equal(t, Stats{Raw: 4, Final: 1}, res.Stats)
	assert.Equal(t, notes.Note{Pitch: 60, Start: 0, End: 1, Velocity: 90}, res.Notes[0])
}

func TestFromFramesMisaligned(t *testing.T) {
	tr := newTestTranscriber(t)
	fs := framesFromHz(run(440, 20))
	fs.Voiced = fs.Voiced[:3]

	_, err := tr.FromFrames(fs)
	assert.True(t, errs.Is(err, errs.Input))
}

func TestNewTranscriberRejectsBadParams(t *testing.T) {
	params := DefaultParams()
	params.PostProcess.Quantize = "1/16"
	params.PostProcess.BPM = -1

	_, err := NewTranscriber(params)
	assert.True(t, errs.Is(err, errs.Configuration))

	params = DefaultParams()
	params.Analyzer.Pitch.HopSize = 0
	_, err = NewTranscriber(params)
	assert.True(t, errs.Is(err, errs.Configuration))
}

func TestAnalyzeFrameGrid(t *testing.T) {
	fa, err := NewFrameAnalyzer(DefaultAnalyzerParams())
	require.NoError(t, err)

	fs, err := fa.Analyze(toneBuffer(22050, 220, 0, 1, 0))
	require.NoError(t, err)

	require.NoError(t, fs.Validate())
	assert.Equal(t, 1+22050/512, fs.Len())
	assert.InDelta(t, 512.0/22050, fs.Times[1], 1e-12)

	mid := fs.Len() / 2
	assert.True(t, fs.Voiced[mid])
	assert.InDelta(t, 220, fs.PitchHz[mid], 2.2)
	assert.Greater(t, fs.RMS[mid], 0.3)
}
