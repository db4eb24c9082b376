package transcription

import (
	"math"

	"github.com/RyanBlaney/sonido-vox/algorithms/tonal"
	"github.com/RyanBlaney/sonido-vox/errs"
)

// SegmentVelocity is assigned to every note produced by the segmenter
const SegmentVelocity = 100

// densityWindow is the bucket width used by the density cap, in seconds
const densityWindow = 0.25

// AnalyzerParams configures frame analysis of raw audio
type AnalyzerParams struct {
	Pitch tonal.PitchDetectionParams `json:"pitch"`
}

// DefaultAnalyzerParams analyzes at 22050 Hz with 2048-sample frames and a
// 512-sample hop over an 80-1500 Hz band
func DefaultAnalyzerParams() AnalyzerParams {
	return AnalyzerParams{
		Pitch: tonal.DefaultPitchDetectionParams(22050),
	}
}

// Validate checks the analyzer params
func (p AnalyzerParams) Validate() error {
	if err := p.Pitch.Validate(); err != nil {
		return errs.Wrap(errs.Configuration, "transcription.AnalyzerParams", err, "pitch params")
	}
	return nil
}

// HopSeconds returns the analysis hop duration
func (p AnalyzerParams) HopSeconds() float64 {
	return float64(p.Pitch.HopSize) / float64(p.Pitch.SampleRate)
}

// SegmenterParams configures the frame-to-note state machine
type SegmenterParams struct {
	HopSeconds          float64 `json:"hop_seconds"` // used only when frames carry no times
	VoicedProbThreshold float64 `json:"voiced_prob_threshold"`
	RMSSilenceThreshold float64 `json:"rms_silence_threshold"`
	MedianKernel        int     `json:"median_kernel"` // odd, >= 1
	MinNoteDuration     float64 `json:"min_note_duration"`
}

// DefaultSegmenterParams returns the thresholds tuned for sung melodies
func DefaultSegmenterParams() SegmenterParams {
	return SegmenterParams{
		HopSeconds:          512.0 / 22050.0,
		VoicedProbThreshold: 0.45,
		RMSSilenceThreshold: 0.01,
		MedianKernel:        5,
		MinNoteDuration:     0.1277,
	}
}

// Validate checks the segmenter params
func (p SegmenterParams) Validate() error {
	const op = "transcription.SegmenterParams"
	switch {
	case !(p.HopSeconds > 0) || math.IsInf(p.HopSeconds, 0):
		return errs.Configf(op, "hop seconds must be positive, got %v", p.HopSeconds)
	case p.VoicedProbThreshold < 0 || p.VoicedProbThreshold > 1 || math.IsNaN(p.VoicedProbThreshold):
		return errs.Configf(op, "voiced probability threshold %v outside [0,1]", p.VoicedProbThreshold)
	case !(p.RMSSilenceThreshold >= 0):
		return errs.Configf(op, "rms silence threshold must be non-negative, got %v", p.RMSSilenceThreshold)
	case p.MedianKernel < 1 || p.MedianKernel%2 == 0:
		return errs.Configf(op, "median kernel must be odd and >= 1, got %d", p.MedianKernel)
	case !(p.MinNoteDuration >= 0):
		return errs.Configf(op, "min note duration must be non-negative, got %v", p.MinNoteDuration)
	}
	return nil
}

// PostProcessParams configures note cleanup
type PostProcessParams struct {
	MinDuration       float64 `json:"min_duration"`
	MinVelocity       int     `json:"min_velocity"`
	MergeGap          float64 `json:"merge_gap"`
	MaxNotesPerSecond float64 `json:"max_notes_per_second"`
	Key               string  `json:"key"` // a key name, or "auto" to estimate it from the notes
	Scale             string  `json:"scale"`
	Quantize          string  `json:"quantize"` // off, 1/4, 1/8, 1/16 or 1/32
	BPM               float64 `json:"bpm"`
}

// DefaultPostProcessParams returns cleanup settings with snapping and
// quantization disabled
func DefaultPostProcessParams() PostProcessParams {
	return PostProcessParams{
		MinDuration:       0.1,
		MinVelocity:       40,
		MergeGap:          0.06,
		MaxNotesPerSecond: 8,
		Key:               "C",
		Scale:             tonal.Chromatic,
		Quantize:          tonal.QuantizeOff,
		BPM:               120,
	}
}

// Validate checks the post-processing params, including key, scale and
// quantize names and the tempo when quantizing
func (p PostProcessParams) Validate() error {
	const op = "transcription.PostProcessParams"
	switch {
	case !(p.MinDuration >= 0):
		return errs.Configf(op, "min duration must be non-negative, got %v", p.MinDuration)
	case p.MinVelocity < 0 || p.MinVelocity > 127:
		return errs.Configf(op, "min velocity %d outside [0,127]", p.MinVelocity)
	case !(p.MergeGap >= 0):
		return errs.Configf(op, "merge gap must be non-negative, got %v", p.MergeGap)
	case !(p.MaxNotesPerSecond > 0):
		return errs.Configf(op, "max notes per second must be positive, got %v", p.MaxNotesPerSecond)
	}

	if _, err := tonal.NewScaleSpec(p.scaleKey(), p.Scale); err != nil {
		return errs.Wrap(errs.Configuration, op, err, "scale")
	}
	if _, err := tonal.QuantizeGrid(p.Quantize, p.BPM); err != nil {
		return errs.Wrap(errs.Configuration, op, err, "quantize")
	}
	return nil
}

// scaleKey is the key used to validate and build the scale. An estimated
// key starts from C and is re-rooted per call.
func (p PostProcessParams) scaleKey() string {
	if p.Key == tonal.KeyAuto {
		return "C"
	}
	return p.Key
}
