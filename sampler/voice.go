// Package sampler renders note sequences by pitch-shifting and mixing a
// single one-shot sample.
package sampler

import (
	"math"

	"github.com/RyanBlaney/sonido-vox/algorithms/common"
	"github.com/RyanBlaney/sonido-vox/algorithms/temporal"
	"github.com/RyanBlaney/sonido-vox/algorithms/tonal"
	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/logging"
	"github.com/RyanBlaney/sonido-vox/notes"
)

// Voice is a one-shot sample with the pitch it was recorded at, as a
// fractional MIDI note
type Voice struct {
	Sample    *notes.AudioBuffer `json:"-"`
	BasePitch float64            `json:"base_pitch"`
}

// NewVoice pairs a sample with a known base pitch
func NewVoice(sample *notes.AudioBuffer, basePitch float64) (*Voice, error) {
	if err := sample.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(basePitch) || math.IsInf(basePitch, 0) {
		return nil, errs.Inputf("sampler.NewVoice", "base pitch must be finite, got %v", basePitch)
	}
	return &Voice{Sample: sample, BasePitch: basePitch}, nil
}

// TrimLeadingSilence returns a voice whose sample starts at the first sample
// louder than threshold, so rendered notes sound on their start time. A sample
// that never crosses threshold is kept whole.
func (v *Voice) TrimLeadingSilence(threshold float64) *Voice {
	samples := v.Sample.Samples
	skip := temporal.LeadingSilence(samples, threshold)
	if skip == 0 || skip == len(samples) {
		return v
	}

	logging.Debug("trimmed sample onset", logging.Fields{
		"component": "sampler",
		"samples":   skip,
		"seconds":   float64(skip) / float64(v.Sample.SampleRate),
	})
	return &Voice{
		Sample:    &notes.AudioBuffer{Samples: samples[skip:], SampleRate: v.Sample.SampleRate},
		BasePitch: v.BasePitch,
	}
}

// DetectVoice pairs a sample with its detected base pitch
func DetectVoice(sample *notes.AudioBuffer, params BasePitchParams) (*Voice, error) {
	base, err := DetectBasePitch(sample, params)
	if err != nil {
		return nil, err
	}
	return &Voice{Sample: sample, BasePitch: base}, nil
}

// BasePitchParams configures base pitch detection
type BasePitchParams struct {
	MinFreq      float64 `json:"min_freq"`
	MaxFreq      float64 `json:"max_freq"`
	WindowSize   int     `json:"window_size"`
	HopSize      int     `json:"hop_size"`
	YinThreshold float64 `json:"yin_threshold"`
	Fallback     float64 `json:"fallback"` // MIDI pitch used when nothing is voiced
}

// DefaultBasePitchParams searches C2 to C6 and falls back to middle C
func DefaultBasePitchParams() BasePitchParams {
	return BasePitchParams{
		MinFreq:      common.MidiToHz(36),
		MaxFreq:      common.MidiToHz(84),
		WindowSize:   4096,
		HopSize:      512,
		YinThreshold: 0.15,
		Fallback:     60,
	}
}

// DetectBasePitch returns the median voiced fundamental of sample as a
// fractional MIDI note, or params.Fallback when no frame is voiced
func DetectBasePitch(sample *notes.AudioBuffer, params BasePitchParams) (float64, error) {
	if err := sample.Validate(); err != nil {
		return 0, err
	}

	tracker, err := tonal.NewPitchTracker(tonal.PitchDetectionParams{
		SampleRate:   sample.SampleRate,
		WindowSize:   params.WindowSize,
		HopSize:      params.HopSize,
		MinFreq:      params.MinFreq,
		MaxFreq:      params.MaxFreq,
		YinThreshold: params.YinThreshold,
	})
	if err != nil {
		return 0, errs.Wrap(errs.Configuration, "sampler.DetectBasePitch", err, "pitch tracker")
	}

	logger := logging.WithFields(logging.Fields{"component": "base_pitch"})

	var voiced []float64
	for _, est := range tracker.Track(sample.Samples) {
		if est.Voiced {
			voiced = append(voiced, est.Frequency)
		}
	}
	if len(voiced) == 0 {
		logger.Warn("could not detect pitch, using fallback", logging.Fields{"fallback": params.Fallback})
		return params.Fallback, nil
	}

	medianHz := common.Median(voiced)
	base := common.HzToMidi(medianHz)
	logger.Info("detected base pitch", logging.Fields{
		"hz":     medianHz,
		"midi":   base,
		"frames": len(voiced),
	})
	return base, nil
}
