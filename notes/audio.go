package notes

import (
	"math"

	"github.com/RyanBlaney/sonido-vox/errs"
)

// AudioBuffer is mono PCM at a fixed sample rate. Producers hand it over and
// consumers treat Samples as read-only.
type AudioBuffer struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
}

// Duration returns the length in seconds
func (b *AudioBuffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Validate rejects empty buffers, non-positive rates and non-finite samples
func (b *AudioBuffer) Validate() error {
	if b == nil || len(b.Samples) == 0 {
		return errs.Inputf("notes.AudioBuffer", "empty audio buffer")
	}
	if b.SampleRate <= 0 {
		return errs.Inputf("notes.AudioBuffer", "sample rate must be positive, got %d", b.SampleRate)
	}
	for i, s := range b.Samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return errs.Inputf("notes.AudioBuffer", "non-finite sample at index %d", i)
		}
	}
	return nil
}
