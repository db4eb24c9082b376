// Package transcription turns frame-level pitch tracks or raw model note lists
// into clean note sequences.
package transcription

import (
	"math"

	"github.com/RyanBlaney/sonido-vox/errs"
)

// FrameSeries holds per-frame pitch tracker output. All slices are aligned by
// frame index. PitchHz is NaN where the tracker found no pitch.
type FrameSeries struct {
	PitchHz    []float64 `json:"pitch_hz"`
	Voiced     []bool    `json:"voiced"`
	VoicedProb []float64 `json:"voiced_prob"`
	RMS        []float64 `json:"rms"`
	Times      []float64 `json:"times"` // frame times in seconds
}

// Len returns the number of frames
func (fs *FrameSeries) Len() int {
	return len(fs.PitchHz)
}

// Validate checks that every slice has one entry per frame. Times may be
// omitted, in which case frame times are derived from the hop duration.
func (fs *FrameSeries) Validate() error {
	const op = "transcription.FrameSeries"
	if fs == nil {
		return errs.Inputf(op, "nil frame series")
	}

	n := len(fs.PitchHz)
	if len(fs.Voiced) != n || len(fs.VoicedProb) != n || len(fs.RMS) != n {
		return errs.Inputf(op, "misaligned frames: pitch=%d voiced=%d prob=%d rms=%d",
			n, len(fs.Voiced), len(fs.VoicedProb), len(fs.RMS))
	}
	if fs.Times != nil && len(fs.Times) != n {
		return errs.Inputf(op, "misaligned frames: pitch=%d times=%d", n, len(fs.Times))
	}

	for i := range n {
		if p := fs.VoicedProb[i]; math.IsNaN(p) || p < 0 || p > 1 {
			return errs.Inputf(op, "frame %d: voiced probability %v outside [0,1]", i, p)
		}
		if r := fs.RMS[i]; math.IsNaN(r) || r < 0 {
			return errs.Inputf(op, "frame %d: negative rms %v", i, r)
		}
		if fs.Times != nil && i > 0 && fs.Times[i] < fs.Times[i-1] {
			return errs.Inputf(op, "frame %d: time %v before previous frame", i, fs.Times[i])
		}
	}
	return nil
}

// timeAt returns the time of frame i, falling back to i*hop when Times is absent
func (fs *FrameSeries) timeAt(i int, hop float64) float64 {
	if fs.Times != nil {
		return fs.Times[i]
	}
	return float64(i) * hop
}
