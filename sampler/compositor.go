package sampler

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-vox/algorithms/common"
	"github.com/RyanBlaney/sonido-vox/algorithms/pitch"
	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/logging"
	"github.com/RyanBlaney/sonido-vox/notes"
)

// CompositorParams configures rendering
type CompositorParams struct {
	SampleRate        int     `json:"sample_rate"`
	PeakTarget        float64 `json:"peak_target"`        // output peak after normalization
	FadeSeconds       float64 `json:"fade_seconds"`       // fade applied to truncated notes
	TailSeconds       float64 `json:"tail_seconds"`       // silence kept after the last note end
	IdentityThreshold float64 `json:"identity_threshold"` // shifts below this many semitones are skipped
}

// DefaultCompositorParams renders at 44.1 kHz with a one second tail
func DefaultCompositorParams() CompositorParams {
	return CompositorParams{
		SampleRate:        44100,
		PeakTarget:        0.9,
		FadeSeconds:       0.01,
		TailSeconds:       1.0,
		IdentityThreshold: 0.01,
	}
}

// Validate checks the compositor params
func (p CompositorParams) Validate() error {
	const op = "sampler.CompositorParams"
	switch {
	case p.SampleRate <= 0:
		return errs.Configf(op, "sample rate must be positive, got %d", p.SampleRate)
	case !(p.PeakTarget > 0) || p.PeakTarget > 1:
		return errs.Configf(op, "peak target %v outside (0,1]", p.PeakTarget)
	case !(p.FadeSeconds >= 0):
		return errs.Configf(op, "fade seconds must be non-negative, got %v", p.FadeSeconds)
	case !(p.TailSeconds >= 0):
		return errs.Configf(op, "tail seconds must be non-negative, got %v", p.TailSeconds)
	case !(p.IdentityThreshold >= 0):
		return errs.Configf(op, "identity threshold must be non-negative, got %v", p.IdentityThreshold)
	}
	return nil
}

// Compositor renders note sequences with a Voice. It keeps no state between
// calls.
type Compositor struct {
	params  CompositorParams
	shifter pitch.Processor
	logger  logging.Logger
}

// NewCompositor creates a compositor. A nil shifter selects the default
// phase vocoder.
func NewCompositor(params CompositorParams, shifter pitch.Processor) (*Compositor, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if shifter == nil {
		s, err := pitch.NewShifter(pitch.DefaultShifterParams())
		if err != nil {
			return nil, err
		}
		shifter = s
	}

	return &Compositor{
		params:  params,
		shifter: shifter,
		logger:  logging.WithFields(logging.Fields{"component": "compositor"}),
	}, nil
}

// Render mixes one shifted copy of the voice per note. The output covers
// [0, last note end + tail] and is peak-normalized unless silent. An empty
// sequence renders the tail alone.
func (c *Compositor) Render(seq notes.Sequence, voice *Voice) (*notes.AudioBuffer, error) {
	const op = "sampler.Render"

	if voice == nil {
		return nil, errs.Inputf(op, "nil voice")
	}
	if err := voice.Sample.Validate(); err != nil {
		return nil, err
	}
	if voice.Sample.SampleRate != c.params.SampleRate {
		return nil, errs.Inputf(op, "sample rate %d does not match output rate %d",
			voice.Sample.SampleRate, c.params.SampleRate)
	}
	for i, n := range seq {
		if err := n.Validate(); err != nil {
			return nil, errs.Inputf(op, "note %d: %v", i, err)
		}
	}

	rate := float64(c.params.SampleRate)
	out := make([]float64, int((seq.EndTime()+c.params.TailSeconds)*rate))

	// notes sharing a pitch share one shifted copy
	shifted := map[int][]float64{}
	for _, n := range seq {
		source, ok := shifted[n.Pitch]
		if !ok {
			var err error
			source, err = c.shift(voice, n.Pitch)
			if err != nil {
				return nil, err
			}
			shifted[n.Pitch] = source
		}

		target := int(n.Duration() * rate)
		length := min(len(source), target)
		rendered := floats.ScaleTo(make([]float64, length), float64(n.Velocity)/notes.MaxVelocity, source[:length])
		if len(source) > target {
			common.LinearFadeOutInPlace(rendered, min(int(c.params.FadeSeconds*rate), target))
		}

		out = common.MixInto(out, rendered, int(n.Start*rate))
	}

	peak := common.PeakNormalizeInPlace(out, c.params.PeakTarget)
	c.logger.Info("rendered notes with sample", logging.Fields{
		"notes":         len(seq),
		"unique_shifts": len(shifted),
		"seconds":       float64(len(out)) / rate,
		"peak":          peak,
	})
	return &notes.AudioBuffer{Samples: out, SampleRate: c.params.SampleRate}, nil
}

// shift returns the voice moved to midiPitch, copying when the distance is
// below the identity threshold
func (c *Compositor) shift(voice *Voice, midiPitch int) ([]float64, error) {
	delta := float64(midiPitch) - voice.BasePitch
	if math.Abs(delta) < c.params.IdentityThreshold {
		out := make([]float64, len(voice.Sample.Samples))
		copy(out, voice.Sample.Samples)
		return out, nil
	}

	out, err := c.shifter.Shift(voice.Sample.Samples, voice.Sample.SampleRate, delta)
	if err != nil {
		return nil, errs.Wrap(errs.Processing, "sampler.shift", err, "shifting sample")
	}
	return out, nil
}
