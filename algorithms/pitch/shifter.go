// Package pitch shifts the pitch of a sampled sound while keeping its length.
package pitch

import (
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-vox/algorithms/common"
	"github.com/RyanBlaney/sonido-vox/algorithms/spectral"
	"github.com/RyanBlaney/sonido-vox/algorithms/windowing"
	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/logging"
)

// Processor is implemented by pitch shifters that return a buffer of the same
// length as their input
type Processor interface {
	Shift(signal []float64, sampleRate int, semitones float64) ([]float64, error)
}

// ShifterParams configures the phase vocoder
type ShifterParams struct {
	WindowSize   int     `json:"window_size"`
	HopSize      int     `json:"hop_size"`
	MaxSemitones float64 `json:"max_semitones"` // largest |shift| accepted
}

// DefaultShifterParams returns a 2048/512 vocoder accepting four octaves
// either way
func DefaultShifterParams() ShifterParams {
	return ShifterParams{
		WindowSize:   2048,
		HopSize:      512,
		MaxSemitones: 48,
	}
}

// Shifter time-stretches with a phase vocoder and then resamples back to the
// original length, which moves every partial by the same ratio
type Shifter struct {
	params ShifterParams
	stft   *spectral.STFT
	interp *common.Interpolator
	logger logging.Logger
}

var _ Processor = (*Shifter)(nil)

// NewShifter creates a new phase vocoder pitch shifter
func NewShifter(params ShifterParams) (*Shifter, error) {
	if params.MaxSemitones <= 0 {
		return nil, errs.Configf("pitch.NewShifter", "max semitones must be positive, got %v", params.MaxSemitones)
	}

	stft, err := spectral.NewSTFT(params.WindowSize, params.HopSize, windowing.NewHann(params.WindowSize, false))
	if err != nil {
		return nil, errs.Wrap(errs.Configuration, "pitch.NewShifter", err, "building stft")
	}

	return &Shifter{
		params: params,
		stft:   stft,
		interp: common.NewInterpolator(common.Linear),
		logger: logging.WithFields(logging.Fields{"component": "pitch_shifter"}),
	}, nil
}

// Shift moves signal by semitones. The result has len(signal) samples.
func (s *Shifter) Shift(signal []float64, sampleRate int, semitones float64) ([]float64, error) {
	const op = "pitch.Shift"

	switch {
	case len(signal) == 0:
		return nil, errs.Processingf(op, "empty sample")
	case sampleRate <= 0:
		return nil, errs.Processingf(op, "sample rate must be positive, got %d", sampleRate)
	case math.IsNaN(semitones) || math.IsInf(semitones, 0):
		return nil, errs.Processingf(op, "shift must be finite, got %v", semitones)
	case math.Abs(semitones) > s.params.MaxSemitones:
		return nil, errs.Processingf(op, "shift of %.2f semitones exceeds %.0f", semitones, s.params.MaxSemitones)
	}

	rate := math.Pow(2, -semitones/12)
	stretched, err := s.TimeStretch(signal, rate)
	if err != nil {
		return nil, err
	}

	shifted := s.interp.StretchToLength(stretched, len(signal))
	for i, v := range shifted {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errs.Processingf(op, "non-finite sample at %d", i)
		}
	}

	s.logger.Debug("shifted sample", logging.Fields{
		"semitones": semitones,
		"samples":   len(signal),
	})
	return shifted, nil
}

// TimeStretch plays signal rate times faster without changing pitch. The
// result has round(len(signal)/rate) samples.
func (s *Shifter) TimeStretch(signal []float64, rate float64) ([]float64, error) {
	const op = "pitch.TimeStretch"
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, errs.Processingf(op, "stretch rate must be positive and finite, got %v", rate)
	}

	analysis, err := s.stft.Forward(signal)
	if err != nil {
		return nil, errs.Wrap(errs.Processing, op, err, "analysis")
	}

	frames := s.phaseVocoder(analysis.Complex, rate)
	length := max(int(common.RoundHalfEven(float64(len(signal))/rate)), 1)

	out, err := s.stft.Inverse(frames, length)
	if err != nil {
		return nil, errs.Wrap(errs.Processing, op, err, "resynthesis")
	}
	return out, nil
}

// phaseVocoder resamples the frame sequence at steps of rate, interpolating
// magnitudes and accumulating phase so that each bin keeps its measured
// instantaneous frequency
func (s *Shifter) phaseVocoder(frames [][]complex128, rate float64) [][]complex128 {
	numFrames := len(frames)
	bins := len(frames[0])

	// expected phase advance per hop for each bin
	phiAdvance := make([]float64, bins)
	for k := range phiAdvance {
		phiAdvance[k] = 2 * math.Pi * float64(s.params.HopSize) * float64(k) / float64(s.params.WindowSize)
	}

	phaseAcc := make([]float64, bins)
	for k, v := range frames[0] {
		phaseAcc[k] = cmplx.Phase(v)
	}

	zero := make([]complex128, bins)
	frameAt := func(i int) []complex128 {
		if i < numFrames {
			return frames[i]
		}
		return zero
	}

	steps := int(math.Ceil(float64(numFrames) / rate))
	out := make([][]complex128, 0, steps)
	for step := 0.0; step < float64(numFrames); step += rate {
		idx := int(step)
		alpha := step - float64(idx)
		left, right := frameAt(idx), frameAt(idx+1)

		frame := make([]complex128, bins)
		for k := range bins {
			mag := (1-alpha)*cmplx.Abs(left[k]) + alpha*cmplx.Abs(right[k])
			frame[k] = cmplx.Rect(mag, phaseAcc[k])

			dphase := cmplx.Phase(right[k]) - cmplx.Phase(left[k]) - phiAdvance[k]
			dphase -= 2 * math.Pi * math.Round(dphase/(2*math.Pi))
			phaseAcc[k] += phiAdvance[k] + dphase
		}
		out = append(out, frame)
	}
	return out
}
