package tonal

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-vox/algorithms/common"
	"github.com/RyanBlaney/sonido-vox/algorithms/temporal"
	"github.com/RyanBlaney/sonido-vox/logging"
)

// PitchDetectionParams configures the YIN pitch tracker
type PitchDetectionParams struct {
	SampleRate int `json:"sample_rate"`
	WindowSize int `json:"window_size"`
	HopSize    int `json:"hop_size"`

	// Frequency range constraints
	MinFreq float64 `json:"min_freq"` // Minimum frequency (Hz)
	MaxFreq float64 `json:"max_freq"` // Maximum frequency (Hz)

	YinThreshold float64 `json:"yin_threshold"` // CMNDF dip threshold (0.05-0.5)
}

// DefaultPitchDetectionParams returns vocal-range settings for sampleRate
func DefaultPitchDetectionParams(sampleRate int) PitchDetectionParams {
	return PitchDetectionParams{
		SampleRate:   sampleRate,
		WindowSize:   2048,
		HopSize:      512,
		MinFreq:      80.0,
		MaxFreq:      1500.0,
		YinThreshold: 0.15,
	}
}

// Validate checks the params for internal consistency
func (p PitchDetectionParams) Validate() error {
	switch {
	case p.SampleRate <= 0:
		return fmt.Errorf("sample rate must be positive, got %d", p.SampleRate)
	case p.WindowSize < 4:
		return fmt.Errorf("window size must be at least 4, got %d", p.WindowSize)
	case p.HopSize <= 0:
		return fmt.Errorf("hop size must be positive, got %d", p.HopSize)
	case p.MinFreq <= 0 || p.MaxFreq <= p.MinFreq:
		return fmt.Errorf("invalid frequency band [%v, %v]", p.MinFreq, p.MaxFreq)
	case p.MaxFreq > float64(p.SampleRate)/2:
		return fmt.Errorf("max frequency %v above Nyquist for %d Hz", p.MaxFreq, p.SampleRate)
	case float64(p.SampleRate)/p.MinFreq >= float64(p.WindowSize/2-1):
		return fmt.Errorf("window size %d too short for min frequency %v", p.WindowSize, p.MinFreq)
	case p.YinThreshold <= 0 || p.YinThreshold >= 1:
		return fmt.Errorf("yin threshold must be in (0, 1), got %v", p.YinThreshold)
	}
	return nil
}

// PitchEstimate is the YIN result for one frame. Frequency is NaN when the
// frame is unvoiced.
type PitchEstimate struct {
	Frequency   float64 `json:"frequency"`
	Voiced      bool    `json:"voiced"`
	Probability float64 `json:"probability"` // 1 - CMNDF at the chosen lag, in [0,1]
}

// PitchTracker implements YIN on a fixed frame grid
//
// References:
// - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency estimator for speech and music"
type PitchTracker struct {
	params PitchDetectionParams
	minTau int
	maxTau int
	logger logging.Logger
}

// NewPitchTracker creates a tracker after validating params
func NewPitchTracker(params PitchDetectionParams) (*PitchTracker, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &PitchTracker{
		params: params,
		minTau: max(int(math.Floor(float64(params.SampleRate)/params.MaxFreq)), 1),
		maxTau: int(math.Ceil(float64(params.SampleRate) / params.MinFreq)),
		logger: logging.WithFields(logging.Fields{"component": "pitch_tracker"}),
	}, nil
}

// Track runs DetectFrame on frames centered at every hop, giving
// 1 + len(signal)/HopSize estimates
func (pt *PitchTracker) Track(signal []float64) []PitchEstimate {
	if len(signal) == 0 {
		return []PitchEstimate{}
	}

	numFrames := 1 + len(signal)/pt.params.HopSize
	estimates := make([]PitchEstimate, numFrames)
	frame := make([]float64, pt.params.WindowSize)
	voiced := 0
	for i := range numFrames {
		temporal.CenteredFrame(signal, i*pt.params.HopSize, frame)
		estimates[i] = pt.DetectFrame(frame)
		if estimates[i].Voiced {
			voiced++
		}
	}

	pt.logger.Debug("tracked pitch", logging.Fields{
		"frames": numFrames,
		"voiced": voiced,
	})
	return estimates
}

// DetectFrame estimates the fundamental of a single frame
func (pt *PitchTracker) DetectFrame(frame []float64) PitchEstimate {
	unvoiced := PitchEstimate{Frequency: math.NaN()}

	halfN := len(frame) / 2
	maxTau := min(pt.maxTau, halfN-2)
	if maxTau <= pt.minTau {
		return unvoiced
	}

	cmndf := cumulativeMeanNormalizedDifference(frame, halfN, maxTau+2)

	// first dip below threshold, followed down to its local minimum
	tau := -1
	for t := pt.minTau; t <= maxTau; t++ {
		if cmndf[t] < pt.params.YinThreshold {
			for t+1 <= maxTau && cmndf[t+1] < cmndf[t] {
				t++
			}
			tau = t
			break
		}
	}

	if tau < 0 {
		best := pt.minTau
		for t := pt.minTau; t <= maxTau; t++ {
			if cmndf[t] < cmndf[best] {
				best = t
			}
		}
		unvoiced.Probability = common.Clamp(1-cmndf[best], 0, 1)
		return unvoiced
	}

	period := parabolicInterpolation(cmndf, tau)
	frequency := float64(pt.params.SampleRate) / period
	probability := common.Clamp(1-cmndf[tau], 0, 1)
	if frequency < pt.params.MinFreq || frequency > pt.params.MaxFreq {
		unvoiced.Probability = probability
		return unvoiced
	}

	return PitchEstimate{
		Frequency:   frequency,
		Voiced:      true,
		Probability: probability,
	}
}

// cumulativeMeanNormalizedDifference computes YIN's d'(tau) for tau < size
// over an integration window of halfN samples. A frame with no energy yields
// 1 everywhere.
func cumulativeMeanNormalizedDifference(frame []float64, halfN, size int) []float64 {
	cmndf := make([]float64, size)
	cmndf[0] = 1.0

	runningSum := 0.0
	for tau := 1; tau < size; tau++ {
		sum := 0.0
		for j := range halfN {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}

		runningSum += sum
		if runningSum == 0 {
			cmndf[tau] = 1.0
			continue
		}
		cmndf[tau] = sum / (runningSum / float64(tau))
	}
	return cmndf
}

// parabolicInterpolation refines the minimum at idx to sub-sample precision
func parabolicInterpolation(data []float64, idx int) float64 {
	if idx <= 0 || idx >= len(data)-1 {
		return float64(idx)
	}

	y1, y2, y3 := data[idx-1], data[idx], data[idx+1]
	a := (y1 - 2*y2 + y3) / 2
	b := (y3 - y1) / 2
	if a == 0 {
		return float64(idx)
	}

	offset := -b / (2 * a)
	if math.Abs(offset) > 1 {
		return float64(idx)
	}
	return float64(idx) + offset
}
