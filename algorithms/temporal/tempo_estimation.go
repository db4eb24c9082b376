package temporal

import (
	"math"

	"github.com/RyanBlaney/sonido-vox/algorithms/common"
	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/logging"
)

// TempoParams configures tempo estimation
type TempoParams struct {
	FrameSeconds float64 `json:"frame_seconds"`
	HopSeconds   float64 `json:"hop_seconds"`
	MinBPM       float64 `json:"min_bpm"`
	MaxBPM       float64 `json:"max_bpm"`
	DefaultBPM   float64 `json:"default_bpm"` // returned when no periodicity is found
}

// DefaultTempoParams returns the settings used for backing tracks
func DefaultTempoParams() TempoParams {
	return TempoParams{
		FrameSeconds: 0.05,
		HopSeconds:   0.01,
		MinBPM:       60,
		MaxBPM:       180,
		DefaultBPM:   120,
	}
}

// TempoEstimator finds the dominant beat period from the autocorrelation of
// an onset strength envelope
type TempoEstimator struct {
	params   TempoParams
	envelope *Envelope
	logger   logging.Logger
}

// NewTempoEstimator creates a new tempo estimator
func NewTempoEstimator(params TempoParams) *TempoEstimator {
	return &TempoEstimator{
		params:   params,
		envelope: NewEnvelope(),
		logger:   logging.WithFields(logging.Fields{"component": "tempo_estimator"}),
	}
}

// Estimate returns the tempo of signal in BPM rounded to 0.1
func (te *TempoEstimator) Estimate(signal []float64, sampleRate int) (float64, error) {
	if len(signal) == 0 {
		return 0, errs.Inputf("tempo.Estimate", "empty signal")
	}
	if sampleRate <= 0 {
		return 0, errs.Inputf("tempo.Estimate", "sample rate must be positive, got %d", sampleRate)
	}
	p := te.params
	if p.HopSeconds <= 0 || p.FrameSeconds < p.HopSeconds || p.MinBPM <= 0 || p.MaxBPM <= p.MinBPM {
		return 0, errs.Configf("tempo.Estimate", "invalid tempo params %+v", p)
	}

	frameSize := max(int(p.FrameSeconds*float64(sampleRate)), 1)
	hopSize := max(int(p.HopSeconds*float64(sampleRate)), 1)
	energy := NewEnergy(frameSize, hopSize).ComputeShortTimeEnergy(signal)
	strength := te.envelope.OnsetStrength(energy)

	timePerFrame := float64(hopSize) / float64(sampleRate)
	minLag := max(int(60.0/p.MaxBPM/timePerFrame), 1)
	maxLag := int(math.Ceil(60.0 / p.MinBPM / timePerFrame))
	if len(strength) < 2*minLag+2 {
		return 0, errs.Inputf("tempo.Estimate", "signal too short for tempo estimation: %d frames", len(strength))
	}

	autocorr := autocorrelation(strength, maxLag+2)
	bestLag := peakLag(autocorr, minLag, min(maxLag, len(autocorr)-2))
	if bestLag == 0 {
		te.logger.Debug("no periodic onsets, using default tempo", logging.Fields{"bpm": p.DefaultBPM})
		return p.DefaultBPM, nil
	}

	lag := float64(bestLag) + parabolicOffset(autocorr[bestLag-1], autocorr[bestLag], autocorr[bestLag+1])
	bpm := common.RoundHalfEven(60.0/(lag*timePerFrame)*10) / 10

	te.logger.Debug("estimated tempo", logging.Fields{
		"bpm":    bpm,
		"lag":    lag,
		"frames": len(strength),
	})
	return bpm, nil
}

// autocorrelation is the biased estimate (normalized by len(signal)) so that
// longer lags are penalized, scaled so lag 0 is 1
func autocorrelation(signal []float64, maxLag int) []float64 {
	maxLag = min(maxLag, len(signal))
	autocorr := make([]float64, maxLag)
	for lag := range maxLag {
		sum := 0.0
		for i := 0; i+lag < len(signal); i++ {
			sum += signal[i] * signal[i+lag]
		}
		autocorr[lag] = sum / float64(len(signal))
	}

	if len(autocorr) > 0 && autocorr[0] > 0 {
		scale := autocorr[0]
		for i := range autocorr {
			autocorr[i] /= scale
		}
	}
	return autocorr
}

// peakLag returns the highest local maximum in [lo, hi], or 0 when none exists
func peakLag(autocorr []float64, lo, hi int) int {
	best, bestVal := 0, 0.0
	for lag := max(lo, 1); lag <= hi; lag++ {
		v := autocorr[lag]
		if v > autocorr[lag-1] && v >= autocorr[lag+1] && v > bestVal {
			best, bestVal = lag, v
		}
	}
	return best
}

func parabolicOffset(left, center, right float64) float64 {
	denom := left - 2*center + right
	if denom == 0 {
		return 0
	}
	offset := 0.5 * (left - right) / denom
	return common.Clamp(offset, -0.5, 0.5)
}
