package temporal

import (
	"math"
)

// SilenceDetection finds quiet regions using 25 ms RMS frames at 50% overlap
type SilenceDetection struct {
	energy *Energy
}

// NewSilenceDetection creates a silence detector for sampleRate
func NewSilenceDetection(sampleRate int) *SilenceDetection {
	frameSize := max(int(0.025*float64(sampleRate)), 2)
	return &SilenceDetection{
		energy: NewEnergy(frameSize, frameSize/2),
	}
}

// SilenceRatio is the fraction of frames with RMS below threshold
func (sd *SilenceDetection) SilenceRatio(signal []float64, threshold float64) float64 {
	energies := sd.energy.ComputeShortTimeEnergy(signal)
	if len(energies) == 0 {
		return 1
	}

	silent := 0
	for _, e := range energies {
		if e < threshold {
			silent++
		}
	}
	return float64(silent) / float64(len(energies))
}

// LeadingSilence returns the index of the first sample louder than
// threshold, or len(signal) when there is none
func LeadingSilence(signal []float64, threshold float64) int {
	for i, s := range signal {
		if math.Abs(s) > threshold {
			return i
		}
	}
	return len(signal)
}
