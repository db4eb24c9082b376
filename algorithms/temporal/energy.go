package temporal

import (
	"github.com/RyanBlaney/sonido-vox/algorithms/common"
)

// Energy computes frame RMS on a fixed frame grid
type Energy struct {
	frameSize int
	hopSize   int
}

// NewEnergy creates a new energy calculator
func NewEnergy(frameSize, hopSize int) *Energy {
	return &Energy{
		frameSize: frameSize,
		hopSize:   hopSize,
	}
}

// ComputeShortTimeEnergy returns the RMS of every full frame that fits in
// signal, starting at sample 0
func (e *Energy) ComputeShortTimeEnergy(signal []float64) []float64 {
	if len(signal) < e.frameSize || e.hopSize <= 0 || e.frameSize <= 0 {
		return []float64{}
	}

	numFrames := (len(signal)-e.frameSize)/e.hopSize + 1
	energies := make([]float64, numFrames)
	for i := range numFrames {
		start := i * e.hopSize
		energies[i] = common.RMS(signal[start : start+e.frameSize])
	}
	return energies
}

// ComputeCentered returns one RMS value per hop with frame t centered on
// sample t*hopSize. The signal is zero-padded by frameSize/2 on both sides,
// giving 1 + len(signal)/hopSize frames.
func (e *Energy) ComputeCentered(signal []float64) []float64 {
	if len(signal) == 0 || e.hopSize <= 0 || e.frameSize <= 0 {
		return []float64{}
	}

	numFrames := 1 + len(signal)/e.hopSize
	energies := make([]float64, numFrames)
	frame := make([]float64, e.frameSize)
	for i := range numFrames {
		CenteredFrame(signal, i*e.hopSize, frame)
		energies[i] = common.RMS(frame)
	}
	return energies
}

// CenteredFrame copies the len(dst) samples centered on center into dst,
// filling positions outside signal with zeros
func CenteredFrame(signal []float64, center int, dst []float64) {
	start := center - len(dst)/2
	for j := range dst {
		idx := start + j
		if idx < 0 || idx >= len(signal) {
			dst[j] = 0
			continue
		}
		dst[j] = signal[idx]
	}
}
