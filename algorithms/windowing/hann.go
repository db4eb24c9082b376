package windowing

import (
	"fmt"

	"github.com/mjibson/go-dsp/window"
)

// Hann is a raised-cosine window. Periodic windows (symmetric=false) are the
// ones used for STFT analysis and resynthesis.
type Hann struct {
	size         int
	symmetric    bool
	coefficients []float64
}

// NewHann creates a Hann window of the given size
func NewHann(size int, symmetric bool) *Hann {
	h := &Hann{
		size:      size,
		symmetric: symmetric,
	}
	h.generate()
	return h
}

// generate fills the coefficients. A periodic window of size N is the first N
// points of the symmetric window of size N+1.
func (h *Hann) generate() {
	if h.size <= 0 {
		h.coefficients = []float64{}
		return
	}
	if h.size == 1 {
		h.coefficients = []float64{1}
		return
	}

	if h.symmetric {
		h.coefficients = window.Hann(h.size)
		return
	}
	h.coefficients = window.Hann(h.size + 1)[:h.size]
}

// Apply returns a windowed copy of signal, or nil when the lengths differ
func (h *Hann) Apply(signal []float64) []float64 {
	if len(signal) != h.size {
		return nil
	}

	windowed := make([]float64, h.size)
	for i, c := range h.coefficients {
		windowed[i] = signal[i] * c
	}
	return windowed
}

// ApplyInPlace multiplies signal by the window
func (h *Hann) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i, c := range h.coefficients {
		signal[i] *= c
	}
	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (h *Hann) GetCoefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// GetSize returns the window size
func (h *Hann) GetSize() int {
	return h.size
}

// GetType returns the window type
func (h *Hann) GetType() string {
	return "hann"
}
