package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps mjibson/go-dsp for real-valued frames
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute returns the full complex spectrum of x. go-dsp handles
// non-power-of-2 sizes.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// ComputeInverseReal computes the inverse FFT and keeps the real part
func (f *FFT) ComputeInverseReal(x []complex128) []float64 {
	if len(x) == 0 {
		return []float64{}
	}

	result := fft.IFFT(x)
	realResult := make([]float64, len(result))
	for i, val := range result {
		realResult[i] = real(val)
	}
	return realResult
}

// InverseHalfSpectrum rebuilds an n-point real frame from its n/2+1
// non-negative frequency bins by mirroring the conjugate half.
func (f *FFT) InverseHalfSpectrum(half []complex128, n int) []float64 {
	if n <= 0 || len(half) == 0 {
		return []float64{}
	}

	full := make([]complex128, n)
	copy(full, half)
	for k := len(half); k < n; k++ {
		mirror := n - k
		if mirror < len(half) {
			full[k] = complex(real(half[mirror]), -imag(half[mirror]))
		}
	}
	return f.ComputeInverseReal(full)
}
