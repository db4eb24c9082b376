package common

import (
	"gonum.org/v1/gonum/floats"
)

// PeakNormalizeInPlace scales signal so its largest absolute value equals target.
// Exact silence is left unchanged. Returns the peak found before scaling.
func PeakNormalizeInPlace(signal []float64, target float64) float64 {
	peak := MaxAbs(signal)
	if peak > 0 {
		floats.Scale(target/peak, signal)
	}
	return peak
}

// LinearFadeOutInPlace ramps the last n samples of signal from 1 down to 0,
// matching a linspace(1, 0, n) gain curve
func LinearFadeOutInPlace(signal []float64, n int) {
	if n > len(signal) {
		n = len(signal)
	}
	if n <= 0 {
		return
	}

	offset := len(signal) - n
	if n == 1 {
		signal[offset] = 0
		return
	}

	step := 1.0 / float64(n-1)
	for i := 0; i < n; i++ {
		signal[offset+i] *= 1.0 - float64(i)*step
	}
}

// MixInto adds src into dst starting at offset, growing dst with zeros as needed.
// The possibly reallocated dst is returned.
func MixInto(dst, src []float64, offset int) []float64 {
	if offset < 0 {
		src = src[min(-offset, len(src)):]
		offset = 0
	}
	end := offset + len(src)
	if end > len(dst) {
		grown := make([]float64, end)
		copy(grown, dst)
		dst = grown
	}
	floats.Add(dst[offset:end], src)
	return dst
}
