package common

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
)

// Number covers the integer and float types the clamp helpers accept
type Number interface {
	constraints.Integer | constraints.Float
}

// Clamp constrains a value to [lo, hi]
func Clamp[T Number](value, lo, hi T) T {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// RoundHalfEven rounds to the nearest integer, ties to even.
// Every rounding step in the note pipeline goes through here so the rule is fixed.
func RoundHalfEven(x float64) float64 {
	return math.RoundToEven(x)
}

// Median returns the median of data, averaging the two middle values for even lengths.
// NaN values must be filtered by the caller.
func Median(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2.0
	}
	return sorted[mid]
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return math.Sqrt(floats.Dot(data, data) / float64(len(data)))
}

// MaxAbs returns the largest absolute sample value
func MaxAbs(data []float64) float64 {
	peak := 0.0
	for _, v := range data {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// MedianFilterMasked applies a centered median filter of odd width to data,
// treating positions past either edge as zero. Positions where keep is false
// are forced to zero in the output.
func MedianFilterMasked(data []float64, keep []bool, width int) []float64 {
	result := make([]float64, len(data))
	if len(data) == 0 || width <= 0 {
		return result
	}

	half := width / 2
	window := make([]float64, width)

	for i := range data {
		if !keep[i] {
			continue
		}
		for j := 0; j < width; j++ {
			idx := i - half + j
			if idx < 0 || idx >= len(data) {
				window[j] = 0
			} else {
				window[j] = data[idx]
			}
		}
		result[i] = Median(window)
	}

	return result
}

// HzToMidi converts a frequency to a fractional MIDI note number (A4 = 440Hz = 69)
func HzToMidi(hz float64) float64 {
	return 69.0 + 12.0*math.Log2(hz/440.0)
}

// MidiToHz converts a fractional MIDI note number to a frequency
func MidiToHz(midi float64) float64 {
	return 440.0 * math.Pow(2.0, (midi-69.0)/12.0)
}
