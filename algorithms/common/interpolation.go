package common

// InterpolationType defines interpolation method
type InterpolationType int

const (
	Linear InterpolationType = iota
)

// Interpolator reads signals at fractional positions
type Interpolator struct {
	method InterpolationType
}

// NewInterpolator creates a new interpolator
func NewInterpolator(method InterpolationType) *Interpolator {
	return &Interpolator{
		method: method,
	}
}

// Interpolate performs interpolation at fractional index
func (interp *Interpolator) Interpolate(data []float64, index float64) float64 {
	return interp.linearInterpolate(data, index)
}

func (interp *Interpolator) linearInterpolate(data []float64, index float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	if index <= 0 {
		return data[0]
	}
	if index >= float64(len(data)-1) {
		return data[len(data)-1]
	}

	i := int(index)
	frac := index - float64(i)

	return data[i] + frac*(data[i+1]-data[i])
}

// ResampleSignal converts signal from originalRate to targetRate
func (interp *Interpolator) ResampleSignal(signal []float64, originalRate, targetRate int) []float64 {
	if len(signal) == 0 || originalRate <= 0 || targetRate <= 0 {
		return signal
	}
	if originalRate == targetRate {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out
	}

	ratio := float64(originalRate) / float64(targetRate)
	newLength := int(float64(len(signal)) / ratio)

	if newLength <= 0 {
		return []float64{}
	}

	resampled := make([]float64, newLength)
	for i := range resampled {
		resampled[i] = interp.Interpolate(signal, float64(i)*ratio)
	}

	return resampled
}

// StretchToLength reads signal at a uniform step so the output has exactly
// newLength samples. Sample i of the output reads position i*len(signal)/newLength.
func (interp *Interpolator) StretchToLength(signal []float64, newLength int) []float64 {
	if len(signal) == 0 || newLength <= 0 {
		return []float64{}
	}

	step := float64(len(signal)) / float64(newLength)
	result := make([]float64, newLength)
	for i := range result {
		result[i] = interp.Interpolate(signal, float64(i)*step)
	}

	return result
}
