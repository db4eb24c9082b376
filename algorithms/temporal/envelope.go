package temporal

// Envelope derives onset strength curves from an energy envelope
type Envelope struct{}

// NewEnvelope creates a new envelope extractor
func NewEnvelope() *Envelope {
	return &Envelope{}
}

// OnsetStrength is the half-wave rectified first difference of envelope.
// The first value is zero so the result stays aligned with envelope.
func (e *Envelope) OnsetStrength(envelope []float64) []float64 {
	strength := make([]float64, len(envelope))
	for i := 1; i < len(envelope); i++ {
		if d := envelope[i] - envelope[i-1]; d > 0 {
			strength[i] = d
		}
	}
	return strength
}

// Smoothed is a centered moving average of width windowSize
func (e *Envelope) Smoothed(envelope []float64, windowSize int) []float64 {
	if len(envelope) == 0 || windowSize <= 1 {
		return envelope
	}

	half := windowSize / 2
	smoothed := make([]float64, len(envelope))
	for i := range envelope {
		sum, count := 0.0, 0
		for j := max(i-half, 0); j <= min(i+half, len(envelope)-1); j++ {
			sum += envelope[j]
			count++
		}
		smoothed[i] = sum / float64(count)
	}
	return smoothed
}
