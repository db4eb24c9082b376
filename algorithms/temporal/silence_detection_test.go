package temporal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func burst(silent, loud, tail int) []float64 {
	signal := make([]float64, silent+loud+tail)
	for i := silent; i < silent+loud; i++ {
		if i%2 == 0 {
			signal[i] = 0.5
		} else {
			signal[i] = -0.5
		}
	}
	return signal
}

func TestSilenceRatio(t *testing.T) {
	sd := NewSilenceDetection(1000)

	assert.Equal(t, 1.0, sd.SilenceRatio(make([]float64, 1000), 0.01))
	assert.Equal(t, 0.0, sd.SilenceRatio(burst(0, 1000, 0), 0.01))
	assert.Equal(t, 1.0, sd.SilenceRatio(nil, 0.01))
}

func TestLeadingSilence(t *testing.T) {
	assert.Equal(t, 3, LeadingSilence([]float64{0, 0.001, -0.005, 0.2, 0}, 0.01))
	assert.Equal(t, 2, LeadingSilence([]float64{0, 0}, 0.01))
}
