package spectral

import (
	"fmt"
)

// normFloor keeps overlap-add normalization away from the window's zeros
const normFloor = 1e-10

// Window is the analysis/synthesis window used by STFT
type Window interface {
	ApplyInPlace(signal []float64) error
	GetCoefficients() []float64
}

// STFT computes centered short-time Fourier transforms and their inverse
type STFT struct {
	fft        *FFT
	window     Window
	windowSize int
	hopSize    int
}

// STFTResult holds a frames x bins spectrogram of the non-negative frequencies
type STFTResult struct {
	Complex      [][]complex128 `json:"-"`
	TimeFrames   int            `json:"time_frames"`
	FreqBins     int            `json:"freq_bins"`
	WindowSize   int            `json:"window_size"`
	HopSize      int            `json:"hop_size"`
	SignalLength int            `json:"signal_length"`
}

// NewSTFT creates an STFT with the given frame geometry. The window must have
// windowSize coefficients.
func NewSTFT(windowSize, hopSize int, window Window) (*STFT, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}
	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive")
	}
	if window == nil || len(window.GetCoefficients()) != windowSize {
		return nil, fmt.Errorf("window must have %d coefficients", windowSize)
	}

	return &STFT{
		fft:        NewFFT(),
		window:     window,
		windowSize: windowSize,
		hopSize:    hopSize,
	}, nil
}

// Forward pads signal with windowSize/2 zeros on both sides so frame t is
// centered on sample t*hopSize, then transforms every frame.
func (s *STFT) Forward(signal []float64) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	pad := s.windowSize / 2
	padded := make([]float64, len(signal)+2*pad)
	copy(padded[pad:], signal)

	numFrames := 1 + (len(padded)-s.windowSize)/s.hopSize
	freqBins := s.windowSize/2 + 1

	frames := make([][]complex128, numFrames)
	frame := make([]float64, s.windowSize)
	for t := range numFrames {
		start := t * s.hopSize
		copy(frame, padded[start:start+s.windowSize])
		if err := s.window.ApplyInPlace(frame); err != nil {
			return nil, fmt.Errorf("frame %d: %w", t, err)
		}

		spectrum := s.fft.Compute(frame)
		frames[t] = make([]complex128, freqBins)
		copy(frames[t], spectrum[:freqBins])
	}

	return &STFTResult{
		Complex:      frames,
		TimeFrames:   numFrames,
		FreqBins:     freqBins,
		WindowSize:   s.windowSize,
		HopSize:      s.hopSize,
		SignalLength: len(signal),
	}, nil
}

// Inverse resynthesizes frames by weighted overlap-add, normalizing by the
// summed squared window, and returns exactly length samples.
func (s *STFT) Inverse(frames [][]complex128, length int) ([]float64, error) {
	if length <= 0 {
		return nil, fmt.Errorf("output length must be positive, got %d", length)
	}

	coeffs := s.window.GetCoefficients()
	pad := s.windowSize / 2
	total := s.windowSize + s.hopSize*max(len(frames)-1, 0)

	out := make([]float64, total)
	norm := make([]float64, total)
	for t, spectrum := range frames {
		frame := s.fft.InverseHalfSpectrum(spectrum, s.windowSize)
		offset := t * s.hopSize
		for i, c := range coeffs {
			out[offset+i] += frame[i] * c
			norm[offset+i] += c * c
		}
	}

	for i := range out {
		if norm[i] > normFloor {
			out[i] /= norm[i]
		}
	}

	result := make([]float64, length)
	if pad < len(out) {
		copy(result, out[pad:])
	}
	return result, nil
}
