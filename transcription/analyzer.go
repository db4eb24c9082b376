package transcription

import (
	"github.com/RyanBlaney/sonido-vox/algorithms/common"
	"github.com/RyanBlaney/sonido-vox/algorithms/temporal"
	"github.com/RyanBlaney/sonido-vox/algorithms/tonal"
	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/logging"
	"github.com/RyanBlaney/sonido-vox/notes"
)

// FrameAnalyzer produces a FrameSeries from mono audio using YIN for pitch
// and frame RMS for energy, both on the same centered frame grid
type FrameAnalyzer struct {
	params  AnalyzerParams
	tracker *tonal.PitchTracker
	energy  *temporal.Energy
	interp  *common.Interpolator
	logger  logging.Logger
}

// NewFrameAnalyzer creates a frame analyzer after validating params
func NewFrameAnalyzer(params AnalyzerParams) (*FrameAnalyzer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tracker, err := tonal.NewPitchTracker(params.Pitch)
	if err != nil {
		return nil, errs.Wrap(errs.Configuration, "transcription.NewFrameAnalyzer", err, "pitch tracker")
	}

	return &FrameAnalyzer{
		params:  params,
		tracker: tracker,
		energy:  temporal.NewEnergy(params.Pitch.WindowSize, params.Pitch.HopSize),
		interp:  common.NewInterpolator(common.Linear),
		logger:  logging.WithFields(logging.Fields{"component": "frame_analyzer"}),
	}, nil
}

// Analyze resamples buf to the analysis rate and tracks it frame by frame
func (fa *FrameAnalyzer) Analyze(buf *notes.AudioBuffer) (*FrameSeries, error) {
	if buf == nil {
		return nil, errs.Inputf("transcription.Analyze", "nil audio buffer")
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	rate := fa.params.Pitch.SampleRate
	signal := fa.interp.ResampleSignal(buf.Samples, buf.SampleRate, rate)
	if len(signal) == 0 {
		return nil, errs.Inputf("transcription.Analyze", "audio too short to resample to %d Hz", rate)
	}

	estimates := fa.tracker.Track(signal)
	rms := fa.energy.ComputeCentered(signal)

	fs := &FrameSeries{
		PitchHz:    make([]float64, len(estimates)),
		Voiced:     make([]bool, len(estimates)),
		VoicedProb: make([]float64, len(estimates)),
		RMS:        rms,
		Times:      make([]float64, len(estimates)),
	}
	hop := fa.params.HopSeconds()
	for i, est := range estimates {
		fs.PitchHz[i] = est.Frequency
		fs.Voiced[i] = est.Voiced
		fs.VoicedProb[i] = est.Probability
		fs.Times[i] = float64(i) * hop
	}

	fa.logger.Debug("analyzed audio", logging.Fields{
		"seconds": buf.Duration(),
		"frames":  len(estimates),
	})
	return fs, nil
}
