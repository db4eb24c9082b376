package transcription

import (
	"math"

	"github.com/RyanBlaney/sonido-vox/algorithms/common"
	"github.com/RyanBlaney/sonido-vox/logging"
	"github.com/RyanBlaney/sonido-vox/notes"
)

// segmentState is either idleState or holdingState
type segmentState interface {
	segmentState()
}

type idleState struct{}

type holdingState struct {
	pitch int
	start float64
}

func (idleState) segmentState()    {}
func (holdingState) segmentState() {}

// Segmenter converts a FrameSeries into notes. Frames are gated by voicing
// and energy, smoothed with a median filter in the semitone domain and then
// walked with an idle/holding state machine.
type Segmenter struct {
	params SegmenterParams
	logger logging.Logger
}

// NewSegmenter creates a segmenter after validating params
func NewSegmenter(params SegmenterParams) (*Segmenter, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Segmenter{
		params: params,
		logger: logging.WithFields(logging.Fields{"component": "segmenter"}),
	}, nil
}

// Segment returns the notes found in fs, ordered by start. Input with no
// active frames yields an empty sequence.
func (s *Segmenter) Segment(fs *FrameSeries) (notes.Sequence, error) {
	if err := fs.Validate(); err != nil {
		return nil, err
	}

	pitches := s.framePitches(fs)
	out := notes.Sequence{}

	var state segmentState = idleState{}
	closeNote := func(h holdingState, end float64) {
		if end-h.start <= 0 || end-h.start < s.params.MinNoteDuration {
			return
		}
		out = append(out, notes.Note{
			Pitch:    h.pitch,
			Start:    h.start,
			End:      end,
			Velocity: SegmentVelocity,
		})
	}

	for i, pitch := range pitches {
		t := fs.timeAt(i, s.params.HopSeconds)
		active := pitch >= 0

		switch st := state.(type) {
		case idleState:
			if active {
				state = holdingState{pitch: pitch, start: t}
			}
		case holdingState:
			switch {
			case !active:
				closeNote(st, t)
				state = idleState{}
			case pitch != st.pitch:
				closeNote(st, t)
				state = holdingState{pitch: pitch, start: t}
			}
		}
	}

	if st, ok := state.(holdingState); ok && len(pitches) > 0 {
		closeNote(st, fs.timeAt(len(pitches)-1, s.params.HopSeconds))
	}

	s.logger.Debug("segmented frames", logging.Fields{
		"frames": fs.Len(),
		"notes":  len(out),
	})
	return out, nil
}

// framePitches returns one integer MIDI pitch per frame, or -1 for frames
// that are not active
func (s *Segmenter) framePitches(fs *FrameSeries) []int {
	n := fs.Len()
	active := make([]bool, n)
	semitones := make([]float64, n)
	for i := range n {
		hz := fs.PitchHz[i]
		active[i] = fs.Voiced[i] &&
			!math.IsNaN(hz) && hz > 0 &&
			fs.VoicedProb[i] >= s.params.VoicedProbThreshold &&
			fs.RMS[i] >= s.params.RMSSilenceThreshold
		if active[i] {
			semitones[i] = common.HzToMidi(hz)
		}
	}

	smoothed := common.MedianFilterMasked(semitones, active, s.params.MedianKernel)

	pitches := make([]int, n)
	for i := range n {
		if !active[i] {
			pitches[i] = -1
			continue
		}
		pitches[i] = int(common.Clamp(common.RoundHalfEven(smoothed[i]), notes.MinPitch, notes.MaxPitch))
	}
	return pitches
}
