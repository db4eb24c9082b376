package transcription

import (
	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/logging"
	"github.com/RyanBlaney/sonido-vox/notes"
)

// Params bundles every stage of the transcription pipeline
type Params struct {
	Analyzer    AnalyzerParams    `json:"analyzer"`
	Segmenter   SegmenterParams   `json:"segmenter"`
	PostProcess PostProcessParams `json:"post_process"`
}

// DefaultParams returns the default pipeline configuration. The segmenter
// hop matches the analyzer hop.
func DefaultParams() Params {
	analyzer := DefaultAnalyzerParams()
	segmenter := DefaultSegmenterParams()
	segmenter.HopSeconds = analyzer.HopSeconds()

	return Params{
		Analyzer:    analyzer,
		Segmenter:   segmenter,
		PostProcess: DefaultPostProcessParams(),
	}
}

// Stats counts notes before and after cleanup
type Stats struct {
	Raw   int `json:"raw"`
	Final int `json:"final"`
}

// Result is a cleaned note sequence with its stats
type Result struct {
	Notes notes.Sequence `json:"notes"`
	Stats Stats          `json:"stats"`
}

// Transcriber runs analysis, segmentation and cleanup. It holds only
// immutable configuration and may be shared between goroutines.
type Transcriber struct {
	analyzer  *FrameAnalyzer
	segmenter *Segmenter
	post      *PostProcessor
	logger    logging.Logger
}

// NewTranscriber builds every stage, failing on the first invalid param set
func NewTranscriber(params Params) (*Transcriber, error) {
	analyzer, err := NewFrameAnalyzer(params.Analyzer)
	if err != nil {
		return nil, err
	}
	segmenter, err := NewSegmenter(params.Segmenter)
	if err != nil {
		return nil, err
	}
	post, err := NewPostProcessor(params.PostProcess)
	if err != nil {
		return nil, err
	}

	return &Transcriber{
		analyzer:  analyzer,
		segmenter: segmenter,
		post:      post,
		logger:    logging.WithFields(logging.Fields{"component": "transcriber"}),
	}, nil
}

// FromAudio transcribes a mono recording
func (t *Transcriber) FromAudio(buf *notes.AudioBuffer) (*Result, error) {
	fs, err := t.analyzer.Analyze(buf)
	if err != nil {
		return nil, err
	}
	return t.FromFrames(fs)
}

// FromFrames segments an existing pitch track and cleans the result
func (t *Transcriber) FromFrames(fs *FrameSeries) (*Result, error) {
	raw, err := t.segmenter.Segment(fs)
	if err != nil {
		return nil, err
	}
	return t.finish(notes.FromSequence(raw))
}

// FromRawNotes cleans a note list produced by an external model
func (t *Transcriber) FromRawNotes(raw []notes.RawNote) (*Result, error) {
	return t.finish(raw)
}

func (t *Transcriber) finish(raw []notes.RawNote) (*Result, error) {
	cleaned, err := t.post.Process(raw)
	if err != nil {
		return nil, errs.Wrap(errs.Processing, "transcription.Transcribe", err, "post-processing")
	}

	stats := Stats{Raw: len(raw), Final: len(cleaned)}
	t.logger.Info("transcribed notes", logging.Fields{
		"raw":     stats.Raw,
		"final":   stats.Final,
		"removed": stats.Raw - stats.Final,
	})
	return &Result{Notes: cleaned, Stats: stats}, nil
}
