package transcription

import (
	"cmp"
	"math"
	"slices"

	"github.com/RyanBlaney/sonido-vox/algorithms/common"
	"github.com/RyanBlaney/sonido-vox/algorithms/tonal"
	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/logging"
	"github.com/RyanBlaney/sonido-vox/notes"
)

// PostProcessor cleans a note list in a fixed order: round, filter, sort,
// merge, density cap, scale snap, quantize
type PostProcessor struct {
	params PostProcessParams
	scale  tonal.ScaleSpec
	keys   *tonal.KeyEstimator // set when the key is estimated
	grid   float64
	logger logging.Logger
}

// NewPostProcessor resolves the scale and quantize grid up front
func NewPostProcessor(params PostProcessParams) (*PostProcessor, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	scale, err := tonal.NewScaleSpec(params.scaleKey(), params.Scale)
	if err != nil {
		return nil, errs.Wrap(errs.Configuration, "transcription.NewPostProcessor", err, "scale")
	}
	grid, err := tonal.QuantizeGrid(params.Quantize, params.BPM)
	if err != nil {
		return nil, errs.Wrap(errs.Configuration, "transcription.NewPostProcessor", err, "quantize")
	}

	var keys *tonal.KeyEstimator
	if params.Key == tonal.KeyAuto {
		if keys, err = tonal.NewKeyEstimator(tonal.KeyProfileKrumhansl); err != nil {
			return nil, errs.Wrap(errs.Configuration, "transcription.NewPostProcessor", err, "key estimator")
		}
	}

	return &PostProcessor{
		params: params,
		scale:  scale,
		keys:   keys,
		grid:   grid,
		logger: logging.WithFields(logging.Fields{"component": "post_processor"}),
	}, nil
}

// Process cleans raw model notes. Bends are discarded.
func (pp *PostProcessor) Process(raw []notes.RawNote) (notes.Sequence, error) {
	seq, err := roundNotes(raw)
	if err != nil {
		return nil, err
	}

	seq = pp.filter(seq)
	seq.SortByStart()
	seq = pp.merge(seq)
	seq = pp.capDensity(seq)
	pp.snapToScale(seq)
	pp.quantize(seq)

	pp.logger.Debug("post-processed notes", logging.Fields{
		"raw":   len(raw),
		"final": len(seq),
	})
	return seq, nil
}

// ProcessSequence runs the same cleanup on already integer notes
func (pp *PostProcessor) ProcessSequence(seq notes.Sequence) (notes.Sequence, error) {
	return pp.Process(notes.FromSequence(seq))
}

// roundNotes clamps and rounds pitch to [0,127] and velocity to [1,127]
func roundNotes(raw []notes.RawNote) (notes.Sequence, error) {
	seq := make(notes.Sequence, 0, len(raw))
	for i, r := range raw {
		for _, v := range []float64{r.Pitch, r.Start, r.End, r.Velocity} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errs.Inputf("transcription.Process", "note %d has a non-finite field", i)
			}
		}

		seq = append(seq, notes.Note{
			Pitch:    int(common.RoundHalfEven(common.Clamp(r.Pitch, notes.MinPitch, notes.MaxPitch))),
			Start:    r.Start,
			End:      r.End,
			Velocity: int(common.Clamp(common.RoundHalfEven(r.Velocity), notes.MinVelocity, notes.MaxVelocity)),
		})
	}
	return seq, nil
}

// filter drops notes that are too short, have no length or are too quiet
func (pp *PostProcessor) filter(seq notes.Sequence) notes.Sequence {
	return slices.DeleteFunc(seq, func(n notes.Note) bool {
		d := n.Duration()
		return d <= 0 || d < pp.params.MinDuration || n.Velocity < pp.params.MinVelocity
	})
}

// merge joins a note into the previous merged note when both share a pitch
// and the gap between them is below MergeGap. Starts are never moved.
func (pp *PostProcessor) merge(seq notes.Sequence) notes.Sequence {
	merged := make(notes.Sequence, 0, len(seq))
	for _, n := range seq {
		if last := len(merged) - 1; last >= 0 &&
			merged[last].Pitch == n.Pitch &&
			n.Start-merged[last].End < pp.params.MergeGap {
			merged[last].End = max(merged[last].End, n.End)
			merged[last].Velocity = max(merged[last].Velocity, n.Velocity)
			continue
		}
		merged = append(merged, n)
	}
	return merged
}

// capDensity thins dense passages. When the overall rate exceeds
// MaxNotesPerSecond the notes are bucketed into fixed windows measured from
// the first note's start, and only the loudest notes of each window survive.
func (pp *PostProcessor) capDensity(seq notes.Sequence) notes.Sequence {
	if len(seq) == 0 {
		return seq
	}

	first := seq[0].Start
	span := seq[len(seq)-1].End - first
	if span <= 0 || float64(len(seq))/span <= pp.params.MaxNotesPerSecond {
		return seq
	}

	perWindow := int(math.Ceil(pp.params.MaxNotesPerSecond * densityWindow))

	type indexed struct {
		note  notes.Note
		order int
	}
	windows := map[int][]indexed{}
	for i, n := range seq {
		w := int(math.Floor((n.Start - first) / densityWindow))
		windows[w] = append(windows[w], indexed{note: n, order: i})
	}

	kept := make([]indexed, 0, len(seq))
	for _, bucket := range windows {
		slices.SortStableFunc(bucket, func(a, b indexed) int {
			return cmp.Compare(b.note.Velocity, a.note.Velocity)
		})
		kept = append(kept, bucket[:min(perWindow, len(bucket))]...)
	}

	slices.SortFunc(kept, func(a, b indexed) int {
		if c := cmp.Compare(a.note.Start, b.note.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})

	out := make(notes.Sequence, len(kept))
	for i, k := range kept {
		out[i] = k.note
	}

	pp.logger.Debug("capped note density", logging.Fields{
		"before":     len(seq),
		"after":      len(out),
		"per_window": perWindow,
	})
	return out
}

// snapToScale moves out-of-scale pitches to the nearest scale member. An
// estimated key is taken from the notes as they stand after the density cap.
func (pp *PostProcessor) snapToScale(seq notes.Sequence) {
	if pp.scale.IsChromatic() {
		return
	}

	scale := pp.scale
	if pp.keys != nil {
		if len(seq) == 0 {
			return
		}
		key := pp.keys.EstimateFromNotes(seq)
		scale = scale.WithRoot(tonal.RootFor(key, scale))
		pp.logger.Info("estimated key", logging.Fields{
			"key":        key.KeyName,
			"confidence": key.Confidence,
			"scale_root": tonal.KeyRootName(scale.Root),
		})
	}

	members := scale.Members()
	for i := range seq {
		seq[i].Pitch = tonal.Snap(&members, seq[i].Pitch)
	}
}

// quantize snaps start and end to the grid independently. A note that
// collapses is given one grid cell.
func (pp *PostProcessor) quantize(seq notes.Sequence) {
	if pp.grid <= 0 {
		return
	}

	for i := range seq {
		start := common.RoundHalfEven(seq[i].Start/pp.grid) * pp.grid
		end := common.RoundHalfEven(seq[i].End/pp.grid) * pp.grid
		if end <= start {
			end = start + pp.grid
		}
		seq[i].Start, seq[i].End = start, end
	}
}
