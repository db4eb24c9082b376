// Package chords turns chord symbols such as "Cmaj7" or "F#m" into timed
// note events.
package chords

import (
	"strings"

	"github.com/RyanBlaney/sonido-vox/algorithms/common"
	"github.com/RyanBlaney/sonido-vox/algorithms/tonal"
	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/logging"
	"github.com/RyanBlaney/sonido-vox/notes"
)

// Pattern selects how chord tones are laid out in time
type Pattern string

const (
	// PatternBlock sounds every tone for the whole chord
	PatternBlock Pattern = "block"
	// PatternArpeggiated staggers tone onsets evenly across the first beat
	PatternArpeggiated Pattern = "arpeggiated"
)

// Limits accepted by Params.Validate
const (
	MinBPM           = 40
	MaxBPM           = 300
	MinBeatsPerChord = 1
	MaxBeatsPerChord = 16
	MaxChords        = 64
	MinOctaveShift   = -2
	MaxOctaveShift   = 2
)

// Params configures a progression
type Params struct {
	BPM           float64 `json:"bpm"`
	BeatsPerChord int     `json:"beats_per_chord"`
	Velocity      int     `json:"velocity"`
	OctaveShift   int     `json:"octave_shift"`
	Pattern       Pattern `json:"pattern"`
	Instrument    string  `json:"instrument"`
}

// DefaultParams returns four-beat block chords on piano at 120 BPM
func DefaultParams() Params {
	return Params{
		BPM:           120,
		BeatsPerChord: 4,
		Velocity:      80,
		OctaveShift:   0,
		Pattern:       PatternBlock,
		Instrument:    "Piano",
	}
}

// Validate checks every parameter range
func (p Params) Validate() error {
	const op = "chords.Params"
	switch {
	case !(p.BPM >= MinBPM && p.BPM <= MaxBPM):
		return errs.Configf(op, "bpm %v outside [%d,%d]", p.BPM, MinBPM, MaxBPM)
	case p.BeatsPerChord < MinBeatsPerChord || p.BeatsPerChord > MaxBeatsPerChord:
		return errs.Configf(op, "beats per chord %d outside [%d,%d]", p.BeatsPerChord, MinBeatsPerChord, MaxBeatsPerChord)
	case p.Velocity < notes.MinVelocity || p.Velocity > notes.MaxVelocity:
		return errs.Configf(op, "velocity %d outside [%d,%d]", p.Velocity, notes.MinVelocity, notes.MaxVelocity)
	case p.OctaveShift < MinOctaveShift || p.OctaveShift > MaxOctaveShift:
		return errs.Configf(op, "octave shift %d outside [%d,%d]", p.OctaveShift, MinOctaveShift, MaxOctaveShift)
	case p.Pattern != PatternBlock && p.Pattern != PatternArpeggiated:
		return errs.Configf(op, "unknown pattern %q", p.Pattern)
	}
	return nil
}

// SecondsPerBeat returns 60/BPM
func (p Params) SecondsPerBeat() float64 {
	return 60.0 / p.BPM
}

// SymbolResult is the outcome for one chord symbol. Err is a PartialFailure
// when the symbol was skipped; a skipped symbol still occupies its slot.
type SymbolResult struct {
	Index   int     `json:"index"`
	Symbol  string  `json:"symbol"`
	Pitches []int   `json:"pitches,omitempty"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Err     error   `json:"-"`
}

// Skipped reports whether the symbol produced no notes
func (r SymbolResult) Skipped() bool {
	return r.Err != nil
}

// Progression is a generated note sequence with per-symbol results
type Progression struct {
	Notes   notes.Sequence `json:"notes"`
	Results []SymbolResult `json:"results"`
	Program int            `json:"program"`
	BPM     float64        `json:"bpm"`
}

// Skipped returns the results for symbols that could not be parsed
func (p *Progression) Skipped() []SymbolResult {
	var skipped []SymbolResult
	for _, r := range p.Results {
		if r.Skipped() {
			skipped = append(skipped, r)
		}
	}
	return skipped
}

// ParseChord resolves a symbol to MIDI pitches around middle C. An empty
// symbol or unknown root is a PartialFailure.
func ParseChord(symbol string) ([]int, error) {
	const op = "chords.ParseChord"

	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, errs.Partialf(op, "empty chord symbol")
	}

	rootName, quality := tonal.SplitChordSymbol(symbol)
	root, ok := tonal.NoteMap[rootName]
	if !ok {
		return nil, errs.Partialf(op, "unknown root note %q in chord %q", rootName, symbol)
	}

	intervals, _ := tonal.ResolveQuality(quality)
	pitches := make([]int, len(intervals))
	for i, iv := range intervals {
		pitches[i] = root + iv
	}
	return pitches, nil
}

// Generator lays chord symbols out on a beat grid
type Generator struct {
	params Params
	logger logging.Logger
}

// NewGenerator creates a generator after validating params
func NewGenerator(params Params) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		params: params,
		logger: logging.WithFields(logging.Fields{"component": "chord_generator"}),
	}, nil
}

// Generate builds notes for symbols. Unparseable symbols are reported in the
// results and skipped; only an out-of-range chord count fails the call.
func (g *Generator) Generate(symbols []string) (*Progression, error) {
	if len(symbols) == 0 || len(symbols) > MaxChords {
		return nil, errs.Configf("chords.Generate", "chord count %d outside [1,%d]", len(symbols), MaxChords)
	}

	spb := g.params.SecondsPerBeat()
	chordDuration := float64(g.params.BeatsPerChord) * spb

	program, known := ProgramFor(g.params.Instrument)
	if !known {
		g.logger.Warn("unknown instrument, using piano", logging.Fields{"instrument": g.params.Instrument})
	}

	prog := &Progression{
		Notes:   notes.Sequence{},
		Results: make([]SymbolResult, len(symbols)),
		Program: program,
		BPM:     g.params.BPM,
	}

	for idx, symbol := range symbols {
		start := float64(idx) * chordDuration
		end := start + chordDuration
		result := SymbolResult{Index: idx, Symbol: symbol, Start: start, End: end}

		pitches, err := ParseChord(symbol)
		if err != nil {
			result.Err = err
			prog.Results[idx] = result
			g.logger.Warn("skipping chord", logging.Fields{"symbol": symbol, "error": err.Error()})
			continue
		}

		for i := range pitches {
			pitches[i] = common.Clamp(pitches[i]+g.params.OctaveShift*12, notes.MinPitch, notes.MaxPitch)
		}
		result.Pitches = pitches
		prog.Results[idx] = result

		arpDelay := spb / float64(len(pitches))
		for i, p := range pitches {
			noteStart := start
			if g.params.Pattern == PatternArpeggiated {
				noteStart = start + float64(i)*arpDelay
			}
			prog.Notes = append(prog.Notes, notes.Note{
				Pitch:    p,
				Start:    noteStart,
				End:      end,
				Velocity: g.params.Velocity,
			})
		}
	}

	g.logger.Info("generated chord progression", logging.Fields{
		"chords":  len(symbols),
		"skipped": len(prog.Skipped()),
		"notes":   len(prog.Notes),
		"pattern": string(g.params.Pattern),
	})
	return prog, nil
}
