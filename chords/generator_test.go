package chords

import (
	"testing"

	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/notes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pitchesOf(seq notes.Sequence) []int {
	out := make([]int, len(seq))
	for i, n := range seq {
		out[i] = n.Pitch
	}
	return out
}

func TestParseChord(t *testing.T) {
	cases := []struct {
		symbol  string
		pitches []int
	}{
		{"Cmaj7", []int{60, 64, 67, 71}},
		{"Am", []int{69, 72, 76}},
		{"F#dim", []int{66, 69, 72}},
		{"Bb7", []int{70, 74, 77, 80}},
		{"G", []int{67, 71, 74}},
		{"Ebsus4", []int{63, 68, 70}},
		{"Cb", []int{71, 75, 78}},
		{" D5 ", []int{62, 69}},
		{"Emin9add", []int{64, 67, 71}},
	}

	for _, c := range cases {
		t.Run(c.symbol, func(t *testing.T) {
			got, err := ParseChord(c.symbol)
			require.NoError(t, err)
			assert.Equal(t, c.pitches, got)
		})
	}
}

func TestParseChordUnknownRoot(t *testing.T) {
	for _, symbol := range []string{"H7", "", "   ", "xm"} {
		_, err := ParseChord(symbol)
		require.Error(t, err, symbol)
		assert.True(t, errs.Is(err, errs.PartialFailure), symbol)
	}
}

func newTestGenerator(t *testing.T, mutate func(*Params)) *Generator {
	t.Helper()
	params := DefaultParams()
	if mutate != nil {
		mutate(&params)
	}
	g, err := NewGenerator(params)
	require.NoError(t, err)
	return g
}

func TestGenerateBlock(t *testing.T) {
	g := newTestGenerator(t, nil)

	prog, err := g.Generate([]string{"C", "Am"})
	require.NoError(t, err)

	require.Len(t, prog.Notes, 6)
	for _, n := range prog.Notes[:3] {
		assert.Equal(t, 0.0, n.Start)
		assert.Equal(t, 2.0, n.End)
		assert.Equal(t, 80, n.Velocity)
	}
	for _, n := range prog.Notes[3:] {
		assert.Equal(t, 2.0, n.Start)
		assert.Equal(t, 4.0, n.End)
	}
	assert.Equal(t, []int{60, 64, 67, 69, 72, 76}, pitchesOf(prog.Notes))
	assert.NoError(t, prog.Notes.Validate())
	assert.Equal(t, 0, prog.Program)
}

func TestGenerateArpeggiated(t *testing.T) {
	g := newTestGenerator(t, func(p *Params) {
		p.Pattern = PatternArpeggiated
		p.BPM = 60
		p.BeatsPerChord = 2
	})

	prog, err := g.Generate([]string{"Cmaj7"})
	require.NoError(t, err)

	require.Len(t, prog.Notes, 4)
	for i, n := range prog.Notes {
		assert.InDelta(t, float64(i)*0.25, n.Start, 1e-12)
		assert.Equal(t, 2.0, n.End)
	}
}

func TestGenerateSkipsUnknownRootButKeepsSlot(t *testing.T) {
	g := newTestGenerator(t, nil)

	prog, err := g.Generate([]string{"C", "H7", "G"})
	require.NoError(t, err)

	skipped := prog.Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, 1, skipped[0].Index)
	assert.Equal(t, "H7", skipped[0].Symbol)
	assert.True(t, errs.Is(skipped[0].Err, errs.PartialFailure))

	require.Len(t, prog.Notes, 6)
	assert.Equal(t, 4.0, prog.Notes[3].Start, "G keeps the third slot")
	assert.Equal(t, []int{67, 71, 74}, prog.Results[2].Pitches)
}

func TestGenerateOctaveShiftClamps(t *testing.T) {
	g := newTestGenerator(t, func(p *Params) { p.OctaveShift = -2 })

	prog, err := g.Generate([]string{"C"})
	require.NoError(t, err)
	assert.Equal(t, []int{36, 40, 43}, pitchesOf(prog.Notes))

	prog, err = newTestGenerator(t, func(p *Params) { p.OctaveShift = 2 }).Generate([]string{"B13"})
	require.NoError(t, err)
	for _, p := range pitchesOf(prog.Notes) {
		assert.LessOrEqual(t, p, 127)
	}
	assert.Equal(t, 116, pitchesOf(prog.Notes)[5])
}

func TestGenerateChordCount(t *testing.T) {
	g := newTestGenerator(t, nil)

	_, err := g.Generate(nil)
	assert.True(t, errs.Is(err, errs.Configuration))

	_, err = g.Generate(make([]string, MaxChords+1))
	assert.True(t, errs.Is(err, errs.Configuration))

	prog, err := g.Generate(make([]string, MaxChords))
	require.NoError(t, err)
	assert.Len(t, prog.Skipped(), MaxChords)
	assert.Empty(t, prog.Notes)
}

func TestParamsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"bpm low", func(p *Params) { p.BPM = 39 }},
		{"bpm high", func(p *Params) { p.BPM = 301 }},
		{"beats", func(p *Params) { p.BeatsPerChord = 17 }},
		{"velocity", func(p *Params) { p.Velocity = 0 }},
		{"octave", func(p *Params) { p.OctaveShift = 3 }},
		{"pattern", func(p *Params) { p.Pattern = "strum" }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := DefaultParams()
			c.mutate(&p)
			_, err := NewGenerator(p)
			assert.True(t, errs.Is(err, errs.Configuration))
		})
	}
}

func TestProgramFor(t *testing.T) {
	program, ok := ProgramFor("Strings")
	assert.True(t, ok)
	assert.Equal(t, 48, program)

	program, ok = ProgramFor("Theremin")
	assert.False(t, ok)
	assert.Equal(t, 0, program)

	g := newTestGenerator(t, func(p *Params) { p.Instrument = "Flute" })
	prog, err := g.Generate([]string{"C"})
	require.NoError(t, err)
	assert.Equal(t, 73, prog.Program)
}
