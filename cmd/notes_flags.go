package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-vox/chords"
	"github.com/RyanBlaney/sonido-vox/transcription"
)

// cleanupFlags binds the post-processing knobs shared by transcribe and clean
type cleanupFlags struct {
	params     transcription.PostProcessParams
	instrument string
	output     string
	json       bool
}

func (f *cleanupFlags) register(cmd *cobra.Command) {
	f.params = transcription.DefaultPostProcessParams()
	f.params.BPM = cfg.BPM

	flags := cmd.Flags()
	flags.Float64Var(&f.params.MinDuration, "min-duration", f.params.MinDuration, "drop notes shorter than this many seconds")
	flags.IntVar(&f.params.MinVelocity, "min-velocity", f.params.MinVelocity, "drop notes quieter than this")
	flags.Float64Var(&f.params.MergeGap, "merge-gap", f.params.MergeGap, "merge same-pitch notes separated by less than this many seconds")
	flags.Float64Var(&f.params.MaxNotesPerSecond, "max-notes-per-second", f.params.MaxNotesPerSecond, "density cap")
	flags.StringVar(&f.params.Key, "key", f.params.Key, "scale root, e.g. C, F#, Bb, or auto to estimate it")
	flags.StringVar(&f.params.Scale, "scale", f.params.Scale, "chromatic, major, minor, blues, ...")
	flags.StringVar(&f.params.Quantize, "quantize", f.params.Quantize, "off, 1/4, 1/8, 1/16 or 1/32")
	flags.Float64Var(&f.params.BPM, "bpm", f.params.BPM, "tempo for quantizing and the MIDI header")
	flags.StringVar(&f.instrument, "instrument", cfg.Instrument, "General MIDI instrument for the output track")
	flags.StringVarP(&f.output, "out", "o", "", "output .mid path")
	flags.BoolVar(&f.json, "json", false, "also write the notes as JSON")
}

// program resolves the instrument, warning and falling back to piano
func (f *cleanupFlags) program(cmd *cobra.Command) int {
	program, ok := chords.ProgramFor(f.instrument)
	if !ok {
		cmd.PrintErrf("unknown instrument %q, using Piano\n", f.instrument)
	}
	return program
}
