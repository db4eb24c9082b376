package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-vox/chords"
	"github.com/RyanBlaney/sonido-vox/midifile"
)

var (
	chordParams = chords.DefaultParams()
	chordOutput string
	chordSample string
	chordVoice  voiceFlags
)

func init() {
	chordParams.BPM = cfg.BPM
	chordParams.Instrument = cfg.Instrument

	flags := chordsCmd.Flags()
	flags.Float64Var(&chordParams.BPM, "bpm", chordParams.BPM, "tempo")
	flags.IntVar(&chordParams.BeatsPerChord, "beats", chordParams.BeatsPerChord, "beats per chord")
	flags.IntVar(&chordParams.Velocity, "velocity", chordParams.Velocity, "note velocity")
	flags.IntVar(&chordParams.OctaveShift, "octave", chordParams.OctaveShift, "octave shift, -2 to 2")
	flags.StringVar((*string)(&chordParams.Pattern), "pattern", string(chordParams.Pattern), "block or arpeggiated")
	flags.StringVar(&chordParams.Instrument, "instrument", chordParams.Instrument, "General MIDI instrument")
	flags.StringVarP(&chordOutput, "out", "o", "", "output .mid path")
	flags.StringVar(&chordSample, "sample", "", "also render the progression with this audio sample")
	chordVoice.register(chordsCmd)
	rootCmd.AddCommand(chordsCmd)
}

var chordsCmd = &cobra.Command{
	Use:   "chords <symbol>...",
	Short: "Generate a chord progression as MIDI",
	Long: `Lays chord symbols such as "Cmaj7 Am7 Dm7 G7" out on a beat grid.
Symbols may be given as separate arguments or in one comma or space
separated argument. Unparseable symbols are reported and left silent.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := chords.NewGenerator(chordParams)
		if err != nil {
			return err
		}
		prog, err := gen.Generate(splitSymbols(args))
		if err != nil {
			return err
		}
		for _, r := range prog.Skipped() {
			cmd.PrintErrf("skipped chord %d %q: %v\n", r.Index+1, r.Symbol, r.Err)
		}

		out, err := outputPath(chordOutput, "chords", ".mid")
		if err != nil {
			return err
		}
		opts := midifile.Options{BPM: prog.BPM, Program: prog.Program, TrackName: "chords"}
		if err := midifile.WriteFile(out, prog.Notes, opts); err != nil {
			return err
		}
		cmd.Printf("%s: %d notes\n", out, len(prog.Notes))

		if chordSample != "" {
			wavOut := strings.TrimSuffix(out, ".mid") + ".wav"
			if _, err := renderSequence(cmd, prog.Notes, chordSample, chordVoice, wavOut, "chords"); err != nil {
				return err
			}
			cmd.Printf("%s: rendered\n", wavOut)
		}
		return nil
	},
}

// splitSymbols accepts separate arguments as well as comma or space
// separated lists
func splitSymbols(args []string) []string {
	var symbols []string
	for _, arg := range args {
		for _, s := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			symbols = append(symbols, s)
		}
	}
	return symbols
}
