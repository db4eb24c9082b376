package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-vox/midifile"
	"github.com/RyanBlaney/sonido-vox/notes"
	"github.com/RyanBlaney/sonido-vox/transcription"
)

var cleanFlags cleanupFlags

func init() {
	cleanFlags.register(cleanCmd)
	rootCmd.AddCommand(cleanCmd)
}

var cleanCmd = &cobra.Command{
	Use:   "clean <notes.json>",
	Short: "Clean a raw note list from an external pitch model and write MIDI",
	Long: `Reads a JSON array of {pitch, start, end, velocity} objects, or a
document with a "notes" array, and runs the note cleanup stages on it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := notes.ReadRawNotes(args[0])
		if err != nil {
			return err
		}

		params := transcription.DefaultParams()
		params.PostProcess = cleanFlags.params
		t, err := transcription.NewTranscriber(params)
		if err != nil {
			return err
		}
		result, err := t.FromRawNotes(raw)
		if err != nil {
			return err
		}

		out, err := outputPath(cleanFlags.output, "cleaned", ".mid")
		if err != nil {
			return err
		}
		opts := midifile.Options{
			BPM:       params.PostProcess.BPM,
			Program:   cleanFlags.program(cmd),
			TrackName: "cleaned notes",
		}
		if err := writeNotes(out, result.Notes, opts, cleanFlags.json); err != nil {
			return err
		}

		cmd.Printf("%s: %d notes (%d raw)\n", out, result.Stats.Final, result.Stats.Raw)
		return nil
	},
}
