package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-vox/algorithms/temporal"
	"github.com/RyanBlaney/sonido-vox/algorithms/tonal"
	"github.com/RyanBlaney/sonido-vox/logging"
	"github.com/RyanBlaney/sonido-vox/midifile"
	"github.com/RyanBlaney/sonido-vox/transcription"
)

// silenceGate matches the segmenter's default RMS gate
const silenceGate = 0.01

var (
	transcribeFlags   cleanupFlags
	transcribeBacking string
)

func init() {
	transcribeFlags.register(transcribeCmd)
	transcribeCmd.Flags().StringVar(&transcribeBacking, "backing", "", "backing track used to detect the tempo when --bpm is not set")
	rootCmd.AddCommand(transcribeCmd)
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio>",
	Short: "Transcribe a monophonic vocal recording to MIDI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if transcribeBacking != "" && !cmd.Flags().Changed("bpm") {
			backing, err := loadAudio(ctx, transcribeBacking)
			if err != nil {
				return err
			}
			bpm, err := temporal.NewTempoEstimator(temporal.DefaultTempoParams()).Estimate(backing.Samples, backing.SampleRate)
			if err != nil {
				return err
			}
			logging.Info("detected tempo", logging.Fields{"bpm": bpm})
			transcribeFlags.params.BPM = bpm
		}

		buf, err := loadAudio(ctx, args[0])
		if err != nil {
			return err
		}

		if ratio := temporal.NewSilenceDetection(buf.SampleRate).SilenceRatio(buf.Samples, silenceGate); ratio > 0.95 {
			logging.Warn("input is almost entirely silent", logging.Fields{"silent_ratio": ratio})
		}

		params := transcription.DefaultParams()
		params.Analyzer.Pitch = tonal.DefaultPitchDetectionParams(cfg.AnalysisRate)
		params.Segmenter.HopSeconds = params.Analyzer.HopSeconds()
		params.PostProcess = transcribeFlags.params

		t, err := transcription.NewTranscriber(params)
		if err != nil {
			return err
		}
		result, err := t.FromAudio(buf)
		if err != nil {
			return err
		}

		out, err := outputPath(transcribeFlags.output, "transcription", ".mid")
		if err != nil {
			return err
		}
		opts := midifile.Options{
			BPM:       params.PostProcess.BPM,
			Program:   transcribeFlags.program(cmd),
			TrackName: "vocal transcription",
		}
		if err := writeNotes(out, result.Notes, opts, transcribeFlags.json); err != nil {
			return err
		}

		cmd.Printf("%s: %d notes (%d raw)\n", out, result.Stats.Final, result.Stats.Raw)
		return nil
	},
}
