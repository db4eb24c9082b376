package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-vox/algorithms/temporal"
	"github.com/RyanBlaney/sonido-vox/sampler"
)

func init() {
	rootCmd.AddCommand(pitchCmd, bpmCmd)
}

var pitchCmd = &cobra.Command{
	Use:   "pitch <sample>",
	Short: "Detect the base pitch of a sample as a MIDI note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, err := loadAudio(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		base, err := sampler.DetectBasePitch(buf, sampler.DefaultBasePitchParams())
		if err != nil {
			return err
		}
		cmd.Printf("%.2f\n", base)
		return nil
	},
}

var bpmCmd = &cobra.Command{
	Use:   "bpm <audio>",
	Short: "Estimate the tempo of a recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, err := loadAudio(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		bpm, err := temporal.NewTempoEstimator(temporal.DefaultTempoParams()).Estimate(buf.Samples, buf.SampleRate)
		if err != nil {
			return err
		}
		cmd.Printf("%.1f\n", bpm)
		return nil
	},
}
