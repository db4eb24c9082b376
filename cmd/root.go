package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-vox/config"
	"github.com/RyanBlaney/sonido-vox/logging"
)

var (
	cfg = config.Load()

	logLevel  string
	outputDir string
)

var rootCmd = &cobra.Command{
	Use:   "sonido-vox",
	Short: "Turn hummed or sung melodies into MIDI and re-voice them",
	Long: `sonido-vox transcribes a monophonic vocal recording into notes, cleans
note lists from external pitch models, generates chord progressions and
renders note sequences with a pitch-shifted sample.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetLevel(logging.ParseLevel(logLevel))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "d", cfg.OutputDir, "directory for generated files")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
