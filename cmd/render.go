package cmd

import (
	"math"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-vox/midifile"
	"github.com/RyanBlaney/sonido-vox/notes"
	"github.com/RyanBlaney/sonido-vox/sampler"
	"github.com/RyanBlaney/sonido-vox/transcode"
)

var (
	renderVoice  voiceFlags
	renderOutput string
)

func init() {
	renderVoice.register(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "output .wav path")
	rootCmd.AddCommand(renderCmd)
}

// voiceFlags binds the sample voicing knobs shared by render and chords --sample
type voiceFlags struct {
	basePitch float64
	trim      float64
}

func (f *voiceFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64Var(&f.basePitch, "base-pitch", math.NaN(), "MIDI pitch of the sample; detected when unset")
	flags.Float64Var(&f.trim, "trim", 0, "drop sample lead-in quieter than this amplitude; 0 keeps it")
}

// voice builds the sampler voice, detecting the base pitch when none was given
func (f voiceFlags) voice(sample *notes.AudioBuffer) (*sampler.Voice, error) {
	var (
		voice *sampler.Voice
		err   error
	)
	if math.IsNaN(f.basePitch) {
		voice, err = sampler.DetectVoice(sample, sampler.DefaultBasePitchParams())
	} else {
		voice, err = sampler.NewVoice(sample, f.basePitch)
	}
	if err != nil {
		return nil, err
	}
	if f.trim > 0 {
		voice = voice.TrimLeadingSilence(f.trim)
	}
	return voice, nil
}

var renderCmd = &cobra.Command{
	Use:   "render <notes.mid> <sample>",
	Short: "Render a MIDI file with a pitch-shifted audio sample",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, _, err := midifile.ReadFile(args[0])
		if err != nil {
			return err
		}

		out, err := renderSequence(cmd, seq, args[1], renderVoice, renderOutput, "render")
		if err != nil {
			return err
		}
		cmd.Printf("%s: %d notes\n", out, len(seq))
		return nil
	},
}

// renderSequence voices seq with the sample at samplePath and writes a WAV
func renderSequence(cmd *cobra.Command, seq notes.Sequence, samplePath string, vf voiceFlags, explicitOut, prefix string) (string, error) {
	sample, err := loadAudio(cmd.Context(), samplePath)
	if err != nil {
		return "", err
	}

	params := sampler.DefaultCompositorParams()
	params.SampleRate = cfg.OutputRate
	sample = resampleTo(sample, params.SampleRate)

	voice, err := vf.voice(sample)
	if err != nil {
		return "", err
	}

	comp, err := sampler.NewCompositor(params, nil)
	if err != nil {
		return "", err
	}
	rendered, err := comp.Render(seq, voice)
	if err != nil {
		return "", err
	}

	out, err := outputPath(explicitOut, prefix, ".wav")
	if err != nil {
		return "", err
	}
	if err := transcode.WriteWAV(out, rendered); err != nil {
		return "", err
	}
	return out, nil
}
