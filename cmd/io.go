package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-vox/algorithms/common"
	"github.com/RyanBlaney/sonido-vox/logging"
	"github.com/RyanBlaney/sonido-vox/midifile"
	"github.com/RyanBlaney/sonido-vox/notes"
	"github.com/RyanBlaney/sonido-vox/transcode"
)

// outputPath returns explicit when set, otherwise a fresh name in outputDir
func outputPath(explicit, prefix, ext string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	name := prefix + "-" + strings.SplitN(uuid.New().String(), "-", 2)[0] + ext
	return filepath.Join(outputDir, name), nil
}

// loadAudio reads path at its native rate, through ffmpeg when it is not PCM WAV
func loadAudio(ctx context.Context, path string) (*notes.AudioBuffer, error) {
	decCfg := transcode.DefaultDecoderConfig()
	decCfg.FFmpegPath = cfg.FFmpegPath
	decCfg.FFprobePath = cfg.FFprobePath
	decCfg.MaxDuration = cfg.MaxDuration
	decCfg.Timeout = cfg.DecodeTimeout
	decCfg.TargetSampleRate = cfg.OutputRate

	dec, err := transcode.NewDecoder(decCfg)
	if err != nil {
		return nil, err
	}
	buf, err := transcode.Load(ctx, path, dec)
	if err != nil {
		return nil, err
	}

	// ffmpeg enforces MaxDuration itself; WAV files are trimmed here
	if limit := int(cfg.MaxDuration.Seconds() * float64(buf.SampleRate)); limit > 0 && len(buf.Samples) > limit {
		logging.Warn("input truncated", logging.Fields{"path": path, "seconds": cfg.MaxDuration.Seconds()})
		buf.Samples = buf.Samples[:limit]
	}
	return buf, nil
}

// resampleTo converts buf to rate
func resampleTo(buf *notes.AudioBuffer, rate int) *notes.AudioBuffer {
	if buf.SampleRate == rate {
		return buf
	}
	interp := common.NewInterpolator(common.Linear)
	return &notes.AudioBuffer{
		Samples:    interp.ResampleSignal(buf.Samples, buf.SampleRate, rate),
		SampleRate: rate,
	}
}

// writeNotes writes seq as MIDI and, when asJSON is set, as a JSON sidecar
func writeNotes(path string, seq notes.Sequence, opts midifile.Options, asJSON bool) error {
	if err := midifile.WriteFile(path, seq, opts); err != nil {
		return err
	}
	if !asJSON {
		return nil
	}

	jsonPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
	f, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", jsonPath, err)
	}
	if err := notes.EncodeSequence(f, seq); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
