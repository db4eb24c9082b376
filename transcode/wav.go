package transcode

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/logging"
	"github.com/RyanBlaney/sonido-vox/notes"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE

	// OutputBitDepth is the bit depth of written WAV files
	OutputBitDepth = 16
)

// DecodeWAV reads integer PCM WAV data and downmixes it to mono in [-1, 1]
func DecodeWAV(r io.ReadSeeker) (*notes.AudioBuffer, error) {
	const op = "transcode.DecodeWAV"

	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, errs.Inputf(op, "not a valid wav file")
	}
	if d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatExtensible {
		return nil, errs.Inputf(op, "unsupported wav format %d", d.WavAudioFormat)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, errs.Wrap(errs.Input, op, err, "reading pcm")
	}

	channels := int(d.NumChans)
	if channels <= 0 || pcm.Format == nil {
		return nil, errs.Inputf(op, "missing channel layout")
	}
	if len(pcm.Data) < channels {
		return nil, errs.Inputf(op, "empty audio")
	}

	scale := math.Exp2(float64(d.BitDepth) - 1)
	frames := len(pcm.Data) / channels
	samples := make([]float64, frames)
	for i := range frames {
		var sum float64
		for c := range channels {
			sum += float64(pcm.Data[i*channels+c])
		}
		samples[i] = sum / float64(channels) / scale
	}

	return &notes.AudioBuffer{Samples: samples, SampleRate: int(d.SampleRate)}, nil
}

// ReadWAV decodes the WAV file at path
func ReadWAV(path string) (*notes.AudioBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.Input, "transcode.ReadWAV", err, "opening "+path)
	}
	defer f.Close()

	return DecodeWAV(f)
}

// EncodeWAV writes buf as mono 16-bit PCM. Samples outside [-1, 1] clip.
func EncodeWAV(w io.WriteSeeker, buf *notes.AudioBuffer) error {
	const op = "transcode.EncodeWAV"
	if buf == nil || buf.SampleRate <= 0 {
		return errs.Inputf(op, "audio buffer needs a positive sample rate")
	}

	maxInt := math.Exp2(OutputBitDepth-1) - 1
	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		if math.IsNaN(s) {
			return errs.Inputf(op, "non-finite sample at index %d", i)
		}
		data[i] = int(math.Round(math.Max(-1, math.Min(1, s)) * maxInt))
	}

	enc := wav.NewEncoder(w, buf.SampleRate, OutputBitDepth, 1, wavFormatPCM)
	pcm := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: OutputBitDepth,
	}
	if err := enc.Write(pcm); err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}

// WriteWAV writes buf to path
func WriteWAV(path string, buf *notes.AudioBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := EncodeWAV(f, buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads path as mono audio. PCM WAV files are read directly; anything
// else, including float WAV, goes through dec. A nil dec limits Load to WAV.
func Load(ctx context.Context, path string, dec *Decoder) (*notes.AudioBuffer, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_loader",
		"path":      path,
	})

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		buf, err := ReadWAV(path)
		if err == nil {
			logger.Debug("Read wav directly", logging.Fields{
				"sample_rate": buf.SampleRate,
				"duration":    buf.Duration(),
			})
			return buf, nil
		}
		if dec == nil {
			return nil, err
		}
		logger.Debug("Falling back to ffmpeg", logging.Fields{"reason": err.Error()})
	}

	if dec == nil {
		return nil, errs.Inputf("transcode.Load", "no decoder available for %s", filepath.Ext(path))
	}
	return dec.DecodeFile(ctx, path)
}
