// Package transcode moves audio between files and notes.AudioBuffer. WAV is
// handled natively; everything else goes through ffmpeg.
package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/logging"
	"github.com/RyanBlaney/sonido-vox/notes"
)

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"`
	MaxDuration      time.Duration `json:"max_duration"`     // 0 decodes everything
	ResampleQuality  string        `json:"resample_quality"` // "fast", "medium", "high"
	FFmpegPath       string        `json:"ffmpeg_path"`
	FFprobePath      string        `json:"ffprobe_path"`
	Timeout          time.Duration `json:"timeout"`

	EnableNormalization bool    `json:"enable_normalization"`
	NormalizationMethod string  `json:"normalization_method"` // "loudnorm", "dynaudnorm"
	TargetLUFS          float64 `json:"target_lufs"`
	TargetPeak          float64 `json:"target_peak"`
	LoudnessRange       float64 `json:"loudness_range"`
}

// DefaultDecoderConfig decodes to mono at 44.1 kHz without loudness
// normalization, which would move the silence gate.
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate:    44100,
		MaxDuration:         10 * time.Minute,
		ResampleQuality:     "medium",
		FFmpegPath:          "ffmpeg",
		FFprobePath:         "ffprobe",
		Timeout:             60 * time.Second,
		EnableNormalization: false,
		NormalizationMethod: "loudnorm",
		TargetLUFS:          -16.0,
		TargetPeak:          -1.0,
		LoudnessRange:       8.0,
	}
}

// Validate checks the numeric fields. It does not look for the binaries.
func (c *DecoderConfig) Validate() error {
	const op = "transcode.DecoderConfig"
	if c.TargetSampleRate <= 0 {
		return errs.Configf(op, "target sample rate must be positive: %d", c.TargetSampleRate)
	}
	if c.MaxDuration < 0 {
		return errs.Configf(op, "max duration must not be negative: %v", c.MaxDuration)
	}
	if c.Timeout <= 0 {
		return errs.Configf(op, "timeout must be positive: %v", c.Timeout)
	}
	switch c.ResampleQuality {
	case "", "fast", "medium", "high":
	default:
		return errs.Configf(op, "unknown resample quality %q", c.ResampleQuality)
	}
	return nil
}

// AudioMetadata holds detected audio properties from ffprobe
type AudioMetadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
	Bitrate    int     `json:"bitrate"`
	Format     string  `json:"format"`
}

// Decoder turns compressed audio into mono PCM using ffmpeg
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a decoder. A nil config selects the defaults.
func NewDecoder(config *DecoderConfig) (*Decoder, error) {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{"component": "audio_decoder"}),
	}, nil
}

// DecodeFile probes and decodes filename
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (*notes.AudioBuffer, error) {
	logger := d.logger.WithFields(logging.Fields{"filename": filename})
	logger.Debug("Starting audio file decode")

	metadata, err := d.probe(ctx, filename, nil)
	if err != nil {
		return nil, err
	}
	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": metadata.SampleRate,
		"input_channels":    metadata.Channels,
		"input_codec":       metadata.Codec,
		"input_duration":    metadata.Duration,
	})

	return d.run(ctx, filename, nil, metadata, logger)
}

// DecodeReader decodes audio read fully from r
func (d *Decoder) DecodeReader(ctx context.Context, r io.Reader) (*notes.AudioBuffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.Input, "transcode.DecodeReader", err, "reading audio")
	}
	if len(data) == 0 {
		return nil, errs.Inputf("transcode.DecodeReader", "empty audio data")
	}

	metadata, err := d.probe(ctx, "pipe:0", data)
	if err != nil {
		return nil, err
	}
	return d.run(ctx, "pipe:0", data, metadata, d.logger)
}

// probe runs ffprobe on input, feeding stdin when input is a pipe
func (d *Decoder) probe(ctx context.Context, input string, stdin []byte) (*AudioMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.config.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		input,
	)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return nil, errs.Inputf("transcode.probe", "ffprobe failed: %v, stderr: %s", err, string(exitError.Stderr))
		}
		return nil, errs.Wrap(errs.Processing, "transcode.probe", err, "running ffprobe")
	}
	return parseFFprobeOutput(output)
}

// parseFFprobeOutput parses ffprobe JSON to extract audio metadata
func parseFFprobeOutput(jsonData []byte) (*AudioMetadata, error) {
	const op = "transcode.probe"
	var probe struct {
		Streams []struct {
			CodecType     string `json:"codec_type"`
			CodecName     string `json:"codec_name"`
			SampleRate    string `json:"sample_rate"`
			Channels      int    `json:"channels"`
			Duration      string `json:"duration"`
			BitRate       string `json:"bit_rate"`
			CodecLongName string `json:"codec_long_name"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, errs.Wrap(errs.Input, op, err, "parsing ffprobe output")
	}
	if len(probe.Streams) == 0 {
		return nil, errs.Inputf(op, "no audio streams found")
	}

	stream := probe.Streams[0]
	if stream.CodecType != "audio" {
		return nil, errs.Inputf(op, "stream is not audio type: %s", stream.CodecType)
	}
	if stream.Channels <= 0 || stream.Channels > 8 {
		return nil, errs.Inputf(op, "invalid channel count: %d", stream.Channels)
	}

	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil {
		sampleRate = 44100
	}
	duration, _ := strconv.ParseFloat(stream.Duration, 64)
	bitrate, _ := strconv.Atoi(stream.BitRate)

	return &AudioMetadata{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
		Duration:   duration,
		Bitrate:    bitrate,
		Format:     stream.CodecLongName,
	}, nil
}

func (d *Decoder) run(ctx context.Context, input string, stdin []byte, metadata *AudioMetadata, logger logging.Logger) (*notes.AudioBuffer, error) {
	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	args := append([]string{"-i", input}, d.buildFFmpegArgs(metadata)...)
	args = append(args, "pipe:1")

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	logger.Debug("Running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			logger.Error(err, "Ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
		}
		return nil, errs.Wrap(errs.Processing, "transcode.Decode", err, "ffmpeg decode failed")
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, errs.Inputf("transcode.Decode", "no audio samples decoded")
	}

	buf := &notes.AudioBuffer{Samples: samples, SampleRate: d.config.TargetSampleRate}
	logger.Debug("FFmpeg decode completed", logging.Fields{
		"input_sample_rate":  metadata.SampleRate,
		"input_channels":     metadata.Channels,
		"output_samples":     len(samples),
		"output_sample_rate": buf.SampleRate,
		"output_duration":    buf.Duration(),
	})
	return buf, nil
}

// buildFFmpegArgs builds the output arguments: mono float64 at the target rate
func (d *Decoder) buildFFmpegArgs(metadata *AudioMetadata) []string {
	args := []string{
		"-f", "f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(d.config.TargetSampleRate),
	}

	var filters []string
	if d.config.ResampleQuality != "" && metadata.SampleRate != d.config.TargetSampleRate {
		switch d.config.ResampleQuality {
		case "fast":
			filters = append(filters, "aresample=resampler=soxr:precision=16")
		case "medium":
			filters = append(filters, "aresample=resampler=soxr:precision=20")
		case "high":
			filters = append(filters, "aresample=resampler=soxr:precision=28")
		}
	}
	if d.config.EnableNormalization {
		if f := d.buildNormalizationFilter(); f != "" {
			filters = append(filters, f)
		}
	}
	if len(filters) > 0 {
		args = append(args, "-af", strings.Join(filters, ","))
	}

	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}

	return append(args, "-v", "error")
}

func (d *Decoder) buildNormalizationFilter() string {
	switch d.config.NormalizationMethod {
	case "loudnorm":
		return fmt.Sprintf("loudnorm=I=%.1f:TP=%.1f:LRA=%.1f",
			d.config.TargetLUFS,
			d.config.TargetPeak,
			d.config.LoudnessRange)
	case "dynaudnorm":
		return "dynaudnorm=p=0.95:m=10:s=12"
	default:
		return ""
	}
}

// bytesToFloat64 converts raw little-endian float64 bytes, dropping a partial tail
func bytesToFloat64(data []byte) []float64 {
	data = data[:len(data)-len(data)%8]
	if len(data) == 0 {
		return nil
	}

	samples := make([]float64, len(data)/8)
	for i := range samples {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}
	return samples
}

// CheckAvailability reports whether the ffmpeg and ffprobe binaries run
func (d *Decoder) CheckAvailability() error {
	if err := exec.Command(d.config.FFmpegPath, "-version").Run(); err != nil {
		return fmt.Errorf("ffmpeg not found at %s: %w", d.config.FFmpegPath, err)
	}
	if err := exec.Command(d.config.FFprobePath, "-version").Run(); err != nil {
		return fmt.Errorf("ffprobe not found at %s: %w", d.config.FFprobePath, err)
	}
	return nil
}
