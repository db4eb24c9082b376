// Package config reads process settings from SONIDO_* environment variables.
// They seed the CLI flag defaults; flags still win.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime configuration
type Config struct {
	LogLevel  string
	OutputDir string

	// Decoding
	FFmpegPath    string
	FFprobePath   string
	MaxDuration   time.Duration // cap on decoded input
	DecodeTimeout time.Duration

	// Analysis and rendering
	AnalysisRate int // transcription frame analysis rate
	OutputRate   int // sampler render rate
	BPM          float64
	Instrument   string
}

// Load reads configuration from environment variables with defaults
func Load() Config {
	return Config{
		LogLevel:  envStr("SONIDO_LOG_LEVEL", "info"),
		OutputDir: envStr("SONIDO_OUTPUT_DIR", "."),

		FFmpegPath:    envStr("SONIDO_FFMPEG_PATH", "ffmpeg"),
		FFprobePath:   envStr("SONIDO_FFPROBE_PATH", "ffprobe"),
		MaxDuration:   time.Duration(envInt("SONIDO_MAX_DURATION", 600)) * time.Second,
		DecodeTimeout: time.Duration(envInt("SONIDO_DECODE_TIMEOUT", 60)) * time.Second,

		AnalysisRate: envInt("SONIDO_ANALYSIS_RATE", 22050),
		OutputRate:   envInt("SONIDO_OUTPUT_RATE", 44100),
		BPM:          envFloat("SONIDO_BPM", 120),
		Instrument:   envStr("SONIDO_INSTRUMENT", "Piano"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
