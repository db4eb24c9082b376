package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger() (*DefaultLogger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewWriterLogger(&out, &errOut, false), &out, &errOut
}

func TestLevelsRouteToWriters(t *testing.T) {
	logger, out, errOut := newTestLogger()

	logger.Info("segmented frames", Fields{"notes": 3})
	logger.Warn("no voiced frames")
	logger.Error(errors.New("boom"), "render failed")

	assert.Contains(t, out.String(), "[INFO] segmented frames notes=3")
	assert.Contains(t, errOut.String(), "[WARN] no voiced frames")
	assert.Contains(t, errOut.String(), "[ERROR] render failed: boom")
}

func TestLevelFiltering(t *testing.T) {
	logger, out, _ := newTestLogger()

	logger.Debug("hidden")
	assert.Empty(t, out.String())

	logger.SetLevel(DebugLevel)
	logger.Debug("shown")
	assert.Contains(t, out.String(), "[DEBUG] shown")
}

func TestChildSharesLevelAndMergesFields(t *testing.T) {
	logger, out, _ := newTestLogger()
	child := logger.WithFields(Fields{"component": "sampler"})

	logger.SetLevel(WarnLevel)
	child.Info("dropped")
	assert.Empty(t, out.String())

	logger.SetLevel(InfoLevel)
	child.Info("rendered", Fields{"notes": 2})
	assert.Contains(t, out.String(), "component=sampler notes=2")
}

func TestWithContextFields(t *testing.T) {
	logger, out, _ := newTestLogger()
	ctx := ContextWithFields(context.Background(), Fields{"request": "abc"})

	logger.WithContext(ctx).Info("hello")
	assert.Contains(t, out.String(), "request=abc")

	assert.Same(t, logger, logger.WithContext(context.Background()))
}

func TestFatalUsesExitHook(t *testing.T) {
	logger, _, errOut := newTestLogger()
	code := -1
	logger.exit = func(c int) { code = c }

	logger.Fatal(errors.New("bad"), "giving up")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "[FATAL] giving up: bad")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"))
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	_, ok := GetGlobalLogger().(*NoOpLogger)
	assert.True(t, ok)
}
