package errs

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryKind(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{Inputf("decode", "empty audio"), Input},
		{Configf("quantize", "bpm must be positive, got %v", 0.0), Configuration},
		{Processingf("shift", "ratio out of range"), Processing},
		{Partialf("chord", "unknown root %q", "H"), PartialFailure},
	}

	for _, c := range cases {
		t.Run(c.kind.String(), func(t *testing.T) {
			assert.Equal(t, c.kind, KindOf(c.err))
			assert.True(t, Is(c.err, c.kind))
		})
	}
}

func TestKindSurvivesFmtWrapping(t *testing.T) {
	inner := Configf("quantize", "bpm must be positive")
	outer := fmt.Errorf("transcribe: %w", inner)

	assert.Equal(t, Configuration, KindOf(outer))
}

func TestWrapKeepsExistingKind(t *testing.T) {
	inner := Inputf("segment", "misaligned frames")
	wrapped := Wrap(Processing, "transcribe", inner, "pipeline failed")

	assert.Equal(t, Input, KindOf(wrapped))
	assert.Contains(t, wrapped.Error(), "misaligned frames")
}

func TestWrapClassifiesForeignErrors(t *testing.T) {
	wrapped := Wrap(Input, "read", io.ErrUnexpectedEOF, "reading sample")

	assert.Equal(t, Input, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, io.ErrUnexpectedEOF)
	assert.Nil(t, Wrap(Input, "read", nil, "nothing"))
}

func TestUnknownForPlainErrors(t *testing.T) {
	assert.Equal(t, Unknown, KindOf(io.EOF))
	assert.False(t, Is(nil, Input))
}
