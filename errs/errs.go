// Package errs classifies pipeline failures so callers can map them to a response
// without inspecting message text.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the class of a failure
type Kind int

const (
	// Unknown is returned by KindOf for errors that did not come from this package
	Unknown Kind = iota
	// Input covers malformed or empty audio, misaligned frame data and unparseable chord symbols
	Input
	// Configuration covers invalid thresholds, tempos and chord parameters
	Configuration
	// Processing covers numeric failures inside resampling or synthesis
	Processing
	// PartialFailure marks a single chord symbol skipped inside an otherwise valid progression
	PartialFailure
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Configuration:
		return "configuration"
	case Processing:
		return "processing"
	case PartialFailure:
		return "partial_failure"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Inputf returns an Input error for op
func Inputf(op, format string, args ...any) error {
	return &Error{Kind: Input, Op: op, Err: errors.Errorf(format, args...)}
}

// Configf returns a Configuration error for op
func Configf(op, format string, args ...any) error {
	return &Error{Kind: Configuration, Op: op, Err: errors.Errorf(format, args...)}
}

// Processingf returns a Processing error for op
func Processingf(op, format string, args ...any) error {
	return &Error{Kind: Processing, Op: op, Err: errors.Errorf(format, args...)}
}

// Partialf returns a PartialFailure error for op
func Partialf(op, format string, args ...any) error {
	return &Error{Kind: PartialFailure, Op: op, Err: errors.Errorf(format, args...)}
}

// Wrap classifies err under kind. A nil err yields nil. An err that is already
// classified keeps its original kind.
func Wrap(kind Kind, op string, err error, msg string) error {
	if err == nil {
		return nil
	}
	if existing := KindOf(err); existing != Unknown {
		kind = existing
	}
	return &Error{Kind: kind, Op: op, Err: errors.Wrap(err, msg)}
}

// KindOf reports the kind of the outermost classified error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err is classified as kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
