// Package notes holds the note and audio data model shared by the transcription,
// chord and sampler packages.
package notes

import (
	"fmt"
	"sort"

	"github.com/RyanBlaney/sonido-vox/errs"
)

const (
	MinPitch    = 0
	MaxPitch    = 127
	MinVelocity = 1
	MaxVelocity = 127
)

// Note is one pitched event. Times are in seconds.
type Note struct {
	Pitch    int     `json:"pitch"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Velocity int     `json:"velocity"`
}

// Duration returns End - Start
func (n Note) Duration() float64 {
	return n.End - n.Start
}

// Validate checks the pitch, velocity and timing ranges of a single note
func (n Note) Validate() error {
	if n.Pitch < MinPitch || n.Pitch > MaxPitch {
		return fmt.Errorf("pitch %d outside [%d,%d]", n.Pitch, MinPitch, MaxPitch)
	}
	if n.Velocity < MinVelocity || n.Velocity > MaxVelocity {
		return fmt.Errorf("velocity %d outside [%d,%d]", n.Velocity, MinVelocity, MaxVelocity)
	}
	if !(n.End > n.Start) {
		return fmt.Errorf("end %.4f not after start %.4f", n.End, n.Start)
	}
	if n.Start < 0 {
		return fmt.Errorf("negative start %.4f", n.Start)
	}
	return nil
}

// Sequence is an ordered list of notes
type Sequence []Note

// Validate checks every note and the start ordering
func (s Sequence) Validate() error {
	for i, n := range s {
		if err := n.Validate(); err != nil {
			return errs.Inputf("notes.Validate", "note %d: %v", i, err)
		}
		if i > 0 && n.Start < s[i-1].Start {
			return errs.Inputf("notes.Validate", "note %d starts at %.4f before note %d at %.4f",
				i, n.Start, i-1, s[i-1].Start)
		}
	}
	return nil
}

// SortByStart stable-sorts the sequence in place by start time
func (s Sequence) SortByStart() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Start < s[j].Start
	})
}

// EndTime returns the latest note end, or 0 for an empty sequence
func (s Sequence) EndTime() float64 {
	end := 0.0
	for _, n := range s {
		if n.End > end {
			end = n.End
		}
	}
	return end
}
