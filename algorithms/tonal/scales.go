package tonal

import (
	"fmt"
	"slices"
	"strings"
)

// Chromatic is the scale name that disables scale snapping
const Chromatic = "chromatic"

// QuantizeOff disables time quantization
const QuantizeOff = "off"

// maxSnapDistance bounds the semitone search when snapping to a scale
const maxSnapDistance = 6

// KeyPitchClasses maps key names to pitch classes (C = 0)
var KeyPitchClasses = map[string]int{
	"C": 0, "C#": 1, "Db": 1,
	"D": 2, "D#": 3, "Eb": 3,
	"E": 4, "Fb": 4, "E#": 5,
	"F": 5, "F#": 6, "Gb": 6,
	"G": 7, "G#": 8, "Ab": 8,
	"A": 9, "A#": 10, "Bb": 10,
	"B": 11, "Cb": 11, "B#": 0,
}

// ScaleIntervals maps scale names to semitone offsets from the root
var ScaleIntervals = map[string][]int{
	Chromatic:          {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	"major":            {0, 2, 4, 5, 7, 9, 11},
	"minor":            {0, 2, 3, 5, 7, 8, 10},
	"harmonic_minor":   {0, 2, 3, 5, 7, 8, 11},
	"pentatonic_major": {0, 2, 4, 7, 9},
	"pentatonic_minor": {0, 3, 5, 7, 10},
	"blues":            {0, 3, 5, 6, 7, 10},
	"dorian":           {0, 2, 3, 5, 7, 9, 10},
	"mixolydian":       {0, 2, 4, 5, 7, 9, 10},
}

// QuantizeSubdivisions maps grid names to subdivisions per beat
var QuantizeSubdivisions = map[string]int{
	"1/4":  1,
	"1/8":  2,
	"1/16": 4,
	"1/32": 8,
}

// ScaleSpec is a root pitch class plus an interval pattern
type ScaleSpec struct {
	Name      string `json:"name"`
	Root      int    `json:"root"`
	Intervals []int  `json:"intervals"`
}

// NewScaleSpec looks up key and scale by name. Scale names are matched
// case-insensitively.
func NewScaleSpec(key, scale string) (ScaleSpec, error) {
	root, ok := KeyPitchClasses[strings.TrimSpace(key)]
	if !ok {
		return ScaleSpec{}, fmt.Errorf("unknown key %q", key)
	}

	name := strings.ToLower(strings.TrimSpace(scale))
	intervals, ok := ScaleIntervals[name]
	if !ok {
		return ScaleSpec{}, fmt.Errorf("unknown scale %q", scale)
	}

	return ScaleSpec{Name: name, Root: root, Intervals: slices.Clone(intervals)}, nil
}

// IsChromatic reports whether every pitch class is a member
func (s ScaleSpec) IsChromatic() bool {
	return s.Name == Chromatic || len(s.Intervals) == 12
}

// IsMinor reports whether the scale has a minor third and no major third
func (s ScaleSpec) IsMinor() bool {
	return slices.Contains(s.Intervals, 3) && !slices.Contains(s.Intervals, 4)
}

// WithRoot returns a copy of s rooted at pitch class root
func (s ScaleSpec) WithRoot(root int) ScaleSpec {
	s.Root = ((root % 12) + 12) % 12
	s.Intervals = slices.Clone(s.Intervals)
	return s
}

// Members expands the scale over all 128 MIDI pitches
func (s ScaleSpec) Members() [128]bool {
	var classes [12]bool
	for _, iv := range s.Intervals {
		classes[((s.Root+iv)%12+12)%12] = true
	}

	var members [128]bool
	for p := range members {
		members[p] = classes[p%12]
	}
	return members
}

// Snap moves pitch to the nearest member, checking +d before -d for
// d = 1..6. Pitches already in the scale, or with no member in reach, are
// returned unchanged.
func Snap(members *[128]bool, pitch int) int {
	if pitch < 0 || pitch > 127 || members[pitch] {
		return pitch
	}

	for d := 1; d <= maxSnapDistance; d++ {
		if up := pitch + d; up <= 127 && members[up] {
			return up
		}
		if down := pitch - d; down >= 0 && members[down] {
			return down
		}
	}
	return pitch
}

// QuantizeGrid returns the grid cell in seconds for the named grid at bpm,
// or 0 for "off"
func QuantizeGrid(name string, bpm float64) (float64, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == QuantizeOff || name == "" {
		return 0, nil
	}

	subdivisions, ok := QuantizeSubdivisions[name]
	if !ok {
		return 0, fmt.Errorf("unknown quantize grid %q", name)
	}
	if bpm <= 0 {
		return 0, fmt.Errorf("bpm must be positive to quantize, got %v", bpm)
	}
	return 60.0 / bpm / float64(subdivisions), nil
}
