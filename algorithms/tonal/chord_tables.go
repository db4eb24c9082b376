package tonal

import (
	"cmp"
	"slices"
	"strings"
)

// NoteMap maps note names to MIDI pitches in the octave above middle C
var NoteMap = map[string]int{
	"C": 60, "C#": 61, "Db": 61,
	"D": 62, "D#": 63, "Eb": 63,
	"E": 64, "Fb": 64,
	"F": 65, "F#": 66, "Gb": 66,
	"G": 67, "G#": 68, "Ab": 68,
	"A": 69, "A#": 70, "Bb": 70,
	"B": 71, "Cb": 71,
}

// ChordIntervals maps chord quality suffixes to semitone offsets from the root
var ChordIntervals = map[string][]int{
	"maj":  {0, 4, 7},
	"":     {0, 4, 7},
	"min":  {0, 3, 7},
	"m":    {0, 3, 7},
	"dim":  {0, 3, 6},
	"aug":  {0, 4, 8},
	"7":    {0, 4, 7, 10},
	"maj7": {0, 4, 7, 11},
	"min7": {0, 3, 7, 10},
	"m7":   {0, 3, 7, 10},
	"dim7": {0, 3, 6, 9},
	"sus2": {0, 2, 7},
	"sus4": {0, 5, 7},
	"add9": {0, 4, 7, 14},
	"6":    {0, 4, 7, 9},
	"m6":   {0, 3, 7, 9},
	"9":    {0, 4, 7, 10, 14},
	"m9":   {0, 3, 7, 10, 14},
	"11":   {0, 4, 7, 10, 14, 17},
	"13":   {0, 4, 7, 10, 14, 21},
	"5":    {0, 7},
}

// qualityKeys lists ChordIntervals keys longest first, ties alphabetical
var qualityKeys = func() []string {
	keys := make([]string, 0, len(ChordIntervals))
	for k := range ChordIntervals {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return keys
}()

// SplitChordSymbol separates the root name from the quality suffix. The root
// is two characters only when the second is '#' or 'b'.
func SplitChordSymbol(symbol string) (root, quality string) {
	if len(symbol) >= 2 && (symbol[1] == '#' || symbol[1] == 'b') {
		return symbol[:2], symbol[2:]
	}
	if len(symbol) == 0 {
		return "", ""
	}
	return symbol[:1], symbol[1:]
}

// ResolveQuality returns the intervals for a quality suffix. Exact matches
// are case-insensitive; anything else falls back to minor, major seventh or
// major by prefix.
func ResolveQuality(quality string) (intervals []int, exact bool) {
	q := strings.ToLower(quality)
	for _, key := range qualityKeys {
		if q == strings.ToLower(key) {
			return slices.Clone(ChordIntervals[key]), true
		}
	}

	var key string
	switch {
	case strings.HasPrefix(q, "min") || (strings.HasPrefix(q, "m") && !strings.HasPrefix(q, "maj")):
		key = "m"
		if strings.Contains(q, "7") {
			key = "m7"
		}
	case strings.HasPrefix(q, "maj"):
		key = "maj"
		if strings.Contains(q, "7") {
			key = "maj7"
		}
	default:
		key = ""
	}
	return slices.Clone(ChordIntervals[key]), false
}
