package tonal

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-vox/notes"
)

// KeyAuto asks for the key to be estimated from the notes
const KeyAuto = "auto"

// KeyProfile selects the pitch-class weights keys are matched against
type KeyProfile int

const (
	KeyProfileKrumhansl KeyProfile = iota
	KeyProfileTemperley
)

// KeyMode represents major or minor mode
type KeyMode int

const (
	KeyModeMajor KeyMode = iota
	KeyModeMinor
)

var keyNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// keyProfiles holds major and minor weights, tonic first
var keyProfiles = map[KeyProfile][2][12]float64{
	// Krumhansl-Schmuckler, from listener ratings
	KeyProfileKrumhansl: {
		{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88},
		{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17},
	},
	// Temperley, corpus based
	KeyProfileTemperley: {
		{5.0, 2.0, 3.5, 2.0, 4.5, 4.0, 2.0, 4.5, 2.0, 3.5, 1.5, 4.0},
		{5.0, 2.0, 3.5, 4.5, 2.0, 4.0, 2.0, 4.5, 3.5, 2.0, 1.5, 4.0},
	},
}

// KeyCandidate is one of the 24 keys with its profile correlation
type KeyCandidate struct {
	Key     int     `json:"key"` // pitch class, 0 = C
	Mode    KeyMode `json:"mode"`
	KeyName string  `json:"key_name"`
	Score   float64 `json:"score"`
}

// KeyEstimationResult is the best key plus every candidate, best first
type KeyEstimationResult struct {
	Key        int            `json:"key"`
	Mode       KeyMode        `json:"mode"`
	KeyName    string         `json:"key_name"`
	Confidence float64        `json:"confidence"` // gap between the two best scores, in [0,1]
	Candidates []KeyCandidate `json:"candidates"`
}

// KeyEstimator matches a pitch-class distribution against key profiles
type KeyEstimator struct {
	profile [2][12]float64
}

// NewKeyEstimator creates an estimator for profile
func NewKeyEstimator(profile KeyProfile) (*KeyEstimator, error) {
	p, ok := keyProfiles[profile]
	if !ok {
		return nil, fmt.Errorf("unknown key profile %d", profile)
	}
	return &KeyEstimator{profile: p}, nil
}

// PitchClassHistogram weights each pitch class by total note duration
func PitchClassHistogram(seq notes.Sequence) [12]float64 {
	var hist [12]float64
	for _, n := range seq {
		if d := n.Duration(); d > 0 {
			hist[((n.Pitch%12)+12)%12] += d
		}
	}
	return hist
}

// Estimate correlates hist with all 24 rotated profiles. A flat or empty
// histogram has no defined correlation and yields C major with zero
// confidence.
func (ke *KeyEstimator) Estimate(hist [12]float64) KeyEstimationResult {
	candidates := make([]KeyCandidate, 0, 24)
	rotated := make([]float64, 12)
	for mode, profile := range ke.profile {
		for key := range 12 {
			for pc := range 12 {
				rotated[pc] = profile[(pc-key+12)%12]
			}
			score := stat.Correlation(hist[:], rotated, nil)
			if math.IsNaN(score) {
				score = math.Inf(-1)
			}
			candidates = append(candidates, KeyCandidate{
				Key:     key,
				Mode:    KeyMode(mode),
				KeyName: GetKeyName(key, KeyMode(mode)),
				Score:   score,
			})
		}
	}

	// stable, so ties keep major before minor and lower pitch classes first
	slices.SortStableFunc(candidates, func(a, b KeyCandidate) int {
		return cmp.Compare(b.Score, a.Score)
	})

	best := candidates[0]
	result := KeyEstimationResult{
		Key:        best.Key,
		Mode:       best.Mode,
		KeyName:    best.KeyName,
		Candidates: candidates,
	}
	if !math.IsInf(best.Score, -1) {
		result.Confidence = math.Max(0, math.Min(1, (best.Score-candidates[1].Score)/2))
	}
	return result
}

// EstimateFromNotes estimates the key of seq from its duration-weighted
// pitch classes
func (ke *KeyEstimator) EstimateFromNotes(seq notes.Sequence) KeyEstimationResult {
	return ke.Estimate(PitchClassHistogram(seq))
}

// GetKeyName returns a name such as "F# minor"
func GetKeyName(key int, mode KeyMode) string {
	name := keyNames[((key%12)+12)%12]
	if mode == KeyModeMajor {
		return name + " major"
	}
	return name + " minor"
}

// KeyRootName returns the sharp spelling of pitch class key, accepted by NewScaleSpec
func KeyRootName(key int) string {
	return keyNames[((key%12)+12)%12]
}

// GetRelativeKey returns the relative minor of a major key and vice versa
func GetRelativeKey(key int, mode KeyMode) (int, KeyMode) {
	if mode == KeyModeMajor {
		return (key + 9) % 12, KeyModeMinor
	}
	return (key + 3) % 12, KeyModeMajor
}

// RootFor returns the scale root matching an estimated key. Minor-flavored
// scales take the minor tonic, everything else the major one.
func RootFor(result KeyEstimationResult, scale ScaleSpec) int {
	wantMinor := scale.IsMinor()
	if (result.Mode == KeyModeMinor) == wantMinor {
		return result.Key
	}
	key, _ := GetRelativeKey(result.Key, result.Mode)
	return key
}
