package chords

// DrumKit marks the percussion kit in InstrumentPrograms. It is not a valid
// General MIDI program; writers route it to the percussion channel instead.
const DrumKit = 128

// InstrumentPrograms maps instrument names to General MIDI programs
var InstrumentPrograms = map[string]int{
	"Piano":          0,
	"Electric Piano": 4,
	"Harpsichord":    6,

	"Strings": 48,
	"Violin":  40,
	"Cello":   42,

	"Trumpet":     56,
	"Trombone":    57,
	"French Horn": 60,

	"Flute":     73,
	"Saxophone": 65,
	"Clarinet":  71,

	"Synth":      80,
	"Synth Pad":  89,
	"Synth Lead": 81,

	"Bass":          33,
	"Acoustic Bass": 32,

	"Guitar":          24,
	"Electric Guitar": 27,

	"Organ": 19,
	"Drums": DrumKit,
}

// ProgramFor returns the program for instrument. Unknown names map to the
// acoustic grand piano and report false.
func ProgramFor(instrument string) (int, bool) {
	program, ok := InstrumentPrograms[instrument]
	return program, ok
}
