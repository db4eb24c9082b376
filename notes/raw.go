package notes

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/RyanBlaney/sonido-vox/errs"
)

// RawNote is a note as emitted by an external transcription model: continuous
// pitch, a floating velocity and optional pitch-bend samples. Bends are dropped
// by the post-processor.
type RawNote struct {
	Pitch    float64   `json:"pitch"`
	Start    float64   `json:"start"`
	End      float64   `json:"end"`
	Velocity float64   `json:"velocity"`
	Bends    []float64 `json:"bends,omitempty"`
}

// RawNoteFile is the JSON document read by ReadRawNotes
type RawNoteFile struct {
	Notes []RawNote `json:"notes"`
}

// FromSequence lifts integer notes into raw notes so both paths share the post-processor
func FromSequence(seq Sequence) []RawNote {
	out := make([]RawNote, len(seq))
	for i, n := range seq {
		out[i] = RawNote{
			Pitch:    float64(n.Pitch),
			Start:    n.Start,
			End:      n.End,
			Velocity: float64(n.Velocity),
		}
	}
	return out
}

// DecodeRawNotes parses either a bare JSON array of raw notes or a {"notes": [...]} document
func DecodeRawNotes(r io.Reader) ([]RawNote, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.Input, "notes.DecodeRawNotes", err, "reading raw notes")
	}

	var list []RawNote
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var doc RawNoteFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.Input, "notes.DecodeRawNotes", err, "parsing raw notes")
	}
	return doc.Notes, nil
}

// ReadRawNotes loads a raw note list from a JSON file
func ReadRawNotes(path string) ([]RawNote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.Input, "notes.ReadRawNotes", err, fmt.Sprintf("opening %s", path))
	}
	defer f.Close()

	return DecodeRawNotes(f)
}

// EncodeSequence writes a sequence as a {"notes": [...]} JSON document
func EncodeSequence(w io.Writer, seq Sequence) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Notes Sequence `json:"notes"`
	}{Notes: seq})
}
