// Package midifile reads and writes note sequences as Standard MIDI Files.
package midifile

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/RyanBlaney/sonido-vox/errs"
	"github.com/RyanBlaney/sonido-vox/notes"
)

// Resolution is the number of ticks per quarter note in written files
const Resolution = 960

// percussionChannel is the General MIDI drum channel (10, zero based)
const percussionChannel = 9

// drumKit is the program marker routed to the percussion channel
const drumKit = 128

// Options controls the written file
type Options struct {
	BPM       float64 `json:"bpm"`
	Program   int     `json:"program"` // General MIDI program, or 128 for the drum kit
	TrackName string  `json:"track_name"`
}

// DefaultOptions writes a piano track at 120 BPM
func DefaultOptions() Options {
	return Options{BPM: 120, Program: 0, TrackName: "sonido-vox"}
}

// Info describes a decoded file
type Info struct {
	BPM     float64 `json:"bpm"`
	Program int     `json:"program"`
	Tracks  int     `json:"tracks"`
}

type tickEvent struct {
	tick uint32
	off  bool
	msg  midi.Message
}

// Encode writes seq as a format 1 file with a tempo track and one note track
func Encode(w io.Writer, seq notes.Sequence, opts Options) error {
	const op = "midifile.Encode"
	if !(opts.BPM > 0) || math.IsInf(opts.BPM, 0) {
		return errs.Configf(op, "bpm must be positive, got %v", opts.BPM)
	}
	if opts.Program < 0 || opts.Program > drumKit {
		return errs.Configf(op, "program %d outside [0,%d]", opts.Program, drumKit)
	}
	for i, n := range seq {
		if err := n.Validate(); err != nil {
			return errs.Inputf(op, "note %d: %v", i, err)
		}
	}

	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(Resolution)

	var tempo smf.Track
	tempo.Add(0, smf.MetaTrackSequenceName(opts.TrackName))
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(opts.BPM))
	tempo.Close(0)

	channel := uint8(0)
	var track smf.Track
	if opts.Program == drumKit {
		channel = percussionChannel
	} else {
		track.Add(0, midi.ProgramChange(channel, uint8(opts.Program)))
	}

	events := make([]tickEvent, 0, 2*len(seq))
	for _, n := range seq {
		on := secondsToTicks(n.Start, opts.BPM)
		off := max(secondsToTicks(n.End, opts.BPM), on+1)
		events = append(events,
			tickEvent{tick: on, msg: midi.NoteOn(channel, uint8(n.Pitch), uint8(n.Velocity))},
			tickEvent{tick: off, off: true, msg: midi.NoteOff(channel, uint8(n.Pitch))},
		)
	}

	// note-offs first so a re-struck pitch is not cut short
	slices.SortStableFunc(events, func(a, b tickEvent) int {
		if c := cmp.Compare(a.tick, b.tick); c != 0 {
			return c
		}
		switch {
		case a.off && !b.off:
			return -1
		case !a.off && b.off:
			return 1
		}
		return 0
	})

	var last uint32
	for _, ev := range events {
		track.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	track.Close(0)

	if err := s.Add(tempo); err != nil {
		return fmt.Errorf("adding tempo track: %w", err)
	}
	if err := s.Add(track); err != nil {
		return fmt.Errorf("adding note track: %w", err)
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("writing midi: %w", err)
	}
	return nil
}

// WriteFile encodes seq to path
func WriteFile(path string, seq notes.Sequence, opts Options) error {
	var buf bytes.Buffer
	if err := Encode(&buf, seq, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Decode reads every note in every track, ordered by start. Notes still
// sounding at the end of a track end at the track's last event.
func Decode(r io.Reader) (seq notes.Sequence, info *Info, err error) {
	const op = "midifile.Decode"

	// gomidi can panic on malformed input
	defer func() {
		if rec := recover(); rec != nil {
			seq, info = nil, nil
			err = errs.Inputf(op, "malformed midi: %v", rec)
		}
	}()

	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, nil, errs.Wrap(errs.Input, op, err, "parsing midi")
	}

	info = &Info{BPM: 120, Tracks: len(s.Tracks)}
	tempoSeen, programSeen := false, false
	seq = notes.Sequence{}

	type key struct{ channel, pitch uint8 }
	type pending struct {
		start    float64
		velocity uint8
	}

	for _, track := range s.Tracks {
		open := map[key][]pending{}
		var absTicks int64
		for _, ev := range track {
			absTicks += int64(ev.Delta)
			at := float64(s.TimeAt(absTicks)) / 1e6

			var channel, pitch, velocity, program uint8
			var bpm float64
			msg := midi.Message(ev.Message)
			switch {
			case msg.GetNoteStart(&channel, &pitch, &velocity):
				k := key{channel, pitch}
				open[k] = append(open[k], pending{start: at, velocity: velocity})
			case msg.GetNoteEnd(&channel, &pitch):
				k := key{channel, pitch}
				if len(open[k]) == 0 {
					continue
				}
				p := open[k][0]
				open[k] = open[k][1:]
				seq = appendNote(seq, pitch, p.start, at, p.velocity)
			case msg.GetProgramChange(&channel, &program):
				if !programSeen {
					info.Program, programSeen = int(program), true
				}
			case ev.Message.GetMetaTempo(&bpm):
				if !tempoSeen {
					info.BPM, tempoSeen = bpm, true
				}
			}
		}

		end := float64(s.TimeAt(absTicks)) / 1e6
		for k, stack := range open {
			for _, p := range stack {
				seq = appendNote(seq, k.pitch, p.start, end, p.velocity)
			}
		}
	}

	slices.SortStableFunc(seq, func(a, b notes.Note) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Pitch, b.Pitch)
	})
	return seq, info, nil
}

// ReadFile decodes the file at path
func ReadFile(path string) (notes.Sequence, *Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errs.Wrap(errs.Input, "midifile.ReadFile", err, "reading "+path)
	}
	return Decode(bytes.NewReader(data))
}

// appendNote drops zero-length notes
func appendNote(seq notes.Sequence, pitch uint8, start, end float64, velocity uint8) notes.Sequence {
	if end <= start {
		return seq
	}
	return append(seq, notes.Note{
		Pitch:    int(pitch),
		Start:    start,
		End:      end,
		Velocity: max(int(velocity), notes.MinVelocity),
	})
}

func secondsToTicks(seconds, bpm float64) uint32 {
	return uint32(math.Round(seconds * bpm / 60 * Resolution))
}
