package songs

import (
	"fmt"

	"github.com/haivivi/pianowav/pkg/audio/synth"
)

// Note is a resolved musical note. It carries the notation it came from and
// the derived frequency and duration, but no samples: call Synthesize to
// generate them.
type Note struct {
	Pitch  Pitch
	Octave int
	Symbol string
	BPM    int

	// Frequency in Hz, 0 for a rest.
	Frequency float64

	// Duration in seconds.
	Duration float64
}

// Resolve builds a note from its notation and a named tempo.
func Resolve(p Pitch, octave int, symbol, tempo string) (Note, error) {
	bpm, err := BPM(tempo)
	if err != nil {
		return Note{}, err
	}
	return ResolveBPM(p, octave, symbol, bpm)
}

// ResolveBPM builds a note from its notation and a tempo in beats per minute.
func ResolveBPM(p Pitch, octave int, symbol string, bpm int) (Note, error) {
	if p != Rest && p.Class() < 0 {
		return Note{}, fmt.Errorf("%w %q", ErrUnknownPitch, byte(p))
	}
	if bpm <= 0 {
		return Note{}, fmt.Errorf("%w: %d bpm", ErrUnknownTempo, bpm)
	}
	beats, err := Beats(symbol)
	if err != nil {
		return Note{}, err
	}
	n := Note{
		Pitch:    p,
		Octave:   octave,
		Symbol:   symbol,
		BPM:      bpm,
		Duration: beats * 60 / float64(bpm),
	}
	if p != Rest {
		n.Frequency = Frequency(p, octave)
	}
	return n, nil
}

// Samples returns the number of samples the note spans at the given params.
func (n Note) Samples(p synth.Params) int {
	return p.Samples(n.Duration)
}

// Synthesize generates the note's waveform.
func (n Note) Synthesize(p synth.Params) (synth.Waveform, error) {
	return synth.Generate(n.Frequency, n.Duration, p)
}

// String returns a short description of the note.
func (n Note) String() string {
	if n.Pitch == Rest {
		return fmt.Sprintf("Note(rest, duration=%s, bpm=%d)", n.Symbol, n.BPM)
	}
	return fmt.Sprintf("Note(%s%d, duration=%s, bpm=%d)", n.Pitch, n.Octave, n.Symbol, n.BPM)
}
