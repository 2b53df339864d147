package songs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/haivivi/pianowav/pkg/audio/synth"
)

// Layout tells how the note lines of a sheet map to voices.
type Layout int

const (
	// LayoutHands reads blocks of label, right hand, left hand.
	LayoutHands Layout = iota
	// LayoutSequential appends every note line to a single voice.
	LayoutSequential
)

// String returns the config name of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutHands:
		return "hands"
	case LayoutSequential:
		return "sequential"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout parses a layout name.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hands", "":
		return LayoutHands, nil
	case "sequential":
		return LayoutSequential, nil
	}
	return 0, fmt.Errorf("songs: unknown layout %q", s)
}

// Part is a note line assigned to a voice.
type Part struct {
	Voice VoiceID
	Line  Line
}

// Parts assigns the sheet's note lines to voices according to layout.
//
// LayoutHands reads blocks of a label and the right and left hand lines by
// position. Blank lines between blocks are skipped; a blank hand line plays
// nothing for that block.
func (s *Sheet) Parts(layout Layout) ([]Part, error) {
	switch layout {
	case LayoutSequential:
		var parts []Part
		for _, l := range s.Lines {
			if !l.Label && !l.Blank {
				parts = append(parts, Part{Voice: RightHand, Line: l})
			}
		}
		return parts, nil
	case LayoutHands:
		parts := make([]Part, 0, len(s.Lines)/3*2)
		for i := 0; i < len(s.Lines); {
			label := s.Lines[i]
			if label.Blank {
				i++
				continue
			}
			if !label.Label {
				return nil, &LineError{Line: label.Number, Text: label.Text, Err: fmt.Errorf("%w: expected a quoted label", ErrMalformedNotation)}
			}
			if i+2 >= len(s.Lines) {
				return nil, &LineError{Line: label.Number, Text: label.Text, Err: fmt.Errorf("%w: label without both hands", ErrMalformedNotation)}
			}
			right, left := s.Lines[i+1], s.Lines[i+2]
			for _, l := range []Line{right, left} {
				if l.Label {
					return nil, &LineError{Line: l.Number, Text: l.Text, Err: fmt.Errorf("%w: expected a note line", ErrMalformedNotation)}
				}
			}
			parts = append(parts, Part{Voice: RightHand, Line: right}, Part{Voice: LeftHand, Line: left})
			i += 3
		}
		return parts, nil
	}
	return nil, fmt.Errorf("songs: unknown layout %v", layout)
}

// LoadOptions selects how a sheet is played.
type LoadOptions struct {
	// Tempo is the tempo to play at. It must be one of the sheet's listed
	// tempos; empty selects the first listed tempo.
	Tempo string

	// AllTempos plays the sheet once per listed tempo, back to back.
	// Tempo is ignored.
	AllTempos bool

	Layout Layout
}

// PlayTempos returns the tempo names a render with opts plays, in order.
func (s *Sheet) PlayTempos(opts LoadOptions) ([]string, error) {
	var names []string
	switch {
	case opts.AllTempos:
		names = s.Tempos
	case opts.Tempo == "":
		if len(s.Tempos) == 0 {
			return nil, fmt.Errorf("%w: no tempos listed", ErrMalformedNotation)
		}
		names = s.Tempos[:1]
	default:
		if !slices.Contains(s.Tempos, opts.Tempo) {
			return nil, fmt.Errorf("%w: %q not in %s", ErrTempoNotListed, opts.Tempo, strings.Join(s.Tempos, ", "))
		}
		names = []string{opts.Tempo}
	}
	for _, n := range names {
		if _, err := BPM(n); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// Load resolves every note of the sheet and adds it to a new Piano.
func Load(s *Sheet, opts LoadOptions, params synth.Params, popts ...Option) (*Piano, error) {
	names, err := s.PlayTempos(opts)
	if err != nil {
		return nil, err
	}
	parts, err := s.Parts(opts.Layout)
	if err != nil {
		return nil, err
	}

	piano := NewPiano(params, popts...)
	for i, name := range names {
		if i > 0 {
			piano.Align()
		}
		bpm, err := BPM(name)
		if err != nil {
			return nil, err
		}
		for _, part := range parts {
			for _, tok := range part.Line.Tokens {
				n, err := ResolveBPM(tok.Pitch, tok.Octave, tok.Symbol, bpm)
				if err != nil {
					return nil, &LineError{Line: part.Line.Number, Text: tok.String(), Err: err}
				}
				if err := piano.AddNote(part.Voice, n); err != nil {
					return nil, err
				}
			}
		}
	}
	return piano, nil
}
