package songs

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// Pitch is one of the twelve chromatic pitch letters, or Rest.
//
// Upper case letters are naturals; lower case letters are the sharp of the
// same natural (c is C#).
type Pitch byte

// Pitches.
const (
	Rest Pitch = 0
	C    Pitch = 'C'
	Cs   Pitch = 'c'
	D    Pitch = 'D'
	Ds   Pitch = 'd'
	E    Pitch = 'E'
	F    Pitch = 'F'
	Fs   Pitch = 'f'
	G    Pitch = 'G'
	Gs   Pitch = 'g'
	A    Pitch = 'A'
	As   Pitch = 'a'
	B    Pitch = 'B'
)

// BaseFrequency is the frequency of C4 in Hz.
const BaseFrequency = 262.0

var pitchClasses = map[Pitch]int{
	C: 0, Cs: 1, D: 2, Ds: 3, E: 4, F: 5, Fs: 6, G: 7, Gs: 8, A: 9, As: 10, B: 11,
}

// Class returns the semitone offset of p above C, or -1 for Rest and unknown
// letters.
func (p Pitch) Class() int {
	if c, ok := pitchClasses[p]; ok {
		return c
	}
	return -1
}

// IsRest reports whether p is a rest.
func (p Pitch) IsRest() bool { return p == Rest }

// String returns the pitch letter, or "rest".
func (p Pitch) String() string {
	if p == Rest {
		return "rest"
	}
	return string(rune(p))
}

// ParsePitch parses a single pitch letter.
func ParsePitch(b byte) (Pitch, error) {
	p := Pitch(b)
	if _, ok := pitchClasses[p]; !ok {
		return Rest, fmt.Errorf("%w %q", ErrUnknownPitch, b)
	}
	return p, nil
}

// Frequency returns the frequency of pitch p in octave o:
// 262 * 2^(class/12) * 2^(o-4). Rest yields 0.
func Frequency(p Pitch, octave int) float64 {
	c := p.Class()
	if c < 0 {
		return 0
	}
	return BaseFrequency * math.Exp2(float64(c)/12) * math.Exp2(float64(octave-4))
}

// Beat fractions of each duration symbol, quarter note = 1.
var durations = map[string]float64{
	"WN":   4.0,
	"DHN":  3.0,
	"DDHN": 3.5,
	"HN":   2.0,
	"HNT":  4.0 / 3,
	"QN":   1.0,
	"QNT":  2.0 / 3,
	"DQN":  1.5,
	"DDQN": 1.75,
	"EN":   0.5,
	"DEN":  0.75,
	"ENT":  1.0 / 3,
	"DDEN": 0.875,
	"SN":   0.25,
	"DSN":  0.375,
	"SNT":  1.0 / 6,
	"TN":   0.125,
	"TNT":  1.0 / 12,
}

// Beats returns the beat fraction of a duration symbol.
func Beats(symbol string) (float64, error) {
	b, ok := durations[symbol]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownDurationSymbol, symbol)
	}
	return b, nil
}

// Symbols returns every duration symbol, longest first.
func Symbols() []string {
	syms := make([]string, 0, len(durations))
	for s := range durations {
		syms = append(syms, s)
	}
	slices.SortFunc(syms, func(a, b string) int {
		if c := cmp.Compare(durations[b], durations[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return syms
}

var tempos = map[string]int{
	"Grave":       30,
	"Lento":       40,
	"Largo":       50,
	"Adagio":      60,
	"Adagietto":   70,
	"Andante":     75,
	"Moderato":    90,
	"Allegretto":  100,
	"Allegro":     120,
	"Vivace":      135,
	"Presto":      170,
	"Prestissimo": 180,
}

// BPM returns the beats per minute of a named tempo.
func BPM(tempo string) (int, error) {
	bpm, ok := tempos[tempo]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownTempo, tempo)
	}
	return bpm, nil
}

// Tempos returns every tempo name, slowest first.
func Tempos() []string {
	names := make([]string, 0, len(tempos))
	for t := range tempos {
		names = append(names, t)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Compare(tempos[a], tempos[b])
	})
	return names
}
