package songs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Token is one parsed "PitchOctave,Symbol" entry of a note line.
type Token struct {
	Pitch  Pitch
	Octave int
	Symbol string
}

// String returns the token in sheet notation.
func (t Token) String() string {
	if t.Pitch == Rest {
		return "," + t.Symbol
	}
	return fmt.Sprintf("%s%d,%s", t.Pitch, t.Octave, t.Symbol)
}

// Line is a line of a sheet after the tempo line.
type Line struct {
	// Number is the 1-based line number in the source text.
	Number int

	// Label is set for lines starting with a double quote. Labels carry no
	// notes.
	Label bool

	// Blank is set for empty lines. Inside a hands block a blank line is a
	// hand that plays nothing.
	Blank bool

	Text   string
	Tokens []Token
}

// Sheet is parsed sheet notation.
type Sheet struct {
	// Name identifies the sheet, usually the file name without extension.
	Name string

	// Tempos lists the tempo names the sheet may be played at, in order.
	Tempos []string

	Lines []Line
}

// ParseSheet reads sheet notation from r. Token shapes are checked here;
// duration symbols and tempo names are checked when the sheet is loaded.
func ParseSheet(name string, r io.Reader) (*Sheet, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	s := &Sheet{Name: name}
	num := 0
	for sc.Scan() {
		num++
		text := strings.TrimSpace(sc.Text())
		if num == 1 {
			tempos, err := parseTempoLine(text)
			if err != nil {
				return nil, &LineError{Line: num, Text: text, Err: err}
			}
			s.Tempos = tempos
			continue
		}
		if text == "" {
			s.Lines = append(s.Lines, Line{Number: num, Blank: true})
			continue
		}
		if strings.HasPrefix(text, `"`) {
			s.Lines = append(s.Lines, Line{Number: num, Label: true, Text: text})
			continue
		}
		tokens, err := ParseNoteLine(text)
		if err != nil {
			return nil, &LineError{Line: num, Text: text, Err: err}
		}
		s.Lines = append(s.Lines, Line{Number: num, Text: text, Tokens: tokens})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("songs: read sheet %s: %w", name, err)
	}
	if num == 0 {
		return nil, fmt.Errorf("%w: empty sheet", ErrMalformedNotation)
	}
	return s, nil
}

func parseTempoLine(text string) ([]string, error) {
	var tempos []string
	for _, t := range strings.Split(text, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tempos = append(tempos, t)
		}
	}
	if len(tempos) == 0 {
		return nil, fmt.Errorf("%w: no tempos listed", ErrMalformedNotation)
	}
	return tempos, nil
}

// ParseNoteLine parses a '-' separated list of tokens. Empty tokens, as left
// by a trailing or doubled '-', are skipped.
func ParseNoteLine(text string) ([]Token, error) {
	var tokens []Token
	for _, field := range strings.Split(text, "-") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		tok, err := ParseToken(field)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// ParseToken parses "PitchOctave,Symbol", for example "C4,QN" or "f3,EN".
// An empty pitch field, as in ",QN", is a rest.
func ParseToken(field string) (Token, error) {
	note, symbol, ok := strings.Cut(field, ",")
	if !ok || strings.Contains(symbol, ",") {
		return Token{}, fmt.Errorf("%w: token %q is not pitch,symbol", ErrMalformedNotation, field)
	}
	note, symbol = strings.TrimSpace(note), strings.TrimSpace(symbol)
	if symbol == "" {
		return Token{}, fmt.Errorf("%w: token %q has no duration symbol", ErrMalformedNotation, field)
	}
	if note == "" {
		return Token{Pitch: Rest, Symbol: symbol}, nil
	}
	if len(note) < 2 {
		return Token{}, fmt.Errorf("%w: token %q has no octave", ErrMalformedNotation, field)
	}
	p, err := ParsePitch(note[0])
	if err != nil {
		return Token{}, err
	}
	octave, err := strconv.Atoi(note[1:])
	if err != nil || octave < 0 || strings.HasPrefix(note[1:], "+") {
		return Token{}, fmt.Errorf("%w: token %q has a bad octave", ErrMalformedNotation, field)
	}
	return Token{Pitch: p, Octave: octave, Symbol: symbol}, nil
}
