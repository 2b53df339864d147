package songs

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		in      string
		want    Token
		wantErr error
	}{
		{in: "C4,QN", want: Token{Pitch: C, Octave: 4, Symbol: "QN"}},
		{in: "f3,EN", want: Token{Pitch: Fs, Octave: 3, Symbol: "EN"}},
		{in: "a10,WN", want: Token{Pitch: As, Octave: 10, Symbol: "WN"}},
		{in: ",DQN", want: Token{Pitch: Rest, Symbol: "DQN"}},
		{in: " G2 , HN ", want: Token{Pitch: G, Octave: 2, Symbol: "HN"}},
		{in: "C4", wantErr: ErrMalformedNotation},
		{in: "C4,", wantErr: ErrMalformedNotation},
		{in: "C,QN", wantErr: ErrMalformedNotation},
		{in: "C4,QN,EN", wantErr: ErrMalformedNotation},
		{in: "Cx,QN", wantErr: ErrMalformedNotation},
		{in: "C+4,QN", wantErr: ErrMalformedNotation},
		{in: "H4,QN", wantErr: ErrUnknownPitch},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseToken(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ParseToken(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenString(t *testing.T) {
	for _, in := range []string{"C4,QN", "f3,EN", ",HN"} {
		tok, err := ParseToken(in)
		if err != nil {
			t.Fatal(err)
		}
		if tok.String() != in {
			t.Errorf("String() = %q, want %q", tok.String(), in)
		}
	}
}

func TestParseNoteLine(t *testing.T) {
	got, err := ParseNoteLine("C4,QN-,EN--D4,HN-")
	if err != nil {
		t.Fatal(err)
	}
	want := []Token{
		{Pitch: C, Octave: 4, Symbol: "QN"},
		{Pitch: Rest, Symbol: "EN"},
		{Pitch: D, Octave: 4, Symbol: "HN"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens (-want +got):\n%s", diff)
	}
}

func TestParseSheet(t *testing.T) {
	src := `Andante, Allegro

"Intro
C4,QN-E4,QN

C3,HN
`
	s, err := ParseSheet("intro", strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Andante", "Allegro"}, s.Tempos); diff != "" {
		t.Errorf("tempos (-want +got):\n%s", diff)
	}
	if len(s.Lines) != 5 {
		t.Fatalf("lines = %d, want 5", len(s.Lines))
	}
	if !s.Lines[0].Blank || s.Lines[0].Number != 2 {
		t.Errorf("line 0 = %+v, want blank line 2", s.Lines[0])
	}
	if !s.Lines[1].Label || s.Lines[1].Number != 3 {
		t.Errorf("line 1 = %+v, want label on line 3", s.Lines[1])
	}
	if s.Lines[2].Number != 4 || len(s.Lines[2].Tokens) != 2 {
		t.Errorf("line 2 = %+v", s.Lines[2])
	}
	if !s.Lines[3].Blank || s.Lines[3].Tokens != nil {
		t.Errorf("line 3 = %+v, want blank", s.Lines[3])
	}
	if s.Lines[4].Number != 6 {
		t.Errorf("line 4 number = %d, want 6", s.Lines[4].Number)
	}
}

func TestParseSheetErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantLine int
		wantErr  error
	}{
		{"empty", "", 0, ErrMalformedNotation},
		{"no tempos", " , \nC4,QN", 1, ErrMalformedNotation},
		{"bad token", "Moderato\nC4,QN\nC4QN", 3, ErrMalformedNotation},
		{"bad pitch", "Moderato\n\"x\nZ4,QN", 3, ErrUnknownPitch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSheet(tt.name, strings.NewReader(tt.src))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			var le *LineError
			if tt.wantLine == 0 {
				if errors.As(err, &le) {
					t.Errorf("unexpected LineError %v", le)
				}
				return
			}
			if !errors.As(err, &le) {
				t.Fatalf("err = %v, want a LineError", err)
			}
			if le.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", le.Line, tt.wantLine)
			}
		})
	}
}
