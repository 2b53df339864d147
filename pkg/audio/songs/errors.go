package songs

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrUnknownTempo is returned for a tempo name missing from the tempo table.
	ErrUnknownTempo = errors.New("songs: unknown tempo")

	// ErrUnknownDurationSymbol is returned for a duration token missing from
	// the duration table.
	ErrUnknownDurationSymbol = errors.New("songs: unknown duration symbol")

	// ErrMalformedNotation is returned when sheet text does not have the
	// expected shape.
	ErrMalformedNotation = errors.New("songs: malformed notation")

	// ErrUnknownPitch is a malformed token whose pitch letter is not one of
	// the twelve pitch classes.
	ErrUnknownPitch = fmt.Errorf("%w: unknown pitch", ErrMalformedNotation)

	// ErrTempoNotListed is returned when the requested tempo is not one the
	// sheet offers.
	ErrTempoNotListed = errors.New("songs: tempo not listed by sheet")

	// ErrInvalidVoice is returned for a negative voice id.
	ErrInvalidVoice = errors.New("songs: invalid voice")

	// ErrNegativeStart is returned when a timeline entry starts before zero.
	ErrNegativeStart = errors.New("songs: negative start time")

	// ErrUnorderedStart is returned when timeline entries are not sorted by
	// start time.
	ErrUnorderedStart = errors.New("songs: start times out of order")
)

// LineError reports a problem on one line of a sheet.
type LineError struct {
	// Line is the 1-based line number.
	Line int

	// Text is the offending line or token.
	Text string

	Err error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v (%q)", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error { return e.Err }
