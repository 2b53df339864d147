package songs

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/haivivi/pianowav/pkg/audio/synth"
)

// Entry is a note placed at an absolute start time in seconds.
type Entry struct {
	Note  Note
	Start float64
}

// End returns the time the entry's note stops sounding.
func (e Entry) End() float64 {
	return e.Start + e.Note.Duration
}

// Place synthesizes the entries and adds them into a silent buffer of total
// seconds. Each note lands at round(Start * SampleRate); samples falling past
// the end of the buffer are dropped. Entries must start at or after zero and
// be sorted by start time.
func Place(ctx context.Context, entries []Entry, total float64, p synth.Params) (synth.Waveform, error) {
	if total < 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return synth.Waveform{}, fmt.Errorf("%w: total %v", synth.ErrInvalidDuration, total)
	}
	buf := make([]float64, p.Samples(total))

	prev := 0.0
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return synth.Waveform{}, err
		}
		if e.Start < 0 {
			return synth.Waveform{}, fmt.Errorf("%w: entry %d at %gs", ErrNegativeStart, i, e.Start)
		}
		if e.Start < prev {
			return synth.Waveform{}, fmt.Errorf("%w: entry %d at %gs after %gs", ErrUnorderedStart, i, e.Start, prev)
		}
		prev = e.Start

		w, err := e.Note.Synthesize(p)
		if err != nil {
			return synth.Waveform{}, fmt.Errorf("entry %d (%v): %w", i, e.Note, err)
		}
		start := p.Index(e.Start)
		if w.Len() == 0 || start >= len(buf) {
			continue
		}
		end := min(start+w.Len(), len(buf))
		floats.Add(buf[start:end], w.Samples()[:end-start])
	}
	return synth.FromSamples(buf, total), nil
}
