package songs

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/haivivi/pianowav/pkg/audio/synth"
)

// VoiceID identifies an independently timed voice of a Piano.
type VoiceID int

// Hands of the two-voice layout.
const (
	RightHand VoiceID = 0
	LeftHand  VoiceID = 1
)

// String returns a label for the voice.
func (id VoiceID) String() string {
	switch id {
	case RightHand:
		return "right"
	case LeftHand:
		return "left"
	default:
		return fmt.Sprintf("voice%d", int(id))
	}
}

// Voice is a sequence of back-to-back notes and the running clock at which
// the next note starts.
type Voice struct {
	ID      VoiceID
	Entries []Entry
	Clock   float64
}

// Option configures a Piano.
type Option interface {
	apply(*Piano)
}

type parallelOption struct{}

func (parallelOption) apply(p *Piano) {
	p.parallel = true
}

// WithParallel renders voices concurrently. The merge still sums voices in
// id order, so output is identical to a sequential render.
func WithParallel() Option {
	return parallelOption{}
}

// Piano composes any number of voices onto one timeline.
//
// A Piano is not safe for concurrent use.
type Piano struct {
	params   synth.Params
	parallel bool
	voices   map[VoiceID]*Voice
}

// NewPiano creates an empty Piano that renders with params.
func NewPiano(params synth.Params, opts ...Option) *Piano {
	p := &Piano{
		params: params,
		voices: make(map[VoiceID]*Voice),
	}
	for _, opt := range opts {
		opt.apply(p)
	}
	return p
}

// Params returns the synthesis params of the piano.
func (p *Piano) Params() synth.Params {
	return p.params
}

// AddNote appends n to voice id at the voice's running clock and advances the
// clock by the note's duration. Voices are created on first use.
func (p *Piano) AddNote(id VoiceID, n Note) error {
	if id < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidVoice, int(id))
	}
	v, ok := p.voices[id]
	if !ok {
		v = &Voice{ID: id}
		p.voices[id] = v
	}
	v.Entries = append(v.Entries, Entry{Note: n, Start: v.Clock})
	v.Clock += n.Duration
	return nil
}

// Align moves every voice's clock forward to the end of the longest voice,
// so the next notes of all voices start together.
func (p *Piano) Align() {
	d := p.Duration()
	for _, v := range p.voices {
		v.Clock = d
	}
}

// Duration returns the largest voice clock in seconds.
func (p *Piano) Duration() float64 {
	var d float64
	for _, v := range p.voices {
		d = max(d, v.Clock)
	}
	return d
}

// Samples returns the length of the rendered buffer.
func (p *Piano) Samples() int {
	return p.params.Samples(p.Duration())
}

// Voices returns copies of all voices ordered by id.
func (p *Piano) Voices() []Voice {
	out := make([]Voice, 0, len(p.voices))
	for _, id := range p.ids() {
		v := p.voices[id]
		out = append(out, Voice{ID: v.ID, Entries: slices.Clone(v.Entries), Clock: v.Clock})
	}
	return out
}

func (p *Piano) ids() []VoiceID {
	ids := make([]VoiceID, 0, len(p.voices))
	for id := range p.voices {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Render synthesizes every voice against the common duration and sums them.
// The result holds round(SampleRate * Duration()) samples. Voices are added,
// never normalized.
func (p *Piano) Render(ctx context.Context) (synth.Waveform, error) {
	if err := p.params.Validate(); err != nil {
		return synth.Waveform{}, err
	}
	total := p.Duration()
	ids := p.ids()
	placed := make([]synth.Waveform, len(ids))

	if p.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, id := range ids {
			entries := p.voices[id].Entries
			g.Go(func() error {
				w, err := Place(gctx, entries, total, p.params)
				if err != nil {
					return fmt.Errorf("%v voice: %w", id, err)
				}
				placed[i] = w
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return synth.Waveform{}, err
		}
	} else {
		for i, id := range ids {
			w, err := Place(ctx, p.voices[id].Entries, total, p.params)
			if err != nil {
				return synth.Waveform{}, fmt.Errorf("%v voice: %w", id, err)
			}
			placed[i] = w
		}
	}

	if len(placed) == 0 {
		return synth.Silence(0, 0, p.params)
	}
	return synth.Mix(placed...), nil
}

// String returns a short description of the piano.
func (p *Piano) String() string {
	var sb strings.Builder
	sb.WriteString("Piano(")
	for i, id := range p.ids() {
		v := p.voices[id]
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v: %d notes/%.3fs", id, len(v.Entries), v.Clock)
	}
	sb.WriteString(")")
	return sb.String()
}
