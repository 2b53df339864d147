package synth

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Sentinel errors.
var (
	// ErrInvalidDuration is returned for a negative or NaN duration.
	ErrInvalidDuration = errors.New("synth: invalid duration")

	// ErrInvalidFrequency is returned for a negative or NaN frequency.
	ErrInvalidFrequency = errors.New("synth: invalid frequency")

	// ErrInvalidLength is returned when an explicit buffer length is shorter
	// than the natural length of its duration.
	ErrInvalidLength = errors.New("synth: invalid length")
)

// Waveform is an immutable buffer of float samples.
//
// Frequency is the generating frequency for a single note and 0 for mixed or
// silent buffers. It is descriptive only.
type Waveform struct {
	frequency float64
	duration  float64
	samples   []float64
}

// Frequency returns the generating frequency in Hz.
func (w Waveform) Frequency() float64 { return w.frequency }

// Duration returns the duration in seconds.
func (w Waveform) Duration() float64 { return w.duration }

// Len returns the number of samples.
func (w Waveform) Len() int { return len(w.samples) }

// Samples returns the sample buffer. The slice is shared and must not be
// modified.
func (w Waveform) Samples() []float64 { return w.samples }

// At returns sample i, or 0 when i is out of range.
func (w Waveform) At(i int) float64 {
	if i < 0 || i >= len(w.samples) {
		return 0
	}
	return w.samples[i]
}

// String returns a short description of the waveform.
func (w Waveform) String() string {
	return fmt.Sprintf("Waveform(frequency=%g, duration=%g, samples=%d)", w.frequency, w.duration, len(w.samples))
}

func checkDuration(d float64) error {
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidDuration, d)
	}
	return nil
}

// Generate synthesizes freq Hz for dur seconds with the configured variant.
// The result holds round(dur * SampleRate) samples. A zero frequency yields
// silence for both variants.
func Generate(freq, dur float64, p Params) (Waveform, error) {
	if err := checkDuration(dur); err != nil {
		return Waveform{}, err
	}
	if freq < 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return Waveform{}, fmt.Errorf("%w: %v", ErrInvalidFrequency, freq)
	}
	if err := p.Validate(); err != nil {
		return Waveform{}, err
	}

	samples := make([]float64, p.Samples(dur))
	if freq != 0 {
		switch p.Variant {
		case Sine:
			sine(samples, freq, p)
		case Additive:
			additive(samples, freq, p)
		}
	}
	return Waveform{frequency: freq, duration: dur, samples: samples}, nil
}

func sine(dst []float64, freq float64, p Params) {
	rate := float64(p.SampleRate)
	for n := range dst {
		t := float64(n) / rate
		dst[n] = p.Amplitude * math.Sin(2*math.Pi*freq*t)
	}
}

func additive(dst []float64, freq float64, p Params) {
	rate := float64(p.SampleRate)
	a, b := p.Decay[0], p.Decay[1]
	for n := range dst {
		t := float64(n) / rate
		var sum float64
		for k, weight := range p.Harmonics {
			sum += weight * math.Sin(2*math.Pi*float64(k)*freq*t)
		}
		dst[n] = p.Amplitude * math.Exp(-a-b*t) * sum
	}
}

// Silence returns a zero buffer of dur seconds. A positive length overrides
// the natural sample count and must not be shorter than it; zero or a
// negative length selects the natural count.
func Silence(dur float64, length int, p Params) (Waveform, error) {
	if err := checkDuration(dur); err != nil {
		return Waveform{}, err
	}
	natural := p.Samples(dur)
	if length <= 0 {
		length = natural
	}
	if length < natural {
		return Waveform{}, fmt.Errorf("%w: %d samples for %gs, need at least %d", ErrInvalidLength, length, dur, natural)
	}
	return Waveform{duration: dur, samples: make([]float64, length)}, nil
}

// FromSamples wraps an existing buffer. The caller hands over ownership of
// samples.
func FromSamples(samples []float64, dur float64) Waveform {
	return Waveform{duration: dur, samples: samples}
}

// Mix sums the waveforms elementwise. The result is as long as the longest
// input, shorter inputs are zero padded, and its duration is the maximum
// input duration. Mix of nothing is an empty waveform.
func Mix(ws ...Waveform) Waveform {
	var (
		length int
		dur    float64
	)
	for _, w := range ws {
		length = max(length, len(w.samples))
		dur = max(dur, w.duration)
	}
	out := make([]float64, length)
	for _, w := range ws {
		floats.Add(out[:len(w.samples)], w.samples)
	}
	return Waveform{duration: dur, samples: out}
}
