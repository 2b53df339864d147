package synth

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Reference engine settings.
const (
	DefaultSampleRate = 44100
	DefaultAmplitude  = 4096
)

// Variant selects the waveform generator.
type Variant int

const (
	// Additive sums weighted integer harmonics under an exponential decay.
	Additive Variant = iota
	// Sine is a single sine partial at the note frequency.
	Sine
)

// String returns the config name of the variant.
func (v Variant) String() string {
	switch v {
	case Additive:
		return "additive"
	case Sine:
		return "sine"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant parses a variant name as used in config files and flags.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "additive", "":
		return Additive, nil
	case "sine":
		return Sine, nil
	}
	return 0, fmt.Errorf("synth: unknown engine %q", s)
}

// Harmonic weights for k = 0..3. The k = 0 term multiplies sin(0) and is
// therefore silent; only k >= 1 contribute.
var defaultHarmonics = [...]float64{0.36046922, 0.50991279, 0.11674297, 0.01287502}

// Decay coefficients (a, b) of the envelope exp(-a - b*t).
var defaultDecay = [2]float64{0.25656511, 1.64549261}

// DefaultHarmonics returns a copy of the reference harmonic weights.
func DefaultHarmonics() []float64 {
	h := make([]float64, len(defaultHarmonics))
	copy(h, defaultHarmonics[:])
	return h
}

// DefaultDecay returns the reference decay coefficients.
func DefaultDecay() [2]float64 {
	return defaultDecay
}

// Params configures waveform generation.
type Params struct {
	// SampleRate is the sample rate in Hz.
	SampleRate int

	// Amplitude scales every generated sample.
	Amplitude float64

	// Variant selects the generator.
	Variant Variant

	// Harmonics holds the additive weights indexed by harmonic number k,
	// starting at k = 0. Ignored by Sine.
	Harmonics []float64

	// Decay holds the envelope coefficients (a, b). Ignored by Sine.
	Decay [2]float64
}

// DefaultParams returns the reference additive engine at 44100 Hz.
func DefaultParams() Params {
	return Params{
		SampleRate: DefaultSampleRate,
		Amplitude:  DefaultAmplitude,
		Variant:    Additive,
		Harmonics:  DefaultHarmonics(),
		Decay:      DefaultDecay(),
	}
}

// ErrInvalidParams is returned when Params cannot drive a generator.
var ErrInvalidParams = errors.New("synth: invalid params")

// Validate reports whether the params are usable.
func (p Params) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidParams, p.SampleRate)
	}
	if math.IsNaN(p.Amplitude) || math.IsInf(p.Amplitude, 0) {
		return fmt.Errorf("%w: amplitude %v", ErrInvalidParams, p.Amplitude)
	}
	switch p.Variant {
	case Sine:
	case Additive:
		if len(p.Harmonics) == 0 {
			return fmt.Errorf("%w: additive engine needs harmonic weights", ErrInvalidParams)
		}
	default:
		return fmt.Errorf("%w: %v", ErrInvalidParams, p.Variant)
	}
	return nil
}

// Samples returns the number of samples in d seconds, round(d * rate).
func (p Params) Samples(d float64) int {
	return int(math.Round(d * float64(p.SampleRate)))
}

// Index returns the sample index of time t in seconds, round(t * rate).
func (p Params) Index(t float64) int {
	return p.Samples(t)
}
