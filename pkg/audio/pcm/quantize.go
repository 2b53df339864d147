package pcm

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// QuantizeMode selects how Quantize treats samples outside the int16 range.
type QuantizeMode int

const (
	// QuantizeClip saturates out of range samples at the int16 limits.
	QuantizeClip QuantizeMode = iota
	// QuantizeWrap truncates toward zero and keeps the low 16 bits, so
	// overflowing samples wrap around.
	QuantizeWrap
	// QuantizeNormalize scales the whole buffer down, only when its peak is
	// outside the int16 range, then truncates.
	QuantizeNormalize
)

// String returns the config name of the mode.
func (m QuantizeMode) String() string {
	switch m {
	case QuantizeClip:
		return "clip"
	case QuantizeWrap:
		return "wrap"
	case QuantizeNormalize:
		return "normalize"
	}
	return fmt.Sprintf("QuantizeMode(%d)", int(m))
}

// ParseQuantizeMode parses a mode name. The empty string is QuantizeClip.
func ParseQuantizeMode(s string) (QuantizeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clip":
		return QuantizeClip, nil
	case "wrap":
		return QuantizeWrap, nil
	case "normalize":
		return QuantizeNormalize, nil
	}
	return 0, fmt.Errorf("pcm: unknown quantize mode %q", s)
}

// Stats describes a quantized buffer.
type Stats struct {
	// Peak is the largest absolute input sample.
	Peak float64

	// OutOfRange counts input samples whose truncated value does not fit in
	// an int16, NaN included.
	OutOfRange int

	// Scale is the gain applied before truncation. It is 1 unless
	// QuantizeNormalize had to scale down.
	Scale float64
}

// Quantize converts samples to int16 using mode. The input is not modified.
func Quantize(samples []float64, mode QuantizeMode) ([]int16, Stats) {
	st := Stats{Scale: 1}
	if len(samples) > 0 {
		st.Peak = math.Max(math.Abs(floats.Max(samples)), math.Abs(floats.Min(samples)))
	}
	if mode == QuantizeNormalize && st.Peak > math.MaxInt16 && !math.IsInf(st.Peak, 0) {
		st.Scale = math.MaxInt16 / st.Peak
	}

	out := make([]int16, len(samples))
	for i, x := range samples {
		t := math.Trunc(x)
		if math.IsNaN(t) || t > math.MaxInt16 || t < math.MinInt16 {
			st.OutOfRange++
		}
		out[i] = convert(x*st.Scale, mode)
	}
	return out, st
}

func convert(x float64, mode QuantizeMode) int16 {
	if math.IsNaN(x) {
		return 0
	}
	t := math.Trunc(x)
	if mode == QuantizeWrap {
		if math.IsInf(t, 0) || math.Abs(t) >= 1<<63 {
			return 0
		}
		return int16(int64(t))
	}
	switch {
	case t > math.MaxInt16:
		return math.MaxInt16
	case t < math.MinInt16:
		return math.MinInt16
	}
	return int16(t)
}
