package resampler

import (
	"errors"
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
)

// ErrInvalidRate is returned for a non-positive sample rate.
var ErrInvalidRate = errors.New("resampler: invalid sample rate")

// tailSeconds of silence are fed after the input so the filter releases the
// samples it holds back.
const tailSeconds = 0.1

// Resample converts mono 16-bit samples from srcRate to dstRate. Matching
// rates return a copy of samples. The output always holds
// round(len(samples)*dstRate/srcRate) samples.
func Resample(samples []int16, srcRate, dstRate int) ([]int16, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidRate, srcRate, dstRate)
	}
	if srcRate == dstRate || len(samples) == 0 {
		return append([]int16(nil), samples...), nil
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("resampler: create: %w", err)
	}

	tail := int(math.Ceil(tailSeconds * float64(srcRate)))
	input := make([]float64, len(samples)+tail)
	for i, s := range samples {
		input[i] = float64(s) / 32768.0
	}
	output, err := r.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resampler: process: %w", err)
	}

	want := OutputLen(len(samples), srcRate, dstRate)
	out := make([]int16, want)
	for i := range min(want, len(output)) {
		out[i] = toInt16(output[i])
	}
	return out, nil
}

// OutputLen is the number of samples n input samples become at dstRate.
func OutputLen(n, srcRate, dstRate int) int {
	return int(math.Round(float64(n) * float64(dstRate) / float64(srcRate)))
}

// toInt16 scales a normalized sample back to int16, saturating.
func toInt16(s float64) int16 {
	v := math.Round(s * 32768.0)
	switch {
	case math.IsNaN(v):
		return 0
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
