// Package resampler converts mono 16-bit sample buffers between sample rates
// using a pure Go polyphase resampler.
//
// Example usage:
//
//	out, err := resampler.Resample(samples, 44100, 22050)
//	if err != nil {
//	    return err
//	}
package resampler
