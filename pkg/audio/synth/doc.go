// Package synth generates note waveforms and mixes them.
//
// Two generators are provided:
//   - Sine: a single sine partial at the note frequency
//   - Additive: weighted integer harmonics under an exponential decay envelope
//
// Every entry point takes a Params value carrying the sample rate, amplitude
// and coefficient tables, so renders with different settings never share
// state.
//
// Example usage:
//
//	p := synth.DefaultParams()
//	w, err := synth.Generate(440, 0.5, p)
//	if err != nil {
//	    return err
//	}
//	out := synth.Mix(w, other)
package synth
