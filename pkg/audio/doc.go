// Package audio is the umbrella for the rendering pipeline's sub-packages:
//
//   - synth: sampled waveforms and their synthesis parameters
//   - songs: sheet notation, notes, and the multi-voice Piano
//   - pcm: int16 quantization and the L16 formats
//   - resampler: sample rate conversion of int16 PCM
//   - codec/wav: mono 16-bit WAV encoding and decoding
//
// A render flows through them in that order:
//
//	sheet, _ := songs.ParseSheet("twinkle", r)
//	piano, _ := songs.Load(sheet, songs.LoadOptions{}, synth.DefaultParams())
//	w, _ := piano.Render(ctx)
//	samples, _ := pcm.Quantize(w.Samples(), pcm.QuantizeClip)
//	data, _ := wav.Marshal(samples, 44100)
package audio
