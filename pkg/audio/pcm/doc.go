// Package pcm converts rendered sample buffers to 16-bit PCM.
//
// Quantize turns floating point samples into int16 using one of three
// overflow modes and reports how many samples did not fit. Int16ToBytes and
// ContentType produce headerless audio/L16 output.
//
// Example usage:
//
//	samples, stats := pcm.Quantize(buf, pcm.QuantizeClip)
//	if stats.OutOfRange > 0 {
//	    slog.Warn("out of range", "samples", stats.OutOfRange)
//	}
//	data := pcm.Int16ToBytes(samples)
//	err := store.Put(ctx, "song.pcm", data, pcm.ContentType(44100))
package pcm
