// Package songs turns piano sheet notation into rendered audio.
//
// A sheet lists the tempos it may be played at, followed by blocks of three
// lines: a quoted label, the right hand and the left hand. Each hand line is a
// '-' separated list of "PitchOctave,Symbol" tokens:
//
//	Moderato,Allegro
//	"Twinkle, twinkle
//	C4,QN-C4,QN-G4,QN-G4,QN
//	C3,HN-E3,HN
//
// Notes are resolved to a frequency and a duration by Resolve, placed on a
// per-voice clock by Piano.AddNote and synthesized in Piano.Render, which
// sums every voice onto one timeline sized to the longest voice.
//
// Example usage:
//
//	sheet, err := songs.ParseSheet("twinkle", r)
//	piano, err := songs.Load(sheet, songs.LoadOptions{Tempo: "Moderato"}, synth.DefaultParams())
//	wave, err := piano.Render(ctx)
package songs
