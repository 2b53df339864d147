// Package wav reads and writes mono 16-bit PCM WAV files.
package wav

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

const (
	bitDepth  = 16
	channels  = 1
	formatPCM = 1
)

var (
	// ErrInvalidFile is returned when the input is not a RIFF/WAVE file.
	ErrInvalidFile = errors.New("wav: invalid file")

	// ErrUnsupported is returned for WAV files that are not mono 16-bit PCM.
	ErrUnsupported = errors.New("wav: unsupported format")
)

// Info describes a decoded WAV file.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Samples    int
}

// Duration returns the playing time of the file.
func (i Info) Duration() time.Duration {
	if i.SampleRate == 0 {
		return 0
	}
	return time.Duration(i.Samples) * time.Second / time.Duration(i.SampleRate)
}

// Encode writes samples to w as a mono 16-bit PCM WAV file. The file is built
// in memory and written with a single Write, so w never sees a partial header.
func Encode(w io.Writer, samples []int16, sampleRate int) error {
	data, err := Marshal(samples, sampleRate)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("wav: write: %w", err)
	}
	return nil
}

// Marshal returns samples as the bytes of a mono 16-bit PCM WAV file.
func Marshal(samples []int16, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrUnsupported, sampleRate)
	}
	var ws writeSeeker
	enc := gowav.NewEncoder(&ws, sampleRate, bitDepth, channels, formatPCM)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: channels},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("wav: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wav: encode: %w", err)
	}
	return ws.Bytes(), nil
}

// Decode reads a mono 16-bit PCM WAV file.
func Decode(r io.ReadSeeker) ([]int16, Info, error) {
	dec := gowav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, Info{}, ErrInvalidFile
	}
	info := Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	if dec.WavAudioFormat != formatPCM || info.Channels != channels || info.BitDepth != bitDepth {
		return nil, info, fmt.Errorf("%w: format %d, %d channels, %d bits",
			ErrUnsupported, dec.WavAudioFormat, info.Channels, info.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, info, fmt.Errorf("wav: decode: %w", err)
	}
	samples := make([]int16, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = int16(s)
	}
	info.Samples = len(samples)
	return samples, info, nil
}
