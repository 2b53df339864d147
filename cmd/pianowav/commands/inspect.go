package commands

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/pianowav/pkg/audio/codec/wav"
	"github.com/haivivi/pianowav/pkg/cli"
	"github.com/haivivi/pianowav/pkg/storage"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.wav>",
	Short: "Show the format of a WAV file",
	Long: `Show the sample rate, length and peak of a mono 16-bit WAV file.

The file may be a local path or an s3://bucket/key URI.

Examples:
  pianowav inspect output_songs/alouette.wav
  pianowav inspect s3://bucket/songs/alouette.wav --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// WAVInfo is the result of the inspect command.
type WAVInfo struct {
	File       string  `json:"file" yaml:"file"`
	SampleRate int     `json:"sample_rate" yaml:"sample_rate"`
	Channels   int     `json:"channels" yaml:"channels"`
	BitDepth   int     `json:"bit_depth" yaml:"bit_depth"`
	Samples    int     `json:"samples" yaml:"samples"`
	Duration   float64 `json:"duration" yaml:"duration"`
	Peak       int     `json:"peak" yaml:"peak"`
	FullScale  int     `json:"full_scale" yaml:"full_scale"`
}

// Table implements cli.Tabler.
func (w *WAVInfo) Table() *cli.Table {
	return &cli.Table{
		Title:   w.File,
		Headers: []string{"FIELD", "VALUE"},
		Rows: [][]string{
			{"sample rate", fmt.Sprintf("%d Hz", w.SampleRate)},
			{"channels", fmt.Sprintf("%d", w.Channels)},
			{"bit depth", fmt.Sprintf("%d", w.BitDepth)},
			{"samples", fmt.Sprintf("%d", w.Samples)},
			{"duration", cli.FormatSeconds(w.Duration)},
			{"peak", fmt.Sprintf("%d", w.Peak)},
			{"full scale samples", fmt.Sprintf("%d", w.FullScale)},
		},
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	dir, name := storage.Split(args[0])
	store, err := storage.Open(cmd.Context(), dir, cfg.S3)
	if err != nil {
		return err
	}
	data, err := store.Get(cmd.Context(), name)
	if err != nil {
		return err
	}
	samples, info, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return printReport(describeWAV(args[0], samples, info))
}

func describeWAV(file string, samples []int16, info wav.Info) *WAVInfo {
	w := &WAVInfo{
		File:       file,
		SampleRate: info.SampleRate,
		Channels:   info.Channels,
		BitDepth:   info.BitDepth,
		Samples:    len(samples),
		Duration:   info.Duration().Seconds(),
	}
	for _, s := range samples {
		a := int(s)
		if a < 0 {
			a = -a
		}
		w.Peak = max(w.Peak, a)
		if s == 32767 || s == -32768 {
			w.FullScale++
		}
	}
	return w
}
