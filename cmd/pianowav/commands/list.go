package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/pianowav/pkg/audio/songs"
	"github.com/haivivi/pianowav/pkg/cli"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in songs",
	Long: `List the built-in songs with their tempos and the length of each voice
at the first listed tempo.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		list := &SongList{}
		for _, s := range songs.All {
			info, err := describeSong(s, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", s.ID, err)
			}
			list.Songs = append(list.Songs, info)
		}
		return printReport(list)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// SongInfo describes a built-in song.
type SongInfo struct {
	ID     string             `json:"id" yaml:"id"`
	Name   string             `json:"name" yaml:"name"`
	Tempos []string           `json:"tempos" yaml:"tempos"`
	Voices map[string]float64 `json:"voices" yaml:"voices"`
}

// SongList is the result of the list command.
type SongList struct {
	Songs []SongInfo `json:"songs" yaml:"songs"`
}

// Table implements cli.Tabler.
func (l *SongList) Table() *cli.Table {
	t := &cli.Table{
		Title:   "Built-in songs",
		Headers: []string{"ID", "NAME", "TEMPOS", "RIGHT", "LEFT"},
	}
	for _, s := range l.Songs {
		t.Rows = append(t.Rows, []string{
			s.ID,
			s.Name,
			strings.Join(s.Tempos, ", "),
			cli.FormatSeconds(s.Voices[songs.RightHand.String()]),
			cli.FormatSeconds(s.Voices[songs.LeftHand.String()]),
		})
	}
	t.Footer = fmt.Sprintf("%d songs", len(l.Songs))
	return t
}

func describeSong(s songs.Song, cfg *cli.RenderConfig) (SongInfo, error) {
	sheet, err := s.Sheet()
	if err != nil {
		return SongInfo{}, err
	}
	piano, err := songs.Load(sheet, songs.LoadOptions{Layout: cfg.SongLayout()}, cfg.Params())
	if err != nil {
		return SongInfo{}, err
	}
	info := SongInfo{
		ID:     s.ID,
		Name:   s.Name,
		Tempos: sheet.Tempos,
		Voices: make(map[string]float64),
	}
	for _, v := range piano.Voices() {
		info.Voices[v.ID.String()] = v.Clock
	}
	return info, nil
}
