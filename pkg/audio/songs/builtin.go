package songs

import (
	"bytes"
	"embed"
)

//go:embed sheets/*.txt
var sheetFS embed.FS

// Song is a built-in sheet.
type Song struct {
	ID   string // Unique identifier, also the output file name
	Name string // Display name
	file string
}

// All contains every built-in song.
var All = []Song{
	{ID: "alouette", Name: "Alouette", file: "sheets/alouette.txt"},
	{ID: "row_row", Name: "Row, Row, Row Your Boat", file: "sheets/row_row.txt"},
	{ID: "twinkle_twinkle", Name: "Twinkle, Twinkle, Little Star", file: "sheets/twinkle_twinkle.txt"},
}

// Text returns the raw sheet notation.
func (s Song) Text() ([]byte, error) {
	return sheetFS.ReadFile(s.file)
}

// Sheet parses the song's notation.
func (s Song) Sheet() (*Sheet, error) {
	data, err := s.Text()
	if err != nil {
		return nil, err
	}
	return ParseSheet(s.ID, bytes.NewReader(data))
}

// ByID returns a song by its ID, or nil if not found.
func ByID(id string) *Song {
	for i := range All {
		if All[i].ID == id {
			return &All[i]
		}
	}
	return nil
}

// IDs returns all song IDs.
func IDs() []string {
	ids := make([]string, len(All))
	for i, s := range All {
		ids[i] = s.ID
	}
	return ids
}

// Names returns all song names.
func Names() []string {
	names := make([]string, len(All))
	for i, s := range All {
		names[i] = s.Name
	}
	return names
}
