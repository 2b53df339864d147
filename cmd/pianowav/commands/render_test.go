package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/haivivi/pianowav/pkg/audio/codec/wav"
)

func readWAV(t *testing.T, path string) ([]int16, wav.Info) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	samples, info, err := wav.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return samples, info
}

func renderJSON(t *testing.T, args ...string) (*RenderReport, string, int) {
	t.Helper()
	stdout, stderr, code := runCmd(t, append(args, "--format", "json")...)
	var r RenderReport
	if err := json.Unmarshal([]byte(stdout), &r); err != nil {
		t.Fatalf("invalid JSON report %q: %v (stderr: %s)", stdout, err, stderr)
	}
	return &r, stderr, code
}

func TestRenderFile(t *testing.T) {
	env := setupTestEnv(t)
	sheet := writeFile(t, filepath.Join(env.home, "simple.txt"), testSheet)

	_, stderr, code := runCmd(t, "render", sheet, "--no-cache")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	samples, info := readWAV(t, filepath.Join(env.output, "simple.wav"))
	if info.SampleRate != 8000 || info.Channels != 1 || info.BitDepth != 16 {
		t.Fatalf("format = %+v", info)
	}
	if len(samples) != 16000 {
		t.Fatalf("len = %d, want 16000", len(samples))
	}
}

func TestRenderTempos(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		want  int
		tempo []string
	}{
		{"default", nil, 16000, []string{"Adagio"}},
		{"tempo", []string{"--tempo", "Allegro"}, 8000, []string{"Allegro"}},
		{"all tempos", []string{"--all-tempos"}, 24000, []string{"Adagio", "Allegro"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			sheet := writeFile(t, filepath.Join(env.home, "simple.txt"), testSheet)

			args := append([]string{"render", sheet, "--no-cache"}, tt.args...)
			r, stderr, code := renderJSON(t, args...)
			if code != 0 {
				t.Fatalf("expected exit 0, got %d: %s", code, stderr)
			}
			if diff := cmp.Diff(tt.tempo, r.Songs[0].Tempos); diff != "" {
				t.Errorf("tempos mismatch (-want +got):\n%s", diff)
			}
			if r.Songs[0].Samples != tt.want {
				t.Errorf("samples = %d, want %d", r.Songs[0].Samples, tt.want)
			}
			samples, _ := readWAV(t, filepath.Join(env.output, "simple.wav"))
			if len(samples) != tt.want {
				t.Errorf("wav len = %d, want %d", len(samples), tt.want)
			}
		})
	}
}

func TestRenderTempoNotListed(t *testing.T) {
	env := setupTestEnv(t)
	sheet := writeFile(t, filepath.Join(env.home, "simple.txt"), testSheet)

	_, stderr, code := runCmd(t, "render", sheet, "--no-cache", "--tempo", "Presto")
	if code == 0 {
		t.Fatal("expected non-zero exit")
	}
	if !strings.Contains(stderr, "tempo not listed") {
		t.Fatalf("expected 'tempo not listed', got: %s", stderr)
	}
}

func TestRenderBatchContinues(t *testing.T) {
	env := setupTestEnv(t)
	good := writeFile(t, filepath.Join(env.home, "good.txt"), testSheet)
	bad := writeFile(t, filepath.Join(env.home, "bad.txt"), "Adagio\n\"a\nC4,XN\nC3,QN\n")

	r, stderr, code := renderJSON(t, "render", bad, good, "--no-cache")
	if code == 0 {
		t.Fatal("expected non-zero exit")
	}
	if !strings.Contains(stderr, "1 of 2 songs failed") {
		t.Fatalf("expected failure summary, got: %s", stderr)
	}
	if r.Failed != 1 || r.Songs[0].Error == "" || r.Songs[1].Error != "" {
		t.Fatalf("report = %+v", r)
	}
	if !strings.Contains(r.Songs[0].Error, "unknown duration symbol") {
		t.Errorf("error = %q", r.Songs[0].Error)
	}
	if _, err := os.Stat(filepath.Join(env.output, "bad.wav")); !os.IsNotExist(err) {
		t.Errorf("bad.wav should not exist, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.output, "good.wav")); err != nil {
		t.Errorf("good.wav: %v", err)
	}
}

func TestRenderMissingFile(t *testing.T) {
	env := setupTestEnv(t)

	r, _, code := renderJSON(t, "render", filepath.Join(env.home, "nope.txt"), "--no-cache")
	if code == 0 {
		t.Fatal("expected non-zero exit")
	}
	if r.Failed != 1 || r.Songs[0].Song != "nope" {
		t.Fatalf("report = %+v", r)
	}
}

func TestRenderCache(t *testing.T) {
	env := setupTestEnv(t)
	sheet := writeFile(t, filepath.Join(env.home, "simple.txt"), testSheet)

	first, stderr, code := renderJSON(t, "render", sheet)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if first.Songs[0].Cached {
		t.Fatal("first render should not be cached")
	}
	want, _ := readWAV(t, filepath.Join(env.output, "simple.wav"))
	if err := os.Remove(filepath.Join(env.output, "simple.wav")); err != nil {
		t.Fatal(err)
	}

	second, stderr, code := renderJSON(t, "render", sheet)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if !second.Songs[0].Cached {
		t.Fatal("second render should be cached")
	}
	got, _ := readWAV(t, filepath.Join(env.output, "simple.wav"))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cached render differs (-want +got):\n%s", diff)
	}

	third, _, _ := renderJSON(t, "render", sheet, "--tempo", "Allegro")
	if third.Songs[0].Cached {
		t.Fatal("a different tempo should miss the cache")
	}

	stdout, _, code := runCmd(t, "cache", "stats", "--format", "json")
	if code != 0 {
		t.Fatalf("cache stats exit %d", code)
	}
	var st CacheStats
	if err := json.Unmarshal([]byte(stdout), &st); err != nil {
		t.Fatal(err)
	}
	if st.Entries != 2 {
		t.Fatalf("entries = %d, want 2", st.Entries)
	}

	stdout, _, code = runCmd(t, "cache", "purge")
	if code != 0 || !strings.Contains(stdout, "Purged 2") {
		t.Fatalf("purge exit %d: %s", code, stdout)
	}
}

func TestRenderOutputRate(t *testing.T) {
	env := setupTestEnv(t)
	sheet := writeFile(t, filepath.Join(env.home, "simple.txt"), testSheet)

	_, stderr, code := runCmd(t, "render", sheet, "--no-cache", "--output-rate", "16000")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	samples, info := readWAV(t, filepath.Join(env.output, "simple.wav"))
	if info.SampleRate != 16000 {
		t.Fatalf("rate = %d, want 16000", info.SampleRate)
	}
	if len(samples) != 32000 {
		t.Fatalf("len = %d, want 32000", len(samples))
	}
}

func TestRenderRaw(t *testing.T) {
	tests := []struct {
		rate string
		want int64
	}{
		{"8000", 2 * 16000},
		{"11025", 2 * 22050},
		{"16000", 2 * 32000},
	}
	for _, tt := range tests {
		t.Run(tt.rate, func(t *testing.T) {
			env := setupTestEnv(t)
			sheet := writeFile(t, filepath.Join(env.home, "simple.txt"), testSheet)

			_, stderr, code := runCmd(t, "render", sheet, "--no-cache", "--raw", "--sample-rate", tt.rate)
			if code != 0 {
				t.Fatalf("expected exit 0, got %d: %s", code, stderr)
			}
			fi, err := os.Stat(filepath.Join(env.output, "simple.pcm"))
			if err != nil {
				t.Fatal(err)
			}
			if fi.Size() != tt.want {
				t.Fatalf("size = %d, want %d", fi.Size(), tt.want)
			}
		})
	}
}

func TestRenderSequentialLayout(t *testing.T) {
	env := setupTestEnv(t)
	sheet := writeFile(t, filepath.Join(env.home, "melody.txt"), "Moderato\nC4,QN-D4,QN-E4,QN\n")

	_, stderr, code := runCmd(t, "render", sheet, "--no-cache")
	if code == 0 {
		t.Fatal("expected non-zero exit without --layout sequential")
	}
	if !strings.Contains(stderr, "expected a quoted label") {
		t.Fatalf("expected label error, got: %s", stderr)
	}

	r, stderr, code := renderJSON(t, "render", sheet, "--no-cache", "--layout", "sequential")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	// Three quarter notes at 90 BPM.
	if r.Songs[0].Samples != 16000 {
		t.Fatalf("samples = %d, want 16000", r.Songs[0].Samples)
	}
}

func TestRenderSkipExisting(t *testing.T) {
	env := setupTestEnv(t)
	sheet := writeFile(t, filepath.Join(env.home, "simple.txt"), testSheet)
	out := writeFile(t, filepath.Join(env.output, "simple.wav"), "keep")

	r, stderr, code := renderJSON(t, "render", sheet, "--no-cache", "--skip-existing")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if !r.Songs[0].Skipped || r.Songs[0].Location != out {
		t.Fatalf("report = %+v", r.Songs[0])
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "keep" {
		t.Fatal("existing output was overwritten")
	}

	r, stderr, code = renderJSON(t, "render", sheet, "--no-cache")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if r.Songs[0].Skipped {
		t.Fatal("song skipped without --skip-existing")
	}
	if samples, _ := readWAV(t, out); len(samples) != 16000 {
		t.Fatalf("len = %d, want 16000", len(samples))
	}
}

func TestRenderSongNames(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		files    []string
		want     string
	}{
		{"parent dir", "songs:\n  - builtin: row_row\n    name: ../x\n", nil, "invalid song name"},
		{"subdir", "songs:\n  - builtin: row_row\n    name: a/b\n", nil, "invalid song name"},
		{"dot", "songs:\n  - builtin: row_row\n    name: ..\n", nil, "invalid song name"},
		{"duplicate entries", "songs:\n  - builtin: row_row\n  - builtin: row_row\n", nil, "duplicate song name \"row_row\""},
		{"duplicate file and builtin", "songs:\n  - builtin: all\n", []string{"alouette.txt"}, "duplicate song name \"alouette\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			manifest := writeFile(t, filepath.Join(env.home, "batch.yaml"), tt.manifest)
			args := []string{"render", "--batch", manifest, "--no-cache"}
			for _, f := range tt.files {
				args = append(args, writeFile(t, filepath.Join(env.home, f), testSheet))
			}

			_, stderr, code := runCmd(t, args...)
			if code == 0 {
				t.Fatal("expected non-zero exit")
			}
			if !strings.Contains(stderr, tt.want) {
				t.Fatalf("expected %q, got: %s", tt.want, stderr)
			}
			if _, err := os.Stat(filepath.Join(env.home, "x.wav")); !os.IsNotExist(err) {
				t.Errorf("x.wav written outside output, stat err = %v", err)
			}
			if _, err := os.Stat(env.output); !os.IsNotExist(err) {
				t.Errorf("output created for a rejected run, stat err = %v", err)
			}
		})
	}
}

func TestRenderBuiltin(t *testing.T) {
	env := setupTestEnv(t)

	r, stderr, code := renderJSON(t, "render", "--builtin", "row_row", "--no-cache", "--parallel")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if len(r.Songs) != 1 || r.Songs[0].Source != "builtin:row_row" {
		t.Fatalf("report = %+v", r)
	}
	if _, err := os.Stat(filepath.Join(env.output, "row_row.wav")); err != nil {
		t.Fatal(err)
	}
}

func TestRenderBatch(t *testing.T) {
	env := setupTestEnv(t)
	writeFile(t, filepath.Join(env.home, "sheets", "simple.txt"), testSheet)
	manifest := writeFile(t, filepath.Join(env.home, "batch.yaml"), `songs:
  - file: sheets/simple.txt
    tempo: Allegro
  - file: sheets/simple.txt
    all_tempos: true
    name: simple_all
  - builtin: twinkle_twinkle
    layout: sequential
`)

	r, stderr, code := renderJSON(t, "render", "--batch", manifest, "--no-cache", "--jobs", "2")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	var names []string
	for _, s := range r.Songs {
		names = append(names, s.Song)
	}
	if diff := cmp.Diff([]string{"simple", "simple_all", "twinkle_twinkle"}, names); diff != "" {
		t.Fatalf("songs mismatch (-want +got):\n%s", diff)
	}
	if r.Songs[0].Samples != 8000 || r.Songs[1].Samples != 24000 {
		t.Fatalf("samples = %d, %d", r.Songs[0].Samples, r.Songs[1].Samples)
	}
}

func TestRenderBatchErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     string
	}{
		{"empty entry", "songs:\n  - tempo: Allegro\n", "file or builtin is required"},
		{"both", "songs:\n  - file: a.txt\n    builtin: row_row\n", "not both"},
		{"unknown builtin", "songs:\n  - builtin: nope\n", "unknown built-in song"},
		{"bad layout", "songs:\n  - builtin: row_row\n    layout: diagonal\n", "unknown layout"},
		{"name for all", "songs:\n  - builtin: all\n    name: x\n", "single song"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			manifest := writeFile(t, filepath.Join(env.home, "batch.yaml"), tt.manifest)

			_, stderr, code := runCmd(t, "render", "--batch", manifest, "--no-cache")
			if code == 0 {
				t.Fatal("expected non-zero exit")
			}
			if !strings.Contains(stderr, tt.want) {
				t.Fatalf("expected %q, got: %s", tt.want, stderr)
			}
		})
	}
}

func TestRenderUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"nothing", []string{"render"}, "nothing to render"},
		{"unknown builtin", []string{"render", "--builtin", "nope"}, "unknown built-in song"},
		{"bad engine", []string{"render", "--builtin", "row_row", "--engine", "organ"}, "invalid config"},
		{"bad quantize", []string{"render", "--builtin", "row_row", "--quantize", "round"}, "invalid config"},
		{"bad jobs", []string{"render", "--builtin", "row_row", "--jobs", "0"}, "--jobs"},
		{"bad output", []string{"render", "--builtin", "row_row", "--output", "s3://"}, "invalid uri"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestEnv(t)

			_, stderr, code := runCmd(t, tt.args...)
			if code == 0 {
				t.Fatal("expected non-zero exit")
			}
			if !strings.Contains(stderr, tt.want) {
				t.Fatalf("expected %q, got: %s", tt.want, stderr)
			}
		})
	}
}
