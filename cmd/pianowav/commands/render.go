package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/haivivi/pianowav/pkg/audio/songs"
	"github.com/haivivi/pianowav/pkg/cli"
	"github.com/haivivi/pianowav/pkg/jsontime"
	"github.com/haivivi/pianowav/pkg/storage"
)

var (
	renderBuiltins   []string
	renderBatch      string
	renderTempo      string
	renderAllTempos  bool
	renderLayout     string
	renderEngine     string
	renderQuantize   string
	renderOutput     string
	renderOutputRate int
	renderSampleRate int
	renderParallel   bool
	renderNoCache    bool
	renderRaw        bool
	renderJobs       int
	renderSkip       bool
)

var renderCmd = &cobra.Command{
	Use:   "render [files...]",
	Short: "Render sheets to WAV files",
	Long: `Render sheet files and built-in songs to mono 16-bit WAV files.

Each song is written as <name>.wav into the output location, a directory
or an s3://bucket/prefix URI. A song that fails is reported and the rest
of the batch continues. The command exits non-zero if any song failed.
Song names must be unique within a run and may not contain path separators.

Sheets are read as label, right hand, left hand blocks by default. Sheets
without quoted labels, one voice per line, need --layout sequential.
--raw writes headerless little-endian L16 at any sample rate.

A batch manifest lists songs with per-song overrides:

  songs:
    - file: sheets/alouette.txt
      tempo: Allegro
    - builtin: row_row
      all_tempos: true
      name: row_row_all

Examples:
  pianowav render twinkle.txt alouette.txt
  pianowav render --builtin all --tempo Moderato
  pianowav render --batch songs.yaml --output s3://bucket/out --output-rate 22050`,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringSliceVarP(&renderBuiltins, "builtin", "b", nil, "built-in song id to render, or \"all\" (repeatable)")
	f.StringVarP(&renderBatch, "batch", "f", "", "batch manifest (YAML or JSON)")
	f.StringVarP(&renderTempo, "tempo", "t", "", "tempo to play at (default: first tempo listed by the sheet)")
	f.BoolVar(&renderAllTempos, "all-tempos", false, "play once per listed tempo, back to back")
	f.StringVar(&renderLayout, "layout", "", "sheet layout: hands (label, right, left blocks) or sequential (sheets without labels)")
	f.StringVar(&renderEngine, "engine", "", "synthesis engine (additive, sine)")
	f.StringVar(&renderQuantize, "quantize", "", "int16 conversion (clip, wrap, normalize)")
	f.StringVarP(&renderOutput, "output", "o", "", "output directory or s3://bucket/prefix")
	f.IntVar(&renderOutputRate, "output-rate", 0, "sample rate of the written files")
	f.IntVar(&renderSampleRate, "sample-rate", 0, "synthesis sample rate")
	f.BoolVar(&renderParallel, "parallel", false, "render the voices of a song concurrently")
	f.BoolVar(&renderNoCache, "no-cache", false, "skip the render cache")
	f.BoolVar(&renderRaw, "raw", false, "write headerless L16 .pcm files instead of WAV")
	f.IntVarP(&renderJobs, "jobs", "j", 1, "songs rendered concurrently")
	f.BoolVar(&renderSkip, "skip-existing", false, "leave songs whose output file already exists")

	rootCmd.AddCommand(renderCmd)
}

// BatchFile is the --batch manifest.
type BatchFile struct {
	Songs []BatchSong `json:"songs" yaml:"songs"`
}

// BatchSong is one manifest entry. Exactly one of File and Builtin is set.
// Relative files resolve against the manifest's directory.
type BatchSong struct {
	File      string `json:"file,omitempty" yaml:"file,omitempty"`
	Builtin   string `json:"builtin,omitempty" yaml:"builtin,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Tempo     string `json:"tempo,omitempty" yaml:"tempo,omitempty"`
	AllTempos bool   `json:"all_tempos,omitempty" yaml:"all_tempos,omitempty"`
	Layout    string `json:"layout,omitempty" yaml:"layout,omitempty"`
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	applyRenderFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	defaults := songs.LoadOptions{
		Tempo:     renderTempo,
		AllTempos: renderAllTempos,
		Layout:    cfg.SongLayout(),
	}
	jobs, err := collectJobs(args, renderBuiltins, renderBatch, defaults)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return errors.New("nothing to render: pass sheet files, --builtin or --batch")
	}
	if renderJobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", renderJobs)
	}

	ctx := cmd.Context()
	store, err := storage.Open(ctx, cfg.Output, cfg.S3)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	runID := uuid.NewString()
	r := &renderer{
		cfg:          cfg,
		params:       cfg.Params(),
		store:        store,
		raw:          renderRaw,
		skipExisting: renderSkip,
		log:          slog.Default().With("run", runID),
	}
	if cfg.Cache.Enabled && !renderNoCache {
		cache, closer, err := openCache(cfg)
		if err != nil {
			// A broken cache never blocks a render.
			r.log.Warn("render cache unavailable", "error", err)
		} else {
			defer closer.Close()
			r.cache = cache
		}
	}

	start := time.Now()
	report := &RenderReport{RunID: runID, Output: cfg.Output, Songs: make([]SongResult, len(jobs))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(renderJobs)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Songs[i] = r.render(gctx, j)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	report.Elapsed = jsontime.Since(start)

	for _, s := range report.Songs {
		if s.Error != "" {
			report.Failed++
			cli.PrintError(os.Stderr, "%s: %s", s.Song, s.Error)
		} else if s.OutOfRange > 0 {
			cli.PrintWarning(os.Stderr, "%s: %d samples out of int16 range (%s)", s.Song, s.OutOfRange, cfg.Quantize)
		}
	}
	if err := printReport(report); err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d songs failed", report.Failed, len(report.Songs))
	}
	return nil
}

func applyRenderFlags(cmd *cobra.Command, cfg *cli.RenderConfig) {
	f := cmd.Flags()
	if f.Changed("layout") {
		cfg.Layout = renderLayout
	}
	if f.Changed("engine") {
		cfg.Engine = renderEngine
	}
	if f.Changed("quantize") {
		cfg.Quantize = renderQuantize
	}
	if f.Changed("output") {
		cfg.Output = renderOutput
	}
	if f.Changed("output-rate") {
		cfg.OutputRate = renderOutputRate
	}
	if f.Changed("sample-rate") {
		cfg.SampleRate = renderSampleRate
	}
	if f.Changed("parallel") {
		cfg.Parallel = renderParallel
	}
}

// job is one song of a batch.
type job struct {
	name   string
	source string
	text   []byte
	opts   songs.LoadOptions
	err    error
}

func fileJob(path string, opts songs.LoadOptions) job {
	j := job{
		name:   strings.TrimSuffix(filepath.Base(path), ".txt"),
		source: path,
		opts:   opts,
	}
	j.text, j.err = os.ReadFile(path)
	return j
}

func builtinJobs(id string, opts songs.LoadOptions) ([]job, error) {
	var list []songs.Song
	if id == "all" {
		list = songs.All
	} else {
		s := songs.ByID(id)
		if s == nil {
			return nil, fmt.Errorf("unknown built-in song %q (have %s)", id, strings.Join(songs.IDs(), ", "))
		}
		list = []songs.Song{*s}
	}
	jobs := make([]job, 0, len(list))
	for _, s := range list {
		j := job{name: s.ID, source: "builtin:" + s.ID, opts: opts}
		j.text, j.err = s.Text()
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func collectJobs(files, builtins []string, batch string, opts songs.LoadOptions) ([]job, error) {
	var jobs []job
	for _, path := range files {
		jobs = append(jobs, fileJob(path, opts))
	}
	for _, id := range builtins {
		bj, err := builtinJobs(id, opts)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, bj...)
	}
	if batch != "" {
		bj, err := batchJobs(batch, opts)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, bj...)
	}
	if err := checkNames(jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// checkNames rejects song names that are not a single path element or that
// appear twice, since each one names an output file.
func checkNames(jobs []job) error {
	seen := make(map[string]string, len(jobs))
	for _, j := range jobs {
		if strings.ContainsAny(j.name, `/\`) || storage.CheckName(j.name) != nil {
			return fmt.Errorf("%s: invalid song name %q", j.source, j.name)
		}
		if prev, ok := seen[j.name]; ok {
			return fmt.Errorf("duplicate song name %q (%s and %s)", j.name, prev, j.source)
		}
		seen[j.name] = j.source
	}
	return nil
}

func batchJobs(path string, defaults songs.LoadOptions) ([]job, error) {
	var bf BatchFile
	if err := cli.LoadRequest(path, &bf); err != nil {
		return nil, err
	}
	base := filepath.Dir(path)
	var jobs []job
	for i, s := range bf.Songs {
		opts := defaults
		if s.Tempo != "" {
			opts.Tempo = s.Tempo
		}
		if s.AllTempos {
			opts.AllTempos = true
		}
		if s.Layout != "" {
			l, err := songs.ParseLayout(s.Layout)
			if err != nil {
				return nil, fmt.Errorf("%s: song %d: %w", path, i+1, err)
			}
			opts.Layout = l
		}

		var add []job
		switch {
		case s.File != "" && s.Builtin != "":
			return nil, fmt.Errorf("%s: song %d: set file or builtin, not both", path, i+1)
		case s.File != "":
			file := s.File
			if !filepath.IsAbs(file) {
				file = filepath.Join(base, file)
			}
			add = []job{fileJob(file, opts)}
		case s.Builtin != "":
			bj, err := builtinJobs(s.Builtin, opts)
			if err != nil {
				return nil, fmt.Errorf("%s: song %d: %w", path, i+1, err)
			}
			add = bj
		default:
			return nil, fmt.Errorf("%s: song %d: file or builtin is required", path, i+1)
		}
		if s.Name != "" {
			if len(add) > 1 {
				return nil, fmt.Errorf("%s: song %d: name needs a single song", path, i+1)
			}
			add[0].name = s.Name
		}
		jobs = append(jobs, add...)
	}
	return jobs, nil
}

// SongResult is one row of the render report.
type SongResult struct {
	Song       string   `json:"song" yaml:"song"`
	Source     string   `json:"source" yaml:"source"`
	Tempos     []string `json:"tempos,omitempty" yaml:"tempos,omitempty"`
	SampleRate int      `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
	Samples    int      `json:"samples,omitempty" yaml:"samples,omitempty"`
	Duration   float64  `json:"duration,omitempty" yaml:"duration,omitempty"`
	OutOfRange int      `json:"out_of_range,omitempty" yaml:"out_of_range,omitempty"`
	Cached     bool     `json:"cached,omitempty" yaml:"cached,omitempty"`
	Skipped    bool     `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Location   string   `json:"location,omitempty" yaml:"location,omitempty"`
	Error      string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// RenderReport is the result of a render run.
type RenderReport struct {
	RunID   string            `json:"run_id" yaml:"run_id"`
	Output  string            `json:"output" yaml:"output"`
	Songs   []SongResult      `json:"songs" yaml:"songs"`
	Failed  int               `json:"failed" yaml:"failed"`
	Elapsed jsontime.Duration `json:"elapsed" yaml:"elapsed"`
}

// Table implements cli.Tabler.
func (r *RenderReport) Table() *cli.Table {
	t := &cli.Table{
		Title:   "Render " + r.RunID,
		Headers: []string{"SONG", "TEMPOS", "DURATION", "RATE", "STATUS", "LOCATION"},
	}
	for _, s := range r.Songs {
		status := "ok"
		switch {
		case s.Error != "":
			status = "failed"
		case s.Skipped:
			status = "skipped"
		case s.Cached:
			status = "cached"
		}
		if s.OutOfRange > 0 && s.Error == "" {
			status += fmt.Sprintf(" (%d out of range)", s.OutOfRange)
		}
		rate := ""
		if s.SampleRate > 0 {
			rate = fmt.Sprintf("%d", s.SampleRate)
		}
		t.Rows = append(t.Rows, []string{
			s.Song,
			strings.Join(s.Tempos, ", "),
			cli.FormatSeconds(s.Duration),
			rate,
			status,
			s.Location,
		})
	}
	skipped := 0
	for _, s := range r.Songs {
		if s.Skipped {
			skipped++
		}
	}
	ok := len(r.Songs) - r.Failed - skipped
	t.Footer = fmt.Sprintf("%d rendered, %d skipped, %d failed in %s", ok, skipped, r.Failed, cli.FormatDuration(r.Elapsed.Std()))
	return t
}
