package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/haivivi/pianowav/pkg/audio/codec/wav"
	"github.com/haivivi/pianowav/pkg/audio/pcm"
	"github.com/haivivi/pianowav/pkg/audio/resampler"
	"github.com/haivivi/pianowav/pkg/audio/songs"
	"github.com/haivivi/pianowav/pkg/audio/synth"
	"github.com/haivivi/pianowav/pkg/cli"
	"github.com/haivivi/pianowav/pkg/kv"
	"github.com/haivivi/pianowav/pkg/rendercache"
	"github.com/haivivi/pianowav/pkg/storage"
)

// renderer turns jobs into stored files.
type renderer struct {
	cfg    *cli.RenderConfig
	params synth.Params
	store  storage.Store
	cache  *rendercache.Cache // nil when disabled
	raw    bool
	// skipExisting leaves songs whose output object already exists.
	skipExisting bool
	log          *slog.Logger
}

// openCache opens the badger-backed render cache. The closer releases the
// badger directory.
func openCache(cfg *cli.RenderConfig) (*rendercache.Cache, io.Closer, error) {
	dir := cfg.Cache.Dir
	if dir == "" {
		p, err := paths()
		if err != nil {
			return nil, nil, err
		}
		if err := p.EnsureCacheDir(); err != nil {
			return nil, nil, fmt.Errorf("create cache dir: %w", err)
		}
		dir = p.CacheDir()
	}
	store, err := kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		return nil, nil, err
	}
	ttl, err := cfg.CacheTTL()
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	slog.Debug("render cache opened", "dir", dir, "ttl", ttl)
	return rendercache.New(store, rendercache.WithTTL(ttl)), store, nil
}

// render renders one job and stores the result. Failures are returned in
// the result so the batch can continue.
func (r *renderer) render(ctx context.Context, j job) SongResult {
	res := SongResult{Song: j.name, Source: j.source}
	log := r.log.With("song", j.name)

	if r.skipExisting && j.err == nil {
		name := r.objectName(j.name)
		ok, err := r.store.Exists(ctx, name)
		if err != nil {
			log.Error("render failed", "error", err)
			res.Error = err.Error()
			return res
		}
		if ok {
			log.Info("song skipped, output exists", "location", r.store.Location(name))
			res.Skipped = true
			res.Location = r.store.Location(name)
			return res
		}
	}

	start := time.Now()
	log.Debug("render started", "source", j.source)
	err := r.renderTo(ctx, j, &res, log)
	if err != nil {
		log.Error("render failed", "error", err)
		res.Error = err.Error()
		return res
	}
	log.Info("song rendered",
		"tempos", res.Tempos,
		"location", res.Location,
		"samples", res.Samples,
		"cached", res.Cached,
		"elapsed", time.Since(start))
	return res
}

func (r *renderer) renderTo(ctx context.Context, j job, res *SongResult, log *slog.Logger) error {
	if j.err != nil {
		return j.err
	}
	sheet, err := songs.ParseSheet(j.name, bytes.NewReader(j.text))
	if err != nil {
		return err
	}
	tempos, err := sheet.PlayTempos(j.opts)
	if err != nil {
		return err
	}
	res.Tempos = tempos

	rate := r.cfg.WriteRate()
	req := &rendercache.Request{
		Sheet:      j.text,
		Tempos:     tempos,
		Layout:     j.opts.Layout.String(),
		Quantize:   r.cfg.QuantizeMode().String(),
		OutputRate: rate,
	}
	req.SetParams(r.params)

	entry, key := r.lookup(ctx, req, log)
	if entry != nil {
		res.Cached = true
	} else {
		entry, err = r.synthesize(ctx, sheet, j.opts, log)
		if err != nil {
			return err
		}
		if key != "" {
			if err := r.cache.Put(ctx, key, entry); err != nil {
				log.Warn("render cache put failed", "error", err)
			}
		}
	}
	if entry.OutOfRange > 0 {
		log.Warn("samples out of int16 range",
			"count", entry.OutOfRange,
			"peak", entry.Peak,
			"mode", r.cfg.Quantize)
	}

	name, data, contentType, err := r.encode(j.name, entry)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, name, data, contentType); err != nil {
		return err
	}

	res.SampleRate = entry.SampleRate
	res.Samples = len(entry.Samples)
	res.Duration = float64(len(entry.Samples)) / float64(entry.SampleRate)
	res.OutOfRange = entry.OutOfRange
	res.Location = r.store.Location(name)
	return nil
}

// lookup returns the cached entry for req, or nil with the key to store
// the fresh render under. The key is empty when there is no cache.
func (r *renderer) lookup(ctx context.Context, req *rendercache.Request, log *slog.Logger) (*rendercache.Entry, string) {
	if r.cache == nil {
		return nil, ""
	}
	key, err := req.Key()
	if err != nil {
		log.Warn("render cache key failed", "error", err)
		return nil, ""
	}
	e, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		log.Debug("render cache hit", "key", key)
		return e, ""
	case rendercache.IsMiss(err):
		log.Debug("render cache miss", "key", key)
	default:
		log.Warn("render cache get failed", "key", key, "error", err)
	}
	return nil, key
}

func (r *renderer) synthesize(ctx context.Context, sheet *songs.Sheet, opts songs.LoadOptions, log *slog.Logger) (*rendercache.Entry, error) {
	var popts []songs.Option
	if r.cfg.Parallel {
		popts = append(popts, songs.WithParallel())
	}
	piano, err := songs.Load(sheet, opts, r.params, popts...)
	if err != nil {
		return nil, err
	}
	log.Debug("sheet loaded", "piano", piano.String())

	w, err := piano.Render(ctx)
	if err != nil {
		return nil, err
	}
	samples, st := pcm.Quantize(w.Samples(), r.cfg.QuantizeMode())

	rate := r.cfg.WriteRate()
	if rate != r.params.SampleRate {
		samples, err = resampler.Resample(samples, r.params.SampleRate, rate)
		if err != nil {
			return nil, err
		}
		log.Debug("resampled", "from", r.params.SampleRate, "to", rate, "samples", len(samples))
	}
	return &rendercache.Entry{
		SampleRate: rate,
		Samples:    samples,
		OutOfRange: st.OutOfRange,
		Peak:       st.Peak,
	}, nil
}

// objectName is the stored name of song.
func (r *renderer) objectName(song string) string {
	if r.raw {
		return song + ".pcm"
	}
	return song + ".wav"
}

// encode returns the object name, bytes and content type to store.
func (r *renderer) encode(song string, e *rendercache.Entry) (string, []byte, string, error) {
	name := r.objectName(song)
	if r.raw {
		return name, pcm.Int16ToBytes(e.Samples), pcm.ContentType(e.SampleRate), nil
	}
	data, err := wav.Marshal(e.Samples, e.SampleRate)
	if err != nil {
		return "", nil, "", err
	}
	return name, data, "audio/wav", nil
}
