// Package rendercache stores quantized renders keyed by everything that
// affects their samples, so an unchanged sheet is not synthesized twice.
package rendercache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/pianowav/pkg/audio/synth"
	"github.com/haivivi/pianowav/pkg/kv"
)

// keyVersion is bumped whenever the render output for an unchanged Request
// changes.
const keyVersion = 1

const prefix = "render"

// Request holds every input that determines a render's samples.
type Request struct {
	Sheet      []byte     `msgpack:"-"`
	Tempos     []string   `msgpack:"tempos"`
	Layout     string     `msgpack:"layout"`
	SampleRate int        `msgpack:"sample_rate"`
	Amplitude  float64    `msgpack:"amplitude"`
	Engine     string     `msgpack:"engine"`
	Harmonics  []float64  `msgpack:"harmonics"`
	Decay      [2]float64 `msgpack:"decay"`
	Quantize   string     `msgpack:"quantize"`
	OutputRate int        `msgpack:"output_rate"`
}

// SetParams copies the synthesis params into r.
func (r *Request) SetParams(p synth.Params) {
	r.SampleRate = p.SampleRate
	r.Amplitude = p.Amplitude
	r.Engine = p.Variant.String()
	r.Harmonics = p.Harmonics
	r.Decay = p.Decay
}

type keyDoc struct {
	Version int      `msgpack:"v"`
	Sheet   string   `msgpack:"sheet"`
	Request *Request `msgpack:"req"`
}

// Key returns the hex digest identifying r.
func (r *Request) Key() (string, error) {
	sum := sha256.Sum256(r.Sheet)
	doc := keyDoc{Version: keyVersion, Sheet: hex.EncodeToString(sum[:]), Request: r}
	b, err := msgpack.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("rendercache: encode key: %w", err)
	}
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:]), nil
}

// Entry is a cached render.
type Entry struct {
	SampleRate int       `msgpack:"sample_rate"`
	Samples    []int16   `msgpack:"samples"`
	OutOfRange int       `msgpack:"out_of_range"`
	Peak       float64   `msgpack:"peak"`
	CreatedAt  time.Time `msgpack:"created_at"`
}

// Option configures a Cache.
type Option interface {
	apply(*Cache)
}

type ttlOption time.Duration

func (o ttlOption) apply(c *Cache) {
	c.ttl = time.Duration(o)
}

// WithTTL expires entries d after they are stored. Zero keeps them forever.
func WithTTL(d time.Duration) Option {
	return ttlOption(d)
}

// Cache is a render cache on top of a kv.Store.
type Cache struct {
	store kv.Store
	ttl   time.Duration
}

// New creates a Cache on store. The caller keeps ownership of store.
func New(store kv.Store, opts ...Option) *Cache {
	c := &Cache{store: store}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

// Get returns the entry stored under key. A miss returns an error matching
// kv.ErrNotFound.
func (c *Cache) Get(ctx context.Context, key string) (*Entry, error) {
	b, err := c.store.Get(ctx, kv.Key{prefix, key})
	if err != nil {
		return nil, fmt.Errorf("rendercache: get %s: %w", key, err)
	}
	var e Entry
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("rendercache: decode %s: %w", key, err)
	}
	return &e, nil
}

// Put stores e under key. A zero CreatedAt is set to the current time.
func (c *Cache) Put(ctx context.Context, key string, e *Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	b, err := msgpack.Marshal(e)
	if err != nil {
		return fmt.Errorf("rendercache: encode %s: %w", key, err)
	}
	if err := c.store.Set(ctx, kv.Key{prefix, key}, b, c.ttl); err != nil {
		return fmt.Errorf("rendercache: put %s: %w", key, err)
	}
	return nil
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries int   `json:"entries" yaml:"entries"`
	Bytes   int64 `json:"bytes" yaml:"bytes"`
}

// Stats counts the cached entries and their encoded size.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	for e, err := range c.store.List(ctx, kv.Key{prefix}) {
		if err != nil {
			return st, fmt.Errorf("rendercache: list: %w", err)
		}
		st.Entries++
		st.Bytes += int64(len(e.Value))
	}
	return st, nil
}

// Purge deletes every cached render and returns how many were removed.
func (c *Cache) Purge(ctx context.Context) (int, error) {
	n, err := c.store.DeletePrefix(ctx, kv.Key{prefix})
	if err != nil {
		return n, fmt.Errorf("rendercache: purge: %w", err)
	}
	return n, nil
}

// IsMiss reports whether err is a cache miss.
func IsMiss(err error) bool {
	return errors.Is(err, kv.ErrNotFound)
}
