package cli

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/pianowav/pkg/audio/pcm"
	"github.com/haivivi/pianowav/pkg/audio/songs"
	"github.com/haivivi/pianowav/pkg/audio/synth"
	"github.com/haivivi/pianowav/pkg/storage"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".pianowav"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
	// DefaultOutput is the output directory used when none is configured
	DefaultOutput = "output_songs"
)

// ErrInvalidConfig is returned by RenderConfig.Validate.
var ErrInvalidConfig = errors.New("cli: invalid config")

// RenderConfig holds the render settings read from the config file.
// Command line flags override individual fields.
type RenderConfig struct {
	SampleRate int       `yaml:"sample_rate" json:"sample_rate"`
	Amplitude  float64   `yaml:"amplitude" json:"amplitude"`
	Engine     string    `yaml:"engine" json:"engine"`
	Harmonics  []float64 `yaml:"harmonics,omitempty" json:"harmonics,omitempty"`
	Decay      []float64 `yaml:"decay,omitempty" json:"decay,omitempty"`
	Quantize   string    `yaml:"quantize" json:"quantize"`
	Layout     string    `yaml:"layout" json:"layout"`

	// OutputRate is the sample rate of the written files. Zero writes at
	// SampleRate.
	OutputRate int `yaml:"output_rate,omitempty" json:"output_rate,omitempty"`

	// Output is a directory or an s3://bucket/prefix URI.
	Output string `yaml:"output" json:"output"`

	// Parallel renders the voices of a song concurrently.
	Parallel bool `yaml:"parallel,omitempty" json:"parallel,omitempty"`

	Cache CacheConfig      `yaml:"cache" json:"cache"`
	S3    storage.S3Config `yaml:"s3,omitempty" json:"s3,omitempty"`
}

// CacheConfig controls the render cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Dir is the badger directory. Empty uses the cache dir under the base
	// directory.
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`

	// TTL is a Go duration such as "168h". Empty keeps entries forever.
	TTL string `yaml:"ttl,omitempty" json:"ttl,omitempty"`
}

// DefaultRenderConfig returns the settings used when no config file exists.
func DefaultRenderConfig() *RenderConfig {
	p := synth.DefaultParams()
	return &RenderConfig{
		SampleRate: p.SampleRate,
		Amplitude:  p.Amplitude,
		Engine:     p.Variant.String(),
		Harmonics:  p.Harmonics,
		Decay:      p.Decay[:],
		Quantize:   pcm.QuantizeClip.String(),
		Layout:     songs.LayoutHands.String(),
		Output:     DefaultOutput,
		Cache:      CacheConfig{Enabled: true},
	}
}

// LoadRenderConfig reads the config file at path over the defaults. A
// missing file yields the defaults and is not created.
func LoadRenderConfig(path string) (*RenderConfig, error) {
	cfg := DefaultRenderConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating its directory. The file may hold
// S3 keys, so it is only readable by the owner.
func (c *RenderConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks every field.
func (c *RenderConfig) Validate() error {
	var errs []error
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate))
	}
	if c.Amplitude <= 0 || math.IsNaN(c.Amplitude) || math.IsInf(c.Amplitude, 0) {
		errs = append(errs, fmt.Errorf("amplitude must be positive, got %v", c.Amplitude))
	}
	engine, err := synth.ParseVariant(c.Engine)
	if err != nil {
		errs = append(errs, err)
	}
	if engine == synth.Additive && len(c.Harmonics) == 0 {
		errs = append(errs, errors.New("additive engine needs harmonics"))
	}
	if len(c.Decay) != 0 && len(c.Decay) != 2 {
		errs = append(errs, fmt.Errorf("decay needs 2 values, got %d", len(c.Decay)))
	}
	if _, err := pcm.ParseQuantizeMode(c.Quantize); err != nil {
		errs = append(errs, err)
	}
	if _, err := songs.ParseLayout(c.Layout); err != nil {
		errs = append(errs, err)
	}
	if c.OutputRate < 0 {
		errs = append(errs, fmt.Errorf("output_rate must not be negative, got %d", c.OutputRate))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if _, err := c.CacheTTL(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Params returns the synthesis params. Call Validate first.
func (c *RenderConfig) Params() synth.Params {
	p := synth.DefaultParams()
	p.SampleRate = c.SampleRate
	p.Amplitude = c.Amplitude
	p.Variant, _ = synth.ParseVariant(c.Engine)
	if len(c.Harmonics) > 0 {
		p.Harmonics = append([]float64(nil), c.Harmonics...)
	}
	if len(c.Decay) == 2 {
		p.Decay = [2]float64{c.Decay[0], c.Decay[1]}
	}
	return p
}

// QuantizeMode returns the parsed quantize mode. Call Validate first.
func (c *RenderConfig) QuantizeMode() pcm.QuantizeMode {
	m, _ := pcm.ParseQuantizeMode(c.Quantize)
	return m
}

// SongLayout returns the parsed sheet layout. Call Validate first.
func (c *RenderConfig) SongLayout() songs.Layout {
	l, _ := songs.ParseLayout(c.Layout)
	return l
}

// WriteRate returns the sample rate of the written files.
func (c *RenderConfig) WriteRate() int {
	if c.OutputRate > 0 {
		return c.OutputRate
	}
	return c.SampleRate
}

// CacheTTL parses Cache.TTL. Empty is zero.
func (c *RenderConfig) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, fmt.Errorf("cache.ttl: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	return d, nil
}

// Redacted returns a copy with the S3 keys masked for display.
func (c *RenderConfig) Redacted() *RenderConfig {
	cp := *c
	cp.S3.AccessKey = MaskSecret(c.S3.AccessKey)
	cp.S3.SecretKey = MaskSecret(c.S3.SecretKey)
	return &cp
}

// MaskSecret masks a secret for display
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
