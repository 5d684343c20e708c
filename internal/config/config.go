// Package config holds the settings shared by the eviltransform commands.
// Values come from defaults, an optional YAML file, a .env file and
// EVILTRANSFORM_* environment variables, in increasing precedence.
package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pspoerri/eviltransform/internal/batch"
	"github.com/pspoerri/eviltransform/internal/coord"
	"github.com/pspoerri/eviltransform/internal/encode"
	"github.com/pspoerri/eviltransform/internal/track"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EVILTRANSFORM_"

// ErrInvalid is wrapped by Validate failures.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Transform Transform `yaml:"transform"`
	Batch     Batch     `yaml:"batch"`
	Plot      Plot      `yaml:"plot"`
	Server    Server    `yaml:"server"`
}

// Transform configures the GCJ-02 inverse.
type Transform struct {
	Method        string  `yaml:"method"` // approx, exact, none, bd09
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
	Limit         int     `yaml:"limit"` // rows loaded from a track file
}

// Batch configures the slice mapper.
type Batch struct {
	Concurrency int  `yaml:"concurrency"`
	ChunkSize   int  `yaml:"chunk_size"`
	Strict      bool `yaml:"strict"`
	Verbose     bool `yaml:"verbose"`
}

// Plot configures the scatter renderer.
type Plot struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	PointSize int    `yaml:"point_size"`
	Mercator  bool   `yaml:"mercator"`
	Quality   int    `yaml:"quality"`
	Format    string `yaml:"format"` // used when the output path has no extension
}

// Server configures the HTTP service.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxPoints       int           `yaml:"max_points"` // per transform request
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Transform: Transform{
			Method:        "approx",
			Tolerance:     coord.DefaultTolerance,
			MaxIterations: coord.DefaultMaxIterations,
			Limit:         track.DefaultLimit,
		},
		Batch: Batch{
			Concurrency: runtime.NumCPU(),
			ChunkSize:   batch.DefaultChunkSize,
		},
		Plot: Plot{
			Width:     1024,
			Height:    1024,
			PointSize: 1,
			Quality:   encode.DefaultQuality,
			Format:    "png",
		},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxPoints:       100000,
		},
	}
}

// Load returns the default configuration overlaid with the YAML file at path
// (skipped when path is empty), then with environment overrides. envFiles
// are loaded into the environment first; with none given an optional .env in
// the working directory is used. Variables already set are not replaced.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config file %s", path)
		}
	}

	if len(envFiles) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			envFiles = []string{".env"}
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return cfg, errors.Wrap(err, "load env file")
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"METHOD":      &c.Transform.Method,
		"ADDR":        &c.Server.Addr,
		"PLOT_FORMAT": &c.Plot.Format,
	}
	ints := map[string]*int{
		"MAX_ITERATIONS": &c.Transform.MaxIterations,
		"LIMIT":          &c.Transform.Limit,
		"CONCURRENCY":    &c.Batch.Concurrency,
		"CHUNK_SIZE":     &c.Batch.ChunkSize,
		"PLOT_WIDTH":     &c.Plot.Width,
		"PLOT_HEIGHT":    &c.Plot.Height,
		"QUALITY":        &c.Plot.Quality,
		"MAX_POINTS":     &c.Server.MaxPoints,
	}
	bools := map[string]*bool{
		"STRICT":   &c.Batch.Strict,
		"VERBOSE":  &c.Batch.Verbose,
		"MERCATOR": &c.Plot.Mercator,
	}
	durations := map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT": &c.Server.ShutdownTimeout,
	}

	for k, p := range strs {
		if v, ok := lookup(k); ok {
			*p = v
		}
	}
	for k, p := range ints {
		if v, ok := lookup(k); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(err, "%s%s", EnvPrefix, k)
			}
			*p = n
		}
	}
	for k, p := range bools {
		if v, ok := lookup(k); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Wrapf(err, "%s%s", EnvPrefix, k)
			}
			*p = b
		}
	}
	for k, p := range durations {
		if v, ok := lookup(k); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return errors.Wrapf(err, "%s%s", EnvPrefix, k)
			}
			*p = d
		}
	}
	if v, ok := lookup("TOLERANCE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "%sTOLERANCE", EnvPrefix)
		}
		c.Transform.Tolerance = f
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := track.ParseMethod(c.Transform.Method); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	switch {
	case c.Transform.Tolerance <= 0:
		return errors.Wrapf(ErrInvalid, "tolerance must be positive, got %v", c.Transform.Tolerance)
	case c.Transform.MaxIterations < 1:
		return errors.Wrapf(ErrInvalid, "max_iterations must be >= 1, got %d", c.Transform.MaxIterations)
	case c.Batch.Concurrency < 1:
		return errors.Wrapf(ErrInvalid, "concurrency must be >= 1, got %d", c.Batch.Concurrency)
	case c.Batch.ChunkSize < 1:
		return errors.Wrapf(ErrInvalid, "chunk_size must be >= 1, got %d", c.Batch.ChunkSize)
	case c.Plot.Width < 1 || c.Plot.Height < 1:
		return errors.Wrapf(ErrInvalid, "plot size must be positive, got %dx%d", c.Plot.Width, c.Plot.Height)
	case c.Plot.PointSize < 1:
		return errors.Wrapf(ErrInvalid, "point_size must be >= 1, got %d", c.Plot.PointSize)
	case c.Plot.Quality < 1 || c.Plot.Quality > 100:
		return errors.Wrapf(ErrInvalid, "quality must be in [1, 100], got %d", c.Plot.Quality)
	case c.Server.Addr == "":
		return errors.Wrap(ErrInvalid, "server addr is empty")
	case c.Server.MaxPoints < 1:
		return errors.Wrapf(ErrInvalid, "max_points must be >= 1, got %d", c.Server.MaxPoints)
	}
	if _, err := encode.NewEncoder(c.Plot.Format, c.Plot.Quality); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	return nil
}

// Method returns the parsed conversion method.
func (c Config) Method() track.Method {
	m, _ := track.ParseMethod(c.Transform.Method)
	return m
}

// BatchConfig returns the mapper settings.
func (c Config) BatchConfig() batch.Config {
	return batch.Config{
		Concurrency:   c.Batch.Concurrency,
		ChunkSize:     c.Batch.ChunkSize,
		Tolerance:     c.Transform.Tolerance,
		MaxIterations: c.Transform.MaxIterations,
		Strict:        c.Batch.Strict,
		Verbose:       c.Batch.Verbose,
	}
}
