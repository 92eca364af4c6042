package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gogpu/pixfilter"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the fully resolved service configuration.
type Config struct {
	Server ServerConfig
	Engine EngineConfig
	Log    LogConfig

	// Kernels are user-defined filters added to the built-in catalog.
	Kernels map[string]pixfilter.Kernel
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr string

	// StaticDir is served under /static/. If it contains index.html, that
	// page replaces the embedded one at /.
	StaticDir string

	MaxUploadBytes  int64
	MaxPixels       int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// EngineConfig configures the parallel filter engine.
type EngineConfig struct {
	Workers           int
	MinParallelPixels int
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			StaticDir:       "static",
			MaxUploadBytes:  20 << 20,
			MaxPixels:       40_000_000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Engine: EngineConfig{
			Workers:           0,
			MinParallelPixels: pixfilter.DefaultMinParallelPixels,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Kernels: map[string]pixfilter.Kernel{},
	}
}

// Validate checks value ranges that the HCL schema cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes))
	}
	if c.Server.MaxPixels < 0 {
		errs = append(errs, fmt.Errorf("server.max_pixels must not be negative, got %d", c.Server.MaxPixels))
	}
	if c.Engine.MinParallelPixels < 1 {
		errs = append(errs, fmt.Errorf("engine.min_parallel_pixels must be at least 1, got %d", c.Engine.MinParallelPixels))
	}
	if _, err := c.Log.level(); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log.format must be 'text' or 'json', got %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Catalog returns the built-in catalog extended with the configured kernels.
func (c *Config) Catalog() (*pixfilter.Catalog, error) {
	if len(c.Kernels) == 0 {
		return pixfilter.DefaultCatalog(), nil
	}
	extra := make(map[string]pixfilter.Spec, len(c.Kernels))
	for name, k := range c.Kernels {
		extra[name] = pixfilter.KernelSpec(k)
	}
	cat, err := pixfilter.DefaultCatalog().With(extra)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cat, nil
}

// EngineOptions converts the engine block into pixfilter options.
func (c *Config) EngineOptions() []pixfilter.EngineOption {
	return []pixfilter.EngineOption{
		pixfilter.WithWorkers(c.Engine.Workers),
		pixfilter.WithMinParallelPixels(c.Engine.MinParallelPixels),
	}
}

func (l LogConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level must be 'debug', 'info', 'warn' or 'error', got %q", l.Level)
	}
	return lvl, nil
}

// NewLogger builds a text or JSON slog.Logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := l.level()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(l.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: log.format must be 'text' or 'json', got %q", ErrInvalidConfig, l.Format)
	}
}
