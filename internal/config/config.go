// Package config provides configuration types and defaults for tracklayout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/tracklayout/pkg/cache"
	"github.com/matzehuels/tracklayout/pkg/core/glyph"
	"github.com/matzehuels/tracklayout/pkg/core/layout"
	"github.com/matzehuels/tracklayout/pkg/core/swarm"
	errs "github.com/matzehuels/tracklayout/pkg/errors"
	"github.com/matzehuels/tracklayout/pkg/pipeline"
	"github.com/matzehuels/tracklayout/pkg/session"
)

// AppName names the config, cache and log directories.
const AppName = "tracklayout"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config holds all configuration for tracklayout.
type Config struct {
	Layout LayoutConfig `toml:"layout" mapstructure:"layout"`
	Swarm  SwarmConfig  `toml:"swarm" mapstructure:"swarm"`
	Render RenderConfig `toml:"render" mapstructure:"render"`
	Cache  CacheConfig  `toml:"cache" mapstructure:"cache"`
	Server ServerConfig `toml:"server" mapstructure:"server"`
	Log    LogConfig    `toml:"log" mapstructure:"log"`
}

// LayoutConfig holds the settings of a layout pass.
type LayoutConfig struct {
	CanvasWidth      float64 `toml:"canvas_width" mapstructure:"canvas_width"` // 0 = use the track's width
	RowHeight        float64 `toml:"row_height" mapstructure:"row_height"`
	RowGap           float64 `toml:"row_gap" mapstructure:"row_gap"`
	MinIntervalWidth float64 `toml:"min_interval_width" mapstructure:"min_interval_width"`
	BaseRadius       float64 `toml:"base_radius" mapstructure:"base_radius"`
	LabelPadding     float64 `toml:"label_padding" mapstructure:"label_padding"`
	MeasureLabels    bool    `toml:"measure_labels" mapstructure:"measure_labels"`
	Relax            bool    `toml:"relax" mapstructure:"relax"`
	Strict           bool    `toml:"strict" mapstructure:"strict"`
	Verify           bool    `toml:"verify" mapstructure:"verify"`
	AutoExpand       bool    `toml:"auto_expand" mapstructure:"auto_expand"`
	ExpandedWidth    float64 `toml:"expanded_width" mapstructure:"expanded_width"`
	ExpandedHeight   float64 `toml:"expanded_height" mapstructure:"expanded_height"`
}

// SwarmConfig holds the beeswarm budget.
type SwarmConfig struct {
	Width     float64 `toml:"width" mapstructure:"width"`
	Height    float64 `toml:"height" mapstructure:"height"`
	DotRadius float64 `toml:"dot_radius" mapstructure:"dot_radius"`
}

// RenderConfig holds output settings.
type RenderConfig struct {
	Formats     []string `toml:"formats" mapstructure:"formats"`
	Scale       float64  `toml:"scale" mapstructure:"scale"`
	Labels      bool     `toml:"labels" mapstructure:"labels"`
	Interaction bool     `toml:"interaction" mapstructure:"interaction"`
	ChromePath  string   `toml:"chrome_path" mapstructure:"chrome_path"` // empty = find Chrome on PATH
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend    string        `toml:"backend" mapstructure:"backend"` // file, redis or none
	Dir        string        `toml:"dir" mapstructure:"dir"`         // empty = XDG cache dir
	SessionTTL time.Duration `toml:"session_ttl" mapstructure:"session_ttl"`
	Redis      RedisConfig   `toml:"redis" mapstructure:"redis"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr" mapstructure:"addr"`
	Password string `toml:"password" mapstructure:"password"`
	DB       int    `toml:"db" mapstructure:"db"`
	Prefix   string `toml:"prefix" mapstructure:"prefix"`
	// Retries is the number of tries per redis command (0 = default).
	Retries int `toml:"retries" mapstructure:"retries"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `toml:"addr" mapstructure:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout" mapstructure:"write_timeout"`
	MaxBodyBytes int64         `toml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LogConfig holds log file settings. An empty File logs to stderr only.
type LogConfig struct {
	File       string `toml:"file" mapstructure:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// Default returns the built-in configuration.
func Default() *Config {
	b := swarm.DefaultBudget()
	return &Config{
		Layout: LayoutConfig{
			RowHeight:        layout.DefaultRowHeight,
			MinIntervalWidth: layout.DefaultMinIntervalWidth,
			BaseRadius:       glyph.DefaultBaseRadius,
			Relax:            true,
			ExpandedWidth:    layout.DefaultExpandedWidth,
			ExpandedHeight:   layout.DefaultExpandedHeight,
		},
		Swarm: SwarmConfig{Width: b.Width, Height: b.Height, DotRadius: b.DotRadius},
		Render: RenderConfig{
			Formats: []string{pipeline.FormatSVG},
			Scale:   pipeline.DefaultScale,
		},
		Cache: CacheConfig{
			Backend:    BackendFile,
			SessionTTL: session.DefaultTTL,
			Redis:      RedisConfig{Addr: "localhost:6379", Prefix: AppName + ":"},
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			MaxBodyBytes: 8 << 20,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Validate reports settings no component can run with.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "cache.backend must be one of file, redis, none; got %q", c.Cache.Backend)
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	if c.Layout.CanvasWidth != 0 {
		if err := errs.ValidateCanvasWidth(c.Layout.CanvasWidth); err != nil {
			return err
		}
	}
	opts := c.PipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// PipelineOptions maps the layout, swarm and render sections onto
// pipeline options. Runtime fields (logger, machine, path) are left for the
// caller.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		CanvasWidth:      c.Layout.CanvasWidth,
		RowHeight:        c.Layout.RowHeight,
		RowGap:           c.Layout.RowGap,
		MinIntervalWidth: c.Layout.MinIntervalWidth,
		BaseRadius:       c.Layout.BaseRadius,
		LabelPadding:     c.Layout.LabelPadding,
		MeasureLabels:    c.Layout.MeasureLabels,
		NoRelax:          !c.Layout.Relax,
		Strict:           c.Layout.Strict,
		Verify:           c.Layout.Verify,
		AutoExpand:       c.Layout.AutoExpand,
		ExpandedWidth:    c.Layout.ExpandedWidth,
		ExpandedHeight:   c.Layout.ExpandedHeight,
		Swarm:            swarm.Budget{Width: c.Swarm.Width, Height: c.Swarm.Height, DotRadius: c.Swarm.DotRadius},
		Formats:          c.Render.Formats,
		Scale:            c.Render.Scale,
		Labels:           c.Render.Labels,
		Interaction:      c.Render.Interaction,
		ChromePath:       c.Render.ChromePath,
	}
}

// RedisCacheConfig converts the redis section for cache.NewRedisCache.
func (c *Config) RedisCacheConfig() cache.RedisConfig {
	r := c.Cache.Redis
	return cache.RedisConfig{Addr: r.Addr, Password: r.Password, DB: r.DB, Prefix: r.Prefix, Retries: r.Retries}
}

// CacheDir returns the configured cache directory or the XDG default
// ($XDG_CACHE_HOME/tracklayout, falling back to ~/.cache/tracklayout).
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
