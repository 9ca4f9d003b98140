package easel

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Config holds tunables for a World. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	Viewport ViewportConfig `toml:"viewport" json:"viewport"`
	Input    InputConfig    `toml:"input" json:"input"`
	Retry    RetryConfig    `toml:"retry" json:"retry"`
	History  HistoryConfig  `toml:"history" json:"history"`
	Log      LogConfig      `toml:"log" json:"log"`
}

// ViewportConfig bounds the global zoom.
type ViewportConfig struct {
	MinScale float64 `toml:"min_scale" json:"minScale"`
	MaxScale float64 `toml:"max_scale" json:"maxScale"`
	ZoomStep float64 `toml:"zoom_step" json:"zoomStep"` // per wheel notch
}

// InputConfig tunes the built-in handlers.
type InputConfig struct {
	DragDeadZone float64 `toml:"drag_dead_zone" json:"dragDeadZone"` // pixels
}

// RetryConfig is the RetryPolicy applied to every render node.
type RetryConfig struct {
	Attempts int      `toml:"attempts" json:"attempts"`
	Interval Duration `toml:"interval" json:"interval"`
}

// HistoryConfig bounds the undo history.
type HistoryConfig struct {
	MaxRecords int `toml:"max_records" json:"maxRecords"` // 0 = unbounded
}

// LogConfig sets the package logger level.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
}

// Duration is a time.Duration written as a string ("50ms") in config files.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Viewport: ViewportConfig{MinScale: 0.02, MaxScale: 256, ZoomStep: 0.1},
		Input:    InputConfig{DragDeadZone: 0},
		Retry:    RetryConfig{Attempts: 3, Interval: Duration{50 * time.Millisecond}},
		History:  HistoryConfig{MaxRecords: 0},
		Log:      LogConfig{Level: "warn"},
	}
}

// LoadConfig reads a TOML file over the defaults. Keys absent from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, wrapError(CodeInvalidConfig, err, "load %s", path)
	}
	return cfg.finish(md)
}

// ParseConfig decodes TOML text over the defaults.
func ParseConfig(data string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, wrapError(CodeInvalidConfig, err, "parse config")
	}
	return cfg.finish(md)
}

func (c Config) finish(md toml.MetaData) (Config, error) {
	if keys := md.Undecoded(); len(keys) > 0 {
		return Config{}, newError(CodeInvalidConfig, "", "unknown config key %q", keys[0].String())
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks ranges and reports every problem found.
func (c Config) Validate() error {
	var errs []error
	if c.Viewport.MinScale <= 0 {
		errs = append(errs, fmt.Errorf("viewport.min_scale must be > 0, got %v", c.Viewport.MinScale))
	}
	if c.Viewport.MaxScale < c.Viewport.MinScale {
		errs = append(errs, fmt.Errorf("viewport.max_scale %v is below min_scale %v", c.Viewport.MaxScale, c.Viewport.MinScale))
	}
	if c.Viewport.ZoomStep <= 0 || c.Viewport.ZoomStep >= 1 {
		errs = append(errs, fmt.Errorf("viewport.zoom_step must be in (0, 1), got %v", c.Viewport.ZoomStep))
	}
	if c.Input.DragDeadZone < 0 {
		errs = append(errs, fmt.Errorf("input.drag_dead_zone must be >= 0, got %v", c.Input.DragDeadZone))
	}
	if c.Retry.Attempts < 1 {
		errs = append(errs, fmt.Errorf("retry.attempts must be >= 1, got %d", c.Retry.Attempts))
	}
	if c.Retry.Interval.Duration < 0 {
		errs = append(errs, fmt.Errorf("retry.interval must be >= 0, got %v", c.Retry.Interval))
	}
	if c.History.MaxRecords < 0 {
		errs = append(errs, fmt.Errorf("history.max_records must be >= 0, got %d", c.History.MaxRecords))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if len(errs) == 0 {
		return nil
	}
	return wrapError(CodeInvalidConfig, errors.Join(errs...), "invalid config")
}

// LogLevel returns the parsed log level, falling back to warn.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}

// RetryPolicy converts the retry section.
func (c Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: c.Retry.Attempts, Interval: c.Retry.Interval.Duration}
}
