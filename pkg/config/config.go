// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/user/av1rtc/pkg/av1config"
	"github.com/user/av1rtc/pkg/orchestrator"
	"github.com/user/av1rtc/pkg/pipeline"
	"github.com/user/av1rtc/pkg/ports"
)

// MaxThreads caps the default encoder thread count.
const MaxThreads = 8

// Config represents the full configuration for av1rtc.
type Config struct {
	// Output
	OutputPath  string `yaml:"output"`
	SummaryPath string `yaml:"summary"`

	// Capture
	Width   int         `yaml:"width"`
	Height  int         `yaml:"height"`
	FPS     float64     `yaml:"fps"`
	Frames  int         `yaml:"frames"`
	Workers int         `yaml:"workers"`
	Theme   ThemeConfig `yaml:"theme"`

	// Encoding
	Quality          av1config.Quality        `yaml:"quality"`
	KeyframeInterval int                      `yaml:"keyframe_interval"`
	Threads          int                      `yaml:"threads"`
	StrideAlign      int                      `yaml:"stride_align"`
	QualityChanges   []pipeline.QualityChange `yaml:"quality_changes"`

	// Verification
	Verify         bool `yaml:"verify"`
	ThumbnailEvery int  `yaml:"thumbnail_every"`
	ThumbnailWidth int  `yaml:"thumbnail_width"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// ThemeConfig holds hex colors of the synthetic screen. Empty entries keep
// the default theme.
type ThemeConfig struct {
	DesktopColor   string `yaml:"desktop_color"`
	WindowColor    string `yaml:"window_color"`
	TitleBarColor  string `yaml:"title_bar_color"`
	TextColor      string `yaml:"text_color"`
	HighlightColor string `yaml:"highlight_color"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		OutputPath: "output.mp4",

		Width:  1280,
		Height: 720,
		FPS:    30,
		Frames: 90,

		Quality:     av1config.Balanced,
		Threads:     DefaultThreads(),
		StrideAlign: 1,

		Verify:         true,
		ThumbnailWidth: 160,

		LogLevel:  "info",
		LogFormat: "console",

		DebugDir: "./debug",
	}
}

// DefaultThreads returns the number of CPUs, capped at MaxThreads.
func DefaultThreads() int {
	return min(runtime.NumCPU(), MaxThreads)
}

// Load reads a YAML file on top of Defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("width and height must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %v", c.FPS))
	}
	if c.Frames < 1 {
		errs = append(errs, fmt.Errorf("frames must be at least 1, got %d", c.Frames))
	}
	if c.KeyframeInterval < 0 {
		errs = append(errs, fmt.Errorf("keyframe_interval must not be negative, got %d", c.KeyframeInterval))
	}
	if c.Threads < 0 {
		errs = append(errs, fmt.Errorf("threads must not be negative, got %d", c.Threads))
	}
	if c.StrideAlign < 1 || c.StrideAlign&(c.StrideAlign-1) != 0 {
		errs = append(errs, fmt.Errorf("stride_align must be a power of two, got %d", c.StrideAlign))
	}
	if c.ThumbnailEvery < 0 || c.ThumbnailWidth < 0 {
		errs = append(errs, errors.New("thumbnail settings must not be negative"))
	}
	for _, qc := range c.QualityChanges {
		if qc.Frame < 0 || qc.Frame >= c.Frames {
			errs = append(errs, fmt.Errorf("quality change at frame %d is outside 0..%d", qc.Frame, c.Frames-1))
		}
	}
	switch c.LogFormat {
	case "console", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	if _, err := ports.LookupLogLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// ScreenTheme resolves the configured colors over the default theme.
func (c Config) ScreenTheme() pipeline.ScreenTheme {
	theme := pipeline.DefaultScreenTheme()
	set := func(dst *color.Color, hex string) {
		if hex != "" {
			*dst = ParseColor(hex)
		}
	}
	set(&theme.Desktop, c.Theme.DesktopColor)
	set(&theme.Window, c.Theme.WindowColor)
	set(&theme.TitleBar, c.Theme.TitleBarColor)
	set(&theme.Text, c.Theme.TextColor)
	set(&theme.Highlight, c.Theme.HighlightColor)
	return theme
}

// ParseColor parses "#rrggbb" or "rrggbb". Malformed input yields black.
func ParseColor(hex string) color.Color {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return color.Black
	}

	var rgb [3]uint8
	for i := range rgb {
		rgb[i] = hexValue(hex[2*i])<<4 | hexValue(hex[2*i+1])
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		OutputPath: c.OutputPath,

		Width:  c.Width,
		Height: c.Height,
		Frames: c.Frames,
		FPS:    c.FPS,
		Theme:  c.ScreenTheme(),

		Quality:          c.Quality,
		KeyframeInterval: c.KeyframeInterval,
		Threads:          c.Threads,
		StrideAlign:      c.StrideAlign,
		QualityChanges:   c.QualityChanges,

		Verify:         c.Verify,
		ThumbnailEvery: c.ThumbnailEvery,
		ThumbnailWidth: c.ThumbnailWidth,
	}
}
