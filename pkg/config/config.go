// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"maps"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/user/framecast/pkg/framecast"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FRAMECAST_"

// Config represents the full configuration for framecast.
type Config struct {
	// Output
	OutputPath  string `yaml:"output"`
	SummaryPath string `yaml:"summary"`
	MetricsFile string `yaml:"metrics_file"`

	// Encoding
	Concurrency  int     `yaml:"concurrency"`
	ClusterMaxMs float64 `yaml:"cluster_max_ms"`
	DurationMs   float64 `yaml:"duration_ms"`
	FPS          float64 `yaml:"fps"`
	Verify       bool    `yaml:"verify"`

	Capture CaptureConfig `yaml:"capture"`
	Poster  PosterConfig  `yaml:"poster"`

	// Logging and debug
	LogLevel string `yaml:"log_level"`
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// CaptureConfig represents browser capture settings.
type CaptureConfig struct {
	Width             int               `yaml:"width"`
	Height            int               `yaml:"height"`
	Frames            int               `yaml:"frames"`
	IntervalMs        int               `yaml:"interval_ms"`
	Quality           int               `yaml:"quality"`
	TimeoutSec        int               `yaml:"timeout_sec"`
	Headers           map[string]string `yaml:"headers"`
	UserAgent         string            `yaml:"user_agent"`
	ChromePath        string            `yaml:"chrome_path"`
	IgnoreHTTPSErrors bool              `yaml:"ignore_https_errors"`
	ProxyServer       string            `yaml:"proxy_server"`
	AutoInstall       bool              `yaml:"auto_install"`
}

// PosterConfig represents poster options.
type PosterConfig struct {
	Path      string  `yaml:"path"`
	MaxWidth  int     `yaml:"max_width"`
	Caption   string  `yaml:"caption"`
	FontPath  string  `yaml:"font_path"`
	FontSize  float64 `yaml:"font_size"`
	BarColor  string  `yaml:"bar_color"`
	TextColor string  `yaml:"text_color"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		ClusterMaxMs: 30000,
		DurationMs:   100,

		Capture: CaptureConfig{
			Width:      1280,
			Height:     800,
			Frames:     30,
			IntervalMs: 200,
			Quality:    80,
			TimeoutSec: 30,
		},

		Poster: PosterConfig{
			MaxWidth:  640,
			FontSize:  14,
			BarColor:  "#2d2d2ddc",
			TextColor: "#ffffff",
		},

		LogLevel: "info",
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file over Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Load reads the YAML file at path (skipped when empty), then applies
// environment overrides. Variables from envFiles are used only where the
// process environment does not set them.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return cfg, err
		}
	}

	env := map[string]string{}
	if len(envFiles) > 0 {
		fileEnv, err := godotenv.Read(envFiles...)
		if err != nil {
			return cfg, fmt.Errorf("read env file: %w", err)
		}
		maps.Copy(env, fileEnv)
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}

	if err := cfg.ApplyEnv(env); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type envBinding struct {
	key string
	set func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"OUTPUT", func(c *Config, v string) error { c.OutputPath = v; return nil }},
	{"SUMMARY", func(c *Config, v string) error { c.SummaryPath = v; return nil }},
	{"METRICS_FILE", func(c *Config, v string) error { c.MetricsFile = v; return nil }},
	{"CONCURRENCY", intSetter(func(c *Config) *int { return &c.Concurrency })},
	{"CLUSTER_MAX_MS", floatSetter(func(c *Config) *float64 { return &c.ClusterMaxMs })},
	{"DURATION_MS", floatSetter(func(c *Config) *float64 { return &c.DurationMs })},
	{"FPS", floatSetter(func(c *Config) *float64 { return &c.FPS })},
	{"VERIFY", boolSetter(func(c *Config) *bool { return &c.Verify })},
	{"CHROME_PATH", func(c *Config, v string) error { c.Capture.ChromePath = v; return nil }},
	{"PROXY_SERVER", func(c *Config, v string) error { c.Capture.ProxyServer = v; return nil }},
	{"USER_AGENT", func(c *Config, v string) error { c.Capture.UserAgent = v; return nil }},
	{"AUTO_INSTALL", boolSetter(func(c *Config) *bool { return &c.Capture.AutoInstall })},
	{"FONT_PATH", func(c *Config, v string) error { c.Poster.FontPath = v; return nil }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.LogLevel = v; return nil }},
	{"DEBUG", boolSetter(func(c *Config) *bool { return &c.Debug })},
	{"DEBUG_DIR", func(c *Config, v string) error { c.DebugDir = v; return nil }},
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func floatSetter(field func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// ApplyEnv applies FRAMECAST_* overrides from env. Empty values are ignored.
func (c *Config) ApplyEnv(env map[string]string) error {
	for _, b := range envBindings {
		v := strings.TrimSpace(env[EnvPrefix+b.key])
		if v == "" {
			continue
		}
		if err := b.set(c, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, b.key, err)
		}
	}
	return nil
}

// ParseColor parses "#RRGGBB" or "#RRGGBBAA".
func ParseColor(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", hex)
	}
	if len(s) == 6 {
		s += "ff"
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", hex)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Builder returns a framecast.ConfigBuilder seeded from c. Invalid poster
// colors are reported; the builder keeps its default for them.
func (c Config) Builder() (*framecast.ConfigBuilder, error) {
	b := framecast.NewConfigBuilder().
		WithConcurrency(c.Concurrency).
		WithClusterMaxDurationMs(c.ClusterMaxMs).
		WithFrameDurationMs(c.DurationMs).
		WithVerify(c.Verify).
		WithViewport(c.Capture.Width, c.Capture.Height).
		WithFrames(c.Capture.Frames).
		WithIntervalMs(c.Capture.IntervalMs).
		WithQuality(c.Capture.Quality).
		WithTimeoutSec(c.Capture.TimeoutSec).
		WithHeaders(c.Capture.Headers).
		WithUserAgent(c.Capture.UserAgent).
		WithChromePath(c.Capture.ChromePath).
		WithIgnoreHTTPSErrors(c.Capture.IgnoreHTTPSErrors).
		WithProxyServer(c.Capture.ProxyServer).
		WithAutoInstall(c.Capture.AutoInstall).
		WithPosterMaxWidth(c.Poster.MaxWidth).
		WithPosterCaption(c.Poster.Caption).
		WithPosterFontSize(c.Poster.FontSize).
		WithFontPath(c.Poster.FontPath)
	if c.FPS > 0 {
		b.WithFPS(c.FPS)
	}

	defaults := b.Build()
	bar, text := defaults.PosterBarColor, defaults.PosterTextColor
	var colorErr error
	if c.Poster.BarColor != "" {
		if parsed, err := ParseColor(c.Poster.BarColor); err != nil {
			colorErr = fmt.Errorf("poster bar_color: %w", err)
		} else {
			bar = parsed
		}
	}
	if c.Poster.TextColor != "" {
		if parsed, err := ParseColor(c.Poster.TextColor); err != nil {
			colorErr = fmt.Errorf("poster text_color: %w", err)
		} else {
			text = parsed
		}
	}
	b.WithPosterColors(bar, text)

	return b, colorErr
}
