// Package framecast provides a high-level API for turning still images into
// WebM videos.
package framecast

import (
	"image/color"

	"github.com/user/framecast/pkg/orchestrator"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
	"github.com/user/framecast/pkg/summarizer"
)

// Longest frame a block timecode can express.
const maxFrameDurationMs = 32767

// QualityPreset represents a screenshot quality preset name.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// ScreenshotQuality returns the WebP quality for the given preset.
func ScreenshotQuality(preset QualityPreset) int {
	switch preset {
	case QualityLow:
		return 50
	case QualityHigh:
		return 95
	default: // medium
		return 80
	}
}

// Config represents the configuration for framecast video generation.
type Config struct {
	// Encoding
	Concurrency          int     // Frames extracted in parallel (0 = one per CPU)
	ClusterMaxDurationMs float64 // Cluster duration cap (default: 30000)
	FrameDurationMs      float64 // Display time for stills without their own duration
	Verify               bool    // Cross-check each still with a full decoder

	// Capture
	Width      int // Viewport width (default: 1280)
	Height     int // Viewport height (default: 800)
	Frames     int // Screenshots to take (min: 1)
	IntervalMs int // Delay between screenshots (min: 1)
	Quality    int // WebP quality (0-100)
	TimeoutSec int // Capture timeout in seconds (default: 30)
	Headers    map[string]string

	// Browser options
	ChromePath        string
	UserAgent         string
	IgnoreHTTPSErrors bool
	ProxyServer       string // HTTP proxy server (e.g., "http://proxy:8080")
	AutoInstall       bool   // Download Chromium when none is installed

	// Poster
	PosterMaxWidth  int // Scale the poster down to this width (0 = keep)
	PosterCaption   string
	PosterBarColor  color.Color
	PosterTextColor color.Color
	PosterFontSize  float64
	FontPath        string
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with desktop preset defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: desktopDefaults(),
	}
}

// NewMobileConfigBuilder creates a new ConfigBuilder with mobile preset defaults.
func NewMobileConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: mobileDefaults(),
	}
}

func desktopDefaults() Config {
	theme := pipeline.DefaultPosterTheme()
	return Config{
		ClusterMaxDurationMs: 30000,
		FrameDurationMs:      100,

		Width:      1280,
		Height:     800,
		Frames:     30,
		IntervalMs: 200,
		Quality:    ScreenshotQuality(QualityMedium),
		TimeoutSec: 30,

		PosterMaxWidth:  640,
		PosterBarColor:  theme.BarColor,
		PosterTextColor: theme.TextColor,
		PosterFontSize:  theme.FontSize,
	}
}

func mobileDefaults() Config {
	cfg := desktopDefaults()
	cfg.Width = 375
	cfg.Height = 667
	cfg.PosterMaxWidth = 375
	return cfg
}

// Build returns the final Config, applying validation and constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	if cfg.Concurrency < 0 {
		cfg.Concurrency = 0
	}
	if cfg.ClusterMaxDurationMs <= 0 {
		cfg.ClusterMaxDurationMs = 30000
	}
	if cfg.FrameDurationMs <= 0 {
		cfg.FrameDurationMs = 100
	}
	cfg.FrameDurationMs = min(cfg.FrameDurationMs, maxFrameDurationMs)

	cfg.Width = max(cfg.Width, 1)
	cfg.Height = max(cfg.Height, 1)
	cfg.Frames = max(cfg.Frames, 1)
	cfg.IntervalMs = min(max(cfg.IntervalMs, 1), maxFrameDurationMs)
	cfg.Quality = min(max(cfg.Quality, 0), 100)
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = 30
	}

	cfg.PosterMaxWidth = max(cfg.PosterMaxWidth, 0)
	if cfg.PosterFontSize <= 0 {
		cfg.PosterFontSize = pipeline.DefaultPosterTheme().FontSize
	}

	return cfg
}

// WithConcurrency sets how many stills are extracted in parallel.
func (b *ConfigBuilder) WithConcurrency(n int) *ConfigBuilder {
	b.config.Concurrency = n
	return b
}

// WithClusterMaxDurationMs sets the cluster duration cap.
func (b *ConfigBuilder) WithClusterMaxDurationMs(ms float64) *ConfigBuilder {
	b.config.ClusterMaxDurationMs = ms
	return b
}

// WithFrameDurationMs sets the display time of each still from a directory.
func (b *ConfigBuilder) WithFrameDurationMs(ms float64) *ConfigBuilder {
	b.config.FrameDurationMs = ms
	return b
}

// WithFPS sets the frame duration from a frame rate.
func (b *ConfigBuilder) WithFPS(fps float64) *ConfigBuilder {
	if fps > 0 {
		b.config.FrameDurationMs = 1000 / fps
	}
	return b
}

// WithVerify enables full decoding of every still before muxing.
func (b *ConfigBuilder) WithVerify(verify bool) *ConfigBuilder {
	b.config.Verify = verify
	return b
}

// WithViewport sets the capture viewport size.
func (b *ConfigBuilder) WithViewport(width, height int) *ConfigBuilder {
	b.config.Width = width
	b.config.Height = height
	return b
}

// WithFrames sets the number of screenshots to take.
func (b *ConfigBuilder) WithFrames(n int) *ConfigBuilder {
	b.config.Frames = n
	return b
}

// WithIntervalMs sets the delay between screenshots.
func (b *ConfigBuilder) WithIntervalMs(ms int) *ConfigBuilder {
	b.config.IntervalMs = ms
	return b
}

// WithQuality sets the WebP screenshot quality.
func (b *ConfigBuilder) WithQuality(quality int) *ConfigBuilder {
	b.config.Quality = quality
	return b
}

// WithQualityPreset sets the screenshot quality from a preset.
func (b *ConfigBuilder) WithQualityPreset(preset QualityPreset) *ConfigBuilder {
	b.config.Quality = ScreenshotQuality(preset)
	return b
}

// WithTimeoutSec sets the capture timeout in seconds.
func (b *ConfigBuilder) WithTimeoutSec(sec int) *ConfigBuilder {
	b.config.TimeoutSec = sec
	return b
}

// WithHeaders sets extra HTTP headers sent while capturing.
func (b *ConfigBuilder) WithHeaders(headers map[string]string) *ConfigBuilder {
	b.config.Headers = headers
	return b
}

// WithChromePath sets the browser executable.
func (b *ConfigBuilder) WithChromePath(path string) *ConfigBuilder {
	b.config.ChromePath = path
	return b
}

// WithUserAgent overrides the browser user agent.
func (b *ConfigBuilder) WithUserAgent(ua string) *ConfigBuilder {
	b.config.UserAgent = ua
	return b
}

// WithIgnoreHTTPSErrors sets whether to ignore HTTPS certificate errors.
func (b *ConfigBuilder) WithIgnoreHTTPSErrors(ignore bool) *ConfigBuilder {
	b.config.IgnoreHTTPSErrors = ignore
	return b
}

// WithProxyServer sets the HTTP proxy server.
func (b *ConfigBuilder) WithProxyServer(proxy string) *ConfigBuilder {
	b.config.ProxyServer = proxy
	return b
}

// WithAutoInstall allows downloading Chromium when no browser is found.
func (b *ConfigBuilder) WithAutoInstall(auto bool) *ConfigBuilder {
	b.config.AutoInstall = auto
	return b
}

// WithPosterMaxWidth sets the poster width limit.
func (b *ConfigBuilder) WithPosterMaxWidth(width int) *ConfigBuilder {
	b.config.PosterMaxWidth = width
	return b
}

// WithPosterCaption sets the caption drawn on the poster.
func (b *ConfigBuilder) WithPosterCaption(caption string) *ConfigBuilder {
	b.config.PosterCaption = caption
	return b
}

// WithPosterColors sets the poster caption bar and text colors.
func (b *ConfigBuilder) WithPosterColors(bar, text color.Color) *ConfigBuilder {
	b.config.PosterBarColor = bar
	b.config.PosterTextColor = text
	return b
}

// WithPosterFontSize sets the caption font size.
func (b *ConfigBuilder) WithPosterFontSize(size float64) *ConfigBuilder {
	b.config.PosterFontSize = size
	return b
}

// WithFontPath sets a TrueType font for the poster caption.
func (b *ConfigBuilder) WithFontPath(path string) *ConfigBuilder {
	b.config.FontPath = path
	return b
}

// BrowserOptions returns the launch options for capture runs.
func (c Config) BrowserOptions() ports.BrowserOptions {
	return ports.BrowserOptions{
		Headless:          true,
		ChromePath:        c.ChromePath,
		UserAgent:         c.UserAgent,
		Headers:           c.Headers,
		IgnoreHTTPSErrors: c.IgnoreHTTPSErrors,
		ProxyServer:       c.ProxyServer,
		Incognito:         true,
		AutoInstall:       c.AutoInstall,
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig(outputPath string) orchestrator.Config {
	cfg := orchestrator.DefaultConfig()
	cfg.OutputPath = outputPath

	cfg.Concurrency = c.Concurrency
	cfg.ClusterMaxDurationMs = c.ClusterMaxDurationMs
	cfg.Verify = c.Verify

	cfg.Capture = pipeline.CaptureInput{
		Width:      c.Width,
		Height:     c.Height,
		Frames:     c.Frames,
		IntervalMs: c.IntervalMs,
		Quality:    c.Quality,
		TimeoutMs:  c.TimeoutSec * 1000,
		Headers:    c.Headers,
	}

	cfg.PosterMaxWidth = c.PosterMaxWidth
	cfg.PosterCaption = c.PosterCaption
	cfg.FontPath = c.FontPath
	if c.PosterBarColor != nil {
		cfg.PosterTheme.BarColor = c.PosterBarColor
	}
	if c.PosterTextColor != nil {
		cfg.PosterTheme.TextColor = c.PosterTextColor
	}
	if c.PosterFontSize > 0 {
		cfg.PosterTheme.FontSize = c.PosterFontSize
	}

	cfg.SourceKind = summarizer.SourceFiles
	return cfg
}
