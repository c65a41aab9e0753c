// Package main provides the CLI entry point for framecast.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/framecast/pkg/adapters/chromebrowser"
	"github.com/user/framecast/pkg/adapters/filesink"
	"github.com/user/framecast/pkg/adapters/filesource"
	"github.com/user/framecast/pkg/adapters/ggrenderer"
	"github.com/user/framecast/pkg/adapters/logger"
	"github.com/user/framecast/pkg/adapters/metrics"
	"github.com/user/framecast/pkg/adapters/nullsink"
	"github.com/user/framecast/pkg/adapters/osfilesystem"
	"github.com/user/framecast/pkg/adapters/webmencoder"
	"github.com/user/framecast/pkg/adapters/webpdecoder"
	"github.com/user/framecast/pkg/config"
	"github.com/user/framecast/pkg/framecast"
	"github.com/user/framecast/pkg/inspect"
	"github.com/user/framecast/pkg/orchestrator"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
	"github.com/user/framecast/pkg/stages/capture"
	"github.com/user/framecast/pkg/stages/encode"
	"github.com/user/framecast/pkg/stages/poster"
	"github.com/user/framecast/pkg/summarizer"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Mux     MuxCmd     `cmd:"" help:"${mux_help}"`
	Capture CaptureCmd `cmd:"" help:"${capture_help}"`
	Inspect InspectCmd `cmd:"" help:"${inspect_help}"`
	Version VersionCmd `cmd:"" help:"${version_help}"`
}

// CommonFlags are shared by the commands that produce a video.
type CommonFlags struct {
	Output  string   `short:"o" required:"" group:"output" help:"${output_help}"`
	Config  string   `short:"C" group:"output" help:"${config_help}"`
	EnvFile []string `group:"output" help:"${env_file_help}"`

	Concurrency  *int     `short:"j" group:"encoding" help:"${concurrency_help}"`
	ClusterMaxMs *float64 `group:"encoding" help:"${cluster_max_help}"`
	Verify       bool     `group:"encoding" help:"${verify_help}"`

	Poster        string  `group:"reports" help:"${poster_help}"`
	PosterCaption *string `group:"reports" help:"${poster_caption_help}"`
	FontPath      string  `group:"reports" help:"${font_path_help}"`
	Summary       string  `group:"reports" help:"${summary_help}"`
	MetricsFile   string  `group:"reports" help:"${metrics_file_help}"`

	Debug    bool   `short:"d" group:"debug" help:"${debug_help}"`
	DebugDir string `group:"debug" help:"${debug_dir_help}"`

	LogLevel string `short:"l" placeholder:"LEVEL" group:"logging" help:"${log_level_help}"`
	Quiet    bool   `short:"Q" group:"logging" help:"${quiet_help}"`
}

// MuxCmd defines the mux subcommand.
type MuxCmd struct {
	Input    string   `arg:"" optional:"" help:"${input_help}"`
	Manifest string   `short:"m" help:"${manifest_help}"`
	FPS      *float64 `short:"r" help:"${fps_help}"`
	Duration *float64 `name:"duration-ms" help:"${duration_help}"`

	CommonFlags `embed:""`
}

// CaptureCmd defines the capture subcommand.
type CaptureCmd struct {
	URL string `arg:"" help:"${url_help}"`

	Preset        string   `short:"p" default:"desktop" enum:"desktop,mobile" group:"capture" help:"${preset_help}"`
	Frames        *int     `short:"n" group:"capture" help:"${frames_help}"`
	IntervalMs    *int     `short:"i" group:"capture" help:"${interval_help}"`
	Width         *int     `short:"W" group:"capture" help:"${width_help}"`
	Height        *int     `short:"H" group:"capture" help:"${height_help}"`
	Quality       *int     `short:"q" group:"capture" help:"${quality_help}"`
	QualityPreset string   `placeholder:"PRESET" group:"capture" help:"${quality_preset_help}"`
	TimeoutSec    *int     `group:"capture" help:"${timeout_help}"`
	Header        []string `group:"capture" help:"${header_help}"`

	NoHeadless        bool   `group:"browser" help:"${no_headless_help}"`
	ChromePath        string `group:"browser" help:"${chrome_path_help}"`
	IgnoreHTTPSErrors bool   `group:"browser" help:"${ignore_https_help}"`
	ProxyServer       string `group:"browser" help:"${proxy_help}"`
	NoIncognito       bool   `group:"browser" help:"${no_incognito_help}"`
	AutoInstall       bool   `group:"browser" help:"${auto_install_help}"`

	CommonFlags `embed:""`
}

// InspectCmd defines the inspect subcommand.
type InspectCmd struct {
	File string `arg:"" type:"existingfile" help:"${file_help}"`
	JSON bool   `help:"${json_help}"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("framecast"),
		kong.Description(l10n.T("Turn WebP stills into WebM videos.")),
		kong.UsageOnError(),
		kong.ExplicitGroups(flagGroups()),
		helpVars(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the mux command.
func (cmd *MuxCmd) Run() error {
	cfg, err := cmd.load()
	if err != nil {
		return err
	}
	if cmd.FPS != nil {
		cfg.FPS = *cmd.FPS
	}
	if cmd.Duration != nil {
		cfg.FPS = 0
		cfg.DurationMs = *cmd.Duration
	}

	b, err := cfg.Builder()
	if err != nil {
		return err
	}
	fc := b.Build()

	app := cmd.newApp(cfg)
	ctx, cancel := signalContext(app.log)
	defer cancel()

	source, location, err := cmd.source(app.fs, fc.FrameDurationMs)
	if err != nil {
		return err
	}

	orchConfig := app.orchestratorConfig(fc, cfg)
	orchConfig.SourceKind = summarizer.SourceFiles
	orchConfig.SourceLocation = location

	app.log.Info("Muxing %d stills from %s", source.Len(), location)
	result, err := app.orchestrator(nil, fc).Run(ctx, source, orchConfig)
	if err != nil {
		return err
	}
	app.report(result)
	return nil
}

func (cmd *MuxCmd) source(fs ports.FileSystem, durationMs float64) (*filesource.Source, string, error) {
	switch {
	case cmd.Manifest != "":
		s, err := filesource.FromManifest(fs, cmd.Manifest)
		return s, cmd.Manifest, err
	case cmd.Input != "":
		pattern := cmd.Input
		if !strings.ContainsAny(pattern, "*?[") {
			pattern = filepath.Join(pattern, "*.webp")
		}
		s, err := filesource.FromGlob(fs, pattern, durationMs)
		return s, pattern, err
	default:
		return nil, "", fmt.Errorf("%s", l10n.T("an input directory or --manifest is required"))
	}
}

// Run executes the capture command.
func (cmd *CaptureCmd) Run() error {
	cfg, err := cmd.load()
	if err != nil {
		return err
	}
	// The mobile preset replaces only values still at their defaults.
	if cmd.Preset == "mobile" {
		def, mobile := config.Defaults(), framecast.NewMobileConfigBuilder().Build()
		if cfg.Capture.Width == def.Capture.Width && cfg.Capture.Height == def.Capture.Height {
			cfg.Capture.Width, cfg.Capture.Height = mobile.Width, mobile.Height
		}
		if cfg.Poster.MaxWidth == def.Poster.MaxWidth {
			cfg.Poster.MaxWidth = mobile.PosterMaxWidth
		}
	}
	cmd.applyCaptureFlags(&cfg)

	b, err := cfg.Builder()
	if err != nil {
		return err
	}
	switch preset := framecast.QualityPreset(cmd.QualityPreset); preset {
	case "":
	case framecast.QualityLow, framecast.QualityMedium, framecast.QualityHigh:
		if cmd.Quality == nil {
			b.WithQualityPreset(preset)
		}
	default:
		return fmt.Errorf("%s", l10n.F("unknown quality preset %q", cmd.QualityPreset))
	}
	fc := b.Build()

	app := cmd.newApp(cfg)
	ctx, cancel := signalContext(app.log)
	defer cancel()

	opts := fc.BrowserOptions()
	opts.Headless = !cmd.NoHeadless
	opts.Incognito = !cmd.NoIncognito
	captureStage := capture.New(chromebrowser.New(), app.log, opts)

	orchConfig := app.orchestratorConfig(fc, cfg)
	orchConfig.Capture.URL = cmd.URL

	result, err := app.orchestrator(captureStage, fc).RunCapture(ctx, orchConfig)
	if err != nil {
		return err
	}
	app.report(result)
	return nil
}

func (cmd *CaptureCmd) applyCaptureFlags(cfg *config.Config) {
	if cmd.Frames != nil {
		cfg.Capture.Frames = *cmd.Frames
	}
	if cmd.IntervalMs != nil {
		cfg.Capture.IntervalMs = *cmd.IntervalMs
	}
	if cmd.Width != nil {
		cfg.Capture.Width = *cmd.Width
	}
	if cmd.Height != nil {
		cfg.Capture.Height = *cmd.Height
	}
	if cmd.Quality != nil {
		cfg.Capture.Quality = *cmd.Quality
	}
	if cmd.TimeoutSec != nil {
		cfg.Capture.TimeoutSec = *cmd.TimeoutSec
	}
	for _, h := range cmd.Header {
		if k, v, ok := strings.Cut(h, ":"); ok {
			if cfg.Capture.Headers == nil {
				cfg.Capture.Headers = map[string]string{}
			}
			cfg.Capture.Headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	if cmd.ChromePath != "" {
		cfg.Capture.ChromePath = cmd.ChromePath
	}
	if cmd.IgnoreHTTPSErrors {
		cfg.Capture.IgnoreHTTPSErrors = true
	}
	if cmd.ProxyServer != "" {
		cfg.Capture.ProxyServer = cmd.ProxyServer
	}
	if cmd.AutoInstall {
		cfg.Capture.AutoInstall = true
	}
}

// Run executes the inspect command.
func (cmd *InspectCmd) Run() error {
	data, err := osfilesystem.New().ReadFile(cmd.File)
	if err != nil {
		return err
	}

	report, err := inspect.Inspect(data)
	if err != nil {
		return err
	}

	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else if err := report.Write(os.Stdout); err != nil {
		return err
	}

	return report.Validate()
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("framecast version %s", version))
	return nil
}

// load reads the config file and env, then applies the common flags.
func (c *CommonFlags) load() (config.Config, error) {
	cfg, err := config.Load(c.Config, c.EnvFile...)
	if err != nil {
		return cfg, err
	}

	cfg.OutputPath = c.Output
	if c.Concurrency != nil {
		cfg.Concurrency = *c.Concurrency
	}
	if c.ClusterMaxMs != nil {
		cfg.ClusterMaxMs = *c.ClusterMaxMs
	}
	if c.Verify {
		cfg.Verify = true
	}
	if c.Poster != "" {
		cfg.Poster.Path = c.Poster
	}
	if c.PosterCaption != nil {
		cfg.Poster.Caption = *c.PosterCaption
	}
	if c.FontPath != "" {
		cfg.Poster.FontPath = c.FontPath
	}
	if c.Summary != "" {
		cfg.SummaryPath = c.Summary
	}
	if c.MetricsFile != "" {
		cfg.MetricsFile = c.MetricsFile
	}
	if c.Debug {
		cfg.Debug = true
	}
	if c.DebugDir != "" {
		cfg.DebugDir = c.DebugDir
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	return cfg, nil
}

// wiring holds the adapters shared by one command run.
type wiring struct {
	log      ports.Logger
	fs       ports.FileSystem
	renderer ports.Renderer
	sink     ports.DebugSink
	metrics  ports.Metrics
}

func (c *CommonFlags) newApp(cfg config.Config) *wiring {
	a := &wiring{
		fs:       osfilesystem.New(),
		renderer: ggrenderer.New(),
		metrics:  metrics.NewNoop(),
	}

	if c.Quiet {
		a.log = logger.NewNoop()
	} else {
		a.log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}

	if cfg.MetricsFile != "" {
		a.metrics = metrics.New()
	}

	a.sink = nullsink.New()
	if cfg.Debug {
		if err := a.fs.MkdirAll(cfg.DebugDir); err != nil {
			a.log.Warn("Failed to save debug output: %s", err.Error())
		} else {
			a.sink = filesink.New(cfg.DebugDir, a.fs, a.renderer)
		}
	}
	return a
}

func (a *wiring) orchestrator(captureStage pipeline.Stage[pipeline.CaptureInput, pipeline.CaptureResult], fc framecast.Config) *orchestrator.Orchestrator {
	decoder := webpdecoder.New(webpdecoder.Options{Verify: fc.Verify})
	encodeStage := encode.NewStage(decoder, webmencoder.New(), a.sink, a.metrics, a.log)
	posterStage := poster.NewStage(a.renderer, a.sink, a.log)

	return orchestrator.New(captureStage, encodeStage, posterStage, a.fs, a.metrics, a.log)
}

func (a *wiring) orchestratorConfig(fc framecast.Config, cfg config.Config) orchestrator.Config {
	oc := fc.ToOrchestratorConfig(cfg.OutputPath)
	oc.PosterPath = cfg.Poster.Path
	oc.SummaryPath = cfg.SummaryPath
	oc.MetricsFile = cfg.MetricsFile
	oc.Version = version
	return oc
}

func (a *wiring) report(result orchestrator.RunResult) {
	a.log.Info("Output saved to %s", result.OutputPath)
	if result.PosterPath != "" {
		a.log.Info("Poster saved to %s", result.PosterPath)
	}
	if result.SummaryPath != "" {
		a.log.Info("Summary saved to %s", result.SummaryPath)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
