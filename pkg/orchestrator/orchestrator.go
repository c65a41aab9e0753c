// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
	"github.com/user/framecast/pkg/summarizer"
)

// ErrNoCaptureStage is returned by RunCapture when the orchestrator was built
// without a capture stage.
var ErrNoCaptureStage = errors.New("capture stage not configured")

// Config contains all configuration for the orchestrator.
type Config struct {
	// Output
	OutputPath string

	// Encoding
	Concurrency          int
	ClusterMaxDurationMs float64
	MuxingApp            string
	WritingApp           string
	Verify               bool // reported in the summary; the decoder is built with it

	// Source description for the summary
	SourceKind     summarizer.SourceKind
	SourceLocation string

	// Capture
	Capture pipeline.CaptureInput

	// Poster
	PosterPath     string
	PosterMaxWidth int
	PosterCaption  string
	PosterTheme    pipeline.PosterTheme
	FontPath       string

	// Reports
	SummaryPath string
	MetricsFile string
	Version     string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	encode := pipeline.DefaultEncodeInput()
	return Config{
		ClusterMaxDurationMs: encode.ClusterMaxDurationMs,
		MuxingApp:            encode.MuxingApp,
		WritingApp:           encode.WritingApp,
		SourceKind:           summarizer.SourceFiles,
		Capture:              pipeline.DefaultCaptureInput(),
		PosterMaxWidth:       640,
		PosterTheme:          pipeline.DefaultPosterTheme(),
	}
}

// TextfileWriter is implemented by metrics backends that can dump their
// state to a node-exporter textfile.
type TextfileWriter interface {
	WriteTextfile(path string) error
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	captureStage pipeline.Stage[pipeline.CaptureInput, pipeline.CaptureResult]
	encodeStage  pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	posterStage  pipeline.Stage[pipeline.PosterInput, pipeline.PosterResult]
	fs           ports.FileSystem
	metrics      ports.Metrics
	logger       ports.Logger
}

// New creates a new Orchestrator. captureStage may be nil when only file
// sources are used.
func New(
	captureStage pipeline.Stage[pipeline.CaptureInput, pipeline.CaptureResult],
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	posterStage pipeline.Stage[pipeline.PosterInput, pipeline.PosterResult],
	fs ports.FileSystem,
	metrics ports.Metrics,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		captureStage: captureStage,
		encodeStage:  encodeStage,
		posterStage:  posterStage,
		fs:           fs,
		metrics:      metrics,
		logger:       logger,
	}
}

// Run encodes every frame of source into config.OutputPath. The output file
// is written only when encoding succeeds.
func (o *Orchestrator) Run(ctx context.Context, source ports.FrameSource, config Config) (RunResult, error) {
	start := time.Now()
	o.logger.Info("Starting pipeline")

	result, err := o.run(ctx, source, config, summarizer.SourceInfo{
		Kind:     config.SourceKind,
		Location: config.SourceLocation,
		Frames:   source.Len(),
	})
	return o.finish(config, start, result, err)
}

// RunCapture captures config.Capture.URL and encodes the screenshots.
func (o *Orchestrator) RunCapture(ctx context.Context, config Config) (RunResult, error) {
	start := time.Now()
	o.logger.Info("Starting pipeline")

	if o.captureStage == nil {
		return o.finish(config, start, RunResult{}, ErrNoCaptureStage)
	}

	o.logger.Info("Capturing %s", config.Capture.URL)
	captured, err := o.captureStage.Execute(ctx, config.Capture)
	if err != nil {
		o.logger.Error("Failed to capture page: %s", err.Error())
		return o.finish(config, start, RunResult{}, fmt.Errorf("capture stage: %w", err))
	}
	o.logger.Info("Captured %d frames", len(captured.Frames))

	result, err := o.run(ctx, pipeline.StillSource(captured.Frames), config, summarizer.SourceInfo{
		Kind:     summarizer.SourceCapture,
		Location: config.Capture.URL,
		Title:    captured.PageInfo.Title,
		Frames:   len(captured.Frames),
	})
	if err == nil {
		page := captured.PageInfo
		result.Page = &page
	}
	return o.finish(config, start, result, err)
}

func (o *Orchestrator) run(ctx context.Context, source ports.FrameSource, config Config, info summarizer.SourceInfo) (RunResult, error) {
	input := o.buildEncodeInput(config, source)
	o.logger.Info("Encoding %d frames", source.Len())

	encoded, err := o.encodeStage.Execute(ctx, input)
	if err != nil {
		o.logger.Error("Failed to encode video: %s", err.Error())
		return RunResult{}, fmt.Errorf("encode stage: %w", err)
	}

	if dir := filepath.Dir(config.OutputPath); dir != "" && dir != "." {
		if err := o.fs.MkdirAll(dir); err != nil {
			return RunResult{}, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := o.fs.WriteFile(config.OutputPath, encoded.VideoData); err != nil {
		o.logger.Error("Failed to write output: %s", err.Error())
		return RunResult{}, fmt.Errorf("write output: %w", err)
	}
	o.logger.Info("Video written: %s (%d bytes)", config.OutputPath, len(encoded.VideoData))

	result := RunResult{
		OutputPath: config.OutputPath,
		FrameCount: encoded.FrameCount,
		DurationMs: encoded.DurationMs,
		Width:      encoded.Width,
		Height:     encoded.Height,
		Clusters:   encoded.Clusters,
		FileSize:   encoded.FileSize,
		Layout:     encoded.Layout,
		Source:     info,
	}

	if config.PosterPath != "" {
		if err := o.writePoster(ctx, config, encoded); err != nil {
			o.logger.Warn("Failed to generate poster: %s", err.Error())
		} else {
			result.PosterPath = config.PosterPath
		}
	}

	o.logger.Info("Pipeline completed successfully")
	return result, nil
}

func (o *Orchestrator) buildEncodeInput(config Config, source ports.FrameSource) pipeline.EncodeInput {
	input := pipeline.DefaultEncodeInput()
	input.Source = source
	input.Concurrency = config.Concurrency
	if config.ClusterMaxDurationMs > 0 {
		input.ClusterMaxDurationMs = config.ClusterMaxDurationMs
	}
	if config.MuxingApp != "" {
		input.MuxingApp = config.MuxingApp
	}
	if config.WritingApp != "" {
		input.WritingApp = config.WritingApp
	}
	input.Progress = func(committed, total int) {
		o.logger.Debug("Committed %d/%d frames", committed, total)
	}
	return input
}

func (o *Orchestrator) writePoster(ctx context.Context, config Config, encoded pipeline.EncodeResult) error {
	poster, err := o.posterStage.Execute(ctx, pipeline.PosterInput{
		Still:      encoded.FirstStill,
		MaxWidth:   config.PosterMaxWidth,
		Caption:    config.PosterCaption,
		FontPath:   config.FontPath,
		Theme:      config.PosterTheme,
		FrameCount: encoded.FrameCount,
		DurationMs: encoded.DurationMs,
	})
	if err != nil {
		return err
	}
	if err := o.fs.WriteFile(config.PosterPath, poster.PNG); err != nil {
		return fmt.Errorf("write poster: %w", err)
	}
	o.logger.Info("Poster written: %s", config.PosterPath)
	return nil
}

// finish records metrics and, on success, writes the summary.
func (o *Orchestrator) finish(config Config, start time.Time, result RunResult, err error) (RunResult, error) {
	result.Elapsed = time.Since(start)

	if err == nil && config.SummaryPath != "" {
		if werr := o.writeSummary(config, result); werr != nil {
			o.logger.Warn("Failed to write summary: %s", werr.Error())
		} else {
			result.SummaryPath = config.SummaryPath
		}
	}

	o.metrics.RunFinished(int(result.FileSize), result.Elapsed, err)
	if config.MetricsFile != "" {
		if tw, ok := o.metrics.(TextfileWriter); ok {
			if werr := tw.WriteTextfile(config.MetricsFile); werr != nil {
				o.logger.Warn("Failed to write metrics: %s", werr.Error())
			}
		}
	}

	if err != nil {
		return RunResult{Elapsed: result.Elapsed}, err
	}
	return result, nil
}

func (o *Orchestrator) writeSummary(config Config, result RunResult) error {
	clusters := []summarizer.ClusterInfo{}
	if result.Layout != nil {
		for _, c := range result.Layout.Clusters {
			clusters = append(clusters, summarizer.ClusterInfo{
				TimecodeMs: c.TimecodeMs,
				DurationMs: c.DurationMs,
				Blocks:     c.Blocks,
				Size:       c.Size,
			})
		}
	}

	summary := summarizer.NewBuilder().
		WithSource(result.Source).
		WithSettings(summarizer.Settings{
			Concurrency:          config.Concurrency,
			ClusterMaxDurationMs: config.ClusterMaxDurationMs,
			Verify:               config.Verify,
		}).
		WithVideo(summarizer.VideoInfo{
			Path:       result.OutputPath,
			FrameCount: result.FrameCount,
			DurationMs: result.DurationMs,
			Width:      result.Width,
			Height:     result.Height,
			FileSize:   result.FileSize,
			PosterPath: result.PosterPath,
		}).
		WithClusters(clusters).
		WithElapsed(result.Elapsed).
		Build()

	formatter := summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(config.Version),
	)
	return summarizer.NewWriter(formatter, o.fs).Write(config.SummaryPath, summary)
}

// RunResult contains the results of a pipeline run.
type RunResult struct {
	OutputPath  string
	PosterPath  string
	SummaryPath string

	// Video information
	FrameCount int
	DurationMs float64
	Width      int
	Height     int
	Clusters   int
	FileSize   int64
	Layout     *ports.ContainerLayout

	// Source information
	Source summarizer.SourceInfo
	Page   *ports.PageInfo // capture runs only

	Elapsed time.Duration
}
