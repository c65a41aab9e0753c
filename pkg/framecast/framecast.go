package framecast

import (
	"context"

	"github.com/user/framecast/pkg/adapters/filesource"
	"github.com/user/framecast/pkg/adapters/logger"
	"github.com/user/framecast/pkg/adapters/metrics"
	"github.com/user/framecast/pkg/adapters/nullsink"
	"github.com/user/framecast/pkg/adapters/osfilesystem"
	"github.com/user/framecast/pkg/adapters/webmencoder"
	"github.com/user/framecast/pkg/adapters/webpdecoder"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
	"github.com/user/framecast/pkg/stages/encode"
)

// Encode muxes every still of source into a WebM file held in memory.
func Encode(ctx context.Context, source ports.FrameSource, cfg Config) (pipeline.EncodeResult, error) {
	stage := encode.NewStage(
		webpdecoder.New(webpdecoder.Options{Verify: cfg.Verify}),
		webmencoder.New(),
		nullsink.New(),
		metrics.NewNoop(),
		logger.NewNoop(),
	)

	input := pipeline.DefaultEncodeInput()
	input.Source = source
	input.Concurrency = cfg.Concurrency
	input.ClusterMaxDurationMs = cfg.ClusterMaxDurationMs
	return stage.Execute(ctx, input)
}

// EncodeStills muxes in-memory WebP stills, each shown for cfg.FrameDurationMs.
func EncodeStills(ctx context.Context, stills [][]byte, cfg Config) ([]byte, error) {
	source := make(pipeline.StillSource, len(stills))
	for i, data := range stills {
		source[i] = ports.StillFrame{Data: data, DurationMs: cfg.FrameDurationMs}
	}

	result, err := Encode(ctx, source, cfg)
	if err != nil {
		return nil, err
	}
	return result.VideoData, nil
}

// EncodeFiles muxes the WebP files matching pattern in lexical order.
func EncodeFiles(ctx context.Context, pattern string, cfg Config) ([]byte, error) {
	source, err := filesource.FromGlob(osfilesystem.New(), pattern, cfg.FrameDurationMs)
	if err != nil {
		return nil, err
	}

	result, err := Encode(ctx, source, cfg)
	if err != nil {
		return nil, err
	}
	return result.VideoData, nil
}
