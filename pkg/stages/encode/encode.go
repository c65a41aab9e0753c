// Package encode implements the still-to-WebM encoding stage.
package encode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
)

// ErrNoSource is returned when EncodeInput has no frame source.
var ErrNoSource = errors.New("no frame source")

// Stage extracts keyframes from still images concurrently and feeds them to
// the container writer in source order.
type Stage struct {
	decoder ports.StillImageDecoder
	encoder ports.VideoEncoder
	sink    ports.DebugSink
	metrics ports.Metrics
	logger  ports.Logger
}

// NewStage creates a new encode stage.
func NewStage(decoder ports.StillImageDecoder, encoder ports.VideoEncoder, sink ports.DebugSink, metrics ports.Metrics, logger ports.Logger) *Stage {
	return &Stage{
		decoder: decoder,
		encoder: encoder,
		sink:    sink,
		metrics: metrics,
		logger:  logger.WithComponent("encode"),
	}
}

type extracted struct {
	still []byte
	frame ports.KeyFrame
}

// Execute encodes every frame of input.Source into one WebM file. On error no
// video data is returned.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}

	if input.Source == nil {
		return result, ErrNoSource
	}

	if err := s.encoder.Begin(ports.EncoderOptions{
		ClusterMaxDurationMs: input.ClusterMaxDurationMs,
		MuxingApp:            input.MuxingApp,
		WritingApp:           input.WritingApp,
	}); err != nil {
		return result, fmt.Errorf("begin encoding: %w", err)
	}

	total := input.Source.Len()
	s.logger.Debug("Encoding %d frames with concurrency %d", total, input.Concurrency)

	opts := pipeline.OrderedOptions{
		Concurrency: input.Concurrency,
		Progress: func(committed int) {
			if input.Progress != nil {
				input.Progress(committed, total)
			}
		},
	}

	err := pipeline.RunOrdered(ctx, s.units(ctx, input.Source), opts, func(index int, v extracted) error {
		if err := s.encoder.EncodeFrame(v.frame); err != nil {
			return fmt.Errorf("frame %d: %w", index, err)
		}
		if index == 0 {
			result.FirstStill = v.still
		}
		s.metrics.FrameCommitted(v.frame.DurationMs)
		return nil
	})
	if err != nil {
		result.FirstStill = nil
		return result, err
	}

	data, err := s.encoder.End()
	if err != nil {
		result.FirstStill = nil
		return result, fmt.Errorf("end encoding: %w", err)
	}

	stats := s.encoder.Stats()
	if stats.Layout != nil {
		for _, c := range stats.Layout.Clusters {
			s.metrics.ClusterWritten(c.Blocks, c.Size)
		}
		s.saveLayout(stats.Layout)
	}

	result.VideoData = data
	result.FrameCount = stats.Frames
	result.DurationMs = stats.DurationMs
	result.Width = stats.Width
	result.Height = stats.Height
	result.FileSize = int64(len(data))
	result.Layout = stats.Layout
	if stats.Layout != nil {
		result.Clusters = len(stats.Layout.Clusters)
	}

	s.logger.Debug("Video encoded: %d frames, %d bytes", result.FrameCount, len(data))
	return result, nil
}

// units turns source units into pipeline units that also extract the keyframe.
func (s *Stage) units(ctx context.Context, source ports.FrameSource) iter.Seq[pipeline.Unit[extracted]] {
	return func(yield func(pipeline.Unit[extracted]) bool) {
		index := 0
		for unit := range source.Units(ctx) {
			i := index
			index++
			if !yield(func(ctx context.Context) (extracted, error) {
				return s.extract(ctx, i, unit)
			}) {
				return
			}
		}
	}
}

func (s *Stage) extract(ctx context.Context, index int, unit ports.FrameUnit) (extracted, error) {
	start := time.Now()

	sf, err := unit(ctx)
	if err != nil {
		return extracted{}, err
	}

	still, err := s.decoder.DecodeStill(sf.Data)
	if err != nil {
		return extracted{}, err
	}
	s.metrics.FrameExtracted(len(sf.Data), time.Since(start))

	if s.sink.Enabled() {
		if err := s.sink.SaveStill(index, sf.Data); err != nil {
			s.logger.Warn("Failed to save debug output: %s", err.Error())
		}
		if err := s.sink.SaveBitstream(index, still.Bitstream); err != nil {
			s.logger.Warn("Failed to save debug output: %s", err.Error())
		}
	}

	v := extracted{
		frame: ports.KeyFrame{
			Width:      still.Width,
			Height:     still.Height,
			DurationMs: sf.DurationMs,
			Bitstream:  still.Bitstream,
		},
	}
	if index == 0 {
		v.still = sf.Data
	}
	return v, nil
}

func (s *Stage) saveLayout(layout *ports.ContainerLayout) {
	if !s.sink.Enabled() {
		return
	}
	data, err := json.MarshalIndent(layout, "", "  ")
	if err == nil {
		err = s.sink.SaveLayoutJSON(data)
	}
	if err != nil {
		s.logger.Warn("Failed to save debug output: %s", err.Error())
	}
}
