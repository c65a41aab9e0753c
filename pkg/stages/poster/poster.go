// Package poster renders a still preview image for the encoded video.
package poster

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
)

// ErrNoStill is returned when PosterInput carries no still.
var ErrNoStill = errors.New("no still for poster")

// Stage draws the first still with a caption bar and encodes it as PNG.
type Stage struct {
	renderer ports.Renderer
	sink     ports.DebugSink
	logger   ports.Logger
}

// NewStage creates a new poster stage.
func NewStage(renderer ports.Renderer, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		sink:     sink,
		logger:   logger.WithComponent("poster"),
	}
}

// Execute renders the poster.
func (s *Stage) Execute(ctx context.Context, input pipeline.PosterInput) (pipeline.PosterResult, error) {
	result := pipeline.PosterResult{}

	if len(input.Still) == 0 {
		return result, ErrNoStill
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	img, err := s.renderer.DecodeImage(input.Still, ports.FormatWebP)
	if err != nil {
		return result, fmt.Errorf("decode still: %w", err)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return result, fmt.Errorf("decode still: empty image")
	}
	if input.MaxWidth > 0 && w > input.MaxWidth {
		h = int(math.Round(float64(h) * float64(input.MaxWidth) / float64(w)))
		w = input.MaxWidth
	}

	theme := input.Theme
	if theme.FontSize <= 0 {
		theme.FontSize = pipeline.DefaultPosterTheme().FontSize
	}
	barHeight := int(math.Ceil(theme.FontSize * 2))

	canvas := s.renderer.CreateCanvas(w, h+barHeight, theme.BarColor)
	canvas.DrawImageScaled(img, 0, 0, w, h)

	style := ports.TextStyle{
		FontSize: theme.FontSize,
		FontPath: input.FontPath,
		Color:    theme.TextColor,
		Align:    ports.AlignLeft,
	}
	padding := int(theme.FontSize / 2)
	midline := h + barHeight/2
	if input.Caption != "" {
		canvas.DrawText(input.Caption, padding, midline, style)
	}

	style.Align = ports.AlignRight
	canvas.DrawText(Stats(input.FrameCount, input.DurationMs), w-padding, midline, style)

	result.Image = canvas.ToImage()
	result.PNG, err = s.renderer.EncodeImage(result.Image, ports.FormatPNG, 0)
	if err != nil {
		return pipeline.PosterResult{}, fmt.Errorf("encode poster: %w", err)
	}

	if s.sink.Enabled() {
		if err := s.sink.SavePoster(result.Image); err != nil {
			s.logger.Warn("Failed to save debug output: %s", err.Error())
		}
	}

	s.logger.Debug("Poster generated: %dx%d", w, h+barHeight)
	return result, nil
}

// Stats formats the frame count and duration shown on the poster.
func Stats(frames int, durationMs float64) string {
	unit := "frames"
	if frames == 1 {
		unit = "frame"
	}
	return fmt.Sprintf("%d %s / %.1fs", frames, unit, durationMs/1000)
}
