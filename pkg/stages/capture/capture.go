// Package capture implements the page capture stage.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
)

// ErrNoFramesCaptured is returned when the timeout expires before the first
// screenshot.
var ErrNoFramesCaptured = errors.New("no frames captured")

// Headless Chrome refuses narrower windows.
const minWindowWidth = 500

// Stage captures a page as a series of WebP screenshots.
type Stage struct {
	browser     ports.Browser
	logger      ports.Logger
	browserOpts ports.BrowserOptions
}

// New creates a new capture stage.
func New(browser ports.Browser, logger ports.Logger, opts ports.BrowserOptions) *Stage {
	return &Stage{
		browser:     browser,
		logger:      logger.WithComponent("browser"),
		browserOpts: opts,
	}
}

// Execute navigates to input.URL and takes input.Frames screenshots,
// input.IntervalMs apart. Each still is shown for IntervalMs in the output.
// A timeout after at least one frame keeps the frames collected so far.
func (s *Stage) Execute(ctx context.Context, input pipeline.CaptureInput) (pipeline.CaptureResult, error) {
	result := pipeline.CaptureResult{}

	if input.URL == "" {
		return result, fmt.Errorf("no URL to capture")
	}
	if input.Frames <= 0 || input.IntervalMs <= 0 {
		return result, fmt.Errorf("invalid capture schedule: %d frames every %d ms", input.Frames, input.IntervalMs)
	}

	opts := s.browserOpts
	if len(input.Headers) > 0 {
		opts.Headers = input.Headers
	}
	opts.WindowWidth = max(input.Width, minWindowWidth)
	opts.WindowHeight = input.Height

	s.logger.Debug("Launching browser")
	if err := s.browser.Launch(ctx, opts); err != nil {
		return result, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		s.browser.Close()
		s.logger.Debug("Browser closed")
	}()

	if err := s.browser.SetViewport(input.Width, input.Height, 1); err != nil {
		return result, fmt.Errorf("set viewport: %w", err)
	}

	captureCtx := ctx
	if input.TimeoutMs > 0 {
		var cancel context.CancelFunc
		captureCtx, cancel = context.WithTimeout(ctx, time.Duration(input.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	s.logger.Debug("Navigating to %s", input.URL)
	if err := s.browser.Navigate(input.URL); err != nil {
		return result, fmt.Errorf("navigate: %w", err)
	}

	interval := time.Duration(input.IntervalMs) * time.Millisecond
	for i := 0; i < input.Frames; i++ {
		if i > 0 {
			select {
			case <-captureCtx.Done():
			case <-time.After(interval):
			}
		}
		if err := captureCtx.Err(); err != nil {
			if ctx.Err() != nil {
				return pipeline.CaptureResult{}, ctx.Err()
			}
			if len(result.Frames) == 0 {
				return pipeline.CaptureResult{}, ErrNoFramesCaptured
			}
			s.logger.Warn("Capture timeout, using %d collected frames", len(result.Frames))
			break
		}

		data, err := s.browser.CaptureScreenshot(input.Quality)
		if err != nil {
			return pipeline.CaptureResult{}, fmt.Errorf("screenshot %d: %w", i, err)
		}
		result.Frames = append(result.Frames, ports.StillFrame{
			Data:       data,
			DurationMs: float64(input.IntervalMs),
		})
	}
	s.logger.Debug("Captured %d frames", len(result.Frames))

	info, err := s.browser.GetPageInfo()
	if err != nil {
		return pipeline.CaptureResult{}, fmt.Errorf("get page info: %w", err)
	}
	result.PageInfo = *info

	return result, nil
}
