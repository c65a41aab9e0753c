package capture

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/user/framecast/pkg/adapters/logger"
	"github.com/user/framecast/pkg/mocks"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
)

func TestStage_Execute(t *testing.T) {
	var launched ports.BrowserOptions
	var viewport [2]int
	browser := &mocks.Browser{
		LaunchFunc: func(ctx context.Context, opts ports.BrowserOptions) error {
			launched = opts
			return nil
		},
		SetViewportFunc: func(width, height int, scale float64) error {
			viewport = [2]int{width, height}
			return nil
		},
		GetPageInfoFunc: func() (*ports.PageInfo, error) {
			return &ports.PageInfo{Title: "Example", URL: "https://example.com/"}, nil
		},
	}
	n := 0
	browser.CaptureScreenshotFunc = func(quality int) ([]byte, error) {
		n++
		return []byte(fmt.Sprintf("shot-%d-q%d", n, quality)), nil
	}

	stage := New(browser, logger.NewNoop(), ports.BrowserOptions{Headless: true})

	input := pipeline.DefaultCaptureInput()
	input.URL = "https://example.com/"
	input.Frames = 3
	input.IntervalMs = 1
	input.Headers = map[string]string{"X-Test": "1"}

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(result.Frames))
	}
	if string(result.Frames[2].Data) != "shot-3-q80" {
		t.Errorf("unexpected frame data %q", result.Frames[2].Data)
	}
	if result.Frames[0].DurationMs != 1 {
		t.Errorf("expected interval as duration, got %v", result.Frames[0].DurationMs)
	}
	if result.PageInfo.Title != "Example" {
		t.Errorf("unexpected page info %+v", result.PageInfo)
	}
	if !launched.Headless || launched.Headers["X-Test"] != "1" {
		t.Errorf("unexpected launch options %+v", launched)
	}
	if launched.WindowWidth != 640 || launched.WindowHeight != 480 {
		t.Errorf("unexpected window %dx%d", launched.WindowWidth, launched.WindowHeight)
	}
	if viewport != [2]int{640, 480} {
		t.Errorf("unexpected viewport %v", viewport)
	}
	if !browser.Closed {
		t.Error("expected browser to be closed")
	}
}

func TestStage_NarrowViewportKeepsMinimumWindow(t *testing.T) {
	var launched ports.BrowserOptions
	browser := &mocks.Browser{
		LaunchFunc: func(ctx context.Context, opts ports.BrowserOptions) error {
			launched = opts
			return nil
		},
	}

	input := pipeline.DefaultCaptureInput()
	input.URL = "https://example.com/"
	input.Width = 320
	input.Frames = 1

	if _, err := New(browser, logger.NewNoop(), ports.BrowserOptions{}).Execute(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if launched.WindowWidth != minWindowWidth {
		t.Errorf("expected window width %d, got %d", minWindowWidth, launched.WindowWidth)
	}
}

func TestStage_InvalidInput(t *testing.T) {
	stage := New(&mocks.Browser{}, logger.NewNoop(), ports.BrowserOptions{})

	tests := []struct {
		name  string
		input pipeline.CaptureInput
	}{
		{"no url", pipeline.CaptureInput{Frames: 1, IntervalMs: 100}},
		{"no frames", pipeline.CaptureInput{URL: "https://example.com", IntervalMs: 100}},
		{"no interval", pipeline.CaptureInput{URL: "https://example.com", Frames: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := stage.Execute(context.Background(), tt.input); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestStage_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		browser *mocks.Browser
	}{
		{"launch", &mocks.Browser{LaunchFunc: func(context.Context, ports.BrowserOptions) error { return boom }}},
		{"navigate", &mocks.Browser{NavigateFunc: func(string) error { return boom }}},
		{"screenshot", &mocks.Browser{CaptureScreenshotFunc: func(int) ([]byte, error) { return nil, boom }}},
		{"page info", &mocks.Browser{GetPageInfoFunc: func() (*ports.PageInfo, error) { return nil, boom }}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := pipeline.DefaultCaptureInput()
			input.URL = "https://example.com/"
			input.Frames = 2
			input.IntervalMs = 1

			result, err := New(tt.browser, logger.NewNoop(), ports.BrowserOptions{}).Execute(context.Background(), input)
			if !errors.Is(err, boom) {
				t.Errorf("expected wrapped error, got %v", err)
			}
			if len(result.Frames) != 0 {
				t.Error("expected no frames on error")
			}
		})
	}
}

func TestStage_TimeoutKeepsCollectedFrames(t *testing.T) {
	browser := &mocks.Browser{
		CaptureScreenshotFunc: func(int) ([]byte, error) { return []byte("shot"), nil },
	}

	input := pipeline.DefaultCaptureInput()
	input.URL = "https://example.com/"
	input.Frames = 100
	input.IntervalMs = 20
	input.TimeoutMs = 50

	result, err := New(browser, logger.NewNoop(), ports.BrowserOptions{}).Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Frames) == 0 || len(result.Frames) >= 100 {
		t.Errorf("expected a partial capture, got %d frames", len(result.Frames))
	}
}

func TestStage_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	browser := &mocks.Browser{
		CaptureScreenshotFunc: func(int) ([]byte, error) {
			cancel()
			return []byte("shot"), nil
		},
	}

	input := pipeline.DefaultCaptureInput()
	input.URL = "https://example.com/"
	input.Frames = 5
	input.IntervalMs = int(time.Second / time.Millisecond)

	if _, err := New(browser, logger.NewNoop(), ports.BrowserOptions{}).Execute(ctx, input); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
