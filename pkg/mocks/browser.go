// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/user/framecast/pkg/ports"
)

// Browser is a mock implementation of ports.Browser.
type Browser struct {
	LaunchFunc            func(ctx context.Context, opts ports.BrowserOptions) error
	NavigateFunc          func(url string) error
	SetViewportFunc       func(width, height int, deviceScaleFactor float64) error
	CaptureScreenshotFunc func(quality int) ([]byte, error)
	GetPageInfoFunc       func() (*ports.PageInfo, error)
	CloseFunc             func() error

	Screenshots int
	Closed      bool
}

func (m *Browser) Launch(ctx context.Context, opts ports.BrowserOptions) error {
	if m.LaunchFunc != nil {
		return m.LaunchFunc(ctx, opts)
	}
	return nil
}

func (m *Browser) Navigate(url string) error {
	if m.NavigateFunc != nil {
		return m.NavigateFunc(url)
	}
	return nil
}

func (m *Browser) SetViewport(width, height int, deviceScaleFactor float64) error {
	if m.SetViewportFunc != nil {
		return m.SetViewportFunc(width, height, deviceScaleFactor)
	}
	return nil
}

func (m *Browser) CaptureScreenshot(quality int) ([]byte, error) {
	m.Screenshots++
	if m.CaptureScreenshotFunc != nil {
		return m.CaptureScreenshotFunc(quality)
	}
	return []byte{}, nil
}

func (m *Browser) GetPageInfo() (*ports.PageInfo, error) {
	if m.GetPageInfoFunc != nil {
		return m.GetPageInfoFunc()
	}
	return &ports.PageInfo{}, nil
}

func (m *Browser) Close() error {
	m.Closed = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.Browser = (*Browser)(nil)
