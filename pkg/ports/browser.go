// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
)

// Browser abstracts the headless browser used to capture still frames.
type Browser interface {
	// Launch starts the browser with the given options.
	Launch(ctx context.Context, opts BrowserOptions) error

	// Navigate loads the specified URL.
	Navigate(url string) error

	// SetViewport sets the viewport size in CSS pixels.
	SetViewport(width, height int, deviceScaleFactor float64) error

	// CaptureScreenshot returns a lossy WebP screenshot of the viewport.
	// quality ranges from 0 to 100.
	CaptureScreenshot(quality int) ([]byte, error)

	// GetPageInfo retrieves information about the current page.
	GetPageInfo() (*PageInfo, error)

	// Close shuts down the browser.
	Close() error
}

// BrowserOptions configures browser launch settings.
type BrowserOptions struct {
	Headless          bool
	ChromePath        string
	UserAgent         string
	Headers           map[string]string
	WindowWidth       int
	WindowHeight      int
	IgnoreHTTPSErrors bool
	ProxyServer       string // e.g. "http://proxy:8080"
	Incognito         bool
	AutoInstall       bool // Install Chromium when no browser is found
}

// PageInfo contains information about the current page.
type PageInfo struct {
	Title        string
	URL          string
	ScrollHeight int
	ScrollWidth  int
}
