// Package chromebrowser provides a browser implementation using chromedp.
package chromebrowser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/user/framecast/pkg/ports"
)

// Browser implements ports.Browser using chromedp.
type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new Browser.
func New() *Browser {
	return &Browser{}
}

// Launch starts the browser. The executable is resolved from opts.ChromePath,
// then CHROME_PATH, then system locations, then a Playwright install when
// opts.AutoInstall is set.
func (b *Browser) Launch(ctx context.Context, opts ports.BrowserOptions) error {
	chromePath := ResolveChromePath(opts.ChromePath)
	if chromePath == "" && opts.AutoInstall {
		installed, err := InstallChromium()
		if err != nil {
			return err
		}
		chromePath = installed
	}
	if chromePath == "" {
		return fmt.Errorf("chrome not found: install Chrome/Chromium, set CHROME_PATH, or use --chrome-path")
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.ExecPath(chromePath),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("no-zygote", true),
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	}
	if opts.Incognito {
		allocOpts = append(allocOpts, chromedp.Flag("incognito", true))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight))
	}
	if opts.IgnoreHTTPSErrors {
		allocOpts = append(allocOpts,
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.Flag("allow-insecure-localhost", true))
	}
	if opts.ProxyServer != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.ProxyServer))
	}

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(ctx, allocOpts...)
	b.ctx, b.cancel = chromedp.NewContext(b.allocCtx)

	if len(opts.Headers) > 0 {
		headers := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		if err := chromedp.Run(b.ctx, network.Enable(), network.SetExtraHTTPHeaders(headers)); err != nil {
			return fmt.Errorf("set headers: %w", err)
		}
	}

	return nil
}

// Navigate loads the URL and waits for the load event.
func (b *Browser) Navigate(url string) error {
	return chromedp.Run(b.ctx, chromedp.Navigate(url))
}

// SetViewport resizes the window and overrides device metrics.
func (b *Browser) SetViewport(width, height int, deviceScaleFactor float64) error {
	// Window bounds are best effort; headless targets may not have a window.
	_ = chromedp.Run(b.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		windowID, _, err := browser.GetWindowForTarget().Do(ctx)
		if err != nil {
			return nil
		}
		return browser.SetWindowBounds(windowID, &browser.Bounds{
			Width:  int64(width),
			Height: int64(height),
		}).Do(ctx)
	}))

	if err := chromedp.Run(b.ctx,
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), deviceScaleFactor, false),
	); err != nil {
		return fmt.Errorf("set device metrics: %w", err)
	}
	return nil
}

// CaptureScreenshot returns a lossy WebP screenshot of the viewport.
func (b *Browser) CaptureScreenshot(quality int) ([]byte, error) {
	quality = min(max(quality, 0), 100)

	var data []byte
	err := chromedp.Run(b.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		data, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatWebp).
			WithQuality(int64(quality)).
			WithFromSurface(true).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return data, nil
}

// GetPageInfo retrieves information about the current page.
func (b *Browser) GetPageInfo() (*ports.PageInfo, error) {
	var title, url string
	var scrollHeight, scrollWidth int

	err := chromedp.Run(b.ctx,
		chromedp.Title(&title),
		chromedp.Location(&url),
		chromedp.Evaluate(`document.documentElement.scrollHeight`, &scrollHeight),
		chromedp.Evaluate(`document.documentElement.scrollWidth`, &scrollWidth),
	)
	if err != nil {
		return nil, fmt.Errorf("get page info: %w", err)
	}

	return &ports.PageInfo{
		Title:        title,
		URL:          url,
		ScrollHeight: scrollHeight,
		ScrollWidth:  scrollWidth,
	}, nil
}

// Close shuts down the browser.
func (b *Browser) Close() error {
	if b.cancel != nil {
		b.cancel()
	}

	// give Chrome a moment to exit before the allocator kills it
	time.Sleep(100 * time.Millisecond)

	if b.allocCancel != nil {
		b.allocCancel()
	}
	return nil
}

var _ ports.Browser = (*Browser)(nil)
