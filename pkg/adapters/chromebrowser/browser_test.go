package chromebrowser

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/user/framecast/pkg/adapters/webpdecoder"
	"github.com/user/framecast/pkg/ports"
)

func TestBrowser_Launch_NoChrome(t *testing.T) {
	t.Setenv("CHROME_PATH", "")
	t.Setenv("PATH", "/nonexistent")
	if ResolveChromePath("") != "" {
		t.Skip("a Chrome install is visible outside PATH")
	}

	err := New().Launch(context.Background(), ports.BrowserOptions{Headless: true})
	if err == nil {
		t.Fatal("expected error when Chrome is missing and auto-install is off")
	}
}

func TestBrowser_CaptureScreenshot(t *testing.T) {
	chromePath := ResolveChromePath("")
	if chromePath == "" {
		t.Skip("Chrome not installed, skipping screenshot test")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body style="background:#3366cc"><h1>framecast</h1></body></html>`))
	}))
	defer server.Close()

	b := New()
	if err := b.Launch(context.Background(), ports.BrowserOptions{ChromePath: chromePath, Headless: true}); err != nil {
		t.Fatalf("failed to launch: %v", err)
	}
	defer b.Close()

	if err := b.SetViewport(320, 240, 1); err != nil {
		t.Fatalf("SetViewport failed: %v", err)
	}
	if err := b.Navigate(server.URL); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}

	data, err := b.CaptureScreenshot(80)
	if err != nil {
		t.Fatalf("CaptureScreenshot failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Fatalf("expected a RIFF container, got % X", data[:min(len(data), 12)])
	}

	still, err := webpdecoder.New(webpdecoder.Options{Verify: true}).DecodeStill(data)
	if err != nil {
		t.Fatalf("screenshot is not a lossy still: %v", err)
	}
	if still.Width != 320 || still.Height != 240 {
		t.Errorf("expected 320x240, got %dx%d", still.Width, still.Height)
	}

	info, err := b.GetPageInfo()
	if err != nil {
		t.Fatalf("GetPageInfo failed: %v", err)
	}
	if info.Title != "" && info.URL == "" {
		t.Errorf("unexpected page info %+v", info)
	}
}
