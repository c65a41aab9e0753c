package chromebrowser

import (
	"fmt"
	"os"

	"github.com/playwright-community/playwright-go"
)

// InstallChromium downloads Playwright's Chromium build when missing and
// returns its executable path.
func InstallChromium() (string, error) {
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Stdout:   os.Stderr,
	}

	if err := playwright.Install(opts); err != nil {
		return "", fmt.Errorf("install chromium: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return "", fmt.Errorf("start playwright: %w", err)
	}
	defer pw.Stop()

	path := pw.Chromium.ExecutablePath()
	if path == "" || resolveExecutable(path) == "" {
		return "", fmt.Errorf("chromium executable not found after install: %q", path)
	}
	return path, nil
}
