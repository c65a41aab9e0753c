package chromebrowser

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ChromePathEnv names the environment variable consulted when no explicit
// Chrome path is configured.
const ChromePathEnv = "CHROME_PATH"

// ResolveChromePath returns explicitPath, else $CHROME_PATH, else the first
// installed browser from chromeCandidates. It returns "" when nothing is
// found, leaving the lookup to chromedp.
func ResolveChromePath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	if envPath := os.Getenv(ChromePathEnv); envPath != "" {
		return envPath
	}
	for _, candidate := range chromeCandidates(runtime.GOOS, os.Getenv) {
		if path := resolveExecutable(candidate); path != "" {
			return path
		}
	}
	return ""
}

// chromeCandidates lists browser locations for goos, Chromium before Chrome.
func chromeCandidates(goos string, getenv func(string) string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary",
		}
	case "windows":
		var out []string
		for _, root := range []string{"PROGRAMFILES", "PROGRAMFILES(X86)", "LOCALAPPDATA"} {
			dir := getenv(root)
			if dir == "" {
				continue
			}
			for _, vendor := range []string{`Chromium`, `Google\Chrome`} {
				out = append(out, strings.Join([]string{dir, vendor, "Application", "chrome.exe"}, `\`))
			}
		}
		return out
	default:
		return []string{"chromium", "chromium-browser", "google-chrome-stable", "google-chrome"}
	}
}

// resolveExecutable returns nameOrPath when it is an existing absolute path,
// or its PATH lookup result for a bare command name.
func resolveExecutable(nameOrPath string) string {
	if nameOrPath == "" {
		return ""
	}
	if filepath.IsAbs(nameOrPath) || (len(nameOrPath) > 1 && nameOrPath[1] == ':') {
		if _, err := os.Stat(nameOrPath); err != nil {
			return ""
		}
		return nameOrPath
	}
	path, err := exec.LookPath(nameOrPath)
	if err != nil {
		return ""
	}
	return path
}
