package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var (
	getRuntime = func() string { return runtime.GOOS }
	lookPath   = exec.LookPath
	startCmd   = func(cmd *exec.Cmd) error { return cmd.Start() }
)

// Launcher opens a URL in a web browser. Implementations are injected into
// the authorizer so the flow can be driven without touching a real browser.
type Launcher interface {
	Open(url string) error
}

// privateFlag maps browser executables to the flag that opens a private or
// incognito window. Ordering encodes preference.
var privateFlags = []struct {
	binary string
	flag   string
}{
	{"firefox", "--private-window"},
	{"google-chrome", "--incognito"},
	{"chrome", "--incognito"},
	{"chromium", "--incognito"},
	{"chromium-browser", "--incognito"},
	{"opera", "--private"},
}

// PrivateLauncher prefers launching a private/incognito browser window so
// logging in to the wrong Spotify account is less likely when several
// accounts are authorized back to back. Falls back to the platform default
// opener when no known browser binary is on PATH.
type PrivateLauncher struct{}

func (PrivateLauncher) Open(url string) error {
	for _, candidate := range privateFlags {
		path, err := lookPath(candidate.binary)
		if err != nil {
			continue
		}
		if err := startCmd(exec.Command(path, candidate.flag, url)); err == nil {
			return nil
		}
	}
	return SystemLauncher{}.Open(url)
}

// SystemLauncher opens the default system browser to the specified URL.
//
// Supports macOS, Linux, and Windows platforms.
type SystemLauncher struct{}

func (SystemLauncher) Open(url string) error {
	var cmd *exec.Cmd
	rt := getRuntime()
	switch rt {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := startCmd(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
