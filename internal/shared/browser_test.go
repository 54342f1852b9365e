package shared

import (
	"errors"
	"os/exec"
	"testing"
)

func stubBrowserSeams(t *testing.T, goos string, available map[string]string) *[]string {
	t.Helper()

	origRuntime, origLook, origStart := getRuntime, lookPath, startCmd
	t.Cleanup(func() {
		getRuntime, lookPath, startCmd = origRuntime, origLook, origStart
	})

	getRuntime = func() string { return goos }
	lookPath = func(binary string) (string, error) {
		if path, ok := available[binary]; ok {
			return path, nil
		}
		return "", errors.New("not found")
	}

	started := &[]string{}
	startCmd = func(cmd *exec.Cmd) error {
		*started = append(*started, cmd.Args[0])
		return nil
	}
	return started
}

func TestSystemLauncher(t *testing.T) {
	tests := []struct {
		goos    string
		wantCmd string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"windows", "cmd"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			started := stubBrowserSeams(t, tt.goos, nil)

			if err := (SystemLauncher{}).Open("https://example.com"); err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			if len(*started) != 1 || (*started)[0] != tt.wantCmd {
				t.Errorf("started = %v, want [%s]", *started, tt.wantCmd)
			}
		})
	}

	t.Run("unsupported platform", func(t *testing.T) {
		stubBrowserSeams(t, "plan9", nil)

		if err := (SystemLauncher{}).Open("https://example.com"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})
}

func TestPrivateLauncher(t *testing.T) {
	t.Run("prefers a private window of an installed browser", func(t *testing.T) {
		started := stubBrowserSeams(t, "linux", map[string]string{
			"chromium": "/usr/bin/chromium",
		})

		if err := (PrivateLauncher{}).Open("https://example.com"); err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		if len(*started) != 1 || (*started)[0] != "/usr/bin/chromium" {
			t.Errorf("started = %v, want chromium", *started)
		}
	})

	t.Run("firefox wins over chromium", func(t *testing.T) {
		started := stubBrowserSeams(t, "linux", map[string]string{
			"firefox":  "/usr/bin/firefox",
			"chromium": "/usr/bin/chromium",
		})

		if err := (PrivateLauncher{}).Open("https://example.com"); err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		if (*started)[0] != "/usr/bin/firefox" {
			t.Errorf("started = %v, want firefox first", *started)
		}
	})

	t.Run("falls back to the system opener", func(t *testing.T) {
		started := stubBrowserSeams(t, "linux", nil)

		if err := (PrivateLauncher{}).Open("https://example.com"); err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		if len(*started) != 1 || (*started)[0] != "xdg-open" {
			t.Errorf("started = %v, want [xdg-open]", *started)
		}
	})
}
