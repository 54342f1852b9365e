package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playlist_sync.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.RedirectURL == "" {
		t.Error("expected a default redirect URL")
	}
	if config.DataDir == "" {
		t.Error("expected a default data directory")
	}
	if config.ClientID != "" || config.ClientSecret != "" {
		t.Error("defaults must not carry credentials")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("user values override defaults", func(t *testing.T) {
		path := writeConfig(t, "client_id: my-id\nclient_secret: my-secret\n")

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error: %v", err)
		}

		if config.ClientID != "my-id" {
			t.Errorf("ClientID = %q, want my-id", config.ClientID)
		}
		// Keys the user file omits keep their defaults.
		if config.RedirectURL != DefaultConfig().RedirectURL {
			t.Errorf("RedirectURL = %q, want default", config.RedirectURL)
		}
		if config.DataDir != DefaultConfig().DataDir {
			t.Errorf("DataDir = %q, want default", config.DataDir)
		}
	})

	t.Run("account groups are read", func(t *testing.T) {
		path := writeConfig(t, `
sources:
  alice:
    username: alice
destinations:
  bob:
    username: bob
  carol:
    username: carol
`)

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error: %v", err)
		}

		if len(config.Sources) != 1 || config.Sources["alice"].Username != "alice" {
			t.Errorf("sources = %+v", config.Sources)
		}
		if len(config.Destinations) != 2 {
			t.Errorf("destinations = %+v", config.Destinations)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed yaml is an invalid config", func(t *testing.T) {
		path := writeConfig(t, "client_id: [unclosed\n")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestConfigSearchPaths(t *testing.T) {
	t.Run("explicit path comes first", func(t *testing.T) {
		paths := ConfigSearchPaths("/tmp/custom.yaml")
		if len(paths) == 0 || paths[0] != "/tmp/custom.yaml" {
			t.Errorf("paths = %v", paths)
		}
	})

	t.Run("falls back to conventional locations", func(t *testing.T) {
		paths := ConfigSearchPaths("")
		if len(paths) == 0 {
			t.Fatal("expected search paths")
		}
		if paths[len(paths)-1] != "/etc/playlist_sync.yaml" {
			t.Errorf("last path = %q", paths[len(paths)-1])
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Run("returns the explicit path when it exists", func(t *testing.T) {
		path := writeConfig(t, "client_id: x\n")
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("home config is found without an explicit path", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		path := filepath.Join(home, ".playlist_sync.yaml")
		if err := os.WriteFile(path, []byte("client_id: x\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(""); got != path {
			t.Errorf("FindConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("nothing found returns empty", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		if got := FindConfigFile("/nonexistent/config.yaml"); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})
}

func TestAccountUsername(t *testing.T) {
	if got := AccountUsername("main", Account{Username: "alice"}); got != "alice" {
		t.Errorf("AccountUsername() = %q, want alice", got)
	}
	if got := AccountUsername("alice", Account{}); got != "alice" {
		t.Errorf("AccountUsername() = %q, want fallback to label", got)
	}
}

func TestResolveDataDir(t *testing.T) {
	t.Run("environment override wins", func(t *testing.T) {
		t.Setenv("PS_DATA_DIR", "/custom/data")

		config := &Config{DataDir: "~/.playlist_sync"}
		if got := ResolveDataDir(config); got != "/custom/data" {
			t.Errorf("ResolveDataDir() = %q, want /custom/data", got)
		}
	})

	t.Run("tilde expands to home", func(t *testing.T) {
		t.Setenv("PS_DATA_DIR", "")
		home := t.TempDir()
		t.Setenv("HOME", home)

		config := &Config{DataDir: "~/.playlist_sync"}
		if got := ResolveDataDir(config); got != filepath.Join(home, ".playlist_sync") {
			t.Errorf("ResolveDataDir() = %q", got)
		}
	})
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "complete credentials",
			config: Config{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://127.0.0.1:8080/callback"},
		},
		{
			name:    "missing client id",
			config:  Config{ClientSecret: "secret", RedirectURL: "http://127.0.0.1:8080/callback"},
			wantErr: true,
		},
		{
			name:    "missing secret",
			config:  Config{ClientID: "id", RedirectURL: "http://127.0.0.1:8080/callback"},
			wantErr: true,
		},
		{
			name:    "missing redirect URL",
			config:  Config{ClientID: "id", ClientSecret: "secret"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.ValidateCredentials()
			if tt.wantErr {
				if !errors.Is(err, ErrMissingCredentials) {
					t.Errorf("expected ErrMissingCredentials, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
