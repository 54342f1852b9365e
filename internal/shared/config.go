package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config.example.yaml
var exampleConf []byte

// Config represents the application configuration loaded from a YAML file.
type Config struct {
	ClientID     string             `yaml:"client_id"`
	ClientSecret string             `yaml:"client_secret"`
	RedirectURL  string             `yaml:"redirect_url"`
	DataDir      string             `yaml:"data_dir"`
	Sources      map[string]Account `yaml:"sources"`
	Destinations map[string]Account `yaml:"destinations"`
}

// Account identifies a single Spotify account within a source or destination group.
type Account struct {
	Username string `yaml:"username"`
}

// DefaultConfig returns a Config parsed from the embedded defaults file.
func DefaultConfig() *Config {
	var config Config
	if err := yaml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// LoadConfig parses the embedded defaults and then unmarshals the user file
// over the same value, so user keys win while untouched defaults survive.
// Nested account maps merge per key rather than being replaced wholesale.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, path, err)
	}

	return config, nil
}

// ConfigSearchPaths returns the conventional config file locations in search
// order. An explicit path, when non-empty, is always first.
func ConfigSearchPaths(explicit string) []string {
	paths := []string{}
	if explicit != "" {
		paths = append(paths, explicit)
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".playlist_sync.yaml"))
	}

	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), "playlist_sync.yaml"))
	}

	return append(paths, "/etc/playlist_sync.yaml")
}

// FindConfigFile returns the first existing file from the search order, or
// an empty string if none of the candidates exist.
func FindConfigFile(explicit string) string {
	for _, candidate := range ConfigSearchPaths(explicit) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// ResolveDataDir returns the effective data directory: the PS_DATA_DIR
// environment variable when set, otherwise the configured data_dir, with a
// leading ~ expanded to the user's home directory.
func ResolveDataDir(config *Config) string {
	dir := config.DataDir
	if env := os.Getenv("PS_DATA_DIR"); env != "" {
		dir = env
	}
	return ExpandHome(dir)
}

// ExpandHome replaces a leading ~ with the current user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// AccountUsername returns the account's Spotify username, falling back to
// the label the account is keyed by in its group.
func AccountUsername(label string, account Account) string {
	if account.Username != "" {
		return account.Username
	}
	return label
}

// ValidateCredentials checks that the API credentials required for any
// authorization are present.
func (c *Config) ValidateCredentials() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("%w: set client_id and client_secret in your config file; "+
			"credentials are issued at https://developer.spotify.com/dashboard", ErrMissingCredentials)
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("%w: redirect_url must be set and registered with your application", ErrMissingCredentials)
	}
	return nil
}
