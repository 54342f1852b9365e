package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// TokenCache persists one OAuth token per account under the data directory,
// at <dataDir>/<username>/.cache-<username>.
type TokenCache struct {
	dataDir string
}

// NewTokenCache creates a cache rooted at dataDir.
func NewTokenCache(dataDir string) *TokenCache {
	return &TokenCache{dataDir: dataDir}
}

// Path returns the cache file location for an account.
func (c *TokenCache) Path(username string) string {
	return filepath.Join(c.dataDir, username, ".cache-"+username)
}

// Load reads the cached token for an account. A missing cache file is not an
// error: the account simply needs interactive authorization.
func (c *TokenCache) Load(username string) (*oauth2.Token, bool, error) {
	data, err := os.ReadFile(c.Path(username))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read token cache for %s: %w", username, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, false, fmt.Errorf("failed to decode token cache for %s: %w", username, err)
	}

	return &token, true, nil
}

// Save writes the token for an account. The per-account directory is created
// with owner-only permissions since the file holds credentials.
func (c *TokenCache) Save(username string, token *oauth2.Token) error {
	dir := filepath.Dir(c.Path(username))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory for %s: %w", username, err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token for %s: %w", username, err)
	}

	if err := os.WriteFile(c.Path(username), data, 0600); err != nil {
		return fmt.Errorf("failed to write token cache for %s: %w", username, err)
	}

	return nil
}
