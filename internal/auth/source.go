package auth

import (
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// persistingSource wraps a refreshing [oauth2.TokenSource] and writes every
// refreshed token back to the cache, so later runs skip the browser flow.
type persistingSource struct {
	username string
	cache    *TokenCache
	logger   *log.Logger
	src      oauth2.TokenSource

	mu   sync.Mutex
	last string // access token already persisted
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	token, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if token.AccessToken != p.last {
		if err := p.cache.Save(p.username, token); err != nil {
			p.logger.Warnf("failed to persist refreshed token for %s: %v", p.username, err)
		} else {
			p.last = token.AccessToken
		}
	}

	return token, nil
}
