// package auth runs the OAuth2 authorization-code flow for every configured
// account and hands out authenticated sessions.
//
// Tokens are cached per account; a cached token that is still valid or can
// be refreshed short-circuits the interactive flow entirely. When interaction is needed, the user's browser
// is opened in a private window so each account gets a clean login, and the
// redirect is captured by a loopback server, falling back to a pasted URL
// when the redirect target is not local.
package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/the-judge/playlist-sync/internal/server"
	"github.com/the-judge/playlist-sync/internal/services"
	"github.com/the-judge/playlist-sync/internal/shared"
)

// callbackTimeout bounds how long an interactive flow waits for the redirect.
const callbackTimeout = 3 * time.Minute

// ReadScopes covers everything the collect phase needs.
func ReadScopes() []string {
	return []string{
		spotifyauth.ScopePlaylistReadPrivate,
		spotifyauth.ScopePlaylistReadCollaborative,
		spotifyauth.ScopeUserLibraryRead,
		spotifyauth.ScopeUserFollowRead,
	}
}

// WriteScopes covers the write phase: every read scope plus the modify
// scopes, so a destination token can also serve as a source token.
func WriteScopes() []string {
	return append(ReadScopes(),
		spotifyauth.ScopePlaylistModifyPrivate,
		spotifyauth.ScopePlaylistModifyPublic,
		spotifyauth.ScopeUserLibraryModify,
		spotifyauth.ScopeUserFollowModify,
	)
}

// authenticator is the slice of [spotifyauth.Authenticator] the flow uses,
// extracted so tests can substitute a fake exchange.
type authenticator interface {
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	Client(ctx context.Context, token *oauth2.Token) *http.Client
}

// newAuthenticator builds the real authenticator; swapped in tests.
var newAuthenticator = func(config *shared.Config, scopes []string) authenticator {
	return spotifyauth.New(
		spotifyauth.WithClientID(config.ClientID),
		spotifyauth.WithClientSecret(config.ClientSecret),
		spotifyauth.WithRedirectURL(config.RedirectURL),
		spotifyauth.WithScopes(scopes...),
	)
}

// Authorizer obtains an authenticated session for each configured account.
type Authorizer struct {
	config   *shared.Config
	cache    *TokenCache
	launcher shared.Launcher
	logger   *log.Logger

	// In and Out drive the manual paste fallback; they default to the
	// process's stdin and stderr.
	In  io.Reader
	Out io.Writer

	// Timeout bounds the wait for an authorization redirect.
	Timeout time.Duration
}

// NewAuthorizer wires an Authorizer from its dependencies.
func NewAuthorizer(config *shared.Config, cache *TokenCache, launcher shared.Launcher, logger *log.Logger) *Authorizer {
	return &Authorizer{
		config:   config,
		cache:    cache,
		launcher: launcher,
		logger:   logger,
		In:       os.Stdin,
		Out:      os.Stderr,
		Timeout:  callbackTimeout,
	}
}

// Authorize returns an authenticated HTTP client for one account, reusing the
// cached token when present and running the interactive flow otherwise.
func (a *Authorizer) Authorize(ctx context.Context, username string, scopes []string) (*http.Client, error) {
	auth := newAuthenticator(a.config, scopes)

	token, found, err := a.cache.Load(username)
	if err != nil {
		a.logger.Warnf("ignoring unreadable token cache for %s: %v", username, err)
	}
	if found {
		// An expired token is only useful if it can be refreshed; otherwise
		// the account has to go back through the interactive flow.
		if token.Valid() || token.RefreshToken != "" {
			a.logger.Debugf("using cached token for %s", username)
			return a.clientFor(ctx, auth, username, token), nil
		}
		a.logger.Debugf("cached token for %s expired without a refresh token, reauthorizing", username)
	}

	token, err = a.interactiveFlow(ctx, auth, username)
	if err != nil {
		return nil, err
	}

	if err := a.cache.Save(username, token); err != nil {
		a.logger.Warnf("failed to cache token for %s: %v", username, err)
	}

	return a.clientFor(ctx, auth, username, token), nil
}

// clientFor wraps the authenticator's client so refreshed tokens are written
// back to the cache instead of being lost at process exit.
func (a *Authorizer) clientFor(ctx context.Context, auth authenticator, username string, token *oauth2.Token) *http.Client {
	client := auth.Client(ctx, token)
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Source = &persistingSource{
			username: username,
			cache:    a.cache,
			logger:   a.logger,
			src:      transport.Source,
			last:     token.AccessToken,
		}
	}
	return client
}

// interactiveFlow walks the user through authorizing one account and returns
// the exchanged token.
func (a *Authorizer) interactiveFlow(ctx context.Context, auth authenticator, username string) (*oauth2.Token, error) {
	state := shared.GenerateState()
	authURL := auth.AuthURL(state, spotifyauth.ShowDialog)

	fmt.Fprintf(a.Out, "\nAuthorizing account %q\n", username)
	fmt.Fprintf(a.Out, "Log in as %s in the window that opens:\n  %s\n", username, authURL)

	var code string
	var err error
	if isLoopback(a.config.RedirectURL) {
		code, err = a.captureRedirect(ctx, authURL, state)
	} else {
		code, err = a.promptForRedirect(authURL, state)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrAuthFailed, username, err)
	}

	token, err := auth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange for %s: %v", shared.ErrAuthFailed, username, err)
	}

	a.logger.Infof("authorized %s", username)
	return token, nil
}

// captureRedirect serves the loopback redirect target and waits for the
// provider to send the user back. Falls back to the manual prompt when the
// port cannot be bound.
func (a *Authorizer) captureRedirect(ctx context.Context, authURL, state string) (string, error) {
	srv, err := server.NewCallbackServer(a.config.RedirectURL, state)
	if err != nil {
		return "", err
	}

	if err := srv.Start(); err != nil {
		a.logger.Warnf("falling back to manual authorization: %v", err)
		return a.promptForRedirect(authURL, state)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := a.launcher.Open(authURL); err != nil {
		a.logger.Warnf("failed to open browser, open the URL above manually: %v", err)
	}

	result, err := srv.Wait(ctx, a.Timeout)
	if err != nil {
		return "", err
	}
	return result.Code, nil
}

// promptForRedirect asks the user to paste the URL they were redirected to
// and extracts the authorization code from it.
func (a *Authorizer) promptForRedirect(authURL, state string) (string, error) {
	if err := a.launcher.Open(authURL); err != nil {
		a.logger.Warnf("failed to open browser, open the URL above manually: %v", err)
	}

	fmt.Fprint(a.Out, "Paste the URL you were redirected to: ")
	line, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read redirect URL: %w", err)
	}

	return ExtractCode(strings.TrimSpace(line), state)
}

// ExtractCode pulls the authorization code out of a pasted redirect URL,
// verifying the state parameter against the one this flow issued.
func ExtractCode(redirected, state string) (string, error) {
	parsed, err := url.Parse(redirected)
	if err != nil {
		return "", fmt.Errorf("invalid redirect URL: %w", err)
	}

	query := parsed.Query()
	if got := query.Get("state"); got != state {
		return "", fmt.Errorf("state mismatch in redirect URL")
	}
	if errParam := query.Get("error"); errParam != "" {
		return "", fmt.Errorf("authorization failed: %s", errParam)
	}

	code := query.Get("code")
	if code == "" {
		return "", fmt.Errorf("redirect URL carries no authorization code")
	}
	return code, nil
}

// isLoopback reports whether the redirect URL points at this machine, which
// is what decides between serving the redirect and asking for a paste.
func isLoopback(redirectURL string) bool {
	parsed, err := url.Parse(redirectURL)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	return host == "127.0.0.1" || host == "localhost" || host == "::1"
}

// AuthorizeGroup authorizes every account in a config group and returns the
// resulting sessions keyed by username. Accounts are processed in sorted
// order so prompts appear deterministically.
func (a *Authorizer) AuthorizeGroup(ctx context.Context, group map[string]shared.Account, scopes []string) (map[string]services.Service, error) {
	sessions := make(map[string]services.Service, len(group))

	for _, label := range shared.SortedKeys(group) {
		username := shared.AccountUsername(label, group[label])
		client, err := a.Authorize(ctx, username, scopes)
		if err != nil {
			return nil, err
		}
		sessions[username] = services.NewSpotifySession(username, client)
	}

	return sessions, nil
}
