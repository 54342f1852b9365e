// package server hosts the short-lived loopback HTTP server that captures the
// authorization-code redirect during an interactive OAuth flow.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// CallbackResult carries the outcome of one authorization redirect.
type CallbackResult struct {
	Code string
	err  error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler handles the OAuth2 redirect for authorization code flow.
//
// It validates the state parameter, extracts the authorization code, and
// sends the result through the result channel. Token exchange is the
// caller's responsibility; the handler never sees credentials.
type CallbackHandler struct {
	state       string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a handler expecting the given state token.
// The state token should be cryptographically random for CSRF protection.
func NewCallbackHandler(state string) *CallbackHandler {
	return &CallbackHandler{
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}
}

// ServeHTTP handles the OAuth redirect request.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle the redirect once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	state := r.URL.Query().Get("state")
	if state != h.state {
		err := fmt.Errorf("invalid state parameter")
		h.Send(CallbackResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		err := fmt.Errorf("authorization failed: %s - %s", errParam, errDesc)
		h.Send(CallbackResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Code: code})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10003; Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

// CallbackServer binds a loopback listener matching the registered redirect
// URL and serves a single authorization redirect on it.
type CallbackServer struct {
	handler *CallbackHandler
	server  *http.Server
	addr    string
}

// NewCallbackServer prepares a server for the given redirect URL and state.
// The redirect URL's host decides the bind address and its path decides the
// route, so the flow works with whatever URL is registered upstream.
func NewCallbackServer(redirectURL, state string) (*CallbackServer, error) {
	parsed, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URL %q: %w", redirectURL, err)
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}

	handler := NewCallbackHandler(state)
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	return &CallbackServer{
		handler: handler,
		addr:    parsed.Host,
		server:  &http.Server{Handler: mux},
	}, nil
}

// Start binds the listener and begins serving in the background. Returns an
// error immediately if the port is taken, so the caller can fall back to a
// manual flow.
func (s *CallbackServer) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.addr, err)
	}

	go s.server.Serve(listener)
	return nil
}

// Wait blocks until the redirect arrives, the context is canceled, or the
// timeout elapses.
func (s *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (CallbackResult, error) {
	select {
	case result := <-s.handler.Result():
		return result, result.Error()
	case <-time.After(timeout):
		return CallbackResult{}, fmt.Errorf("timed out waiting for authorization after %s", timeout)
	case <-ctx.Done():
		return CallbackResult{}, ctx.Err()
	}
}

// Shutdown stops the server, letting an in-flight response finish.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
