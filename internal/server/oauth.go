package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/quietriver/cadence/internal/shared"
	"golang.org/x/oauth2"
)

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>cadence - connected</title>
    <style>
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center;
               height: 100vh; margin: 0; background: #121212; color: #eee; }
        main { text-align: center; }
        h1 { color: #1DB954; }
    </style>
</head>
<body>
    <main>
        <h1>Connected</h1>
        <p>Spotify access granted. You can close this window and return to the terminal.</p>
    </main>
</body>
</html>
`

// OAuthResult is the outcome of one authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	Err   error
}

// OAuthHandler terminates the OAuth2 authorization code flow. It validates
// the state parameter, exchanges the code, and delivers exactly one result.
// Repeat callbacks are rejected so a replayed redirect cannot overwrite an
// established token.
type OAuthHandler struct {
	config  *oauth2.Config
	state   string
	results chan OAuthResult

	mu      sync.Mutex
	handled bool
	once    sync.Once
}

// NewOAuthHandler creates a handler expecting the given state token. The
// state should come from [shared.GenerateState].
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:  config,
		state:   state,
		results: make(chan OAuthResult, 1),
	}
}

// ServeHTTP handles the provider redirect.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.send(OAuthResult{Err: fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed)})
		http.Error(w, "invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.send(OAuthResult{Err: fmt.Errorf("%w: %s (%s)",
			shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))})
		http.Error(w, "authorization denied", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(context.Background(), code)
	if err != nil {
		h.send(OAuthResult{Err: fmt.Errorf("%w: code exchange: %v", shared.ErrAuthFailed, err)})
		http.Error(w, "token exchange failed", http.StatusInternalServerError)
		return
	}

	h.send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, successPage)
}

// Result returns the channel carrying the single flow outcome. The channel
// is closed after delivery.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.results
}

func (h *OAuthHandler) send(result OAuthResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}
