package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/quietriver/cadence/internal/shared"
	"golang.org/x/oauth2"
)

// CallbackServer hosts the OAuth redirect endpoint for the duration of one
// login flow.
type CallbackServer struct {
	handler *OAuthHandler
	logger  *log.Logger
	addr    string
}

// NewCallbackServer creates a server for one authorization flow.
func NewCallbackServer(config *oauth2.Config, state, addr string, logger *log.Logger) *CallbackServer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CallbackServer{
		handler: NewOAuthHandler(config, state),
		logger:  logger,
		addr:    addr,
	}
}

// Wait serves the callback endpoint until a result arrives or the context
// expires, then shuts the server down. Returns the exchanged token.
func (s *CallbackServer) Wait(ctx context.Context) (*oauth2.Token, error) {
	mux := http.NewServeMux()
	mux.Handle("/callback", requestLogger(s.logger)(s.handler))

	srv := &http.Server{Addr: s.addr, Handler: mux}

	errs := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	s.logger.Debug("callback server listening", "addr", s.addr)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("callback server shutdown failed", "error", err)
		}
	}()

	select {
	case result := <-s.handler.Result():
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Token, nil
	case err := <-errs:
		return nil, fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: no callback received", shared.ErrTimeout)
	}
}

// requestLogger logs each callback request at debug level, with query values
// redacted since they carry the authorization code.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("handled request",
				"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}
