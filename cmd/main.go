package main

import (
	"context"
	"errors"
	"os"

	"github.com/quietriver/cadence/internal/shared"
	"github.com/quietriver/cadence/internal/spotify"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var client *spotify.Client
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if c, err := spotify.NewClient(config.Credentials.Spotify.Map(), logger); err == nil {
			client = c
			client.SetRateLimit(config.Player.RequestsPerSecond)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Client: client,
		Logger: logger,
	})
	runner.restoreSession()

	app := &cli.Command{
		Name:     "cadence",
		Usage:    "Spotify library browser with cached playlists, devices, and recommendations",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
