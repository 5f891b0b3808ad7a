package main

import (
	"context"
	"fmt"
	"time"

	"github.com/quietriver/cadence/internal/models"
	"github.com/quietriver/cadence/internal/server"
	"github.com/quietriver/cadence/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// oauthTimeout bounds how long the login command waits for the browser
// callback before giving up.
const oauthTimeout = 2 * time.Minute

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show current authorization state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Delete the stored session and forget cached data",
				Action: r.AuthLogout,
			},
		},
	}
}

// AuthLogin performs the OAuth2 authorization code flow: starts the local
// callback server, opens the browser, and persists the exchanged token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	token, err := r.doOAuth(ctx)
	if err != nil {
		return err
	}

	r.client.SetToken(token)

	if err := r.persistToken(token, cmd.String("config")); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("You can now use: cadence playlists list\n")
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server.
func (r *Runner) doOAuth(ctx context.Context) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	callback := server.NewCallbackServer(r.client.OAuthConfig(), state, addr, r.logger)

	authURL := r.client.AuthURL(state)
	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	waitCtx, cancel := context.WithTimeout(ctx, oauthTimeout)
	defer cancel()

	return callback.Wait(waitCtx)
}

// persistToken stores the token in the session database and mirrors it into
// the config file so both restore paths survive a restart.
func (r *Runner) persistToken(token *oauth2.Token, configPath string) error {
	if err := r.openDatabase(); err != nil {
		return err
	}
	if err := shared.RunMigrations(r.db); err != nil {
		return fmt.Errorf("failed to prepare database: %w", err)
	}

	session := models.NewSession(r.client.Name(), token)
	if err := r.sessions.Save(session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if err := shared.SaveConfig(configPath, r.config); err != nil {
		r.logger.Warn("failed to mirror tokens into config", "path", configPath, "error", err)
	}

	return nil
}

// AuthStatus reports whether a usable token is present and who it belongs to.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	if !r.client.Authorized() {
		r.writePlain("✗ Not authorized. Run: cadence auth login\n")
		return nil
	}

	user, err := r.client.User(ctx)
	if err != nil {
		r.writePlain("⚠ Token present but unusable: %v\n", err)
		r.writePlain("Run: cadence auth login\n")
		return nil
	}

	name := user.DisplayName
	if name == "" {
		name = user.ID
	}
	r.writePlain("✓ Authorized as %s\n", name)
	return nil
}

// AuthLogout deletes the stored session and clears every cached collection.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDatabase(); err != nil {
		return err
	}

	provider := "Spotify"
	if r.client != nil {
		provider = r.client.Name()
	}

	if err := r.sessions.Delete(provider); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	r.manager.ClearAll()
	r.writePlain("✓ Signed out and forgot cached data\n")
	return nil
}
