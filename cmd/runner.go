package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
	"github.com/quietriver/cadence/internal/library"
	"github.com/quietriver/cadence/internal/repositories"
	"github.com/quietriver/cadence/internal/shared"
	"github.com/quietriver/cadence/internal/spotify"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for
// each command action.
type Runner struct {
	config  *shared.Config
	client  *spotify.Client
	store   *library.Store
	manager *library.Manager
	poller  *library.Poller
	recs    *library.Recommender
	logger  *log.Logger
	output  io.Writer

	db       *sql.DB
	sessions *repositories.SessionRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Client *spotify.Client
	Logger *log.Logger
	Output io.Writer
	Clock  clock.Clock
}

// NewRunner creates a new Runner with the provided configuration.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	store := library.NewStore()
	var remote library.RemoteService
	if opts.Client != nil {
		remote = opts.Client
	} else {
		remote = unconfiguredRemote{}
	}

	manager := library.NewManager(library.ManagerOpts{
		Store:  store,
		Remote: remote,
		Clock:  opts.Clock,
		Logger: opts.Logger,
	})

	return &Runner{
		config:  opts.Config,
		client:  opts.Client,
		store:   store,
		manager: manager,
		poller:  library.NewPoller(manager),
		recs:    library.NewRecommender(manager),
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, devicesCommand, playerCommand, recsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the active logger, propagating it nowhere else; packages
// built around the runner received theirs at construction time.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// requireClient fails fast when Spotify credentials are not configured.
func (r *Runner) requireClient() error {
	if r.client == nil {
		return fmt.Errorf("%w: set spotify client_id and client_secret in config.toml, then run cadence auth login",
			shared.ErrMissingCredentials)
	}
	return nil
}

// openDatabase opens the configured SQLite database once per process and
// keeps the handle for session access.
func (r *Runner) openDatabase() error {
	if r.db != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.db = db
	r.sessions = repositories.NewSessionRepository(db)
	return nil
}

// restoreSession installs a persisted token into the client so commands work
// without a fresh login. Missing sessions are not an error here; commands
// that need authorization report it themselves.
func (r *Runner) restoreSession() {
	if r.client == nil || r.client.Authorized() {
		return
	}
	if err := r.openDatabase(); err != nil {
		r.logger.Debug("session restore skipped", "error", err)
		return
	}

	session, err := r.sessions.Get(r.client.Name())
	if err != nil {
		if !errors.Is(err, shared.ErrNotAuthorized) {
			r.logger.Warn("failed to load stored session", "error", err)
		}
		return
	}

	r.client.SetToken(session.Token())
	r.logger.Debug("session restored", "provider", session.Provider(), "expired", session.Expired())
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// unconfiguredRemote satisfies the remote interface when no credentials are
// present, so read paths degrade to empty results instead of nil panics.
type unconfiguredRemote struct{}

var errUnconfigured = fmt.Errorf("%w: no spotify credentials configured", shared.ErrMissingCredentials)

func (unconfiguredRemote) Authorized() bool { return false }

func (unconfiguredRemote) Playlists(context.Context) ([]spotify.SimplePlaylist, error) {
	return nil, errUnconfigured
}

func (unconfiguredRemote) Playlist(context.Context, string) (*spotify.Playlist, error) {
	return nil, errUnconfigured
}

func (unconfiguredRemote) PlaylistTracks(context.Context, string) ([]spotify.PlaylistTrack, error) {
	return nil, errUnconfigured
}

func (unconfiguredRemote) LikedSongs(context.Context) ([]spotify.SavedTrack, error) {
	return nil, errUnconfigured
}

func (unconfiguredRemote) Devices(context.Context) ([]spotify.Device, error) {
	return nil, errUnconfigured
}

func (unconfiguredRemote) PlayerContext(context.Context) (*spotify.PlayerContext, error) {
	return nil, errUnconfigured
}

func (unconfiguredRemote) Recommendations(context.Context, spotify.RecommendationQuery) ([]spotify.Track, error) {
	return nil, errUnconfigured
}

func (unconfiguredRemote) AlbumTracks(context.Context, string) ([]spotify.Track, error) {
	return nil, errUnconfigured
}

func (unconfiguredRemote) FollowPlaylist(context.Context, string) error { return errUnconfigured }

func (unconfiguredRemote) UnfollowPlaylist(context.Context, string) error { return errUnconfigured }

func (unconfiguredRemote) CreatePlaylist(context.Context, string, bool) (*spotify.Playlist, error) {
	return nil, errUnconfigured
}

func (unconfiguredRemote) AddTracksToPlaylist(context.Context, string, []string) error {
	return errUnconfigured
}

func (unconfiguredRemote) RemoveTracksFromPlaylist(context.Context, string, []string) error {
	return errUnconfigured
}

func (unconfiguredRemote) SetLiked(context.Context, string, bool) error { return errUnconfigured }
