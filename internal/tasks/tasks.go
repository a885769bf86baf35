// package tasks keeps a local mirror of a remote music player and forwards commands to it.
//
// The core abstraction is Engine, which owns the status poller, the playlist mirror, and the command,
// upload, and download paths. Long operations emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jtp/internal/models"
	"github.com/desertthunder/jtp/internal/services"
	"github.com/desertthunder/jtp/internal/shared"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// EngineOpts configures an [Engine]. Zero values fall back to package defaults.
type EngineOpts struct {
	Clock        clockwork.Clock
	PollInterval time.Duration
	SettleDelay  time.Duration
	MaxFileSize  int64
	Formats      []string
	Logger       *log.Logger
}

// EngineOptsFromConfig maps the polling and upload sections of cfg.
func EngineOptsFromConfig(cfg *shared.Config, logger *log.Logger) EngineOpts {
	return EngineOpts{
		PollInterval: cfg.Polling.Interval.Duration,
		SettleDelay:  cfg.Polling.SettleDelay.Duration,
		MaxFileSize:  cfg.Upload.MaxFileSize,
		Formats:      cfg.Upload.Formats,
		Logger:       logger,
	}
}

// Engine composes the client components over one [services.RemoteAPI] and one [clockwork.Clock].
//
// Hooks registered with OnStatus and OnPlaylist may be called from several goroutines.
type Engine struct {
	Poller     *StatusPoller
	Playlist   *PlaylistStore
	Dispatcher *Dispatcher
	Uploads    *UploadPipeline
	Downloads  *DownloadIngestor

	logger *log.Logger
}

// NewEngine wires the components. Nothing is fetched until Start.
func NewEngine(api services.RemoteAPI, opts EngineOpts) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	poller := NewStatusPoller(api, clock, opts.PollInterval, logger)
	playlist := NewPlaylistStore(api, logger)

	return &Engine{
		Poller:     poller,
		Playlist:   playlist,
		Dispatcher: NewDispatcher(api, poller, playlist, clock, opts.SettleDelay, logger),
		Uploads:    NewUploadPipeline(api, playlist, logger).WithLimits(opts.MaxFileSize, opts.Formats),
		Downloads:  NewDownloadIngestor(api, playlist, logger),
		logger:     logger.With("component", "engine"),
	}
}

// OnStatus registers fn for every accepted status snapshot. It must be called before Start.
func (e *Engine) OnStatus(fn func(*models.PlayerStatus)) {
	e.Poller.OnUpdate(fn)
}

// OnPlaylist registers fn for every accepted playlist. It must be called before Start.
func (e *Engine) OnPlaylist(fn func(*models.Playlist)) {
	e.Playlist.OnUpdate(fn)
}

// Start fetches status and playlist concurrently and begins polling.
//
// Either initial fetch failing is fatal: polling is stopped and the error wraps
// [shared.ErrConnectivity]. There is no automatic retry.
func (e *Engine) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.Poller.Start(gctx)
	})
	g.Go(func() error {
		if _, err := e.Playlist.Refresh(gctx); err != nil {
			return fmt.Errorf("%w: %w", shared.ErrConnectivity, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		e.Poller.Stop()
		e.logger.Error("initial fetch failed", "error", err)
		return err
	}

	e.logger.Info("connected", "tracks", e.Playlist.Snapshot().Len())
	return nil
}

// Stop halts polling and cancels pending follow-up refreshes. It is safe to call more than once.
func (e *Engine) Stop() {
	e.Poller.Stop()
	e.Dispatcher.Close()
}

// Status returns the latest status snapshot, or nil.
func (e *Engine) Status() *models.PlayerStatus {
	return e.Poller.Snapshot()
}

// Tracks returns the latest playlist snapshot, or nil.
func (e *Engine) Tracks() *models.Playlist {
	return e.Playlist.Snapshot()
}

// CurrentIndex locates the playing track in the playlist mirror, or returns -1.
func (e *Engine) CurrentIndex() int {
	status := e.Status()
	if status == nil || status.CurrentTrack == nil {
		return -1
	}
	return e.Tracks().IndexOf(status.CurrentTrack.ID)
}
