package tasks

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jtp/internal/models"
	"github.com/desertthunder/jtp/internal/shared"
)

// PlaylistSource fetches the server's track list.
type PlaylistSource interface {
	Playlist(ctx context.Context) (*models.Playlist, error)
}

// PlaylistStore mirrors the server playlist. It is refreshed on demand, never polled.
type PlaylistStore struct {
	api      PlaylistSource
	logger   *log.Logger
	onUpdate func(*models.Playlist)
	snapshot atomic.Pointer[models.Playlist]
}

func NewPlaylistStore(api PlaylistSource, logger *log.Logger) *PlaylistStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &PlaylistStore{api: api, logger: logger.With("component", "playlist")}
}

// OnUpdate registers fn to be called with every accepted playlist. It must be called before the first Refresh.
func (s *PlaylistStore) OnUpdate(fn func(*models.Playlist)) {
	s.onUpdate = fn
}

// Snapshot returns the last good playlist, or nil before the first successful refresh.
func (s *PlaylistStore) Snapshot() *models.Playlist {
	return s.snapshot.Load()
}

// Refresh fetches the playlist and swaps it in whole. On failure the previous mirror is kept.
func (s *PlaylistStore) Refresh(ctx context.Context) (*models.Playlist, error) {
	playlist, err := s.api.Playlist(ctx)
	if err == nil && playlist == nil {
		err = fmt.Errorf("%w: empty playlist", shared.ErrInvalidSnapshot)
	}
	if err == nil {
		if verr := playlist.Validate(); verr != nil {
			err = fmt.Errorf("%w: %w", shared.ErrInvalidSnapshot, verr)
		}
	}
	if err != nil {
		s.logger.Warn("playlist fetch failed", "error", err)
		return nil, err
	}

	s.snapshot.Store(playlist)
	s.logger.Debug("playlist refreshed", "tracks", playlist.Len())
	if s.onUpdate != nil {
		s.onUpdate(playlist)
	}
	return playlist, nil
}
