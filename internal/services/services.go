package services

import (
	"context"
	"fmt"
	"io"

	"github.com/desertthunder/jtp/internal/models"
	"github.com/desertthunder/jtp/internal/shared"
)

// RemoteAPI is the contract with the remote player. Implementations must be safe for concurrent use.
type RemoteAPI interface {
	Status(ctx context.Context) (*models.PlayerStatus, error)
	Playlist(ctx context.Context) (*models.Playlist, error)

	// Play starts the track at index, or resumes the current track when index is nil.
	Play(ctx context.Context, index *int) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	SetVolume(ctx context.Context, volume int) error

	// Upload transmits one audio file and returns the track the server appended.
	Upload(ctx context.Context, name string, r io.Reader) (*models.Track, error)

	// Download asks the server to fetch audio from url. The server may still be ingesting when it returns.
	Download(ctx context.Context, url string) error

	ClearPlaylist(ctx context.Context) error
	RemoveTrack(ctx context.Context, id int) error
}

// statusResponse is the wire shape of GET /status.
type statusResponse struct {
	IsPlaying    bool          `json:"is_playing"`
	IsPaused     bool          `json:"is_paused"`
	CurrentTrack *models.Track `json:"current_track"`
	Position     float64       `json:"position"`
	Duration     float64       `json:"duration"`
	Volume       int           `json:"volume"`
}

// uploadResponse is the wire shape of POST /upload.
type uploadResponse struct {
	Message string        `json:"message"`
	Track   *models.Track `json:"track"`
}

type playRequest struct {
	Index *int `json:"index,omitempty"`
}

type volumeRequest struct {
	Volume int `json:"volume"`
}

type downloadRequest struct {
	URL string `json:"url"`
}

// toStatus folds the wire booleans into a [models.PlaybackState] and normalises numeric fields.
func toStatus(r statusResponse) *models.PlayerStatus {
	status := &models.PlayerStatus{
		CurrentTrack: r.CurrentTrack,
		Position:     max(r.Position, 0),
		Duration:     max(r.Duration, 0),
		Volume:       min(max(r.Volume, 0), 100),
	}

	switch {
	case r.IsPaused:
		status.State = models.StatePaused
	case r.IsPlaying:
		status.State = models.StatePlaying
	default:
		status.State = models.StateStopped
	}

	if status.Duration > 0 && status.Position > status.Duration {
		status.Position = status.Duration
	}

	return status
}

// toPlaylist refuses playlists that break ID uniqueness so callers keep their previous mirror.
func toPlaylist(p *models.Playlist) (*models.Playlist, error) {
	if p.Tracks == nil {
		p.Tracks = []models.Track{}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidSnapshot, err)
	}
	return p, nil
}
