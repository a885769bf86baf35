package models

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateTrackID = errors.New("duplicate track id")
	ErrInvalidVolume    = errors.New("volume out of range")
	ErrInvalidPosition  = errors.New("position exceeds duration")
)

// PlaybackState is the transport state of the remote player.
type PlaybackState int

const (
	StateStopped PlaybackState = iota // Nothing playing
	StatePlaying                      // Audio is playing
	StatePaused                       // Playback paused at Position
)

// String returns the string representation of the state.
func (s PlaybackState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// MarshalText implements [encoding.TextMarshaler] so states encode by name.
func (s PlaybackState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (s *PlaybackState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "stopped":
		*s = StateStopped
	case "playing":
		*s = StatePlaying
	case "paused":
		*s = StatePaused
	default:
		return fmt.Errorf("unknown playback state %q", text)
	}
	return nil
}

// Track is one playlist entry. ID is assigned by the server and is unique within a playlist.
type Track struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Filename string   `json:"filename"`
	Path     string   `json:"path"`
	Duration *float64 `json:"duration,omitempty"`
}

// Seconds returns the track duration, or 0 when the server could not determine it.
func (t Track) Seconds() float64 {
	if t.Duration == nil {
		return 0
	}
	return *t.Duration
}

// Playlist is the ordered list of tracks held by the server.
type Playlist struct {
	Tracks       []Track `json:"tracks"`
	CurrentIndex *int    `json:"current_index,omitempty"`
}

// Len returns the number of tracks, treating a nil playlist as empty.
func (p *Playlist) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Tracks)
}

// IndexOf returns the position of the track with the given ID, or -1.
func (p *Playlist) IndexOf(id int) int {
	if p == nil {
		return -1
	}
	for i, t := range p.Tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Validate rejects playlists in which two tracks share an ID.
func (p *Playlist) Validate() error {
	seen := make(map[int]struct{}, p.Len())
	for _, t := range p.Tracks {
		if _, ok := seen[t.ID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateTrackID, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// PlayerStatus is a point-in-time snapshot of the player. Position and Duration are seconds.
type PlayerStatus struct {
	State        PlaybackState `json:"state"`
	CurrentTrack *Track        `json:"current_track,omitempty"`
	Position     float64       `json:"position"`
	Duration     float64       `json:"duration"`
	Volume       int           `json:"volume"`
}

func (s *PlayerStatus) IsPlaying() bool { return s != nil && s.State == StatePlaying }
func (s *PlayerStatus) IsPaused() bool  { return s != nil && s.State == StatePaused }

// Progress returns playback progress as a percentage (0-100).
func (s *PlayerStatus) Progress() float64 {
	if s == nil || s.Duration <= 0 {
		return 0
	}
	pct := s.Position / s.Duration * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// Validate checks volume bounds and that position does not run past a known duration.
func (s *PlayerStatus) Validate() error {
	if s.Volume < 0 || s.Volume > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidVolume, s.Volume)
	}
	if s.Duration > 0 && s.Position > s.Duration {
		return fmt.Errorf("%w: %.2f > %.2f", ErrInvalidPosition, s.Position, s.Duration)
	}
	return nil
}
