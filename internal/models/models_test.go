package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func intPtr(i int) *int { return &i }

func TestPlaybackState(t *testing.T) {
	tc := []struct {
		state PlaybackState
		want  string
	}{
		{StateStopped, "stopped"},
		{StatePlaying, "playing"},
		{StatePaused, "paused"},
		{PlaybackState(42), "unknown"},
	}

	for _, tt := range tc {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaybackStateText(t *testing.T) {
	data, err := json.Marshal(PlayerStatus{State: StatePaused, Volume: 10})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"state":"paused"`) {
		t.Errorf("expected state by name, got %s", data)
	}

	var decoded PlayerStatus
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.State != StatePaused {
		t.Errorf("expected paused, got %v", decoded.State)
	}

	var s PlaybackState
	if err := s.UnmarshalText([]byte("rewinding")); err == nil {
		t.Error("expected error for unknown state")
	}
}

func TestPlaylist(t *testing.T) {
	playlist := &Playlist{
		Tracks: []Track{
			{ID: 0, Title: "Intro", Filename: "intro.mp3"},
			{ID: 3, Title: "Outro", Filename: "outro.flac"},
		},
		CurrentIndex: intPtr(1),
	}

	t.Run("Len", func(t *testing.T) {
		if playlist.Len() != 2 {
			t.Errorf("expected 2 tracks, got %d", playlist.Len())
		}

		var empty *Playlist
		if empty.Len() != 0 {
			t.Errorf("nil playlist should be empty")
		}
	})

	t.Run("IndexOf", func(t *testing.T) {
		if got := playlist.IndexOf(3); got != 1 {
			t.Errorf("IndexOf(3) = %d, want 1", got)
		}
		if got := playlist.IndexOf(7); got != -1 {
			t.Errorf("IndexOf(7) = %d, want -1", got)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := playlist.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		dup := &Playlist{Tracks: []Track{{ID: 1}, {ID: 2}, {ID: 1}}}
		if err := dup.Validate(); !errors.Is(err, ErrDuplicateTrackID) {
			t.Errorf("expected ErrDuplicateTrackID, got %v", err)
		}

		if err := (&Playlist{}).Validate(); err != nil {
			t.Errorf("empty playlist should validate: %v", err)
		}
	})
}

func TestTrackSeconds(t *testing.T) {
	d := 183.5
	if got := (Track{Duration: &d}).Seconds(); got != d {
		t.Errorf("Seconds() = %v, want %v", got, d)
	}
	if got := (Track{}).Seconds(); got != 0 {
		t.Errorf("Seconds() with unknown duration = %v, want 0", got)
	}
}

func TestPlayerStatus(t *testing.T) {
	t.Run("State helpers", func(t *testing.T) {
		playing := &PlayerStatus{State: StatePlaying}
		paused := &PlayerStatus{State: StatePaused}

		if !playing.IsPlaying() || playing.IsPaused() {
			t.Error("playing status reported wrong state")
		}
		if paused.IsPlaying() || !paused.IsPaused() {
			t.Error("paused status reported wrong state")
		}

		var none *PlayerStatus
		if none.IsPlaying() || none.IsPaused() {
			t.Error("nil status should be neither playing nor paused")
		}
	})

	t.Run("Progress", func(t *testing.T) {
		tc := []struct {
			name   string
			status PlayerStatus
			want   float64
		}{
			{"unknown duration", PlayerStatus{Position: 10}, 0},
			{"halfway", PlayerStatus{Position: 60, Duration: 120}, 50},
			{"capped", PlayerStatus{Position: 130, Duration: 120}, 100},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.status.Progress(); got != tt.want {
					t.Errorf("Progress() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			status  PlayerStatus
			wantErr error
		}{
			{"valid", PlayerStatus{Volume: 80, Position: 10, Duration: 100}, nil},
			{"unknown duration", PlayerStatus{Volume: 0, Position: 10}, nil},
			{"volume too high", PlayerStatus{Volume: 101}, ErrInvalidVolume},
			{"volume negative", PlayerStatus{Volume: -1}, ErrInvalidVolume},
			{"position past end", PlayerStatus{Volume: 50, Position: 101, Duration: 100}, ErrInvalidPosition},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.status.Validate()
				if tt.wantErr == nil && err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			})
		}
	})
}
