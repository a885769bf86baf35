package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/jtp/internal/models"
	"github.com/desertthunder/jtp/internal/shared"
	tu "github.com/desertthunder/jtp/internal/testing"
)

func TestPlaylistStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Refresh Swaps Snapshot", func(t *testing.T) {
		api := tu.NewFakeAPI()
		store := NewPlaylistStore(api, nil)

		if store.Snapshot() != nil {
			t.Fatal("expected nil snapshot before refresh")
		}

		want := &models.Playlist{Tracks: []models.Track{{ID: 0, Title: "a"}, {ID: 1, Title: "b"}}}
		api.SetPlaylist(want)

		got, err := store.Refresh(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != want || store.Snapshot() != want {
			t.Error("expected fetched playlist to become the snapshot")
		}
	})

	t.Run("Failure Keeps Previous Mirror", func(t *testing.T) {
		api := tu.NewFakeAPI()
		store := NewPlaylistStore(api, nil)
		if _, err := store.Refresh(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		first := store.Snapshot()

		api.Fail("playlist", errors.New("503"))
		if _, err := store.Refresh(ctx); err == nil {
			t.Error("expected error")
		}
		if store.Snapshot() != first {
			t.Error("expected previous mirror to be kept")
		}
	})

	t.Run("Duplicate IDs Rejected", func(t *testing.T) {
		api := tu.NewFakeAPI()
		store := NewPlaylistStore(api, nil)
		api.SetPlaylist(&models.Playlist{Tracks: []models.Track{{ID: 2}, {ID: 2}}})

		_, err := store.Refresh(ctx)
		if !errors.Is(err, shared.ErrInvalidSnapshot) || !errors.Is(err, models.ErrDuplicateTrackID) {
			t.Errorf("expected ErrInvalidSnapshot wrapping ErrDuplicateTrackID, got %v", err)
		}
		if store.Snapshot() != nil {
			t.Error("expected invalid playlist not to be stored")
		}
	})

	t.Run("OnUpdate Hook", func(t *testing.T) {
		api := tu.NewFakeAPI()
		store := NewPlaylistStore(api, nil)

		var got *models.Playlist
		store.OnUpdate(func(p *models.Playlist) { got = p })

		if _, err := store.Refresh(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got == nil || got != store.Snapshot() {
			t.Error("expected hook to receive the stored playlist")
		}
	})
}
