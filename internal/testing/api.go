package testing

import (
	"context"
	"io"
	"sync"

	"github.com/desertthunder/jtp/internal/models"
)

// FakeAPI is an in-memory test double for the remote player contract.
//
// Errors registered with Fail are returned by the named call until cleared with Fail(name, nil).
// Call names are status, playlist, play, pause, stop, next, previous, volume, upload, download, clear,
// and remove.
type FakeAPI struct {
	mu       sync.Mutex
	status   *models.PlayerStatus
	playlist *models.Playlist
	errs     map[string]error
	calls    []string

	statusFn func(ctx context.Context) (*models.PlayerStatus, error)

	// UploadErrs fails uploads by file name.
	UploadErrs map[string]error

	PlayIndexes []*int
	Volumes     []int
	Uploads     []string
	Downloads   []string
	Removed     []int
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		status:     &models.PlayerStatus{State: models.StateStopped, Volume: 80},
		playlist:   &models.Playlist{Tracks: []models.Track{}},
		errs:       make(map[string]error),
		UploadErrs: make(map[string]error),
	}
}

// SetStatus replaces the status returned by Status.
func (f *FakeAPI) SetStatus(s *models.PlayerStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

// SetPlaylist replaces the playlist returned by Playlist.
func (f *FakeAPI) SetPlaylist(p *models.Playlist) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playlist = p
}

// SetStatusFunc replaces the canned status response with fn; a nil fn restores it.
func (f *FakeAPI) SetStatusFunc(fn func(ctx context.Context) (*models.PlayerStatus, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusFn = fn
}

// Fail makes the named call return err; a nil err clears it.
func (f *FakeAPI) Fail(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, name)
		return
	}
	f.errs[name] = err
}

// Count returns how many times the named call was made.
func (f *FakeAPI) Count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

// Calls returns the call log in order.
func (f *FakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeAPI) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *FakeAPI) Status(ctx context.Context) (*models.PlayerStatus, error) {
	if err := f.record("status"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	fn, status := f.statusFn, f.status
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return status, nil
}

func (f *FakeAPI) Playlist(ctx context.Context) (*models.Playlist, error) {
	if err := f.record("playlist"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playlist, nil
}

func (f *FakeAPI) Play(ctx context.Context, index *int) error {
	if err := f.record("play"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PlayIndexes = append(f.PlayIndexes, index)
	return nil
}

func (f *FakeAPI) Pause(ctx context.Context) error    { return f.record("pause") }
func (f *FakeAPI) Stop(ctx context.Context) error     { return f.record("stop") }
func (f *FakeAPI) Next(ctx context.Context) error     { return f.record("next") }
func (f *FakeAPI) Previous(ctx context.Context) error { return f.record("previous") }

func (f *FakeAPI) SetVolume(ctx context.Context, volume int) error {
	if err := f.record("volume"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Volumes = append(f.Volumes, volume)
	return nil
}

// Upload drains r and appends a track named after the file to the fake playlist.
func (f *FakeAPI) Upload(ctx context.Context, name string, r io.Reader) (*models.Track, error) {
	if err := f.record("upload"); err != nil {
		return nil, err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.UploadErrs[name]; err != nil {
		return nil, err
	}

	f.Uploads = append(f.Uploads, name)
	track := models.Track{ID: len(f.Uploads) - 1, Title: name, Filename: name, Path: "uploads/" + name}
	return &track, nil
}

func (f *FakeAPI) Download(ctx context.Context, url string) error {
	if err := f.record("download"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Downloads = append(f.Downloads, url)
	return nil
}

func (f *FakeAPI) ClearPlaylist(ctx context.Context) error { return f.record("clear") }

func (f *FakeAPI) RemoveTrack(ctx context.Context, id int) error {
	if err := f.record("remove"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Removed = append(f.Removed, id)
	return nil
}
