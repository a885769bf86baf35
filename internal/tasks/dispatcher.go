package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jtp/internal/models"
	"github.com/desertthunder/jtp/internal/services"
	"github.com/desertthunder/jtp/internal/shared"
	"github.com/jonboulle/clockwork"
)

// DefaultSettleDelay is the wait between a successful command and the follow-up status fetch.
const DefaultSettleDelay = 200 * time.Millisecond

// defaultUnmuteVolume is restored when unmuting without a remembered level.
const defaultUnmuteVolume = 50

// Action is one remote command.
type Action func(ctx context.Context) error

// ActionError reports a failed command. It matches both [shared.ErrActionFailed] and the cause.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%v: %s: %v", shared.ErrActionFailed, e.Action, e.Err)
}

func (e *ActionError) Unwrap() []error {
	return []error{shared.ErrActionFailed, e.Err}
}

// StatusRefresher triggers an out-of-band status fetch.
type StatusRefresher interface {
	Refresh(ctx context.Context) error
}

// PlaylistRefresher reloads the playlist mirror.
type PlaylistRefresher interface {
	Refresh(ctx context.Context) (*models.Playlist, error)
}

// Dispatcher forwards user intents to the remote player.
//
// Commands are not queued or serialised. Each success schedules one status refresh after the settle
// delay; local snapshots are never edited optimistically.
type Dispatcher struct {
	api      services.RemoteAPI
	status   StatusRefresher
	playlist PlaylistRefresher
	clock    clockwork.Clock
	settle   time.Duration
	logger   *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	timers     map[uint64]clockwork.Timer
	nextID     uint64
	closed     bool
	lastVolume int
}

// NewDispatcher creates a dispatcher. A negative settle delay uses [DefaultSettleDelay].
func NewDispatcher(api services.RemoteAPI, status StatusRefresher, playlist PlaylistRefresher, clock clockwork.Clock, settle time.Duration, logger *log.Logger) *Dispatcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if settle < 0 {
		settle = DefaultSettleDelay
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		api:      api,
		status:   status,
		playlist: playlist,
		clock:    clock,
		settle:   settle,
		logger:   logger.With("component", "dispatcher"),
		ctx:      ctx,
		cancel:   cancel,
		timers:   make(map[uint64]clockwork.Timer),
	}
}

// Dispatch runs action and, on success, schedules a status refresh.
//
// Failures are logged in full and returned as [*ActionError].
func (d *Dispatcher) Dispatch(ctx context.Context, name string, action Action) error {
	if err := action(ctx); err != nil {
		d.logger.Error("action failed", "action", name, "error", err)
		return &ActionError{Action: name, Err: err}
	}

	d.logger.Debug("action succeeded", "action", name)
	d.scheduleRefresh(name)
	return nil
}

// Pending returns the number of follow-up refreshes that have not fired yet.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Close cancels pending follow-ups. Later dispatches still run but schedule nothing.
// Timers are stopped without holding mu.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	timers := d.timers
	d.timers = make(map[uint64]clockwork.Timer)
	d.mu.Unlock()

	d.cancel()
	for _, t := range timers {
		t.Stop()
	}
}

func (d *Dispatcher) scheduleRefresh(name string) {
	if d.status == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	id := d.nextID
	d.nextID++
	d.timers[id] = d.clock.AfterFunc(d.settle, func() {
		d.mu.Lock()
		delete(d.timers, id)
		d.mu.Unlock()

		err := d.status.Refresh(d.ctx)
		if err != nil && !errors.Is(err, shared.ErrPollerStopped) && !errors.Is(err, context.Canceled) {
			d.logger.Warn("follow-up refresh failed", "action", name, "error", err)
		}
	})
}

func (d *Dispatcher) refreshPlaylist(ctx context.Context, name string) {
	if d.playlist == nil {
		return
	}
	if _, err := d.playlist.Refresh(ctx); err != nil {
		d.logger.Warn("playlist refresh failed", "action", name, "error", err)
	}
}

// Play starts the track at index, or resumes when index is nil.
func (d *Dispatcher) Play(ctx context.Context, index *int) error {
	return d.Dispatch(ctx, "play", func(ctx context.Context) error { return d.api.Play(ctx, index) })
}

func (d *Dispatcher) Pause(ctx context.Context) error {
	return d.Dispatch(ctx, "pause", d.api.Pause)
}

func (d *Dispatcher) Stop(ctx context.Context) error {
	return d.Dispatch(ctx, "stop", d.api.Stop)
}

func (d *Dispatcher) Next(ctx context.Context) error {
	return d.Dispatch(ctx, "next", d.api.Next)
}

func (d *Dispatcher) Previous(ctx context.Context) error {
	return d.Dispatch(ctx, "previous", d.api.Previous)
}

// SetVolume rejects levels outside 0-100 before contacting the server.
func (d *Dispatcher) SetVolume(ctx context.Context, volume int) error {
	if volume < 0 || volume > 100 {
		return fmt.Errorf("%w: %d", shared.ErrInvalidVolume, volume)
	}
	return d.Dispatch(ctx, "volume", func(ctx context.Context) error { return d.api.SetVolume(ctx, volume) })
}

// ToggleMute mutes when current is above zero, remembering the level, and otherwise restores the
// remembered level or 50. It returns the level that was requested.
func (d *Dispatcher) ToggleMute(ctx context.Context, current int) (int, error) {
	d.mu.Lock()
	target := 0
	if current <= 0 {
		target = d.lastVolume
		if target <= 0 {
			target = defaultUnmuteVolume
		}
	}
	d.mu.Unlock()

	if err := d.SetVolume(ctx, target); err != nil {
		return current, err
	}

	if target == 0 {
		d.mu.Lock()
		d.lastVolume = current
		d.mu.Unlock()
	}
	return target, nil
}

// RemoveTrack removes a track and reloads the playlist once the server has answered.
func (d *Dispatcher) RemoveTrack(ctx context.Context, id int) error {
	err := d.Dispatch(ctx, "remove", func(ctx context.Context) error { return d.api.RemoveTrack(ctx, id) })
	if err != nil {
		return err
	}
	d.refreshPlaylist(ctx, "remove")
	return nil
}

// ClearPlaylist removes every track and reloads the playlist once the server has answered.
func (d *Dispatcher) ClearPlaylist(ctx context.Context) error {
	if err := d.Dispatch(ctx, "clear", d.api.ClearPlaylist); err != nil {
		return err
	}
	d.refreshPlaylist(ctx, "clear")
	return nil
}
