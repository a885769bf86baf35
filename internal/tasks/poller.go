package tasks

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jtp/internal/models"
	"github.com/desertthunder/jtp/internal/shared"
	"github.com/jonboulle/clockwork"
)

// DefaultPollInterval is used when a non-positive interval is configured.
const DefaultPollInterval = 2 * time.Second

// StatusSource fetches the current player status.
type StatusSource interface {
	Status(ctx context.Context) (*models.PlayerStatus, error)
}

// StatusPoller keeps the latest [models.PlayerStatus] fresh by fetching it on a fixed interval.
//
// A failed tick keeps the previous snapshot. Failures are counted and logged, never escalated.
type StatusPoller struct {
	api      StatusSource
	clock    clockwork.Clock
	interval time.Duration
	logger   *log.Logger
	onUpdate func(*models.PlayerStatus)

	snapshot atomic.Pointer[models.PlayerStatus]
	failures atomic.Int64
	stopped  atomic.Bool

	mu       sync.Mutex
	started  bool
	running  bool
	ticker   clockwork.Ticker
	life     context.Context
	kill     context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewStatusPoller creates a poller. A nil clock uses the real clock and a nil logger discards output.
func NewStatusPoller(api StatusSource, clock clockwork.Clock, interval time.Duration, logger *log.Logger) *StatusPoller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	life, kill := context.WithCancel(context.Background())
	return &StatusPoller{
		api:      api,
		clock:    clock,
		interval: interval,
		logger:   logger.With("component", "poller"),
		life:     life,
		kill:     kill,
		done:     make(chan struct{}),
	}
}

// OnUpdate registers fn to be called with every accepted snapshot. It must be called before Start.
func (p *StatusPoller) OnUpdate(fn func(*models.PlayerStatus)) {
	p.onUpdate = fn
}

// Snapshot returns the last good status, or nil before the first successful fetch.
func (p *StatusPoller) Snapshot() *models.PlayerStatus {
	return p.snapshot.Load()
}

// Failures returns the number of consecutive failed fetches.
func (p *StatusPoller) Failures() int {
	return int(p.failures.Load())
}

// Start fetches once and, if that succeeds, begins polling.
//
// A failed first fetch is returned wrapped in [shared.ErrConnectivity] and the loop is not started.
func (p *StatusPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped.Load() {
		p.mu.Unlock()
		return shared.ErrPollerStopped
	}
	if p.started {
		p.mu.Unlock()
		return shared.ErrPollerStarted
	}
	p.started = true
	p.mu.Unlock()

	if err := p.refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrConnectivity, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped.Load() {
		return shared.ErrPollerStopped
	}

	p.ticker = p.clock.NewTicker(p.interval)
	p.running = true
	go p.loop(p.ticker)

	p.logger.Debug("polling started", "interval", p.interval)
	return nil
}

// Refresh performs one out-of-band fetch with the same rules as a tick.
func (p *StatusPoller) Refresh(ctx context.Context) error {
	if p.stopped.Load() {
		return shared.ErrPollerStopped
	}
	return p.refresh(ctx)
}

// Stop halts polling and waits for the loop to exit. It is safe to call more than once.
//
// An in-flight fetch is cancelled and its result discarded.
func (p *StatusPoller) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped.Store(true)
		running, ticker := p.running, p.ticker
		p.mu.Unlock()

		p.kill()
		if ticker != nil {
			ticker.Stop()
		}
		if running {
			<-p.done
		}
		p.logger.Debug("polling stopped")
	})
}

func (p *StatusPoller) loop(ticker clockwork.Ticker) {
	defer close(p.done)
	for {
		select {
		case <-p.life.Done():
			return
		case <-ticker.Chan():
			p.refresh(p.life)
		}
	}
}

// refresh fetches under a context that is also cancelled by Stop.
func (p *StatusPoller) refresh(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.life, cancel)
	defer stop()

	status, err := p.api.Status(ctx)
	if err == nil && status == nil {
		err = fmt.Errorf("%w: empty status", shared.ErrInvalidSnapshot)
	}
	if err == nil {
		if verr := status.Validate(); verr != nil {
			err = fmt.Errorf("%w: %w", shared.ErrInvalidSnapshot, verr)
		}
	}

	if p.stopped.Load() {
		return shared.ErrPollerStopped
	}

	if err != nil {
		n := p.failures.Add(1)
		p.logger.Warn("status fetch failed", "error", err, "consecutive_failures", n)
		return err
	}

	if n := p.failures.Swap(0); n > 0 {
		p.logger.Info("status fetch recovered", "after_failures", n)
	}

	p.snapshot.Store(status)
	if p.onUpdate != nil {
		p.onUpdate(status)
	}
	return nil
}
