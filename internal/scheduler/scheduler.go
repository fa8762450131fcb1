package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"

	"supertube/internal/providers"
	"supertube/internal/quota"
	"supertube/internal/services"
	"supertube/internal/structures"
)

const (
	quotaDeferDelay = time.Hour
	errorBackoff    = 60 * time.Second
)

// Status is a point-in-time view of the scheduler for reporting.
type Status struct {
	Running      bool          `json:"running"`
	WatchMode    bool          `json:"watch_mode"`
	WatchChannel string        `json:"watch_channel,omitempty"`
	Interval     time.Duration `json:"interval"`
	NextRun      time.Time     `json:"next_run"`
	LastRun      time.Time     `json:"last_run"`
	Quota        quota.Status  `json:"quota"`
}

// Scheduler drives periodic background refreshes. One timer loop covers
// all channels; watch mode shortens the interval for close tracking of
// an active event. Stop cancels the wait, never an in-flight refresh.
type Scheduler struct {
	conf      *structures.Config
	refresher services.RefreshServiceInterface
	logger    providers.Logger

	running atomic.Bool

	mu           sync.Mutex
	watchMode    bool
	watchChannel string
	nextRun      time.Time
	lastRun   time.Time
	cancel    context.CancelFunc
	wake      chan struct{}
	done      chan struct{}
}

func NewScheduler(conf *structures.Config, refresher services.RefreshServiceInterface, logger providers.Logger) *Scheduler {
	return &Scheduler{
		conf:      conf,
		refresher: refresher,
		logger:    logger,
		wake:      make(chan struct{}, 1),
	}
}

// Start launches the refresh loop. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}

	s.mu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.logger.Infof(providers.TypeRefresh, "Scheduler started, interval %s", s.conf.Refresh.Interval)
	go s.loop(ctx)
}

// Stop cancels the wait loop and blocks until it exits. A refresh that
// is already underway finishes on its own context.
func (s *Scheduler) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Infof(providers.TypeRefresh, "Scheduler stopped")
}

// EnableWatchMode switches the loop to the short watch interval and
// wakes it so the change applies immediately. The channel id is advisory
// status metadata; every channel still refreshes on the watch interval.
func (s *Scheduler) EnableWatchMode(channelID string) {
	s.mu.Lock()
	s.watchMode = true
	s.watchChannel = channelID
	s.mu.Unlock()
	s.logger.Infof(providers.TypeRefresh, "Watch mode enabled for %s, interval %s", channelID, s.conf.Refresh.WatchInterval)
	s.poke()
}

func (s *Scheduler) DisableWatchMode() {
	s.mu.Lock()
	s.watchMode = false
	s.watchChannel = ""
	s.mu.Unlock()
	s.logger.Infof(providers.TypeRefresh, "Watch mode disabled")
	s.poke()
}

// ForceRefresh wakes the loop for an immediate cycle.
func (s *Scheduler) ForceRefresh() {
	s.poke()
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:      s.running.Load(),
		WatchMode:    s.watchMode,
		WatchChannel: s.watchChannel,
		Interval:     s.currentIntervalLocked(),
		NextRun:      s.nextRun,
		LastRun:      s.lastRun,
		Quota:        s.refresher.Quota().Snapshot(),
	}
}

func (s *Scheduler) currentIntervalLocked() time.Duration {
	if s.watchMode && s.conf.Refresh.WatchInterval > 0 {
		return s.conf.Refresh.WatchInterval
	}
	return s.conf.Refresh.Interval
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	// The first cycle waits out a full interval; a restart must not spend
	// quota that the previous run already spent.
	s.mu.Lock()
	delay := s.currentIntervalLocked()
	s.mu.Unlock()

	for {
		s.mu.Lock()
		s.nextRun = time.Now().Add(delay)
		s.mu.Unlock()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		}

		delay = s.runOnce()
	}
}

// runOnce executes one refresh cycle and returns the delay before the
// next one: an hour when quota headroom is gone, a short backoff when
// every channel failed, the regular interval otherwise.
func (s *Scheduler) runOnce() (delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf(providers.TypeRefresh, "Refresh cycle panicked: %v", r)
			delay = errorBackoff
		}
	}()

	tracker := s.refresher.Quota()
	if !tracker.CanProceed(quota.EstimateRefreshCost()) {
		s.logger.Warnf(providers.TypeRefresh, "Deferring refresh cycle: %s", tracker.StatusLine())
		return quotaDeferDelay
	}

	// The cycle runs on its own context: stopping the scheduler must
	// not tear down half-written snapshots.
	results := s.refresher.RefreshAll(context.Background(), false)

	s.mu.Lock()
	s.lastRun = time.Now()
	interval := s.currentIntervalLocked()
	s.mu.Unlock()

	failed := 0
	for _, r := range results {
		if r.Skipped == "error" {
			failed++
		}
	}
	if len(results) > 0 && failed == len(results) {
		s.logger.Warnf(providers.TypeRefresh, "All %d channels failed to refresh, backing off", failed)
		return errorBackoff
	}
	return interval
}
