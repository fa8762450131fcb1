package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supertube/internal/quota"
	"supertube/internal/services"
	"supertube/internal/structures"
	"supertube/internal/testutil"
)

type fakeRefresher struct {
	mu      sync.Mutex
	calls   int
	fail    bool
	tracker *quota.Tracker
}

func (f *fakeRefresher) RefreshChannel(_ context.Context, channelID string, _ bool) (*services.RefreshResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &services.RefreshResult{ChannelID: channelID, Refreshed: true}, nil
}

func (f *fakeRefresher) RefreshAll(_ context.Context, _ bool) []services.RefreshResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return []services.RefreshResult{{ChannelID: "UC123", Skipped: "error"}}
	}
	return []services.RefreshResult{{ChannelID: "UC123", Refreshed: true}}
}

func (f *fakeRefresher) Quota() *quota.Tracker {
	return f.tracker
}

func (f *fakeRefresher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func schedulerConfig(interval, watchInterval time.Duration) *structures.Config {
	return &structures.Config{
		Refresh: structures.RefreshConfig{
			Enabled:       true,
			Interval:      interval,
			WatchInterval: watchInterval,
			Quota: structures.QuotaConfig{
				DailyLimit:      10000,
				SafetyThreshold: 0.9,
			},
		},
	}
}

func newTestScheduler(conf *structures.Config) (*Scheduler, *fakeRefresher) {
	refresher := &fakeRefresher{tracker: quota.NewTracker(conf)}
	return NewScheduler(conf, refresher, &testutil.MockLogger{}), refresher
}

func TestScheduler_StartStop(t *testing.T) {
	s, _ := newTestScheduler(schedulerConfig(time.Hour, 5*time.Minute))

	s.Start()
	assert.True(t, s.Status().Running)

	s.Stop()
	assert.False(t, s.Status().Running)
}

func TestScheduler_StartTwiceIsNoop(t *testing.T) {
	s, _ := newTestScheduler(schedulerConfig(time.Hour, 5*time.Minute))

	s.Start()
	s.Start()
	s.Stop()
	assert.False(t, s.Status().Running)
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	s, _ := newTestScheduler(schedulerConfig(time.Hour, 5*time.Minute))
	s.Stop()
	assert.False(t, s.Status().Running)
}

func TestScheduler_FirstCycleWaitsFullInterval(t *testing.T) {
	s, refresher := newTestScheduler(schedulerConfig(time.Hour, 5*time.Minute))

	before := time.Now()
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return !s.Status().NextRun.IsZero()
	}, 2*time.Second, 10*time.Millisecond)

	assert.GreaterOrEqual(t, s.Status().NextRun.Sub(before), 59*time.Minute)
	assert.Equal(t, 0, refresher.callCount())
}

func TestScheduler_ForceRefreshWakesLoop(t *testing.T) {
	s, refresher := newTestScheduler(schedulerConfig(time.Hour, 5*time.Minute))

	s.Start()
	defer s.Stop()

	s.ForceRefresh()

	require.Eventually(t, func() bool {
		return refresher.callCount() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_WatchModeShortensInterval(t *testing.T) {
	s, _ := newTestScheduler(schedulerConfig(time.Hour, 5*time.Minute))

	assert.Equal(t, time.Hour, s.Status().Interval)

	s.EnableWatchMode("UC123")
	status := s.Status()
	assert.True(t, status.WatchMode)
	assert.Equal(t, "UC123", status.WatchChannel)
	assert.Equal(t, 5*time.Minute, status.Interval)

	s.DisableWatchMode()
	status = s.Status()
	assert.False(t, status.WatchMode)
	assert.Empty(t, status.WatchChannel)
	assert.Equal(t, time.Hour, status.Interval)
}

func TestScheduler_RunOnce_QuotaDefer(t *testing.T) {
	conf := schedulerConfig(time.Hour, 5*time.Minute)
	conf.Refresh.Quota.DailyLimit = 2
	s, refresher := newTestScheduler(conf)

	delay := s.runOnce()
	assert.Equal(t, quotaDeferDelay, delay)
	assert.Equal(t, 0, refresher.callCount())
}

func TestScheduler_RunOnce_AllFailedBacksOff(t *testing.T) {
	s, refresher := newTestScheduler(schedulerConfig(time.Hour, 5*time.Minute))
	refresher.fail = true

	delay := s.runOnce()
	assert.Equal(t, errorBackoff, delay)
	assert.Equal(t, 1, refresher.callCount())
}

func TestScheduler_RunOnce_SuccessReturnsInterval(t *testing.T) {
	s, refresher := newTestScheduler(schedulerConfig(time.Hour, 5*time.Minute))

	delay := s.runOnce()
	assert.Equal(t, time.Hour, delay)
	assert.Equal(t, 1, refresher.callCount())
	assert.False(t, s.Status().LastRun.IsZero())
}

func TestScheduler_RunOnce_WatchModeInterval(t *testing.T) {
	s, _ := newTestScheduler(schedulerConfig(time.Hour, 5*time.Minute))
	s.EnableWatchMode("UC123")

	delay := s.runOnce()
	assert.Equal(t, 5*time.Minute, delay)
}
