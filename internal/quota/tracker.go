package quota

import (
	"fmt"
	"sync"
	"time"

	"supertube/internal/structures"
)

// Operation identifies a billable provider call.
type Operation string

const (
	OpChannelStats  Operation = "channel_stats"
	OpChannelVideos Operation = "channel_videos"
	OpVideoDetails  Operation = "video_details"
	OpSearch        Operation = "search"
)

// Cost returns the quota units one call of this operation consumes.
// Unknown operations are billed at the most expensive known rate so a
// missing table entry can never cause quota exhaustion.
func (op Operation) Cost() int {
	switch op {
	case OpChannelStats, OpChannelVideos, OpVideoDetails:
		return 1
	case OpSearch:
		return 100
	}
	return 100
}

// Tracker accounts daily API quota consumption in memory and resets
// itself when the local calendar date advances. Safe for concurrent use.
type Tracker struct {
	mu              sync.Mutex
	dailyLimit      int
	safetyThreshold float64
	used            int
	byOp            map[Operation]int
	day             string
	now             func() time.Time
}

func NewTracker(conf *structures.Config) *Tracker {
	return &Tracker{
		dailyLimit:      conf.Refresh.Quota.DailyLimit,
		safetyThreshold: conf.Refresh.Quota.SafetyThreshold,
		byOp:            make(map[Operation]int),
		now:             time.Now,
	}
}

func (t *Tracker) resetIfNewDay() {
	today := t.now().Local().Format("2006-01-02")
	if t.day != today {
		t.day = today
		t.used = 0
		t.byOp = make(map[Operation]int)
	}
}

// RecordUsage bills one completed call.
func (t *Tracker) RecordUsage(op Operation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNewDay()
	t.used += op.Cost()
	t.byOp[op] += op.Cost()
}

// CanProceed reports whether spending estimatedCost more units stays
// strictly below the safety margin of the daily limit.
func (t *Tracker) CanProceed(estimatedCost int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNewDay()
	return float64(t.used+estimatedCost) < float64(t.dailyLimit)*t.safetyThreshold
}

// Remaining returns the unspent units of today's limit.
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNewDay()
	if t.used >= t.dailyLimit {
		return 0
	}
	return t.dailyLimit - t.used
}

// UsagePercent returns consumption as a percentage of the daily limit.
func (t *Tracker) UsagePercent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNewDay()
	if t.dailyLimit == 0 {
		return 0
	}
	return float64(t.used) / float64(t.dailyLimit) * 100
}

// Status is a point-in-time snapshot of the tracker for reporting.
type Status struct {
	Used         int               `json:"used"`
	DailyLimit   int               `json:"daily_limit"`
	Remaining    int               `json:"remaining"`
	UsagePercent float64           `json:"usage_percent"`
	ByOperation  map[Operation]int `json:"by_operation"`
	Day          string            `json:"day"`
}

func (t *Tracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNewDay()

	byOp := make(map[Operation]int, len(t.byOp))
	for op, n := range t.byOp {
		byOp[op] = n
	}
	remaining := t.dailyLimit - t.used
	if remaining < 0 {
		remaining = 0
	}
	percent := 0.0
	if t.dailyLimit > 0 {
		percent = float64(t.used) / float64(t.dailyLimit) * 100
	}
	return Status{
		Used:         t.used,
		DailyLimit:   t.dailyLimit,
		Remaining:    remaining,
		UsagePercent: percent,
		ByOperation:  byOp,
		Day:          t.day,
	}
}

// StatusLine renders a one-line summary for logs.
func (t *Tracker) StatusLine() string {
	s := t.Snapshot()
	return fmt.Sprintf("quota %d/%d (%.1f%%)", s.Used, s.DailyLimit, s.UsagePercent)
}

// EstimateRefreshCost returns the units one channel refresh will spend:
// one stats call plus one video listing call.
func EstimateRefreshCost() int {
	return OpChannelStats.Cost() + OpChannelVideos.Cost()
}
