package models

import (
	"fmt"
	"strings"
)

// VideoChange pairs a video with the counter deltas that crossed the
// significance thresholds.
type VideoChange struct {
	Video  Video            `json:"video"`
	Deltas map[Metric]int64 `json:"deltas"`
}

// ChangeSet is the structured diff between two successive snapshots of a
// channel and its videos. Produced per refresh cycle, not persisted.
type ChangeSet struct {
	NewVideos     []Video          `json:"new_videos"`
	UpdatedVideos []VideoChange    `json:"updated_videos"`
	ChannelDeltas map[Metric]int64 `json:"channel_deltas"`
}

func (c *ChangeSet) HasChanges() bool {
	return len(c.NewVideos) > 0 || len(c.UpdatedVideos) > 0 || len(c.ChannelDeltas) > 0
}

// Summary renders a short human-readable description of the change set.
func (c *ChangeSet) Summary() string {
	var parts []string

	if n := len(c.NewVideos); n == 1 {
		parts = append(parts, "1 new video")
	} else if n > 1 {
		parts = append(parts, fmt.Sprintf("%d new videos", n))
	}

	if n := len(c.UpdatedVideos); n == 1 {
		parts = append(parts, "1 video updated")
	} else if n > 1 {
		parts = append(parts, fmt.Sprintf("%d videos updated", n))
	}

	if d, ok := c.ChannelDeltas[MetricSubscribers]; ok {
		parts = append(parts, fmt.Sprintf("%+d subscribers", d))
	}
	if d, ok := c.ChannelDeltas[MetricViews]; ok {
		parts = append(parts, fmt.Sprintf("%+d views", d))
	}

	if len(parts) == 0 {
		return "No changes"
	}
	return strings.Join(parts, " | ")
}
