package services

import (
	"supertube/internal/models"
)

// Significance thresholds for view count movement. Small view drift is
// noise at provider refresh granularity, so a view delta only counts
// when it is both absolutely and relatively meaningful.
const (
	viewDeltaMinAbsolute = 10
	viewDeltaMinRelative = 0.01
)

// ChangeDetector diffs successive snapshots of a channel and its videos.
type ChangeDetector struct{}

func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{}
}

// DetectChanges compares the previous snapshot with a freshly fetched
// one. A nil oldChannel means the channel was never seen; every video is
// then reported as new and no deltas are produced.
func (d *ChangeDetector) DetectChanges(oldChannel, newChannel *models.Channel, oldVideos, newVideos []models.Video) *models.ChangeSet {
	changes := &models.ChangeSet{
		ChannelDeltas: make(map[models.Metric]int64),
	}

	known := make(map[string]models.Video, len(oldVideos))
	for _, v := range oldVideos {
		known[v.ID] = v
	}

	for _, nv := range newVideos {
		ov, seen := known[nv.ID]
		if !seen {
			changes.NewVideos = append(changes.NewVideos, nv)
			continue
		}
		if deltas := videoDeltas(&ov, &nv); len(deltas) > 0 {
			changes.UpdatedVideos = append(changes.UpdatedVideos, models.VideoChange{
				Video:  nv,
				Deltas: deltas,
			})
		}
	}

	if oldChannel != nil && newChannel != nil {
		if d := newChannel.SubscriberCount - oldChannel.SubscriberCount; d != 0 {
			changes.ChannelDeltas[models.MetricSubscribers] = d
		}
		if d := newChannel.ViewCount - oldChannel.ViewCount; d != 0 {
			changes.ChannelDeltas[models.MetricViews] = d
		}
		if d := newChannel.VideoCount - oldChannel.VideoCount; d != 0 {
			changes.ChannelDeltas[models.MetricVideos] = d
		}
	}

	return changes
}

func videoDeltas(prev, curr *models.Video) map[models.Metric]int64 {
	deltas := make(map[models.Metric]int64)

	if d := curr.ViewCount - prev.ViewCount; significantViewDelta(d, prev.ViewCount) {
		deltas[models.MetricViews] = d
	}
	if d := curr.LikeCount - prev.LikeCount; d != 0 {
		deltas[models.MetricLikes] = d
	}
	if d := curr.CommentCount - prev.CommentCount; d != 0 {
		deltas[models.MetricComments] = d
	}

	if len(deltas) == 0 {
		return nil
	}
	return deltas
}

// significantViewDelta requires the delta to exceed both an absolute
// floor and a fraction of the previous count. A brand-new counter
// (previous zero) passes on the absolute test alone.
func significantViewDelta(delta, previous int64) bool {
	abs := delta
	if abs < 0 {
		abs = -abs
	}
	if abs <= viewDeltaMinAbsolute {
		return false
	}
	if previous == 0 {
		return true
	}
	return float64(abs) > float64(previous)*viewDeltaMinRelative
}
