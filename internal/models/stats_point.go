package models

import "time"

// StatsPoint is one observed sample of an entity's counters. Hot rows
// hold at most one point per local calendar day per id; archive blocks
// hold the same shape serialized in weekly batches.
type StatsPoint struct {
	ID          string    `json:"-"`
	Timestamp   time.Time `json:"timestamp"`
	Subscribers int64     `json:"subscribers"`
	Views       int64     `json:"views"`
	Videos      int64     `json:"videos"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
}

// Counter returns the sample's value for a metric.
func (p *StatsPoint) Counter(m Metric) int64 {
	switch m {
	case MetricSubscribers:
		return p.Subscribers
	case MetricViews:
		return p.Views
	case MetricVideos:
		return p.Videos
	case MetricLikes:
		return p.Likes
	case MetricComments:
		return p.Comments
	}
	return 0
}

// ChannelPoint builds a sample from a channel snapshot.
func ChannelPoint(ch *Channel, ts time.Time) StatsPoint {
	return StatsPoint{
		ID:          ch.ID,
		Timestamp:   ts,
		Subscribers: ch.SubscriberCount,
		Views:       ch.ViewCount,
		Videos:      ch.VideoCount,
	}
}

// VideoPoint builds a sample from a video snapshot.
func VideoPoint(v *Video, ts time.Time) StatsPoint {
	return StatsPoint{
		ID:        v.ID,
		Timestamp: ts,
		Views:     v.ViewCount,
		Likes:     v.LikeCount,
		Comments:  v.CommentCount,
	}
}
