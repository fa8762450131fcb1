package models

import "time"

// Video holds the latest known state of a single video, keyed by id and
// owned by one channel. Overwritten on every successful fetch.
type Video struct {
	ID           string    `json:"id"`
	ChannelID    string    `json:"channel_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	Duration     string    `json:"duration,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	LastUpdated  time.Time `json:"last_updated"`
}

// EngagementRate is (likes + comments) / views as a percentage.
func (v *Video) EngagementRate() float64 {
	if v.ViewCount == 0 {
		return 0
	}
	return float64(v.LikeCount+v.CommentCount) / float64(v.ViewCount) * 100
}

// LikeRatio is likes / views as a percentage.
func (v *Video) LikeRatio() float64 {
	if v.ViewCount == 0 {
		return 0
	}
	return float64(v.LikeCount) / float64(v.ViewCount) * 100
}
