package models

import "time"

// Channel holds the latest known state of a tracked channel. One row per
// id, overwritten on every successful fetch.
type Channel struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	CustomURL       string    `json:"custom_url,omitempty"`
	Description     string    `json:"description,omitempty"`
	SubscriberCount int64     `json:"subscriber_count"`
	ViewCount       int64     `json:"view_count"`
	VideoCount      int64     `json:"video_count"`
	PublishedAt     time.Time `json:"published_at"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty"`
	LastUpdated     time.Time `json:"last_updated"`
}

// ChannelTrend summarizes growth over a period, computed from history.
type ChannelTrend struct {
	ChannelID                string  `json:"channel_id"`
	PeriodDays               int     `json:"period_days"`
	SubscriberGrowth         int64   `json:"subscriber_growth"`
	SubscriberGrowthPercent  float64 `json:"subscriber_growth_percent"`
	ViewGrowth               int64   `json:"view_growth"`
	ViewGrowthPercent        float64 `json:"view_growth_percent"`
	VideoGrowth              int64   `json:"video_growth"`
	AvgDailyViews            float64 `json:"avg_daily_views"`
}

// CalculateTrend derives a trend from an ascending history series.
// Fewer than two points yields a zero trend.
func CalculateTrend(channelID string, history []StatsPoint, periodDays int) ChannelTrend {
	trend := ChannelTrend{ChannelID: channelID, PeriodDays: periodDays}
	if len(history) < 2 {
		return trend
	}

	oldest := history[0]
	newest := history[len(history)-1]

	trend.SubscriberGrowth = newest.Subscribers - oldest.Subscribers
	if oldest.Subscribers > 0 {
		trend.SubscriberGrowthPercent = float64(trend.SubscriberGrowth) / float64(oldest.Subscribers) * 100
	}
	trend.ViewGrowth = newest.Views - oldest.Views
	if oldest.Views > 0 {
		trend.ViewGrowthPercent = float64(trend.ViewGrowth) / float64(oldest.Views) * 100
	}
	trend.VideoGrowth = newest.Videos - oldest.Videos

	if days := int(newest.Timestamp.Sub(oldest.Timestamp).Hours() / 24); days > 0 {
		trend.AvgDailyViews = float64(trend.ViewGrowth) / float64(days)
	}
	return trend
}
