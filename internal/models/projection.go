package models

import "time"

// GrowthProjection is a linear forecast for one metric.
type GrowthProjection struct {
	Metric          Metric  `json:"metric"`
	CurrentValue    int64   `json:"current_value"`
	Projected30d    int64   `json:"projected_30d"`
	Projected60d    int64   `json:"projected_60d"`
	Projected90d    int64   `json:"projected_90d"`
	DailyGrowthRate float64 `json:"daily_growth_rate"`
	Confidence      float64 `json:"confidence"`
}

// MilestoneProjection estimates when a metric crosses a threshold.
// EstimatedDate and DaysUntil are nil when the milestone is unreachable
// on the fitted trend.
type MilestoneProjection struct {
	Metric        Metric     `json:"metric"`
	Threshold     int64      `json:"threshold"`
	CurrentValue  int64      `json:"current_value"`
	EstimatedDate *time.Time `json:"estimated_date,omitempty"`
	DaysUntil     *int       `json:"days_until,omitempty"`
	Confidence    float64    `json:"confidence"`
	Achievable    bool       `json:"achievable"`
}
