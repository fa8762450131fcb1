package models

import "time"

// Alert records a threshold rule firing against a fresh snapshot.
type Alert struct {
	ID             int64     `json:"id"`
	ChannelID      string    `json:"channel_id"`
	VideoID        string    `json:"video_id,omitempty"`
	Metric         string    `json:"metric"`
	ThresholdValue float64   `json:"threshold_value"`
	ActualValue    float64   `json:"actual_value"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	TriggeredAt    time.Time `json:"triggered_at"`
	Acknowledged   bool      `json:"acknowledged"`
}
