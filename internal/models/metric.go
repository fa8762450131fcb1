package models

import "fmt"

// Metric identifies a single tracked counter. The set is closed: every
// accessor switches exhaustively over it, so an unknown metric is a
// compile-time or parse-time error, never a silent zero.
type Metric int

const (
	MetricSubscribers Metric = iota
	MetricViews
	MetricVideos
	MetricLikes
	MetricComments
)

func (m Metric) String() string {
	switch m {
	case MetricSubscribers:
		return "subscribers"
	case MetricViews:
		return "views"
	case MetricVideos:
		return "videos"
	case MetricLikes:
		return "likes"
	case MetricComments:
		return "comments"
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

func ParseMetric(s string) (Metric, error) {
	switch s {
	case "subscribers":
		return MetricSubscribers, nil
	case "views":
		return MetricViews, nil
	case "videos":
		return MetricVideos, nil
	case "likes":
		return MetricLikes, nil
	case "comments":
		return MetricComments, nil
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}
