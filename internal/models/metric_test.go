package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetric_StringRoundTrip(t *testing.T) {
	for _, m := range []Metric{MetricSubscribers, MetricViews, MetricVideos, MetricLikes, MetricComments} {
		parsed, err := ParseMetric(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}

func TestParseMetric_Unknown(t *testing.T) {
	_, err := ParseMetric("followers")
	assert.Error(t, err)
}

func TestStatsPoint_Counter(t *testing.T) {
	p := StatsPoint{Subscribers: 1, Views: 2, Videos: 3, Likes: 4, Comments: 5}

	assert.Equal(t, int64(1), p.Counter(MetricSubscribers))
	assert.Equal(t, int64(2), p.Counter(MetricViews))
	assert.Equal(t, int64(3), p.Counter(MetricVideos))
	assert.Equal(t, int64(4), p.Counter(MetricLikes))
	assert.Equal(t, int64(5), p.Counter(MetricComments))
}

func TestVideo_EngagementRate(t *testing.T) {
	v := Video{ViewCount: 1000, LikeCount: 80, CommentCount: 20}
	assert.InDelta(t, 10.0, v.EngagementRate(), 1e-9)
	assert.InDelta(t, 8.0, v.LikeRatio(), 1e-9)

	empty := Video{}
	assert.Equal(t, 0.0, empty.EngagementRate())
	assert.Equal(t, 0.0, empty.LikeRatio())
}
