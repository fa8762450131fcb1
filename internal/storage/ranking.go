package storage

import (
	"sort"

	"supertube/internal/models"
)

// VideoGrowth pairs a video with its counter delta over a period.
type VideoGrowth struct {
	Video  models.Video `json:"video"`
	Growth int64        `json:"growth"`
}

// VideosByGrowth ranks a channel's videos by how much a metric moved
// between the first and last sample within the window. Videos with
// fewer than two samples are skipped. Descending order surfaces top
// performers, ascending the laggards.
func (s *Store) VideosByGrowth(channelID string, days int, metric models.Metric, limit int, ascending bool) ([]VideoGrowth, error) {
	videos, err := s.ChannelVideos(channelID, 1000)
	if err != nil {
		return nil, err
	}

	var ranked []VideoGrowth
	for _, v := range videos {
		history, err := s.VideoHistory(v.ID, days)
		if err != nil {
			return nil, err
		}
		if len(history) < 2 {
			continue
		}
		oldest := history[0]
		newest := history[len(history)-1]
		ranked = append(ranked, VideoGrowth{
			Video:  v,
			Growth: newest.Counter(metric) - oldest.Counter(metric),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ascending {
			return ranked[i].Growth < ranked[j].Growth
		}
		return ranked[i].Growth > ranked[j].Growth
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
