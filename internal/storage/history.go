package storage

import (
	"fmt"
	"sort"
	"time"

	"supertube/internal/models"
)

// pointKind abstracts over the channel and video stat tables, which
// share layout and behavior but track different counters.
type pointKind struct {
	hotTable     string
	archiveTable string
	idColumn     string
	counterCols  [3]string
	counters     func(p *models.StatsPoint) [3]int64
	setCounters  func(p *models.StatsPoint, vals [3]int64)
}

var channelPoints = pointKind{
	hotTable:     "channel_stats_hot",
	archiveTable: "channel_stats_archive",
	idColumn:     "channel_id",
	counterCols:  [3]string{"subscriber_count", "view_count", "video_count"},
	counters: func(p *models.StatsPoint) [3]int64 {
		return [3]int64{p.Subscribers, p.Views, p.Videos}
	},
	setCounters: func(p *models.StatsPoint, vals [3]int64) {
		p.Subscribers, p.Views, p.Videos = vals[0], vals[1], vals[2]
	},
}

var videoPoints = pointKind{
	hotTable:     "video_stats_hot",
	archiveTable: "video_stats_archive",
	idColumn:     "video_id",
	counterCols:  [3]string{"view_count", "like_count", "comment_count"},
	counters: func(p *models.StatsPoint) [3]int64 {
		return [3]int64{p.Views, p.Likes, p.Comments}
	},
	setCounters: func(p *models.StatsPoint, vals [3]int64) {
		p.Views, p.Likes, p.Comments = vals[0], vals[1], vals[2]
	},
}

// UpsertChannelPoint records today's sample for a channel. A second
// write within the same local calendar day replaces the first.
func (s *Store) UpsertChannelPoint(ch *models.Channel) error {
	p := models.ChannelPoint(ch, s.now())
	return s.upsertDailyPoint(&channelPoints, &p)
}

// UpsertVideoPoints records today's samples for a set of videos.
func (s *Store) UpsertVideoPoints(videos []models.Video) error {
	now := s.now()
	for i := range videos {
		p := models.VideoPoint(&videos[i], now)
		if err := s.upsertDailyPoint(&videoPoints, &p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertDailyPoint(kind *pointKind, p *models.StatsPoint) error {
	dayStart, dayEnd := localDayBounds(p.Timestamp)
	vals := kind.counters(p)

	// Update-in-place when a sample for the same local day exists.
	// Concurrent same-day writers race on this check; last writer wins,
	// which is acceptable for near-identical freshly fetched data.
	res, err := s.db.Exec(fmt.Sprintf(`
		UPDATE %s SET timestamp = ?, %s = ?, %s = ?, %s = ?
		WHERE %s = ? AND timestamp >= ? AND timestamp < ?`,
		kind.hotTable, kind.counterCols[0], kind.counterCols[1], kind.counterCols[2], kind.idColumn),
		p.Timestamp.UnixNano(), vals[0], vals[1], vals[2],
		p.ID, dayStart.UnixNano(), dayEnd.UnixNano())
	if err != nil {
		return fmt.Errorf("upsert point %s: %w", p.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	_, err = s.db.Exec(fmt.Sprintf(`
		INSERT INTO %s (%s, timestamp, %s, %s, %s) VALUES (?, ?, ?, ?, ?)`,
		kind.hotTable, kind.idColumn, kind.counterCols[0], kind.counterCols[1], kind.counterCols[2]),
		p.ID, p.Timestamp.UnixNano(), vals[0], vals[1], vals[2])
	if err != nil {
		return fmt.Errorf("insert point %s: %w", p.ID, err)
	}
	return nil
}

// ChannelHistory returns samples for a channel within the window,
// ascending by timestamp, merging hot rows and archived blocks.
func (s *Store) ChannelHistory(channelID string, days int) ([]models.StatsPoint, error) {
	return s.history(&channelPoints, channelID, days)
}

// VideoHistory returns samples for a video within the window,
// ascending by timestamp, merging hot rows and archived blocks.
func (s *Store) VideoHistory(videoID string, days int) ([]models.StatsPoint, error) {
	return s.history(&videoPoints, videoID, days)
}

func (s *Store) history(kind *pointKind, id string, days int) ([]models.StatsPoint, error) {
	cutoff := s.now().AddDate(0, 0, -days)

	points, err := s.hotPoints(kind, id, cutoff)
	if err != nil {
		return nil, err
	}

	archived, err := s.archivedPoints(kind, id, cutoff)
	if err != nil {
		return nil, err
	}
	points = append(points, archived...)

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points, nil
}

func (s *Store) hotPoints(kind *pointKind, id string, cutoff time.Time) ([]models.StatsPoint, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT timestamp, %s, %s, %s FROM %s
		WHERE %s = ? AND timestamp >= ?
		ORDER BY timestamp ASC`,
		kind.counterCols[0], kind.counterCols[1], kind.counterCols[2],
		kind.hotTable, kind.idColumn),
		id, cutoff.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("hot history %s: %w", id, err)
	}
	defer rows.Close()

	var points []models.StatsPoint
	for rows.Next() {
		var ts int64
		var vals [3]int64
		if err := rows.Scan(&ts, &vals[0], &vals[1], &vals[2]); err != nil {
			return nil, fmt.Errorf("hot history %s: %w", id, err)
		}
		p := models.StatsPoint{ID: id, Timestamp: time.Unix(0, ts).UTC()}
		kind.setCounters(&p, vals)
		points = append(points, p)
	}
	return points, rows.Err()
}

// archivedPoints decodes every archive block whose period overlaps the
// window and filters the contained points against the cutoff, since a
// block's week may straddle it. A block that fails to decode aborts the
// read: silently dropping history would corrupt trends downstream.
func (s *Store) archivedPoints(kind *pointKind, id string, cutoff time.Time) ([]models.StatsPoint, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT period_start, data FROM %s
		WHERE %s = ? AND period_end >= ?
		ORDER BY period_start ASC`,
		kind.archiveTable, kind.idColumn),
		id, cutoff.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("archive history %s: %w", id, err)
	}
	defer rows.Close()

	var points []models.StatsPoint
	for rows.Next() {
		var periodStart int64
		var blob []byte
		if err := rows.Scan(&periodStart, &blob); err != nil {
			return nil, fmt.Errorf("archive history %s: %w", id, err)
		}

		decoded, err := s.decodeBlock(blob)
		if err != nil {
			return nil, fmt.Errorf("archive block %s/%d: %w", id, periodStart, err)
		}
		for _, p := range decoded {
			if p.Timestamp.Before(cutoff) {
				continue
			}
			p.ID = id
			points = append(points, p)
		}
	}
	return points, rows.Err()
}
