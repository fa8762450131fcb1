package storage

import (
	"database/sql"
	"fmt"
	"time"

	"supertube/internal/models"
)

// SaveChannel stores the latest channel snapshot, overwriting any
// previous state for the same id.
func (s *Store) SaveChannel(ch *models.Channel) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO channels
		(id, name, custom_url, description, subscriber_count, view_count,
		 video_count, published_at, thumbnail_url, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.ID, ch.Name, ch.CustomURL, ch.Description, ch.SubscriberCount,
		ch.ViewCount, ch.VideoCount, ch.PublishedAt.UnixNano(),
		ch.ThumbnailURL, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("save channel %s: %w", ch.ID, err)
	}
	return nil
}

// GetChannel returns the cached channel snapshot, or nil when the
// channel has never been fetched.
func (s *Store) GetChannel(id string) (*models.Channel, error) {
	row := s.db.QueryRow(`
		SELECT id, name, custom_url, description, subscriber_count, view_count,
		       video_count, published_at, thumbnail_url, last_updated
		FROM channels WHERE id = ?`, id)

	ch, err := scanChannel(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get channel %s: %w", id, err)
	}
	return ch, nil
}

// Channels returns all cached channel snapshots ordered by name.
func (s *Store) Channels() ([]models.Channel, error) {
	rows, err := s.db.Query(`
		SELECT id, name, custom_url, description, subscriber_count, view_count,
		       video_count, published_at, thumbnail_url, last_updated
		FROM channels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("list channels: %w", err)
		}
		channels = append(channels, *ch)
	}
	return channels, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChannel(row rowScanner) (*models.Channel, error) {
	var ch models.Channel
	var customURL, description, thumbnail sql.NullString
	var publishedAt, lastUpdated int64

	err := row.Scan(&ch.ID, &ch.Name, &customURL, &description,
		&ch.SubscriberCount, &ch.ViewCount, &ch.VideoCount,
		&publishedAt, &thumbnail, &lastUpdated)
	if err != nil {
		return nil, err
	}
	ch.CustomURL = customURL.String
	ch.Description = description.String
	ch.ThumbnailURL = thumbnail.String
	ch.PublishedAt = time.Unix(0, publishedAt).UTC()
	ch.LastUpdated = time.Unix(0, lastUpdated).UTC()
	return &ch, nil
}

// SaveVideos stores the latest video snapshots in a single transaction.
func (s *Store) SaveVideos(videos []models.Video) error {
	if len(videos) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save videos: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO videos
		(id, channel_id, title, description, published_at, view_count,
		 like_count, comment_count, duration, thumbnail_url, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save videos: %w", err)
	}
	defer stmt.Close()

	now := s.now().UnixNano()
	for _, v := range videos {
		_, err := stmt.Exec(v.ID, v.ChannelID, v.Title, v.Description,
			v.PublishedAt.UnixNano(), v.ViewCount, v.LikeCount,
			v.CommentCount, v.Duration, v.ThumbnailURL, now)
		if err != nil {
			return fmt.Errorf("save video %s: %w", v.ID, err)
		}
	}
	return tx.Commit()
}

// ChannelVideos returns cached videos for a channel, newest first.
func (s *Store) ChannelVideos(channelID string, limit int) ([]models.Video, error) {
	rows, err := s.db.Query(`
		SELECT id, channel_id, title, description, published_at, view_count,
		       like_count, comment_count, duration, thumbnail_url, last_updated
		FROM videos
		WHERE channel_id = ?
		ORDER BY published_at DESC
		LIMIT ?`, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("channel videos %s: %w", channelID, err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var v models.Video
		var description, duration, thumbnail sql.NullString
		var publishedAt, lastUpdated int64

		err := rows.Scan(&v.ID, &v.ChannelID, &v.Title, &description,
			&publishedAt, &v.ViewCount, &v.LikeCount, &v.CommentCount,
			&duration, &thumbnail, &lastUpdated)
		if err != nil {
			return nil, fmt.Errorf("channel videos %s: %w", channelID, err)
		}
		v.Description = description.String
		v.Duration = duration.String
		v.ThumbnailURL = thumbnail.String
		v.PublishedAt = time.Unix(0, publishedAt).UTC()
		v.LastUpdated = time.Unix(0, lastUpdated).UTC()
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// IsFresh reports whether a hot sample for the channel exists within
// the freshness window. Fresh channels are not refetched.
func (s *Store) IsFresh(channelID string, window time.Duration) (bool, error) {
	var latest sql.NullInt64
	err := s.db.QueryRow(`
		SELECT MAX(timestamp) FROM channel_stats_hot WHERE channel_id = ?`,
		channelID).Scan(&latest)
	if err != nil {
		return false, fmt.Errorf("freshness check %s: %w", channelID, err)
	}
	if !latest.Valid {
		return false, nil
	}
	age := s.now().Sub(time.Unix(0, latest.Int64))
	return age < window, nil
}
