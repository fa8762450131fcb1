package storage

import (
	"fmt"
	"time"

	"supertube/internal/models"
)

// SaveAlerts persists triggered alerts in one transaction.
func (s *Store) SaveAlerts(alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save alerts: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO alerts
		(channel_id, video_id, metric, threshold_value, actual_value,
		 alert_type, message, triggered_at, acknowledged)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)`)
	if err != nil {
		return fmt.Errorf("save alerts: %w", err)
	}
	defer stmt.Close()

	for _, a := range alerts {
		_, err := stmt.Exec(a.ChannelID, a.VideoID, a.Metric, a.ThresholdValue,
			a.ActualValue, a.Type, a.Message, a.TriggeredAt.UnixNano())
		if err != nil {
			return fmt.Errorf("save alert: %w", err)
		}
	}
	return tx.Commit()
}

// Alerts returns stored alerts, newest first.
func (s *Store) Alerts(onlyUnacked bool, limit int) ([]models.Alert, error) {
	query := `
		SELECT id, channel_id, video_id, metric, threshold_value, actual_value,
		       alert_type, message, triggered_at, acknowledged
		FROM alerts`
	if onlyUnacked {
		query += ` WHERE acknowledged = 0`
	}
	query += ` ORDER BY triggered_at DESC LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var videoID *string
		var triggeredAt int64
		var acked int

		err := rows.Scan(&a.ID, &a.ChannelID, &videoID, &a.Metric,
			&a.ThresholdValue, &a.ActualValue, &a.Type, &a.Message,
			&triggeredAt, &acked)
		if err != nil {
			return nil, fmt.Errorf("list alerts: %w", err)
		}
		if videoID != nil {
			a.VideoID = *videoID
		}
		a.TriggeredAt = time.Unix(0, triggeredAt).UTC()
		a.Acknowledged = acked != 0
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// AcknowledgeAlert marks an alert as seen. Returns ErrNotFound for an
// unknown id.
func (s *Store) AcknowledgeAlert(id int64) error {
	res, err := s.db.Exec(`UPDATE alerts SET acknowledged = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("acknowledge alert %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("acknowledge alert %d: %w", id, ErrNotFound)
	}
	return nil
}
