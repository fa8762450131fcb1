package storage

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"supertube/internal/models"
	"supertube/internal/providers"
	"supertube/internal/structures"
)

// CompactResult reports what a compaction run migrated.
type CompactResult struct {
	ArchivedPoints int `json:"archived_points"`
	Blocks         int `json:"blocks"`
}

// PurgeResult reports what a retention purge deleted.
type PurgeResult struct {
	HotPoints     int64 `json:"hot_points"`
	ArchiveBlocks int64 `json:"archive_blocks"`
	AckedAlerts   int64 `json:"acked_alerts"`
}

// Compact migrates hot samples older than the cutoff into compressed
// weekly archive blocks, then deletes the migrated rows. Each id is
// processed in its own transaction so a failure never loses rows: the
// archive write commits before (and together with) the hot delete.
func (s *Store) Compact(olderThanDays int) (CompactResult, error) {
	var result CompactResult
	cutoff := s.now().AddDate(0, 0, -olderThanDays)

	for _, kind := range []*pointKind{&channelPoints, &videoPoints} {
		if err := s.compactKind(kind, cutoff, &result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (s *Store) compactKind(kind *pointKind, cutoff time.Time, result *CompactResult) error {
	ids, err := s.idsWithRowsBefore(kind, cutoff)
	if err != nil {
		return err
	}

	for _, id := range ids {
		n, blocks, err := s.compactID(kind, id, cutoff)
		if err != nil {
			return fmt.Errorf("compact %s: %w", id, err)
		}
		result.ArchivedPoints += n
		result.Blocks += blocks
		s.logger.Infof(providers.TypeArchive, "Archived %d points in %d blocks for %s", n, blocks, id)
	}
	return nil
}

func (s *Store) idsWithRowsBefore(kind *pointKind, cutoff time.Time) ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT DISTINCT %s FROM %s WHERE timestamp < ?`,
		kind.idColumn, kind.hotTable), cutoff.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("compaction scan: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("compaction scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) compactID(kind *pointKind, id string, cutoff time.Time) (int, int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	points, err := s.hotPointsBeforeTx(tx, kind, id, cutoff)
	if err != nil {
		return 0, 0, err
	}
	if len(points) == 0 {
		return 0, 0, nil
	}

	weeks := make(map[int64][]models.StatsPoint)
	for _, p := range points {
		weeks[weekStart(p.Timestamp).UnixNano()] = append(weeks[weekStart(p.Timestamp).UnixNano()], p)
	}

	for ws, weekPoints := range weeks {
		start := time.Unix(0, ws)
		end := start.AddDate(0, 0, 7)
		if err := s.writeBlockTx(tx, kind, id, start, end, weekPoints); err != nil {
			return 0, 0, err
		}
	}

	_, err = tx.Exec(fmt.Sprintf(`
		DELETE FROM %s WHERE %s = ? AND timestamp < ?`,
		kind.hotTable, kind.idColumn), id, cutoff.UnixNano())
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return len(points), len(weeks), nil
}

func (s *Store) hotPointsBeforeTx(tx *sql.Tx, kind *pointKind, id string, cutoff time.Time) ([]models.StatsPoint, error) {
	rows, err := tx.Query(fmt.Sprintf(`
		SELECT timestamp, %s, %s, %s FROM %s
		WHERE %s = ? AND timestamp < ?
		ORDER BY timestamp ASC`,
		kind.counterCols[0], kind.counterCols[1], kind.counterCols[2],
		kind.hotTable, kind.idColumn),
		id, cutoff.UnixNano())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.StatsPoint
	for rows.Next() {
		var ts int64
		var vals [3]int64
		if err := rows.Scan(&ts, &vals[0], &vals[1], &vals[2]); err != nil {
			return nil, err
		}
		p := models.StatsPoint{ID: id, Timestamp: time.Unix(0, ts).UTC()}
		kind.setCounters(&p, vals)
		points = append(points, p)
	}
	return points, rows.Err()
}

// writeBlockTx inserts one weekly block. Blocks are immutable once
// written, with one exception: when a week straddled a previous
// compaction cutoff its block already exists, and the new points are
// merged into it instead of being dropped.
func (s *Store) writeBlockTx(tx *sql.Tx, kind *pointKind, id string, start, end time.Time, points []models.StatsPoint) error {
	var existing []byte
	err := tx.QueryRow(fmt.Sprintf(`
		SELECT data FROM %s WHERE %s = ? AND period_start = ? AND period_end = ?`,
		kind.archiveTable, kind.idColumn),
		id, start.UnixNano(), end.UnixNano()).Scan(&existing)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	if existing != nil {
		prior, err := s.decodeBlock(existing)
		if err != nil {
			return fmt.Errorf("merge into existing block: %w", err)
		}
		points = mergePoints(prior, points)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	blob, err := s.encodeBlock(points)
	if err != nil {
		return err
	}

	_, err = tx.Exec(fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (%s, period_start, period_end, data, point_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		kind.archiveTable, kind.idColumn),
		id, start.UnixNano(), end.UnixNano(), blob, len(points), s.now().UnixNano())
	return err
}

func mergePoints(prior, incoming []models.StatsPoint) []models.StatsPoint {
	seen := make(map[int64]struct{}, len(prior))
	merged := prior
	for _, p := range prior {
		seen[p.Timestamp.UnixNano()] = struct{}{}
	}
	for _, p := range incoming {
		if _, ok := seen[p.Timestamp.UnixNano()]; !ok {
			merged = append(merged, p)
		}
	}
	return merged
}

// encodeBlock serializes points as a JSON array and deflates it. The
// blob format is stable: deflate-wrapped UTF-8 JSON, one array per
// {id, ISO week}.
func (s *Store) encodeBlock(points []models.StatsPoint) ([]byte, error) {
	jsonData, err := json.Marshal(points)
	if err != nil {
		return nil, err
	}
	return s.compressor.Compress(jsonData)
}

func (s *Store) decodeBlock(blob []byte) ([]models.StatsPoint, error) {
	jsonData, err := s.compressor.Decompress(blob)
	if err != nil {
		return nil, err
	}
	var points []models.StatsPoint
	if err := json.Unmarshal(jsonData, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// Purge applies retention rules: hot samples, archive blocks and
// acknowledged alerts age out independently.
func (s *Store) Purge(rules structures.RetentionConfig) (PurgeResult, error) {
	var result PurgeResult
	now := s.now()

	if rules.HotDays > 0 {
		cutoff := now.AddDate(0, 0, -rules.HotDays).UnixNano()
		for _, table := range []string{"channel_stats_hot", "video_stats_hot"} {
			res, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE timestamp < ?`, table), cutoff)
			if err != nil {
				return result, fmt.Errorf("purge %s: %w", table, err)
			}
			n, _ := res.RowsAffected()
			result.HotPoints += n
		}
	}

	if rules.ArchiveDays > 0 {
		cutoff := now.AddDate(0, 0, -rules.ArchiveDays).UnixNano()
		for _, table := range []string{"channel_stats_archive", "video_stats_archive"} {
			res, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE period_end < ?`, table), cutoff)
			if err != nil {
				return result, fmt.Errorf("purge %s: %w", table, err)
			}
			n, _ := res.RowsAffected()
			result.ArchiveBlocks += n
		}
	}

	if rules.AckedAlertDays > 0 {
		cutoff := now.AddDate(0, 0, -rules.AckedAlertDays).UnixNano()
		res, err := s.db.Exec(`DELETE FROM alerts WHERE acknowledged = 1 AND triggered_at < ?`, cutoff)
		if err != nil {
			return result, fmt.Errorf("purge alerts: %w", err)
		}
		result.AckedAlerts, _ = res.RowsAffected()
	}

	return result, nil
}
