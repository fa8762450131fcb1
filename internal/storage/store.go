package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"supertube/internal/providers"
	"supertube/internal/structures"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

// Store is the tiered metrics store. Latest-state snapshots live in the
// channels/videos tables, daily samples in the *_stats_hot tables, and
// compacted weekly history in the *_stats_archive tables. Reads merge
// hot and archived data transparently.
type Store struct {
	db         *sql.DB
	compressor CompressorInterface
	logger     providers.Logger
	now        func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS channels (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	custom_url TEXT,
	description TEXT,
	subscriber_count INTEGER NOT NULL,
	view_count INTEGER NOT NULL,
	video_count INTEGER NOT NULL,
	published_at INTEGER NOT NULL,
	thumbnail_url TEXT,
	last_updated INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS videos (
	id TEXT PRIMARY KEY,
	channel_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	published_at INTEGER NOT NULL,
	view_count INTEGER NOT NULL,
	like_count INTEGER NOT NULL,
	comment_count INTEGER NOT NULL,
	duration TEXT,
	thumbnail_url TEXT,
	last_updated INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_videos_channel ON videos(channel_id, published_at);

CREATE TABLE IF NOT EXISTS channel_stats_hot (
	channel_id TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	subscriber_count INTEGER NOT NULL,
	view_count INTEGER NOT NULL,
	video_count INTEGER NOT NULL,
	PRIMARY KEY (channel_id, timestamp)
);

CREATE TABLE IF NOT EXISTS video_stats_hot (
	video_id TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	view_count INTEGER NOT NULL,
	like_count INTEGER NOT NULL,
	comment_count INTEGER NOT NULL,
	PRIMARY KEY (video_id, timestamp)
);

CREATE TABLE IF NOT EXISTS channel_stats_archive (
	channel_id TEXT NOT NULL,
	period_start INTEGER NOT NULL,
	period_end INTEGER NOT NULL,
	data BLOB NOT NULL,
	point_count INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (channel_id, period_start, period_end)
);

CREATE TABLE IF NOT EXISTS video_stats_archive (
	video_id TEXT NOT NULL,
	period_start INTEGER NOT NULL,
	period_end INTEGER NOT NULL,
	data BLOB NOT NULL,
	point_count INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (video_id, period_start, period_end)
);

CREATE TABLE IF NOT EXISTS alerts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	channel_id TEXT NOT NULL,
	video_id TEXT,
	metric TEXT NOT NULL,
	threshold_value REAL NOT NULL,
	actual_value REAL NOT NULL,
	alert_type TEXT NOT NULL,
	message TEXT NOT NULL,
	triggered_at INTEGER NOT NULL,
	acknowledged INTEGER NOT NULL DEFAULT 0
);
`

func NewStore(conf *structures.Config, compressor CompressorInterface, logger providers.Logger) (*Store, error) {
	return OpenStore(conf.Storage.Path, compressor, logger)
}

func OpenStore(path string, compressor CompressorInterface, logger providers.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("cannot create data directory: %w", err)
	}

	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot migrate schema: %w", err)
	}

	logger.Infof(providers.TypeApp, "Store opened at %s", path)

	return &Store{
		db:         db,
		compressor: compressor,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// localDayBounds returns the UTC instants of local midnight before and
// after t. The local offset is resolved per call on purpose: around DST
// transitions a day may be double-bucketed or skipped, which is a known
// and accepted edge case of same-day sampling.
func localDayBounds(t time.Time) (time.Time, time.Time) {
	local := t.Local()
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// weekStart returns local midnight of the Monday of t's ISO week.
func weekStart(t time.Time) time.Time {
	local := t.Local()
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
