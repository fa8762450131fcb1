package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supertube/internal/models"
	"supertube/internal/structures"
)

// seedDailyPoints writes one channel point per day, ending daysAgo=1
// before base.
func seedDailyPoints(t *testing.T, store *Store, channelID string, base time.Time, days int, subsAt func(day int) int64) {
	t.Helper()
	for i := days; i >= 1; i-- {
		day := days - i // 0 = oldest
		store.now = func() time.Time { return base.AddDate(0, 0, -i) }
		ch := testChannel(channelID)
		ch.SubscriberCount = subsAt(day)
		require.NoError(t, store.UpsertChannelPoint(ch))
	}
	store.now = func() time.Time { return base }
}

func TestStore_Compact_MovesOldPointsToArchive(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.Local)

	seedDailyPoints(t, store, "UC123", base, 21, func(day int) int64 {
		return 1000 + int64(day)*10
	})

	result, err := store.Compact(7)
	require.NoError(t, err)
	assert.Equal(t, 14, result.ArchivedPoints)
	assert.GreaterOrEqual(t, result.Blocks, 2)

	// Hot table keeps only the recent week.
	hot, err := store.hotPoints(&channelPoints, "UC123", base.AddDate(0, 0, -365))
	require.NoError(t, err)
	assert.Len(t, hot, 7)
}

func TestStore_History_MergesHotAndArchive(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.Local)

	seedDailyPoints(t, store, "UC123", base, 21, func(day int) int64 {
		return 1000 + int64(day)*10
	})

	_, err := store.Compact(7)
	require.NoError(t, err)

	history, err := store.ChannelHistory("UC123", 30)
	require.NoError(t, err)
	require.Len(t, history, 21)

	// Still strictly ascending with the original values intact.
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i-1].Timestamp.Before(history[i].Timestamp))
	}
	assert.Equal(t, int64(1000), history[0].Subscribers)
	assert.Equal(t, int64(1200), history[20].Subscribers)
}

func TestStore_Compact_Twice_MergesStraddlingWeek(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.Local)

	seedDailyPoints(t, store, "UC123", base, 21, func(day int) int64 {
		return 1000 + int64(day)
	})

	// Two passes with different cutoffs: the second re-touches the week
	// the first one split.
	_, err := store.Compact(10)
	require.NoError(t, err)
	_, err = store.Compact(3)
	require.NoError(t, err)

	history, err := store.ChannelHistory("UC123", 30)
	require.NoError(t, err)
	assert.Len(t, history, 21)
}

func TestStore_Compact_EverythingWithZeroCutoff(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.Local)

	seedDailyPoints(t, store, "UC123", base, 5, func(day int) int64 { return 100 })

	result, err := store.Compact(0)
	require.NoError(t, err)
	assert.Equal(t, 5, result.ArchivedPoints)

	hot, err := store.hotPoints(&channelPoints, "UC123", base.AddDate(0, 0, -365))
	require.NoError(t, err)
	assert.Empty(t, hot)

	history, err := store.ChannelHistory("UC123", 30)
	require.NoError(t, err)
	assert.Len(t, history, 5)
}

func TestStore_Compact_VideoPoints(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.Local)

	for i := 10; i >= 1; i-- {
		store.now = func() time.Time { return base.AddDate(0, 0, -i) }
		require.NoError(t, store.UpsertVideoPoints([]models.Video{testVideo("v1", "UC123", int64(1000-i))}))
	}
	store.now = func() time.Time { return base }

	_, err := store.Compact(0)
	require.NoError(t, err)

	history, err := store.VideoHistory("v1", 30)
	require.NoError(t, err)
	require.Len(t, history, 10)
	assert.Equal(t, int64(990), history[0].Views)
	assert.Equal(t, int64(999), history[9].Views)
}

func TestStore_ArchivedRead_CorruptBlockFailsLoudly(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.Local)
	store.now = func() time.Time { return base }

	_, err := store.db.Exec(`
		INSERT INTO channel_stats_archive
		(channel_id, period_start, period_end, data, point_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		"UC123",
		base.AddDate(0, 0, -14).UnixNano(), base.AddDate(0, 0, -7).UnixNano(),
		[]byte("not a deflate stream"), 3, base.UnixNano())
	require.NoError(t, err)

	_, err = store.ChannelHistory("UC123", 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive block")
}

func TestStore_Purge_RetentionRules(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.Local)

	seedDailyPoints(t, store, "UC123", base, 30, func(day int) int64 { return 100 })

	// Age the archive artificially: compact everything, then purge with
	// a short archive retention.
	_, err := store.Compact(20)
	require.NoError(t, err)

	result, err := store.Purge(structures.RetentionConfig{
		HotDays:     10,
		ArchiveDays: 15,
	})
	require.NoError(t, err)
	assert.Greater(t, result.HotPoints, int64(0))
	assert.Greater(t, result.ArchiveBlocks, int64(0))

	history, err := store.ChannelHistory("UC123", 60)
	require.NoError(t, err)
	assert.Less(t, len(history), 30)
}

func TestStore_Purge_AckedAlerts(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.Local)
	store.now = func() time.Time { return base }

	old := base.AddDate(0, 0, -60)
	require.NoError(t, store.SaveAlerts([]models.Alert{
		{ChannelID: "UC123", Metric: "subscribers", Message: "old", TriggeredAt: old},
		{ChannelID: "UC123", Metric: "subscribers", Message: "recent", TriggeredAt: base},
	}))

	alerts, err := store.Alerts(false, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	for _, a := range alerts {
		if a.Message == "old" {
			require.NoError(t, store.AcknowledgeAlert(a.ID))
		}
	}

	result, err := store.Purge(structures.RetentionConfig{AckedAlertDays: 30})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.AckedAlerts)

	alerts, err = store.Alerts(false, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "recent", alerts[0].Message)
}

func TestStore_AcknowledgeAlert_Missing(t *testing.T) {
	store := newTestStore(t)

	err := store.AcknowledgeAlert(9999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_Alerts_UnackedFilter(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.Local)

	require.NoError(t, store.SaveAlerts([]models.Alert{
		{ChannelID: "UC123", Metric: "views", Message: "a", TriggeredAt: base},
		{ChannelID: "UC123", Metric: "views", Message: "b", TriggeredAt: base.Add(time.Minute)},
	}))

	alerts, err := store.Alerts(true, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	// Newest first
	assert.Equal(t, "b", alerts[0].Message)

	require.NoError(t, store.AcknowledgeAlert(alerts[0].ID))

	alerts, err = store.Alerts(true, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "a", alerts[0].Message)
}
