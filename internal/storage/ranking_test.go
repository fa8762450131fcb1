package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supertube/internal/models"
)

func seedVideoGrowth(t *testing.T, store *Store, base time.Time) {
	t.Helper()

	videos := []models.Video{
		testVideo("slow", "UC123", 100),
		testVideo("fast", "UC123", 100),
		testVideo("single", "UC123", 100),
	}
	require.NoError(t, store.SaveVideos(videos))

	for _, day := range []int{5, 1} {
		store.now = func() time.Time { return base.AddDate(0, 0, -day) }

		growth := int64((5 - day) * 10)
		require.NoError(t, store.UpsertVideoPoints([]models.Video{
			{ID: "slow", ChannelID: "UC123", ViewCount: 100 + growth},
			{ID: "fast", ChannelID: "UC123", ViewCount: 100 + growth*100},
		}))
	}

	// One lone sample, not rankable.
	store.now = func() time.Time { return base.AddDate(0, 0, -1) }
	require.NoError(t, store.UpsertVideoPoints([]models.Video{
		{ID: "single", ChannelID: "UC123", ViewCount: 100},
	}))

	store.now = func() time.Time { return base }
}

func TestStore_VideosByGrowth_Descending(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.Local)
	seedVideoGrowth(t, store, base)

	ranked, err := store.VideosByGrowth("UC123", 7, models.MetricViews, 10, false)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "fast", ranked[0].Video.ID)
	assert.Equal(t, int64(4000), ranked[0].Growth)
	assert.Equal(t, "slow", ranked[1].Video.ID)
	assert.Equal(t, int64(40), ranked[1].Growth)
}

func TestStore_VideosByGrowth_Ascending(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.Local)
	seedVideoGrowth(t, store, base)

	ranked, err := store.VideosByGrowth("UC123", 7, models.MetricViews, 10, true)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "slow", ranked[0].Video.ID)
}

func TestStore_VideosByGrowth_Limit(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.Local)
	seedVideoGrowth(t, store, base)

	ranked, err := store.VideosByGrowth("UC123", 7, models.MetricViews, 1, false)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "fast", ranked[0].Video.ID)
}
