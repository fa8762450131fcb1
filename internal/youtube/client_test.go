package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supertube/internal/structures"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&structures.Config{
		Provider: structures.ProviderConfig{
			APIKey:  "test-key",
			BaseURL: baseURL,
			Timeout: 5 * time.Second,
		},
	})
}

func TestClient_ChannelStats(t *testing.T) {
	var gotKey, gotParts string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/channels", r.URL.Path)
		gotKey = r.URL.Query().Get("key")
		gotParts = r.URL.Query().Get("part")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [{
				"id": "UC123",
				"snippet": {
					"title": "Test Channel",
					"customUrl": "@test",
					"publishedAt": "2020-01-15T00:00:00Z",
					"thumbnails": {"default": {"url": "https://example.com/t.jpg"}}
				},
				"statistics": {
					"subscriberCount": "1500",
					"viewCount": "90000",
					"videoCount": "42"
				}
			}]
		}`))
	}))
	defer srv.Close()

	ch, err := newTestClient(srv.URL).ChannelStats(context.Background(), "UC123")
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "snippet,statistics", gotParts)
	assert.Equal(t, "UC123", ch.ID)
	assert.Equal(t, "Test Channel", ch.Name)
	assert.Equal(t, int64(1500), ch.SubscriberCount)
	assert.Equal(t, int64(90000), ch.ViewCount)
	assert.Equal(t, int64(42), ch.VideoCount)
	assert.False(t, ch.LastUpdated.IsZero())
}

func TestClient_ChannelStats_HiddenCounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"id":"UC123","snippet":{"title":"T"},"statistics":{"viewCount":"10"}}]}`))
	}))
	defer srv.Close()

	ch, err := newTestClient(srv.URL).ChannelStats(context.Background(), "UC123")
	require.NoError(t, err)
	assert.Equal(t, int64(0), ch.SubscriberCount)
	assert.Equal(t, int64(10), ch.ViewCount)
}

func TestClient_ChannelStats_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ChannelStats(context.Background(), "UCnope")
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "channel_stats", perr.Op)
}

func TestClient_ChannelStats_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"quotaExceeded"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ChannelStats(context.Background(), "UC123")
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusForbidden, perr.StatusCode)
	assert.Contains(t, perr.Error(), "quotaExceeded")
}

func TestClient_ChannelVideos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/playlistItems":
			// Uploads playlist id is derived from the channel id.
			assert.Equal(t, "UU123", r.URL.Query().Get("playlistId"))
			_, _ = w.Write([]byte(`{
				"items": [
					{"snippet": {"resourceId": {"videoId": "v1"}}},
					{"snippet": {"resourceId": {"videoId": "v2"}}}
				]
			}`))
		case "/videos":
			assert.Equal(t, "v1,v2", r.URL.Query().Get("id"))
			_, _ = w.Write([]byte(`{
				"items": [
					{
						"id": "v1",
						"snippet": {"channelId": "UC123", "title": "First", "publishedAt": "2024-06-01T12:00:00Z"},
						"contentDetails": {"duration": "PT5M30S"},
						"statistics": {"viewCount": "100", "likeCount": "10", "commentCount": "2"}
					},
					{
						"id": "v2",
						"snippet": {"channelId": "UC123", "title": "Second", "publishedAt": "2024-06-02T12:00:00Z"},
						"contentDetails": {"duration": "PT1M"},
						"statistics": {"viewCount": "200"}
					}
				]
			}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	videos, err := newTestClient(srv.URL).ChannelVideos(context.Background(), "UC123", 10)
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, "v1", videos[0].ID)
	assert.Equal(t, int64(100), videos[0].ViewCount)
	assert.Equal(t, "PT5M30S", videos[0].Duration)
	// Disabled likes come back as zero.
	assert.Equal(t, int64(0), videos[1].LikeCount)
}

func TestClient_ChannelVideos_EmptyPlaylist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	videos, err := newTestClient(srv.URL).ChannelVideos(context.Background(), "UC123", 10)
	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestClient_ChannelVideos_MalformedChannelID(t *testing.T) {
	_, err := newTestClient("http://localhost").ChannelVideos(context.Background(), "U", 10)
	require.Error(t, err)
}

func TestClient_ChannelVideos_Pagination(t *testing.T) {
	page := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/playlistItems":
			page++
			if r.URL.Query().Get("pageToken") == "" {
				_, _ = w.Write([]byte(`{"items":[{"snippet":{"resourceId":{"videoId":"v1"}}}],"nextPageToken":"p2"}`))
			} else {
				_, _ = w.Write([]byte(`{"items":[{"snippet":{"resourceId":{"videoId":"v2"}}}]}`))
			}
		case "/videos":
			_, _ = w.Write([]byte(`{"items":[]}`))
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	client.http = srv.Client()

	_, err := client.ChannelVideos(context.Background(), "UC123", 100)
	require.NoError(t, err)
	assert.Equal(t, 2, page)
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, int64(0), parseCount(""))
	assert.Equal(t, int64(0), parseCount("abc"))
	assert.Equal(t, int64(42), parseCount("42"))
}
