package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"supertube/internal/models"
	"supertube/internal/structures"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// ClientInterface is the provider surface the refresh pipeline needs.
type ClientInterface interface {
	ChannelStats(ctx context.Context, channelID string) (*models.Channel, error)
	ChannelVideos(ctx context.Context, channelID string, maxResults int) ([]models.Video, error)
}

// ProviderError wraps a failed provider call with the operation and, for
// HTTP-level failures, the status code.
type ProviderError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Client is a thin API-key client for the YouTube Data API v3.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	now     func() time.Time
}

func NewClient(conf *structures.Config) *Client {
	baseURL := conf.Provider.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := conf.Provider.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  conf.Provider.APIKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

type channelListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string    `json:"title"`
			Description string    `json:"description"`
			CustomURL   string    `json:"customUrl"`
			PublishedAt time.Time `json:"publishedAt"`
			Thumbnails  struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			ViewCount       string `json:"viewCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	Items []struct {
		Snippet struct {
			ResourceID struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			ChannelID   string    `json:"channelId"`
			Title       string    `json:"title"`
			Description string    `json:"description"`
			PublishedAt time.Time `json:"publishedAt"`
			Thumbnails  struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// ChannelStats fetches the current snapshot of one channel.
func (c *Client) ChannelStats(ctx context.Context, channelID string) (*models.Channel, error) {
	const op = "channel_stats"

	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", channelID)

	var resp channelListResponse
	if err := c.get(ctx, op, "/channels", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, &ProviderError{Op: op, Err: fmt.Errorf("channel %s not found", channelID)}
	}

	item := resp.Items[0]
	return &models.Channel{
		ID:              item.ID,
		Name:            item.Snippet.Title,
		CustomURL:       item.Snippet.CustomURL,
		Description:     item.Snippet.Description,
		SubscriberCount: parseCount(item.Statistics.SubscriberCount),
		ViewCount:       parseCount(item.Statistics.ViewCount),
		VideoCount:      parseCount(item.Statistics.VideoCount),
		PublishedAt:     item.Snippet.PublishedAt,
		ThumbnailURL:    item.Snippet.Thumbnails.Default.URL,
		LastUpdated:     c.now().UTC(),
	}, nil
}

// ChannelVideos fetches the channel's most recent uploads with their
// statistics. The uploads playlist id is derived from the channel id,
// which avoids a 100-unit search call.
func (c *Client) ChannelVideos(ctx context.Context, channelID string, maxResults int) ([]models.Video, error) {
	const op = "channel_videos"

	if len(channelID) < 2 {
		return nil, &ProviderError{Op: op, Err: fmt.Errorf("malformed channel id %q", channelID)}
	}
	uploadsPlaylist := "UU" + channelID[2:]

	ids, err := c.playlistVideoIDs(ctx, op, uploadsPlaylist, maxResults)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var videos []models.Video
	for start := 0; start < len(ids); start += 50 {
		end := start + 50
		if end > len(ids) {
			end = len(ids)
		}
		batch, err := c.videoDetails(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		videos = append(videos, batch...)
	}
	return videos, nil
}

func (c *Client) playlistVideoIDs(ctx context.Context, op, playlistID string, maxResults int) ([]string, error) {
	var ids []string
	pageToken := ""

	for len(ids) < maxResults {
		pageSize := maxResults - len(ids)
		if pageSize > 50 {
			pageSize = 50
		}

		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("playlistId", playlistID)
		params.Set("maxResults", strconv.Itoa(pageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp playlistItemsResponse
		if err := c.get(ctx, op, "/playlistItems", params, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Items {
			ids = append(ids, item.Snippet.ResourceID.VideoID)
		}
		if resp.NextPageToken == "" || len(resp.Items) == 0 {
			break
		}
		pageToken = resp.NextPageToken
	}
	return ids, nil
}

func (c *Client) videoDetails(ctx context.Context, ids []string) ([]models.Video, error) {
	const op = "video_details"

	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", strings.Join(ids, ","))

	var resp videoListResponse
	if err := c.get(ctx, op, "/videos", params, &resp); err != nil {
		return nil, err
	}

	videos := make([]models.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		videos = append(videos, models.Video{
			ID:           item.ID,
			ChannelID:    item.Snippet.ChannelID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			PublishedAt:  item.Snippet.PublishedAt,
			ViewCount:    parseCount(item.Statistics.ViewCount),
			LikeCount:    parseCount(item.Statistics.LikeCount),
			CommentCount: parseCount(item.Statistics.CommentCount),
			Duration:     item.ContentDetails.Duration,
			ThumbnailURL: item.Snippet.Thumbnails.Medium.URL,
			LastUpdated:  c.now().UTC(),
		})
	}
	return videos, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, out interface{}) error {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return &ProviderError{Op: op, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ProviderError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// parseCount tolerates missing statistics fields, which the API omits
// for channels that hide subscriber counts or videos with disabled
// likes.
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
