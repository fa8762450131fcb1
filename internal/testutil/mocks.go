package testutil

import (
	"context"
	"sync"
	"time"

	"supertube/internal/models"
	"supertube/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// LevelCount returns how many entries were recorded at a level.
func (m *MockLogger) LevelCount(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockClient implements youtube.ClientInterface with canned responses.
type MockClient struct {
	mu sync.Mutex

	Channel     *models.Channel
	Videos      []models.Video
	StatsErr    error
	StatsErrFor map[string]error
	VideosErr   error

	StatsCalls  int
	VideosCalls int
}

func (m *MockClient) ChannelStats(_ context.Context, channelID string) (*models.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatsCalls++
	if err := m.StatsErrFor[channelID]; err != nil {
		return nil, err
	}
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	ch := *m.Channel
	ch.ID = channelID
	return &ch, nil
}

func (m *MockClient) ChannelVideos(_ context.Context, _ string, maxResults int) ([]models.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VideosCalls++
	if m.VideosErr != nil {
		return nil, m.VideosErr
	}
	if len(m.Videos) > maxResults {
		return m.Videos[:maxResults], nil
	}
	return m.Videos, nil
}

// MockCache implements providers.CacheProviderInterface backed by a map.
type MockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = value
}

// MockMetrics implements providers.MetricsProviderInterface and counts
// calls by name.
type MockMetrics struct {
	mu     sync.Mutex
	Counts map[string]int
}

func (m *MockMetrics) inc(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Counts == nil {
		m.Counts = make(map[string]int)
	}
	m.Counts[name]++
}

func (m *MockMetrics) Count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Counts[name]
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int)         { m.inc("requests:" + endpoint) }
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    { m.inc("cache_hits") }
func (m *MockMetrics) IncCacheMisses()                                  { m.inc("cache_misses") }
func (m *MockMetrics) IncRefreshTotal(result string)                    { m.inc("refresh:" + result) }
func (m *MockMetrics) IncProviderErrors(op string)                      { m.inc("provider_errors:" + op) }
func (m *MockMetrics) IncChangesDetected(kind string)                   { m.inc("changes:" + kind) }
func (m *MockMetrics) SetQuotaUsage(_ float64)                          {}
func (m *MockMetrics) ObserveCompactionDuration(_ time.Duration)        {}
func (m *MockMetrics) AddArchivedPoints(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Counts == nil {
		m.Counts = make(map[string]int)
	}
	m.Counts["archived_points"] += count
}

// BrokenCompressor implements storage.CompressorInterface and fails on
// demand, for exercising decode error paths.
type BrokenCompressor struct {
	FailCompress   bool
	FailDecompress bool
	Err            error
}

func (b *BrokenCompressor) Compress(data []byte) ([]byte, error) {
	if b.FailCompress {
		return nil, b.Err
	}
	return data, nil
}

func (b *BrokenCompressor) Decompress(data []byte) ([]byte, error) {
	if b.FailDecompress {
		return nil, b.Err
	}
	return data, nil
}
