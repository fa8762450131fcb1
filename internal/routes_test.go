package internal

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supertube/internal/controllers"
	"supertube/internal/quota"
	"supertube/internal/scheduler"
	"supertube/internal/services"
	"supertube/internal/storage"
	"supertube/internal/structures"
	"supertube/internal/testutil"
)

func routesTestController(t *testing.T) *controllers.ApiController {
	t.Helper()

	conf := &structures.Config{
		Refresh: structures.RefreshConfig{
			Interval:      time.Hour,
			WatchInterval: 5 * time.Minute,
			Quota: structures.QuotaConfig{
				DailyLimit:      10000,
				SafetyThreshold: 0.9,
			},
		},
		Storage: structures.StorageConfig{
			FreshnessWindow: 12 * time.Hour,
			MaxVideos:       50,
		},
	}

	store, err := storage.OpenStore(filepath.Join(t.TempDir(), "test.db"), storage.NewDeflateCompressor(), &testutil.MockLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := &testutil.MockLogger{}
	refresher := services.NewRefreshService(conf, store, &testutil.MockClient{},
		quota.NewTracker(conf), services.NewChangeDetector(),
		services.NewAlertManager(conf, logger), logger, &testutil.MockMetrics{})
	sched := scheduler.NewScheduler(conf, refresher, logger)

	return controllers.NewApiController(logger, store, refresher, sched, &testutil.MockCache{})
}

func TestInitRoutes_RegistersAllRoutes(t *testing.T) {
	router := InitRoutes(routesTestController(t), &structures.Config{})
	routes := router.GetRoutes()

	require.Len(t, routes, 16)

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}

	for _, expected := range []string{
		"/channels", "/channel", "/videos", "/history", "/videohistory",
		"/trend", "/projections", "/milestones", "/topvideos", "/alerts",
		"/scheduler", "/quota",
		"/refresh", "/alerts/ack", "/scheduler/watch", "/scheduler/unwatch",
	} {
		assert.Contains(t, urls, expected)
	}
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	router := InitRoutes(routesTestController(t), &structures.Config{})

	mux := http.NewServeMux()
	for _, r := range router.GetRoutes() {
		mux.Handle(r.Url, r.Handler)
	}

	// GET route rejects POST
	req := httptest.NewRequest(http.MethodPost, "/channels", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	// POST route rejects GET
	req = httptest.NewRequest(http.MethodGet, "/refresh", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
