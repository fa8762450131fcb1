package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"supertube/internal/models"
	"supertube/internal/providers"
	"supertube/internal/scheduler"
	"supertube/internal/services"
	"supertube/internal/storage"
)

const (
	defaultHistoryDays = 30
	defaultVideoLimit  = 20
	defaultAlertLimit  = 50
)

type ApiController struct {
	logger    providers.Logger
	store     *storage.Store
	refresher services.RefreshServiceInterface
	sched     *scheduler.Scheduler
	cache     providers.CacheProviderInterface
}

func NewApiController(
	logger providers.Logger,
	store *storage.Store,
	refresher services.RefreshServiceInterface,
	sched *scheduler.Scheduler,
	cache providers.CacheProviderInterface,
) *ApiController {
	return &ApiController{
		logger:    logger,
		store:     store,
		refresher: refresher,
		sched:     sched,
		cache:     cache,
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetChannels(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "channels", func() (any, error) {
		return ac.store.Channels()
	})
}

func (ac *ApiController) GetChannel(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.serveFromCacheOrCompute(w, "channel:"+id, func() (any, error) {
		ch, err := ac.store.GetChannel(id)
		if err != nil {
			return nil, err
		}
		if ch == nil {
			return nil, storage.ErrNotFound
		}
		return ch, nil
	})
}

func (ac *ApiController) GetVideos(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	limit := queryInt(r, "limit", defaultVideoLimit)
	ac.serveFromCacheOrCompute(w, fmt.Sprintf("videos:%s:%d", id, limit), func() (any, error) {
		return ac.store.ChannelVideos(id, limit)
	})
}

func (ac *ApiController) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	days := queryInt(r, "days", defaultHistoryDays)
	ac.serveFromCacheOrCompute(w, fmt.Sprintf("history:%s:%d", id, days), func() (any, error) {
		return ac.store.ChannelHistory(id, days)
	})
}

func (ac *ApiController) GetVideoHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	days := queryInt(r, "days", defaultHistoryDays)
	ac.serveFromCacheOrCompute(w, fmt.Sprintf("vhistory:%s:%d", id, days), func() (any, error) {
		return ac.store.VideoHistory(id, days)
	})
}

func (ac *ApiController) GetTrend(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	days := queryInt(r, "days", defaultHistoryDays)
	ac.serveFromCacheOrCompute(w, fmt.Sprintf("trend:%s:%d", id, days), func() (any, error) {
		history, err := ac.store.ChannelHistory(id, days)
		if err != nil {
			return nil, err
		}
		return models.CalculateTrend(id, history, days), nil
	})
}

func (ac *ApiController) GetProjections(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	days := queryInt(r, "days", 90)
	ac.serveFromCacheOrCompute(w, fmt.Sprintf("projections:%s:%d", id, days), func() (any, error) {
		history, err := ac.store.ChannelHistory(id, days)
		if err != nil {
			return nil, err
		}
		predictor := services.NewGrowthPredictor(history)

		projections := make(map[string]*models.GrowthProjection)
		for _, metric := range []models.Metric{models.MetricSubscribers, models.MetricViews} {
			p, err := predictor.Project(metric)
			if err != nil {
				continue
			}
			projections[metric.String()] = p
		}
		return projections, nil
	})
}

func (ac *ApiController) GetMilestones(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	days := queryInt(r, "days", 90)
	ac.serveFromCacheOrCompute(w, fmt.Sprintf("milestones:%s:%d", id, days), func() (any, error) {
		history, err := ac.store.ChannelHistory(id, days)
		if err != nil {
			return nil, err
		}
		return services.NewGrowthPredictor(history).CommonMilestones()
	})
}

func (ac *ApiController) GetTopVideos(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	metric, err := models.ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		metric = models.MetricViews
	}
	days := queryInt(r, "days", 7)
	limit := queryInt(r, "limit", 10)
	ascending := r.URL.Query().Get("order") == "asc"

	ac.serveFromCacheOrCompute(w, fmt.Sprintf("top:%s:%d:%s:%d:%t", id, days, metric, limit, ascending), func() (any, error) {
		return ac.store.VideosByGrowth(id, days, metric, limit, ascending)
	})
}

func (ac *ApiController) GetAlerts(w http.ResponseWriter, r *http.Request) {
	onlyUnacked := r.URL.Query().Get("unacked") == "true"
	limit := queryInt(r, "limit", defaultAlertLimit)

	// Alerts are not cached: acknowledgement must be visible at once.
	alerts, err := ac.store.Alerts(onlyUnacked, limit)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (ac *ApiController) GetSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.sched.Status())
}

func (ac *ApiController) GetQuota(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.refresher.Quota().Snapshot())
}

// Refresh triggers a synchronous refresh of one channel, or of all
// channels when no id is given.
func (ac *ApiController) Refresh(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	if id := r.URL.Query().Get("id"); id != "" {
		result, err := ac.refresher.RefreshChannel(r.Context(), id, force)
		if err != nil {
			if errors.Is(err, services.ErrQuotaExceeded) {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			ac.logger.Errorf(providers.TypePost, "Manual refresh of %s failed: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	results := ac.refresher.RefreshAll(r.Context(), force)
	writeJSON(w, http.StatusOK, results)
}

func (ac *ApiController) AckAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := ac.store.AcknowledgeAlert(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) EnableWatch(w http.ResponseWriter, r *http.Request) {
	ac.sched.EnableWatchMode(r.URL.Query().Get("id"))
	writeJSON(w, http.StatusOK, ac.sched.Status())
}

func (ac *ApiController) DisableWatch(w http.ResponseWriter, r *http.Request) {
	ac.sched.DisableWatchMode()
	writeJSON(w, http.StatusOK, ac.sched.Status())
}
