package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supertube/internal/models"
	"supertube/internal/providers"
	"supertube/internal/quota"
	"supertube/internal/storage"
	"supertube/internal/structures"
	"supertube/internal/youtube"
)

// ErrQuotaExceeded is returned when a refresh would push quota usage
// past the safety threshold.
var ErrQuotaExceeded = errors.New("quota exceeded")

// StoreInterface is the slice of the store the refresh pipeline uses.
type StoreInterface interface {
	GetChannel(channelID string) (*models.Channel, error)
	SaveChannel(ch *models.Channel) error
	ChannelVideos(channelID string, limit int) ([]models.Video, error)
	SaveVideos(videos []models.Video) error
	UpsertChannelPoint(ch *models.Channel) error
	UpsertVideoPoints(videos []models.Video) error
	IsFresh(channelID string, window time.Duration) (bool, error)
	SaveAlerts(alerts []models.Alert) error
}

var _ StoreInterface = (*storage.Store)(nil)

// RefreshResult reports the outcome of one channel refresh.
type RefreshResult struct {
	ChannelID string            `json:"channel_id"`
	Refreshed bool              `json:"refreshed"`
	Skipped   string            `json:"skipped,omitempty"`
	Changes   *models.ChangeSet `json:"changes,omitempty"`
}

type RefreshServiceInterface interface {
	RefreshChannel(ctx context.Context, channelID string, force bool) (*RefreshResult, error)
	RefreshAll(ctx context.Context, force bool) []RefreshResult
	Quota() *quota.Tracker
}

// RefreshService fetches fresh provider data, records history samples,
// diffs against the previous snapshot and evaluates alert rules.
type RefreshService struct {
	conf     *structures.Config
	store    StoreInterface
	client   youtube.ClientInterface
	quota    *quota.Tracker
	detector *ChangeDetector
	alerts   *AlertManager
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
}

func NewRefreshService(
	conf *structures.Config,
	store StoreInterface,
	client youtube.ClientInterface,
	tracker *quota.Tracker,
	detector *ChangeDetector,
	alerts *AlertManager,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *RefreshService {
	return &RefreshService{
		conf:     conf,
		store:    store,
		client:   client,
		quota:    tracker,
		detector: detector,
		alerts:   alerts,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *RefreshService) Quota() *quota.Tracker {
	return s.quota
}

// RefreshChannel runs one refresh cycle for a channel. Without force, a
// channel whose stored snapshot is still inside the freshness window is
// skipped without spending quota.
func (s *RefreshService) RefreshChannel(ctx context.Context, channelID string, force bool) (*RefreshResult, error) {
	if !force {
		fresh, err := s.store.IsFresh(channelID, s.conf.Storage.FreshnessWindow)
		if err != nil {
			return nil, fmt.Errorf("freshness check %s: %w", channelID, err)
		}
		if fresh {
			s.metrics.IncRefreshTotal("skipped_fresh")
			return &RefreshResult{ChannelID: channelID, Skipped: "fresh"}, nil
		}
	}

	if !s.quota.CanProceed(quota.EstimateRefreshCost()) {
		s.metrics.IncRefreshTotal("skipped_quota")
		s.logger.Warnf(providers.TypeRefresh, "Refusing refresh of %s: %s", channelID, s.quota.StatusLine())
		return nil, fmt.Errorf("refresh %s: %w", channelID, ErrQuotaExceeded)
	}

	oldChannel, err := s.store.GetChannel(channelID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", channelID, err)
	}
	oldVideos, err := s.store.ChannelVideos(channelID, s.conf.Storage.MaxVideos)
	if err != nil {
		return nil, fmt.Errorf("load videos %s: %w", channelID, err)
	}

	newChannel, err := s.client.ChannelStats(ctx, channelID)
	if err != nil {
		s.metrics.IncRefreshTotal("error")
		s.metrics.IncProviderErrors(string(quota.OpChannelStats))
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	s.quota.RecordUsage(quota.OpChannelStats)

	newVideos, err := s.client.ChannelVideos(ctx, channelID, s.conf.Storage.MaxVideos)
	if err != nil {
		s.metrics.IncRefreshTotal("error")
		s.metrics.IncProviderErrors(string(quota.OpChannelVideos))
		return nil, fmt.Errorf("fetch videos %s: %w", channelID, err)
	}
	s.quota.RecordUsage(quota.OpChannelVideos)
	s.metrics.SetQuotaUsage(s.quota.UsagePercent())

	changes := s.detector.DetectChanges(oldChannel, newChannel, oldVideos, newVideos)

	if err := s.store.SaveChannel(newChannel); err != nil {
		return nil, fmt.Errorf("save channel %s: %w", channelID, err)
	}
	if err := s.store.SaveVideos(newVideos); err != nil {
		return nil, fmt.Errorf("save videos %s: %w", channelID, err)
	}
	if err := s.store.UpsertChannelPoint(newChannel); err != nil {
		return nil, fmt.Errorf("record channel point %s: %w", channelID, err)
	}
	if err := s.store.UpsertVideoPoints(newVideos); err != nil {
		return nil, fmt.Errorf("record video points %s: %w", channelID, err)
	}

	if fired := s.alerts.Evaluate(newChannel); len(fired) > 0 {
		if err := s.store.SaveAlerts(fired); err != nil {
			s.logger.Errorf(providers.TypeRefresh, "Cannot persist %d alerts for %s: %v", len(fired), channelID, err)
		}
	}

	if changes.HasChanges() {
		s.logger.Infof(providers.TypeRefresh, "Refreshed %s: %s", channelID, changes.Summary())
	} else {
		s.logger.Debugf(providers.TypeRefresh, "Refreshed %s: no changes", channelID)
	}
	s.countChangeKinds(changes)
	s.metrics.IncRefreshTotal("success")

	return &RefreshResult{ChannelID: channelID, Refreshed: true, Changes: changes}, nil
}

func (s *RefreshService) countChangeKinds(changes *models.ChangeSet) {
	for range changes.NewVideos {
		s.metrics.IncChangesDetected("new_video")
	}
	for range changes.UpdatedVideos {
		s.metrics.IncChangesDetected("video_updated")
	}
	if len(changes.ChannelDeltas) > 0 {
		s.metrics.IncChangesDetected("channel_stats")
	}
}

// RefreshAll refreshes every configured channel. One channel failing
// never blocks the rest; failures are reported in the result list as
// neither refreshed nor skipped.
func (s *RefreshService) RefreshAll(ctx context.Context, force bool) []RefreshResult {
	results := make([]RefreshResult, 0, len(s.conf.Channels))

	for _, entry := range s.conf.Channels {
		result, err := s.RefreshChannel(ctx, entry.ChannelID, force)
		if err != nil {
			s.logger.Errorf(providers.TypeRefresh, "Refresh failed for %s (%s): %v", entry.Name, entry.ChannelID, err)
			results = append(results, RefreshResult{ChannelID: entry.ChannelID, Skipped: "error"})
			continue
		}
		results = append(results, *result)
	}
	return results
}
