package scheduler

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"supertube/internal/providers"
	"supertube/internal/storage"
	"supertube/internal/structures"
)

// Maintenance runs periodic storage upkeep: compacting aged hot samples
// into archive blocks and purging data past retention.
type Maintenance struct {
	conf    *structures.Config
	store   *storage.Store
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	cron  *gron.Cron
	opsMu sync.Mutex
}

func NewMaintenance(conf *structures.Config, store *storage.Store, logger providers.Logger, metrics providers.MetricsProviderInterface) *Maintenance {
	return &Maintenance{
		conf:    conf,
		store:   store,
		logger:  logger,
		metrics: metrics,
		cron:    gron.New(),
	}
}

func (m *Maintenance) Start() {
	m.cron.AddFunc(gron.Every(m.conf.Archive.Interval), func() {
		m.RunNow()
	})
	m.cron.Start()
	m.logger.Infof(providers.TypeArchive, "Maintenance scheduled every %s", m.conf.Archive.Interval)
}

func (m *Maintenance) Stop() {
	m.cron.Stop()
}

// RunNow executes one compaction and purge pass. Concurrent invocations
// serialize on the ops mutex so manual triggers never overlap the cron.
func (m *Maintenance) RunNow() {
	m.opsMu.Lock()
	defer m.opsMu.Unlock()

	start := time.Now()
	compacted, err := m.store.Compact(m.conf.Archive.AfterDays)
	m.metrics.ObserveCompactionDuration(time.Since(start))
	if err != nil {
		m.logger.Errorf(providers.TypeArchive, "Compaction failed: %v", err)
	} else {
		m.metrics.AddArchivedPoints(compacted.ArchivedPoints)
		m.logger.Infof(providers.TypeArchive, "Compaction done: %d points in %d blocks (%s)",
			compacted.ArchivedPoints, compacted.Blocks, time.Since(start).Round(time.Millisecond))
	}

	purged, err := m.store.Purge(m.conf.Archive.Retention)
	if err != nil {
		m.logger.Errorf(providers.TypeArchive, "Retention purge failed: %v", err)
		return
	}
	if purged.HotPoints > 0 || purged.ArchiveBlocks > 0 || purged.AckedAlerts > 0 {
		m.logger.Infof(providers.TypeArchive, "Purged %d hot points, %d archive blocks, %d acked alerts",
			purged.HotPoints, purged.ArchiveBlocks, purged.AckedAlerts)
	}
}
