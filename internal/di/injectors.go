//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"supertube/internal"
	"supertube/internal/controllers"
	"supertube/internal/providers"
	"supertube/internal/quota"
	"supertube/internal/scheduler"
	"supertube/internal/services"
	"supertube/internal/storage"
	"supertube/internal/structures"
	"supertube/internal/youtube"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewDeflateCompressor,
		storage.NewStore,
		wire.Bind(new(services.StoreInterface), new(*storage.Store)),

		youtube.NewClient,
		wire.Bind(new(youtube.ClientInterface), new(*youtube.Client)),

		quota.NewTracker,
		services.NewChangeDetector,
		services.NewAlertManager,
		services.NewRefreshService,
		wire.Bind(new(services.RefreshServiceInterface), new(*services.RefreshService)),

		scheduler.NewScheduler,
		scheduler.NewMaintenance,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
