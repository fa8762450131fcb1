package internal

import (
	"net/http"

	"supertube/internal/controllers"
	"supertube/internal/providers"
	"supertube/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/channels", http.HandlerFunc(apiController.GetChannels))
	routers.Get("/channel", http.HandlerFunc(apiController.GetChannel))
	routers.Get("/videos", http.HandlerFunc(apiController.GetVideos))
	routers.Get("/history", http.HandlerFunc(apiController.GetHistory))
	routers.Get("/videohistory", http.HandlerFunc(apiController.GetVideoHistory))
	routers.Get("/trend", http.HandlerFunc(apiController.GetTrend))
	routers.Get("/projections", http.HandlerFunc(apiController.GetProjections))
	routers.Get("/milestones", http.HandlerFunc(apiController.GetMilestones))
	routers.Get("/topvideos", http.HandlerFunc(apiController.GetTopVideos))
	routers.Get("/alerts", http.HandlerFunc(apiController.GetAlerts))
	routers.Get("/scheduler", http.HandlerFunc(apiController.GetSchedulerStatus))
	routers.Get("/quota", http.HandlerFunc(apiController.GetQuota))

	routers.Post("/refresh", http.HandlerFunc(apiController.Refresh))
	routers.Post("/alerts/ack", http.HandlerFunc(apiController.AckAlert))
	routers.Post("/scheduler/watch", http.HandlerFunc(apiController.EnableWatch))
	routers.Post("/scheduler/unwatch", http.HandlerFunc(apiController.DisableWatch))
	return routers
}
