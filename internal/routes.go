package internal

import (
	"net/http"
	"qrtrack/internal/controllers"
	"qrtrack/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController, redirectController *controllers.RedirectController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/api/generate", http.HandlerFunc(apiController.Generate))
	routers.Get("/api/qr-codes", http.HandlerFunc(apiController.ListLinks))
	routers.Delete("/api/qr-codes/{qrId}", http.HandlerFunc(apiController.DeleteLink))
	routers.Get("/api/stats/{qrId}", http.HandlerFunc(apiController.GetStats))
	routers.Get("/api/stats-global", http.HandlerFunc(apiController.GetGlobalStats))
	routers.Post("/api/log-scan", http.HandlerFunc(apiController.LogScan))
	routers.Post("/api/migrate-svg", http.HandlerFunc(apiController.MigrateSVG))
	routers.Get("/redirect/{qrId}", http.HandlerFunc(redirectController.Redirect))
	return routers
}
