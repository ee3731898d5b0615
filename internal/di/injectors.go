//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"qrtrack/internal"
	"qrtrack/internal/controllers"
	"qrtrack/internal/providers"
	"qrtrack/internal/qrimage"
	"qrtrack/internal/services"
	"qrtrack/internal/store"
	"qrtrack/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewGeoProvider,

		store.NewStore,
		qrimage.NewZstdBlobCodec,
		qrimage.NewQRRenderer,

		services.NewLinkService,
		services.NewScanService,
		services.NewStatsService,

		controllers.NewApiController,
		controllers.NewRedirectController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
