//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
	"github.com/streamlog/internal/cache"
	"github.com/streamlog/internal/config"
	"github.com/streamlog/internal/handler"
	"github.com/streamlog/internal/logging"
	"github.com/streamlog/internal/metrics"
	"github.com/streamlog/internal/router"
	"github.com/streamlog/internal/server"
	"github.com/streamlog/internal/service"
)

func InitApp(conf config.AppConfig) (*server.App, func(), error) {
	wire.Build(
		logging.New,
		metrics.New,
		cache.New,
		provideBackend,
		provideStreamService,
		service.NewStatsService,
		handler.NewAPI,
		router.SetupRouter,
		server.New,
	)

	return nil, nil, nil
}
