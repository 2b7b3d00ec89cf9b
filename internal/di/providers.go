package di

import (
	"github.com/rs/zerolog"
	"github.com/streamlog/internal/config"
	"github.com/streamlog/internal/metrics"
	"github.com/streamlog/internal/service"
	"github.com/streamlog/internal/storage"
)

func provideBackend(conf config.AppConfig, m metrics.Provider, logger zerolog.Logger) (storage.Backend, func(), error) {
	backend, cleanup, err := storage.Open(conf, logger)
	if err != nil {
		return nil, nil, err
	}
	return storage.Instrument(backend, m), cleanup, nil
}

func provideStreamService(backend storage.Backend, logger zerolog.Logger) *service.StreamService {
	return service.NewStreamService(backend, logger.With().Str("component", "streams").Logger())
}
