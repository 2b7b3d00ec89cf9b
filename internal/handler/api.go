package handler

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/streamlog/internal/config"
	"github.com/streamlog/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	streams      streamProvider
	stats        statsProvider
	weekStart    time.Weekday
	previewLimit int
	logger       zerolog.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(streams *service.StreamService, stats *service.StatsService, conf config.AppConfig, logger zerolog.Logger) *API {
	return &API{
		streams:      streams,
		stats:        stats,
		weekStart:    conf.WeekStart(),
		previewLimit: service.DefaultPreviewLimit,
		logger:       logger,
	}
}
