package service

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/streamlog/internal/cache"
	"github.com/streamlog/internal/db"
	"github.com/streamlog/internal/metrics"
)

// DailyViewersLimit 是图表保留的最近有记录日期数
const DailyViewersLimit = 30

// DailyViewers 是某一天所有直播观众数之和
type DailyViewers struct {
	Date    db.Date `json:"date"`
	Viewers float64 `json:"viewers"`
}

// GlobalStats 汇总全部记录的统计数据，按需计算不落盘
type GlobalStats struct {
	TotalStreams         int                 `json:"total_streams"`
	TotalHours           float64             `json:"total_hours"`
	TotalUniqueDays      int                 `json:"total_unique_days"`
	PlatformDistribution map[db.Platform]int `json:"platform_distribution"`
	DailyViewers         []DailyViewers      `json:"daily_viewers"`
}

// ComputeStats 是纯函数：统计条数、总时长、有记录的天数、各平台条数，
// 以及最近 30 个有记录日期的观众数（按日期升序）。
func ComputeStats(streams []db.Stream) GlobalStats {
	stats := GlobalStats{
		TotalStreams:         len(streams),
		PlatformDistribution: make(map[db.Platform]int, len(db.Platforms)),
		DailyViewers:         []DailyViewers{},
	}
	for _, p := range db.Platforms {
		stats.PlatformDistribution[p] = 0
	}

	var totalHours float64
	viewersByDate := make(map[db.Date]float64)
	for _, st := range streams {
		totalHours += st.Duration
		viewersByDate[st.Date] += st.Viewers
		if _, ok := stats.PlatformDistribution[st.Platform]; ok {
			stats.PlatformDistribution[st.Platform]++
		}
	}

	stats.TotalHours = roundHalfUp(totalHours, 2)
	stats.TotalUniqueDays = len(viewersByDate)

	dates := slices.SortedFunc(maps.Keys(viewersByDate), func(a, b db.Date) int {
		return a.Compare(b)
	})
	if len(dates) > DailyViewersLimit {
		dates = dates[len(dates)-DailyViewersLimit:]
	}
	for _, date := range dates {
		stats.DailyViewers = append(stats.DailyViewers, DailyViewers{Date: date, Viewers: viewersByDate[date]})
	}

	return stats
}

func roundHalfUp(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Floor(value*scale+0.5) / scale
}

type streamSource interface {
	List(ctx context.Context) ([]db.Stream, error)
	Revision() uint64
}

// StatsService 在 ComputeStats 外加一层按集合版本失效的缓存
type StatsService struct {
	streams streamSource
	cache   cache.Provider
	metrics metrics.Provider
	logger  zerolog.Logger
}

// NewStatsService 构造 StatsService
func NewStatsService(streams *StreamService, c cache.Provider, m metrics.Provider, logger zerolog.Logger) *StatsService {
	return &StatsService{streams: streams, cache: c, metrics: m, logger: logger}
}

// Overview 返回当前集合的统计数据，集合未变时直接读取缓存
func (s *StatsService) Overview(ctx context.Context) (GlobalStats, error) {
	key := fmt.Sprintf("stats:%d", s.streams.Revision())

	if cached, ok := s.cache.Get(key); ok {
		var stats GlobalStats
		if err := json.Unmarshal(cached, &stats); err == nil {
			s.metrics.IncCacheHits()
			return stats, nil
		}
		s.logger.Warn().Str("key", key).Msg("discarding undecodable cached stats")
	}
	s.metrics.IncCacheMisses()

	streams, err := s.streams.List(ctx)
	if err != nil {
		return GlobalStats{}, err
	}

	stats := ComputeStats(streams)
	s.metrics.SetStreamsTotal(stats.TotalStreams)

	if encoded, err := json.Marshal(stats); err == nil {
		s.cache.Set(key, encoded)
	}

	return stats, nil
}
