package handler

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/streamlog/internal/db"
)

// GetStats 返回仪表盘统计数据
func (a *API) GetStats(c *gin.Context) {
	stats, err := a.stats.Overview(c.Request.Context())
	if err != nil {
		a.handleStreamError(c, err, "计算统计信息失败")
		return
	}

	// 只列出有记录的平台，按条数降序；条数相同时保持平台定义顺序
	ranked := slices.Clone(db.Platforms)
	ranked = slices.DeleteFunc(ranked, func(p db.Platform) bool {
		return stats.PlatformDistribution[p] == 0
	})
	slices.SortStableFunc(ranked, func(a, b db.Platform) int {
		return stats.PlatformDistribution[b] - stats.PlatformDistribution[a]
	})

	platforms := make([]gin.H, 0, len(ranked))
	for _, p := range ranked {
		platforms = append(platforms, gin.H{
			"name":  p,
			"color": p.Color(),
			"count": stats.PlatformDistribution[p],
		})
	}

	daily := make([]gin.H, 0, len(stats.DailyViewers))
	for _, point := range stats.DailyViewers {
		daily = append(daily, gin.H{"date": point.Date.String(), "viewers": point.Viewers})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_streams":         stats.TotalStreams,
		"total_hours":           stats.TotalHours,
		"total_unique_days":     stats.TotalUniqueDays,
		"platform_distribution": stats.PlatformDistribution,
		"platforms":             platforms,
		"daily_viewers":         daily,
	})
}
