package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/streamlog/internal/config"
	"github.com/streamlog/internal/handler"
	"github.com/streamlog/internal/logging"
	"github.com/streamlog/internal/metrics"
)

const sessionName = "streamlog_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(conf config.AppConfig, api *handler.API, m metrics.Provider, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(logging.GinLogger(logger), gin.Recovery(), metrics.Middleware(m))

	// 配置会话中间件
	store := cookie.NewStore([]byte(conf.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	if m.Enabled() {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/platforms", api.ListPlatforms)

		apiGroup.GET("/streams", api.ListStreams)
		apiGroup.POST("/streams", api.CreateStream)
		apiGroup.GET("/streams/:id", api.GetStream)
		apiGroup.PUT("/streams/:id", api.UpdateStream)
		apiGroup.DELETE("/streams/:id", api.DeleteStream)

		apiGroup.GET("/days/:date", api.GetDay)
		apiGroup.GET("/stats", api.GetStats)

		apiGroup.GET("/calendar", api.GetCalendar)
		apiGroup.POST("/calendar/prev", api.PrevMonth)
		apiGroup.POST("/calendar/next", api.NextMonth)
		apiGroup.POST("/calendar/today", api.TodayMonth)
	}

	return r
}
