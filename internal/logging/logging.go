// Package logging 构造服务统一使用的 zerolog 日志实例。
package logging

import (
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/streamlog/internal/config"
)

// New 根据配置创建日志实例，LogPretty 为真时输出便于阅读的控制台格式。
func New(conf config.AppConfig) (zerolog.Logger, error) {
	return NewWithWriter(conf, os.Stdout)
}

// NewWithWriter 与 New 相同，但允许指定输出目标。
func NewWithWriter(conf config.AppConfig, out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if conf.LogPretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("app", "streamlog").Logger(), nil
}

// GinLogger 替代 gin 默认的访问日志，按请求输出一条结构化记录。
func GinLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		}

		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
