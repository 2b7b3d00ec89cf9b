package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/streamlog/internal/config"
	"github.com/streamlog/internal/service"
)

const shutdownTimeout = 5 * time.Second

// App 持有 HTTP 服务及启动时需要初始化的记录存储
type App struct {
	Server  *http.Server
	streams *service.StreamService
	logger  zerolog.Logger
}

// New 组装 HTTP 服务
func New(conf config.AppConfig, engine *gin.Engine, streams *service.StreamService, logger zerolog.Logger) *App {
	return &App{
		Server: &http.Server{
			Addr:         conf.ListenAddr,
			Handler:      engine,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		streams: streams,
		logger:  logger,
	}
}

// Run 监听配置的地址，ctx 结束后优雅关闭
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve 在给定 listener 上提供服务。首次启动时写入示例数据。
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.streams.EnsureInitialized(ctx); err != nil {
		_ = ln.Close()
		return fmt.Errorf("initialize streams: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", ln.Addr().String()).Msg("listening")
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	a.logger.Info().Msg("server stopped")
	return nil
}
