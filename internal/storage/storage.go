// Package storage 提供按键整体读写字节数据的持久化端口及其实现。
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/streamlog/internal/config"
	"github.com/streamlog/internal/db"
	"github.com/streamlog/internal/metrics"
)

// ErrKeyNotFound 表示该键从未被写入过
var ErrKeyNotFound = errors.New("storage key not found")

// Backend 是整体覆盖写入的键值存储。Set 总是替换该键下的全部内容。
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Open 按配置选择存储实现，返回的 cleanup 负责释放底层资源。
func Open(conf config.AppConfig, logger zerolog.Logger) (Backend, func(), error) {
	switch conf.StorageDriver {
	case "memory":
		logger.Warn().Msg("using in-memory storage, data is lost on exit")
		return NewMemory(), func() {}, nil
	case "file":
		var compressor Compressor
		if conf.StorageCompress {
			zc, err := NewZstdCompressor()
			if err != nil {
				return nil, nil, err
			}
			compressor = zc
		}
		backend, err := NewFile(conf.StorageDir, compressor)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("dir", conf.StorageDir).Bool("compress", conf.StorageCompress).Msg("using file storage")
		return backend, backend.Close, nil
	case "sqlite", "":
		gdb, err := db.Open(conf.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		logger.Info().Str("path", conf.DatabasePath).Msg("using sqlite storage")
		cleanup := func() {
			if err := db.Close(gdb); err != nil {
				logger.Error().Err(err).Msg("close database")
			}
		}
		return NewSQL(gdb), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", conf.StorageDriver)
	}
}

type instrumented struct {
	next    Backend
	metrics metrics.Provider
}

// Instrument 为每次读写记录耗时指标。
func Instrument(next Backend, m metrics.Provider) Backend {
	if m == nil || !m.Enabled() {
		return next
	}
	return &instrumented{next: next, metrics: m}
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := i.next.Get(ctx, key)
	// 键不存在属于正常路径，不计为错误
	observed := err
	if errors.Is(err, ErrKeyNotFound) {
		observed = nil
	}
	i.metrics.ObserveStorageDuration("get", time.Since(start), observed)
	return value, err
}

func (i *instrumented) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := i.next.Set(ctx, key, value)
	i.metrics.ObserveStorageDuration("set", time.Since(start), err)
	return err
}
