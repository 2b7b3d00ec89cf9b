package cache

import (
	"github.com/coocood/freecache"
	"github.com/rs/zerolog"
	"github.com/streamlog/internal/config"
)

// Provider 是按字节缓存计算结果的最小接口。
type Provider interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

type freeCache struct {
	cache  *freecache.Cache
	ttl    int
	logger zerolog.Logger
}

// New 按配置创建 freecache 缓存；容量为 0 时返回空实现。
func New(conf config.AppConfig, logger zerolog.Logger) Provider {
	if conf.CacheSizeMB <= 0 {
		logger.Info().Msg("cache disabled")
		return noopCache{}
	}

	ttl := max(int(conf.CacheTTL.Seconds()), 1)
	logger.Info().Int("size_mb", conf.CacheSizeMB).Int("ttl_seconds", ttl).Msg("cache initialized")

	return &freeCache{
		cache:  freecache.NewCache(conf.CacheSizeMB * 1024 * 1024),
		ttl:    ttl,
		logger: logger,
	}
}

func (c *freeCache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set 写入失败只记录告警，常见原因是条目超过缓存容量的 1/1024
func (c *freeCache) Set(key string, value []byte) {
	if err := c.cache.Set([]byte(key), value, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Int("size", len(value)).Msg("cache set failed")
	}
}

type noopCache struct{}

func (noopCache) Get(string) ([]byte, bool) { return nil, false }
func (noopCache) Set(string, []byte)        {}

// Nop 返回永不命中的缓存。
func Nop() Provider {
	return noopCache{}
}
