// Package metrics 暴露 Prometheus 指标，未启用时退化为空实现。
package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streamlog/internal/config"
)

// Provider 汇总服务内各组件上报指标的入口。
type Provider interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveStorageDuration(op string, duration time.Duration, err error)
	SetStreamsTotal(count int)
	Enabled() bool
	Handler() http.Handler
}

type prometheusProvider struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	storageDuration *prometheus.HistogramVec
	streamsTotal    prometheus.Gauge
}

// New 在独立的 registry 上注册指标，多次构造互不冲突。
func New(conf config.AppConfig) Provider {
	if !conf.MetricsEnabled {
		return noopProvider{}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(registry)

	return &prometheusProvider{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "streamlog_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streamlog_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "streamlog_cache_hits_total",
			Help: "Total number of stats cache hits",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "streamlog_cache_misses_total",
			Help: "Total number of stats cache misses",
		}),
		storageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streamlog_storage_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "result"}),
		streamsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "streamlog_streams_total",
			Help: "Number of stored stream records",
		}),
	}
}

func (m *prometheusProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *prometheusProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *prometheusProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *prometheusProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *prometheusProvider) ObserveStorageDuration(op string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storageDuration.WithLabelValues(op, result).Observe(duration.Seconds())
}

func (m *prometheusProvider) SetStreamsTotal(count int) {
	m.streamsTotal.Set(float64(count))
}

func (m *prometheusProvider) Enabled() bool {
	return true
}

func (m *prometheusProvider) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// Middleware 统计每个路由的请求数与耗时，使用路由模板避免标签基数膨胀。
func Middleware(metrics Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.IncRequestsTotal(endpoint, c.Writer.Status())
		metrics.ObserveRequestDuration(endpoint, time.Since(start))
	}
}

type noopProvider struct{}

func (noopProvider) IncRequestsTotal(string, int)                        {}
func (noopProvider) ObserveRequestDuration(string, time.Duration)        {}
func (noopProvider) IncCacheHits()                                       {}
func (noopProvider) IncCacheMisses()                                     {}
func (noopProvider) ObserveStorageDuration(string, time.Duration, error) {}
func (noopProvider) SetStreamsTotal(int)                                 {}
func (noopProvider) Enabled() bool                                       { return false }
func (noopProvider) Handler() http.Handler                               { return http.NotFoundHandler() }

// Nop 返回不记录任何指标的实现，便于测试。
func Nop() Provider {
	return noopProvider{}
}
