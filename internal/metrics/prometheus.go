package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements Metrics using client_golang, exposing
// counters/histograms a host binary can serve via promhttp. All
// metrics are prefixed "bloom_".
type PrometheusMetrics struct {
	watcherEvaluations *prometheus.HistogramVec
	flushDuration      prometheus.Histogram
	flushWatcherCount  prometheus.Histogram
	injectDepth        prometheus.Histogram
	parserWarnings     *prometheus.CounterVec
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
}

// NewPrometheusMetrics registers every collector against reg. Like the
// teacher's constructor, registration failures panic (fail fast at
// startup rather than silently dropping metrics).
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	pm := &PrometheusMetrics{
		watcherEvaluations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bloom_watcher_evaluation_seconds",
			Help:    "Duration of Watcher.evaluate() calls, partitioned by watcher kind (render/computed/user).",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		flushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloom_flush_duration_seconds",
			Help:    "Duration of a single scheduler Flush() pass.",
			Buckets: prometheus.DefBuckets,
		}),
		flushWatcherCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloom_flush_watcher_count",
			Help:    "Number of watchers run in a single Flush() pass.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),
		injectDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloom_inject_depth",
			Help:    "Ancestor-chain depth walked to resolve an inject key.",
			Buckets: []float64{0, 1, 2, 3, 5, 7, 10, 15, 20},
		}),
		parserWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloom_parser_warnings_total",
			Help: "Total development-mode parser warnings, partitioned by kind.",
		}, []string{"kind"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloom_cache_hits_total",
			Help: "Total cache hits, partitioned by cache name.",
		}, []string{"cache"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloom_cache_misses_total",
			Help: "Total cache misses, partitioned by cache name.",
		}, []string{"cache"}),
	}

	reg.MustRegister(
		pm.watcherEvaluations,
		pm.flushDuration,
		pm.flushWatcherCount,
		pm.injectDepth,
		pm.parserWarnings,
		pm.cacheHits,
		pm.cacheMisses,
	)
	return pm
}

func (pm *PrometheusMetrics) RecordWatcherEvaluation(kind string, d time.Duration) {
	pm.watcherEvaluations.WithLabelValues(kind).Observe(d.Seconds())
}

func (pm *PrometheusMetrics) RecordFlush(watcherCount int, d time.Duration) {
	pm.flushDuration.Observe(d.Seconds())
	pm.flushWatcherCount.Observe(float64(watcherCount))
}

func (pm *PrometheusMetrics) RecordInjectDepth(depth int) {
	pm.injectDepth.Observe(float64(depth))
}

func (pm *PrometheusMetrics) RecordParserWarning(kind string) {
	pm.parserWarnings.WithLabelValues(kind).Inc()
}

func (pm *PrometheusMetrics) RecordCacheHit(cache string) {
	pm.cacheHits.WithLabelValues(cache).Inc()
}

func (pm *PrometheusMetrics) RecordCacheMiss(cache string) {
	pm.cacheMisses.WithLabelValues(cache).Inc()
}
