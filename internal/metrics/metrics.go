// Package metrics provides pluggable instrumentation for the
// reactivity core and template compiler, renamed from the teacher's
// composable-call vocabulary (RecordComposableCreation, cache hit/
// miss) to this runtime's actual hot paths: watcher evaluation,
// scheduler flush duration, and parser warnings.
//
// Monitoring is optional; the zero-overhead default is NoOpMetrics.
package metrics

import (
	"sync"
	"time"
)

// Metrics is the interface bloom's scheduler/watcher code and the
// compiler call into. Implementations must be safe for concurrent use
// even though the reactivity core itself is single-threaded, since a
// host binary may read counters from a separate HTTP handler
// goroutine.
type Metrics interface {
	// RecordWatcherEvaluation records one Watcher.evaluate() call.
	RecordWatcherEvaluation(kind string, duration time.Duration)
	// RecordFlush records one scheduler Flush() pass: how many
	// watchers it ran and how long the pass took.
	RecordFlush(watcherCount int, duration time.Duration)
	// RecordInjectDepth records how many ancestors resolveInject had
	// to walk before finding (or failing to find) a provider.
	RecordInjectDepth(depth int)
	// RecordParserWarning records a development-mode parser warning
	// (mismatched tag, invalid expression, etc.), partitioned by kind.
	RecordParserWarning(kind string)
	// RecordCacheHit/RecordCacheMiss track the compiled-template cache
	// (pkg/bloom/compiler/cache.go).
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// NoOpMetrics implements Metrics with empty, inlinable methods.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordWatcherEvaluation(string, time.Duration) {}
func (NoOpMetrics) RecordFlush(int, time.Duration)                {}
func (NoOpMetrics) RecordInjectDepth(int)                         {}
func (NoOpMetrics) RecordParserWarning(string)                    {}
func (NoOpMetrics) RecordCacheHit(string)                         {}
func (NoOpMetrics) RecordCacheMiss(string)                        {}

var (
	globalMu      sync.RWMutex
	globalMetrics Metrics = NoOpMetrics{}
)

// SetGlobal installs m as the process-wide Metrics sink. Passing nil
// resets to NoOpMetrics.
func SetGlobal(m Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if m == nil {
		globalMetrics = NoOpMetrics{}
		return
	}
	globalMetrics = m
}

// Global returns the current process-wide Metrics sink (never nil).
func Global() Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}
