package bloom

import (
	"sort"
	"time"

	"github.com/bloomui/bloom/internal/metrics"
)

// MaxFlushCount bounds how many times a single watcher may run within
// one Flush before the scheduler gives up on it and reports an infinite
// update loop (spec §5's "detect infinite cycles" requirement),
// grounded on the teacher's maxCommandsPerRef loop_detection.go guard.
const MaxFlushCount = 100

// flushQueue holds watchers queued by update() for the next Flush,
// deduplicated by watcher id: queuing the same watcher twice before a
// flush collapses to one run, matching the teacher's CallbackScheduler
// batching behavior.
var (
	flushQueue   []*Watcher
	queuedIDs    = map[uint64]bool{}
	flushCounts  = map[uint64]int{}
	flushRunning bool
)

// queueWatcher enqueues w for the next Flush unless it is already
// queued.
func queueWatcher(w *Watcher) {
	if queuedIDs[w.id] {
		return
	}
	queuedIDs[w.id] = true
	flushQueue = append(flushQueue, w)
}

// Flush runs every queued watcher in ascending-id order (parents before
// children, and — by construction order — user watchers before a
// render watcher registered later on the same instance). Watchers
// enqueued by a callback mid-flush are appended and run within the same
// pass, matching spec §5's ordering guarantee. A watcher that runs more
// than MaxFlushCount times in one Flush is dropped with a warning,
// preventing an infinite-update component from hanging the flush loop
// forever.
func Flush() {
	if flushRunning {
		return
	}
	flushRunning = true
	start := time.Now()
	ranCount := 0
	defer func() {
		flushRunning = false
		flushQueue = nil
		queuedIDs = map[uint64]bool{}
		flushCounts = map[uint64]int{}
		metrics.Global().RecordFlush(ranCount, time.Since(start))
	}()

	for i := 0; i < len(flushQueue); i++ {
		// Re-sort the remaining tail each pass so watchers appended
		// mid-flush are still run in id order relative to each other,
		// without disturbing watchers already executed.
		sort.SliceStable(flushQueue[i:], func(a, b int) bool {
			return flushQueue[i+a].id < flushQueue[i+b].id
		})

		w := flushQueue[i]
		delete(queuedIDs, w.id)

		flushCounts[w.id]++
		if flushCounts[w.id] > MaxFlushCount {
			devWarnGlobal("infinite update loop detected in watcher (id=%d); skipping further runs this flush", w.id)
			continue
		}
		w.run()
		ranCount++
	}

	drainNextTick()
}

// PendingFlushCount reports how many watchers are currently queued,
// primarily for tests asserting scheduler batching behavior.
func PendingFlushCount() int { return len(flushQueue) }
