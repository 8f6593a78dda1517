package bloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetScheduler() {
	flushQueue = nil
	queuedIDs = map[uint64]bool{}
	flushCounts = map[uint64]int{}
	flushRunning = false
	nextTickQueue = nil
}

func TestQueueWatcher_DedupesSameID(t *testing.T) {
	resetScheduler()
	w := &Watcher{id: 1, active: true}
	queueWatcher(w)
	queueWatcher(w)
	assert.Equal(t, 1, PendingFlushCount())
}

func TestFlush_RunsInAscendingIDOrder(t *testing.T) {
	resetScheduler()
	var order []uint64
	mk := func(id uint64) *Watcher {
		return &Watcher{id: id, active: true, getter: func() any { order = append(order, id); return nil }}
	}
	queueWatcher(mk(3))
	queueWatcher(mk(1))
	queueWatcher(mk(2))

	Flush()
	assert.Equal(t, []uint64{1, 2, 3}, order)
	assert.Equal(t, 0, PendingFlushCount())
}

func TestFlush_WatcherRequeuedMidFlushRunsSamePass(t *testing.T) {
	resetScheduler()
	var order []uint64
	var second *Watcher
	first := &Watcher{id: 1, active: true, getter: func() any {
		order = append(order, 1)
		queueWatcher(second)
		return nil
	}}
	second = &Watcher{id: 2, active: true, getter: func() any {
		order = append(order, 2)
		return nil
	}}
	queueWatcher(first)

	Flush()
	assert.Equal(t, []uint64{1, 2}, order)
}

func TestFlush_ReentrantCallIsNoOp(t *testing.T) {
	resetScheduler()
	ran := false
	inner := &Watcher{id: 2, active: true, getter: func() any { ran = true; return nil }}
	outer := &Watcher{id: 1, active: true, getter: func() any {
		queueWatcher(inner)
		Flush() // should be a no-op: flushRunning is already true
		return nil
	}}
	queueWatcher(outer)
	Flush()

	// The reentrant Flush() call bailed out immediately, but the outer
	// loop still picks up the watcher queued during outer's run.
	assert.True(t, ran)
}

func TestFlush_CapsInfiniteLoopAtMaxFlushCount(t *testing.T) {
	resetScheduler()
	runs := 0
	var w *Watcher
	w = &Watcher{id: 1, active: true, getter: func() any {
		runs++
		queueWatcher(w)
		return nil
	}}
	queueWatcher(w)

	assert.NotPanics(t, func() { Flush() })
	assert.LessOrEqual(t, runs, MaxFlushCount+1)
}

func TestFlush_DrainsNextTickQueue(t *testing.T) {
	resetScheduler()
	called := false
	NextTick(func() { called = true })
	Flush()
	assert.True(t, called)
}

func TestFlush_InactiveWatcherSkipped(t *testing.T) {
	resetScheduler()
	ran := false
	w := &Watcher{id: 1, active: false, getter: func() any { ran = true; return nil }}
	queueWatcher(w)
	Flush()
	assert.False(t, ran)
}
