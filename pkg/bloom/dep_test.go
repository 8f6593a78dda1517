package bloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDep_DependAddsCurrentTargetAsSub(t *testing.T) {
	dep := NewDep()
	w := &Watcher{id: 1, active: true}

	pushTarget(w)
	dep.depend()
	popTarget()

	assert.Len(t, dep.subs, 1)
	assert.Same(t, w, dep.subs[0])
}

func TestDep_DependNoCurrentTargetIsNoOp(t *testing.T) {
	dep := NewDep()
	dep.depend()
	assert.Empty(t, dep.subs)
}

func TestDep_AddSubIdempotent(t *testing.T) {
	dep := NewDep()
	w := &Watcher{id: 1, active: true}
	dep.addSub(w)
	dep.addSub(w)
	assert.Len(t, dep.subs, 1)
}

func TestDep_RemoveSub(t *testing.T) {
	dep := NewDep()
	w := &Watcher{id: 1, active: true}
	dep.addSub(w)
	dep.removeSub(w)
	assert.Empty(t, dep.subs)
}

func TestDep_NotifyRunsSubsInAscendingIDOrder(t *testing.T) {
	dep := NewDep()
	var order []uint64
	mk := func(id uint64) *Watcher {
		return &Watcher{
			id:     id,
			active: true,
			opts:   WatcherOptions{Sync: true},
			getter: func() any { order = append(order, id); return nil },
		}
	}
	w3, w1, w2 := mk(3), mk(1), mk(2)
	dep.addSub(w3)
	dep.addSub(w1)
	dep.addSub(w2)

	dep.notify()

	assert.Equal(t, []uint64{1, 2, 3}, order)
}

func TestTargetStack_PushPopCurrent(t *testing.T) {
	assert.Nil(t, currentTarget())
	w1 := &Watcher{id: 1}
	w2 := &Watcher{id: 2}
	pushTarget(w1)
	pushTarget(w2)
	assert.Same(t, w2, currentTarget())
	popTarget()
	assert.Same(t, w1, currentTarget())
	popTarget()
	assert.Nil(t, currentTarget())
}
