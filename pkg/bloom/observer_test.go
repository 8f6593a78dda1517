package bloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObserve_IdempotentForSameObject(t *testing.T) {
	ro := NewObject(map[string]any{"a": 1})
	ob1 := Observe(ro, true)
	ob2 := Observe(ro, true)
	assert.Same(t, ob1, ob2)
}

func TestReactiveObject_GetSetTracksDependency(t *testing.T) {
	ro := NewObject(map[string]any{"count": 1})
	Observe(ro, true)

	var seen any
	w := NewWatcher(nil, func() any {
		v, _ := ro.Get("count")
		return v
	}, func(newVal, old any) { seen = newVal }, WatcherOptions{Sync: true})

	assert.Equal(t, 1, w.Value())

	ro.Set("count", 2)
	assert.Equal(t, 2, seen)
}

func TestReactiveObject_SetSameValueDoesNotNotify(t *testing.T) {
	ro := NewObject(map[string]any{"count": 1})
	Observe(ro, true)

	calls := 0
	NewWatcher(nil, func() any {
		v, _ := ro.Get("count")
		return v
	}, func(newVal, old any) { calls++ }, WatcherOptions{Sync: true})

	ro.Set("count", 1)
	assert.Equal(t, 0, calls)
}

func TestReactiveObject_NewKeyIsObservedAndNotifies(t *testing.T) {
	ro := NewObject(map[string]any{})
	// Reading ro through a parent cell depends on ro's own dep, which is
	// what a new-key Set notifies.
	parent := NewObject(map[string]any{"obj": ro})
	Observe(parent, true)

	calls := 0
	NewWatcher(nil, func() any {
		obj, _ := parent.Get("obj")
		v, _ := obj.(*ReactiveObject).Get("extra")
		return v
	}, func(newVal, old any) { calls++ }, WatcherOptions{Sync: true})

	ro.Set("extra", "hi")
	assert.Equal(t, 1, calls)
}

func TestDefineReactiveCell_SuppressedObserveStillKeepsChildObserver(t *testing.T) {
	child := NewObject(map[string]any{"x": 1})
	Observe(child, false)

	prev := ToggleObserve(false)
	parent := NewObject(map[string]any{"nested": child})
	Observe(parent, false)
	ToggleObserve(prev)

	// Even with shouldObserve suppressed, the parent's own per-key dep
	// must exist so reads of "nested" are still tracked.
	var tracked any
	NewWatcher(nil, func() any {
		v, _ := parent.Get("nested")
		return v
	}, func(newVal, old any) { tracked = newVal }, WatcherOptions{Sync: true})

	parent.Set("nested", "replaced")
	assert.Equal(t, "replaced", tracked)
}

func TestReactiveArray_PushNotifiesOwnDep(t *testing.T) {
	arr := NewArray(1, 2, 3)
	Observe(arr, true)

	calls := 0
	NewWatcher(nil, func() any {
		return arr.Len()
	}, func(newVal, old any) { calls++ }, WatcherOptions{Sync: true})

	arr.Push(4)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 4, arr.Len())
}
