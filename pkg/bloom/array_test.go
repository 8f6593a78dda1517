package bloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewArray_CopiesInputSlice(t *testing.T) {
	src := []any{1, 2, 3}
	ra := NewArray(src...)
	src[0] = "mutated"
	v, _ := ra.Get(0)
	assert.Equal(t, 1, v)
}

func TestReactiveArray_GetOutOfRange(t *testing.T) {
	ra := NewArray(1, 2)
	_, ok := ra.Get(5)
	assert.False(t, ok)
	_, ok = ra.Get(-1)
	assert.False(t, ok)
}

func TestReactiveArray_Items_ReturnsSnapshotCopy(t *testing.T) {
	ra := NewArray(1, 2, 3)
	items := ra.Items()
	items[0] = "mutated"
	v, _ := ra.Get(0)
	assert.Equal(t, 1, v)
}

func TestReactiveArray_SetValidIndexNotifies(t *testing.T) {
	ra := NewArray(1, 2, 3)
	Observe(ra, true)

	calls := 0
	NewWatcher(nil, func() any {
		v, _ := ra.Get(1)
		return v
	}, func(newVal, old any) { calls++ }, WatcherOptions{Sync: true})

	ra.Set(1, "two")
	assert.Equal(t, 1, calls)
	v, _ := ra.Get(1)
	assert.Equal(t, "two", v)
}

func TestReactiveArray_SetOutOfRangeIsNoOp(t *testing.T) {
	ra := NewArray(1, 2)
	ra.Set(5, "x")
	assert.Equal(t, 2, ra.Len())
}

func TestReactiveArray_PopShift(t *testing.T) {
	ra := NewArray(1, 2, 3)
	last, ok := ra.Pop()
	assert.True(t, ok)
	assert.Equal(t, 3, last)
	assert.Equal(t, 2, ra.Len())

	first, ok := ra.Shift()
	assert.True(t, ok)
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, ra.Len())
}

func TestReactiveArray_PopEmptyIsFalse(t *testing.T) {
	ra := NewArray()
	_, ok := ra.Pop()
	assert.False(t, ok)
	_, ok = ra.Shift()
	assert.False(t, ok)
}

func TestReactiveArray_Unshift(t *testing.T) {
	ra := NewArray(2, 3)
	n := ra.Unshift(0, 1)
	assert.Equal(t, 4, n)
	assert.Equal(t, []any{0, 1, 2, 3}, ra.Items())
}

func TestReactiveArray_SpliceRemoveAndInsert(t *testing.T) {
	ra := NewArray(1, 2, 3, 4, 5)
	removed := ra.Splice(1, 2, "a", "b", "c")
	assert.Equal(t, []any{2, 3}, removed)
	assert.Equal(t, []any{1, "a", "b", "c", 4, 5}, ra.Items())
}

func TestReactiveArray_SpliceNegativeStartClamps(t *testing.T) {
	ra := NewArray(1, 2, 3)
	removed := ra.Splice(-1, 1)
	assert.Equal(t, []any{3}, removed)
	assert.Equal(t, []any{1, 2}, ra.Items())
}

func TestReactiveArray_SpliceOutOfRangeClamps(t *testing.T) {
	ra := NewArray(1, 2, 3)
	removed := ra.Splice(10, 5)
	assert.Empty(t, removed)
	assert.Equal(t, []any{1, 2, 3}, ra.Items())
}

func TestReactiveArray_SortFunc(t *testing.T) {
	ra := NewArray(3, 1, 2)
	Observe(ra, true)

	evaluations := 0
	NewWatcher(nil, func() any {
		evaluations++
		return ra.Len()
	}, nil, WatcherOptions{Sync: true})

	ra.SortFunc(func(a, b any) bool { return a.(int) < b.(int) })
	assert.Equal(t, []any{1, 2, 3}, ra.Items())
	assert.Equal(t, 2, evaluations, "sort mutates in place but still must notify, triggering a re-evaluation")
}

func TestReactiveArray_Reverse(t *testing.T) {
	ra := NewArray(1, 2, 3)
	ra.Reverse()
	assert.Equal(t, []any{3, 2, 1}, ra.Items())
}

func TestReactiveArray_PushObservesNestedValues(t *testing.T) {
	ra := NewArray()
	Observe(ra, true)

	ra.Push(map[string]any{"a": 1})
	v, _ := ra.Get(0)
	ro, ok := v.(*ReactiveObject)
	assert.True(t, ok)
	assert.NotNil(t, ro.ob)
}
