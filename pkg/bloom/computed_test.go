package bloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitComputed_LazilyEvaluatesOnFirstRead(t *testing.T) {
	data := NewObject(map[string]any{"count": 2})
	Observe(data, true)
	vm := &Instance{data: data}

	evals := 0
	initComputed(vm, map[string]ComputedDef{
		"double": {Get: func(vm *Instance) any {
			evals++
			v, _ := data.Get("count")
			return v.(int) * 2
		}},
	})
	assert.Equal(t, 0, evals)

	v, ok := vm.getComputed("double")
	assert.True(t, ok)
	assert.Equal(t, 4, v)
	assert.Equal(t, 1, evals)

	// Reading again without a dependency change must not re-evaluate.
	vm.getComputed("double")
	assert.Equal(t, 1, evals)
}

func TestGetComputed_InvalidatesWhenInputChanges(t *testing.T) {
	data := NewObject(map[string]any{"count": 2})
	Observe(data, true)
	vm := &Instance{data: data}

	initComputed(vm, map[string]ComputedDef{
		"double": {Get: func(vm *Instance) any {
			v, _ := data.Get("count")
			return v.(int) * 2
		}},
	})

	v, _ := vm.getComputed("double")
	assert.Equal(t, 4, v)

	data.Set("count", 10)
	v, _ = vm.getComputed("double")
	assert.Equal(t, 20, v)
}

func TestGetComputed_OuterWatcherDependsOnComputedInputs(t *testing.T) {
	data := NewObject(map[string]any{"count": 2})
	Observe(data, true)
	vm := &Instance{data: data}

	initComputed(vm, map[string]ComputedDef{
		"double": {Get: func(vm *Instance) any {
			v, _ := data.Get("count")
			return v.(int) * 2
		}},
	})

	calls := 0
	NewWatcher(nil, func() any {
		v, _ := vm.getComputed("double")
		return v
	}, func(newVal, old any) { calls++ }, WatcherOptions{Sync: true})

	data.Set("count", 3)
	assert.Equal(t, 1, calls, "outer watcher must re-run when the computed's underlying data changes")
}

func TestGetComputed_UnknownNameReturnsFalse(t *testing.T) {
	vm := &Instance{}
	initComputed(vm, map[string]ComputedDef{})
	_, ok := vm.getComputed("missing")
	assert.False(t, ok)
}

func TestSetComputed_NoSetterIsNoOp(t *testing.T) {
	vm := &Instance{}
	initComputed(vm, map[string]ComputedDef{
		"double": {Get: func(vm *Instance) any { return 1 }},
	})
	assert.NotPanics(t, func() { vm.setComputed("double", 99) })
}

func TestSetComputed_InvokesConfiguredSetter(t *testing.T) {
	data := NewObject(map[string]any{"count": 0})
	Observe(data, true)
	vm := &Instance{data: data}

	initComputed(vm, map[string]ComputedDef{
		"double": {
			Get: func(vm *Instance) any { v, _ := data.Get("count"); return v.(int) * 2 },
			Set: func(vm *Instance, value any) { data.Set("count", value.(int)/2) },
		},
	})

	vm.setComputed("double", 10)
	v, _ := data.Get("count")
	assert.Equal(t, 5, v)
}
