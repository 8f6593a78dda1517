package bloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeOptions_AlreadyMergedChildReturnedUnchanged(t *testing.T) {
	child := &Options{Name: "X", merged: true}
	out := mergeOptions(&Options{Name: "parent"}, child)
	assert.Same(t, child, out)
}

func TestMergeOptions_ChildNameWinsOverParent(t *testing.T) {
	out := mergeOptions(&Options{Name: "Parent"}, &Options{Name: "Child"})
	assert.Equal(t, "Child", out.Name)
}

func TestMergeOptions_ChildNameFallsBackToParent(t *testing.T) {
	out := mergeOptions(&Options{Name: "Parent"}, &Options{})
	assert.Equal(t, "Parent", out.Name)
}

func TestMergeOptions_ExtendsIsFoldedBeforeChild(t *testing.T) {
	base := &Options{Methods: map[string]MethodFunc{"greet": func(vm *Instance, args ...any) any { return "base" }}}
	child := &Options{Extends: base, Methods: map[string]MethodFunc{"farewell": func(vm *Instance, args ...any) any { return "child" }}}

	out := mergeOptions(nil, child)
	assert.Contains(t, out.Methods, "greet")
	assert.Contains(t, out.Methods, "farewell")
}

func TestMergeOptions_EveryMixinFoldedIntoResult(t *testing.T) {
	mixinA := &Options{Methods: map[string]MethodFunc{"a": nil}}
	mixinB := &Options{Methods: map[string]MethodFunc{"b": nil}}
	child := &Options{Mixins: []*Options{mixinA, mixinB}, Methods: map[string]MethodFunc{"c": nil}}

	out := mergeOptions(nil, child)
	assert.Contains(t, out.Methods, "a")
	assert.Contains(t, out.Methods, "b")
	assert.Contains(t, out.Methods, "c")
}

func TestMergeThunk_DeepMergesBothSidesAtAccessTime(t *testing.T) {
	parent := func(vm *Instance) map[string]any { return map[string]any{"count": 1, "nested": map[string]any{"a": 1}} }
	child := func(vm *Instance) map[string]any { return map[string]any{"nested": map[string]any{"b": 2}} }

	merged := mergeThunk(parent, child)
	result := merged(nil)
	assert.Equal(t, 1, result["count"])
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, result["nested"])
}

func TestMergeThunk_NilSidesPassThrough(t *testing.T) {
	fn := func(vm *Instance) map[string]any { return map[string]any{"x": 1} }
	assert.Nil(t, mergeThunk(nil, nil))

	merged := mergeThunk(nil, fn)
	assert.NotNil(t, merged)

	merged2 := mergeThunk(fn, nil)
	assert.NotNil(t, merged2)
}

func TestDeepMergeMaps_ChildScalarOverwritesParent(t *testing.T) {
	a := map[string]any{"x": 1}
	b := map[string]any{"x": 2}
	out := deepMergeMaps(a, b)
	assert.Equal(t, 2, out["x"])
}

func TestMergeHooks_ConcatenatesParentThenChildDeduped(t *testing.T) {
	var shared LifecycleHook = func(vm *Instance) {}
	parent := map[string][]LifecycleHook{HookCreated: {shared}}
	child := map[string][]LifecycleHook{HookCreated: {shared, func(vm *Instance) {}}}

	out := mergeHooks(parent, child)
	assert.Len(t, out[HookCreated], 2, "shared hook instance must not be duplicated")
}

func TestMergeHooks_EmptyBothReturnsNil(t *testing.T) {
	assert.Nil(t, mergeHooks(nil, nil))
}

func TestMergeOptionsRegistry_RejectsInvalidNames(t *testing.T) {
	parent := map[string]*Options{"my-widget": {Name: "Widget"}}
	child := map[string]*Options{"div": {Name: "Bad"}, "my-panel": {Name: "Panel"}}

	out := mergeOptionsRegistry(parent, child)
	assert.Contains(t, out, "my-widget")
	assert.Contains(t, out, "my-panel")
	assert.NotContains(t, out, "div")
}

func TestMergeWatch_ParentEntriesBeforeChild(t *testing.T) {
	parent := map[string][]WatchDef{"x": {{Deep: true}}}
	child := map[string][]WatchDef{"x": {{Sync: true}}}

	out := mergeWatch(parent, child)
	assert.Len(t, out["x"], 2)
	assert.True(t, out["x"][0].Deep)
	assert.True(t, out["x"][1].Sync)
}

func TestMergePropsShallow_ChildOverridesParentKey(t *testing.T) {
	parent := map[string]PropDef{"title": {Name: "title", Required: true}}
	child := map[string]PropDef{"title": {Name: "title", Required: false}}

	out := mergePropsShallow(parent, child)
	assert.False(t, out["title"].Required)
}
