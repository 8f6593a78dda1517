package bloom

// shouldObserve is a global toggle that suppresses Observe() calls; the
// instance initializer flips it off while walking a non-root
// component's already-validated propsData, since those values are
// already reactive on the parent and re-wrapping them would create a
// second, disconnected Dep (spec §4.3).
var shouldObserve = true

// ToggleObserve sets the shouldObserve switch and returns the previous
// value, so callers can restore it with `defer ToggleObserve(prev)`.
func ToggleObserve(v bool) bool {
	prev := shouldObserve
	shouldObserve = v
	return prev
}

// Observer is attached to a ReactiveObject or ReactiveArray once
// observed. It owns the container's "own dep", used to notify
// subscribers on property add/delete (ReactiveObject) or array
// mutation (ReactiveArray) — the closest Go analogue of a hidden,
// non-enumerable `__ob__` marker, since Go values cannot carry hidden
// fields the way a JS object can.
type Observer struct {
	dep *Dep
}

// cell is one reactive property slot on a ReactiveObject: its current
// value, the Dep that tracks reads/writes of that specific key, and —
// when the value is itself observable — the child Observer, so reads
// can also depend on the child's own dep (spec §4.3's defineReactive
// getter).
type cell struct {
	value   any
	dep     *Dep
	childOb *Observer
}

// ReactiveObject is the Go encoding of a "plain observed object" (spec
// Design Note §9): a stable-identity, pointer-typed map of named cells
// plus its own Observer. Property access goes through Get/Set rather
// than language-level accessor syntax, since Go has none.
type ReactiveObject struct {
	cells    map[string]*cell
	keyOrder []string
	ob       *Observer
}

// NewObject wraps m's current key/value pairs into a fresh
// ReactiveObject. The object is not yet reactive: call Observe to
// install dependency tracking (instance initialization does this for
// data/props automatically).
func NewObject(m map[string]any) *ReactiveObject {
	ro := &ReactiveObject{cells: make(map[string]*cell, len(m))}
	for k, v := range m {
		ro.cells[k] = &cell{value: v}
		ro.keyOrder = append(ro.keyOrder, k)
	}
	return ro
}

// Keys returns the object's own keys in insertion order.
func (ro *ReactiveObject) Keys() []string {
	out := make([]string, len(ro.keyOrder))
	copy(out, ro.keyOrder)
	return out
}

// Has reports whether key is an own property.
func (ro *ReactiveObject) Has(key string) bool {
	_, ok := ro.cells[key]
	return ok
}

// Get reads key's current value, registering a dependency with the
// active target (if any) on both this property's Dep and, when the
// value is itself observed, the child Observer's Dep (spec §4.3).
func (ro *ReactiveObject) Get(key string) (any, bool) {
	c, ok := ro.cells[key]
	if !ok {
		return nil, false
	}
	if currentTarget() != nil {
		if c.dep != nil {
			c.dep.depend()
		}
		if c.childOb != nil {
			c.childOb.dep.depend()
		}
		if arr, ok := c.value.(*ReactiveArray); ok && arr.ob != nil {
			arr.ob.dep.depend()
		}
	}
	return c.value, true
}

// Set writes key's value. For an existing key this is a plain
// reassignment (short-circuited on an identical value) followed by
// notify(); for a new key, a cell is created and — if this object is
// already observed — wired into reactivity before the object's own dep
// notifies, exactly as spec §4.3's Vue.set describes.
func (ro *ReactiveObject) Set(key string, value any) {
	if c, ok := ro.cells[key]; ok {
		if valuesEqual(c.value, value) {
			return
		}
		c.value = value
		wrapped, childOb := observeValue(value)
		c.value = wrapped
		c.childOb = childOb
		if c.dep != nil {
			c.dep.notify()
		}
		return
	}

	c := &cell{value: value}
	ro.cells[key] = c
	ro.keyOrder = append(ro.keyOrder, key)
	if ro.ob != nil {
		ro.defineReactiveCell(key)
		ro.ob.dep.notify()
	}
}

// Delete removes key, notifying the object's own dep if it is observed
// and the key existed (spec §4.3's Vue.delete).
func (ro *ReactiveObject) Delete(key string) {
	if _, ok := ro.cells[key]; !ok {
		return
	}
	delete(ro.cells, key)
	for i, k := range ro.keyOrder {
		if k == key {
			ro.keyOrder = append(ro.keyOrder[:i], ro.keyOrder[i+1:]...)
			break
		}
	}
	if ro.ob != nil {
		ro.ob.dep.notify()
	}
}

// defineReactiveCell installs (or re-installs) dependency tracking for
// a single key. The key's own Dep is always installed — a prop or data
// cell must always be trackable — but recursively wrapping/observing
// its current value is skipped while shouldObserve is suppressed (used
// during non-root prop initialization, where the value is already
// reactive on the parent and re-wrapping it would mint a second,
// disconnected Dep); the existing child Observer, if any, is still
// picked up so reads keep depending on it.
func (ro *ReactiveObject) defineReactiveCell(key string) {
	c := ro.cells[key]
	if c.dep == nil {
		c.dep = NewDep()
	}
	if shouldObserve {
		wrapped, childOb := observeValue(c.value)
		c.value = wrapped
		c.childOb = childOb
	} else {
		c.childOb = childObserverOf(c.value)
	}
}

// childObserverOf returns v's existing Observer without wrapping or
// observing it, for values that are already reactive containers.
func childObserverOf(v any) *Observer {
	switch t := v.(type) {
	case *ReactiveObject:
		return t.ob
	case *ReactiveArray:
		return t.ob
	default:
		return nil
	}
}

// Observe attaches an Observer to value if it is an extensible
// reactive container (*ReactiveObject, *ReactiveArray, or a plain
// map[string]any/[]any that gets auto-wrapped) and not already
// observed. Observing an already-observed container returns its
// existing Observer unchanged, satisfying the "idempotent __ob__"
// invariant (spec §3). The container's own dep and per-key cell deps
// are always installed; shouldObserve only governs whether a cell's
// current value is itself recursively wrapped/observed (see
// defineReactiveCell).
func Observe(value any, asRoot bool) *Observer {
	switch v := value.(type) {
	case *ReactiveObject:
		if v.ob != nil {
			return v.ob
		}
		v.ob = &Observer{dep: NewDep()}
		for _, k := range v.keyOrder {
			v.defineReactiveCell(k)
		}
		return v.ob
	case *ReactiveArray:
		if v.ob != nil {
			return v.ob
		}
		v.ob = &Observer{dep: NewDep()}
		if shouldObserve {
			for i, item := range v.items {
				wrapped, _ := observeValue(item)
				v.items[i] = wrapped
			}
		}
		return v.ob
	case map[string]any:
		return Observe(NewObject(v), asRoot)
	case []any:
		return Observe(NewArray(v...), asRoot)
	default:
		return nil
	}
}

// observeValue converts a raw map[string]any/[]any into its reactive
// wrapper (so it gains a stable identity immune to Go's lack of hidden
// object fields) and observes it, returning the possibly-converted
// value and its child Observer. Already-wrapped values pass through
// unchanged and are observed if they were not already, so they always
// come back with their Observer; non-observable values pass through
// unchanged with a nil Observer.
func observeValue(v any) (any, *Observer) {
	switch t := v.(type) {
	case *ReactiveObject:
		return t, Observe(t, false)
	case *ReactiveArray:
		return t, Observe(t, false)
	case map[string]any:
		ro := NewObject(t)
		return ro, Observe(ro, false)
	case []any:
		ra := NewArray(t...)
		return ra, Observe(ra, false)
	default:
		return v, nil
	}
}
