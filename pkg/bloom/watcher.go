package bloom

import (
	"reflect"
	"strings"
	"time"

	"github.com/bloomui/bloom/internal/metrics"
)

// WatcherCallback is invoked with (newValue, oldValue) by run() after a
// Watcher with a non-nil callback detects a change. Computed (lazy)
// watchers carry no callback, and update() only marks them dirty.
type WatcherCallback func(newVal, oldVal any)

// BeforeHook runs immediately before a Watcher's run(), used by render
// watchers to fire a beforeUpdate-style hook. Optional.
type BeforeHook func()

// WatcherOptions configures a Watcher's evaluation and scheduling
// behavior (spec §4.2).
type WatcherOptions struct {
	// Lazy starts the watcher dirty with no initial evaluation; used by
	// computed properties.
	Lazy bool
	// User routes callback panics/errors through the instance error
	// handler instead of propagating.
	User bool
	// Deep walks the entire value graph after reading the root so that
	// every nested reactive property becomes a dependency.
	Deep bool
	// Sync invokes run() synchronously from update() rather than
	// queuing on the scheduler.
	Sync bool
	// Immediate invokes the callback once at registration time with the
	// current value, before any change has occurred. Only meaningful
	// for $watch-registered watchers.
	Immediate bool
	// Before, if set, runs immediately before run().
	Before BeforeHook
}

var watcherIDCounter uint64

// Watcher is a reactive computation: a getter plus (for user watchers)
// a callback, a dep set that is rebuilt on every evaluation, and dirty/
// active flags governing when it re-runs (spec §4.2).
type Watcher struct {
	id uint64

	vm       *Instance
	getter   func() any
	cb       WatcherCallback
	opts     WatcherOptions
	expr     string

	value any
	dirty bool
	active bool

	deps     []*Dep
	depIDs   map[uint64]bool
	newDeps  []*Dep
	newDepIDs map[uint64]bool
}

// NewWatcher constructs a Watcher for an explicit getter function. If
// opts.Lazy is false, the watcher evaluates immediately.
func NewWatcher(vm *Instance, getter func() any, cb WatcherCallback, opts WatcherOptions) *Watcher {
	watcherIDCounter++
	w := &Watcher{
		id:     watcherIDCounter,
		vm:     vm,
		getter: getter,
		cb:     cb,
		opts:   opts,
		active: true,
		dirty:  opts.Lazy,
	}
	if !opts.Lazy {
		w.value = w.evaluate()
	}
	return w
}

// NewExprWatcher compiles expr as a dotted property-path accessor over
// the instance (e.g. "user.profile.name") and builds a Watcher around
// it. Any character outside `[A-Za-z0-9_.$]` yields a no-op getter plus
// a development warning (spec §4.2), matching the "safe property-path
// accessor, dotted paths only" contract — anything richer is an
// expression and must be supplied as a getter function instead.
func NewExprWatcher(vm *Instance, expr string, cb WatcherCallback, opts WatcherOptions) *Watcher {
	getter := compilePathGetter(vm, expr)
	w := NewWatcher(vm, getter, cb, opts)
	w.expr = expr
	return w
}

func isPathSafe(expr string) bool {
	for _, r := range expr {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '$' || r == '.':
		default:
			return false
		}
	}
	return len(expr) > 0
}

// compilePathGetter returns a getter that reads a dotted path off the
// instance's exposed state (props/data/computed/methods), via
// instance.Get. An unsafe path yields a warning and a getter that
// always returns nil.
func compilePathGetter(vm *Instance, expr string) func() any {
	if !isPathSafe(expr) {
		devWarn(vm, "invalid watch expression (not a dotted path): %q", expr)
		return func() any { return nil }
	}
	segments := strings.Split(expr, ".")
	return func() any {
		var cur any = vm
		for _, seg := range segments {
			if cur == nil {
				return nil
			}
			if holder, ok := cur.(interface{ Get(string) (any, bool) }); ok {
				v, found := holder.Get(seg)
				if !found {
					return nil
				}
				cur = v
				continue
			}
			cur = reflectGet(cur, seg)
		}
		return cur
	}
}

// titleCase upper-cases the first rune, mapping a camelCase field
// reference (as used in templates/paths) onto Go's exported-field
// convention.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// reflectGet reads a struct field or map key named seg off v.
func reflectGet(v any, seg string) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		val := rv.MapIndex(reflect.ValueOf(seg))
		if !val.IsValid() {
			return nil
		}
		return val.Interface()
	case reflect.Struct:
		f := rv.FieldByName(titleCase(seg))
		if !f.IsValid() {
			f = rv.FieldByName(seg)
		}
		if !f.IsValid() || !f.CanInterface() {
			return nil
		}
		return f.Interface()
	default:
		return nil
	}
}

// addNewDep records dep as touched during the current evaluation. A dep
// already subscribed from the previous evaluation is not re-added to
// the subscriber list (addSub is idempotent), but it is still tracked
// in newDeps so it survives the end-of-evaluation reconciliation.
func (w *Watcher) addNewDep(dep *Dep) {
	if w.newDepIDs == nil {
		w.newDepIDs = make(map[uint64]bool)
	}
	if w.newDepIDs[dep.ID()] {
		return
	}
	w.newDepIDs[dep.ID()] = true
	w.newDeps = append(w.newDeps, dep)
	if w.depIDs == nil || !w.depIDs[dep.ID()] {
		dep.addSub(w)
	}
}

// evaluate pushes w as the active target, runs the getter, pops, then
// reconciles the dep sets: any dep present in the old set but absent
// from the new one is unsubscribed; old and new sets are then swapped.
// Sets dirty=false and caches value.
func (w *Watcher) evaluate() any {
	start := time.Now()
	pushTarget(w)
	var value any
	func() {
		defer func() {
			if r := recover(); r != nil {
				reportWatcherPanic(w, r)
			}
		}()
		value = w.getter()
	}()
	popTarget()

	if w.opts.Deep {
		traverseDeep(value)
	}

	w.cleanupDeps()
	w.dirty = false
	w.value = value
	metrics.Global().RecordWatcherEvaluation(w.kind(), time.Since(start))
	return value
}

// kind classifies the watcher for metrics partitioning: computed
// watchers start Lazy, $watch-registered watchers set User, anything
// else is a render watcher.
func (w *Watcher) kind() string {
	switch {
	case w.opts.Lazy:
		return "computed"
	case w.opts.User:
		return "user"
	default:
		return "render"
	}
}

// cleanupDeps unsubscribes from deps touched in the previous evaluation
// but not the current one, then swaps new into current.
func (w *Watcher) cleanupDeps() {
	for _, dep := range w.deps {
		if w.newDepIDs == nil || !w.newDepIDs[dep.ID()] {
			dep.removeSub(w)
		}
	}
	w.deps, w.newDeps = w.newDeps, nil
	w.depIDs, w.newDepIDs = w.newDepIDs, nil
}

// update is invoked by a depended-on Dep's notify(). Lazy watchers just
// flip dirty; sync watchers run immediately; everything else is queued
// on the scheduler for the next flush.
func (w *Watcher) update() {
	switch {
	case w.opts.Lazy:
		w.dirty = true
	case w.opts.Sync:
		w.run()
	default:
		queueWatcher(w)
	}
}

// run re-evaluates the watcher (if active) and, when the new value
// differs from the old by identity/deep/NaN-aware comparison, invokes
// the callback with (newValue, oldValue).
func (w *Watcher) run() {
	if !w.active {
		return
	}
	if w.opts.Before != nil {
		w.opts.Before()
	}
	old := w.value
	newVal := w.evaluate()
	if !valuesEqual(old, newVal) || isObjectLike(newVal) || w.opts.Deep {
		if w.cb != nil {
			w.invokeCallback(newVal, old)
		}
		w.value = newVal
	}
}

func (w *Watcher) invokeCallback(newVal, old any) {
	if w.opts.User {
		defer func() {
			if r := recover(); r != nil {
				reportUserError(w.vm, r, "callback for watcher \""+w.expr+"\"")
			}
		}()
	}
	w.cb(newVal, old)
}

// Evaluate is the public entry point used by computed properties: it
// evaluates only if dirty, matching spec §4.6 step 1.
func (w *Watcher) Evaluate() {
	if w.dirty {
		w.evaluate()
	}
}

// Value returns the watcher's last-computed value.
func (w *Watcher) Value() any { return w.value }

// Dirty reports whether the watcher needs re-evaluation before its
// value can be trusted.
func (w *Watcher) Dirty() bool { return w.dirty }

// DependOnAll calls depend() on each dep this watcher collected during
// its last evaluation, so that an outer watcher transitively depends on
// this watcher's inputs rather than on the watcher itself (spec §4.6
// step 2, used by the computed accessor).
func (w *Watcher) DependOnAll() {
	for _, dep := range w.deps {
		dep.depend()
	}
}

// Teardown removes the watcher from its owning instance's watcher list,
// unsubscribes from every currently-held dep, and marks it inactive so
// any already-queued run becomes a no-op.
func (w *Watcher) Teardown() {
	if !w.active {
		return
	}
	if w.vm != nil {
		w.vm.removeWatcher(w)
	}
	for _, dep := range w.deps {
		dep.removeSub(w)
	}
	w.active = false
}

// valuesEqual compares by identity with NaN-awareness: two NaN floats
// compare equal here (a write of NaN over NaN is not a change), exactly
// mirroring the spec's "by identity... or NaN-aware" rule. A raw slice/
// map/func value (not wrapped in *ReactiveObject/*ReactiveArray, e.g. a
// ComputedDef.Get or WatchFunc getter that builds and returns a plain
// []any/map[string]any) is not comparable with `==` and would panic, so
// those fall back to reflect.DeepEqual instead, the same guard deep.go's
// DeepEqual applies.
func valuesEqual(a, b any) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok && af != af && bf != bf {
		return true
	}
	if !isComparable(a) || !isComparable(b) {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

// isComparable reports whether v's dynamic type can safely be used as
// an operand of ==.
func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// isObjectLike reports whether v is a struct, map, slice or array,
// i.e. a value run() should always re-invoke the callback for (Go has
// no object identity comparison via ==, so structural values are
// treated as always-changed unless the caller used valuesEqual deep
// comparisons at a higher layer, per spec's "object/deep" clause).
func isObjectLike(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Struct, reflect.Array:
		return true
	default:
		return false
	}
}
