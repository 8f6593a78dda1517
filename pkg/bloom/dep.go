// Package bloom implements the reactive core of a component runtime: a
// fine-grained dependency graph (Dep/Watcher), an object/array observer
// that installs reactive accessors on plain values, a hierarchical
// option-merge algebra, and the instance-initialization pipeline that
// ties props/data/computed/watch/provide/inject together.
//
// Rendering, DOM patching and the template compiler's downstream code
// generation are out of scope here; see pkg/bloom/compiler for the HTML
// and text parsers that feed that pipeline.
package bloom

import (
	"sort"
	"sync/atomic"
)

// depIDCounter hands out monotonically increasing Dep identifiers.
var depIDCounter atomic.Uint64

// Dep is a pub/sub node: one per reactive property, plus one per
// observed object or array (held on its Observer, notified on add/
// delete/array-mutation rather than on a single value's write).
//
// Dep is not safe for concurrent use across goroutines; the reactivity
// layer is single-threaded by contract (spec §5).
type Dep struct {
	id   uint64
	subs []*Watcher
}

// NewDep allocates a Dep with the next monotonic id.
func NewDep() *Dep {
	return &Dep{id: depIDCounter.Add(1)}
}

// ID returns the Dep's stable identifier, used to order notification by
// creation order (parents created before children).
func (d *Dep) ID() uint64 { return d.id }

// addSub appends w to the subscriber list if not already present.
func (d *Dep) addSub(w *Watcher) {
	for _, s := range d.subs {
		if s == w {
			return
		}
	}
	d.subs = append(d.subs, w)
}

// removeSub removes w from the subscriber list, if present.
func (d *Dep) removeSub(w *Watcher) {
	for i, s := range d.subs {
		if s == w {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// depend registers this Dep with the currently evaluating Watcher, if
// any. Called from every reactive getter.
func (d *Dep) depend() {
	if target := currentTarget(); target != nil {
		target.addNewDep(d)
	}
}

// notify snapshots the subscriber list and invokes update() on each
// subscriber in ascending-id order, so that watchers created earlier
// (parents) always run before watchers created later (children) when
// both are affected by the same write.
func (d *Dep) notify() {
	subs := make([]*Watcher, len(d.subs))
	copy(subs, d.subs)
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })
	for _, s := range subs {
		s.update()
	}
}

// targetStack is the process-wide "currently evaluating watcher" stack.
// Nested evaluation (a render watcher reading a computed, which itself
// evaluates) pushes and pops correctly because evaluation is strictly
// synchronous (spec §5) — there is never more than one logical thread
// walking this stack at a time.
var targetStack []*Watcher

// pushTarget makes w the active dependency-collection target. w may be
// nil, which is used to evaluate a getter (e.g. a data() factory) with
// dependency collection suppressed.
func pushTarget(w *Watcher) {
	targetStack = append(targetStack, w)
}

// popTarget restores the previous active target.
func popTarget() {
	targetStack = targetStack[:len(targetStack)-1]
}

// currentTarget returns the watcher currently collecting dependencies,
// or nil if none is active.
func currentTarget() *Watcher {
	if len(targetStack) == 0 {
		return nil
	}
	return targetStack[len(targetStack)-1]
}
