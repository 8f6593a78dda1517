package bloom

// ComputedDef is a normalized `computed` option entry: always a getter,
// plus an optional setter for the rare writable computed (spec §4.6).
// The shorthand `computed: {full: func(vm) any}` form is written
// directly as ComputedDef{Get: full}; no normalization step builds it.
type ComputedDef struct {
	Get func(vm *Instance) any
	Set func(vm *Instance, value any)
}

// computedEntry pairs a ComputedDef with the lazy Watcher backing its
// cache, grounded on the teacher's Computed[T]'s dirty-flag
// double-checked-lock laziness — reduced here to the single-threaded
// dirty/evaluate cycle Watcher already implements.
type computedEntry struct {
	def     ComputedDef
	watcher *Watcher
}

// initComputed builds one lazy Watcher per declared computed property.
// Called during instance initialization after data, before watch
// (spec §4.5).
func initComputed(vm *Instance, defs map[string]ComputedDef) {
	vm.computed = make(map[string]*computedEntry, len(defs))
	for name, def := range defs {
		d := def
		w := NewWatcher(vm, func() any { return d.Get(vm) }, nil, WatcherOptions{Lazy: true})
		vm.computed[name] = &computedEntry{def: d, watcher: w}
	}
}

// getComputed implements spec §4.6's read path: evaluate only if
// dirty, then — if a watcher is currently collecting dependencies —
// have it depend on every dep the computed's own watcher collected,
// so outer watchers track the computed's inputs rather than the
// computed itself.
func (vm *Instance) getComputed(name string) (any, bool) {
	entry, ok := vm.computed[name]
	if !ok {
		return nil, false
	}
	entry.watcher.Evaluate()
	if currentTarget() != nil {
		entry.watcher.DependOnAll()
	}
	return entry.watcher.Value(), true
}

// setComputed implements the writable-computed path: if the user
// supplied a setter it runs; otherwise the write is dropped with a
// development warning (spec §4.6).
func (vm *Instance) setComputed(name string, value any) {
	entry, ok := vm.computed[name]
	if !ok {
		return
	}
	if entry.def.Set == nil {
		devWarn(vm, "computed property %q has no setter; write ignored", name)
		return
	}
	entry.def.Set(vm, value)
}
