package bloom

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

var instanceIDCounter atomic.Uint64

// Instance is a component's runtime object (spec §4.5's "Instance"):
// it owns $options (already merged), the props/data reactive objects,
// the computed watchers, every watcher it created (torn down on
// destroy), its event bus, and its place in the component tree.
// Observers are shared with whoever else holds the same observed
// value; Deps are owned by whichever accessor/observer created them —
// Instance itself owns none directly.
type Instance struct {
	id     uint64
	name   string
	opts   *Options
	parent *Instance
	root   *Instance

	children []*Instance

	props *ReactiveObject
	data  *ReactiveObject

	computed map[string]*computedEntry
	methods  map[string]MethodFunc

	watchers []*Watcher

	handlers map[string][]handlerEntry

	provides    map[string]any
	injectCache map[string]any

	// injectedKeys marks which vm.data keys were populated from resolved
	// inject values (step 7) rather than the data() factory, so Set can
	// warn on a direct write the way Vue's initInjections customSetter
	// does for inject-origin keys.
	injectedKeys map[string]bool

	errorCapturedHooks []errorCapturedHook

	// warnLimiter rate-limits devWarn for this instance so a
	// misbehaving template re-triggering the same warning every render
	// doesn't flood the log (spec's development-warning contract never
	// specifies a volume bound; this is the ambient operational
	// safeguard every long-lived dev server needs in practice).
	warnLimiter *rate.Limiter

	destroyed bool
}

// InstanceOption configures NewInstance beyond the merged Options
// record — currently only the dev-warning rate limiter, so tests can
// install an unlimited one.
type InstanceOption func(*Instance)

// WithWarnLimiter overrides the default dev-warning rate limiter.
func WithWarnLimiter(l *rate.Limiter) InstanceOption {
	return func(vm *Instance) { vm.warnLimiter = l }
}

// NewInstance builds and initializes an Instance from an already
// fully-merged Options record (the caller resolves extends/mixins via
// mergeOptions or Component.Options beforehand), following spec
// §4.5's ordering exactly: beforeCreate, inject, props, methods, data,
// computed, watch, provide, created.
func NewInstance(parent *Instance, opts *Options, propsData map[string]any, instOpts ...InstanceOption) *Instance {
	vm := &Instance{
		id:          instanceIDCounter.Add(1),
		name:        opts.Name,
		opts:        opts,
		parent:      parent,
		injectCache: make(map[string]any),
		warnLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
	for _, o := range instOpts {
		o(vm)
	}
	if parent != nil {
		parent.children = append(parent.children, vm)
		vm.root = parent.root
	} else {
		vm.root = vm
	}

	vm.fireHook(HookBeforeCreate)

	// Step 7: inject, walking $parent before props/data exist yet.
	// Suppressed from re-observing anything it touches — it only reads
	// already-established provider values.
	prev := ToggleObserve(false)
	injectVals := resolveInject(vm, opts.Inject)
	ToggleObserve(prev)

	// Step 8a: props. On a non-root instance the values a parent
	// passed down are already reactive; shouldObserve is suppressed so
	// defineReactiveCell doesn't mint a second Dep for them.
	resolvedProps, warnings := resolveProps(vm.name, opts.Props, propsData, vm)
	for _, w := range warnings {
		devWarn(vm, "%v", w)
	}
	if parent != nil {
		prev := ToggleObserve(false)
		vm.props = NewObject(resolvedProps)
		Observe(vm.props, false)
		ToggleObserve(prev)
	} else {
		vm.props = NewObject(resolvedProps)
		Observe(vm.props, true)
	}

	// Step 8b: methods, bound to vm; collisions against props/reserved
	// names are a dev warning, later definition (the method) wins.
	vm.methods = make(map[string]MethodFunc, len(opts.Methods))
	for name, fn := range opts.Methods {
		if isReservedKey(name) {
			devWarn(vm, "method %q conflicts with a reserved instance member", name)
			continue
		}
		if vm.props.Has(name) {
			devWarn(vm, "method %q shadows a prop of the same name", name)
		}
		vm.methods[name] = fn
	}

	// Step 8c: data, via factory with dependency collection disabled.
	dataVals := map[string]any{}
	if opts.Data != nil {
		pushTarget(nil)
		dataVals = opts.Data(vm)
		popTarget()
	}
	vm.injectedKeys = make(map[string]bool, len(injectVals))
	for k := range injectVals {
		if _, exists := dataVals[k]; !exists {
			dataVals[k] = injectVals[k]
			vm.injectedKeys[k] = true
		}
	}
	vm.data = NewObject(dataVals)
	Observe(vm.data, parent == nil)

	// Step 8d: computed, each a lazy watcher.
	initComputed(vm, opts.Computed)

	// Step 8e: watch.
	for key, defs := range opts.Watch {
		for _, def := range defs {
			d := def
			k := key
			vm.Watch(k, func(newVal, oldVal any) { d.Handler(vm, newVal, oldVal) }, WatcherOptions{
				Deep: d.Deep, Sync: d.Sync, Immediate: d.Immediate, User: true,
			})
		}
	}

	// Step 9: provide, evaluated after data/props are in place.
	if opts.Provide != nil {
		vm.provides = opts.Provide(vm)
	}

	vm.fireHook(HookCreated)
	return vm
}

// Get implements the duck-typed property-path accessor
// compilePathGetter relies on, in precedence order computed > data >
// methods > props — the same order spec §4.5's "later definition
// wins" rule implies, since computed (step 8d) is installed after data
// (8c), which is installed after methods (8b), which is installed
// after props (8a).
func (vm *Instance) Get(key string) (any, bool) {
	if _, ok := vm.computed[key]; ok {
		return vm.getComputed(key)
	}
	if v, ok := vm.data.Get(key); ok {
		return v, true
	}
	if fn, ok := vm.methods[key]; ok {
		bound := fn
		return MethodFunc(func(_ *Instance, args ...any) any { return bound(vm, args...) }), true
	}
	if v, ok := vm.props.Get(key); ok {
		return v, true
	}
	return nil, false
}

// Set writes key. Computed properties route through setComputed; data
// keys write through the reactive object; props and methods are
// read-only from the instance's perspective and only warn.
func (vm *Instance) Set(key string, value any) {
	if _, ok := vm.computed[key]; ok {
		vm.setComputed(key, value)
		return
	}
	if vm.data.Has(key) {
		if vm.injectedKeys[key] {
			devWarn(vm, "avoid mutating an injected value directly (key %q on instance %q); injected values should be treated as read-only", key, vm.name)
		}
		vm.data.Set(key, value)
		return
	}
	if vm.props.Has(key) {
		devWarn(vm, "cannot mutate prop %q directly on instance %q", key, vm.name)
		return
	}
	devWarn(vm, "cannot set undeclared key %q; use instance.SetDynamic to add a new reactive property", key)
}

// SetDynamic adds a brand-new reactive key to data (spec §4.3's
// Vue.set contract applied to the instance's own data object).
func (vm *Instance) SetDynamic(key string, value any) {
	vm.data.Set(key, value)
}

// Delete removes a dynamically-added data key (Vue.delete on the
// instance's data object).
func (vm *Instance) Delete(key string) {
	vm.data.Delete(key)
}

// Watch registers a user watcher over a dotted property path,
// returning a teardown function ($watch's return value in Vue).
func (vm *Instance) Watch(expr string, cb WatcherCallback, opts WatcherOptions) func() {
	opts.User = true
	w := NewExprWatcher(vm, expr, cb, opts)
	vm.watchers = append(vm.watchers, w)
	if opts.Immediate {
		w.invokeCallback(w.Value(), nil)
	}
	return w.Teardown
}

// WatchFunc registers a user watcher over an arbitrary getter rather
// than a dotted path.
func (vm *Instance) WatchFunc(getter func() any, cb WatcherCallback, opts WatcherOptions) func() {
	opts.User = true
	w := NewWatcher(vm, getter, cb, opts)
	vm.watchers = append(vm.watchers, w)
	if opts.Immediate {
		w.invokeCallback(w.Value(), nil)
	}
	return w.Teardown
}

// removeWatcher drops w from the instance's owned-watcher list; called
// from Watcher.Teardown.
func (vm *Instance) removeWatcher(w *Watcher) {
	for i, owned := range vm.watchers {
		if owned == w {
			vm.watchers = append(vm.watchers[:i], vm.watchers[i+1:]...)
			return
		}
	}
}

// OnErrorCaptured registers an errorCaptured hook on vm.
func (vm *Instance) OnErrorCaptured(hook errorCapturedHook) {
	vm.errorCapturedHooks = append(vm.errorCapturedHooks, hook)
}

// Destroy fires beforeUnmount/unmounted, tears down every owned
// watcher (unsubscribing them from all deps), and detaches vm from its
// parent's children list.
func (vm *Instance) Destroy() {
	if vm.destroyed {
		return
	}
	vm.fireHook(HookBeforeUnmount)
	owned := make([]*Watcher, len(vm.watchers))
	copy(owned, vm.watchers)
	for _, w := range owned {
		w.Teardown()
	}
	if vm.parent != nil {
		for i, c := range vm.parent.children {
			if c == vm {
				vm.parent.children = append(vm.parent.children[:i], vm.parent.children[i+1:]...)
				break
			}
		}
	}
	vm.destroyed = true
	vm.fireHook(HookUnmounted)
}

// ID returns the instance's unique, monotonically increasing id.
func (vm *Instance) ID() uint64 { return vm.id }

// Name returns the component's declared name, or "" if unnamed.
func (vm *Instance) Name() string { return vm.name }

// Parent returns the owning parent instance, or nil for the root.
func (vm *Instance) Parent() *Instance { return vm.parent }

// Root returns the tree's root instance (vm itself if vm is the root).
func (vm *Instance) Root() *Instance { return vm.root }

// Children returns a snapshot of vm's direct children.
func (vm *Instance) Children() []*Instance {
	out := make([]*Instance, len(vm.children))
	copy(out, vm.children)
	return out
}
