package bloom

import "reflect"

// globalBase is the class-level base Options every Extend and
// NewInstance call folds into (spec §6's "Class.options"). It starts
// empty; Mixin replaces it via mergeOptions, RegisterComponent,
// RegisterDirective and RegisterFilter write its registries directly,
// and each of them (and Use) bumps globalBaseVersion so every
// already-extended Component can detect the change and re-seal.
var (
	globalBase        = &Options{merged: true}
	globalBaseVersion int
	installedPlugins  = map[uintptr]bool{}
)

// Plugin mirrors Vue's object-plugin shape: Install receives the
// global base options to extend (e.g. by registering components or
// mixing in behavior) plus whatever arguments Use was called with.
type Plugin interface {
	Install(base *Options, args ...any)
}

// PluginFunc adapts a bare function to the Plugin interface, for the
// "function-form" plugin shorthand (spec §6: "plugin.install(...) or
// plugin(...)").
type PluginFunc func(base *Options, args ...any)

func (f PluginFunc) Install(base *Options, args ...any) { f(base, args...) }

// Use installs plugin exactly once, identified by its underlying
// function/value pointer, mirroring the "idempotent" contract: a
// second Use call with the same plugin is a no-op.
func Use(plugin Plugin, args ...any) {
	key := reflect.ValueOf(plugin).Pointer()
	if installedPlugins[key] {
		return
	}
	installedPlugins[key] = true
	plugin.Install(globalBase, args...)
	globalBaseVersion++
}

// Mixin folds opts into the global base options, visible to every
// subsequently-created instance and, via Component.Options, to
// previously-Extended components as well.
func Mixin(opts *Options) {
	globalBase = mergeOptions(globalBase, opts)
	globalBaseVersion++
}

// Component is the Go analogue of a Vue subclass returned by extend():
// a cache of sealed (fully merged) options that re-merges lazily
// whenever the global base has changed since it was last sealed, so a
// mixin registered after Extend was called still reaches this
// component (spec §4.4's "diff is reapplied... so late global mixins
// reach previously-defined subclasses").
type Component struct {
	extendOptions *Options
	sealed        *Options
	sealedVersion int
}

// Extend returns a new Component wrapping extendOptions, sealed
// against the current global base.
func Extend(extendOptions *Options) *Component {
	c := &Component{extendOptions: extendOptions}
	c.reseal()
	return c
}

func (c *Component) reseal() {
	c.sealed = mergeOptions(globalBase, c.extendOptions)
	c.sealedVersion = globalBaseVersion
}

// Options returns the component's sealed options, re-merging first if
// the global base has changed since the last seal.
func (c *Component) Options() *Options {
	if c.sealedVersion != globalBaseVersion {
		c.reseal()
	}
	return c.sealed
}

// RegisterComponent installs name into the global component registry,
// wrapping a plain *Options definition through Extend first (spec §6:
// "object-form components are passed through extend").
func RegisterComponent(name string, def *Options) *Component {
	comp := Extend(def)
	if globalBase.Components == nil {
		globalBase.Components = make(map[string]*Options)
	}
	globalBase.Components[name] = comp.Options()
	globalBaseVersion++
	return comp
}

// RegisterDirective installs a directive into the global registry.
func RegisterDirective(name string, def DirectiveDef) {
	if globalBase.Directives == nil {
		globalBase.Directives = make(map[string]DirectiveDef)
	}
	globalBase.Directives[name] = def
	globalBaseVersion++
}

// RegisterFilter installs a filter into the global registry.
func RegisterFilter(name string, fn FilterFunc) {
	if globalBase.Filters == nil {
		globalBase.Filters = make(map[string]FilterFunc)
	}
	globalBase.Filters[name] = fn
	globalBaseVersion++
}

// GlobalSet mirrors $set at class scope for a ReactiveObject.
func GlobalSet(target *ReactiveObject, key string, value any) { target.Set(key, value) }

// GlobalDelete mirrors $delete at class scope for a ReactiveObject.
func GlobalDelete(target *ReactiveObject, key string) { target.Delete(key) }

// Observable wraps a plain map as a reactive object outside of any
// instance, the class-scope analogue of Vue.observable.
func Observable(m map[string]any) *ReactiveObject {
	ro := NewObject(m)
	Observe(ro, true)
	return ro
}

// nextTickQueue holds callbacks registered via NextTick, flushed by
// Flush immediately after the watcher queue — a Go program has no
// microtask queue to piggyback on, so NextTick callbacks are run at
// the end of the same synchronous Flush() call instead.
var nextTickQueue []func()

// NextTick schedules cb to run after the current (or next) Flush
// completes, mirroring Vue.nextTick's "after the DOM update" contract
// now that there is no DOM: the contract becomes "after the update
// queue this call was made within has drained."
func NextTick(cb func()) {
	nextTickQueue = append(nextTickQueue, cb)
}

func drainNextTick() {
	for len(nextTickQueue) > 0 {
		cbs := nextTickQueue
		nextTickQueue = nil
		for _, cb := range cbs {
			cb()
		}
	}
}
