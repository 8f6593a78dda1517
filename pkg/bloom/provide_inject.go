package bloom

import (
	"fmt"

	"github.com/bloomui/bloom/internal/metrics"
)

// InjectDef is one normalized `inject` option entry. The shorthand
// array-of-strings form (`inject: []string{"theme"}`) expands to
// InjectDef{From: name} with no default, during option normalization.
type InjectDef struct {
	From      string
	Default   any
	DefaultFn func(vm *Instance) any
	HasDefault bool
}

// resolveInject walks the instance's ancestor chain looking for each
// declared key's provider, caching the result so repeated lookups (a
// component re-injecting on every render) are O(1) after the first
// walk — grounded on the teacher's tree-walk-with-cache `inject()`.
// Per spec §4.5, inject resolves before props/data, so providers seen
// here are always the parent's already-finalized `provides` map.
func resolveInject(vm *Instance, defs map[string]InjectDef) map[string]any {
	result := make(map[string]any, len(defs))
	for name, def := range defs {
		key := def.From
		if key == "" {
			key = name
		}
		if cached, ok := vm.injectCache[key]; ok {
			result[name] = cached
			continue
		}
		value, depth, found := lookupProvideDepth(vm.parent, key)
		metrics.Global().RecordInjectDepth(depth)
		if !found {
			switch {
			case def.DefaultFn != nil:
				value = def.DefaultFn(vm)
			case def.HasDefault:
				value = def.Default
			default:
				devWarn(vm, "%v: %q", ErrUnknownInject, key)
			}
		}
		vm.injectCache[key] = value
		result[name] = value
	}
	return result
}

func lookupProvide(vm *Instance, key string) (any, bool) {
	v, _, found := lookupProvideDepth(vm, key)
	return v, found
}

// lookupProvideDepth walks the ancestor chain like lookupProvide but
// also reports how many hops it took, fed to metrics so a deeply
// nested inject chain shows up as a latency signal.
func lookupProvideDepth(vm *Instance, key string) (any, int, bool) {
	depth := 0
	for cur := vm; cur != nil; cur = cur.parent {
		if cur.provides != nil {
			if v, ok := cur.provides[key]; ok {
				return v, depth, true
			}
		}
		depth++
	}
	return nil, depth, false
}

// ProvideKey is a type-safe handle for provide/inject, mirroring the
// teacher's ProvideKey[T] wrapper so call sites get compile-time type
// checking instead of casting a bare string-keyed any.
type ProvideKey[T any] struct{ name string }

// NewProvideKey creates a typed provide/inject key.
func NewProvideKey[T any](name string) ProvideKey[T] { return ProvideKey[T]{name: name} }

// Provide records value under key in vm's own provides map, visible to
// every descendant via Inject/resolveInject.
func Provide[T any](vm *Instance, key ProvideKey[T], value T) {
	if vm.provides == nil {
		vm.provides = make(map[string]any)
	}
	vm.provides[key.name] = value
}

// Inject retrieves key's value from the nearest ancestor that provided
// it, or defaultValue if none did.
func Inject[T any](vm *Instance, key ProvideKey[T], defaultValue T) T {
	if v, ok := lookupProvide(vm, key.name); ok {
		if typed, ok := v.(T); ok {
			return typed
		}
		devWarn(vm, "inject %q: provided value is not of the expected type", key.name)
	}
	return defaultValue
}

func (k ProvideKey[T]) String() string { return fmt.Sprintf("ProvideKey(%s)", k.name) }
