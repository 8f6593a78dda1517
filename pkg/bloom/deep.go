package bloom

import "reflect"

// traverseDeep walks the full value graph reachable from value,
// touching every nested reactive Dep it finds so the currently active
// target (if any) depends on the whole tree rather than just its root
// — the behavior a Watcher configured with Deep: true needs (spec
// §4.2). A seen-set of Dep ids guards against cycles (a child
// referencing an ancestor, or two siblings sharing a nested object).
func traverseDeep(value any) {
	traverseSeen(value, make(map[uint64]bool))
}

func traverseSeen(value any, seen map[uint64]bool) {
	switch v := value.(type) {
	case *ReactiveObject:
		if v.ob != nil {
			if seen[v.ob.dep.ID()] {
				return
			}
			seen[v.ob.dep.ID()] = true
			v.ob.dep.depend()
		}
		for _, k := range v.keyOrder {
			c := v.cells[k]
			if c.dep != nil {
				c.dep.depend()
			}
			traverseSeen(c.value, seen)
		}
	case *ReactiveArray:
		if v.ob != nil {
			if seen[v.ob.dep.ID()] {
				return
			}
			seen[v.ob.dep.ID()] = true
			v.ob.dep.depend()
		}
		for _, it := range v.items {
			traverseSeen(it, seen)
		}
	default:
		// Plain values (including un-observed maps/slices/structs)
		// carry no Dep to touch; nothing further to do.
	}
}

// DeepEqual reports whether a and b are structurally identical,
// unwrapping ReactiveObject/ReactiveArray down to their plain values
// first so a reactive and a non-reactive copy of the same data compare
// equal. Watcher change detection does not call it: Watcher.run
// compares with valuesEqual.
func DeepEqual(a, b any) bool {
	return reflect.DeepEqual(unwrap(a), unwrap(b))
}

// unwrap converts a ReactiveObject/ReactiveArray (recursively) back
// into a plain map[string]any/[]any for comparison or serialization.
func unwrap(v any) any {
	switch t := v.(type) {
	case *ReactiveObject:
		m := make(map[string]any, len(t.keyOrder))
		for _, k := range t.keyOrder {
			m[k] = unwrap(t.cells[k].value)
		}
		return m
	case *ReactiveArray:
		out := make([]any, len(t.items))
		for i, it := range t.items {
			out[i] = unwrap(it)
		}
		return out
	default:
		return v
	}
}

// HasChanged reports whether newVal differs from oldVal for the
// purposes of a shallow (non-deep) watcher: NaN-aware identity for
// scalars, always-changed for object-like values, exactly mirroring
// valuesEqual/isObjectLike's combined use in Watcher.run.
func HasChanged(oldVal, newVal any) bool {
	return !valuesEqual(oldVal, newVal) || isObjectLike(newVal)
}
