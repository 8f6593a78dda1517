package bloom

import "reflect"

// mergeOptions folds child.Extends and every entry of child.Mixins
// into parent, then reduces parent against child per the per-key
// strategy table (spec §4.4). A child already marked merged (the
// `_base` sentinel) is returned unchanged, avoiding re-folding an
// already-resolved record — this is what lets Extend's sealed-options
// cache short-circuit repeated instantiation of the same component.
func mergeOptions(parent, child *Options) *Options {
	if child == nil {
		return parent
	}
	if child.merged {
		return child
	}
	if parent == nil {
		parent = &Options{}
	}

	base := parent
	if child.Extends != nil {
		base = mergeOptions(base, child.Extends)
	}
	for _, m := range child.Mixins {
		base = mergeOptions(base, m)
	}

	merged := &Options{merged: true}
	merged.Name = child.Name
	if merged.Name == "" {
		merged.Name = base.Name
	}

	merged.Data = mergeThunk(base.Data, child.Data)
	merged.Provide = mergeThunk(base.Provide, child.Provide)
	merged.Hooks = mergeHooks(base.Hooks, child.Hooks)
	merged.Components = mergeOptionsRegistry(base.Components, child.Components)
	merged.Directives = mergeDirectives(base.Directives, child.Directives)
	merged.Filters = mergeFilters(base.Filters, child.Filters)
	merged.Watch = mergeWatch(base.Watch, child.Watch)
	merged.Props = mergePropsShallow(base.Props, child.Props)
	merged.Methods = mergeMethodsShallow(base.Methods, child.Methods)
	merged.Inject = mergeInjectShallow(base.Inject, child.Inject)
	merged.Computed = mergeComputedShallow(base.Computed, child.Computed)

	return merged
}

// mergeThunk implements the data/provide strategy: a thunk that, when
// invoked, calls both sides (if present) and deep-merges child's map
// over parent's.
func mergeThunk(parent, child func(vm *Instance) map[string]any) func(vm *Instance) map[string]any {
	switch {
	case parent == nil:
		return child
	case child == nil:
		return parent
	default:
		return func(vm *Instance) map[string]any {
			p := parent(vm)
			c := child(vm)
			return deepMergeMaps(p, c)
		}
	}
}

// deepMergeMaps merges b over a: for any key present as a
// map[string]any on both sides the merge recurses; otherwise b's value
// wins outright, matching Vue's mergeData behavior.
func deepMergeMaps(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if av, ok := out[k]; ok {
			if am, amok := av.(map[string]any); amok {
				if bm, bmok := v.(map[string]any); bmok {
					out[k] = deepMergeMaps(am, bm)
					continue
				}
			}
		}
		out[k] = v
	}
	return out
}

// hookIdentity returns a comparable key for a LifecycleHook so
// concatenated parent/child hook lists can be de-duplicated while
// preserving order (spec §4.4's "concatenate... deduplicate preserving
// order").
func hookIdentity(h LifecycleHook) uintptr {
	return reflect.ValueOf(h).Pointer()
}

func mergeHooks(parent, child map[string][]LifecycleHook) map[string][]LifecycleHook {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string][]LifecycleHook, len(parent)+len(child))
	for name, hooks := range parent {
		out[name] = append(out[name], hooks...)
	}
	for name, hooks := range child {
		existing := out[name]
		seen := make(map[uintptr]bool, len(existing))
		for _, h := range existing {
			seen[hookIdentity(h)] = true
		}
		for _, h := range hooks {
			id := hookIdentity(h)
			if seen[id] {
				continue
			}
			seen[id] = true
			existing = append(existing, h)
		}
		out[name] = existing
	}
	return out
}

// mergeOptionsRegistry overlays child's component registry on top of
// parent's — a flat-map stand-in for "parent as prototype chain, child
// entries own-merged on top" (spec §4.4), since Go has no prototype
// chains; a lookup miss in child simply falls through because the
// parent's entries were copied in first. Names failing the reserved-
// tag grammar are dropped with a warning.
func mergeOptionsRegistry(parent, child map[string]*Options) map[string]*Options {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string]*Options, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		if !isValidComponentName(k) {
			devWarnGlobal("component name %q is reserved or not a valid custom-element name; ignoring registration", k)
			continue
		}
		out[k] = v
	}
	return out
}

func mergeDirectives(parent, child map[string]DirectiveDef) map[string]DirectiveDef {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string]DirectiveDef, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}

func mergeFilters(parent, child map[string]FilterFunc) map[string]FilterFunc {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string]FilterFunc, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}

// mergeWatch concatenates per-key entry lists: parent's entries first,
// then child's, so earlier-registered (ancestor) watchers fire before
// later ones.
func mergeWatch(parent, child map[string][]WatchDef) map[string][]WatchDef {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string][]WatchDef, len(parent)+len(child))
	for k, v := range parent {
		out[k] = append(out[k], v...)
	}
	for k, v := range child {
		out[k] = append(out[k], v...)
	}
	return out
}

func mergePropsShallow(parent, child map[string]PropDef) map[string]PropDef {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string]PropDef, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}

func mergeMethodsShallow(parent, child map[string]MethodFunc) map[string]MethodFunc {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string]MethodFunc, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}

func mergeInjectShallow(parent, child map[string]InjectDef) map[string]InjectDef {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string]InjectDef, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}

func mergeComputedShallow(parent, child map[string]ComputedDef) map[string]ComputedDef {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string]ComputedDef, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}
