package bloom

// LifecycleHook is a hook function that receives the owning instance
// as its only argument (consistent with how methods are bound during
// initialization).
type LifecycleHook func(vm *Instance)

// Recognized lifecycle hook names (spec §4.5 step 6/10 plus the
// render/mount/destroy hooks $mount's out-of-scope glue would fire).
// The merge strategy (merge.go) treats any of these identically:
// concatenate parent-then-child arrays, de-duplicating by function
// identity while preserving order.
const (
	HookBeforeCreate   = "beforeCreate"
	HookCreated        = "created"
	HookBeforeMount    = "beforeMount"
	HookMounted        = "mounted"
	HookBeforeUpdate   = "beforeUpdate"
	HookUpdated        = "updated"
	HookBeforeUnmount  = "beforeUnmount"
	HookUnmounted      = "unmounted"
	HookErrorCaptured  = "errorCaptured"
)

// fireHook runs every registered hook for name in registration order.
// Each invocation is wrapped so a panicking hook is reported through
// the instance's error pipeline instead of aborting the remaining
// hooks or the caller (construction must still complete even if a
// user's `created` hook panics).
func (vm *Instance) fireHook(name string) {
	for _, hook := range vm.opts.Hooks[name] {
		vm.runHookSafely(name, hook)
	}
}

func (vm *Instance) runHookSafely(name string, hook LifecycleHook) {
	defer func() {
		if r := recover(); r != nil {
			reportUserError(vm, r, "lifecycle hook \""+name+"\"")
		}
	}()
	hook(vm)
}

// errorCapturedHook receives (err, info) and returns false to stop the
// error from propagating further up the ancestor chain (spec §7's
// errorCaptured chain).
type errorCapturedHook func(vm *Instance, err error, info string) bool

// dispatchErrorCaptured walks from vm up through $parent, calling each
// instance's registered errorCaptured hooks until one returns false
// (handled) or the chain is exhausted.
func (vm *Instance) dispatchErrorCaptured(err error, info string) bool {
	for cur := vm; cur != nil; cur = cur.parent {
		for _, hook := range cur.errorCapturedHooks {
			if !hook(cur, err, info) {
				return true
			}
		}
	}
	return false
}
