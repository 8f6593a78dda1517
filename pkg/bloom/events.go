package bloom

import (
	"reflect"
	"strings"
)

// EventHandler receives whatever arguments $emit was called with.
type EventHandler func(args ...any)

type handlerEntry struct {
	fn       EventHandler
	original EventHandler
}

func funcPointer(fn EventHandler) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

// On registers fn for event, appended after any existing handlers
// (spec §4.8: "registration appends").
func (vm *Instance) On(event string, fn EventHandler) {
	if vm.handlers == nil {
		vm.handlers = make(map[string][]handlerEntry)
	}
	vm.handlers[event] = append(vm.handlers[event], handlerEntry{fn: fn, original: fn})
}

// Once registers fn wrapped in a self-removing shim: the shim removes
// itself from the handler list, then calls fn.
func (vm *Instance) Once(event string, fn EventHandler) {
	var shim EventHandler
	shim = func(args ...any) {
		vm.Off(event, shim)
		fn(args...)
	}
	if vm.handlers == nil {
		vm.handlers = make(map[string][]handlerEntry)
	}
	vm.handlers[event] = append(vm.handlers[event], handlerEntry{fn: shim, original: fn})
}

// Off implements the three-arity $off contract (spec §4.8):
//
//	Off()                — clears every event's handlers.
//	Off(event)            — clears all handlers for event.
//	Off(event, fn)        — removes entries whose stored fn or original
//	                        function pointer matches fn (so removing by
//	                        the original handler also detaches a $once
//	                        shim registered for it).
func (vm *Instance) Off(args ...any) {
	switch len(args) {
	case 0:
		vm.handlers = make(map[string]([]handlerEntry))
	case 1:
		event, _ := args[0].(string)
		delete(vm.handlers, event)
	case 2:
		event, _ := args[0].(string)
		fn, ok := args[1].(EventHandler)
		if !ok {
			return
		}
		target := funcPointer(fn)
		entries := vm.handlers[event]
		kept := entries[:0:0]
		for _, e := range entries {
			if funcPointer(e.fn) == target || funcPointer(e.original) == target {
				continue
			}
			kept = append(kept, e)
		}
		vm.handlers[event] = kept
	}
}

// Emit snapshots event's handler list before invoking any of them (so
// a handler that registers or removes another handler mid-dispatch
// never mutates the list it is iterating), calling each through a
// panic-trapping invoker that routes recovered panics to the
// instance's error pipeline rather than crashing the dispatch loop.
// When event has no handlers but a registered name matches it
// case-insensitively, a development warning names that event (spec
// §4.8).
func (vm *Instance) Emit(event string, args ...any) {
	entries, ok := vm.handlers[event]
	if !ok {
		vm.warnCaseMismatch(event)
		return
	}
	snapshot := make([]handlerEntry, len(entries))
	copy(snapshot, entries)
	for _, e := range snapshot {
		vm.invokeHandler(e.fn, event, args)
	}
}

func (vm *Instance) invokeHandler(fn EventHandler, event string, args []any) {
	defer func() {
		if r := recover(); r != nil {
			reportUserError(vm, r, "event handler for \""+event+"\"")
		}
	}()
	fn(args...)
}

func (vm *Instance) warnCaseMismatch(event string) {
	lower := strings.ToLower(event)
	for name := range vm.handlers {
		if name != event && strings.ToLower(name) == lower {
			devWarn(vm, "event %q has no handlers, but %q does; event names are case-sensitive", event, name)
			return
		}
	}
}
