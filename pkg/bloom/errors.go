package bloom

import (
	"errors"
	"fmt"
	"log"
)

// Sentinel errors describing malformed option records and instance
// construction failures (spec §7).
var (
	ErrInvalidProps    = errors.New("bloom: invalid prop definition")
	ErrMissingRequired = errors.New("bloom: required prop missing")
	ErrCircularMixin   = errors.New("bloom: circular extends/mixin chain detected")
	ErrUnknownInject   = errors.New("bloom: inject key not provided by any ancestor")
)

// PropsValidationError aggregates every prop validation failure found
// while coercing a single instance's props, so a caller sees every
// problem at once rather than only the first (grounded on the
// teacher's aggregated-Unwrap pattern).
type PropsValidationError struct {
	ComponentName string
	Errors        []error
}

func (e *PropsValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("bloom: props validation failed for %q: %v", e.ComponentName, e.Errors[0])
	}
	return fmt.Sprintf("bloom: props validation failed for %q: %d errors", e.ComponentName, len(e.Errors))
}

func (e *PropsValidationError) Unwrap() []error { return e.Errors }

// WatcherPanicError wraps a panic recovered from a getter or user
// watcher callback, preserving which watcher and expression were
// running when it happened.
type WatcherPanicError struct {
	WatcherID  uint64
	Expr       string
	PanicValue any
}

func (e *WatcherPanicError) Error() string {
	return fmt.Sprintf("bloom: panic in watcher %d (%q): %v", e.WatcherID, e.Expr, e.PanicValue)
}

// ErrorReporter is the sink user-function and watcher panics are routed
// to. The bloom package never imports an observability backend
// directly — a host binary wires a concrete implementation (e.g. a
// Sentry-backed reporter) via SetErrorReporter, keeping this package
// free of any third-party logging/telemetry dependency.
type ErrorReporter interface {
	ReportError(err error, context map[string]any)
	ReportPanic(recovered any, context map[string]any)
}

var globalReporter ErrorReporter

// SetErrorReporter installs the process-wide error reporter. Passing
// nil restores the default (log-only) behavior.
func SetErrorReporter(r ErrorReporter) { globalReporter = r }

// reportWatcherPanic is called from Watcher.evaluate's recover handler.
func reportWatcherPanic(w *Watcher, recovered any) {
	err := &WatcherPanicError{WatcherID: w.id, Expr: w.expr, PanicValue: recovered}
	ctx := map[string]any{"watcherID": w.id, "expr": w.expr}
	if w.vm != nil {
		ctx["component"] = w.vm.name
	}
	if globalReporter != nil {
		globalReporter.ReportPanic(recovered, ctx)
	} else {
		log.Printf("bloom: %v", err)
	}
}

// reportUserError routes a recovered panic from user code (a $watch
// callback, a lifecycle hook, an event handler) either to the
// instance's errorCaptured chain (if any hook returns false, the error
// stops propagating further up) or, failing that, to the global
// reporter/log.
func reportUserError(vm *Instance, recovered any, info string) {
	err := fmt.Errorf("bloom: error in %s: %v", info, recovered)
	if vm != nil && vm.dispatchErrorCaptured(err, info) {
		return
	}
	ctx := map[string]any{"info": info}
	if vm != nil {
		ctx["component"] = vm.name
	}
	if globalReporter != nil {
		globalReporter.ReportError(err, ctx)
	} else {
		log.Printf("%v", err)
	}
}

// devWarn emits a development-mode warning scoped to a single
// instance, rate-limited by the instance's warnLimiter (NewInstance
// installs one event per second with a burst of 5 unless
// WithWarnLimiter replaces it) to avoid flooding the log when a
// misbehaving template re-triggers the same warning every render.
func devWarn(vm *Instance, format string, args ...any) {
	if vm != nil && vm.warnLimiter != nil && !vm.warnLimiter.Allow() {
		return
	}
	name := "<anonymous>"
	if vm != nil {
		name = vm.name
	}
	log.Printf("[bloom] warn (%s): %s", name, fmt.Sprintf(format, args...))
}

// devWarnGlobal emits a warning not scoped to any instance (e.g. a
// scheduler-level infinite-loop report).
func devWarnGlobal(format string, args ...any) {
	log.Printf("[bloom] warn: %s", fmt.Sprintf(format, args...))
}
