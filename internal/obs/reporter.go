// Package obs provides the error-reporting backends an Instance's
// global error reporter hook (bloom.SetErrorReporter) can be wired to:
// a plain-log console reporter for local development and a
// Sentry-backed reporter for anything long-lived, plus a small
// breadcrumb trail each report carries along (grounded on the
// teacher's observability/reporter.go ErrorContext shape, renamed from
// handler-panic vocabulary to the watcher/lifecycle-error vocabulary
// this runtime actually reports).
package obs

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// Breadcrumb is one entry in a reporter's rolling trail of recent
// events, attached to the next error/panic report for context.
type Breadcrumb struct {
	Message   string
	Category  string
	Timestamp time.Time
	Data      map[string]any
}

// ErrorContext is the structured payload passed alongside a reported
// error: a unique EventID (so a user can correlate a log line with a
// Sentry issue), the originating component, and whatever breadcrumbs
// were recorded before the failure.
type ErrorContext struct {
	EventID     string
	Component   string
	Timestamp   time.Time
	Tags        map[string]string
	Extra       map[string]any
	Breadcrumbs []Breadcrumb
}

// Reporter is the interface bloom.SetErrorReporter expects; bloom
// itself only depends on the two-method shape (ReportError/
// ReportPanic), so any Reporter here satisfies it structurally without
// bloom importing this package.
type Reporter interface {
	ReportError(err error, context map[string]any)
	ReportPanic(recovered any, context map[string]any)
	Flush(timeout time.Duration) bool
}

// breadcrumbTrail is shared plumbing between reporter
// implementations: a capped, mutex-guarded ring of recent breadcrumbs.
type breadcrumbTrail struct {
	mu    sync.Mutex
	items []Breadcrumb
	cap   int
}

func newBreadcrumbTrail(capacity int) *breadcrumbTrail {
	return &breadcrumbTrail{cap: capacity}
}

func (t *breadcrumbTrail) add(b Breadcrumb) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, b)
	if len(t.items) > t.cap {
		t.items = t.items[len(t.items)-t.cap:]
	}
}

func (t *breadcrumbTrail) snapshot() []Breadcrumb {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Breadcrumb, len(t.items))
	copy(out, t.items)
	return out
}

func newEventID() string { return uuid.New().String() }

// ConsoleReporter writes errors/panics to the standard logger. It is
// the default choice for `bloomdemo` when no Sentry DSN is configured.
type ConsoleReporter struct {
	trail *breadcrumbTrail
}

// NewConsoleReporter builds a ConsoleReporter keeping the last
// trailLen breadcrumbs.
func NewConsoleReporter(trailLen int) *ConsoleReporter {
	return &ConsoleReporter{trail: newBreadcrumbTrail(trailLen)}
}

// AddBreadcrumb records a breadcrumb to be attached to the next
// report.
func (r *ConsoleReporter) AddBreadcrumb(category, message string, data map[string]any) {
	r.trail.add(Breadcrumb{Message: message, Category: category, Timestamp: time.Now(), Data: data})
}

func (r *ConsoleReporter) ReportError(err error, context map[string]any) {
	ctx := r.buildContext(context)
	log.Printf("[obs] error id=%s component=%v: %v (breadcrumbs=%d)", ctx.EventID, ctx.Extra["component"], err, len(ctx.Breadcrumbs))
}

func (r *ConsoleReporter) ReportPanic(recovered any, context map[string]any) {
	ctx := r.buildContext(context)
	log.Printf("[obs] panic id=%s component=%v: %v (breadcrumbs=%d)", ctx.EventID, ctx.Extra["component"], recovered, len(ctx.Breadcrumbs))
}

func (r *ConsoleReporter) Flush(time.Duration) bool { return true }

func (r *ConsoleReporter) buildContext(extra map[string]any) ErrorContext {
	return ErrorContext{
		EventID:     newEventID(),
		Timestamp:   time.Now(),
		Extra:       extra,
		Breadcrumbs: r.trail.snapshot(),
	}
}

// SentryReporter forwards errors/panics to Sentry via sentry-go,
// tagging each event with the generated EventID and attaching the
// current breadcrumb trail first.
type SentryReporter struct {
	trail *breadcrumbTrail
}

// NewSentryReporter initializes the sentry-go client with dsn and
// returns a reporter ready to use. An empty dsn disables network
// delivery (sentry-go's own no-op behavior), useful for tests.
func NewSentryReporter(dsn string, trailLen int) (*SentryReporter, error) {
	if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
		return nil, fmt.Errorf("obs: sentry init: %w", err)
	}
	return &SentryReporter{trail: newBreadcrumbTrail(trailLen)}, nil
}

func (r *SentryReporter) AddBreadcrumb(category, message string, data map[string]any) {
	b := Breadcrumb{Message: message, Category: category, Timestamp: time.Now(), Data: data}
	r.trail.add(b)
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Timestamp: b.Timestamp,
		Data:      data,
	})
}

func (r *SentryReporter) ReportError(err error, context map[string]any) {
	eventID := newEventID()
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("bloom.event_id", eventID)
		for k, v := range context {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

func (r *SentryReporter) ReportPanic(recovered any, context map[string]any) {
	eventID := newEventID()
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("bloom.event_id", eventID)
		scope.SetLevel(sentry.LevelFatal)
		for k, v := range context {
			scope.SetExtra(k, v)
		}
		sentry.CaptureMessage(fmt.Sprintf("panic: %v", recovered))
	})
}

func (r *SentryReporter) Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
