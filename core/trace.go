package core

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// TraceContext is an opaque, refcounted diagnostic handle that rides with
// queued work from submitter to worker. The pool never interprets its
// contents — it only preserves the acquire/release balance as entries move
// through the queue (see ThreadPool's queue-entry lifecycle). Callers use it
// purely for log/metric correlation across a task's submit-to-completion
// path.
type TraceContext struct {
	id  uuid.UUID
	ref atomic.Int64
}

// NewTraceContext creates a fresh trace context with a zero refcount. The
// creator is expected to Acquire it before handing it to anything that will
// later Release it (ThreadPool.Submit does this automatically when a trace
// context is present on the submitting goroutine's context.Context).
func NewTraceContext() *TraceContext {
	return &TraceContext{id: uuid.New()}
}

// ID returns the trace context's correlation id as a string, suitable for
// inclusion in log fields.
func (t *TraceContext) ID() string {
	if t == nil {
		return ""
	}
	return t.id.String()
}

// Acquire increments the refcount and returns the new value.
func (t *TraceContext) Acquire() int64 {
	return t.ref.Add(1)
}

// Release decrements the refcount and returns the new value. Releasing a
// trace context whose refcount has already reached zero is a caller bug;
// it panics rather than silently going negative, since a negative refcount
// means an acquire/release pair was lost somewhere upstream.
func (t *TraceContext) Release() int64 {
	v := t.ref.Add(-1)
	if v < 0 {
		panic(fmt.Sprintf("workerpool: trace context %s released more times than acquired", t.id))
	}
	return v
}

// RefCount returns the current refcount. Intended for tests and diagnostics.
func (t *TraceContext) RefCount() int64 {
	return t.ref.Load()
}

// String implements fmt.Stringer for log formatting.
func (t *TraceContext) String() string {
	if t == nil {
		return "trace(none)"
	}
	return fmt.Sprintf("trace(%s)", t.id)
}

// traceContextKey is the context.Value key under which the "current" trace
// context for a goroutine's logical call chain is stored.
type traceContextKey struct{}

// WithTraceContext returns a copy of ctx with tc installed as the current
// trace context. This is the adopt(ctx) operation: a worker calls it before
// invoking a dequeued task's Run so that any nested submission on the same
// goroutine picks up the same trace context by default.
func WithTraceContext(ctx context.Context, tc *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}

// CurrentTraceContext returns the trace context installed on ctx by
// WithTraceContext, or nil if none is present.
func CurrentTraceContext(ctx context.Context) *TraceContext {
	if v := ctx.Value(traceContextKey{}); v != nil {
		return v.(*TraceContext)
	}
	return nil
}
