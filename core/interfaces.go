package core

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task's Run method panics during execution.
// This allows custom panic handling, logging, and recovery strategies on top
// of the pool's own recover() in runEntry, which keeps the worker goroutine
// alive regardless of what it was running. A task submitted through a
// FutureTask recovers its own panics first (reporting a TaskFailureError
// wrapping a PanicError to the future), so this handler only observes
// panics from bare Runnables submitted directly to the pool.
//
// Implementations should be thread-safe as they may be called concurrently
// by any worker goroutine.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - ctx: the trace context active on the worker at the time of the panic, if any
	// - poolName: the name of the pool the panicking worker belongs to
	// - workerID: the id of the worker goroutine that recovered the panic
	// - panicInfo: the panic value recovered from the task
	// - stackTrace: the stack trace captured at the time of panic
	HandlePanic(ctx context.Context, poolName string, workerID int, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler prints panic information to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(ctx context.Context, poolName string, workerID int, panicInfo any, stackTrace []byte) {
	fmt.Printf("[worker %d @ %s] panic: %v\nstack trace:\n%s", workerID, poolName, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting pool and task execution
// metrics. Implementations can send metrics to monitoring systems
// (Prometheus, StatsD, etc.) — see the observability/prometheus package for
// a concrete adapter.
//
// All methods should be non-blocking and fast; they are called from the
// worker goroutines and from Submit callers, after the pool's internal lock
// has been released.
type Metrics interface {
	// RecordTaskDuration records how long a task's Run took to execute.
	RecordTaskDuration(poolName string, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(poolName string, panicInfo any)

	// RecordQueueDepth records the queue depth sampled after each accepted
	// submission. Dequeues and Shutdown do not record it.
	RecordQueueDepth(poolName string, depth int)

	// RecordTaskRejected records that a task was rejected at submission
	// time (queue full, pool not running, or spawn failure).
	RecordTaskRejected(poolName string, reason string)

	// RecordWorkerCount records the current total and active worker counts.
	RecordWorkerCount(poolName string, total, active int)
}

// NilMetrics is a no-op Metrics implementation. It is the default when no
// metrics collector is configured.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskDuration(poolName string, duration time.Duration)    {}
func (m *NilMetrics) RecordTaskPanic(poolName string, panicInfo any)                {}
func (m *NilMetrics) RecordQueueDepth(poolName string, depth int)                   {}
func (m *NilMetrics) RecordTaskRejected(poolName string, reason string)             {}
func (m *NilMetrics) RecordWorkerCount(poolName string, total, active int)          {}

// =============================================================================
// RejectedTaskHandler: Interface for handling rejected submissions
// =============================================================================

// RejectedTaskHandler is called when Submit rejects a task. This can happen
// when:
//   - the pool is not in the Running state
//   - the bounded queue is already at max_queue_size
//   - worker creation itself failed
//
// Implementations should be thread-safe; HandleRejectedTask may be called
// concurrently by multiple Submit callers.
type RejectedTaskHandler interface {
	// HandleRejectedTask is called when a task is rejected.
	//
	// Parameters:
	// - poolName: the name of the pool that rejected the task
	// - reason: why the task was rejected ("not_running", "queue_full", "spawn_failed")
	HandleRejectedTask(poolName string, reason string)
}

// DefaultRejectedTaskHandler logs rejected submissions to stdout.
type DefaultRejectedTaskHandler struct{}

// HandleRejectedTask logs the rejected task.
func (h *DefaultRejectedTaskHandler) HandleRejectedTask(poolName string, reason string) {
	fmt.Printf("[pool %s] task rejected: %s", poolName, reason)
}

// =============================================================================
// ThreadPoolConfig: ambient configuration shared by every pool
// =============================================================================

// ThreadPoolConfig holds the ambient collaborator hooks for a ThreadPool —
// logging, panic handling, metrics, and rejection notification. All fields
// are optional; Builder.Build backfills every nil field with the same no-op
// or stdout-logging default that DefaultThreadPoolConfig uses. Pool sizing (min/max threads, idle
// timeout, queue capacity) is configured separately via Builder, since those
// values are mandatory rather than ambient.
type ThreadPoolConfig struct {
	// Logger receives structured log lines for worker lifecycle events,
	// spawn failures, and panics. Defaults to NewNoOpLogger().
	Logger Logger

	// PanicHandler is invoked when a task panics, in addition to the pool's
	// own internal recovery. Defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// Metrics records pool and task execution metrics. Defaults to NilMetrics.
	Metrics Metrics

	// RejectedTaskHandler is invoked whenever Submit rejects a task.
	// Defaults to DefaultRejectedTaskHandler.
	RejectedTaskHandler RejectedTaskHandler
}

// DefaultThreadPoolConfig returns a config with every hook set to its
// no-op/default implementation.
func DefaultThreadPoolConfig() *ThreadPoolConfig {
	return &ThreadPoolConfig{
		Logger:              NewNoOpLogger(),
		PanicHandler:        &DefaultPanicHandler{},
		Metrics:             &NilMetrics{},
		RejectedTaskHandler: &DefaultRejectedTaskHandler{},
	}
}

// backfill fills any nil field of c with its default counterpart. Called
// once from Builder.Build so partially-populated configs passed by callers
// never cause a nil-pointer dereference inside the pool.
func (c *ThreadPoolConfig) backfill() {
	if c.Logger == nil {
		c.Logger = NewNoOpLogger()
	}
	if c.PanicHandler == nil {
		c.PanicHandler = &DefaultPanicHandler{}
	}
	if c.Metrics == nil {
		c.Metrics = &NilMetrics{}
	}
	if c.RejectedTaskHandler == nil {
		c.RejectedTaskHandler = &DefaultRejectedTaskHandler{}
	}
}
