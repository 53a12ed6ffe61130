package core

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/eapache/queue"
)

// PoolState is a ThreadPool's lifecycle state.
type PoolState int

const (
	// StateUninitialized is the state before Builder.Build has completed.
	StateUninitialized PoolState = iota

	// StateRunning is the state after a successful Build; submissions are
	// accepted and workers are dispatching.
	StateRunning

	// StateShutDown is the terminal state after Shutdown has run. Once a
	// pool reaches this state it never leaves it.
	StateShutDown
)

func (s PoolState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateShutDown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// DefaultIdleTimeout is the idle-worker reaping timeout applied when a
// Builder does not set one explicitly.
const DefaultIdleTimeout = 500 * time.Millisecond

// DefaultMaxQueueSize is the queue bound applied when a Builder does not
// set one explicitly — large enough to behave as effectively unbounded for
// typical workloads while still enforcing the QueueFull contract.
const DefaultMaxQueueSize = 1 << 20

// queueEntry is the pool's internal record for one queued unit of work: the
// runnable itself, and the trace context captured at submission time (with
// its refcount already incremented — released exactly once, either by the
// worker that dequeued the entry after its runnable returns, or by Shutdown
// discarding it).
type queueEntry struct {
	runnable Runnable
	trace    *TraceContext
}

// ThreadPool is a bounded, elastically-sized pool of worker goroutines. It
// is constructed via Builder and, once built, accepts Runnables through
// Submit until Shutdown is called.
type ThreadPool struct {
	name   string
	config *ThreadPoolConfig

	mu            sync.Mutex
	notEmpty      *sync.Cond
	idleCond      *sync.Cond
	noThreadsCond *sync.Cond

	queue *queue.Queue

	state         PoolState
	numThreads    int
	activeThreads int
	nextWorkerID  int

	minThreads   int
	maxThreads   int
	maxQueueSize int
	idleTimeout  time.Duration
}

// Builder captures the tunables for a ThreadPool and produces it via Build.
// A Builder may be used to Build exactly one pool; a second call to Build
// returns ErrNotSupported.
type Builder struct {
	// Name identifies the pool in logs, metrics, and panic reports.
	Name string

	// MinThreads is the number of permanent workers spawned at Build time.
	// Permanent workers never time out. Defaults to 0.
	MinThreads int

	// MaxThreads bounds the total worker population (permanent + transient).
	// Defaults to runtime.NumCPU().
	MaxThreads int

	// MaxQueueSize bounds the number of queued-but-not-yet-dispatched
	// entries. Defaults to DefaultMaxQueueSize.
	MaxQueueSize int

	// IdleTimeout bounds how long a transient (elastically-spawned) worker
	// waits for work before exiting. Defaults to DefaultIdleTimeout.
	IdleTimeout time.Duration

	// Config supplies the ambient collaborator hooks (logger, panic
	// handler, metrics, rejection handler). Defaults to
	// DefaultThreadPoolConfig() if nil.
	Config *ThreadPoolConfig

	built bool
}

// NewBuilder returns a Builder pre-populated with spec defaults for name.
func NewBuilder(name string) *Builder {
	return &Builder{
		Name:         name,
		MinThreads:   0,
		MaxThreads:   runtime.NumCPU(),
		MaxQueueSize: DefaultMaxQueueSize,
		IdleTimeout:  DefaultIdleTimeout,
		Config:       DefaultThreadPoolConfig(),
	}
}

// Build validates the builder's tunables, constructs a ThreadPool, and
// spawns exactly MinThreads permanent workers before returning it in
// StateRunning. If any permanent worker fails to spawn, the pool is torn
// down and the failure is returned; no partially-started pool escapes Build.
func (b *Builder) Build() (*ThreadPool, error) {
	if b.built {
		return nil, ErrNotSupported
	}
	if b.MinThreads < 0 {
		return nil, fmt.Errorf("workerpool: min_threads must be >= 0, got %d", b.MinThreads)
	}
	if b.MaxThreads < 1 {
		return nil, fmt.Errorf("workerpool: max_threads must be >= 1, got %d", b.MaxThreads)
	}
	if b.MinThreads > b.MaxThreads {
		return nil, fmt.Errorf("workerpool: min_threads (%d) must be <= max_threads (%d)", b.MinThreads, b.MaxThreads)
	}
	if b.MaxQueueSize < 1 {
		return nil, fmt.Errorf("workerpool: max_queue_size must be >= 1, got %d", b.MaxQueueSize)
	}
	idleTimeout := b.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	cfg := b.Config
	if cfg == nil {
		cfg = DefaultThreadPoolConfig()
	}
	cfg.backfill()

	b.built = true

	p := &ThreadPool{
		name:         b.Name,
		config:       cfg,
		queue:        queue.New(),
		state:        StateRunning,
		minThreads:   b.MinThreads,
		maxThreads:   b.MaxThreads,
		maxQueueSize: b.MaxQueueSize,
		idleTimeout:  idleTimeout,
	}
	p.notEmpty = sync.NewCond(&p.mu)
	p.idleCond = sync.NewCond(&p.mu)
	p.noThreadsCond = sync.NewCond(&p.mu)

	p.mu.Lock()
	for i := 0; i < b.MinThreads; i++ {
		if err := p.spawnWorkerLocked(true); err != nil {
			p.state = StateShutDown
			p.mu.Unlock()
			return nil, fmt.Errorf("workerpool: %w: %v", ErrSpawnFailed, err)
		}
	}
	p.mu.Unlock()

	return p, nil
}

// spawnWorkerLocked increments numThreads and launches a worker goroutine.
// Must be called with p.mu held. Goroutine creation cannot fail, so the
// returned error is always nil; callers still handle a non-nil error as
// ErrSpawnFailed.
func (p *ThreadPool) spawnWorkerLocked(permanent bool) error {
	id := p.nextWorkerID
	p.nextWorkerID++
	p.numThreads++
	go p.workerLoop(id, permanent)
	return nil
}

// Name returns the pool's configured name.
func (p *ThreadPool) Name() string {
	return p.name
}

// Submit enqueues r for dispatch to a worker. It fails with
// ErrUninitialized on a pool that did not come from Builder.Build,
// ErrPoolNotRunning if the pool has been shut down, and ErrQueueFull if the
// bounded queue is already at capacity. If ctx carries a TraceContext (via
// WithTraceContext), it is acquired and carried with the queue entry; it is
// released once the worker that dequeues the entry has finished running it,
// or when Shutdown discards the entry.
func (p *ThreadPool) Submit(ctx context.Context, r Runnable) error {
	if r == nil {
		return fmt.Errorf("workerpool: nil runnable")
	}

	p.mu.Lock()

	if p.state == StateUninitialized {
		p.mu.Unlock()
		return ErrUninitialized
	}

	if p.state != StateRunning {
		p.mu.Unlock()
		p.config.RejectedTaskHandler.HandleRejectedTask(p.name, "not_running")
		p.config.Metrics.RecordTaskRejected(p.name, "not_running")
		return ErrPoolNotRunning
	}

	if p.queue.Length() >= p.maxQueueSize {
		p.mu.Unlock()
		p.config.RejectedTaskHandler.HandleRejectedTask(p.name, "queue_full")
		p.config.Metrics.RecordTaskRejected(p.name, "queue_full")
		return ErrQueueFull
	}

	var trace *TraceContext
	if ctx != nil {
		if tc := CurrentTraceContext(ctx); tc != nil {
			tc.Acquire()
			trace = tc
		}
	}

	p.queue.Add(&queueEntry{runnable: r, trace: trace})

	inactive := p.numThreads - p.activeThreads
	needed := p.queue.Length() - inactive
	if needed > 0 && p.numThreads < p.maxThreads {
		if err := p.spawnWorkerLocked(false); err != nil {
			if p.numThreads == 0 {
				// No worker exists to absorb the submission; undo the enqueue.
				p.queue.Remove()
				p.mu.Unlock()
				p.config.RejectedTaskHandler.HandleRejectedTask(p.name, "spawn_failed")
				p.config.Metrics.RecordTaskRejected(p.name, "spawn_failed")
				return fmt.Errorf("workerpool: %w: %v", ErrSpawnFailed, err)
			}
			p.config.Logger.Warn("elastic worker spawn failed, continuing with existing workers",
				F("pool", p.name), F("error", err.Error()))
		}
	}

	p.notEmpty.Signal()
	qLen := p.queue.Length()
	numThreads, activeThreads := p.numThreads, p.activeThreads
	p.mu.Unlock()

	p.config.Metrics.RecordQueueDepth(p.name, qLen)
	p.config.Metrics.RecordWorkerCount(p.name, numThreads, activeThreads)
	return nil
}

// SubmitFunc adapts a void closure into a Runnable and submits it.
func (p *ThreadPool) SubmitFunc(ctx context.Context, fn func(ctx context.Context)) error {
	return p.Submit(ctx, RunnableFunc(fn))
}

// Wait blocks until the queue is empty and no worker is active.
func (p *ThreadPool) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for !(p.queue.Length() == 0 && p.activeThreads == 0) {
		p.idleCond.Wait()
	}
}

// TimedWait blocks until the queue is empty and no worker is active, or
// until deadline passes, whichever comes first. It reports whether the
// idle condition was observed before the deadline.
func (p *ThreadPool) TimedWait(deadline time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for !(p.queue.Length() == 0 && p.activeThreads == 0) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		timer := time.AfterFunc(remaining, func() {
			p.mu.Lock()
			p.idleCond.Broadcast()
			p.mu.Unlock()
		})
		p.idleCond.Wait()
		timer.Stop()
	}
	return true
}

// Shutdown transitions the pool out of StateRunning, discards queued
// entries (releasing their trace refcounts), wakes every waiting worker,
// and blocks until all workers have exited. It is idempotent: calling it
// more than once, or from multiple goroutines, is safe and the second call
// returns immediately once the first has completed.
func (p *ThreadPool) Shutdown() {
	p.mu.Lock()
	if p.state != StateRunning {
		for p.numThreads > 0 {
			p.noThreadsCond.Wait()
		}
		p.mu.Unlock()
		return
	}
	p.state = StateShutDown

	for p.queue.Length() > 0 {
		entry := p.queue.Remove().(*queueEntry)
		if entry.trace != nil {
			entry.trace.Release()
		}
	}

	p.notEmpty.Broadcast()
	for p.numThreads > 0 {
		p.noThreadsCond.Wait()
	}
	p.mu.Unlock()
}

// Stats returns a point-in-time snapshot of the pool's runtime state.
func (p *ThreadPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Name:          p.name,
		NumThreads:    p.numThreads,
		ActiveThreads: p.activeThreads,
		IdleThreads:   p.numThreads - p.activeThreads,
		QueueSize:     p.queue.Length(),
		MaxQueueSize:  p.maxQueueSize,
		State:         p.state,
	}
}

// waitNotEmptyOnce waits on notEmpty for up to d before giving up. Must be
// called with p.mu held; Wait releases it for the duration of the wait.
// Because sync.Cond has no native timed wait, a timer goroutine broadcasts
// on our behalf after d elapses — the caller is responsible for rechecking
// actual queue state afterward rather than trusting that the wakeup implies
// a timeout (see workerLoop's transient-worker branch).
func (p *ThreadPool) waitNotEmptyOnce(d time.Duration) {
	timer := time.AfterFunc(d, func() {
		p.mu.Lock()
		p.notEmpty.Broadcast()
		p.mu.Unlock()
	})
	p.notEmpty.Wait()
	timer.Stop()
}

// workerLoop is the body of one worker goroutine. permanent workers (spawned
// by Build) wait unconditionally for work; transient workers (spawned by
// elastic growth) exit after idleTimeout of no work, once a post-timeout
// recheck under the lock confirms the queue is still empty.
func (p *ThreadPool) workerLoop(id int, permanent bool) {
	p.mu.Lock()
	for {
		if p.state != StateRunning {
			break
		}

		if p.queue.Length() == 0 {
			if permanent {
				p.notEmpty.Wait()
				continue
			}

			deadline := time.Now().Add(p.idleTimeout)
			for p.queue.Length() == 0 && p.state == StateRunning && time.Now().Before(deadline) {
				remaining := time.Until(deadline)
				if remaining <= 0 {
					break
				}
				p.waitNotEmptyOnce(remaining)
			}
			// Mandatory recheck: a timed wait's wakeup does not reliably
			// distinguish "signalled" from "timed out" across platforms, so
			// we trust only what we observe under the lock right now.
			if p.state == StateRunning && p.queue.Length() == 0 {
				break
			}
			continue
		}

		entry := p.queue.Remove().(*queueEntry)
		p.activeThreads++
		p.mu.Unlock()

		p.runEntry(id, entry)

		p.mu.Lock()
		p.activeThreads--
		if p.activeThreads == 0 {
			p.idleCond.Broadcast()
		}
	}

	p.numThreads--
	if p.numThreads == 0 {
		p.noThreadsCond.Broadcast()
		if p.queue.Length() != 0 {
			panic("workerpool: invariant violated: last worker exited with a non-empty queue")
		}
	}
	p.mu.Unlock()
}

// runEntry adopts entry's trace context, invokes its runnable with panic
// recovery, and releases the trace context exactly once regardless of
// outcome. Called with the pool lock NOT held.
func (p *ThreadPool) runEntry(workerID int, entry *queueEntry) {
	ctx := context.Background()
	if entry.trace != nil {
		ctx = WithTraceContext(ctx, entry.trace)
	}

	start := time.Now()
	defer func() {
		if entry.trace != nil {
			entry.trace.Release()
		}
		p.config.Metrics.RecordTaskDuration(p.name, time.Since(start))
	}()

	func() {
		defer func() {
			if r := recover(); r != nil {
				stack := make([]byte, 4096)
				n := runtime.Stack(stack, false)
				p.config.Logger.Error("task panicked", F("pool", p.name), F("worker", workerID), F("panic", r))
				p.config.Metrics.RecordTaskPanic(p.name, r)
				p.config.PanicHandler.HandlePanic(ctx, p.name, workerID, r, stack[:n])
			}
		}()
		entry.runnable.Run(ctx)
	}()
}
