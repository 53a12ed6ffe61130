// Package workerpool provides a general-purpose worker pool with futures.
//
// It accepts user-supplied units of work, dispatches them to a bounded,
// elastically-sized population of worker goroutines, and — for submissions
// made through a TaskExecutor — returns a future handle through which the
// submitter can observe completion, wait for the result, request
// cancellation, or register completion callbacks.
//
// # Quick Start
//
//	pool, err := workerpool.NewBuilder("ingest").Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Shutdown()
//
//	err = pool.SubmitFunc(context.Background(), func(ctx context.Context) {
//		// fire-and-forget work
//	})
//
// For work that needs a future, use a TaskExecutor instead of a bare
// ThreadPool:
//
//	executor, err := workerpool.NewTaskExecutor("ingest", 2, 8)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer executor.Shutdown()
//
//	future, err := executor.SubmitFunc(ctx, func(ctx context.Context) error {
//		return doWork()
//	})
//	future.AddListener(workerpool.ListenerFuncs{
//		Success: func() { log.Println("done") },
//		Failure: func(err error) { log.Println("failed:", err) },
//	})
//
// # Key Concepts
//
// ThreadPool: a bounded, elastically-sized set of worker goroutines. It
// maintains a minimum number of permanent workers and grows up to a maximum
// under load; workers created by that growth exit after an idle timeout.
//
// FutureTask: wraps a Task with a four-state lifecycle
// (Pending/Running/Finished/Aborted), a completion latch, an ordered
// listener list, and a cooperative abort protocol.
//
// TaskExecutor: a thin facade pairing a ThreadPool with a FutureTask
// factory, for callers who want futures rather than fire-and-forget
// dispatch.
//
// TraceContext: an opaque, refcounted diagnostic handle that rides with
// queued work from submitter to worker, for log/metric correlation. The
// pool never interprets its contents.
//
// # Thread Safety
//
// ThreadPool and FutureTask are safe for concurrent use from any number of
// goroutines. A ThreadPool's internal lock guards its queue and worker
// counters; each FutureTask has its own lock guarding its state, result,
// and listener list. Listener callbacks may run on any worker goroutine —
// callers must not assume which.
//
// For more details, see the package's SPEC_FULL.md.
package workerpool
