package core_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/corvidlabs/workerpool/core"
)

type recordingListener struct {
	mu       sync.Mutex
	order    []string
	success  int
	failures []error
}

func (l *recordingListener) OnSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = append(l.order, "success")
	l.success++
}

func (l *recordingListener) OnFailure(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = append(l.order, "failure")
	l.failures = append(l.failures, err)
}

// TestFutureTask_LatchReleasedExactlyOnce_OnSuccess verifies the completion
// latch fires exactly once for a task that runs to completion.
func TestFutureTask_LatchReleasedExactlyOnce_OnSuccess(t *testing.T) {
	task := core.NewTask(func(ctx context.Context) error { return nil }, nil)
	future := core.NewFutureTask(task)

	var waiters sync.WaitGroup
	waiters.Add(5)
	for i := 0; i < 5; i++ {
		go func() {
			defer waiters.Done()
			future.Wait()
		}()
	}

	future.AsRunnable().Run(context.Background())
	waiters.Wait()

	if !future.IsDone() {
		t.Error("IsDone() = false, want true after run")
	}
	if future.IsAborted() {
		t.Error("IsAborted() = true, want false for a successful run")
	}
}

// TestFutureTask_AbortBeforeStart verifies that aborting a task while it is
// still pending results in Aborted, and the user Run is never invoked.
func TestFutureTask_AbortBeforeStart(t *testing.T) {
	var ranRun atomic.Bool
	task := core.NewTask(
		func(ctx context.Context) error {
			ranRun.Store(true)
			return nil
		},
		func() bool { return true },
	)
	future := core.NewFutureTask(task)

	if ok := future.Abort(); !ok {
		t.Fatal("Abort() = false, want true")
	}

	// Simulate the worker dequeuing the (now-aborted) future.
	future.AsRunnable().Run(context.Background())

	done := make(chan struct{})
	go func() {
		future.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait() did not return after abort-before-start")
	}

	if !future.IsAborted() {
		t.Error("IsAborted() = false, want true")
	}
	if ranRun.Load() {
		t.Error("user Run was invoked despite pre-start abort")
	}

	if done, err := future.Result(); !done || !errors.Is(err, core.ErrAborted) {
		t.Errorf("Result() = (%v, %v), want (true, ErrAborted)", done, err)
	}
}

// TestFutureTask_ListenerOrderingAndAtMostOnce verifies listeners registered
// before completion fire exactly once, in registration order.
func TestFutureTask_ListenerOrderingAndAtMostOnce(t *testing.T) {
	task := core.NewTask(func(ctx context.Context) error { return nil }, nil)
	future := core.NewFutureTask(task)

	var mu sync.Mutex
	var fired []int
	for i := 0; i < 5; i++ {
		i := i
		future.AddListener(core.ListenerFuncs{
			Success: func() {
				mu.Lock()
				fired = append(fired, i)
				mu.Unlock()
			},
		})
	}

	future.AsRunnable().Run(context.Background())
	future.Wait()

	if len(fired) != 5 {
		t.Fatalf("listeners fired = %d, want 5", len(fired))
	}
	for i, v := range fired {
		if v != i {
			t.Errorf("listener fire order[%d] = %d, want %d", i, v, i)
		}
	}
}

// TestFutureTask_PostTerminationListenerDispatch verifies a listener
// registered after completion is dispatched synchronously from the
// registering goroutine.
func TestFutureTask_PostTerminationListenerDispatch(t *testing.T) {
	wantErr := errors.New("boom")
	task := core.NewTask(func(ctx context.Context) error { return wantErr }, nil)
	future := core.NewFutureTask(task)

	future.AsRunnable().Run(context.Background())
	if !future.IsDone() {
		t.Fatal("future not done after Run")
	}

	var fired atomic.Bool
	var gotErr error
	future.AddListener(core.ListenerFuncs{
		Failure: func(err error) {
			fired.Store(true)
			gotErr = err
		},
	})

	if !fired.Load() {
		t.Fatal("listener registered after termination was not dispatched synchronously")
	}
	if !errors.Is(gotErr, wantErr) {
		t.Errorf("dispatched error = %v, want one wrapping %v", gotErr, wantErr)
	}
}

// TestFutureTask_FailurePropagatesThroughResult verifies a task's error is
// recorded and retrievable via Result.
func TestFutureTask_FailurePropagatesThroughResult(t *testing.T) {
	wantErr := errors.New("task failed")
	task := core.NewTask(func(ctx context.Context) error { return wantErr }, nil)
	future := core.NewFutureTask(task)

	l := &recordingListener{}
	future.AddListener(l)

	future.AsRunnable().Run(context.Background())
	future.Wait()

	done, err := future.Result()
	if !done {
		t.Fatal("Result() done = false, want true")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("Result() err = %v, want one wrapping %v", err, wantErr)
	}
	var failureErr *core.TaskFailureError
	if !errors.As(err, &failureErr) {
		t.Errorf("Result() err = %v, want *core.TaskFailureError", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.success != 0 || len(l.failures) != 1 || !errors.Is(l.failures[0], wantErr) {
		t.Errorf("listener observed success=%d failures=%v, want success=0 failures=[wrapping %v]", l.success, l.failures, wantErr)
	}
}

// TestFutureTask_PanicRecoveredReleasesLatch verifies a panic inside the
// inner task's Run is recovered by the future itself, reported as a
// TaskFailureError wrapping a PanicError, and still releases the latch
// exactly once.
func TestFutureTask_PanicRecoveredReleasesLatch(t *testing.T) {
	task := core.NewTask(func(ctx context.Context) error {
		panic("boom")
	}, nil)
	future := core.NewFutureTask(task)

	l := &recordingListener{}
	future.AddListener(l)

	done := make(chan struct{})
	go func() {
		future.AsRunnable().Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after a panicking task")
	}

	waitDone := make(chan struct{})
	go func() {
		future.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(time.Second):
		t.Fatal("Wait() never returned; latch not released after panic")
	}

	if !future.IsDone() {
		t.Error("IsDone() = false, want true after panic recovery")
	}

	doneFlag, err := future.Result()
	if !doneFlag {
		t.Fatal("Result() done = false, want true")
	}
	var failureErr *core.TaskFailureError
	if !errors.As(err, &failureErr) {
		t.Fatalf("Result() err = %v (%T), want *core.TaskFailureError", err, err)
	}
	var panicErr *core.PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Result() err chain = %v, want a wrapped *core.PanicError", err)
	}
	if panicErr.Value != "boom" {
		t.Errorf("PanicError.Value = %v, want %q", panicErr.Value, "boom")
	}
	if len(panicErr.Stack) == 0 {
		t.Error("PanicError.Stack is empty, want a captured stack trace")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.success != 0 || len(l.failures) != 1 {
		t.Errorf("listener observed success=%d failures=%d, want success=0 failures=1", l.success, len(l.failures))
	}
}

// TestFutureTask_MidRunAbortRaceDeliversActualResult verifies that when
// Abort wins a race against an already-running task, the future still
// reports the task's real outcome to listeners and Result rather than a
// synthetic aborted error — F1 only suppresses the state transition, not
// the recorded result.
func TestFutureTask_MidRunAbortRaceDeliversActualResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	wantErr := errors.New("finished despite abort")
	task := core.NewTask(func(ctx context.Context) error {
		close(started)
		<-release
		return wantErr
	}, func() bool { return true })
	future := core.NewFutureTask(task)

	runDone := make(chan struct{})
	go func() {
		future.AsRunnable().Run(context.Background())
		close(runDone)
	}()

	<-started
	if ok := future.Abort(); !ok {
		t.Fatal("Abort() = false, want true")
	}
	close(release)

	select {
	case <-runDone:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after abort raced with completion")
	}
	future.Wait()

	if !future.IsAborted() {
		t.Error("IsAborted() = false, want true: Abort won the state-transition race")
	}

	_, err := future.Result()
	if !errors.Is(err, wantErr) {
		t.Errorf("Result() err = %v, want the task's real result wrapping %v, not a synthetic abort", err, wantErr)
	}
	if errors.Is(err, core.ErrAborted) {
		t.Error("Result() reported ErrAborted instead of the task's actual outcome")
	}
}

// TestFutureTask_TimedWaitRespectsDeadline verifies TimedWait returns false
// when the deadline passes before completion.
func TestFutureTask_TimedWaitRespectsDeadline(t *testing.T) {
	release := make(chan struct{})
	task := core.NewTask(func(ctx context.Context) error {
		<-release
		return nil
	}, nil)
	future := core.NewFutureTask(task)

	go future.AsRunnable().Run(context.Background())

	if ok := future.TimedWait(time.Now().Add(20 * time.Millisecond)); ok {
		t.Error("TimedWait() = true before task completed, want false")
	}

	close(release)
	future.Wait()
}
