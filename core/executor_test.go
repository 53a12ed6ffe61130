package core_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/corvidlabs/workerpool/core"
)

// TestTaskExecutor_ListenerBeforeAndAfterCompletion verifies a listener
// registered as soon as SubmitFunc returns (the task may or may not have
// finished by then) and one registered after the future reports done both
// observe OnFailure with the task's error.
func TestTaskExecutor_ListenerBeforeAndAfterCompletion(t *testing.T) {
	executor, err := core.NewTaskExecutor("listener-before-after", 0, 2)
	if err != nil {
		t.Fatalf("NewTaskExecutor failed: %v", err)
	}
	defer executor.Shutdown()

	wantErr := errors.New("deliberate failure")
	var preFired atomic.Bool
	var preErr atomic.Value

	future, err := executor.SubmitFunc(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	if err != nil {
		t.Fatalf("SubmitFunc failed: %v", err)
	}

	future.AddListener(core.ListenerFuncs{
		Failure: func(err error) {
			preFired.Store(true)
			preErr.Store(err)
		},
	})

	future.Wait()

	if !future.IsDone() {
		t.Fatal("future not done after Wait")
	}
	if !preFired.Load() {
		t.Fatal("pre-registered listener never fired")
	}
	if got := preErr.Load().(error); !errors.Is(got, wantErr) {
		t.Errorf("pre-registered listener error = %v, want one wrapping %v", got, wantErr)
	}

	var postErr error
	future.AddListener(core.ListenerFuncs{
		Failure: func(err error) { postErr = err },
	})
	if !errors.Is(postErr, wantErr) {
		t.Errorf("post-termination listener error = %v, want one wrapping %v", postErr, wantErr)
	}
}

// TestTaskExecutor_AbortBeforeStart verifies aborting a future whose task
// accepts cancellation before it starts running returns true, Wait
// returns promptly, IsAborted is true, and the user Run is never invoked.
func TestTaskExecutor_AbortBeforeStart(t *testing.T) {
	executor, err := core.NewTaskExecutor("abort-before-start", 0, 1)
	if err != nil {
		t.Fatalf("NewTaskExecutor failed: %v", err)
	}
	defer executor.Shutdown()

	var ranRun atomic.Bool
	task := core.NewTask(
		func(ctx context.Context) error {
			ranRun.Store(true)
			time.Sleep(10 * time.Second)
			return nil
		},
		func() bool { return true },
	)

	future, err := executor.Submit(context.Background(), task)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if ok := future.Abort(); !ok {
		t.Fatal("Abort() = false, want true")
	}

	done := make(chan struct{})
	go func() {
		future.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return promptly after Abort")
	}

	if !future.IsAborted() {
		t.Error("IsAborted() = false, want true")
	}
	if ranRun.Load() {
		t.Error("user Run was invoked despite successful abort")
	}
}

// TestTaskExecutor_PoolExposesStats is a light smoke test that Pool()
// exposes the underlying ThreadPool for stats access.
func TestTaskExecutor_PoolExposesStats(t *testing.T) {
	executor, err := core.NewTaskExecutorSimple("stats", 2)
	if err != nil {
		t.Fatalf("NewTaskExecutorSimple failed: %v", err)
	}
	defer executor.Shutdown()

	_, err = executor.SubmitFunc(context.Background(), func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("SubmitFunc failed: %v", err)
	}
	executor.Wait()

	stats := executor.Pool().Stats()
	if stats.State != core.StateRunning {
		t.Errorf("pool state = %v, want Running", stats.State)
	}
}
