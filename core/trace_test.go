package core_test

import (
	"context"
	"testing"

	"github.com/corvidlabs/workerpool/core"
)

// TestTraceContext_AcquireReleaseBalance verifies the refcount returns to
// zero after matching acquire/release pairs.
func TestTraceContext_AcquireReleaseBalance(t *testing.T) {
	tc := core.NewTraceContext()

	for i := 0; i < 3; i++ {
		tc.Acquire()
	}
	if got := tc.RefCount(); got != 3 {
		t.Fatalf("RefCount() = %d, want 3", got)
	}
	for i := 0; i < 3; i++ {
		tc.Release()
	}
	if got := tc.RefCount(); got != 0 {
		t.Errorf("RefCount() = %d, want 0", got)
	}
}

// TestTraceContext_ReleaseImbalancePanics verifies that releasing more
// times than acquired is treated as a caller bug.
func TestTraceContext_ReleaseImbalancePanics(t *testing.T) {
	tc := core.NewTraceContext()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Release() on a zero refcount did not panic")
		}
	}()
	tc.Release()
}

// TestWithTraceContext_CurrentRoundTrips verifies adopt/current semantics:
// a trace context installed via WithTraceContext is retrievable via
// CurrentTraceContext, and absent otherwise.
func TestWithTraceContext_CurrentRoundTrips(t *testing.T) {
	if got := core.CurrentTraceContext(context.Background()); got != nil {
		t.Errorf("CurrentTraceContext() on bare context = %v, want nil", got)
	}

	tc := core.NewTraceContext()
	ctx := core.WithTraceContext(context.Background(), tc)

	got := core.CurrentTraceContext(ctx)
	if got != tc {
		t.Errorf("CurrentTraceContext() = %v, want %v", got, tc)
	}
}
