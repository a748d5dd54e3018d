package nodes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

type executeResult struct {
	value any
	err   error
}

func runAsync(ctx context.Context, e Executor, node *domain.Node, ectx *core.ExecutionContext) <-chan executeResult {
	done := make(chan executeResult, 1)
	go func() {
		v, err := e.Execute(ctx, node, ectx)
		done <- executeResult{value: v, err: err}
	}()
	return done
}

func TestDelayExecutor_WaitsForDuration(t *testing.T) {
	clock := core.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	executor := &DelayExecutor{Clock: clock}
	node := testNode(t, domain.NodeTypeDelay, map[string]any{"duration": 1000})

	done := runAsync(context.Background(), executor, node, testContext(t, nil, nil))
	require.Eventually(t, func() bool { return clock.PendingTimers() == 1 }, time.Second, time.Millisecond)

	clock.Add(999 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("delay completed before its duration elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	clock.Add(time.Millisecond)
	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, map[string]any{"delayedFor": int64(1000)}, r.value)
	case <-time.After(time.Second):
		t.Fatal("delay did not complete")
	}
}

func TestDelayExecutor_DefaultDuration(t *testing.T) {
	clock := core.NewFakeClock(time.Now())
	executor := &DelayExecutor{Clock: clock}
	node := &domain.Node{NodeType: domain.NodeTypeDelay}

	done := runAsync(context.Background(), executor, node, testContext(t, nil, nil))
	require.Eventually(t, func() bool { return clock.PendingTimers() == 1 }, time.Second, time.Millisecond)
	clock.Add(time.Second)

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, map[string]any{"delayedFor": int64(defaultDelayMs)}, r.value)
}

func TestDelayExecutor_CancelStopsTheWait(t *testing.T) {
	clock := core.NewFakeClock(time.Now())
	executor := &DelayExecutor{Clock: clock}
	node := testNode(t, domain.NodeTypeDelay, map[string]any{"duration": 60000})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, executor, node, testContext(t, nil, nil))
	require.Eventually(t, func() bool { return clock.PendingTimers() == 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case r := <-done:
		assert.ErrorIs(t, r.err, context.Canceled)
		assert.Nil(t, r.value)
	case <-time.After(time.Second):
		t.Fatal("cancelled delay did not return")
	}
}

func TestDelayExecutor_NegativeDuration(t *testing.T) {
	executor := &DelayExecutor{Clock: core.NewRealClock()}
	node := testNode(t, domain.NodeTypeDelay, map[string]any{"duration": -5})

	_, err := executor.Execute(context.Background(), node, testContext(t, nil, nil))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
