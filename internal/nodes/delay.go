package nodes

import (
	"context"
	"time"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

const defaultDelayMs = 1000

type delayConfig struct {
	Duration *int64 `json:"duration"`
}

// DelayExecutor suspends the execution for the configured number of milliseconds.
type DelayExecutor struct {
	Clock core.Clock
}

func (e *DelayExecutor) Execute(ctx context.Context, node *domain.Node, ectx *core.ExecutionContext) (any, error) {
	cfg, err := decodeConfig[delayConfig](node)
	if err != nil {
		return nil, err
	}
	ms := int64(defaultDelayMs)
	if cfg.Duration != nil {
		ms = *cfg.Duration
	}
	if ms < 0 {
		return nil, configError(node.NodeType, "duration must not be negative, got %d", ms)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.Clock.After(time.Duration(ms) * time.Millisecond):
	}
	return map[string]any{"delayedFor": ms}, nil
}
