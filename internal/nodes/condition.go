package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

type conditionConfig struct {
	Condition  string `json:"condition"`
	Expression string `json:"expression"`
}

// ConditionExecutor evaluates a JavaScript expression and stores its boolean
// result as conditionResult. Any other result type is a configuration error.
type ConditionExecutor struct {
	Timeout time.Duration
}

func (e *ConditionExecutor) Execute(ctx context.Context, node *domain.Node, ectx *core.ExecutionContext) (any, error) {
	cfg, err := decodeConfig[conditionConfig](node)
	if err != nil {
		return nil, err
	}
	expr := strings.TrimSpace(cfg.Condition)
	if expr == "" {
		expr = strings.TrimSpace(cfg.Expression)
	}
	if expr == "" {
		return nil, configError(node.NodeType, "condition expression is required")
	}

	v, err := runJavaScript(ctx, e.Timeout, expr, ectx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("evaluate condition: %w", err)
	}
	result, ok := v.Export().(bool)
	if !ok {
		return nil, configError(node.NodeType, "condition must evaluate to a boolean, got %s", describeValue(v.Export()))
	}
	ectx.SetConditionResult(result)
	return map[string]any{"result": result}, nil
}

func describeValue(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
