package nodes

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

var returnStatement = regexp.MustCompile(`\breturn\b`)

type transformConfig struct {
	Script string `json:"script"`
}

// TransformExecutor evaluates a JavaScript snippet and returns its value. A snippet that
// uses return is run as a function body, anything else as an expression.
type TransformExecutor struct {
	Timeout time.Duration
}

func (e *TransformExecutor) Execute(ctx context.Context, node *domain.Node, ectx *core.ExecutionContext) (any, error) {
	cfg, err := decodeConfig[transformConfig](node)
	if err != nil {
		return nil, err
	}
	script := strings.TrimSpace(cfg.Script)
	if script == "" {
		return nil, configError(node.NodeType, "script is required")
	}
	if returnStatement.MatchString(script) {
		script = "(function() {\n" + script + "\n})()"
	}

	v, err := runJavaScript(ctx, e.Timeout, script, ectx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("evaluate transform: %w", err)
	}
	return v.Export(), nil
}
