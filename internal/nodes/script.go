package nodes

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

// The snippet becomes the body of Run. Common packages are imported up front and
// referenced once so unused imports never fail compilation.
const scriptTemplate = `package script

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"wfa"
)

var (
	_ = json.Marshal
	_ = fmt.Sprint
	_ = math.Abs
	_ = sort.Strings
	_ = strconv.Itoa
	_ = strings.TrimSpace
	_ = time.Now
)

func Run(context map[string]interface{}, previousOutput interface{}, inputData interface{}) interface{} {
%s
	return nil
}

func Main() interface{} {
	return Run(wfa.Context, wfa.PreviousOutput, wfa.InputData)
}
`

type scriptConfig struct {
	Code string `json:"code"`
}

// ScriptExecutor runs a Go snippet with the yaegi interpreter. The snippet sees
// context, previousOutput and inputData and its return value is the node result.
type ScriptExecutor struct {
	Timeout time.Duration
}

func (e *ScriptExecutor) Execute(ctx context.Context, node *domain.Node, ectx *core.ExecutionContext) (any, error) {
	cfg, err := decodeConfig[scriptConfig](node)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Code) == "" {
		return nil, configError(node.NodeType, "code is required")
	}

	runCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	snapshot := ectx.Snapshot()
	previousOutput := snapshot[core.KeyPreviousOutput]
	inputData := snapshot[core.KeyInputData]

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, err
	}
	if err := i.Use(interp.Exports{
		"wfa/wfa": {
			"Context":        reflect.ValueOf(&snapshot).Elem(),
			"PreviousOutput": reflect.ValueOf(&previousOutput).Elem(),
			"InputData":      reflect.ValueOf(&inputData).Elem(),
		},
	}); err != nil {
		return nil, err
	}
	if _, err := i.EvalWithContext(runCtx, fmt.Sprintf(scriptTemplate, cfg.Code)); err != nil {
		return nil, e.failure(ctx, fmt.Errorf("compile script: %w", err))
	}

	// Cancelling runCtx stops the interpreter, so a runaway snippet exits with the call.
	out, err := i.EvalWithContext(runCtx, "script.Main()")
	if err != nil {
		if runCtx.Err() != nil {
			return nil, e.failure(ctx, runCtx.Err())
		}
		var p interp.Panic
		if errors.As(err, &p) {
			return nil, fmt.Errorf("script panicked: %v", p.Value)
		}
		return nil, err
	}
	if !out.IsValid() || !out.CanInterface() {
		return nil, nil
	}
	return out.Interface(), nil
}

// failure reports cancellation of the execution as such and anything else as a script error.
func (e *ScriptExecutor) failure(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == context.DeadlineExceeded {
		return fmt.Errorf("script timed out after %s", e.Timeout)
	}
	return err
}
