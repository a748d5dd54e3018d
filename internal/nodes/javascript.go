package nodes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
)

// runJavaScript evaluates src in a fresh VM with context, previousOutput and inputData as globals.
// The VM is interrupted when ctx is cancelled or the timeout elapses.
func runJavaScript(ctx context.Context, timeout time.Duration, src string, ectx *core.ExecutionContext) (goja.Value, error) {
	vm := goja.New()
	snapshot := ectx.Snapshot()
	if err := vm.Set("context", snapshot); err != nil {
		return nil, err
	}
	if err := vm.Set("previousOutput", snapshot[core.KeyPreviousOutput]); err != nil {
		return nil, err
	}
	if err := vm.Set("inputData", snapshot[core.KeyInputData]); err != nil {
		return nil, err
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	stop := context.AfterFunc(runCtx, func() {
		vm.Interrupt(runCtx.Err())
	})
	defer stop()

	v, err := vm.RunString(src)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("script timed out after %s", timeout)
		}
		return nil, err
	}
	return v, nil
}
