package nodes

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

func testNode(t *testing.T, nodeType domain.NodeType, cfg any) *domain.Node {
	t.Helper()
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	return &domain.Node{NodeID: "n1", NodeType: nodeType, Configuration: string(raw)}
}

func testContext(t *testing.T, input any, previousOutput any) *core.ExecutionContext {
	t.Helper()
	ectx, err := core.NewExecutionContext(1, 1, input)
	require.NoError(t, err)
	if previousOutput != nil {
		require.NoError(t, ectx.SetPreviousOutput(previousOutput))
	}
	return ectx
}
