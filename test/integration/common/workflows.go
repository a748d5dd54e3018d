package common

import (
	stdjson "encoding/json"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

func node(id string, nodeType string, configuration string) models.NodeRequest {
	n := models.NodeRequest{NodeID: id, NodeType: nodeType, Label: id}
	if configuration != "" {
		n.Configuration = stdjson.RawMessage(configuration)
	}
	return n
}

func edge(source string, target string, handle string) models.EdgeRequest {
	return models.EdgeRequest{SourceNodeID: source, TargetNodeID: target, SourceHandle: handle}
}

// LinearWorkflow is start -> double -> end, doubling inputData.value.
func LinearWorkflow() models.SaveWorkflowRequest {
	return models.SaveWorkflowRequest{
		Name: "double the value",
		Nodes: []models.NodeRequest{
			node("start", "Start", ""),
			node("double", "Transform", `{"script": "({doubled: inputData.value * 2})"}`),
			node("end", "End", ""),
		},
		Edges: []models.EdgeRequest{
			edge("start", "double", ""),
			edge("double", "end", ""),
		},
	}
}

// BranchingWorkflow routes on inputData.amount > 100 to the big or small transform.
func BranchingWorkflow() models.SaveWorkflowRequest {
	return models.SaveWorkflowRequest{
		Name: "route by amount",
		Nodes: []models.NodeRequest{
			node("start", "Start", ""),
			node("check", "Condition", `{"condition": "inputData.amount > 100"}`),
			node("big", "Transform", `{"script": "'big'"}`),
			node("small", "Transform", `{"script": "'small'"}`),
			node("end", "End", ""),
		},
		Edges: []models.EdgeRequest{
			edge("start", "check", ""),
			edge("check", "big", "true"),
			edge("check", "small", "false"),
			edge("big", "end", ""),
			edge("small", "end", ""),
		},
	}
}

// SlowWorkflow waits for a minute in its delay node.
func SlowWorkflow() models.SaveWorkflowRequest {
	return models.SaveWorkflowRequest{
		Name: "wait a minute",
		Nodes: []models.NodeRequest{
			node("start", "Start", ""),
			node("wait", "Delay", `{"duration": 60000}`),
			node("end", "End", ""),
		},
		Edges: []models.EdgeRequest{
			edge("start", "wait", ""),
			edge("wait", "end", ""),
		},
	}
}
