package engine

import (
	"fmt"
	"strings"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

// ValidationError lists every structural problem found in a workflow graph.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid workflow: " + strings.Join(e.Problems, "; ")
}

// ValidateWorkflow checks that a graph can be executed: one Start node, at
// least one reachable End node, known node types, edges between existing
// nodes and well formed Condition branches.
func ValidateWorkflow(wf *domain.Workflow) error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(wf.Nodes) == 0 {
		return &ValidationError{Problems: []string{"workflow has no nodes"}}
	}

	seen := make(map[string]bool, len(wf.Nodes))
	var startIDs, endIDs []string
	for _, n := range wf.Nodes {
		if n.NodeID == "" {
			addf("node with empty id")
			continue
		}
		if seen[n.NodeID] {
			addf("duplicate node id %q", n.NodeID)
		}
		seen[n.NodeID] = true
		if !n.NodeType.IsValid() {
			addf("node %q has unknown type %q", n.NodeID, n.NodeType)
		}
		switch n.NodeType {
		case domain.NodeTypeStart:
			startIDs = append(startIDs, n.NodeID)
		case domain.NodeTypeEnd:
			endIDs = append(endIDs, n.NodeID)
		}
	}

	switch len(startIDs) {
	case 0:
		addf("workflow must have a Start node")
	case 1:
	default:
		addf("workflow must have exactly one Start node, found %d", len(startIDs))
	}
	if len(endIDs) == 0 {
		addf("workflow must have at least one End node")
	}

	for _, edge := range wf.Edges {
		if !seen[edge.SourceNodeID] {
			addf("edge %q references unknown source node %q", edge.EdgeID, edge.SourceNodeID)
		}
		if !seen[edge.TargetNodeID] {
			addf("edge %q references unknown target node %q", edge.EdgeID, edge.TargetNodeID)
		}
	}

	g := newGraph(wf)
	for _, n := range wf.Nodes {
		if n.NodeType == domain.NodeTypeCondition {
			problems = append(problems, conditionProblems(g, n.NodeID)...)
		}
	}

	if len(startIDs) == 1 {
		reachable := g.reachableFrom(startIDs[0])
		for _, id := range endIDs {
			if !reachable[id] {
				addf("End node %q is not reachable from Start", id)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func conditionProblems(g *graph, nodeID string) []string {
	var problems []string
	branches := map[string]int{}
	for _, edge := range g.outgoing[nodeID] {
		handle := edge.SourceHandle.String
		if !edge.SourceHandle.Valid || (handle != domain.HandleTrue && handle != domain.HandleFalse) {
			problems = append(problems, fmt.Sprintf("edge %q from Condition %q must use handle \"true\" or \"false\"", edge.EdgeID, nodeID))
			continue
		}
		branches[handle]++
	}
	if len(g.outgoing[nodeID]) == 0 {
		problems = append(problems, fmt.Sprintf("Condition %q has no outgoing branch", nodeID))
	}
	for _, handle := range []string{domain.HandleTrue, domain.HandleFalse} {
		if branches[handle] > 1 {
			problems = append(problems, fmt.Sprintf("Condition %q has %d %q branches", nodeID, branches[handle], handle))
		}
	}
	return problems
}
