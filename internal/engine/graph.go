package engine

import (
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

// graph indexes a workflow's nodes and outgoing edges. Edges keep their definition order.
type graph struct {
	wf       *domain.Workflow
	nodes    map[string]*domain.Node
	outgoing map[string][]*domain.Edge
}

func newGraph(wf *domain.Workflow) *graph {
	g := &graph{
		wf:       wf,
		nodes:    make(map[string]*domain.Node, len(wf.Nodes)),
		outgoing: make(map[string][]*domain.Edge, len(wf.Nodes)),
	}
	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		if _, exists := g.nodes[n.NodeID]; !exists {
			g.nodes[n.NodeID] = n
		}
	}
	for i := range wf.Edges {
		edge := &wf.Edges[i]
		g.outgoing[edge.SourceNodeID] = append(g.outgoing[edge.SourceNodeID], edge)
	}
	return g
}

func (g *graph) start() *domain.Node {
	for i := range g.wf.Nodes {
		if g.wf.Nodes[i].NodeType == domain.NodeTypeStart {
			return &g.wf.Nodes[i]
		}
	}
	return nil
}

// successors returns the nodes to visit after node. End stops the branch and a
// Condition follows only the edge whose handle matches its result.
func (g *graph) successors(node *domain.Node, ectx *core.ExecutionContext) []*domain.Node {
	switch node.NodeType {
	case domain.NodeTypeEnd:
		return nil
	case domain.NodeTypeCondition:
		result, _ := ectx.ConditionResult()
		handle := domain.HandleFalse
		if result {
			handle = domain.HandleTrue
		}
		for _, edge := range g.outgoing[node.NodeID] {
			if edge.SourceHandle.Valid && edge.SourceHandle.String == handle {
				if target, ok := g.nodes[edge.TargetNodeID]; ok {
					return []*domain.Node{target}
				}
			}
		}
		return nil
	}

	next := make([]*domain.Node, 0, len(g.outgoing[node.NodeID]))
	for _, edge := range g.outgoing[node.NodeID] {
		if target, ok := g.nodes[edge.TargetNodeID]; ok {
			next = append(next, target)
		}
	}
	return next
}

// reachableFrom lists every node id reachable from id along any edge.
func (g *graph) reachableFrom(id string) map[string]bool {
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, edge := range g.outgoing[current] {
			if _, ok := g.nodes[edge.TargetNodeID]; ok && !seen[edge.TargetNodeID] {
				seen[edge.TargetNodeID] = true
				queue = append(queue, edge.TargetNodeID)
			}
		}
	}
	return seen
}
