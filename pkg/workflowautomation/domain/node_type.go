package domain

type NodeType string

const (
	NodeTypeStart       NodeType = "Start"
	NodeTypeHttpRequest NodeType = "HttpRequest"
	NodeTypeDelay       NodeType = "Delay"
	NodeTypeCondition   NodeType = "Condition"
	NodeTypeTransform   NodeType = "Transform"
	NodeTypeEnd         NodeType = "End"
	NodeTypeEmail       NodeType = "Email"
	NodeTypeScript      NodeType = "Script"
	NodeTypeDatabase    NodeType = "Database"
)

// AllNodeTypes is the closed set of node types a workflow may contain.
var AllNodeTypes = []NodeType{
	NodeTypeStart,
	NodeTypeHttpRequest,
	NodeTypeDelay,
	NodeTypeCondition,
	NodeTypeTransform,
	NodeTypeEnd,
	NodeTypeEmail,
	NodeTypeScript,
	NodeTypeDatabase,
}

func (t NodeType) IsValid() bool {
	for _, nt := range AllNodeTypes {
		if nt == t {
			return true
		}
	}
	return false
}

// IsStructural reports whether the node only marks the entry or exit of a graph and has no executor.
func (t NodeType) IsStructural() bool {
	return t == NodeTypeStart || t == NodeTypeEnd
}
