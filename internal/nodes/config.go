package nodes

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

// decodeConfig unmarshals the node's JSON configuration into T. An empty configuration decodes as {}.
func decodeConfig[T any](node *domain.Node) (T, error) {
	var cfg T
	raw := strings.TrimSpace(node.Configuration)
	if raw == "" || raw == "null" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		var zero T
		return zero, configError(node.NodeType, "configuration is not valid JSON: %v", err)
	}
	return cfg, nil
}

// rawString returns the text of a JSON value that may be either a string or any other JSON document.
func rawString(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
			return s
		}
	}
	return trimmed
}
