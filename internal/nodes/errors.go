package nodes

import (
	"errors"
	"fmt"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

// ErrInvalidConfiguration marks errors caused by a node's own configuration. They are never retried.
var ErrInvalidConfiguration = errors.New("invalid node configuration")

type ConfigError struct {
	NodeType domain.NodeType
	Msg      string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s configuration: %s", e.NodeType, e.Msg)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

func configError(nodeType domain.NodeType, format string, args ...any) error {
	return &ConfigError{NodeType: nodeType, Msg: fmt.Sprintf(format, args...)}
}
