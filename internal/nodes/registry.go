package nodes

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/config"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

// Executor runs one node. It reads its own configuration and the shared context and
// returns the value that becomes previousOutput.
type Executor interface {
	Execute(ctx context.Context, node *domain.Node, ectx *core.ExecutionContext) (any, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, node *domain.Node, ectx *core.ExecutionContext) (any, error)

func (f ExecutorFunc) Execute(ctx context.Context, node *domain.Node, ectx *core.ExecutionContext) (any, error) {
	return f(ctx, node, ectx)
}

// Registry binds node types to executors. It is built once and only read afterwards.
// Start and End have no entry.
type Registry map[domain.NodeType]Executor

func (r Registry) Lookup(nodeType domain.NodeType) (Executor, bool) {
	e, ok := r[nodeType]
	return e, ok
}

type SMTPDefaults struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

type Options struct {
	HTTPClient    *http.Client
	Clock         core.Clock
	ScriptTimeout time.Duration
	SMTP          SMTPDefaults
	OpenDB        func(driverName string, dsn string) (*sql.DB, error)
}

// DefaultOptions builds the executor options from the system settings.
func DefaultOptions(clock core.Clock) Options {
	return Options{
		HTTPClient:    &http.Client{Timeout: config.GetSystemSettingDuration(config.ENGINE_HTTP_TIMEOUT)},
		Clock:         clock,
		ScriptTimeout: config.GetSystemSettingDuration(config.ENGINE_SCRIPT_TIMEOUT),
		SMTP: SMTPDefaults{
			Host:     config.GetSystemSettingString(config.SMTP_HOST),
			Port:     config.GetSystemSettingInteger(config.SMTP_PORT),
			From:     config.GetSystemSettingString(config.SMTP_FROM),
			Username: config.GetSystemSettingString(config.SMTP_USERNAME),
			Password: config.GetSystemSettingString(config.SMTP_PASSWORD),
		},
		OpenDB: sql.Open,
	}
}

func NewRegistry(opts Options) Registry {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Clock == nil {
		opts.Clock = core.NewRealClock()
	}
	if opts.OpenDB == nil {
		opts.OpenDB = sql.Open
	}
	return Registry{
		domain.NodeTypeHttpRequest: &HttpRequestExecutor{Client: opts.HTTPClient},
		domain.NodeTypeDelay:       &DelayExecutor{Clock: opts.Clock},
		domain.NodeTypeCondition:   &ConditionExecutor{Timeout: opts.ScriptTimeout},
		domain.NodeTypeTransform:   &TransformExecutor{Timeout: opts.ScriptTimeout},
		domain.NodeTypeEmail:       &EmailExecutor{Defaults: opts.SMTP, Clock: opts.Clock},
		domain.NodeTypeScript:      &ScriptExecutor{Timeout: opts.ScriptTimeout},
		domain.NodeTypeDatabase:    &DatabaseExecutor{Open: opts.OpenDB},
	}
}
