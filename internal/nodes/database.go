package nodes

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

type databaseConfig struct {
	DatabaseType      string          `json:"databaseType"`
	ConnectionString  string          `json:"connectionString"`
	Query             string          `json:"query"`
	IsStoredProcedure bool            `json:"isStoredProcedure"`
	Parameters        json.RawMessage `json:"parameters"`
}

type sqlDialect struct {
	driver       string
	named        bool
	storedPrefix string
	bind         func(i int) string
}

var sqlDialects = map[string]sqlDialect{
	"postgres":  {driver: "postgres", storedPrefix: "CALL", bind: func(i int) string { return fmt.Sprintf("$%d", i) }},
	"mysql":     {driver: "mysql", storedPrefix: "CALL", bind: func(int) string { return "?" }},
	"sqlite3":   {driver: "sqlite3", named: true, bind: func(int) string { return "?" }},
	"sqlserver": {driver: "sqlserver", named: true, storedPrefix: "EXEC", bind: func(i int) string { return fmt.Sprintf("@p%d", i) }},
}

var databaseTypeAliases = map[string]string{
	"":           "postgres",
	"postgres":   "postgres",
	"postgresql": "postgres",
	"mysql":      "mysql",
	"sqlite":     "sqlite3",
	"sqlite3":    "sqlite3",
	"sqlserver":  "sqlserver",
	"mssql":      "sqlserver",
}

// DatabaseExecutor opens one connection, runs one statement and closes it again.
type DatabaseExecutor struct {
	Open func(driverName string, dsn string) (*sql.DB, error)
}

func (e *DatabaseExecutor) Execute(ctx context.Context, node *domain.Node, ectx *core.ExecutionContext) (any, error) {
	cfg, err := decodeConfig[databaseConfig](node)
	if err != nil {
		return nil, err
	}
	name, ok := databaseTypeAliases[strings.ToLower(strings.TrimSpace(cfg.DatabaseType))]
	if !ok {
		return nil, configError(node.NodeType, "unsupported databaseType %q", cfg.DatabaseType)
	}
	dialect := sqlDialects[name]
	if strings.TrimSpace(cfg.ConnectionString) == "" {
		return nil, configError(node.NodeType, "connectionString is required")
	}
	if strings.TrimSpace(cfg.Query) == "" {
		return nil, configError(node.NodeType, "query is required")
	}

	args, named, err := parseParameters(cfg.Parameters)
	if err != nil {
		return nil, configError(node.NodeType, "%v", err)
	}
	if named && !dialect.named {
		return nil, configError(node.NodeType, "%s does not support named parameters, pass parameters as an array", name)
	}

	statement := strings.TrimSpace(cfg.Query)
	returnsRows := isQuery(statement)
	if cfg.IsStoredProcedure {
		if statement, err = storedProcedureCall(dialect, statement, args); err != nil {
			return nil, configError(node.NodeType, "%v", err)
		}
		returnsRows = true
	}

	dsn := cfg.ConnectionString
	if dialect.driver == "mysql" {
		dsn = strings.TrimPrefix(dsn, "mysql://")
	}
	db, err := e.Open(dialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", name, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if returnsRows {
		rows, err := queryRows(ctx, db, statement, args)
		if err != nil {
			return nil, err
		}
		return map[string]any{"rowCount": len(rows), "rows": rows}, nil
	}

	res, err := db.ExecContext(ctx, statement, args...)
	if err != nil {
		return nil, fmt.Errorf("execute statement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("read affected rows: %w", err)
	}
	return map[string]any{"affectedRows": affected, "success": true}, nil
}

func isQuery(statement string) bool {
	upper := strings.ToUpper(statement)
	return strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH")
}

// parseParameters accepts a JSON array (positional) or object (named) of parameter values.
func parseParameters(raw json.RawMessage) ([]any, bool, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, false, nil
	}
	switch trimmed[0] {
	case '[':
		var positional []any
		if err := json.Unmarshal([]byte(trimmed), &positional); err != nil {
			return nil, false, fmt.Errorf("parameters: %v", err)
		}
		return positional, false, nil
	case '{':
		var byName map[string]any
		if err := json.Unmarshal([]byte(trimmed), &byName); err != nil {
			return nil, false, fmt.Errorf("parameters: %v", err)
		}
		keys := make([]string, 0, len(byName))
		for k := range byName {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		args := make([]any, 0, len(keys))
		for _, k := range keys {
			args = append(args, sql.Named(strings.TrimLeft(k, "@:$"), byName[k]))
		}
		return args, true, nil
	default:
		return nil, false, fmt.Errorf("parameters must be an array or an object")
	}
}

func storedProcedureCall(dialect sqlDialect, procedure string, args []any) (string, error) {
	upper := strings.ToUpper(procedure)
	if strings.HasPrefix(upper, "CALL ") || strings.HasPrefix(upper, "EXEC ") || strings.HasPrefix(upper, "EXECUTE ") {
		return procedure, nil
	}
	if dialect.storedPrefix == "" {
		return "", fmt.Errorf("%s has no stored procedures", dialect.driver)
	}
	binds := make([]string, 0, len(args))
	for i, a := range args {
		if n, ok := a.(sql.NamedArg); ok {
			binds = append(binds, "@"+n.Name+" = @"+n.Name)
			continue
		}
		binds = append(binds, dialect.bind(i+1))
	}
	if dialect.storedPrefix == "EXEC" {
		return strings.TrimSpace("EXEC " + procedure + " " + strings.Join(binds, ", ")), nil
	}
	return "CALL " + procedure + "(" + strings.Join(binds, ", ") + ")", nil
}

func queryRows(ctx context.Context, db *sql.DB, statement string, args []any) ([]map[string]any, error) {
	rows, err := db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	result := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, c := range columns {
			row[c] = columnValue(values[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func columnValue(v any) any {
	switch tv := v.(type) {
	case []byte:
		return string(tv)
	case time.Time:
		return tv.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}
