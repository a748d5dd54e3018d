package nodes

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

func setupSqliteFile(t *testing.T) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "node.db")
	db, err := sql.Open("sqlite3", file)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
		INSERT INTO customers (id, name) VALUES (1, 'alice'), (2, 'bob');`)
	require.NoError(t, err)
	return file
}

func TestDatabaseExecutor_SelectWithPositionalParameters(t *testing.T) {
	file := setupSqliteFile(t)
	executor := &DatabaseExecutor{Open: sql.Open}
	node := testNode(t, domain.NodeTypeDatabase, map[string]any{
		"databaseType":     "SQLite",
		"connectionString": file,
		"query":            "SELECT id, name FROM customers WHERE id = ?",
		"parameters":       []any{1},
	})

	result, err := executor.Execute(context.Background(), node, testContext(t, nil, nil))
	require.NoError(t, err)

	out := result.(map[string]any)
	assert.Equal(t, 1, out["rowCount"])
	rows := out["rows"].([]map[string]any)
	assert.Equal(t, "alice", rows[0]["name"])
	assert.Equal(t, int64(1), rows[0]["id"])
}

func TestDatabaseExecutor_SelectWithNamedParameters(t *testing.T) {
	file := setupSqliteFile(t)
	executor := &DatabaseExecutor{Open: sql.Open}
	node := testNode(t, domain.NodeTypeDatabase, map[string]any{
		"databaseType":     "sqlite",
		"connectionString": file,
		"query":            "SELECT name FROM customers WHERE name = :name",
		"parameters":       map[string]any{"name": "bob"},
	})

	result, err := executor.Execute(context.Background(), node, testContext(t, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, result.(map[string]any)["rowCount"])
}

func TestDatabaseExecutor_NonQueryReturnsAffectedRows(t *testing.T) {
	file := setupSqliteFile(t)
	executor := &DatabaseExecutor{Open: sql.Open}
	node := testNode(t, domain.NodeTypeDatabase, map[string]any{
		"databaseType":     "sqlite",
		"connectionString": file,
		"query":            "UPDATE customers SET name = upper(name)",
	})

	result, err := executor.Execute(context.Background(), node, testContext(t, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"affectedRows": int64(2), "success": true}, result)
}

func TestDatabaseExecutor_ConfigurationErrors(t *testing.T) {
	opened := false
	executor := &DatabaseExecutor{Open: func(driverName, dsn string) (*sql.DB, error) {
		opened = true
		return sql.Open(driverName, dsn)
	}}

	cases := map[string]map[string]any{
		"missing query":           {"connectionString": "postgres://localhost/db"},
		"missing connection":      {"query": "SELECT 1"},
		"unsupported type":        {"databaseType": "oracle", "connectionString": "x", "query": "SELECT 1"},
		"named on postgres":       {"connectionString": "postgres://localhost/db", "query": "SELECT 1", "parameters": map[string]any{"id": 1}},
		"bad parameters":          {"connectionString": "postgres://localhost/db", "query": "SELECT 1", "parameters": "id"},
		"sqlite stored procedure": {"databaseType": "sqlite", "connectionString": "x.db", "query": "proc", "isStoredProcedure": true},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			node := testNode(t, domain.NodeTypeDatabase, cfg)
			_, err := executor.Execute(context.Background(), node, testContext(t, nil, nil))
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
	assert.False(t, opened, "no connection may be opened for an invalid configuration")
}

func TestStoredProcedureCall(t *testing.T) {
	call, err := storedProcedureCall(sqlDialects["postgres"], "refresh_totals", []any{1, "x"})
	require.NoError(t, err)
	assert.Equal(t, "CALL refresh_totals($1, $2)", call)

	call, err = storedProcedureCall(sqlDialects["sqlserver"], "dbo.Refresh", []any{sql.Named("id", 1)})
	require.NoError(t, err)
	assert.Equal(t, "EXEC dbo.Refresh @id = @id", call)

	call, err = storedProcedureCall(sqlDialects["mysql"], "CALL already_built(?)", []any{1})
	require.NoError(t, err)
	assert.Equal(t, "CALL already_built(?)", call)
}
