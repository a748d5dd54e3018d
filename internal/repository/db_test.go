package repository

import (
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/config"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/migrations"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
)

var testStart = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// newTestDB migrates a fresh sqlite file and returns it with a fake clock.
func newTestDB(t *testing.T) (*sql.DB, *core.FakeClock) {
	t.Helper()
	t.Setenv(config.DATABASE_TYPE, config.DATABASE_TYPE_SQLLITE)
	file := filepath.Join(t.TempDir(), "repository-test.db")

	sub, err := fs.Sub(migrations.FS, "sqllite3")
	require.NoError(t, err)
	source, err := iofs.New(sub, ".")
	require.NoError(t, err)
	m, err := migrate.NewWithSourceInstance("iofs", source, "sqlite3://"+file)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate: %v", err)
	}
	m.Close()

	db, err := sql.Open("sqlite3", file+"?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db, core.NewFakeClock(testStart)
}
