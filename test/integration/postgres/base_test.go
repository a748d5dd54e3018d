package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/config"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation"
	"github.com/EdwardDuong/WorkFlowAutomation/test/integration/common"
)

var portBase int32 = 9098 // starting port number (can be anything safe)

func nextPort() int {
	return int(atomic.AddInt32(&portBase, 1))
}

// runTestWithSetup boots the whole application against a throwaway postgres container.
func runTestWithSetup(t *testing.T, testFunc func(t *testing.T, api *common.ApiClient)) {
	if testing.Short() {
		t.Skip("postgres integration tests need docker")
	}
	port := nextPort()
	t.Setenv("HTTP_ADDR", ":"+strconv.Itoa(port))
	container, dsn := SetupPostgresTestInstance(t)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			slog.Error("error terminating postgres container", "error", err)
		}
	})
	t.Setenv(config.DATABASE_TYPE, config.DATABASE_TYPE_POSTGRES)
	t.Setenv(config.DATABASE_URL, dsn)
	t.Setenv(config.ADMIN_PASSWORD, "integration")
	t.Setenv(config.ADMIN_API_KEY, common.AdminApiKey)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := workflowautomation.Setup().Run(ctx); err != nil {
			slog.Error("Application exited with error", "error", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	api := common.NewApiClient(port)
	api.WaitForServer(t)
	testFunc(t, api)
}

func SetupPostgresTestInstance(t *testing.T) (testcontainers.Container, string) {
	ctx := t.Context()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_USER":     "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "error starting postgres container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := "postgres://test:test@" + host + ":" + port.Port() + "/testdb?sslmode=disable"
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()
	require.Eventually(t, func() bool { return db.Ping() == nil }, 30*time.Second, 200*time.Millisecond, "postgres never accepted connections")
	return container, dsn
}
