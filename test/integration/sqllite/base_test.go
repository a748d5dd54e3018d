package sqllite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/config"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation"
	"github.com/EdwardDuong/WorkFlowAutomation/test/integration/common"
)

var portBase int32 = 9018 // starting port number (can be anything safe)

func nextPort() int {
	return int(atomic.AddInt32(&portBase, 1))
}

// runTestWithSetup boots the whole application on a fresh sqlite file and a free port.
func runTestWithSetup(t *testing.T, testFunc func(t *testing.T, api *common.ApiClient)) {
	port := nextPort()
	filename := filepath.Join(t.TempDir(), fmt.Sprintf("workflowautomation-test-%d.db", port))
	t.Setenv("HTTP_ADDR", ":"+strconv.Itoa(port))
	SetupSqlLiteTestInstance(t, filename)

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
		os.Remove(filename)
	})

	api := common.NewApiClient(port)
	api.WaitForServer(t)
	testFunc(t, api)
}

func SetupSqlLiteTestInstance(t *testing.T, filename string) {
	t.Setenv(config.DATABASE_TYPE, config.DATABASE_TYPE_SQLLITE)
	t.Setenv(config.DATABASE_SQLLITE_FILE_NAME, filename)
	t.Setenv(config.ADMIN_PASSWORD, "integration")
	t.Setenv(config.ADMIN_API_KEY, common.AdminApiKey)
}
