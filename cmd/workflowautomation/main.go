package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation"
)

func main() {
	//you may do your own logger setup here or use this default one with slog
	workflowautomation.SetupLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := workflowautomation.Setup().Run(ctx); err != nil {
		slog.Error("Workflow automation exited with error", "error", err)
		os.Exit(1)
	}
}
