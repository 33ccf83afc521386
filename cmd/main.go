package main

import (
	"os"
	"os/signal"
	"syscall"

	"workflowsvc/internal/bootstrap"
	"workflowsvc/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	container := bootstrap.NewContainer(version)
	container.MustInit()
	defer logger.Sync()

	if err := container.Start(); err != nil {
		container.Log.Fatalf("failed to start: %v", err)
	}

	waitForShutdown(container)
}

// waitForShutdown blocks until SIGINT/SIGTERM or a fatal server error
func waitForShutdown(container *bootstrap.Container) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		container.Log.Infow("Shutting down...", "signal", sig.String())
	case <-container.Context.Done():
		container.Log.Warn("Shutting down after fatal error")
	}

	container.Shutdown()
}
