// Package main provides the entry point for the CampusLens server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/campuslens/campuslens-server/internal/di"
	"github.com/campuslens/campuslens-server/internal/di/providers"
	"github.com/campuslens/campuslens-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// Database and inference cache use wrapper types, so close them
	// explicitly after the HTTP server has drained.
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		log.Info("Closing database...")
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}

	if cacheHandle, err := do.Invoke[*providers.InferenceCacheHandle](injector); err == nil {
		if err := cacheHandle.Shutdown(); err != nil {
			log.Error("Failed to close inference cache", "error", err)
		}
	}

	log.Info("Goodbye")
}
