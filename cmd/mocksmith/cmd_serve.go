package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mocksmith/internal/config"
	"mocksmith/internal/logging"
	"mocksmith/internal/server"
	"mocksmith/internal/store"
)

// serveCmd runs the HTTP API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mockup generation HTTP server",
	Long: `Starts the HTTP API server.

Endpoints:
  POST /api/generate     Generate a screen batch from a description
  POST /api/palette      Derive a color palette from a base color
  POST /api/images/edit  Edit a previously generated image
  GET  /api/projects     List stored projects
  GET  /api/projects/{id}  Fetch one project with screens and images
  GET  /health           Liveness check`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}

	dbPath := cfg.Storage.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(resolveWorkspace(), dbPath)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	srv := server.New(cfg, gen, st)

	// Reload logging toggles when the config file changes on disk.
	watcher, err := config.Watch(config.DefaultPath(resolveWorkspace()), func(updated *config.Config) {
		logging.ConfigInfo("configuration reloaded")
	})
	if err != nil {
		logging.ConfigWarn("config watcher unavailable: %v", err)
	} else {
		defer watcher.Close()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	fmt.Printf("mocksmith %s listening on %s (model %s)\n", version, cfg.Server.Addr, cfg.LLM.Model)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		fmt.Printf("\nReceived %s, shutting down\n", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
