package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jo-hoe/certshowcase/internal/core"
	"github.com/jo-hoe/certshowcase/internal/frontend"
)

func getConfigPath() string {
	// First check if config path is provided via environment variable
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}

	// Default to config.yaml in current working directory
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return filepath.Join(cwd, "config.yaml")
}

func main() {
	// Load configuration
	configPath := getConfigPath()
	config, err := core.LoadConfig(configPath)
	if err != nil {
		log.Printf("failed to load config from %s: %v", configPath, err)
		panic(err)
	}
	logger := config.SetupLogging(os.Stderr)

	coreService, err := core.NewCoreService(config)
	if err != nil {
		logger.Error("failed to initialize core service", "error", err)
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := frontend.Run(ctx, config, coreService); err != nil {
		logger.Error("server stopped with error", "error", err)
	}

	if err := coreService.Close(); err != nil {
		logger.Error("core service close error", "error", err)
	}
}
