package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/certshowcase/internal/core"
)

var (
	// Global flags
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "certshowcase",
	Short: "Certificate showcase website and tooling",
	Long: `certshowcase serves a list of completed online courses together with a
word cloud of their titles, and converts certificate PDFs into images.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CONFIG_PATH or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWordCloudCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newCoursesCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, "config.yaml"), nil
}

// loadConfig reads the config file, or uses the defaults when no file was
// asked for and ./config.yaml does not exist.
func loadConfig(cmd *cobra.Command) (*core.ServiceConfig, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}

	var config *core.ServiceConfig
	if _, statErr := os.Stat(path); statErr != nil && configPath == "" && os.Getenv("CONFIG_PATH") == "" {
		config = core.DefaultConfig()
	} else {
		config, err = core.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if logLevel != "" {
		config.LogLevel = logLevel
	}
	config.SetupLogging(cmd.ErrOrStderr())
	return config, nil
}

func withCoreService(cmd *cobra.Command, fn func(*core.ServiceConfig, *core.CoreService) error) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	coreService, err := core.NewCoreService(config)
	if err != nil {
		return err
	}
	defer func() {
		_ = coreService.Close()
	}()
	return fn(config, coreService)
}
