package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/sensor-logger/internal/config"
)

var version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "senlog",
		Short:         "Sensor Logger - record serial IMU telemetry into per-session CSV files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/senlog/config.toml)")

	rootCmd.AddCommand(recordCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

// loadConfig loads the config and pins the data root to an absolute path so
// catalog keys do not depend on the working directory.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath == "" {
		cfg, err = config.Load()
	} else {
		var home string
		home, err = os.UserHomeDir()
		if err == nil {
			cfg, err = config.LoadFile(configPath, home)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	root, err := filepath.Abs(cfg.DataRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve data root: %w", err)
	}
	cfg.DataRoot = root
	return cfg, nil
}
