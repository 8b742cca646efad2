// Package cmd provides the CLI commands for gavchat.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aiprlassist/gavchat/internal/appdir"
	"github.com/aiprlassist/gavchat/internal/config"
	"github.com/aiprlassist/gavchat/internal/logging"
)

var (
	// Global flags
	configPath    string
	backendURL    string
	debug         bool
	logLevel      string
	logFile       string
	logComponents string

	// Loaded configuration
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gavchat",
	Short: "Gavchat - a terminal client for the Gavigan's agent backend",
	Long: `Gavchat is a command-line client for the Gavigan's hosted agent
backend. It keeps a durable visitor identity, recovers the previous
conversation on startup, streams agent replies as they are produced, and
stays connected for human-agent handoff messages.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help and completion commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		// Priority: --log-level flag > --debug flag > default (info)
		effectiveLogLevel := "info"
		if logLevel != "" {
			effectiveLogLevel = logLevel
		} else if debug {
			effectiveLogLevel = "debug"
		}
		var components []string
		if logComponents != "" {
			for _, c := range strings.Split(logComponents, ",") {
				c = strings.TrimSpace(c)
				if c != "" {
					components = append(components, c)
				}
			}
		}

		if err := appdir.EnsureDir(); err != nil {
			return fmt.Errorf("failed to create gavchat directory: %w", err)
		}

		// Load configuration: --config beats the settings file in the
		// gavchat directory; a missing settings file means defaults.
		var err error
		if configPath != "" {
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
			}
		} else {
			settingsPath, err := appdir.SettingsPath()
			if err != nil {
				return err
			}
			cfg, err = config.LoadOrDefault(settingsPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
		}
		if backendURL != "" {
			cfg.BackendURL = backendURL
		}

		logCfg := logging.Config{
			Level:      effectiveLogLevel,
			LogFile:    logFile,
			Components: components,
			JSON:       cfg.Logging.JSON,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		}
		if logCfg.LogFile == "" {
			logCfg.LogFile = cfg.Logging.File
		}
		if logLevel == "" && !debug && cfg.Logging.Level != "" {
			logCfg.Level = cfg.Logging.Level
		}
		if err := logging.Initialize(logCfg); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file path (overrides settings.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides configuration and "+config.BackendURLEnv+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging (shorthand for --log-level=debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: info)")
	rootCmd.PersistentFlags().StringVarP(&logFile, "logfile", "l", "", "Log file path (logs are also written to console)")
	rootCmd.PersistentFlags().StringVar(&logComponents, "log-components", "", "Comma-separated list of components to log (e.g., 'chat,inbox,backend'). Empty means all components.")
}
