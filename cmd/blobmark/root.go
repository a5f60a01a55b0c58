package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/blobmark/blobmark/config"
	"github.com/blobmark/blobmark/logging"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string

	rootCmd := &cobra.Command{
		Use:           "blobmark",
		Short:         "Overlay stylized markers on moving regions of a video",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Settings file path (TOML)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newExportCommand(&configFlag, &logLevelFlag))
	rootCmd.AddCommand(newPreviewCommand(&configFlag, &logLevelFlag))
	rootCmd.AddCommand(newFormatsCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// loadSettings reads the settings file (or defaults) and builds the logger.
func loadSettings(configPath, logLevel string) (config.Settings, *slog.Logger, error) {
	set, err := config.Load(configPath)
	if err != nil {
		return config.Settings{}, nil, err
	}
	if logLevel != "" {
		set.LogLevel = logLevel
	}
	logger := logging.New(logging.Options{Level: set.LogLevel, Format: set.LogFormat})
	return set, logger, nil
}

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print an annotated sample settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), config.Sample())
			return nil
		},
	}
}
