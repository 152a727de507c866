package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marketconnect/llm-session-bridge/app/app"
	"github.com/marketconnect/llm-session-bridge/app/internal/config"
	"github.com/marketconnect/llm-session-bridge/app/internal/logger"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "bridge",
		Short:         "HTTP bridge to a single long-lived assistant session",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd(), versionCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Error("application failed", "err", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var (
		port     int
		workDir  string
		logLevel string
		logFile  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			if cmd.Flags().Changed("port") {
				cfg.HTTP.Port = port
			}
			if workDir != "" {
				cfg.Session.DefaultWorkDir = workDir
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFile != "" {
				cfg.Log.File = logFile
			}
			if cfg.IsDebug {
				cfg.Log.Level = "debug"
			}
			if err := logger.Configure(cfg.Log.Level, cfg.Log.File); err != nil {
				return err
			}
			logger.SetReportCaller(cfg.IsDev)

			a, err := app.New(cfg, nil)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.Error("error closing application", "err", err)
				}
			}()
			return a.Run()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8000, "HTTP port (overrides PORT)")
	cmd.Flags().StringVarP(&workDir, "workdir", "w", "", "directory bound on the first command (overrides DEFAULT_WORKDIR)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (overrides LOG_FILE)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}
