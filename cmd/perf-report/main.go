package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"animehub/internal/catalog"
	"animehub/pkg/database"
	"animehub/pkg/utils"
)

func main() {
	var (
		configPath string
		out        string
		runs       int
	)

	root := &cobra.Command{
		Use:           "perf-report",
		Short:         "Time every catalog query and write the performance report",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, out, runs)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ./animehub.yaml)")
	root.Flags().StringVarP(&out, "output", "o", "", "report path (default: report_path from config)")
	root.Flags().IntVarP(&runs, "runs", "n", 10, "executions per query")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "perf-report:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, out string, runs int) error {
	cfg, err := utils.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if out == "" {
		out = cfg.ReportPath
	}

	conn, err := database.Open(ctx, database.Config{URI: cfg.MongoURI, Name: cfg.DBName})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(context.Background()) }()

	timings, err := measure(ctx, catalog.NewRepo(conn), runs, time.Now)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeReport(f, timings); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Info("performance report written",
		zap.String("path", out),
		zap.Int("queries", len(timings)),
		zap.Int("runs", runs))
	return nil
}
