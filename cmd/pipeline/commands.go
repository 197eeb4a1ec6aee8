package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/config"
	"github.com/BarkinBalci/bi-warehouse/internal/logger"
	"github.com/BarkinBalci/bi-warehouse/internal/pipeline"
	"github.com/BarkinBalci/bi-warehouse/internal/report"
	"github.com/BarkinBalci/bi-warehouse/internal/repository/warehouse"
)

// app holds what every subcommand needs; close releases it
type app struct {
	cfg  *config.Config
	log  *zap.Logger
	repo *warehouse.Repository
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Service.Environment, cfg.Service.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := warehouse.NewClient(ctx, &cfg.Warehouse, &cfg.ClickHouse, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}

	a := &app{
		cfg:  cfg,
		log:  log,
		repo: warehouse.NewRepository(client, cfg.Warehouse.LoadBatchSize, log),
	}

	if err := a.repo.EnsureSchema(ctx); err != nil {
		a.close()
		return nil, err
	}

	return a, nil
}

func (a *app) close() {
	if err := a.repo.Close(); err != nil {
		a.log.Error("Failed to close warehouse", zap.Error(err))
	}
	_ = a.log.Sync()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bi-pipeline",
		Short:         "Load marketing, sales and customer data into the BI warehouse",
		Long:          "bi-pipeline extracts campaign, sales target and customer records, derives KPIs, appends them to the warehouse and prints the standard reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(), newReportCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var dailyRows int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and print the reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dailyRows < 0 {
				return fmt.Errorf("--daily-rows must not be negative, got %d", dailyRows)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			p, err := pipeline.NewFromConfig(ctx, a.cfg, a.repo, a.log)
			if err != nil {
				return err
			}

			summary, err := p.Run(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSummary(out, summary)

			engine := report.NewEngine(a.repo, a.log)

			campaigns, err := engine.Run(ctx, report.CampaignSummary)
			if err != nil {
				return err
			}
			printResult(out, campaigns, -1)

			daily, err := engine.Run(ctx, report.DailyPerformance)
			if err != nil {
				return err
			}
			printResult(out, daily, dailyRows)

			return nil
		},
	}

	cmd.Flags().IntVar(&dailyRows, "daily-rows", 10, "number of daily performance rows to print")
	return cmd
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "report <name>",
		Short:     "Print a single report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{report.CampaignSummary, report.DailyPerformance},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := report.NewEngine(a.repo, a.log).Run(ctx, args[0])
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), result, -1)
			return nil
		},
	}
}
