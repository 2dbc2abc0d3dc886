package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"poolrecon/internal/config"
	"poolrecon/internal/logging"
	"poolrecon/internal/pool"
	"poolrecon/internal/preflight"
	"poolrecon/internal/services"
	"poolrecon/internal/services/reconall"
)

func newReconCommand(ctx *commandContext) *cobra.Command {
	var datasetDir string
	var outputDir string
	var ledgerPath string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "recon",
		Short: "Run the analysis tool over every pending ledger row",
		Long: "Dispatches each eligible ledger row to the external tool with a bounded worker pool.\n" +
			"Progress is persisted after every start and stop, so an interrupted run resumes\n" +
			"where it left off.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			dataset, err := config.ExpandPath(strings.TrimSpace(datasetDir))
			if err != nil {
				return fmt.Errorf("resolve dataset directory: %w", err)
			}
			output, err := config.ExpandPath(strings.TrimSpace(outputDir))
			if err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}
			ledgerFile := strings.TrimSpace(ledgerPath)
			if ledgerFile == "" {
				ledgerFile = defaultReconLedger(dataset, output)
			} else if ledgerFile, err = config.ExpandPath(ledgerFile); err != nil {
				return fmt.Errorf("resolve ledger path: %w", err)
			}
			workers := cfg.Recon.Concurrency
			if cmd.Flags().Changed("concurrency") {
				if concurrency <= 0 {
					return fmt.Errorf("--concurrency must be positive, got %d", concurrency)
				}
				workers = concurrency
			}

			sessionID := uuid.NewString()
			logger, closeLog, err := ctx.newLogger(sessionID)
			if err != nil {
				return err
			}
			defer closeLog()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			results := preflight.RunAll(runCtx, cfg, preflight.Target{
				DatasetRoot: dataset,
				OutputDir:   output,
				LedgerPath:  ledgerFile,
			})
			for _, failed := range preflight.Failed(results) {
				logger.Error("preflight check failed",
					logging.String("check", failed.Name),
					logging.String("detail", failed.Detail),
				)
			}
			if err := preflight.Err(results); err != nil {
				logging.Critical(logger, "recon aborted before start", logging.Error(err))
				return err
			}

			client, err := reconall.New(cfg.ReconBinary(), reconall.WithLogDir(cfg.Recon.ToolLogDir))
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "recon", "init tool", "", err)
			}

			manager, err := pool.NewManager(pool.Options{
				LedgerPath:       ledgerFile,
				DatasetRoot:      dataset,
				Concurrency:      workers,
				SessionID:        sessionID,
				ReclaimAbandoned: cfg.Recon.ReclaimAbandoned,
				Tool:             client,
				Progress:         newProgressReporter(cmd.ErrOrStderr(), "recon", logger),
				Logger:           logger,
			})
			if err != nil {
				logging.Critical(logger, "recon aborted before start", logging.Error(err))
				return err
			}

			logger.Info("recon starting",
				logging.String("dataset", dataset),
				logging.String("ledger", ledgerFile),
				logging.Int("concurrency", workers),
			)
			result, err := manager.Run(runCtx)
			if err != nil && services.IsConfiguration(err) {
				logging.Critical(logger, "recon aborted before start", logging.Error(err))
				return err
			}

			printReconResult(cmd, ledgerFile, result)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Interrupted; in-flight rows were reset and will run next time.")
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&datasetDir, "dataset-dir", "d", "", "Dataset root that ledger relative paths resolve against")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Tool output directory (must match the subjects directory variable)")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "Ledger file (default <output-dir>/<dataset name>-processed.csv)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", pool.DefaultConcurrency, "Number of concurrent tool processes (overrides recon.concurrency)")
	_ = cmd.MarkFlagRequired("dataset-dir")
	_ = cmd.MarkFlagRequired("output-dir")
	return cmd
}

func defaultReconLedger(datasetDir, outputDir string) string {
	return filepath.Join(outputDir, filepath.Base(filepath.Clean(datasetDir))+"-processed.csv")
}

func printReconResult(cmd *cobra.Command, ledgerFile string, result pool.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderCounts("Rows", "Count", []count{
		{"Ledger rows", result.Plan.Total},
		{"Already handled", result.Plan.Preseeded},
		{"Dispatched", len(result.Plan.Dispatch)},
		{"Reclaimed", result.Plan.Reclaimed},
		{"Succeeded", result.Succeeded},
		{"Failed", result.Failed},
		{"Reset (interrupted)", result.Canceled},
	}))

	if len(result.Failures) > 0 {
		ids := make([]string, 0, len(result.Failures))
		for id := range result.Failures {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		rows := make([][]string, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, []string{id, result.Failures[id].FailureText()})
		}
		fmt.Fprintln(out, renderTable([]column{{title: "Identifier"}, {title: "Failure"}}, rows))
	}
	fmt.Fprintf(out, "Ledger: %s\n", ledgerFile)
}
