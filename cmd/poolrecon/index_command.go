package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"poolrecon/internal/config"
	"poolrecon/internal/indexer"
	"poolrecon/internal/logging"
	"poolrecon/internal/services"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	var inputDir string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build a ledger from a dataset directory and its metadata table",
		Long: "Reads <dir>/<basename(dir)>.csv, drops repeat acquisitions and single-visit subjects,\n" +
			"resolves each remaining image to its file under <dir>, and writes the ledger\n" +
			"(default <parent>/<basename(dir)>-processed.csv).",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := config.ExpandPath(strings.TrimSpace(inputDir))
			if err != nil {
				return fmt.Errorf("resolve input directory: %w", err)
			}
			output := strings.TrimSpace(outputPath)
			if output != "" {
				if output, err = config.ExpandPath(output); err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
			}

			logger, closeLog, err := ctx.newLogger(uuid.NewString())
			if err != nil {
				return err
			}
			defer closeLog()

			opts := indexer.OptionsFromConfig(cfg)
			opts.Output = output
			opts.Logger = logger
			opts.Progress = newProgressReporter(cmd.ErrOrStderr(), "index", logger)

			report, err := indexer.Run(cmd.Context(), dir, opts)
			if err != nil {
				if services.IsConfiguration(err) {
					logging.Critical(logger, "index aborted", logging.Error(err))
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderCounts("Step", "Count", []count{
				{"Records", report.Records},
				{"Repeat acquisitions", report.Duplicates},
				{"Single-visit subjects", len(report.DroppedSubjects)},
				{"Retained", report.Retained},
				{"Resolved", report.Resolved},
				{"Unresolved", len(report.Unresolved)},
				{"Skipped files", len(report.Skipped)},
			}))
			fmt.Fprintf(out, "Ledger written to %s\n", report.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Dataset directory containing <name>/<name>.csv")
	cmd.Flags().StringVar(&outputPath, "output", "", "Ledger destination (default beside the dataset directory)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
