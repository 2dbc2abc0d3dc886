package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"poolrecon/internal/fileutil"
	"poolrecon/internal/ledger"
	"poolrecon/internal/ledgerdb"
)

func newLedgerCommand(_ *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:         "ledger",
		Short:       "Ledger maintenance",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	ledgerCmd.AddCommand(newLedgerExportCommand())
	ledgerCmd.AddCommand(newLedgerResetCommand())
	return ledgerCmd
}

func newLedgerExportCommand() *cobra.Command {
	var ledgerPath string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Append a snapshot of the ledger to a SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(ledgerPath)
			l, err := ledger.Load(path)
			if err != nil {
				return fmt.Errorf("load ledger: %w", err)
			}
			session, _, err := observerSession(path)
			if err != nil {
				return err
			}

			store, err := ledgerdb.Open(cmd.Context(), strings.TrimSpace(dbPath))
			if err != nil {
				return err
			}
			defer store.Close()

			source, err := filepath.Abs(path)
			if err != nil {
				source = path
			}
			id, err := store.Export(cmd.Context(), l, ledgerdb.Snapshot{
				Source:    source,
				At:        time.Now(),
				SessionID: session,
			})
			if err != nil {
				return fmt.Errorf("export ledger: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s (snapshot %d)\n", l.Len(), store.Path(), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "Ledger file to export")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (created if missing)")
	_ = cmd.MarkFlagRequired("ledger")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func newLedgerResetCommand() *cobra.Command {
	var ledgerPath string
	var failed bool
	var abandoned bool

	cmd := &cobra.Command{
		Use:   "reset [identifier...]",
		Short: "Clear progress so rows are dispatched again",
		Long: "Clears time_start, time_stop, success, and failure for the selected rows.\n" +
			"Select rows by identifier, --failed, --abandoned, or any combination.\n" +
			"A copy of the ledger is kept as <ledger>.bak.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !failed && !abandoned {
				return errors.New("nothing selected: pass identifiers, --failed, or --abandoned")
			}
			path := strings.TrimSpace(ledgerPath)
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("load ledger: %w", err)
			}

			lock, err := ledger.Acquire(path)
			if err != nil {
				return err
			}
			defer lock.Release()

			l, err := ledger.Load(path)
			if err != nil {
				return fmt.Errorf("load ledger: %w", err)
			}

			selected, err := selectResetRows(l, args, failed, abandoned)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(selected) == 0 {
				fmt.Fprintln(out, "No matching rows")
				return nil
			}

			if err := fileutil.CopyFile(path, path+".bak"); err != nil {
				return fmt.Errorf("back up ledger: %w", err)
			}
			for _, id := range selected {
				if err := l.ResetRow(id); err != nil {
					return err
				}
			}
			if err := ledger.Save(path, l); err != nil {
				return fmt.Errorf("save ledger: %w", err)
			}
			fmt.Fprintf(out, "Reset %d row(s)\n", len(selected))
			return nil
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "Ledger file to modify")
	cmd.Flags().BoolVar(&failed, "failed", false, "Reset rows whose job failed")
	cmd.Flags().BoolVar(&abandoned, "abandoned", false, "Reset rows left started by an interrupted run")
	_ = cmd.MarkFlagRequired("ledger")
	return cmd
}

// selectResetRows returns the identifiers to reset in ledger order. The
// caller holds the lock, so any started row without a stop is abandoned.
func selectResetRows(l *ledger.Ledger, ids []string, failed, abandoned bool) ([]string, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := l.Get(id); !ok {
			return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownIdentifier, id)
		}
		wanted[id] = true
	}

	var selected []string
	for _, row := range l.Rows() {
		started := row.Started() && !row.Stopped() && row.Success == nil
		switch {
		case wanted[row.Identifier]:
		case failed && row.Success != nil && !*row.Success:
		case abandoned && started:
		default:
			continue
		}
		selected = append(selected, row.Identifier)
	}
	return selected, nil
}
