package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"poolrecon/internal/ledger"
)

func newStatusCommand(_ *commandContext) *cobra.Command {
	var ledgerPath string
	var showRows bool

	cmd := &cobra.Command{
		Use:         "status",
		Short:       "Summarize ledger progress",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(ledgerPath)
			l, err := ledger.Load(path)
			if err != nil {
				return fmt.Errorf("load ledger: %w", err)
			}
			session, running, err := observerSession(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			summary := l.Summarize(session)
			counts := make([]count, 0, len(ledger.AllStates())+1)
			for _, state := range ledger.AllStates() {
				counts = append(counts, count{stateLabel(state), summary.Counts[state]})
			}
			counts = append(counts, count{"Total", summary.Total})
			fmt.Fprintln(out, renderCounts("State", "Rows", counts))
			fmt.Fprintf(out, "Run in progress: %s\n", yesNo(running))

			if showRows {
				fmt.Fprintln(out, renderTable(rowColumns, ledgerRows(l, session)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "Ledger file to inspect")
	cmd.Flags().BoolVar(&showRows, "rows", false, "List every row with its state")
	_ = cmd.MarkFlagRequired("ledger")
	return cmd
}

// observerSession picks the session used to classify started rows from
// outside a run. While a run holds the lock every started row is live;
// otherwise rows left with a session id are abandoned.
func observerSession(ledgerPath string) (string, bool, error) {
	locked, err := ledger.IsLocked(ledgerPath)
	if err != nil {
		return "", false, err
	}
	if locked {
		return ledger.LiveSessions, true, nil
	}
	return "", false, nil
}

var rowColumns = []column{
	{title: "Identifier"},
	{title: "Subject"},
	{title: "State"},
	{title: "Started"},
	{title: "Stopped"},
	{title: "Failure"},
}

func ledgerRows(l *ledger.Ledger, session string) [][]string {
	rows := make([][]string, 0, l.Len())
	for _, row := range l.Rows() {
		rows = append(rows, []string{
			row.Identifier,
			row.Subject,
			stateLabel(row.State(session)),
			formatTime(row.TimeStart),
			formatTime(row.TimeStop),
			row.Failure,
		})
	}
	return rows
}

func stateLabel(state ledger.State) string {
	return strings.ReplaceAll(string(state), "_", " ")
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(ledger.TimestampLayout)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
