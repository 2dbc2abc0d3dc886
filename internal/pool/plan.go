package pool

import "poolrecon/internal/ledger"

// Plan is the work a run will attempt.
type Plan struct {
	// Total is the number of rows in the ledger.
	Total int
	// Dispatch holds the eligible rows in ledger order.
	Dispatch []ledger.Row
	// Preseeded is the progress count before any job runs: every row that
	// will not be dispatched.
	Preseeded int
	// Reclaimed counts dispatched rows that an earlier session abandoned.
	Reclaimed int
	Summary   ledger.Summary
}

// NewPlan computes the dispatch set for policy.
func NewPlan(l *ledger.Ledger, policy ledger.Policy) Plan {
	dispatch := l.DispatchSet(policy)
	plan := Plan{
		Total:     l.Len(),
		Dispatch:  dispatch,
		Preseeded: l.Len() - len(dispatch),
		Summary:   l.Summarize(policy.SessionID),
	}
	for _, row := range dispatch {
		if row.State(policy.SessionID) == ledger.StateAbandoned {
			plan.Reclaimed++
		}
	}
	return plan
}
