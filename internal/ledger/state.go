package ledger

import "strings"

// State is the derived lifecycle position of a row.
type State string

const (
	StateUnresolved State = "unresolved"
	StatePending    State = "pending"
	StateInFlight   State = "in_flight"
	StateAbandoned  State = "abandoned"
	StateStopped    State = "stopped"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// LiveSessions may be passed as the current session when another process is
// known to hold the ledger lock: every started row is then treated as live.
const LiveSessions = "*"

var allStates = []State{
	StatePending,
	StateInFlight,
	StateAbandoned,
	StateStopped,
	StateSucceeded,
	StateFailed,
	StateUnresolved,
}

// AllStates returns the states in display order.
func AllStates() []State {
	return append([]State(nil), allStates...)
}

// Policy controls dispatch eligibility for one pool run.
type Policy struct {
	// SessionID identifies the run asking for work.
	SessionID string
	// ReclaimAbandoned makes rows started by a dead session eligible again.
	ReclaimAbandoned bool
}

// State classifies the row relative to the current session.
func (r Row) State(currentSession string) State {
	switch {
	case r.Success != nil && *r.Success:
		return StateSucceeded
	case r.Success != nil:
		return StateFailed
	case r.Stopped():
		return StateStopped
	case r.Started():
		session := strings.TrimSpace(r.SessionID)
		if session == "" || currentSession == LiveSessions || session == currentSession {
			return StateInFlight
		}
		return StateAbandoned
	case !r.Resolved():
		return StateUnresolved
	default:
		return StatePending
	}
}

// Eligible reports whether the row may be dispatched under policy. A row is
// eligible when it has no start, stop, or outcome recorded and has an input
// path; abandoned rows qualify only when the policy reclaims them.
func (r Row) Eligible(policy Policy) bool {
	switch r.State(policy.SessionID) {
	case StatePending:
		return true
	case StateAbandoned:
		return policy.ReclaimAbandoned && r.Resolved()
	default:
		return false
	}
}

// DispatchSet returns the eligible rows in ledger order.
func (l *Ledger) DispatchSet(policy Policy) []Row {
	var out []Row
	for _, row := range l.rows {
		if row.Eligible(policy) {
			out = append(out, row.Clone())
		}
	}
	return out
}

// Summary aggregates row counts per state.
type Summary struct {
	Total  int
	Counts map[State]int
}

// Summarize counts rows per state relative to currentSession.
func (l *Ledger) Summarize(currentSession string) Summary {
	summary := Summary{Total: len(l.rows), Counts: make(map[State]int, len(allStates))}
	for _, row := range l.rows {
		summary.Counts[row.State(currentSession)]++
	}
	return summary
}
