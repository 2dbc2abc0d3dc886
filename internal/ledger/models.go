package ledger

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the on-disk format for time_start and time_stop.
const TimestampLayout = "2006-01-02-15:04:05"

// Row is one imaging item tracked by the ledger.
type Row struct {
	Identifier      string
	Subject         string
	SubjectScopedID string
	RelativePath    string
	AcqDate         string
	Description     string
	TimeStart       time.Time
	TimeStop        time.Time
	// Success is nil until an outcome has been recorded.
	Success   *bool
	Failure   string
	SessionID string
	Extra     map[string]string
}

// OutcomeKind classifies how a job ended.
type OutcomeKind string

const (
	OutcomeSuccess      OutcomeKind = "success"
	OutcomeExitStatus   OutcomeKind = "exit_status"
	OutcomeProcessError OutcomeKind = "process_error"
	OutcomeMissingInput OutcomeKind = "missing_input"
	OutcomeCanceled     OutcomeKind = "canceled"
)

// Outcome is the typed result of one external tool invocation.
type Outcome struct {
	Kind     OutcomeKind
	ExitCode int
	Detail   string
}

// Succeeded reports whether the outcome should be persisted as success=true.
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess
}

// FailureText renders the value stored in the failure column.
func (o Outcome) FailureText() string {
	switch o.Kind {
	case OutcomeSuccess, "":
		return ""
	case OutcomeExitStatus:
		return fmt.Sprintf("%s: %d", o.Kind, o.ExitCode)
	default:
		detail := strings.TrimSpace(o.Detail)
		if detail == "" {
			return string(o.Kind)
		}
		return string(o.Kind) + ": " + detail
	}
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	out := r
	if r.Success != nil {
		v := *r.Success
		out.Success = &v
	}
	if r.Extra != nil {
		out.Extra = make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Started reports whether time_start has been recorded.
func (r Row) Started() bool { return !r.TimeStart.IsZero() }

// Stopped reports whether time_stop has been recorded.
func (r Row) Stopped() bool { return !r.TimeStop.IsZero() }

// Resolved reports whether the indexer found an input file for the row.
func (r Row) Resolved() bool { return strings.TrimSpace(r.RelativePath) != "" }

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(TimestampLayout)
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "nan") {
		return time.Time{}, nil
	}
	return time.ParseInLocation(TimestampLayout, value, time.Local)
}

func formatSuccess(v *bool) string {
	if v == nil {
		return ""
	}
	if *v {
		return "true"
	}
	return "false"
}

func parseSuccess(value string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "nan":
		return nil, nil
	case "true", "1", "1.0", "yes", "ok":
		v := true
		return &v, nil
	case "false", "0", "0.0", "no", "fail", "failed":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("unrecognized success value %q", value)
	}
}
