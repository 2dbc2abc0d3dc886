package deps

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Requirement names an executable that must resolve before work starts.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement after resolution. Path holds the absolute
// executable location when Available.
type Status struct {
	Requirement
	Path      string
	Available bool
	Detail    string
}

// CheckBinaries resolves every requirement against PATH, in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		results = append(results, resolve(req))
	}
	return results
}

func resolve(req Requirement) Status {
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		} else {
			status.Detail = fmt.Sprintf("binary %q unusable: %v", req.Command, err)
		}
		return status
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	status.Path = path
	status.Available = true
	return status
}
