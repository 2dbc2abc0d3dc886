package preflight

import (
	"context"
	"strings"

	"poolrecon/internal/config"
	"poolrecon/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Target names the paths a recon run will touch.
type Target struct {
	DatasetRoot string
	OutputDir   string
	LedgerPath  string
}

// RunAll executes every recon preflight check. Empty target paths are skipped.
func RunAll(ctx context.Context, cfg *config.Config, target Target) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if target.DatasetRoot != "" {
		results = append(results, CheckDirectoryReadable("Dataset directory", target.DatasetRoot))
	}
	if target.LedgerPath != "" {
		results = append(results, CheckLedgerFile(target.LedgerPath))
	}
	if target.OutputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", target.OutputDir))
	}
	if cfg.Recon.ToolLogDir != "" {
		results = append(results, CheckDirectoryAccess("Tool log directory", cfg.Recon.ToolLogDir))
	}

	results = append(results, CheckToolEnvironment(cfg.Recon.ToolEnv))
	if target.OutputDir != "" {
		results = append(results, CheckSubjectsDir(cfg.Recon.SubjectsDirEnv, target.OutputDir))
	}

	for _, status := range CheckSystemDeps(ctx, cfg) {
		result := Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Path
		}
		results = append(results, result)
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err folds failed results into a single configuration error, or nil.
func Err(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, r.Name+": "+r.Detail)
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check", strings.Join(parts, "; "), nil)
}
