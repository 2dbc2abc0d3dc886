package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"poolrecon/internal/config"
	"poolrecon/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckDirectoryReadable verifies that the directory exists and can be listed.
func CheckDirectoryReadable(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "path not set"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckLedgerFile verifies that the ledger exists as a regular, writable file.
func CheckLedgerFile(path string) Result {
	const name = "Ledger"
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.Mode().IsRegular() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a regular file)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckToolEnvironment verifies that the tool's installation variable is set.
func CheckToolEnvironment(envName string) Result {
	name := "Environment " + envName
	if strings.TrimSpace(envName) == "" {
		return Result{Name: "Tool environment", Passed: true, Detail: "not required"}
	}
	value, ok := os.LookupEnv(envName)
	if !ok || strings.TrimSpace(value) == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not set", envName)}
	}
	return Result{Name: name, Passed: true, Detail: value}
}

// CheckSubjectsDir verifies that the tool's output variable points at outputDir.
func CheckSubjectsDir(envName, outputDir string) Result {
	name := "Environment " + envName
	value, ok := os.LookupEnv(envName)
	if !ok || strings.TrimSpace(value) == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not set (expected %s)", envName, outputDir)}
	}
	if !samePath(value, outputDir) {
		return Result{Name: name, Detail: fmt.Sprintf("%s=%s does not match output directory %s", envName, value, outputDir)}
	}
	return Result{Name: name, Passed: true, Detail: value}
}

func samePath(a, b string) bool {
	if expanded, err := config.ExpandPath(a); err == nil {
		a = expanded
	}
	if expanded, err := config.ExpandPath(b); err == nil {
		b = expanded
	}
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	return errA == nil && errB == nil && ra == rb
}

// CheckSystemDeps evaluates the executables a recon run needs.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "recon-all",
			Command:     cfg.ReconBinary(),
			Description: "Required for cortical reconstruction",
		},
	}
	return deps.CheckBinaries(requirements)
}
