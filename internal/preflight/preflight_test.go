package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"poolrecon/internal/services"
	"poolrecon/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckLedgerFile(t *testing.T) {
	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "ds-processed.csv")
	if result := CheckLedgerFile(ledgerPath); result.Passed {
		t.Fatal("expected failure for missing ledger")
	}
	testsupport.WriteText(t, ledgerPath, "identifier\n")
	if result := CheckLedgerFile(ledgerPath); !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	if result := CheckLedgerFile(dir); result.Passed {
		t.Fatal("expected failure for directory ledger path")
	}
}

func TestCheckToolEnvironment(t *testing.T) {
	t.Setenv("POOLRECON_TEST_TOOL", "")
	if result := CheckToolEnvironment("POOLRECON_TEST_TOOL"); result.Passed {
		t.Fatal("expected failure for empty variable")
	}
	t.Setenv("POOLRECON_TEST_TOOL", "/opt/freesurfer")
	if result := CheckToolEnvironment("POOLRECON_TEST_TOOL"); !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	if result := CheckToolEnvironment(""); !result.Passed {
		t.Fatal("blank variable name should not be required")
	}
}

func TestCheckSubjectsDir(t *testing.T) {
	out := t.TempDir()
	tests := []struct {
		name  string
		value string
		pass  bool
	}{
		{"exact", out, true},
		{"trailing slash", out + string(os.PathSeparator), true},
		{"other dir", t.TempDir(), false},
		{"unset", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("POOLRECON_TEST_SUBJECTS", tt.value)
			result := CheckSubjectsDir("POOLRECON_TEST_SUBJECTS", out)
			if result.Passed != tt.pass {
				t.Fatalf("Passed = %v, want %v (%s)", result.Passed, tt.pass, result.Detail)
			}
		})
	}
}

func TestRunAllPassesWithPreparedEnvironment(t *testing.T) {
	outputDir := t.TempDir()
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries(), testsupport.WithToolEnvironment(outputDir))
	datasetDir := t.TempDir()
	ledgerPath := filepath.Join(outputDir, "ds-processed.csv")
	testsupport.WriteText(t, ledgerPath, "identifier\n")

	results := RunAll(context.Background(), cfg, Target{DatasetRoot: datasetDir, OutputDir: outputDir, LedgerPath: ledgerPath})
	if err := Err(results); err != nil {
		t.Fatalf("expected all checks to pass: %v", err)
	}
}

func TestRunAllReportsConfigurationErrors(t *testing.T) {
	outputDir := t.TempDir()
	cfg := testsupport.NewConfig(t)
	cfg.Recon.Binary = "definitely-not-installed-recon"
	t.Setenv(cfg.Recon.ToolEnv, "")
	t.Setenv(cfg.Recon.SubjectsDirEnv, t.TempDir())

	results := RunAll(context.Background(), cfg, Target{DatasetRoot: filepath.Join(outputDir, "missing"), OutputDir: outputDir})
	failed := Failed(results)
	if len(failed) != 4 {
		t.Fatalf("expected 4 failures (dataset, tool env, subjects dir, binary), got %d: %+v", len(failed), failed)
	}
	err := Err(results)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), cfg.Recon.SubjectsDirEnv) {
		t.Fatalf("error should name the subjects variable: %v", err)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Target{}); results != nil {
		t.Fatalf("expected nil results, got %+v", results)
	}
}
