package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"poolrecon/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "poolrecon", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.Recon.Concurrency != 12 {
		t.Fatalf("expected default concurrency 12, got %d", cfg.Recon.Concurrency)
	}
	if cfg.Recon.Binary != "recon-all" {
		t.Fatalf("unexpected binary %q", cfg.Recon.Binary)
	}
	if !cfg.Recon.ReclaimAbandoned {
		t.Fatal("expected abandoned rows to be reclaimed by default")
	}
	if cfg.Index.IdentifierColumn != "Image Data ID" || cfg.Index.ImageExtension != ".nii" {
		t.Fatalf("unexpected index defaults: %+v", cfg.Index)
	}
	if len(cfg.Index.DuplicateMarkers) != 1 || cfg.Index.DuplicateMarkers[0] != "_2" {
		t.Fatalf("unexpected duplicate markers: %v", cfg.Index.DuplicateMarkers)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "poolrecon.toml")
	content := `
[paths]
log_dir = "~/logs"

[recon]
binary = " /opt/freesurfer/bin/recon-all "
concurrency = 4
tool_log_dir = "~/tool-logs"

[index]
image_extension = "nii"
duplicate_markers = [" _2 ", "", "REPEAT"]

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, "logs") {
		t.Fatalf("unexpected log dir %q", cfg.Paths.LogDir)
	}
	if cfg.Recon.ToolLogDir != filepath.Join(tempHome, "tool-logs") {
		t.Fatalf("unexpected tool log dir %q", cfg.Recon.ToolLogDir)
	}
	if cfg.ReconBinary() != "/opt/freesurfer/bin/recon-all" {
		t.Fatalf("expected trimmed binary, got %q", cfg.ReconBinary())
	}
	if cfg.Recon.Concurrency != 4 {
		t.Fatalf("expected concurrency 4, got %d", cfg.Recon.Concurrency)
	}
	if cfg.Index.ImageExtension != ".nii" {
		t.Fatalf("expected extension normalized with dot, got %q", cfg.Index.ImageExtension)
	}
	if strings.Join(cfg.Index.DuplicateMarkers, ",") != "_2,REPEAT" {
		t.Fatalf("unexpected markers %v", cfg.Index.DuplicateMarkers)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased logging values, got %+v", cfg.Logging)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing config path")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "poolrecon.toml")
	if err := os.WriteFile(configPath, []byte("[recon]\nworkers = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestConcurrencyEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("POOLRECON_CONCURRENCY", "3")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Recon.Concurrency != 3 {
		t.Fatalf("expected env concurrency 3, got %d", cfg.Recon.Concurrency)
	}

	t.Setenv("POOLRECON_CONCURRENCY", "many")
	if _, _, _, err := config.Load(""); err == nil {
		t.Fatal("expected error for non-numeric concurrency")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Recon.ToolLogDir = filepath.Join(base, "tool")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Recon.ToolLogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", dir, err)
		}
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Recon.Binary != "recon-all" || cfg.Recon.Concurrency != 12 {
		t.Fatalf("unexpected sample recon section: %+v", cfg.Recon)
	}
	if !strings.Contains(cfg.Paths.LogDir, "poolrecon") {
		t.Fatalf("expected log dir to contain poolrecon, got %q", cfg.Paths.LogDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Recon.Concurrency = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive concurrency")
	}

	cfg = config.Default()
	cfg.Index.SubjectColumn = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty subject column")
	}

	cfg = config.Default()
	cfg.Index.DropColumns = append(cfg.Index.DropColumns, "Description")
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when a required column is dropped")
	}

	cfg = config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
