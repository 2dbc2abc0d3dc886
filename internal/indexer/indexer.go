package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"poolrecon/internal/config"
	"poolrecon/internal/ledger"
	"poolrecon/internal/logging"
	"poolrecon/internal/services"
)

// Progress receives path resolution progress.
type Progress interface {
	Start(total, done int)
	Add(n int)
	Finish()
}

// Options configures one indexing pass.
type Options struct {
	Columns          Columns
	DuplicateMarkers []string
	ImageExtension   string
	// Output overrides DefaultOutputPath when set.
	Output   string
	Logger   *slog.Logger
	Progress Progress
}

// OptionsFromConfig maps the [index] config section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Columns: Columns{
			Identifier:  cfg.Index.IdentifierColumn,
			Subject:     cfg.Index.SubjectColumn,
			Description: cfg.Index.DescriptionColumn,
			Date:        cfg.Index.DateColumn,
			Drop:        append([]string(nil), cfg.Index.DropColumns...),
		},
		DuplicateMarkers: append([]string(nil), cfg.Index.DuplicateMarkers...),
		ImageExtension:   cfg.Index.ImageExtension,
	}
}

// Report summarizes an indexing pass.
type Report struct {
	TablePath       string
	OutputPath      string
	Records         int
	Duplicates      int
	DroppedSubjects []string
	Retained        int
	Resolved        int
	Unresolved      []string
	Skipped         []SkippedFile
}

// TablePath returns the metadata table location for dataset directory dir.
func TablePath(dir string) string {
	dir = filepath.Clean(dir)
	return filepath.Join(dir, filepath.Base(dir)+".csv")
}

// DefaultOutputPath returns the ledger location written beside dir.
func DefaultOutputPath(dir string) string {
	dir = filepath.Clean(dir)
	return filepath.Join(filepath.Dir(dir), filepath.Base(dir)+"-processed.csv")
}

// Run indexes dataset directory dir and writes the resulting ledger.
func Run(ctx context.Context, dir string, opts Options) (Report, error) {
	logger := logging.NewComponentLogger(opts.Logger, "indexer")
	dir = filepath.Clean(dir)
	report := Report{TablePath: TablePath(dir), OutputPath: opts.Output}
	if report.OutputPath == "" {
		report.OutputPath = DefaultOutputPath(dir)
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return report, services.Wrap(services.ErrNotFound, "indexer", "open dataset", dir+" is not a directory", err)
	}

	logger.Info("loading metadata table", logging.String("path", report.TablePath))
	table, err := LoadTable(report.TablePath, opts.Columns)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, services.Wrap(services.ErrNotFound, "indexer", "load table", "metadata table not found", err)
		}
		return report, services.Wrap(services.ErrValidation, "indexer", "load table", "", err)
	}
	report.Records = len(table.Records)
	logger.Info("metadata table loaded", logging.Int("images", report.Records))

	records, duplicates := DropDuplicates(table.Records, opts.DuplicateMarkers)
	report.Duplicates = len(duplicates)
	logger.Info("duplicates removed",
		logging.Int("removed", report.Duplicates),
		logging.Int("remaining", len(records)),
	)

	records, dropped := DropSingleVisits(records)
	report.DroppedSubjects = dropped
	for _, subject := range dropped {
		logger.Info("removing subject with a single visit", logging.String(logging.FieldSubject, subject))
	}
	report.Retained = len(records)

	wanted := make(map[string]int, len(records))
	for i, rec := range records {
		wanted[rec.Identifier] = i
	}

	candidates, skipped, err := ScanLeaves(ctx, dir, opts.ImageExtension)
	if err != nil {
		return report, fmt.Errorf("scan dataset: %w", err)
	}
	for _, skip := range skipped {
		logging.ErrorWithContext(logger, "inconsistent image file skipped", "index_skip",
			logging.String("path", skip.RelativePath),
			logging.String("reason", skip.Reason),
			logging.String(logging.FieldErrorHint, "fix the file name or its directory, then re-run index"),
		)
	}

	if opts.Progress != nil {
		opts.Progress.Start(len(records), 0)
	}
	paths := make(map[string]Candidate, len(records))
	for _, c := range candidates {
		id := c.Name.ImageToken
		if _, ok := wanted[id]; !ok {
			logger.Debug("image not in retained records", logging.Identifier(id), logging.String("path", c.RelativePath))
			continue
		}
		if prior, ok := paths[id]; ok {
			logger.Warn("identifier already resolved, ignoring file",
				logging.Identifier(id),
				logging.String("path", c.RelativePath),
				logging.String("kept", prior.RelativePath),
			)
			skipped = append(skipped, SkippedFile{RelativePath: c.RelativePath, Reason: SkipDuplicate})
			continue
		}
		paths[id] = c
		if opts.Progress != nil {
			opts.Progress.Add(1)
		}
	}
	if opts.Progress != nil {
		opts.Progress.Finish()
	}
	report.Skipped = skipped
	report.Resolved = len(paths)

	out := ledger.New(table.ExtraColumns)
	for _, rec := range records {
		row := ledger.Row{
			Identifier:  rec.Identifier,
			Subject:     rec.Subject,
			AcqDate:     rec.AcqDate,
			Description: rec.Description,
			Extra:       rec.Extra,
		}
		if c, ok := paths[rec.Identifier]; ok {
			row.RelativePath = c.RelativePath
			row.SubjectScopedID = c.Name.SubjectToken
		} else {
			report.Unresolved = append(report.Unresolved, rec.Identifier)
		}
		if err := out.Add(row); err != nil {
			return report, fmt.Errorf("build ledger: %w", err)
		}
	}
	if n := len(report.Unresolved); n > 0 {
		logging.WarnWithContext(logger, "records without an image file", "index_unresolved",
			logging.Int("unresolved", n),
			logging.String("identifiers", summarizeIDs(report.Unresolved, 10)),
			logging.String(logging.FieldImpact, "rows kept in the ledger but never dispatched"),
			logging.String(logging.FieldErrorHint, "check the dataset tree for missing or misnamed files"),
		)
	}

	if outDir := filepath.Dir(report.OutputPath); outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return report, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := ledger.Save(report.OutputPath, out); err != nil {
		return report, err
	}
	logger.Info("ledger written",
		logging.String("path", report.OutputPath),
		logging.Int("rows", out.Len()),
		logging.Int("resolved", report.Resolved),
	)
	return report, nil
}

func summarizeIDs(ids []string, limit int) string {
	if len(ids) <= limit {
		return strings.Join(ids, ",")
	}
	return fmt.Sprintf("%s,... (+%d)", strings.Join(ids[:limit], ","), len(ids)-limit)
}
