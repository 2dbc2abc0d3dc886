package indexer

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Candidate is a leaf image file whose name parsed cleanly.
type Candidate struct {
	// RelativePath is slash-separated and relative to the dataset root.
	RelativePath string
	Name         ImageName
}

// Skip reasons recorded for files the walk could not use.
const (
	SkipDirectoryMismatch = "directory_mismatch"
	SkipDuplicate         = "duplicate"
)

// SkippedFile records a leaf file the indexer ignored and why.
type SkippedFile struct {
	RelativePath string
	Reason       string
	Err          error
}

// ScanLeaves walks root once and returns every leaf directory's image file.
// A leaf directory holds exactly one file and no subdirectories; the root
// itself is never a leaf. Files whose names do not parse, or whose directory
// is not named after their subject token, are returned as skipped.
func ScanLeaves(ctx context.Context, root, extension string) ([]Candidate, []SkippedFile, error) {
	root = filepath.Clean(root)
	var candidates []Candidate
	var skipped []SkippedFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		if len(entries) != 1 || entries[0].IsDir() {
			return nil
		}

		file := entries[0].Name()
		rel, err := filepath.Rel(root, filepath.Join(path, file))
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		name, err := ParseImageName(file, extension)
		if err != nil {
			var nameErr *NameError
			if errors.As(err, &nameErr) {
				skipped = append(skipped, SkippedFile{RelativePath: rel, Reason: nameErr.Kind, Err: err})
				return nil
			}
			return err
		}
		if d.Name() != name.SubjectToken {
			skipped = append(skipped, SkippedFile{RelativePath: rel, Reason: SkipDirectoryMismatch})
			return nil
		}
		candidates = append(candidates, Candidate{RelativePath: rel, Name: name})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return candidates, skipped, nil
}
