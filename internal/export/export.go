// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the final record list as a flashcard import file,
// a JSON backup, and optionally a spreadsheet. Each file is written to a
// temporary sibling and renamed into place, so an interrupted export never
// leaves a truncated file behind.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/trivia-cards/pkg/types"
)

// Paths names the export destinations. An empty XLSX skips the workbook.
type Paths struct {
	Anki string
	JSON string
	XLSX string
}

// DefaultPaths places exports next to the input folder, named after it:
// cards/2025-01-01_1200 yields cards/2025-01-01_1200-anki.txt and
// cards/2025-01-01_1200-cards.json.
func DefaultPaths(inputDir string) (Paths, error) {
	abs, err := filepath.Abs(inputDir)
	if err != nil {
		return Paths{}, fmt.Errorf("resolving input folder: %w", err)
	}
	parent, name := filepath.Dir(abs), filepath.Base(abs)
	return Paths{
		Anki: filepath.Join(parent, name+"-anki.txt"),
		JSON: filepath.Join(parent, name+"-cards.json"),
	}, nil
}

// WithDefaults fills empty Anki and JSON paths from defaults.
func (p Paths) WithDefaults(defaults Paths) Paths {
	if p.Anki == "" {
		p.Anki = defaults.Anki
	}
	if p.JSON == "" {
		p.JSON = defaults.JSON
	}
	return p
}

// Files writes every configured export and returns the paths written. An
// empty record list writes nothing and reports "nothing to export" to w.
func Files(paths Paths, records []types.Record, w io.Writer) ([]string, error) {
	if len(records) == 0 {
		fmt.Fprintln(w, "nothing to export")
		return nil, nil
	}

	jobs := []struct {
		path  string
		write func(io.Writer, []types.Record) error
	}{
		{paths.Anki, WriteAnki},
		{paths.JSON, WriteJSON},
		{paths.XLSX, WriteXLSX},
	}

	var written []string
	for _, job := range jobs {
		if job.path == "" {
			continue
		}
		if err := writeFileAtomic(job.path, func(f io.Writer) error { return job.write(f, records) }); err != nil {
			return written, err
		}
		fmt.Fprintf(w, "wrote %s (%d records)\n", job.path, len(records))
		written = append(written, job.path)
	}
	return written, nil
}

// writeFileAtomic writes through fn into a temp file in the destination
// directory and renames it over path.
func writeFileAtomic(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".trivia-cards-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	bw := bufio.NewWriter(tmpFile)
	writeErr := fn(bw)
	if writeErr == nil {
		writeErr = bw.Flush()
	}
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
