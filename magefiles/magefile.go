//go:build mage

// Package main contains Mage build targets for trivia-cards developer tooling.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir   = "bin"
	binName  = "trivia-cards"
	cmdPkg   = "./cmd/trivia-cards"
	cardsDir = "cards"

	// batchLayout names capture folders; it sorts chronologically.
	batchLayout = "2006-01-02-15-04-05"
)

// Build compiles the CLI binary into bin/, stamping the git version.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + gitVersion()
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// NewBatch creates a timestamped capture folder under cards/ for the next
// photo session.
func NewBatch() error {
	_, err := newBatch()
	return err
}

// OpenBatch creates a capture folder and opens it in the file browser.
func OpenBatch() error {
	dir, err := newBatch()
	if err != nil {
		return err
	}
	switch runtime.GOOS {
	case "darwin":
		return sh.Run("open", dir)
	case "windows":
		return sh.Run("explorer", dir)
	default:
		return sh.Run("xdg-open", dir)
	}
}

// Process builds the CLI and runs it on the most recent capture folder.
func Process() error {
	mg.Deps(Build)

	dir, err := latestBatch()
	if err != nil {
		return err
	}
	return sh.RunV(filepath.Join(binDir, binName), "process", dir)
}

// Stats prints non-blank Go line counts for production and test code.
func Stats() error {
	var prod, test int
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && (strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".") || d.Name() == cardsDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", test)
	return nil
}

func newBatch() (string, error) {
	dir := filepath.Join(cardsDir, time.Now().Format(batchLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	fmt.Printf("Created folder: %s\n", dir)
	return dir, nil
}

// latestBatch returns the newest capture folder under cards/.
func latestBatch() (string, error) {
	entries, err := os.ReadDir(cardsDir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", cardsDir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse(batchLayout, e.Name()); err == nil {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", errors.New("no capture folders in cards/: run mage newBatch first")
	}
	sort.Strings(names)
	return filepath.Join(cardsDir, names[len(names)-1]), nil
}

// gitVersion describes HEAD, or "dev" outside a git checkout.
func gitVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		return "dev"
	}
	return v
}
