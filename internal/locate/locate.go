// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package locate discovers card images in a capture folder and groups them
// into ordered question/answer pairs.
//
// Files are grouped by extension in a fixed priority order (.jpg, .jpeg,
// .png), sorted by name within each group, and paired by position: the
// first file is a question face, the second its answer face, and so on.
// Extension matching ignores case, so IMG_1.JPG sorts with the .jpg group.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/trivia-cards/pkg/types"
)

// Extensions lists the image extensions considered, in group priority order.
var Extensions = []string{".jpg", ".jpeg", ".png"}

// ErrNotDirectory is returned when the input path exists but is a file.
var ErrNotDirectory = errors.New("not a directory")

// Result holds the located pairs and any trailing file that had no partner.
type Result struct {
	Pairs []types.CardPair

	// Images is the total number of matching image files.
	Images int

	// Dropped is the unpaired last file when Images is odd, else empty.
	Dropped string
}

// Odd reports whether a trailing image was left without a partner.
func (r Result) Odd() bool {
	return r.Dropped != ""
}

// Pairs lists the images in dir and pairs them. A directory with no images
// yields an empty Result and no error.
func Pairs(dir string) (Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Result{}, fmt.Errorf("reading input folder: %w", err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("input folder %s: %w", dir, ErrNotDirectory)
	}

	files, err := Images(dir)
	if err != nil {
		return Result{}, err
	}

	res := Result{Images: len(files)}
	for i := 0; i+1 < len(files); i += 2 {
		res.Pairs = append(res.Pairs, types.CardPair{
			Index:    i / 2,
			Question: files[i],
			Answer:   files[i+1],
		})
	}
	if len(files)%2 != 0 {
		res.Dropped = files[len(files)-1]
	}
	return res, nil
}

// Images returns the image paths in dir in pairing order. Hidden files and
// subdirectories are skipped.
func Images(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input folder %s: %w", dir, err)
	}

	groups := make([][]string, len(Extensions))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		g := extensionGroup(name)
		if g < 0 {
			continue
		}
		groups[g] = append(groups[g], name)
	}

	var files []string
	for _, names := range groups {
		sort.Strings(names)
		for _, name := range names {
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files, nil
}

// extensionGroup returns the priority index of name's extension, or -1.
func extensionGroup(name string) int {
	ext := strings.ToLower(filepath.Ext(name))
	for i, e := range Extensions {
		if ext == e {
			return i
		}
	}
	return -1
}
