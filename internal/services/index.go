// Package services maps 16-bit Bluetooth service identifiers to readable
// descriptions.
//
// The reference dataset is a directory of text files in which a line that
// mentions an identifier is followed by its description line. Files are read
// once at construction, in lexicographic filename order, and pre-indexed so
// that a lookup never touches the disk.
package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/bleradar/internal/dataset"
	"github.com/muurk/bleradar/internal/logging"
)

// shortIDLen is the length of a compressed 16-bit identifier ("180F").
const shortIDLen = 4

// result is the outcome of the first line matching an identifier.
type result struct {
	description string
	found       bool
}

// Index answers identifier lookups with the semantics of a sequential scan:
// the first line, in file order then line order, that contains the
// identifier decides, and the line after it is the description.
type Index struct {
	files   []string
	lines   [][]string
	windows map[string]result
}

// Resolver is anything that can describe a short service identifier.
type Resolver interface {
	Lookup(id string) (string, bool)
}

// Load reads every regular file in dir.
func Load(dir string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &dataset.LoadError{Dataset: "services", Path: dir, Err: err}
	}

	// os.ReadDir returns entries sorted by filename, which fixes the order.
	idx := &Index{windows: make(map[string]result)}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		lines, err := readFile(path)
		if err != nil {
			logging.Warn("Skipping unreadable service dataset file",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		idx.add(path, lines)
	}

	logging.Debug("Service index loaded",
		zap.String("dir", dir),
		zap.Int("files", len(idx.files)),
		zap.Int("windows", len(idx.windows)),
	)
	return idx, nil
}

// New builds an Index from in-memory sources. names and contents are paired
// and consulted in the order given.
func New(names []string, contents []string) (*Index, error) {
	if len(names) != len(contents) {
		return nil, fmt.Errorf("services: %d names for %d sources", len(names), len(contents))
	}
	idx := &Index{windows: make(map[string]result)}
	for i := range names {
		lines, err := dataset.ReadLines(strings.NewReader(contents[i]))
		if err != nil {
			return nil, fmt.Errorf("services: read %s: %w", names[i], err)
		}
		idx.add(names[i], lines)
	}
	return idx, nil
}

// Empty returns an Index that resolves nothing.
func Empty() *Index {
	return &Index{windows: make(map[string]result)}
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return dataset.ReadLines(f)
}

// add appends one file. Every 4-byte window of every line is recorded the
// first time it appears, so earlier files and earlier lines win.
func (idx *Index) add(name string, lines []string) {
	idx.files = append(idx.files, name)
	idx.lines = append(idx.lines, lines)

	for i, line := range lines {
		res := successor(lines, i)
		for j := 0; j+shortIDLen <= len(line); j++ {
			w := line[j : j+shortIDLen]
			if _, seen := idx.windows[w]; !seen {
				idx.windows[w] = res
			}
		}
	}
}

// successor returns the line after i exactly as read.
func successor(lines []string, i int) result {
	if i+1 < len(lines) {
		return result{description: lines[i+1], found: true}
	}
	return result{}
}

// Lookup returns the description for id. Matching is a case-sensitive
// substring test. A match on a file's last line has no description and
// yields false; later files are not consulted.
func (idx *Index) Lookup(id string) (string, bool) {
	if idx == nil || id == "" {
		return "", false
	}
	if len(id) == shortIDLen {
		res, ok := idx.windows[id]
		if !ok {
			return "", false
		}
		return res.description, res.found
	}
	return idx.scan(id)
}

// scan is the sequential reference algorithm over the in-memory lines.
func (idx *Index) scan(id string) (string, bool) {
	for _, lines := range idx.lines {
		for i, line := range lines {
			if strings.Contains(line, id) {
				res := successor(lines, i)
				return res.description, res.found
			}
		}
	}
	return "", false
}

// Files returns the consulted sources in lookup order.
func (idx *Index) Files() []string {
	if idx == nil {
		return nil
	}
	out := make([]string, len(idx.files))
	copy(out, idx.files)
	return out
}

// Len returns the number of indexed 4-byte windows.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.windows)
}
