// Package dataset holds what the reference-data loaders share: the LoadError
// type and line reading for the vendor and service datasets.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// LoadError reports a reference dataset that could not be read. It is fatal
// at startup unless the caller opted into running with empty tables.
type LoadError struct {
	Dataset string // "vendors" or "services"
	Path    string
	Err     error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s dataset %s: %v", e.Dataset, e.Path, e.Err)
	}
	return fmt.Sprintf("load %s dataset %s", e.Dataset, e.Path)
}

// Unwrap returns the underlying error for error chain inspection
func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err is (or wraps) a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// maxLineSize bounds a single dataset line. IEEE and SIG exports stay far
// below this.
const maxLineSize = 1024 * 1024

// ReadLines returns every line of r with trailing "\r" removed.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
