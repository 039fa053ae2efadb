package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/bleradar/internal/discovery"
	"github.com/muurk/bleradar/internal/logging"
)

// Format selects the encoding of a snapshot document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml". An empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown snapshot format %q (expected json or yaml)", s)
	}
}

// File writes each snapshot to a document on disk, replacing the previous
// one. The path may contain "{adapter}" so that several adapters do not
// overwrite each other. Without it the file belongs to the first adapter
// that publishes, and snapshots of any other adapter fail with
// ErrSharedFile.
type File struct {
	Path   string
	Format Format

	mu    sync.Mutex
	owner string
}

// NewFile creates a File publisher.
func NewFile(path string, format Format) *File {
	return &File{Path: path, Format: format}
}

// Publish implements Publisher.
func (f *File) Publish(ctx context.Context, snap *discovery.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(snap, f.Format)
	if err != nil {
		return err
	}

	path := expandAdapter(f.Path, snap.Adapter)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !PerAdapter(f.Path) {
		if f.owner == "" {
			f.owner = snap.Adapter
		} else if f.owner != snap.Adapter {
			return fmt.Errorf("%w: %s is written by adapter %s", ErrSharedFile, path, f.owner)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	// Write to temporary file first (atomic write)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}

	logging.Debug("Snapshot written",
		zap.String("path", path),
		zap.String("adapter", snap.Adapter),
		zap.Int("devices", snap.Len()),
	)
	return nil
}

// Encode serializes a snapshot in the given format.
func Encode(snap *discovery.Snapshot, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal snapshot as YAML: %w", err)
		}
		return data, nil
	case FormatJSON, "":
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal snapshot as JSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}
}
