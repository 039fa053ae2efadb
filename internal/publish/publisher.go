package publish

import (
	"context"
	"strings"

	"go.uber.org/multierr"

	"github.com/muurk/bleradar/internal/discovery"
)

// Publisher receives one snapshot per completed scan cycle.
type Publisher interface {
	Publish(ctx context.Context, snap *discovery.Snapshot) error
}

// Func adapts a plain function to Publisher.
type Func func(ctx context.Context, snap *discovery.Snapshot) error

// Publish implements Publisher.
func (f Func) Publish(ctx context.Context, snap *discovery.Snapshot) error {
	return f(ctx, snap)
}

// Nop discards every snapshot.
var Nop Publisher = Func(func(context.Context, *discovery.Snapshot) error { return nil })

// Multi publishes to each publisher in order. Every publisher is attempted
// even when an earlier one fails; the failures are combined.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, snap *discovery.Snapshot) error {
	var err error
	for _, p := range m {
		if p == nil {
			continue
		}
		err = multierr.Append(err, p.Publish(ctx, snap))
	}
	return err
}

// AdapterPlaceholder is replaced by the adapter ID in file paths.
const AdapterPlaceholder = "{adapter}"

// PerAdapter reports whether path names a separate file for each adapter.
func PerAdapter(path string) bool {
	return strings.Contains(path, AdapterPlaceholder)
}

// expandAdapter substitutes the adapter placeholder in a path or topic.
func expandAdapter(s, adapter string) string {
	return strings.ReplaceAll(s, AdapterPlaceholder, adapter)
}
