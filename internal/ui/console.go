package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muurk/bleradar/internal/discovery"
)

// Console prints every snapshot it receives.
type Console struct {
	out    io.Writer
	styled bool
	width  int

	mu sync.Mutex
}

// NewConsole creates a Console writing to w. If w is nil, os.Stdout is
// used. Styling is enabled only when w is a terminal.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	f, isFile := w.(*os.File)
	c := &Console{out: w, styled: isFile && IsTerminal(f)}
	if c.styled {
		c.width = GetTerminalWidth()
	}
	return c
}

// Publish implements publish.Publisher.
func (c *Console) Publish(ctx context.Context, snap *discovery.Snapshot) error {
	var text string
	if c.styled {
		text = RenderSnapshot(snap, c.width) + "\n"
	} else {
		text = RenderPlain(snap)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.out, text); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
