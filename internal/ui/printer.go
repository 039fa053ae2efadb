package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Printer writes framed command results.
type Printer struct {
	out    io.Writer
	width  int
	styled bool
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	f, isFile := w.(*os.File)
	return &Printer{
		out:    w,
		width:  GetTerminalWidth(),
		styled: isFile && IsTerminal(f),
	}
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// PrintSuccess prints a success box, or "key: value" lines when the output
// is not a terminal.
func (p *Printer) PrintSuccess(title string, details map[string]string) {
	if !p.styled {
		p.Println(title)
		for _, k := range sortedKeys(details) {
			p.Println(k + ": " + details[k])
		}
		return
	}
	p.Println(RenderSuccessBox(title, details, p.width))
}

// PrintFailure prints an error box, or a plain error line.
func (p *Printer) PrintFailure(title string, err error) {
	if !p.styled {
		if err != nil {
			p.Println(title + ": " + err.Error())
		} else {
			p.Println(title)
		}
		return
	}
	p.Println(RenderErrorBox(title, err, p.width))
}

// RenderSuccessBox renders a success result box
func RenderSuccessBox(title string, details map[string]string, width int) string {
	lines := []string{SuccessTitleStyle.Render(SuccessMarker + "  " + title)}
	for _, key := range sortedKeys(details) {
		lines = append(lines, ResultKeyStyle.Render(key+":")+" "+ResultValueStyle.Render(details[key]))
	}
	return SuccessBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// RenderErrorBox renders an error result box
func RenderErrorBox(title string, err error, width int) string {
	lines := []string{ErrorTitleStyle.Render(FailureMarker + "  " + title)}
	if err != nil {
		lines = append(lines, ErrorMessageStyle.Render(err.Error()))
	}
	return ErrorBoxStyle(width).Render(strings.Join(lines, "\n"))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
