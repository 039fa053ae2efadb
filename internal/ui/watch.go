package ui

import (
	"context"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/bleradar/internal/discovery"
)

// SnapshotMsg delivers a new snapshot to the Watch view.
type SnapshotMsg struct {
	Snapshot *discovery.Snapshot
}

type watchKeys struct {
	Quit key.Binding
}

func (k watchKeys) ShortHelp() []key.Binding  { return []key.Binding{k.Quit} }
func (k watchKeys) FullHelp() [][]key.Binding { return [][]key.Binding{{k.Quit}} }

var defaultWatchKeys = watchKeys{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// WatchModel is the Bubble Tea model behind Watch.
type WatchModel struct {
	snaps  map[string]*discovery.Snapshot
	table  table.Model
	help   help.Model
	keys   watchKeys
	width  int
	height int
}

// NewWatchModel creates an empty view sized to the current terminal.
func NewWatchModel() WatchModel {
	width, height := GetTerminalSize()

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(PrimaryColor).
		BorderBottom(true).
		Bold(true)
	styles.Selected = lipgloss.NewStyle()

	m := WatchModel{
		snaps: make(map[string]*discovery.Snapshot),
		table: table.New(table.WithStyles(styles)),
		help:  help.New(),
		keys:  defaultWatchKeys,
	}
	m.resize(width, height)
	return m
}

// Init implements tea.Model
func (m WatchModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
	case SnapshotMsg:
		if msg.Snapshot != nil {
			m.snaps[msg.Snapshot.Adapter] = msg.Snapshot
			m.refresh()
		}
	}
	return m, nil
}

// View implements tea.Model
func (m WatchModel) View() string {
	var header []string
	header = append(header, HeaderTitleStyle.Render("BLE RADAR"))
	if len(m.snaps) == 0 {
		header = append(header, MutedStyle.Render(" waiting for the first scan cycle..."))
	}
	for _, adapter := range m.adapters() {
		header = append(header, HeaderParamValueStyle.Render(" "+Title(m.snaps[adapter])))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(header, "\n"),
		m.table.View(),
		" "+m.help.View(m.keys),
	)
}

func (m WatchModel) adapters() []string {
	out := make([]string, 0, len(m.snaps))
	for a := range m.snaps {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func (m *WatchModel) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width

	fixed := map[int]int{colRSSI: 6, colAddress: 20, colName: 18, colVendor: 22, colTX: 4}
	used := 0
	for _, w := range fixed {
		used += w + 2
	}
	services := width - used - 2
	if services < 12 {
		services = 12
	}

	cols := make([]table.Column, len(Columns))
	for i, title := range Columns {
		w, ok := fixed[i]
		if !ok {
			w = services
		}
		cols[i] = table.Column{Title: title, Width: w}
	}
	m.table.SetColumns(cols)
	m.table.SetWidth(width)

	// Title line, one line per adapter, help line and table header.
	tableHeight := height - 4 - len(m.snaps)
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table.SetHeight(tableHeight)
}

// refresh rebuilds the rows from the stored snapshots, adapters in order.
func (m *WatchModel) refresh() {
	var rows []table.Row
	for _, adapter := range m.adapters() {
		for _, r := range Rows(m.snaps[adapter]) {
			rows = append(rows, table.Row(r))
		}
	}
	m.resize(m.width, m.height)
	m.table.SetRows(rows)
}

// Watch runs the live view and receives snapshots as a publisher.
type Watch struct {
	program *tea.Program
}

// NewWatch creates the view. Options are passed to tea.NewProgram; the
// alternate screen is used unless overridden.
func NewWatch(opts ...tea.ProgramOption) *Watch {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return &Watch{program: tea.NewProgram(NewWatchModel(), opts...)}
}

// Run blocks until the user quits or Quit is called.
func (w *Watch) Run() error {
	_, err := w.program.Run()
	return err
}

// Quit stops the view.
func (w *Watch) Quit() {
	w.program.Quit()
}

// Publish implements publish.Publisher. It blocks until the view accepts
// the snapshot, so it is normally wrapped in publish.Async.
func (w *Watch) Publish(ctx context.Context, snap *discovery.Snapshot) error {
	w.program.Send(SnapshotMsg{Snapshot: snap})
	return nil
}
