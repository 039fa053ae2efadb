package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/bleradar/internal/discovery"
)

func testSnapshot() *discovery.Snapshot {
	return &discovery.Snapshot{
		Adapter:   "sim0",
		Cycle:     4,
		Timestamp: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
		Devices: []discovery.Device{
			{
				Address:             "AA:BB:CC:00:00:01",
				Name:                discovery.StringPtr("Thermo"),
				Vendor:              discovery.StringPtr("Acme Corp"),
				RSSI:                discovery.Int16Ptr(-48),
				TxPower:             discovery.Int16Ptr(4),
				ServiceIDs:          []string{"0000180f-0000-1000-8000-00805f9b34fb", "6e400001-b5a3-f393-e0a9-e50e24dcca9e"},
				ServiceDescriptions: []*string{discovery.StringPtr("Battery Service"), nil},
			},
			{
				Address: "11:22:33:44:55:66",
				Carried: true,
			},
		},
	}
}

func TestRow(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		name   string
		device discovery.Device
		want   []string
	}{
		{
			name:   "all fields",
			device: snap.Devices[0],
			want:   []string{"-48", "AA:BB:CC:00:00:01", "Thermo", "Acme Corp", "4", "Battery Service, 6e400001-b5a3-f393-e0a9-e50e24dcca9e"},
		},
		{
			name:   "carried, nothing known",
			device: snap.Devices[1],
			want:   []string{"-", "11:22:33:44:55:66 ~", "", "", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Row(tt.device)
			if len(got) != len(tt.want) {
				t.Fatalf("Row() = %v", got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Row()[%s] = %q, want %q", Columns[i], got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRenderPlain(t *testing.T) {
	out := RenderPlain(testSnapshot())
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	if len(lines) != 4 {
		t.Fatalf("RenderPlain() produced %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "# sim0  cycle 4  2 devices") {
		t.Errorf("title line = %q", lines[0])
	}
	if lines[1] != strings.Join(Columns, "\t") {
		t.Errorf("header line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "-48\tAA:BB:CC:00:00:01\tThermo") {
		t.Errorf("first row = %q", lines[2])
	}
}

func TestRenderSnapshot(t *testing.T) {
	out := RenderSnapshot(testSnapshot(), 120)
	for _, want := range []string{"AA:BB:CC:00:00:01", "Thermo", "Acme Corp", "RSSI", "sim0"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderSnapshot() missing %q", want)
		}
	}
}

func TestConsole_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	if c.styled {
		t.Fatal("a bytes.Buffer must not be styled")
	}

	if err := c.Publish(context.Background(), testSnapshot()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "AA:BB:CC:00:00:01\tThermo") {
		t.Errorf("console output = %q", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestConsole_WriteError(t *testing.T) {
	if err := NewConsole(failingWriter{}).Publish(context.Background(), testSnapshot()); err == nil {
		t.Error("Publish() should report write errors")
	}
}

func TestPrinter_Plain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.PrintSuccess("Vendor found", map[string]string{"Vendor": "Acme Corp", "Address": "AA:BB:CC:00:00:01"})
	p.PrintFailure("Lookup failed", errors.New("no match"))

	want := "Vendor found\nAddress: AA:BB:CC:00:00:01\nVendor: Acme Corp\nLookup failed: no match\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestRenderBoxes(t *testing.T) {
	if out := RenderSuccessBox("ok", map[string]string{"k": "v"}, 60); !strings.Contains(out, "ok") || !strings.Contains(out, "v") {
		t.Errorf("RenderSuccessBox() = %q", out)
	}
	if out := RenderErrorBox("bad", errors.New("boom"), 60); !strings.Contains(out, "boom") {
		t.Errorf("RenderErrorBox() = %q", out)
	}
}

func TestSignalColor(t *testing.T) {
	tests := []struct {
		rssi int16
		want interface{}
	}{
		{-40, SuccessColor},
		{-60, SuccessColor},
		{-75, WarningColor},
		{-95, ErrorColor},
	}
	for _, tt := range tests {
		if got := SignalColor(tt.rssi); got != tt.want {
			t.Errorf("SignalColor(%d) = %v, want %v", tt.rssi, got, tt.want)
		}
	}
}

func TestWatchModel(t *testing.T) {
	m := NewWatchModel()
	if !strings.Contains(m.View(), "waiting") {
		t.Error("empty view should say it is waiting")
	}

	next, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	if cmd != nil {
		t.Error("resize should not produce a command")
	}
	next, _ = next.Update(SnapshotMsg{Snapshot: testSnapshot()})

	view := next.View()
	for _, want := range []string{"AA:BB:CC:00:00:01", "sim0  cycle 4", "quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	_, cmd = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not produce tea.QuitMsg")
	}

	_, cmd = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil {
		t.Error("other keys must do nothing")
	}
}

func TestWatchModel_LatestSnapshotWins(t *testing.T) {
	var m tea.Model = NewWatchModel()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	first := testSnapshot()
	second := testSnapshot()
	second.Cycle = 5
	second.Devices = second.Devices[:1]

	m, _ = m.Update(SnapshotMsg{Snapshot: first})
	m, _ = m.Update(SnapshotMsg{Snapshot: second})

	view := m.View()
	if strings.Contains(view, "11:22:33:44:55:66") {
		t.Error("superseded snapshot rows still shown")
	}
	if !strings.Contains(view, "cycle 5") {
		t.Error("new snapshot title missing")
	}
}
