package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/muurk/bleradar/internal/discovery"
)

// Columns lists the snapshot table headings in display order.
var Columns = []string{"RSSI", "Address", "Name", "Vendor", "TX", "Services"}

const (
	colRSSI = iota
	colAddress
	colName
	colVendor
	colTX
	colServices
)

// Row returns the display cells of one device.
func Row(d discovery.Device) []string {
	row := make([]string, len(Columns))
	row[colRSSI] = "-"
	if d.RSSI != nil {
		row[colRSSI] = fmt.Sprintf("%d", *d.RSSI)
	}
	row[colAddress] = d.Address
	if d.Carried {
		row[colAddress] += " " + CarriedMarker
	}
	row[colName] = d.DisplayName()
	if d.Vendor != nil {
		row[colVendor] = *d.Vendor
	}
	if d.TxPower != nil {
		row[colTX] = fmt.Sprintf("%d", *d.TxPower)
	}
	row[colServices] = Services(d)
	return row
}

// Services lists a device's services, preferring the description over the
// identifier when one is known.
func Services(d discovery.Device) string {
	parts := make([]string, 0, len(d.ServiceIDs))
	for i, id := range d.ServiceIDs {
		if i < len(d.ServiceDescriptions) && d.ServiceDescriptions[i] != nil {
			parts = append(parts, *d.ServiceDescriptions[i])
			continue
		}
		parts = append(parts, id)
	}
	return strings.Join(parts, ", ")
}

// Rows returns the display cells of every device in snapshot order.
func Rows(snap *discovery.Snapshot) [][]string {
	if snap == nil {
		return nil
	}
	rows := make([][]string, len(snap.Devices))
	for i, d := range snap.Devices {
		rows[i] = Row(d)
	}
	return rows
}

// Title returns the one-line summary shown above a snapshot table.
func Title(snap *discovery.Snapshot) string {
	return fmt.Sprintf("%s  cycle %d  %d devices  %s",
		snap.Adapter, snap.Cycle, snap.Len(), snap.Timestamp.Local().Format(time.TimeOnly))
}

// RenderSnapshot renders a snapshot as a bordered, coloured table.
func RenderSnapshot(snap *discovery.Snapshot, width int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(PrimaryColor)).
		Headers(Columns...).
		Rows(Rows(snap)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if row < 0 || row >= len(snap.Devices) {
				return CellStyle
			}
			d := snap.Devices[row]
			if d.Carried {
				return CarriedCellStyle
			}
			if col == colRSSI && d.RSSI != nil {
				return CellStyle.Foreground(SignalColor(*d.RSSI))
			}
			return CellStyle
		})
	if width > 0 {
		t = t.Width(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		HeaderTitleStyle.Render(Title(snap)),
		t.String(),
	)
}

// RenderPlain renders a snapshot as tab-separated text with a title line.
func RenderPlain(snap *discovery.Snapshot) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(Title(snap))
	b.WriteByte('\n')
	b.WriteString(strings.Join(Columns, "\t"))
	b.WriteByte('\n')
	for _, row := range Rows(snap) {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
