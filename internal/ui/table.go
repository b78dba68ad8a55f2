package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/trayd/trayd/internal/telemetry"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a Bubbles table with the package styling. height is the
// number of body rows shown.
func NewTable(columns []TableColumn, rows []table.Row, height int) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(height+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	s.Selected = s.Selected.
		Foreground(ColorPrimary).
		Bold(false)
	if !colorsEnabled {
		s.Header = lipgloss.NewStyle().Bold(true).Padding(0, 1)
		s.Cell = lipgloss.NewStyle().Padding(0, 1)
		s.Selected = lipgloss.NewStyle()
	}
	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows, len(rows)).View()
}

// ProcessColumns returns the columns of a ranking for metric m.
func ProcessColumns(m telemetry.Metric) []TableColumn {
	cols := []TableColumn{{Title: "PID", Width: 8}, {Title: "NAME", Width: 28}}
	switch m {
	case telemetry.MetricDisk:
		return append(cols, TableColumn{Title: "READ", Width: 12}, TableColumn{Title: "WRITTEN", Width: 12})
	case telemetry.MetricNetwork:
		return append(cols, TableColumn{Title: "DOWN", Width: 12}, TableColumn{Title: "UP", Width: 12})
	case telemetry.MetricRAM:
		return append(cols, TableColumn{Title: "MEMORY", Width: 12})
	case telemetry.MetricBattery:
		return append(cols, TableColumn{Title: "ENERGY", Width: 10})
	default:
		return append(cols, TableColumn{Title: "%" + strings.ToUpper(string(m)), Width: 10})
	}
}

// ProcessRows formats a ranking for ProcessColumns(m).
func ProcessRows(m telemetry.Metric, ps []telemetry.Process) []table.Row {
	rows := make([]table.Row, len(ps))
	for i, p := range ps {
		row := table.Row{strconv.Itoa(p.PID), p.Name}
		switch m {
		case telemetry.MetricDisk, telemetry.MetricNetwork:
			row = append(row, FormatBytes(p.In), FormatBytes(p.Out))
		case telemetry.MetricRAM:
			row = append(row, FormatBytes(int64(p.Value)))
		default:
			row = append(row, fmt.Sprintf("%.1f", p.Value))
		}
		rows[i] = row
	}
	return rows
}

// RenderProcessTable renders a ranking as a static table.
func RenderProcessTable(m telemetry.Metric, ps []telemetry.Process) string {
	if len(ps) == 0 {
		return Muted("no processes")
	}
	return NewTable(ProcessColumns(m), ProcessRows(m, ps), len(ps)).View()
}

// RenderStats renders one labelled line per metric with a progress bar for
// percentages.
func RenderStats(s telemetry.Stats, barWidth int) string {
	label := func(l string) string { return style(ColorSecondary).Render(fmt.Sprintf("%-9s", l)) }
	out := ""
	for _, row := range []struct {
		name string
		v    float64
	}{
		{"CPU", s.CPU},
		{"GPU", s.GPU},
		{"RAM", s.RAM},
		{"Disk", s.Disk},
	} {
		out += label(row.name) + RenderProgressBar(row.v, barWidth) + "\n"
	}
	out += label("Network") + fmt.Sprintf("↑ %s  ↓ %s", FormatRate(s.Network.UpBps), FormatRate(s.Network.DownBps)) + "\n"
	out += label("Battery") + FormatBattery(s.Battery.Level, s.Battery.OnACPower) + "\n"
	return out
}
