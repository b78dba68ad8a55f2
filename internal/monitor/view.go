package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/trayd/trayd/internal/ui"
)

// Width breakpoints
const (
	BreakpointCompact = 80
	barWidthWide      = 30
	barWidthCompact   = 12
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(PanelStyle.Render(m.renderGauges()))
	b.WriteString("\n")
	b.WriteString(PanelStyle.Render(m.renderProcesses()))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := TitleStyle.Render("trayd watch")

	updated := "waiting for first sample"
	if !m.lastUpdate.IsZero() {
		secs := int(time.Since(m.lastUpdate).Seconds())
		if secs <= 0 {
			updated = "updated just now"
		} else {
			updated = fmt.Sprintf("updated %ds ago", secs)
		}
	}
	info := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(fmt.Sprintf(" | every %s | %s", m.opts.Interval, updated))

	out := title + info
	if m.paused {
		out += " " + PausedStyle.Render("PAUSED")
	}
	return HeaderStyle.Render(out)
}

func (m Model) barWidth() int {
	if m.width > 0 && m.width < BreakpointCompact {
		return barWidthCompact
	}
	return barWidthWide
}

// renderGauges renders one row per metric: bar, sparkline.
func (m Model) renderGauges() string {
	bar := m.barWidth()
	spark := bar
	s := m.current

	rows := []struct {
		label  string
		value  float64
		series Series
	}{
		{"CPU", s.CPU, SeriesCPU},
		{"GPU", s.GPU, SeriesGPU},
		{"RAM", s.RAM, SeriesRAM},
		{"Disk", s.Disk, SeriesDisk},
	}

	var lines []string
	for _, r := range rows {
		lines = append(lines, LabelStyle.Render(r.label)+
			ui.RenderProgressBar(r.value, bar)+"  "+
			ui.RenderSparkline(m.history.Last(r.series, spark), spark))
	}

	lines = append(lines,
		LabelStyle.Render("Upload")+ValueStyle.Render(fmt.Sprintf("%-*s", bar+5, ui.FormatRate(s.Network.UpBps)))+"  "+
			ui.RenderRateSparkline(m.history.Last(SeriesUp, spark), spark),
		LabelStyle.Render("Download")+ValueStyle.Render(fmt.Sprintf("%-*s", bar+5, ui.FormatRate(s.Network.DownBps)))+"  "+
			ui.RenderRateSparkline(m.history.Last(SeriesDown, spark), spark),
		LabelStyle.Render("Battery")+ValueStyle.Render(ui.FormatBattery(s.Battery.Level, s.Battery.OnACPower)),
	)
	return strings.Join(lines, "\n")
}

func (m Model) renderProcesses() string {
	title := TitleStyle.Render("Top " + strings.ToUpper(string(m.Metric())))
	if len(m.procs) == 0 {
		return title + "\n" + MutedStyle.Render("collecting...")
	}
	return title + "\n" + m.table.View()
}

func (m Model) renderFooter() string {
	return FooterStyle.Render("q quit • r refresh • tab ranking • p pause • ? help")
}
