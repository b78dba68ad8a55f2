package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/trayd/trayd/internal/telemetry"
	"github.com/trayd/trayd/internal/ui"
)

// StatsSource samples the scalar metrics.
type StatsSource interface {
	AllStats(ctx context.Context) telemetry.Stats
}

// RankSource ranks processes.
type RankSource interface {
	Top(ctx context.Context, m telemetry.Metric, limit int) []telemetry.Process
}

// Options configures a Model.
type Options struct {
	Interval time.Duration
	// Timeout bounds one collection. Defaults to the interval plus five
	// seconds, since rankings shell out to ps, lsof and nettop.
	Timeout time.Duration
	Limit   int
	Metric  telemetry.Metric
}

// Model is the Bubble Tea model for `trayd watch`.
type Model struct {
	stats   StatsSource
	ranks   RankSource
	opts    Options
	history *History

	current    telemetry.Stats
	procs      []telemetry.Process
	metric     int
	table      table.Model
	lastUpdate time.Time
	collecting bool

	width    int
	height   int
	paused   bool
	showHelp bool
	quitting bool
}

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// snapshotMsg carries one collection.
type snapshotMsg struct {
	stats  telemetry.Stats
	procs  []telemetry.Process
	metric telemetry.Metric
	time   time.Time
}

// NewModel creates a dashboard sampling stats and ranks.
func NewModel(stats StatsSource, ranks RankSource, opts Options) Model {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = opts.Interval + 5*time.Second
	}
	if opts.Limit <= 0 {
		opts.Limit = 5
	}
	m := Model{
		stats:   stats,
		ranks:   ranks,
		opts:    opts,
		history: NewHistory(DefaultHistorySize),
	}
	for i, metric := range telemetry.Metrics {
		if metric == opts.Metric {
			m.metric = i
		}
	}
	m.table = ui.NewTable(ui.ProcessColumns(m.Metric()), nil, opts.Limit)
	return m
}

// Metric returns the ranking currently shown.
func (m Model) Metric() telemetry.Metric {
	return telemetry.Metrics[m.metric]
}

// Stats returns the latest sample.
func (m Model) Stats() telemetry.Stats { return m.current }

// Processes returns the latest ranking.
func (m Model) Processes() []telemetry.Process { return m.procs }

// Paused reports whether sampling is paused.
func (m Model) Paused() bool { return m.paused }

// History returns the sparkline history.
func (m Model) History() *History { return m.history }

// Init starts the tick timer and triggers an initial collection.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.collectCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if m.paused || m.collecting {
			return m, m.tickCmd()
		}
		m.collecting = true
		return m, tea.Batch(m.tickCmd(), m.collectCmd())

	case snapshotMsg:
		m.collecting = false
		m.lastUpdate = msg.time
		m.current = msg.stats
		m.history.Push(msg.stats)
		// A ranking collected before the user switched metric is stale.
		if msg.metric == m.Metric() {
			m.setProcesses(msg.procs)
		}
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

func (m *Model) setProcesses(ps []telemetry.Process) {
	m.procs = ps
	m.table.SetRows(ui.ProcessRows(m.Metric(), ps))
}

// selectMetric switches the ranking and clears rows of the previous one.
func (m *Model) selectMetric(i int) {
	n := len(telemetry.Metrics)
	m.metric = ((i % n) + n) % n
	m.table.SetRows(nil)
	m.table.SetColumns(columns(m.Metric()))
	m.procs = nil
}

func columns(metric telemetry.Metric) []table.Column {
	cs := ui.ProcessColumns(metric)
	out := make([]table.Column, len(cs))
	for i, c := range cs {
		out[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	return out
}

// tickCmd returns a command that sends a tick after the refresh interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// collectCmd samples stats and the current ranking off the UI goroutine.
func (m Model) collectCmd() tea.Cmd {
	metric := m.Metric()
	stats, ranks, opts := m.stats, m.ranks, m.opts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		defer cancel()
		return snapshotMsg{
			stats:  stats.AllStats(ctx),
			procs:  ranks.Top(ctx, metric, opts.Limit),
			metric: metric,
			time:   time.Now(),
		}
	}
}
