package monitor

import tea "github.com/charmbracelet/bubbletea"

// Key bindings
const (
	KeyQuit       = "q"
	KeyQuitAlt    = "ctrl+c"
	KeyRefresh    = "r"
	KeyNextMetric = "tab"
	KeyNextAlt    = "m"
	KeyPrevMetric = "shift+tab"
	KeyPause      = "p"
	KeyCollapse   = "esc"
	KeyToggleHelp = "?"
)

// HandleKeyMsg processes keyboard input. It reports whether the key was
// handled.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		m.collecting = true
		return true, m.collectCmd()

	case KeyNextMetric, KeyNextAlt:
		m.selectMetric(m.metric + 1)
		return true, m.collectCmd()

	case KeyPrevMetric:
		m.selectMetric(m.metric - 1)
		return true, m.collectCmd()

	case KeyPause:
		m.paused = !m.paused
		return true, nil
	}

	return false, nil
}
