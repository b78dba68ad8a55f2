// Package monitor implements `trayd watch`, a live terminal dashboard of
// the same telemetry the tray entries show.
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//  1. tickMsg fires at the configured interval
//  2. collectCmd samples every metric and the selected process ranking
//  3. snapshotMsg updates the model and the sparkline history
//  4. View re-renders gauges, sparklines and the process table
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Refresh now
//	Tab / m     - Next process ranking (cpu, ram, disk, gpu, network, battery)
//	Shift+Tab   - Previous ranking
//	p           - Pause / resume sampling
//	?           - Toggle help overlay
package monitor
