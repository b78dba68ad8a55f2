package app

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/trayd/trayd/internal/bridge"
	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/exec"
	"github.com/trayd/trayd/internal/popover"
	"github.com/trayd/trayd/internal/util"
)

// HostWindow controls the host application's main window by asking the
// host over the bridge. Exit also stops trayd.
type HostWindow struct {
	Events popover.Notifier
	OnExit func()
}

func (w *HostWindow) Show() {
	w.Events.Emit(bridge.ChannelMenuBar, bridge.EventShowWindow, nil)
}

func (w *HostWindow) Hide() {
	w.Events.Emit(bridge.ChannelMenuBar, bridge.EventHideWindow, nil)
}

func (w *HostWindow) Exit() {
	w.Events.Emit(bridge.ChannelMenuBar, bridge.EventExitApp, nil)
	if w.OnExit != nil {
		w.OnExit()
	}
}

// linuxApps maps the applications popover buttons open to common Linux
// equivalents.
var linuxApps = map[string]string{
	popover.AppActivityMonitor: "gnome-system-monitor",
	popover.AppCalendar:        "gnome-calendar",
}

// SystemLauncher opens applications with `open -a` on macOS and by
// command name elsewhere, without waiting for them to exit.
type SystemLauncher struct {
	Run  exec.Runner
	GOOS string
}

// NewSystemLauncher creates a launcher for this OS.
func NewSystemLauncher(run exec.Runner) *SystemLauncher {
	return &SystemLauncher{Run: run, GOOS: runtime.GOOS}
}

func (l *SystemLauncher) Open(app string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if l.GOOS == "darwin" {
		_, err = l.Run.Run(ctx, "open", "-a", app)
	} else {
		name, ok := linuxApps[app]
		if !ok {
			name = strings.ToLower(strings.ReplaceAll(app, " ", "-"))
		}
		q := util.ShellQuote(name)
		_, err = exec.Shell(ctx, l.Run, fmt.Sprintf("command -v %[1]s >/dev/null && (%[1]s >/dev/null 2>&1 &)", q))
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrUnavailable, "Cannot open "+app, "")
	}
	return nil
}
