package doctor

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/trayd/trayd/internal/platform/sni"
)

// SessionCheck verifies the D-Bus session bus the sni backend registers
// its items on, and that a StatusNotifierWatcher is there to show them.
type SessionCheck struct {
	Backend string
	Connect func() (*dbus.Conn, error)
}

func (c *SessionCheck) Name() string     { return "session_bus" }
func (c *SessionCheck) Category() string { return "SESSION" }
func (c *SessionCheck) Fix() error       { return nil }

func (c *SessionCheck) Run(_ context.Context) CheckResult {
	if c.Backend != "sni" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("Backend %q needs no desktop session", c.Backend),
		}
	}

	connect := c.Connect
	if connect == nil {
		connect = func() (*dbus.Conn, error) { return dbus.ConnectSessionBus() }
	}
	conn, err := connect()
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("No D-Bus session bus: %v", err),
			Suggestion: "Run trayd inside a desktop session or use tray.backend: headless",
		}
	}
	defer conn.Close()

	var owned bool
	err = conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, sni.WatcherName).Store(&owned)
	if err != nil || !owned {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No StatusNotifierWatcher on the session bus",
			Suggestion: "Enable a tray extension for your desktop so items are shown",
		}
	}
	return CheckResult{Name: c.Name(), Status: StatusPass, Message: "StatusNotifierWatcher is running"}
}
