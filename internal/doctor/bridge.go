package doctor

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/trayd/trayd/internal/lock"
)

// SocketCheck inspects the bridge socket path: a live daemon, a stale
// socket left by a crash, or a free path in a writable directory.
type SocketCheck struct {
	Path string
}

func (c *SocketCheck) Name() string     { return "bridge_socket" }
func (c *SocketCheck) Category() string { return "BRIDGE" }

func (c *SocketCheck) Run(ctx context.Context) CheckResult {
	info, err := os.Lstat(c.Path)
	switch {
	case err == nil && info.Mode()&os.ModeSocket == 0:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s exists and is not a socket", c.Path),
			Suggestion: "Set bridge.socket to another path",
		}
	case err == nil:
		if c.live(ctx) {
			msg := "trayd is listening on " + c.Path
			if holder, ok := lock.Holder(c.Path); ok && holder != nil {
				msg += fmt.Sprintf(" (pid %d, up %s)", holder.PID, holder.Age().Round(time.Second))
			}
			return CheckResult{Name: c.Name(), Status: StatusPass, Message: msg}
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Stale socket at " + c.Path,
			Suggestion: "Run 'trayd doctor --fix' to remove it",
			Fixable:    true,
		}
	case !os.IsNotExist(err):
		return CheckResult{Name: c.Name(), Status: StatusFail, Message: err.Error()}
	}

	dir := filepath.Dir(c.Path)
	if err := writable(dir); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot create the socket in %s", dir),
			Suggestion: "Set bridge.socket to a path in a writable directory",
		}
	}
	return CheckResult{Name: c.Name(), Status: StatusPass, Message: "trayd is not running; " + dir + " is writable"}
}

// Fix removes a socket nobody is listening on.
func (c *SocketCheck) Fix() error {
	if c.live(context.Background()) {
		return nil
	}
	return os.Remove(c.Path)
}

func (c *SocketCheck) live(ctx context.Context) bool {
	d := net.Dialer{Timeout: time.Second}
	conn, err := d.DialContext(ctx, "unix", c.Path)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func writable(dir string) error {
	f, err := os.CreateTemp(dir, ".trayd-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
