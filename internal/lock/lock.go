// Package lock keeps a single trayd daemon per bridge socket. The lock is
// an flock on a file beside the socket, so it is released when the holder
// exits, however it exits.
package lock

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/trayd/trayd/internal/errors"
)

// ErrLocked is returned by TryAcquire when another process holds the lock.
var ErrLocked = stderrors.New("lock is held by another process")

// Info describes the lock holder.
type Info struct {
	User     string    `json:"user"`
	Hostname string    `json:"hostname"`
	PID      int       `json:"pid"`
	Started  time.Time `json:"started"`
	Socket   string    `json:"socket"`
}

// NewInfo describes this process as the holder of the lock for socket.
func NewInfo(socket string) Info {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}
	return Info{User: user, Hostname: hostname, PID: os.Getpid(), Started: time.Now(), Socket: socket}
}

// Age returns how long the holder has held the lock.
func (i Info) Age() time.Duration { return time.Since(i.Started) }

func (i Info) String() string {
	return fmt.Sprintf("%s@%s (pid %d)", i.User, i.Hostname, i.PID)
}

// Lock is a held lock.
type Lock struct {
	Path string
	Info Info
	file *os.File
}

// PathFor returns the lock file guarding socket.
func PathFor(socket string) string { return socket + ".lock" }

// TryAcquire takes the lock for socket without waiting. When another
// process holds it the error wraps ErrLocked and names the holder.
func TryAcquire(socket string) (*Lock, error) {
	path := PathFor(socket)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrBridge,
			"Cannot create lock file "+path,
			"Check the bridge.socket directory is writable")
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		holder, _ := readInfo(f)
		f.Close()
		if err == unix.EWOULDBLOCK {
			msg := "trayd is already running on " + socket
			if holder != nil {
				msg = fmt.Sprintf("trayd is already running on %s: %s, up %s",
					socket, holder, holder.Age().Round(time.Second))
			}
			return nil, errors.WrapWithCode(ErrLocked, errors.ErrUnavailable, msg,
				"Stop the other daemon or set bridge.socket to another path")
		}
		return nil, errors.WrapWithCode(err, errors.ErrBridge, "Cannot lock "+path, "")
	}

	l := &Lock{Path: path, Info: NewInfo(socket), file: f}
	if err := l.writeInfo(); err != nil {
		l.Release()
		return nil, errors.WrapWithCode(err, errors.ErrBridge, "Cannot write lock file "+path, "")
	}
	return l, nil
}

// Holder reads the holder of the lock for socket, if any process holds it.
func Holder(socket string) (*Info, bool) {
	f, err := os.Open(PathFor(socket))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH|unix.LOCK_NB); err == nil {
		// Nobody holds it.
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		return nil, false
	}
	info, err := readInfo(f)
	if err != nil {
		return nil, true
	}
	return info, true
}

// Release drops the lock and removes the file. Safe to call more than once.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	_ = os.Remove(l.Path)
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
	l.file = nil
}

func (l *Lock) writeInfo() error {
	data, err := json.Marshal(l.Info)
	if err != nil {
		return err
	}
	if err := l.file.Truncate(0); err != nil {
		return err
	}
	_, err = l.file.WriteAt(data, 0)
	return err
}

func readInfo(f *os.File) (*Info, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	var info Info
	if err := json.NewDecoder(f).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}
