package doctor

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// socketDir returns a short directory; unix socket paths are limited to
// about 104 bytes on macOS.
func socketDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "trayd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestSocketCheck_FreePath(t *testing.T) {
	c := &SocketCheck{Path: filepath.Join(socketDir(t), "s.sock")}
	got := c.Run(context.Background())
	assert.Equal(t, StatusPass, got.Status)
	assert.Contains(t, got.Message, "not running")
}

func TestSocketCheck_Live(t *testing.T) {
	path := filepath.Join(socketDir(t), "s.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	defer ln.Close()

	got := (&SocketCheck{Path: path}).Run(context.Background())
	assert.Equal(t, StatusPass, got.Status)
	assert.Equal(t, "trayd is listening on "+path, got.Message)
}

func TestSocketCheck_StaleIsFixable(t *testing.T) {
	path := filepath.Join(socketDir(t), "s.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, ln.Close())

	c := &SocketCheck{Path: path}
	got := c.Run(context.Background())
	assert.Equal(t, StatusWarn, got.Status)
	assert.True(t, got.Fixable)

	require.NoError(t, c.Fix())
	assert.NoFileExists(t, path)
	assert.Equal(t, StatusPass, c.Run(context.Background()).Status)
}

func TestSocketCheck_NotASocket(t *testing.T) {
	path := filepath.Join(socketDir(t), "s.sock")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	got := (&SocketCheck{Path: path}).Run(context.Background())
	assert.Equal(t, StatusFail, got.Status)
}

func TestSocketCheck_UnwritableDir(t *testing.T) {
	got := (&SocketCheck{Path: "/nonexistent-trayd-dir/s.sock"}).Run(context.Background())
	assert.Equal(t, StatusFail, got.Status)
	assert.Contains(t, got.Message, "/nonexistent-trayd-dir")
}
