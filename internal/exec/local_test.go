package exec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trayd/trayd/internal/errors"
)

func TestLocal_CapturesStdout(t *testing.T) {
	out, err := Local{}.Run(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestLocal_Pipeline(t *testing.T) {
	out, err := Shell(context.Background(), Local{}, "echo 'hello world' | tr ' ' '_'")
	require.NoError(t, err)
	assert.Equal(t, "hello_world\n", out)
}

func TestLocal_NonZeroExitIsNotAnError(t *testing.T) {
	out, err := Shell(context.Background(), Local{}, "echo partial; exit 3")
	require.NoError(t, err)
	assert.Equal(t, "partial\n", out)
}

func TestLocal_StderrIsNotOutput(t *testing.T) {
	out, err := Shell(context.Background(), Local{}, "echo oops >&2")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLocal_MissingCommand(t *testing.T) {
	_, err := Local{}.Run(context.Background(), "/definitely/not/here")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnavailable))
}

func TestLocal_Timeout(t *testing.T) {
	_, err := Local{Timeout: 50 * time.Millisecond}.Run(context.Background(), "sleep", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not finish")
}

func TestScripted(t *testing.T) {
	s := NewScripted(map[string]string{"ps -o pid": "1\n"})

	out, err := s.Run(context.Background(), "ps", "-o", "pid")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	_, err = s.Run(context.Background(), "top")
	assert.Error(t, err)
	assert.Equal(t, []string{"ps -o pid", "top"}, s.Calls())
}

func TestLocal_PipelineHeadMissing(t *testing.T) {
	_, err := Shell(context.Background(), Local{}, "trayd-no-such-tool -x | tail -3")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnavailable))
	assert.Contains(t, err.Error(), "trayd-no-such-tool")
}

func TestLocal_ExitNotFound(t *testing.T) {
	_, err := Shell(context.Background(), Local{}, "exit 127")
	assert.True(t, errors.IsCode(err, errors.ErrUnavailable))
}

func TestIsCommandNotFound(t *testing.T) {
	tests := []struct {
		name      string
		stdout    string
		stderr    string
		exitCode  int
		wantCmd   string
		wantFound bool
	}{
		{"bash", "", "bash: nettop: command not found", 127, "nettop", true},
		{"zsh", "", "zsh: command not found: lsof", 127, "lsof", true},
		{"dash pipeline head", "", "/bin/sh: 1: nettop: not found", 0, "nettop", true},
		{"macos sh", "", "/bin/sh: ioreg: not found", 0, "ioreg", true},
		{"pipeline with output", "12 kernel\n", "sh: 1: foo: not found", 0, "foo", false},
		{"127 without message", "", "", 127, "", true},
		{"ordinary failure", "", "permission denied", 1, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, found := IsCommandNotFound(tt.stdout, tt.stderr, tt.exitCode)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantCmd, cmd)
		})
	}
}
