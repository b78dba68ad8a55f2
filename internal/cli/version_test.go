package cli

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct{ in, want string }{
		{"dev", "dev"},
		{"", ""},
		{"1.2.3", "v1.2.3"},
		{"v1.2.3", "v1.2.3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatVersion(tt.in))
	}
}

func TestPrintVersion(t *testing.T) {
	orig := []string{version, commit, date}
	defer SetVersionInfo(orig[0], orig[1], orig[2])
	SetVersionInfo("1.2.3", "abc1234", "2026-01-08T12:00:00Z")

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	printVersion(cmd, false)
	out := buf.String()
	assert.Contains(t, out, "trayd v1.2.3")
	assert.Contains(t, out, "commit: abc1234")
	assert.Contains(t, out, "go: "+runtime.Version())

	buf.Reset()
	printVersion(cmd, true)
	assert.Equal(t, "1.2.3", strings.TrimSpace(buf.String()))
	assert.Equal(t, "1.2.3", GetVersion())
}
