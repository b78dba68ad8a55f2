package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func lookPathExcept(missing ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, m := range missing {
			if m == name {
				return "", errors.New("not found")
			}
		}
		return "/usr/bin/" + name, nil
	}
}

func TestToolsCheck(t *testing.T) {
	tests := []struct {
		name        string
		goos        string
		missing     []string
		wantStatus  CheckStatus
		wantMessage string
	}{
		{"darwin complete", "darwin", nil, StatusPass, "All 8 telemetry commands found"},
		{"linux complete", "linux", nil, StatusPass, "All 3 telemetry commands found"},
		{"one missing", "darwin", []string{"nettop"}, StatusWarn, "Missing command: nettop"},
		{"two missing", "linux", []string{"ps", "lsof"}, StatusWarn, "Missing commands: ps, lsof"},
		{"unknown os", "plan9", nil, StatusWarn, "No telemetry commands known for plan9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &ToolsCheck{GOOS: tt.goos, LookPath: lookPathExcept(tt.missing...)}
			got := c.Run(context.Background())
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}
}
