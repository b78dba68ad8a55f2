package item

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trayd/trayd/internal/errors"
)

func TestParseWeight(t *testing.T) {
	tests := []struct {
		in   string
		want Weight
	}{
		{"light", WeightLight},
		{"regular", WeightRegular},
		{"medium", WeightMedium},
		{"semibold", WeightSemibold},
		{"bold", WeightBold},
		{"Bold", WeightBold},
		{"heavy", WeightRegular},
		{"", WeightRegular},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseWeight(tt.in))
		})
	}
	assert.Equal(t, "semibold", WeightSemibold.String())
}

func TestParseAlignment(t *testing.T) {
	assert.Equal(t, AlignLeft, ParseAlignment("left"))
	assert.Equal(t, AlignRight, ParseAlignment("right"))
	assert.Equal(t, AlignCenter, ParseAlignment("center"))
	assert.Equal(t, AlignCenter, ParseAlignment("justify"))
}

func TestParseBattery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Battery
		ok   bool
	}{
		{"charging", "BATTERY:80:1", Battery{Level: 80, Charging: true}, true},
		{"discharging", "BATTERY:42:0", Battery{Level: 42}, true},
		{"bad level reads zero", "BATTERY:abc:1", Battery{Level: 0, Charging: true}, true},
		{"clamped high", "BATTERY:140:0", Battery{Level: 100}, true},
		{"missing part", "BATTERY:80", Battery{}, false},
		{"plain text", "80%", Battery{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBattery(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier(t *testing.T) {
	c := NewClassifier([]string{"cpu", "battery"})

	assert.Equal(t, KindBattery, c.Kind("battery"))
	assert.Equal(t, KindSystemTime, c.Kind("systemTime"))
	assert.Equal(t, KindText, c.Kind("cpu"))
	assert.True(t, c.IsLocal("cpu"))
	assert.True(t, c.IsLocal("battery"))
	assert.False(t, c.IsLocal("todo"))
}

func decodeArgs(t *testing.T, s string) map[string]any {
	t.Helper()
	var args map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &args))
	return args
}

func TestParseBatch(t *testing.T) {
	c := NewClassifier([]string{"cpu", "ram", "battery"})
	args := decodeArgs(t, `{
		"fontSize": 11,
		"fontWeight": "medium",
		"items": [
			{"id": "cpu", "top": "CPU", "bottom": "12%", "alignment": "left", "fixedWidth": 44, "topFontSize": 9},
			{"id": "battery", "top": "BATTERY:77:1", "bottom": ""},
			{"id": "systemTime", "top": "10:42", "bottom": "Fri"},
			{"top": "no id", "bottom": "x"},
			{"id": "ram", "bottom": "no top"},
			{"id": "cpu", "top": "dup", "bottom": "dup"},
			"garbage",
			{"id": "todo", "top": "3", "bottom": "left"}
		]
	}`)

	batch, skipped, err := ParseBatch(args, c)
	require.NoError(t, err)

	assert.Equal(t, 11.0, batch.FontSize)
	assert.Equal(t, WeightMedium, batch.FontWeight)
	assert.Equal(t, []string{"cpu", "battery", "systemTime", "todo"}, batch.IDs())

	cpu := batch.Items[0]
	assert.Equal(t, AlignLeft, cpu.Alignment)
	assert.Equal(t, 44.0, cpu.FixedWidth)
	assert.Equal(t, 9.0, cpu.TopFontSize)
	assert.Equal(t, 0.0, cpu.BottomFontSize)
	assert.Equal(t, KindText, cpu.Kind)
	assert.True(t, cpu.Local)

	bat := batch.Items[1]
	assert.Equal(t, KindBattery, bat.Kind)
	assert.True(t, bat.HasBattery)
	assert.Equal(t, Battery{Level: 77, Charging: true}, bat.Battery)

	assert.Equal(t, KindSystemTime, batch.Items[2].Kind)
	assert.Equal(t, AlignCenter, batch.Items[3].Alignment)
	assert.False(t, batch.Items[3].Local)

	require.Len(t, skipped, 4)
	assert.Equal(t, 3, skipped[0].Index)
	assert.Equal(t, "ram", skipped[1].ID)
	assert.Equal(t, "duplicate id", skipped[2].Reason)
	assert.Equal(t, 6, skipped[3].Index)
}

func TestParseBatch_InvalidArgs(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name string
		args string
	}{
		{"no items", `{"fontSize": 10}`},
		{"items not a list", `{"items": {}, "fontSize": 10}`},
		{"no font size", `{"items": []}`},
		{"font size not a number", `{"items": [], "fontSize": "10"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseBatch(decodeArgs(t, tt.args), c)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrInvalidArgs))
		})
	}
}

func TestParseBatch_DefaultWeight(t *testing.T) {
	batch, _, err := ParseBatch(map[string]any{"items": []any{}, "fontSize": 10}, NewClassifier(nil))
	require.NoError(t, err)
	assert.Equal(t, WeightRegular, batch.FontWeight)
	assert.Empty(t, batch.Items)
}

func TestParseSpec_MalformedBatterySentinel(t *testing.T) {
	spec, err := ParseSpec(map[string]any{"id": "battery", "top": "87%", "bottom": "AC"}, NewClassifier(nil))
	require.NoError(t, err)
	assert.Equal(t, KindBattery, spec.Kind)
	assert.False(t, spec.HasBattery)
}

func TestNumber_JSONNumber(t *testing.T) {
	n, ok := number(json.Number("12.5"))
	assert.True(t, ok)
	assert.Equal(t, 12.5, n)

	_, ok = number("12")
	assert.False(t, ok)
}
