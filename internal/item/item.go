// Package item models the desired state of menu bar entries as pushed by
// the host: per-entry specs, their batch-wide font settings and the item
// kind that decides how an entry is rendered and whether its popover data
// is resolved locally.
package item

import (
	"strconv"
	"strings"
)

// Reserved ids with special handling.
const (
	BatteryID    = "battery"
	SystemTimeID = "systemTime"
)

// BatteryPrefix marks a battery-encoded top text: "BATTERY:<level>:<charging>".
const BatteryPrefix = "BATTERY:"

// Kind decides the rendering path of an entry.
type Kind int

const (
	// KindText renders top over bottom as two stacked rows.
	KindText Kind = iota
	// KindBattery renders a battery glyph from the sentinel top text.
	KindBattery
	// KindSystemTime renders "top bottom" as one monospaced-digit line.
	KindSystemTime
)

func (k Kind) String() string {
	switch k {
	case KindBattery:
		return "battery"
	case KindSystemTime:
		return "systemTime"
	default:
		return "text"
	}
}

// Alignment is the horizontal alignment of an entry's text.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// ParseAlignment maps a wire value to an Alignment, defaulting to center.
func ParseAlignment(s string) Alignment {
	switch Alignment(strings.ToLower(s)) {
	case AlignLeft:
		return AlignLeft
	case AlignRight:
		return AlignRight
	default:
		return AlignCenter
	}
}

// Weight is a font weight.
type Weight int

const (
	WeightLight Weight = iota
	WeightRegular
	WeightMedium
	WeightSemibold
	WeightBold
)

var weightNames = [...]string{"light", "regular", "medium", "semibold", "bold"}

func (w Weight) String() string {
	if w < 0 || int(w) >= len(weightNames) {
		return "regular"
	}
	return weightNames[w]
}

// ParseWeight maps a wire value to a Weight; unknown values are regular.
func ParseWeight(s string) Weight {
	for i, name := range weightNames {
		if strings.EqualFold(s, name) {
			return Weight(i)
		}
	}
	return WeightRegular
}

// Battery is the decoded battery sentinel.
type Battery struct {
	Level    int
	Charging bool
}

// ParseBattery decodes "BATTERY:<level>:<charging>". A non-numeric level
// reads as 0 and levels are clamped into [0,100]; charging is "1".
func ParseBattery(s string) (Battery, bool) {
	if !strings.HasPrefix(s, BatteryPrefix) {
		return Battery{}, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Battery{}, false
	}
	level, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	return Battery{Level: level, Charging: parts[2] == "1"}, true
}

// Spec is the desired state for one tray entry.
type Spec struct {
	ID     string
	Top    string
	Bottom string

	Alignment Alignment

	// FixedWidth is the entry length in points; zero or less means the
	// entry sizes itself to its content.
	FixedWidth float64

	// TopFontSize and BottomFontSize override the batch font size when positive.
	TopFontSize    float64
	BottomFontSize float64

	Kind Kind

	// Local is set for ids whose popover data trayd resolves itself.
	Local bool

	// Battery is the decoded sentinel when Kind is KindBattery and the
	// top text carried one.
	Battery    Battery
	HasBattery bool
}

// Equal reports whether two specs render identically.
func (s Spec) Equal(o Spec) bool {
	return s == o
}

// Batch is one setMenuBarItems call.
type Batch struct {
	Items      []Spec
	FontSize   float64
	FontWeight Weight
}

// IDs returns the ids of the batch in order.
func (b Batch) IDs() []string {
	ids := make([]string, len(b.Items))
	for i, it := range b.Items {
		ids[i] = it.ID
	}
	return ids
}
