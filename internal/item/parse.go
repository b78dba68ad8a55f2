package item

import (
	"fmt"

	"github.com/trayd/trayd/internal/errors"
)

// Classifier resolves the kind and locality of an id once, when a spec is
// built.
type Classifier struct {
	local map[string]bool
}

// NewClassifier creates a classifier treating localIDs as locally resolvable.
func NewClassifier(localIDs []string) Classifier {
	c := Classifier{local: make(map[string]bool, len(localIDs))}
	for _, id := range localIDs {
		c.local[id] = true
	}
	return c
}

// Kind returns the rendering kind for id.
func (c Classifier) Kind(id string) Kind {
	switch id {
	case BatteryID:
		return KindBattery
	case SystemTimeID:
		return KindSystemTime
	default:
		return KindText
	}
}

// IsLocal reports whether popover data for id is resolved locally.
func (c Classifier) IsLocal(id string) bool {
	return c.local[id]
}

// Skip records an entry dropped from a batch.
type Skip struct {
	Index  int
	ID     string
	Reason string
}

// ParseBatch decodes setMenuBarItems arguments. Missing items or fontSize
// fail the whole call with INVALID_ARGS; individual malformed entries
// (missing id/top/bottom, duplicate id) are skipped and reported.
func ParseBatch(args map[string]any, c Classifier) (Batch, []Skip, error) {
	rawItems, ok := args["items"].([]any)
	if !ok {
		return Batch{}, nil, errors.InvalidArgs("items is required and must be a list")
	}
	fontSize, ok := number(args["fontSize"])
	if !ok {
		return Batch{}, nil, errors.InvalidArgs("fontSize is required and must be a number")
	}

	batch := Batch{
		FontSize:   fontSize,
		FontWeight: WeightRegular,
	}
	if w, ok := args["fontWeight"].(string); ok {
		batch.FontWeight = ParseWeight(w)
	}

	var skipped []Skip
	seen := make(map[string]bool, len(rawItems))
	for i, raw := range rawItems {
		entry, ok := raw.(map[string]any)
		if !ok {
			skipped = append(skipped, Skip{Index: i, Reason: "entry is not an object"})
			continue
		}
		spec, err := ParseSpec(entry, c)
		if err != nil {
			id, _ := entry["id"].(string)
			skipped = append(skipped, Skip{Index: i, ID: id, Reason: errors.Summary(err)})
			continue
		}
		if seen[spec.ID] {
			skipped = append(skipped, Skip{Index: i, ID: spec.ID, Reason: "duplicate id"})
			continue
		}
		seen[spec.ID] = true
		batch.Items = append(batch.Items, spec)
	}
	return batch, skipped, nil
}

// ParseSpec decodes one entry.
func ParseSpec(entry map[string]any, c Classifier) (Spec, error) {
	id, _ := entry["id"].(string)
	top, topOK := entry["top"].(string)
	bottom, bottomOK := entry["bottom"].(string)
	switch {
	case id == "":
		return Spec{}, errors.InvalidArgs("id is required")
	case !topOK:
		return Spec{}, errors.InvalidArgs("entry %q: top is required", id)
	case !bottomOK:
		return Spec{}, errors.InvalidArgs("entry %q: bottom is required", id)
	}

	spec := Spec{
		ID:        id,
		Top:       top,
		Bottom:    bottom,
		Alignment: AlignCenter,
		Kind:      c.Kind(id),
		Local:     c.IsLocal(id),
	}
	if a, ok := entry["alignment"].(string); ok {
		spec.Alignment = ParseAlignment(a)
	}
	if w, ok := number(entry["fixedWidth"]); ok {
		spec.FixedWidth = w
	}
	if s, ok := number(entry["topFontSize"]); ok {
		spec.TopFontSize = s
	}
	if s, ok := number(entry["bottomFontSize"]); ok {
		spec.BottomFontSize = s
	}
	if spec.Kind == KindBattery {
		spec.Battery, spec.HasBattery = ParseBattery(top)
	}
	return spec, nil
}

// number accepts the numeric shapes a JSON decoder or a Go caller may produce.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case fmt.Stringer:
		var f float64
		if _, err := fmt.Sscan(n.String(), &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
