package bridge

import (
	"encoding/base64"
	"encoding/json"
	"math"

	"github.com/trayd/trayd/internal/errors"
)

// Args is the argument map of a request. Numbers may arrive as float64,
// json.Number or Go integers depending on who built the map; the accessors
// accept all of them.
type Args map[string]any

// String returns a required string argument.
func (a Args) String(key string) (string, error) {
	s, ok := a[key].(string)
	if !ok {
		return "", errors.InvalidArgs("%s is required and must be a string", key)
	}
	return s, nil
}

// StringOr returns an optional string argument.
func (a Args) StringOr(key, def string) string {
	if s, ok := a[key].(string); ok {
		return s
	}
	return def
}

// Number returns a required numeric argument.
func (a Args) Number(key string) (float64, error) {
	n, ok := toFloat(a[key])
	if !ok {
		return 0, errors.InvalidArgs("%s is required and must be a number", key)
	}
	return n, nil
}

// NumberOr returns an optional numeric argument.
func (a Args) NumberOr(key string, def float64) float64 {
	if n, ok := toFloat(a[key]); ok {
		return n
	}
	return def
}

// IntOr returns an optional integer argument. Fractions are truncated.
func (a Args) IntOr(key string, def int) int {
	if n, ok := toFloat(a[key]); ok {
		return int(n)
	}
	return def
}

// BoolOr returns an optional boolean argument.
func (a Args) BoolOr(key string, def bool) bool {
	if b, ok := a[key].(bool); ok {
		return b
	}
	return def
}

// Map returns an optional object argument, nil when absent.
func (a Args) Map(key string) (map[string]any, error) {
	v, present := a[key]
	if !present || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.InvalidArgs("%s must be an object", key)
	}
	return m, nil
}

// Bytes returns a required binary argument, sent either as a base64
// string or as a list of byte values.
func (a Args) Bytes(key string) ([]byte, error) {
	switch v := a[key].(type) {
	case string:
		b, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, errors.InvalidArgs("%s is not valid base64", key)
		}
		return b, nil
	case []byte:
		return v, nil
	case []any:
		out := make([]byte, len(v))
		for i, el := range v {
			n, ok := toFloat(el)
			if !ok || n < 0 || n > 255 || n != math.Trunc(n) {
				return nil, errors.InvalidArgs("%s[%d] is not a byte", key, i)
			}
			out[i] = byte(n)
		}
		return out, nil
	}
	return nil, errors.InvalidArgs("%s is required and must be bytes", key)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
