package content

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var letterIndex = map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}

// resolveCorrectAnswer maps a number, letter code or numeric string to a zero-based
// option index. Anything unrecognized resolves to 0.
func resolveCorrectAnswer(v any) int {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
		return resolveCorrectAnswer(t.String())
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(f)
		}
		return letterIndex[strings.ToLower(s)]
	}
	return 0
}

// positiveInt reads a strictly positive whole number, if v holds one.
func positiveInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		if n := int(t); n > 0 {
			return n, true
		}
	case int:
		if t > 0 {
			return t, true
		}
	case json.Number:
		if n, err := t.Int64(); err == nil && n > 0 {
			return int(n), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}
