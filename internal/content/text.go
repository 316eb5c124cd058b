package content

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"quiz-engine/internal/domain"
)

// bilingualSeparator joins an English and a Hindi rendering in one free-text value.
const bilingualSeparator = " / "

// Devanagari block, U+0900 to U+097F.
func isDevanagari(r rune) bool {
	return r >= 0x0900 && r <= 0x097F
}

func hasDevanagari(s string) bool {
	return strings.ContainsFunc(s, isDevanagari)
}

// normalizeText resolves any free-text field value into both languages.
func normalizeText(v any) domain.BilingualText {
	switch t := v.(type) {
	case nil:
		return domain.BilingualText{}
	case map[string]any:
		return domain.BilingualText{EN: stringify(t["en"]), HI: stringify(t["hi"])}
	case domain.BilingualText:
		return t
	case string:
		return splitText(t)
	default:
		return splitText(stringify(t))
	}
}

// splitText splits "English / हिन्दी" pairs by script. Anything else is mirrored
// into both languages; nothing is translated.
func splitText(s string) domain.BilingualText {
	if s == "" {
		return domain.BilingualText{}
	}
	if parts := strings.Split(s, bilingualSeparator); len(parts) == 2 {
		first, second := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		firstHI, secondHI := hasDevanagari(first), hasDevanagari(second)
		switch {
		case firstHI && !secondHI:
			return domain.BilingualText{EN: second, HI: first}
		case secondHI && !firstHI:
			return domain.BilingualText{EN: first, HI: second}
		}
	}
	return domain.BilingualText{EN: s, HI: s}
}

// stringify coerces a decoded JSON scalar into text.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// stringSlice coerces one side of a pre-split option map into strings, keeping order.
func stringSlice(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, stringify(item))
		}
		return out
	case []string:
		return append([]string{}, t...)
	case nil:
		return []string{}
	default:
		return []string{stringify(t)}
	}
}
