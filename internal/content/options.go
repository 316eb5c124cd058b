package content

import "quiz-engine/internal/domain"

// normalizeOptions accepts an untagged option list ([{text}] or plain strings) or a
// pre-split {en: [...], hi: [...]} map and returns index-aligned language arrays.
func normalizeOptions(v any) domain.BilingualOptions {
	out := domain.BilingualOptions{EN: []string{}, HI: []string{}}
	switch t := v.(type) {
	case []any:
		for _, entry := range t {
			text := normalizeText(optionText(entry))
			out.EN = append(out.EN, text.EN)
			out.HI = append(out.HI, text.HI)
		}
	case map[string]any:
		out.EN = stringSlice(t["en"])
		out.HI = stringSlice(t["hi"])
		alignOptions(&out)
	case domain.BilingualOptions:
		out.EN = append(out.EN, t.EN...)
		out.HI = append(out.HI, t.HI...)
		alignOptions(&out)
	}
	return out
}

// optionText picks the free-text value of one untagged option entry.
func optionText(entry any) any {
	m, ok := entry.(map[string]any)
	if !ok {
		return entry
	}
	if text, ok := m["text"]; ok {
		return text
	}
	return m
}

// alignOptions pads the shorter side with empty strings so indices stay parallel.
func alignOptions(o *domain.BilingualOptions) {
	for len(o.EN) < len(o.HI) {
		o.EN = append(o.EN, "")
	}
	for len(o.HI) < len(o.EN) {
		o.HI = append(o.HI, "")
	}
}
