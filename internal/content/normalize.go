// Package content canonicalizes authored or imported quiz payloads into the
// bilingual (en/hi) quiz document.
package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"quiz-engine/internal/domain"
)

const (
	DefaultTitle      = "Quiz"
	DefaultPoints     = 10
	DefaultDifficulty = "medium"
	// MinTimeLimit and FallbackTimeLimit are in minutes; derived limits give one minute per question.
	MinTimeLimit      = 10
	FallbackTimeLimit = 30
)

// NormalizeJSON decodes data and normalizes it.
func NormalizeJSON(data []byte) (domain.MultilingualQuiz, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.MultilingualQuiz{}, fmt.Errorf("%w: decode quiz: %v", domain.ErrInvalidInput, err)
	}
	return Normalize(raw)
}

// Normalize converts a decoded quiz payload into the canonical bilingual schema.
// Missing or malformed optional fields fall back to defaults; only a non-object
// top level is rejected. Normalize is a fixed point on its own output.
func Normalize(raw any) (domain.MultilingualQuiz, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return domain.MultilingualQuiz{}, fmt.Errorf("%w: quiz must be an object, got %T", domain.ErrInvalidInput, raw)
	}

	quiz := domain.MultilingualQuiz{
		ID:          stringify(obj["id"]),
		Title:       normalizeText(withDefault(obj["title"], DefaultTitle)),
		Description: normalizeText(obj["description"]),
		Questions:   []domain.MultilingualQuestion{},
		Difficulty:  DefaultDifficulty,
		Tags:        []string{},
	}

	if items, ok := obj["questions"].([]any); ok {
		for i, item := range items {
			q, ok := item.(map[string]any)
			if !ok {
				continue
			}
			quiz.Questions = append(quiz.Questions, normalizeQuestion(i, q))
		}
	}

	for _, q := range quiz.Questions {
		quiz.TotalPoints += q.Points
	}

	switch limit, ok := positiveInt(obj["timeLimit"]); {
	case ok:
		quiz.TimeLimit = limit
	case len(quiz.Questions) > 0:
		quiz.TimeLimit = max(MinTimeLimit, len(quiz.Questions))
	default:
		quiz.TimeLimit = FallbackTimeLimit
	}

	if d := strings.TrimSpace(stringify(obj["difficulty"])); d != "" {
		quiz.Difficulty = d
	}
	if tags, ok := obj["tags"]; ok && tags != nil {
		quiz.Tags = stringSlice(tags)
	}

	quiz.AvailableLanguages = detectLanguages(quiz)
	quiz.IsMultilingual = len(quiz.AvailableLanguages) > 1
	quiz.DefaultLanguage = quiz.AvailableLanguages[0]
	return quiz, nil
}

func normalizeQuestion(index int, q map[string]any) domain.MultilingualQuestion {
	id := stringify(q["id"])
	if id == "" {
		id = fmt.Sprintf("q%d", index+1)
	}

	answer, ok := q["correctAnswer"]
	if !ok {
		answer = q["correctAnswerId"]
	}

	points, ok := positiveInt(q["points"])
	if !ok {
		points = DefaultPoints
	}

	return domain.MultilingualQuestion{
		ID:            id,
		Question:      normalizeText(firstPresent(q, "question", "text", "prompt")),
		Options:       normalizeOptions(q["options"]),
		CorrectAnswer: resolveCorrectAnswer(answer),
		Explanation:   normalizeText(q["explanation"]),
		Points:        points,
	}
}

// detectLanguages reports which supported languages carry any non-empty content.
// English is assumed when nothing is present, and English is listed first so it
// becomes the default language whenever available.
func detectLanguages(quiz domain.MultilingualQuiz) []domain.Language {
	present := make(map[domain.Language]bool, len(domain.SupportedLanguages))
	markText := func(t domain.BilingualText) {
		for _, lang := range domain.SupportedLanguages {
			if strings.TrimSpace(t.Get(lang)) != "" {
				present[lang] = true
			}
		}
	}
	markText(quiz.Title)
	markText(quiz.Description)
	for _, q := range quiz.Questions {
		markText(q.Question)
		markText(q.Explanation)
		for _, lang := range domain.SupportedLanguages {
			for _, opt := range q.Options.Get(lang) {
				if strings.TrimSpace(opt) != "" {
					present[lang] = true
					break
				}
			}
		}
	}

	langs := make([]domain.Language, 0, len(domain.SupportedLanguages))
	for _, lang := range domain.SupportedLanguages {
		if present[lang] {
			langs = append(langs, lang)
		}
	}
	if len(langs) == 0 {
		langs = append(langs, domain.LangEN)
	}
	return langs
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func withDefault(v any, fallback string) any {
	if v == nil {
		return fallback
	}
	if s, ok := v.(string); ok && s == "" {
		return fallback
	}
	return v
}
