package domain

// Language is a content language. Only English and Hindi survive normalization.
type Language string

const (
	LangEN Language = "en"
	LangHI Language = "hi"
)

// SupportedLanguages is the language ceiling, in preference order.
var SupportedLanguages = []Language{LangEN, LangHI}

// BilingualText always carries both keys; either may be empty.
type BilingualText struct {
	EN string `json:"en"`
	HI string `json:"hi"`
}

// Get returns the text for lang.
func (t BilingualText) Get(lang Language) string {
	if lang == LangHI {
		return t.HI
	}
	return t.EN
}

// BilingualOptions holds index-aligned option texts per language.
type BilingualOptions struct {
	EN []string `json:"en"`
	HI []string `json:"hi"`
}

// Get returns the option texts for lang.
func (o BilingualOptions) Get(lang Language) []string {
	if lang == LangHI {
		return o.HI
	}
	return o.EN
}

// MultilingualQuestion is a normalized bilingual question.
type MultilingualQuestion struct {
	ID            string           `json:"id"`
	Question      BilingualText    `json:"question"`
	Options       BilingualOptions `json:"options"`
	CorrectAnswer int              `json:"correctAnswer"`
	Explanation   BilingualText    `json:"explanation"`
	Points        int              `json:"points"`
}

// MultilingualQuiz is the canonical bilingual quiz document.
type MultilingualQuiz struct {
	ID                 string                 `json:"id"`
	Title              BilingualText          `json:"title"`
	Description        BilingualText          `json:"description"`
	Questions          []MultilingualQuestion `json:"questions"`
	AvailableLanguages []Language             `json:"availableLanguages"`
	DefaultLanguage    Language               `json:"defaultLanguage"`
	IsMultilingual     bool                   `json:"isMultilingual"`
	TotalPoints        int                    `json:"totalPoints"`
	TimeLimit          int                    `json:"timeLimit"`
	Difficulty         string                 `json:"difficulty"`
	Tags               []string               `json:"tags"`
}
