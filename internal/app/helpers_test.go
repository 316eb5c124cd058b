package app_test

import (
	"fmt"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
)

// newBankStore seeds subject "Math" with topic t1 holding n questions. Every question
// has options a..d and "c" is always correct.
func newBankStore(n int) *memory.Store {
	store := memory.NewStore()
	store.AddSubject(domain.Subject{ID: "s1", Name: "Math"})
	store.AddTopic(domain.Topic{ID: "t1", Name: "Arithmetic", SubjectID: "s1", NotesURL: "notes/arithmetic.pdf"})
	addQuestions(store, "t1", n)
	return store
}

func addQuestions(store *memory.Store, topicID string, n int) {
	for i := 0; i < n; i++ {
		store.AddQuestion(domain.Question{
			ID:      fmt.Sprintf("%s-q%d", topicID, i+1),
			TopicID: topicID,
			Text:    fmt.Sprintf("Question %d", i+1),
			Options: []domain.Option{
				{ID: "a", Text: "A"},
				{ID: "b", Text: "B"},
				{ID: "c", Text: "C"},
				{ID: "d", Text: "D"},
			},
			CorrectOptionID: "c",
			Difficulty:      "easy",
		})
	}
}
