package app

import (
	"quiz-engine/internal/domain"
)

// IncorrectPenalty is subtracted per incorrect answer.
const IncorrectPenalty = 0.25

// Score grades submission against answerKeys (question id -> correct option id) with
// negative marking. A question missing from answerKeys counts as incorrect.
//
// Percentage derives from the raw, unclamped score and is floored on its own, so
// score and percentage are each clamped at zero independently.
func Score(submission domain.Submission, answerKeys map[string]string) (domain.Result, error) {
	total := len(submission.Answers)
	if total == 0 {
		return domain.Result{}, domain.ErrEmptySubmission
	}

	correct := 0
	incorrect := make([]domain.IncorrectAnswer, 0)
	for _, answer := range submission.Answers {
		key, known := answerKeys[answer.QuestionID]
		if known && answer.SelectedOptionID == key {
			correct++
			continue
		}
		incorrect = append(incorrect, domain.IncorrectAnswer{
			QuestionID:       answer.QuestionID,
			SelectedOptionID: answer.SelectedOptionID,
			CorrectOptionID:  key,
		})
	}

	incorrectCount := total - correct
	raw := float64(correct) - IncorrectPenalty*float64(incorrectCount)

	return domain.Result{
		Score:          max(0, raw),
		TotalQuestions: total,
		CorrectAnswers: correct,
		Incorrect:      incorrect,
		Percentage:     max(0, raw/float64(total)*100),
	}, nil
}

// questionIDs lists the distinct question ids referenced by a submission.
func questionIDs(submission domain.Submission) []string {
	ids := make([]string, 0, len(submission.Answers))
	seen := make(map[string]struct{}, len(submission.Answers))
	for _, a := range submission.Answers {
		if _, ok := seen[a.QuestionID]; ok {
			continue
		}
		seen[a.QuestionID] = struct{}{}
		ids = append(ids, a.QuestionID)
	}
	return ids
}
